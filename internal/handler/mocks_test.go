package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/polsommer/PanelHosting/internal/model"
	"github.com/polsommer/PanelHosting/internal/settings"
)

// mockCouponService is a mock implementation of CouponServiceInterface.
type mockCouponService struct {
	createFn   func(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error)
	getFn      func(ctx context.Context, code string) (*model.CouponResponse, error)
	listFn     func(ctx context.Context) ([]model.CouponResponse, error)
	settings   settings.Coupons
	lastUpdate *settings.CouponsUpdate
}

func (m *mockCouponService) Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return &model.Coupon{Code: req.Code, Credits: *req.Credits, Uses: *req.Uses}, nil
}

func (m *mockCouponService) Get(ctx context.Context, code string) (*model.CouponResponse, error) {
	if m.getFn != nil {
		return m.getFn(ctx, code)
	}
	return &model.CouponResponse{Code: code, Status: model.CouponActive}, nil
}

func (m *mockCouponService) List(ctx context.Context) ([]model.CouponResponse, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.CouponResponse{}, nil
}

func (m *mockCouponService) Settings() settings.Coupons {
	return m.settings
}

func (m *mockCouponService) UpdateSettings(u settings.CouponsUpdate) settings.Coupons {
	m.lastUpdate = &u
	if u.Enabled != nil {
		m.settings.Enabled = *u.Enabled
	}
	if u.AllowRepeatRedemption != nil {
		m.settings.AllowRepeatRedemption = *u.AllowRepeatRedemption
	}
	return m.settings
}

// mockRedeemService is a mock implementation of RedeemServiceInterface.
type mockRedeemService struct {
	redeemFn func(ctx context.Context, accountID, code string) (*model.Redemption, error)
}

func (m *mockRedeemService) Redeem(ctx context.Context, accountID, code string) (*model.Redemption, error) {
	if m.redeemFn != nil {
		return m.redeemFn(ctx, accountID, code)
	}
	return &model.Redemption{Code: code, Credits: 10, NewBalance: 10}, nil
}

// mockLedgerService is a mock implementation of LedgerServiceInterface.
type mockLedgerService struct {
	creditFn  func(ctx context.Context, accountID string, amount int64, source string) (int64, error)
	debitFn   func(ctx context.Context, accountID string, amount int64, source string) (int64, error)
	accountFn func(ctx context.Context, accountID string) (*model.AccountResponse, error)
}

func (m *mockLedgerService) Credit(ctx context.Context, accountID string, amount int64, source string) (int64, error) {
	if m.creditFn != nil {
		return m.creditFn(ctx, accountID, amount, source)
	}
	return amount, nil
}

func (m *mockLedgerService) Debit(ctx context.Context, accountID string, amount int64, source string) (int64, error) {
	if m.debitFn != nil {
		return m.debitFn(ctx, accountID, amount, source)
	}
	return 0, nil
}

func (m *mockLedgerService) Account(ctx context.Context, accountID string) (*model.AccountResponse, error) {
	if m.accountFn != nil {
		return m.accountFn(ctx, accountID)
	}
	return &model.AccountResponse{AccountID: accountID, Resources: map[string]int64{}}, nil
}

// mockStoreService is a mock implementation of StoreServiceInterface.
type mockStoreService struct {
	purchaseFn func(ctx context.Context, accountID, resource string) (*model.Receipt, error)
}

func (m *mockStoreService) Costs() map[string]int64 {
	return map[string]int64{"cpu": 150, "memory": 50}
}

func (m *mockStoreService) Purchase(ctx context.Context, accountID, resource string) (*model.Receipt, error) {
	if m.purchaseFn != nil {
		return m.purchaseFn(ctx, accountID, resource)
	}
	return &model.Receipt{AccountID: accountID, Resource: resource}, nil
}

// mockReferralService is a mock implementation of ReferralServiceInterface.
type mockReferralService struct {
	createCodeFn func(ctx context.Context, accountID string) (*model.ReferralCode, error)
	listCodesFn  func(ctx context.Context, accountID string) ([]model.ReferralCode, error)
	deleteCodeFn func(ctx context.Context, accountID, code string) error
	activityFn   func(ctx context.Context, accountID string) ([]model.ReferralActivity, error)
	useCodeFn    func(ctx context.Context, accountID, code string) (*model.ReferralActivity, error)
}

func (m *mockReferralService) Reward() int64 { return 250 }

func (m *mockReferralService) CreateCode(ctx context.Context, accountID string) (*model.ReferralCode, error) {
	if m.createCodeFn != nil {
		return m.createCodeFn(ctx, accountID)
	}
	return &model.ReferralCode{Code: "0123456789abcdef", AccountID: accountID}, nil
}

func (m *mockReferralService) ListCodes(ctx context.Context, accountID string) ([]model.ReferralCode, error) {
	if m.listCodesFn != nil {
		return m.listCodesFn(ctx, accountID)
	}
	return []model.ReferralCode{}, nil
}

func (m *mockReferralService) DeleteCode(ctx context.Context, accountID, code string) error {
	if m.deleteCodeFn != nil {
		return m.deleteCodeFn(ctx, accountID, code)
	}
	return nil
}

func (m *mockReferralService) Activity(ctx context.Context, accountID string) ([]model.ReferralActivity, error) {
	if m.activityFn != nil {
		return m.activityFn(ctx, accountID)
	}
	return []model.ReferralActivity{}, nil
}

func (m *mockReferralService) UseCode(ctx context.Context, accountID, code string) (*model.ReferralActivity, error) {
	if m.useCodeFn != nil {
		return m.useCodeFn(ctx, accountID, code)
	}
	return &model.ReferralActivity{Code: code, ReferredID: accountID, Reward: 250}, nil
}

// doJSON sends body to app and returns the status and decoded JSON object.
// A nil map is returned for empty bodies.
func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) == 0 {
		return resp.StatusCode, nil
	}

	var result map[string]any
	require.NoError(t, json.Unmarshal(raw, &result), "body: %s", raw)
	return resp.StatusCode, result
}

func post(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	return doJSON(t, app, http.MethodPost, path, body)
}

func get(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	return doJSON(t, app, http.MethodGet, path, "")
}
