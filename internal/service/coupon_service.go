package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/polsommer/PanelHosting/internal/metrics"
	"github.com/polsommer/PanelHosting/internal/model"
	"github.com/polsommer/PanelHosting/internal/notifier"
	"github.com/polsommer/PanelHosting/internal/settings"
)

// CouponService provides business logic for coupon operations.
type CouponService struct {
	pool           TxBeginner
	couponRepo     CouponRepositoryInterface
	redemptionRepo RedemptionRepositoryInterface
	accountRepo    AccountRepositoryInterface
	settings       *settings.Store
	events         EventPublisher
	now            func() time.Time
}

// NewCouponService creates a new CouponService. The pool is usually a
// *pgxpool.Pool; tests pass their own TxBeginner.
func NewCouponService(
	pool TxBeginner,
	couponRepo CouponRepositoryInterface,
	redemptionRepo RedemptionRepositoryInterface,
	accountRepo AccountRepositoryInterface,
	store *settings.Store,
	events EventPublisher,
) *CouponService {
	return &CouponService{
		pool:           pool,
		couponRepo:     couponRepo,
		redemptionRepo: redemptionRepo,
		accountRepo:    accountRepo,
		settings:       store,
		events:         events,
		now:            time.Now,
	}
}

// WithClock replaces the time source used for expiry.
func (s *CouponService) WithClock(now func() time.Time) *CouponService {
	s.now = now
	return s
}

// Create creates a new coupon from the request.
// Returns ErrCouponExists if a coupon with the same code already exists; the
// existing coupon is left untouched.
// Returns ErrInvalidRequest if request data is nil, incomplete or out of range.
func (s *CouponService) Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error) {
	if req == nil || req.Uses == nil || req.Credits == nil {
		return nil, ErrInvalidRequest
	}
	if *req.Uses < 1 || *req.Uses > model.MaxCouponUses || *req.Credits < 0 {
		return nil, ErrInvalidRequest
	}
	if req.Expires != nil && (*req.Expires < 1 || *req.Expires > model.MaxCouponExpiryHours) {
		return nil, ErrInvalidRequest
	}

	now := s.now().UTC()
	coupon := &model.Coupon{
		Code:      req.Code,
		Credits:   *req.Credits,
		Uses:      *req.Uses,
		CreatedAt: now,
	}
	if req.Expires != nil {
		expiresAt := now.Add(time.Duration(*req.Expires) * time.Hour)
		coupon.ExpiresAt = &expiresAt
	}

	if err := s.couponRepo.Insert(ctx, coupon); err != nil {
		return nil, err
	}

	s.events.Publish(notifier.NewEvent(notifier.CouponCreated, "", map[string]any{
		"code":    coupon.Code,
		"credits": coupon.Credits,
		"uses":    coupon.Uses,
	}))
	return coupon, nil
}

// Get retrieves a coupon with its current status and redemption count.
// Returns ErrCouponNotFound if the coupon doesn't exist.
func (s *CouponService) Get(ctx context.Context, code string) (*model.CouponResponse, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	redemptions, err := s.redemptionRepo.CountByCoupon(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("count redemptions: %w", err)
	}

	return &model.CouponResponse{
		Code:        coupon.Code,
		Credits:     coupon.Credits,
		Uses:        coupon.Uses,
		ExpiresAt:   coupon.ExpiresAt,
		CreatedAt:   coupon.CreatedAt,
		Status:      coupon.Status(s.now()),
		Redemptions: redemptions,
	}, nil
}

// List returns every coupon, including exhausted and expired ones.
func (s *CouponService) List(ctx context.Context) ([]model.CouponResponse, error) {
	coupons, err := s.couponRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}

	now := s.now()
	for i := range coupons {
		c := model.Coupon{Uses: coupons[i].Uses, ExpiresAt: coupons[i].ExpiresAt}
		coupons[i].Status = c.Status(now)
	}
	return coupons, nil
}

// Settings returns the current coupon settings.
func (s *CouponService) Settings() settings.Coupons {
	return s.settings.Coupons()
}

// UpdateSettings applies a partial settings update.
func (s *CouponService) UpdateSettings(u settings.CouponsUpdate) settings.Coupons {
	updated := s.settings.Update(u)
	log.Info().
		Bool("enabled", updated.Enabled).
		Bool("allow_repeat_redemption", updated.AllowRepeatRedemption).
		Msg("coupon settings updated")
	return updated
}

// Redeem atomically consumes one use of a coupon and credits the account.
// Uses SELECT FOR UPDATE to lock the coupon row during the transaction, so
// concurrent redemptions of the same code serialize and never exceed its uses.
// Returns:
//   - ErrCouponsDisabled if the coupon system is switched off
//   - ErrCouponNotFound if the coupon doesn't exist
//   - ErrCouponExpired if the coupon's expiry has passed
//   - ErrCouponExhausted if the coupon has no remaining uses
//   - ErrAlreadyRedeemed if repeat redemption is disabled and the account redeemed it before
func (s *CouponService) Redeem(ctx context.Context, accountID, code string) (*model.Redemption, error) {
	cfg := s.settings.Coupons()
	if !cfg.Enabled {
		metrics.CouponRedemptions.WithLabelValues(redemptionResult(ErrCouponsDisabled)).Inc()
		return nil, ErrCouponsDisabled
	}

	redemption, err := s.redeem(ctx, accountID, code, cfg.AllowRepeatRedemption)
	metrics.CouponRedemptions.WithLabelValues(redemptionResult(err)).Inc()
	if err != nil {
		return nil, err
	}

	metrics.CreditsIssued.WithLabelValues("coupon").Add(float64(redemption.Credits))
	s.events.Publish(notifier.NewEvent(notifier.CouponRedeemed, accountID, map[string]any{
		"code":    redemption.Code,
		"credits": redemption.Credits,
		"balance": redemption.NewBalance,
	}))
	return redemption, nil
}

func (s *CouponService) redeem(ctx context.Context, accountID, code string, allowRepeat bool) (*model.Redemption, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// 1. Lock the coupon row (SELECT FOR UPDATE)
	coupon, err := s.couponRepo.GetForUpdate(ctx, tx, code)
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update: %w", err)
	}

	// 2. Expiry before exhaustion
	if coupon.Expired(s.now()) {
		return nil, ErrCouponExpired
	}
	if coupon.Uses <= 0 {
		return nil, ErrCouponExhausted
	}

	// 3. Per-account repeat check, safe under the coupon lock
	if !allowRepeat {
		redeemed, err := s.redemptionRepo.HasRedeemed(ctx, tx, code, accountID)
		if err != nil {
			return nil, fmt.Errorf("check previous redemption: %w", err)
		}
		if redeemed {
			return nil, ErrAlreadyRedeemed
		}
	}

	// 4. Consume a use
	if err := s.couponRepo.DecrementUses(ctx, tx, code); err != nil {
		if errors.Is(err, ErrCouponExhausted) {
			return nil, ErrCouponExhausted
		}
		return nil, fmt.Errorf("decrement uses: %w", err)
	}

	// 5. Credit the account, then record the redemption against it
	balance, err := s.accountRepo.Credit(ctx, tx, accountID, coupon.Credits)
	if err != nil {
		return nil, fmt.Errorf("credit account: %w", err)
	}
	if err := s.redemptionRepo.Insert(ctx, tx, code, accountID, coupon.Credits); err != nil {
		return nil, fmt.Errorf("record redemption: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &model.Redemption{
		Code:       coupon.Code,
		Credits:    coupon.Credits,
		NewBalance: balance,
	}, nil
}

func redemptionResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, ErrCouponsDisabled):
		return "disabled"
	case errors.Is(err, ErrCouponNotFound):
		return "not_found"
	case errors.Is(err, ErrCouponExpired):
		return "expired"
	case errors.Is(err, ErrCouponExhausted):
		return "exhausted"
	case errors.Is(err, ErrAlreadyRedeemed):
		return "already_redeemed"
	default:
		return metrics.ResultError
	}
}
