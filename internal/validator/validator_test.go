package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polsommer/PanelHosting/internal/model"
	"github.com/polsommer/PanelHosting/internal/pricing"
)

func TestNotblank(t *testing.T) {
	v := New()

	type redeem struct {
		Code string `validate:"notblank"`
	}

	testCases := []struct {
		name  string
		input string
		valid bool
	}{
		{"plain", "SAVE10", true},
		{"padded", "  SAVE10  ", true},
		{"unicode", "日本語", true},
		{"spaces", "   ", false},
		{"tabs_and_newlines", " \t\n ", false},
		{"empty", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(redeem{Code: tc.input})
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNotblank_IgnoresNonStrings(t *testing.T) {
	type counter struct {
		Uses int `validate:"notblank"`
	}

	assert.NoError(t, New().Var(0, "notblank"))
	assert.NoError(t, New().Struct(counter{}))
}

func TestRedeemCouponRequestRules(t *testing.T) {
	v := New()
	long := strings.Repeat("a", 256)

	testCases := []struct {
		name  string
		req   model.RedeemCouponRequest
		valid bool
	}{
		{"valid", model.RedeemCouponRequest{AccountID: "acct-1", Code: "SAVE10"}, true},
		{"blank_account", model.RedeemCouponRequest{AccountID: "  ", Code: "SAVE10"}, false},
		{"account_too_long", model.RedeemCouponRequest{AccountID: long, Code: "SAVE10"}, false},
		{"missing_code", model.RedeemCouponRequest{AccountID: "acct-1"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.req)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestResourceValidator(t *testing.T) {
	v := New()

	for _, r := range pricing.Resources {
		req := model.PurchaseRequest{AccountID: "acct-1", Resource: string(r)}
		assert.NoError(t, v.Struct(req), r)
	}

	for _, bad := range []string{"gpu", "CPU", " cpu", ""} {
		req := model.PurchaseRequest{AccountID: "acct-1", Resource: bad}
		assert.Error(t, v.Struct(req), bad)
	}
}

func TestCreateCouponRequestRules(t *testing.T) {
	v := New()
	uses, credits, hours := 3, int64(100), 2
	zero := 0
	noCredits := int64(0)
	maxUses, maxHours := model.MaxCouponUses, model.MaxCouponExpiryHours
	tooManyUses, tooManyHours := maxUses+1, maxHours+1

	testCases := []struct {
		name        string
		req         model.CreateCouponRequest
		expectError bool
	}{
		{"valid", model.CreateCouponRequest{Code: "SAVE10", Uses: &uses, Credits: &credits}, false},
		{"valid_with_expiry", model.CreateCouponRequest{Code: "SAVE10", Uses: &uses, Credits: &credits, Expires: &hours}, false},
		{"zero_credit_coupon", model.CreateCouponRequest{Code: "FREE", Uses: &uses, Credits: &noCredits}, false},
		{"missing_uses", model.CreateCouponRequest{Code: "SAVE10", Credits: &credits}, true},
		{"zero_uses", model.CreateCouponRequest{Code: "SAVE10", Uses: &zero, Credits: &credits}, true},
		{"zero_expiry", model.CreateCouponRequest{Code: "SAVE10", Uses: &uses, Credits: &credits, Expires: &zero}, true},
		{"blank_code", model.CreateCouponRequest{Code: "  ", Uses: &uses, Credits: &credits}, true},
		{"max_uses", model.CreateCouponRequest{Code: "SAVE10", Uses: &maxUses, Credits: &credits}, false},
		{"uses_beyond_int32", model.CreateCouponRequest{Code: "SAVE10", Uses: &tooManyUses, Credits: &credits}, true},
		{"max_expiry", model.CreateCouponRequest{Code: "SAVE10", Uses: &uses, Credits: &credits, Expires: &maxHours}, false},
		{"expiry_overflow", model.CreateCouponRequest{Code: "SAVE10", Uses: &uses, Credits: &credits, Expires: &tooManyHours}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.req)
			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
