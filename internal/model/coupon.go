package model

import "time"

// CouponStatus is the redemption state of a coupon at a given instant.
type CouponStatus string

const (
	CouponActive    CouponStatus = "active"
	CouponExhausted CouponStatus = "exhausted"
	CouponExpired   CouponStatus = "expired"
)

// Coupon represents a redeemable credit code.
type Coupon struct {
	Code      string     `json:"code"`
	Credits   int64      `json:"credits"`
	Uses      int        `json:"uses"` // remaining uses
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Expired reports whether the coupon expiry lies before now.
// A coupon without expiry never expires.
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// Status returns the lifecycle state of the coupon at now.
// Expiry takes precedence over exhaustion.
func (c *Coupon) Status(now time.Time) CouponStatus {
	switch {
	case c.Expired(now):
		return CouponExpired
	case c.Uses <= 0:
		return CouponExhausted
	default:
		return CouponActive
	}
}

// CouponResponse is the admin view of a coupon.
type CouponResponse struct {
	Code        string       `json:"code"`
	Credits     int64        `json:"credits"`
	Uses        int          `json:"uses"`
	ExpiresAt   *time.Time   `json:"expires_at"`
	CreatedAt   time.Time    `json:"created_at"`
	Status      CouponStatus `json:"status"`
	Redemptions int          `json:"redemptions"`
}

// Upper bounds for coupon creation. Uses is stored in an INTEGER column and the
// expiry must fit a time.Duration. The validate tags below repeat these values.
const (
	MaxCouponUses        = 2147483647
	MaxCouponExpiryHours = 876000
)

// CreateCouponRequest is the DTO for creating a coupon.
// Expires is a lifetime in hours; omitted means the coupon never expires.
type CreateCouponRequest struct {
	Code    string `json:"code" validate:"required,notblank,max=191"`
	Expires *int   `json:"expires" validate:"omitempty,gte=1,max=876000"`
	Uses    *int   `json:"uses" validate:"required,gte=1,max=2147483647"`
	Credits *int64 `json:"credits" validate:"required,gte=0"`
}

// RedeemCouponRequest is the DTO for redeeming a coupon.
type RedeemCouponRequest struct {
	AccountID string `json:"account_id" validate:"required,notblank,max=255"`
	Code      string `json:"code" validate:"required,notblank,max=191"`
}

// Redemption is the outcome of a successful coupon redemption.
type Redemption struct {
	Code       string `json:"code"`
	Credits    int64  `json:"credits"`
	NewBalance int64  `json:"balance"`
}
