package service

import (
	"errors"

	"github.com/polsommer/PanelHosting/internal/pricing"
)

var (
	// ErrCouponExists is returned when attempting to create a coupon whose code is taken
	ErrCouponExists = errors.New("coupon with this code already exists")

	// ErrCouponNotFound is returned when a coupon code is unknown
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrCouponExpired is returned when redeeming a coupon past its expiry
	ErrCouponExpired = errors.New("coupon has expired")

	// ErrCouponExhausted is returned when a coupon has no remaining uses
	ErrCouponExhausted = errors.New("coupon has no uses left")

	// ErrAlreadyRedeemed is returned when repeat redemption is disabled and the
	// account has already redeemed the coupon
	ErrAlreadyRedeemed = errors.New("coupon already redeemed by account")

	// ErrCouponsDisabled is returned when the coupon system is switched off
	ErrCouponsDisabled = errors.New("coupons are disabled")

	// ErrUnknownResource is returned for resource kinds the store does not sell
	ErrUnknownResource = pricing.ErrUnknownResource

	// ErrInsufficientFunds is returned when a balance cannot cover a debit
	ErrInsufficientFunds = errors.New("insufficient credits")

	// ErrStoreDisabled is returned when the resource store is switched off
	ErrStoreDisabled = errors.New("store is disabled")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidAmount is returned for non-positive credit amounts
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrReferralNotFound is returned when a referral code is unknown
	ErrReferralNotFound = errors.New("referral code not found")

	// ErrSelfReferral is returned when an account uses its own referral code
	ErrSelfReferral = errors.New("cannot use your own referral code")

	// ErrAlreadyReferred is returned when an account has already used a referral code
	ErrAlreadyReferred = errors.New("account has already used a referral code")

	// ErrReferralLimit is returned when an account already owns the maximum number of codes
	ErrReferralLimit = errors.New("referral code limit reached")

	// ErrReferralCodeTaken is returned by the repository on a generated-code collision
	ErrReferralCodeTaken = errors.New("referral code already taken")
)
