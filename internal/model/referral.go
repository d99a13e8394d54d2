package model

import "time"

// ReferralCode is a code an account hands out to invite others.
type ReferralCode struct {
	Code      string    `json:"code"`
	AccountID string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// UseReferralRequest is the DTO for applying someone else's referral code.
type UseReferralRequest struct {
	AccountID string `json:"account_id" validate:"required,notblank,max=255"`
	Code      string `json:"code" validate:"required,notblank,len=16"`
}

// ReferralActivity is one use of an account's referral code.
type ReferralActivity struct {
	Code       string    `json:"code"`
	ReferredID string    `json:"referred_id"`
	Reward     int64     `json:"reward"`
	CreatedAt  time.Time `json:"created_at"`
}
