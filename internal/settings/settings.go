// Package settings holds the runtime-adjustable coupon system switches.
package settings

import (
	"sync"

	"github.com/polsommer/PanelHosting/internal/config"
)

// Coupons is a snapshot of the coupon system settings.
type Coupons struct {
	Enabled               bool `json:"enabled"`
	AllowRepeatRedemption bool `json:"allow_repeat_redemption"`
}

// CouponsUpdate is a partial update; nil fields are left unchanged.
type CouponsUpdate struct {
	Enabled               *bool `json:"enabled"`
	AllowRepeatRedemption *bool `json:"allow_repeat_redemption"`
}

// Empty reports whether the update changes nothing.
func (u CouponsUpdate) Empty() bool {
	return u.Enabled == nil && u.AllowRepeatRedemption == nil
}

// Store guards the current coupon settings.
type Store struct {
	mu      sync.RWMutex
	coupons Coupons
}

// NewStore creates a Store seeded with initial.
func NewStore(initial Coupons) *Store {
	return &Store{coupons: initial}
}

// FromConfig seeds a Store from the startup configuration.
func FromConfig(cfg config.CouponsConfig) *Store {
	return NewStore(Coupons{
		Enabled:               cfg.Enabled,
		AllowRepeatRedemption: cfg.AllowRepeatRedemption,
	})
}

// Coupons returns the current settings.
func (s *Store) Coupons() Coupons {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coupons
}

// Update applies u and returns the resulting settings.
func (s *Store) Update(u CouponsUpdate) Coupons {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Enabled != nil {
		s.coupons.Enabled = *u.Enabled
	}
	if u.AllowRepeatRedemption != nil {
		s.coupons.AllowRepeatRedemption = *u.AllowRepeatRedemption
	}
	return s.coupons
}
