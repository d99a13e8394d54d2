// Package notifier delivers ledger events to interested parties after the
// originating transaction has committed.
package notifier

import (
	"time"

	"github.com/google/uuid"
)

// EventType names what happened.
type EventType string

const (
	CouponCreated  EventType = "coupon.created"
	CouponRedeemed EventType = "coupon.redeemed"
	StorePurchased EventType = "store.purchased"
	CreditsGranted EventType = "credits.granted"
	ReferralUsed   EventType = "referral.used"
)

// Event is a committed ledger mutation.
type Event struct {
	ID         uuid.UUID      `json:"id"`
	Type       EventType      `json:"type"`
	AccountID  string         `json:"account_id,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewEvent stamps a new event with a random ID and the current time.
func NewEvent(typ EventType, accountID string, data map[string]any) Event {
	return Event{
		ID:         uuid.New(),
		Type:       typ,
		AccountID:  accountID,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}
