package model

import (
	"time"

	"github.com/google/uuid"
)

// AccountResponse is the API view of an account's balance and purchased resources.
type AccountResponse struct {
	AccountID string           `json:"account_id"`
	Credits   int64            `json:"credits"`
	Resources map[string]int64 `json:"resources"`
}

// GrantCreditsRequest is the DTO for an administrative credit grant.
type GrantCreditsRequest struct {
	Amount *int64 `json:"amount" validate:"required,gte=1"`
}

// PurchaseRequest is the DTO for buying one unit of a store resource.
type PurchaseRequest struct {
	AccountID string `json:"account_id" validate:"required,notblank,max=255"`
	Resource  string `json:"resource" validate:"required,resource"`
}

// Receipt records a completed store purchase.
type Receipt struct {
	ID         uuid.UUID `json:"id"`
	AccountID  string    `json:"account_id"`
	Resource   string    `json:"resource"`
	Quantity   int64     `json:"quantity"`
	UnitCost   int64     `json:"cost"`
	NewBalance int64     `json:"balance"`
	CreatedAt  time.Time `json:"created_at"`
}

// BalanceResponse is returned by endpoints that only change the balance.
type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Credits   int64  `json:"credits"`
}
