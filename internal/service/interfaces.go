package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/polsommer/PanelHosting/internal/model"
	"github.com/polsommer/PanelHosting/internal/notifier"
	"github.com/polsommer/PanelHosting/pkg/database"
)

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	Insert(ctx context.Context, coupon *model.Coupon) error
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	List(ctx context.Context) ([]model.CouponResponse, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error)
	DecrementUses(ctx context.Context, tx database.TxQuerier, code string) error
}

// RedemptionRepositoryInterface defines the interface for the redemption audit trail.
type RedemptionRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, code, accountID string, credits int64) error
	HasRedeemed(ctx context.Context, tx database.TxQuerier, code, accountID string) (bool, error)
	CountByCoupon(ctx context.Context, code string) (int, error)
}

// AccountRepositoryInterface defines balance storage. Every mutation is a
// single statement so it holds the account row lock only for its own duration
// unless run inside a caller's transaction.
type AccountRepositoryInterface interface {
	Ensure(ctx context.Context, q database.TxQuerier, accountID string) error
	Credit(ctx context.Context, q database.TxQuerier, accountID string, amount int64) (int64, error)
	Debit(ctx context.Context, q database.TxQuerier, accountID string, amount int64) (bool, int64, error)
	Balance(ctx context.Context, accountID string) (int64, error)
	Resources(ctx context.Context, accountID string) (map[string]int64, error)
}

// PurchaseRepositoryInterface defines resource grants and receipts.
type PurchaseRepositoryInterface interface {
	Grant(ctx context.Context, tx database.TxQuerier, accountID, resource string, quantity int64) error
	InsertReceipt(ctx context.Context, tx database.TxQuerier, receipt *model.Receipt) error
}

// ReferralRepositoryInterface defines referral code storage.
type ReferralRepositoryInterface interface {
	LockAccount(ctx context.Context, tx database.TxQuerier, accountID string) error
	CountCodes(ctx context.Context, tx database.TxQuerier, accountID string) (int, error)
	InsertCode(ctx context.Context, tx database.TxQuerier, code *model.ReferralCode) error
	ListCodes(ctx context.Context, accountID string) ([]model.ReferralCode, error)
	GetCode(ctx context.Context, tx database.TxQuerier, code string) (*model.ReferralCode, error)
	InsertUse(ctx context.Context, tx database.TxQuerier, referredID string, code *model.ReferralCode, reward int64) (*model.ReferralActivity, error)
	DeleteCode(ctx context.Context, accountID, code string) (bool, error)
	ListActivity(ctx context.Context, accountID string) ([]model.ReferralActivity, error)
}

// PriceTable is the read-only price lookup used by the store.
type PriceTable interface {
	PriceOf(kind string) (int64, error)
	Quantity(kind string) (int64, error)
	Costs() map[string]int64
}

// EventPublisher receives events after their transaction has committed.
type EventPublisher interface {
	Publish(e notifier.Event)
}
