package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polsommer/PanelHosting/pkg/database"
)

// RedemptionRepository stores the audit trail of coupon redemptions.
type RedemptionRepository struct {
	pool PoolInterface
}

// NewRedemptionRepository creates a new RedemptionRepository with the given pool.
func NewRedemptionRepository(pool *pgxpool.Pool) *RedemptionRepository {
	return &RedemptionRepository{pool: pool}
}

// NewRedemptionRepositoryWithPool creates a new RedemptionRepository with a custom pool interface.
func NewRedemptionRepositoryWithPool(pool PoolInterface) *RedemptionRepository {
	return &RedemptionRepository{pool: pool}
}

// Insert records a redemption within a transaction. The account row must
// already exist.
func (r *RedemptionRepository) Insert(ctx context.Context, tx database.TxQuerier, code, accountID string, credits int64) error {
	query := `INSERT INTO coupon_redemptions (coupon_code, account_id, credits) VALUES ($1, $2, $3)`

	if _, err := tx.Exec(ctx, query, code, accountID, credits); err != nil {
		return fmt.Errorf("insert redemption: %w", err)
	}
	return nil
}

// HasRedeemed reports whether the account has redeemed the coupon before.
// Callers hold the coupon row lock so the answer cannot change under them.
func (r *RedemptionRepository) HasRedeemed(ctx context.Context, tx database.TxQuerier, code, accountID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM coupon_redemptions WHERE coupon_code = $1 AND account_id = $2)`

	var exists bool
	if err := tx.QueryRow(ctx, query, code, accountID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check redemption for %s: %w", code, err)
	}
	return exists, nil
}

// CountByCoupon returns how many times a coupon has been redeemed.
func (r *RedemptionRepository) CountByCoupon(ctx context.Context, code string) (int, error) {
	query := `SELECT COUNT(*) FROM coupon_redemptions WHERE coupon_code = $1`

	var n int
	if err := r.pool.QueryRow(ctx, query, code).Scan(&n); err != nil {
		return 0, fmt.Errorf("count redemptions for %s: %w", code, err)
	}
	return n, nil
}
