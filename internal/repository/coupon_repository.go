package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polsommer/PanelHosting/internal/model"
	"github.com/polsommer/PanelHosting/internal/service"
	"github.com/polsommer/PanelHosting/pkg/database"
)

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// CouponRepository provides data access for coupons using pgx.
type CouponRepository struct {
	pool PoolInterface
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a new CouponRepository with a custom pool interface.
// This is primarily used for testing.
func NewCouponRepositoryWithPool(pool PoolInterface) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// Insert inserts a new coupon into the database.
// Returns service.ErrCouponExists if a coupon with the same code already exists.
func (r *CouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO coupons (code, cr_amount, uses, expires, created_at) VALUES ($1, $2, $3, $4, $5)`,
		coupon.Code, coupon.Credits, coupon.Uses, coupon.ExpiresAt, coupon.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return service.ErrCouponExists
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// GetByCode retrieves a coupon by its code.
// Returns nil, nil if the coupon is not found (service layer handles this).
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `SELECT code, cr_amount, uses, expires, created_at FROM coupons WHERE code = $1`

	var coupon model.Coupon
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&coupon.Code,
		&coupon.Credits,
		&coupon.Uses,
		&coupon.ExpiresAt,
		&coupon.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon by code %s: %w", code, err)
	}
	return &coupon, nil
}

// List returns every coupon, newest first, with its redemption count.
// Status is left for the caller since it depends on the clock.
func (r *CouponRepository) List(ctx context.Context) ([]model.CouponResponse, error) {
	query := `SELECT c.code, c.cr_amount, c.uses, c.expires, c.created_at,
		(SELECT COUNT(*) FROM coupon_redemptions r WHERE r.coupon_code = c.code)
		FROM coupons c ORDER BY c.created_at DESC, c.code`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	coupons := []model.CouponResponse{}
	for rows.Next() {
		var c model.CouponResponse
		if err := rows.Scan(&c.Code, &c.Credits, &c.Uses, &c.ExpiresAt, &c.CreatedAt, &c.Redemptions); err != nil {
			return nil, fmt.Errorf("scan coupon row: %w", err)
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupon rows: %w", err)
	}
	return coupons, nil
}

// GetForUpdate retrieves a coupon with a row lock (SELECT FOR UPDATE).
// This locks the row until the transaction completes.
// Returns service.ErrCouponNotFound if the coupon doesn't exist.
func (r *CouponRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error) {
	query := `SELECT code, cr_amount, uses, expires, created_at FROM coupons WHERE code = $1 FOR UPDATE`

	var coupon model.Coupon
	err := tx.QueryRow(ctx, query, code).Scan(
		&coupon.Code,
		&coupon.Credits,
		&coupon.Uses,
		&coupon.ExpiresAt,
		&coupon.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update %s: %w", code, err)
	}
	return &coupon, nil
}

// DecrementUses takes one use off a coupon.
// Must be called within a transaction after locking the row. The uses > 0
// guard turns a lost race into service.ErrCouponExhausted instead of a
// check-constraint failure.
func (r *CouponRepository) DecrementUses(ctx context.Context, tx database.TxQuerier, code string) error {
	query := `UPDATE coupons SET uses = uses - 1 WHERE code = $1 AND uses > 0`

	tag, err := tx.Exec(ctx, query, code)
	if err != nil {
		return fmt.Errorf("decrement uses for %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCouponExhausted
	}
	return nil
}
