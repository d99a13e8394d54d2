package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polsommer/PanelHosting/pkg/database"
)

// AccountRepository stores account balances and owned resources.
//
// Mutations take a database.TxQuerier so they can run either on the pool as
// a single atomic statement or inside a caller's transaction.
type AccountRepository struct {
	pool PoolInterface
}

// NewAccountRepository creates a new AccountRepository with the given pool.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// NewAccountRepositoryWithPool creates a new AccountRepository with a custom pool interface.
func NewAccountRepositoryWithPool(pool PoolInterface) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Ensure creates the account with a zero balance if it does not exist.
func (r *AccountRepository) Ensure(ctx context.Context, q database.TxQuerier, accountID string) error {
	query := `INSERT INTO accounts (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`

	if _, err := q.Exec(ctx, query, accountID); err != nil {
		return fmt.Errorf("ensure account %s: %w", accountID, err)
	}
	return nil
}

// Credit adds amount to the balance, creating the account on first credit,
// and returns the new balance.
func (r *AccountRepository) Credit(ctx context.Context, q database.TxQuerier, accountID string, amount int64) (int64, error) {
	query := `INSERT INTO accounts (id, credits) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET credits = accounts.credits + EXCLUDED.credits, updated_at = NOW()
		RETURNING credits`

	var balance int64
	if err := q.QueryRow(ctx, query, accountID, amount).Scan(&balance); err != nil {
		return 0, fmt.Errorf("credit account %s: %w", accountID, err)
	}
	return balance, nil
}

// Debit subtracts amount only if the balance covers it. It reports false
// without error when the account is missing or the balance is too low.
func (r *AccountRepository) Debit(ctx context.Context, q database.TxQuerier, accountID string, amount int64) (bool, int64, error) {
	query := `UPDATE accounts SET credits = credits - $2, updated_at = NOW()
		WHERE id = $1 AND credits >= $2
		RETURNING credits`

	var balance int64
	err := q.QueryRow(ctx, query, accountID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("debit account %s: %w", accountID, err)
	}
	return true, balance, nil
}

// Balance returns the current balance; unknown accounts hold zero.
func (r *AccountRepository) Balance(ctx context.Context, accountID string) (int64, error) {
	query := `SELECT credits FROM accounts WHERE id = $1`

	var balance int64
	err := r.pool.QueryRow(ctx, query, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance %s: %w", accountID, err)
	}
	return balance, nil
}

// Resources returns the purchased resource totals keyed by resource kind.
// The map is empty, not nil, when nothing has been bought.
func (r *AccountRepository) Resources(ctx context.Context, accountID string) (map[string]int64, error) {
	query := `SELECT resource, amount FROM account_resources WHERE account_id = $1`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("get resources %s: %w", accountID, err)
	}
	defer rows.Close()

	resources := map[string]int64{}
	for rows.Next() {
		var (
			kind   string
			amount int64
		)
		if err := rows.Scan(&kind, &amount); err != nil {
			return nil, fmt.Errorf("scan resource row: %w", err)
		}
		resources[kind] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resource rows: %w", err)
	}
	return resources, nil
}
