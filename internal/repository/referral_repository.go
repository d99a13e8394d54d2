package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polsommer/PanelHosting/internal/model"
	"github.com/polsommer/PanelHosting/internal/service"
	"github.com/polsommer/PanelHosting/pkg/database"
)

// ReferralRepository provides data access for referral codes and their uses.
type ReferralRepository struct {
	pool PoolInterface
}

// NewReferralRepository creates a new ReferralRepository with the given pool.
func NewReferralRepository(pool *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{pool: pool}
}

// NewReferralRepositoryWithPool creates a new ReferralRepository with a custom pool interface.
func NewReferralRepositoryWithPool(pool PoolInterface) *ReferralRepository {
	return &ReferralRepository{pool: pool}
}

// LockAccount serializes referral code creation for one account until the
// transaction ends.
func (r *ReferralRepository) LockAccount(ctx context.Context, tx database.TxQuerier, accountID string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, accountID); err != nil {
		return fmt.Errorf("lock referrals for %s: %w", accountID, err)
	}
	return nil
}

// CountCodes returns how many codes the account owns.
func (r *ReferralRepository) CountCodes(ctx context.Context, tx database.TxQuerier, accountID string) (int, error) {
	var n int
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM referral_codes WHERE account_id = $1`, accountID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count referral codes for %s: %w", accountID, err)
	}
	return n, nil
}

// InsertCode stores a new code and fills in its creation time.
// Returns service.ErrReferralCodeTaken if the code collides with an existing one.
func (r *ReferralRepository) InsertCode(ctx context.Context, tx database.TxQuerier, code *model.ReferralCode) error {
	query := `INSERT INTO referral_codes (code, account_id) VALUES ($1, $2) RETURNING created_at`

	err := tx.QueryRow(ctx, query, code.Code, code.AccountID).Scan(&code.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return service.ErrReferralCodeTaken
		}
		return fmt.Errorf("insert referral code: %w", err)
	}
	return nil
}

// ListCodes returns the account's codes, oldest first.
func (r *ReferralRepository) ListCodes(ctx context.Context, accountID string) ([]model.ReferralCode, error) {
	query := `SELECT code, account_id, created_at FROM referral_codes WHERE account_id = $1 ORDER BY created_at, code`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list referral codes for %s: %w", accountID, err)
	}
	defer rows.Close()

	codes := []model.ReferralCode{}
	for rows.Next() {
		var c model.ReferralCode
		if err := rows.Scan(&c.Code, &c.AccountID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan referral code: %w", err)
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate referral code rows: %w", err)
	}
	return codes, nil
}

// GetCode looks up a code inside a transaction.
// Returns service.ErrReferralNotFound if it doesn't exist.
func (r *ReferralRepository) GetCode(ctx context.Context, tx database.TxQuerier, code string) (*model.ReferralCode, error) {
	query := `SELECT code, account_id, created_at FROM referral_codes WHERE code = $1`

	var c model.ReferralCode
	err := tx.QueryRow(ctx, query, code).Scan(&c.Code, &c.AccountID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrReferralNotFound
		}
		return nil, fmt.Errorf("get referral code %s: %w", code, err)
	}
	return &c, nil
}

// InsertUse records that referredID used the code.
// Returns service.ErrAlreadyReferred if the account has used any code before.
func (r *ReferralRepository) InsertUse(ctx context.Context, tx database.TxQuerier, referredID string, code *model.ReferralCode, reward int64) (*model.ReferralActivity, error) {
	query := `INSERT INTO referral_uses (referred_id, code, referrer_id, reward) VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	use := &model.ReferralActivity{Code: code.Code, ReferredID: referredID, Reward: reward}
	err := tx.QueryRow(ctx, query, referredID, code.Code, code.AccountID, reward).Scan(&use.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, service.ErrAlreadyReferred
		}
		return nil, fmt.Errorf("insert referral use: %w", err)
	}
	return use, nil
}

// DeleteCode removes one of the account's codes. It reports false when the
// account owns no such code. Past uses of the code are kept.
func (r *ReferralRepository) DeleteCode(ctx context.Context, accountID, code string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM referral_codes WHERE code = $1 AND account_id = $2`, code, accountID)
	if err != nil {
		return false, fmt.Errorf("delete referral code %s: %w", code, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListActivity returns the uses of the account's codes, newest first.
func (r *ReferralRepository) ListActivity(ctx context.Context, accountID string) ([]model.ReferralActivity, error) {
	query := `SELECT code, referred_id, reward, created_at FROM referral_uses
		WHERE referrer_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list referral activity for %s: %w", accountID, err)
	}
	defer rows.Close()

	activity := []model.ReferralActivity{}
	for rows.Next() {
		var a model.ReferralActivity
		if err := rows.Scan(&a.Code, &a.ReferredID, &a.Reward, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan referral activity: %w", err)
		}
		activity = append(activity, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate referral activity rows: %w", err)
	}
	return activity, nil
}
