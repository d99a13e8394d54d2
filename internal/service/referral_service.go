package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/polsommer/PanelHosting/internal/metrics"
	"github.com/polsommer/PanelHosting/internal/model"
	"github.com/polsommer/PanelHosting/internal/notifier"
)

// ReferralCodeLength is the length of generated referral codes.
const ReferralCodeLength = 16

// codeAttempts bounds retries after a generated code collides.
const codeAttempts = 3

// ReferralService manages referral codes and rewards referrers.
type ReferralService struct {
	pool         TxBeginner
	referralRepo ReferralRepositoryInterface
	accountRepo  AccountRepositoryInterface
	events       EventPublisher
	reward       int64
	maxCodes     int
	newCode      func() string
}

// NewReferralService creates a new ReferralService.
func NewReferralService(
	pool TxBeginner,
	referralRepo ReferralRepositoryInterface,
	accountRepo AccountRepositoryInterface,
	events EventPublisher,
	reward int64,
	maxCodes int,
) *ReferralService {
	return &ReferralService{
		pool:         pool,
		referralRepo: referralRepo,
		accountRepo:  accountRepo,
		events:       events,
		reward:       reward,
		maxCodes:     maxCodes,
		newCode:      randomCode,
	}
}

// randomCode returns 16 hex characters taken from a random UUID.
func randomCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:ReferralCodeLength]
}

// Reward returns the credits paid to a referrer per use.
func (s *ReferralService) Reward() int64 {
	return s.reward
}

// CreateCode issues a new code for the account.
// Returns ErrReferralLimit when the account already owns the maximum.
func (s *ReferralService) CreateCode(ctx context.Context, accountID string) (*model.ReferralCode, error) {
	for attempt := 1; ; attempt++ {
		code, err := s.createCode(ctx, accountID)
		// A collision aborts the transaction, so each attempt gets its own.
		if errors.Is(err, ErrReferralCodeTaken) && attempt < codeAttempts {
			log.Warn().Str("account_id", accountID).Int("attempt", attempt).Msg("referral code collision, retrying")
			continue
		}
		return code, err
	}
}

func (s *ReferralService) createCode(ctx context.Context, accountID string) (*model.ReferralCode, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.referralRepo.LockAccount(ctx, tx, accountID); err != nil {
		return nil, err
	}

	n, err := s.referralRepo.CountCodes(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}
	if n >= s.maxCodes {
		return nil, ErrReferralLimit
	}

	code := &model.ReferralCode{Code: s.newCode(), AccountID: accountID}
	if err := s.referralRepo.InsertCode(ctx, tx, code); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return code, nil
}

// ListCodes returns the account's referral codes.
func (s *ReferralService) ListCodes(ctx context.Context, accountID string) ([]model.ReferralCode, error) {
	codes, err := s.referralRepo.ListCodes(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}
	return codes, nil
}

// DeleteCode removes one of the account's codes.
// Returns ErrReferralNotFound if the account owns no such code.
func (s *ReferralService) DeleteCode(ctx context.Context, accountID, code string) error {
	deleted, err := s.referralRepo.DeleteCode(ctx, accountID, code)
	if err != nil {
		return fmt.Errorf("delete code: %w", err)
	}
	if !deleted {
		return ErrReferralNotFound
	}
	return nil
}

// Activity returns the uses of the account's codes.
func (s *ReferralService) Activity(ctx context.Context, accountID string) ([]model.ReferralActivity, error) {
	activity, err := s.referralRepo.ListActivity(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return activity, nil
}

// UseCode applies a referral code for accountID and pays the referrer in the
// same transaction. An account can be referred only once.
// Returns:
//   - ErrReferralNotFound if the code doesn't exist
//   - ErrSelfReferral if the code belongs to accountID
//   - ErrAlreadyReferred if accountID used a code before
func (s *ReferralService) UseCode(ctx context.Context, accountID, code string) (*model.ReferralActivity, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	referral, err := s.referralRepo.GetCode(ctx, tx, code)
	if err != nil {
		if errors.Is(err, ErrReferralNotFound) {
			return nil, ErrReferralNotFound
		}
		return nil, fmt.Errorf("get code: %w", err)
	}
	if referral.AccountID == accountID {
		return nil, ErrSelfReferral
	}

	use, err := s.referralRepo.InsertUse(ctx, tx, accountID, referral, s.reward)
	if err != nil {
		if errors.Is(err, ErrAlreadyReferred) {
			return nil, ErrAlreadyReferred
		}
		return nil, fmt.Errorf("record use: %w", err)
	}

	var balance int64
	if s.reward > 0 {
		balance, err = s.accountRepo.Credit(ctx, tx, referral.AccountID, s.reward)
		if err != nil {
			return nil, fmt.Errorf("reward referrer: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	metrics.CreditsIssued.WithLabelValues("referral").Add(float64(s.reward))
	s.events.Publish(notifier.NewEvent(notifier.ReferralUsed, referral.AccountID, map[string]any{
		"code":        referral.Code,
		"referred_id": accountID,
		"reward":      s.reward,
		"balance":     balance,
	}))
	return use, nil
}
