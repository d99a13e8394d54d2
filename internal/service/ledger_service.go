package service

import (
	"context"
	"fmt"

	"github.com/polsommer/PanelHosting/internal/metrics"
	"github.com/polsommer/PanelHosting/internal/model"
	"github.com/polsommer/PanelHosting/internal/notifier"
	"github.com/polsommer/PanelHosting/pkg/database"
)

// LedgerService exposes account balances outside of a coupon or purchase flow.
// Each mutation is one conditional statement against the account row, which
// makes it linearizable per account without an explicit transaction.
type LedgerService struct {
	db          database.TxQuerier
	accountRepo AccountRepositoryInterface
	events      EventPublisher
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(db database.TxQuerier, accountRepo AccountRepositoryInterface, events EventPublisher) *LedgerService {
	return &LedgerService{db: db, accountRepo: accountRepo, events: events}
}

// Credit adds amount to the account, creating it on first credit, and
// returns the new balance. source labels the credit for metrics and events.
func (s *LedgerService) Credit(ctx context.Context, accountID string, amount int64, source string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	balance, err := s.accountRepo.Credit(ctx, s.db, accountID, amount)
	if err != nil {
		return 0, fmt.Errorf("credit: %w", err)
	}

	metrics.CreditsIssued.WithLabelValues(source).Add(float64(amount))
	s.events.Publish(notifier.NewEvent(notifier.CreditsGranted, accountID, map[string]any{
		"amount":  amount,
		"source":  source,
		"balance": balance,
	}))
	return balance, nil
}

// Debit removes amount from the account if the balance covers it.
// Returns ErrInsufficientFunds, leaving the balance unchanged, otherwise.
// source labels the debit for metrics.
func (s *LedgerService) Debit(ctx context.Context, accountID string, amount int64, source string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	ok, balance, err := s.accountRepo.Debit(ctx, s.db, accountID, amount)
	if err != nil {
		return 0, fmt.Errorf("debit: %w", err)
	}
	if !ok {
		return 0, ErrInsufficientFunds
	}

	metrics.CreditsSpent.WithLabelValues(source).Add(float64(amount))
	return balance, nil
}

// BalanceOf returns the account balance; unknown accounts hold zero.
func (s *LedgerService) BalanceOf(ctx context.Context, accountID string) (int64, error) {
	balance, err := s.accountRepo.Balance(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	return balance, nil
}

// Account returns the balance together with purchased resource totals.
func (s *LedgerService) Account(ctx context.Context, accountID string) (*model.AccountResponse, error) {
	balance, err := s.BalanceOf(ctx, accountID)
	if err != nil {
		return nil, err
	}

	resources, err := s.accountRepo.Resources(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("resources: %w", err)
	}

	return &model.AccountResponse{
		AccountID: accountID,
		Credits:   balance,
		Resources: resources,
	}, nil
}
