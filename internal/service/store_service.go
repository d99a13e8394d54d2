package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/polsommer/PanelHosting/internal/metrics"
	"github.com/polsommer/PanelHosting/internal/model"
	"github.com/polsommer/PanelHosting/internal/notifier"
)

// StoreService sells resources for credits.
type StoreService struct {
	pool         TxBeginner
	prices       PriceTable
	accountRepo  AccountRepositoryInterface
	purchaseRepo PurchaseRepositoryInterface
	events       EventPublisher
	enabled      bool
}

// NewStoreService creates a new StoreService.
func NewStoreService(
	pool TxBeginner,
	prices PriceTable,
	accountRepo AccountRepositoryInterface,
	purchaseRepo PurchaseRepositoryInterface,
	events EventPublisher,
	enabled bool,
) *StoreService {
	return &StoreService{
		pool:         pool,
		prices:       prices,
		accountRepo:  accountRepo,
		purchaseRepo: purchaseRepo,
		events:       events,
		enabled:      enabled,
	}
}

// Costs returns the unit price of every resource kind.
func (s *StoreService) Costs() map[string]int64 {
	return s.prices.Costs()
}

// Purchase buys one unit of resource for the account.
// The debit, the grant and the receipt commit together or not at all.
// Returns:
//   - ErrStoreDisabled if the store is switched off
//   - ErrUnknownResource if the store does not sell resource
//   - ErrInsufficientFunds if the balance is below the unit cost
func (s *StoreService) Purchase(ctx context.Context, accountID, resource string) (*model.Receipt, error) {
	if !s.enabled {
		return nil, ErrStoreDisabled
	}

	cost, err := s.prices.PriceOf(resource)
	if err != nil {
		metrics.StorePurchases.WithLabelValues("unknown", "unknown_resource").Inc()
		return nil, err
	}
	quantity, err := s.prices.Quantity(resource)
	if err != nil {
		return nil, err
	}

	receipt, err := s.purchase(ctx, accountID, resource, cost, quantity)
	metrics.StorePurchases.WithLabelValues(resource, purchaseResult(err)).Inc()
	if err != nil {
		return nil, err
	}

	metrics.CreditsSpent.WithLabelValues("store").Add(float64(cost))
	s.events.Publish(notifier.NewEvent(notifier.StorePurchased, accountID, map[string]any{
		"receipt":  receipt.ID.String(),
		"resource": resource,
		"quantity": quantity,
		"cost":     cost,
		"balance":  receipt.NewBalance,
	}))
	return receipt, nil
}

func (s *StoreService) purchase(ctx context.Context, accountID, resource string, cost, quantity int64) (*model.Receipt, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// Free resources still need an account row for the grant to reference.
	if err := s.accountRepo.Ensure(ctx, tx, accountID); err != nil {
		return nil, fmt.Errorf("ensure account: %w", err)
	}

	ok, balance, err := s.accountRepo.Debit(ctx, tx, accountID, cost)
	if err != nil {
		return nil, fmt.Errorf("debit: %w", err)
	}
	if !ok {
		return nil, ErrInsufficientFunds
	}

	if err := s.purchaseRepo.Grant(ctx, tx, accountID, resource, quantity); err != nil {
		return nil, fmt.Errorf("grant resource: %w", err)
	}

	receipt := &model.Receipt{
		ID:         uuid.New(),
		AccountID:  accountID,
		Resource:   resource,
		Quantity:   quantity,
		UnitCost:   cost,
		NewBalance: balance,
	}
	if err := s.purchaseRepo.InsertReceipt(ctx, tx, receipt); err != nil {
		return nil, fmt.Errorf("record receipt: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return receipt, nil
}

func purchaseResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return metrics.ResultError
	}
}
