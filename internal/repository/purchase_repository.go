package repository

import (
	"context"
	"fmt"

	"github.com/polsommer/PanelHosting/internal/model"
	"github.com/polsommer/PanelHosting/pkg/database"
)

// PurchaseRepository records store grants and receipts. Both operations only
// make sense inside the purchase transaction, so it holds no pool.
type PurchaseRepository struct{}

// NewPurchaseRepository creates a new PurchaseRepository.
func NewPurchaseRepository() *PurchaseRepository {
	return &PurchaseRepository{}
}

// Grant adds quantity to the account's total for resource.
func (r *PurchaseRepository) Grant(ctx context.Context, tx database.TxQuerier, accountID, resource string, quantity int64) error {
	query := `INSERT INTO account_resources (account_id, resource, amount) VALUES ($1, $2, $3)
		ON CONFLICT (account_id, resource) DO UPDATE SET amount = account_resources.amount + EXCLUDED.amount`

	if _, err := tx.Exec(ctx, query, accountID, resource, quantity); err != nil {
		return fmt.Errorf("grant %s to %s: %w", resource, accountID, err)
	}
	return nil
}

// InsertReceipt stores the receipt and fills in its creation time.
func (r *PurchaseRepository) InsertReceipt(ctx context.Context, tx database.TxQuerier, receipt *model.Receipt) error {
	query := `INSERT INTO purchases (id, account_id, resource, quantity, cost)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	err := tx.QueryRow(ctx, query,
		receipt.ID, receipt.AccountID, receipt.Resource, receipt.Quantity, receipt.UnitCost,
	).Scan(&receipt.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}
