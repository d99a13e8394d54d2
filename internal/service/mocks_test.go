package service

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/polsommer/PanelHosting/internal/model"
	"github.com/polsommer/PanelHosting/internal/notifier"
	"github.com/polsommer/PanelHosting/pkg/database"
)

// mockCouponRepository is a mock implementation of CouponRepositoryInterface.
type mockCouponRepository struct {
	insertFn          func(ctx context.Context, coupon *model.Coupon) error
	getByCodeFn       func(ctx context.Context, code string) (*model.Coupon, error)
	listFn            func(ctx context.Context) ([]model.CouponResponse, error)
	getForUpdateFn    func(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error)
	decrementUsesFn   func(ctx context.Context, tx database.TxQuerier, code string) error
	decrementUsesHits int
}

func (m *mockCouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, coupon)
	}
	return nil
}

func (m *mockCouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, code)
	}
	return nil, nil
}

func (m *mockCouponRepository) List(ctx context.Context) ([]model.CouponResponse, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.CouponResponse{}, nil
}

func (m *mockCouponRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, code)
	}
	return nil, ErrCouponNotFound
}

func (m *mockCouponRepository) DecrementUses(ctx context.Context, tx database.TxQuerier, code string) error {
	m.decrementUsesHits++
	if m.decrementUsesFn != nil {
		return m.decrementUsesFn(ctx, tx, code)
	}
	return nil
}

// mockRedemptionRepository is a mock implementation of RedemptionRepositoryInterface.
type mockRedemptionRepository struct {
	insertFn        func(ctx context.Context, tx database.TxQuerier, code, accountID string, credits int64) error
	hasRedeemedFn   func(ctx context.Context, tx database.TxQuerier, code, accountID string) (bool, error)
	countByCouponFn func(ctx context.Context, code string) (int, error)
	inserted        int
}

func (m *mockRedemptionRepository) Insert(ctx context.Context, tx database.TxQuerier, code, accountID string, credits int64) error {
	m.inserted++
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, code, accountID, credits)
	}
	return nil
}

func (m *mockRedemptionRepository) HasRedeemed(ctx context.Context, tx database.TxQuerier, code, accountID string) (bool, error) {
	if m.hasRedeemedFn != nil {
		return m.hasRedeemedFn(ctx, tx, code, accountID)
	}
	return false, nil
}

func (m *mockRedemptionRepository) CountByCoupon(ctx context.Context, code string) (int, error) {
	if m.countByCouponFn != nil {
		return m.countByCouponFn(ctx, code)
	}
	return 0, nil
}

// mockAccountRepository keeps balances in memory so flows can be checked end
// to end. Mutations made through a mockTx are staged and only applied when
// the transaction commits.
type mockAccountRepository struct {
	mu        sync.Mutex
	balances  map[string]int64
	resources map[string]map[string]int64

	ensureFn  func(ctx context.Context, q database.TxQuerier, accountID string) error
	creditFn  func(ctx context.Context, q database.TxQuerier, accountID string, amount int64) (int64, error)
	debitFn   func(ctx context.Context, q database.TxQuerier, accountID string, amount int64) (bool, int64, error)
	balanceFn func(ctx context.Context, accountID string) (int64, error)
}

func newMockAccountRepository(balances map[string]int64) *mockAccountRepository {
	if balances == nil {
		balances = map[string]int64{}
	}
	return &mockAccountRepository{balances: balances, resources: map[string]map[string]int64{}}
}

func (m *mockAccountRepository) Ensure(ctx context.Context, q database.TxQuerier, accountID string) error {
	if m.ensureFn != nil {
		return m.ensureFn(ctx, q, accountID)
	}
	return nil
}

func (m *mockAccountRepository) Credit(ctx context.Context, q database.TxQuerier, accountID string, amount int64) (int64, error) {
	if m.creditFn != nil {
		return m.creditFn(ctx, q, accountID, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	balance := m.balances[accountID] + amount
	m.apply(q, func() { m.balances[accountID] = balance })
	return balance, nil
}

func (m *mockAccountRepository) Debit(ctx context.Context, q database.TxQuerier, accountID string, amount int64) (bool, int64, error) {
	if m.debitFn != nil {
		return m.debitFn(ctx, q, accountID, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[accountID] < amount {
		return false, 0, nil
	}
	balance := m.balances[accountID] - amount
	m.apply(q, func() { m.balances[accountID] = balance })
	return true, balance, nil
}

func (m *mockAccountRepository) Balance(ctx context.Context, accountID string) (int64, error) {
	if m.balanceFn != nil {
		return m.balanceFn(ctx, accountID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[accountID], nil
}

func (m *mockAccountRepository) Resources(ctx context.Context, accountID string) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int64{}
	for k, v := range m.resources[accountID] {
		out[k] = v
	}
	return out, nil
}

func (m *mockAccountRepository) balance(accountID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[accountID]
}

// apply runs mutate now, or on commit when q is a mockTx.
func (m *mockAccountRepository) apply(q database.TxQuerier, mutate func()) {
	if tx, ok := q.(*mockTx); ok {
		tx.onCommit = append(tx.onCommit, func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			mutate()
		})
		return
	}
	mutate()
}

// mockPurchaseRepository is a mock implementation of PurchaseRepositoryInterface.
type mockPurchaseRepository struct {
	grantFn         func(ctx context.Context, tx database.TxQuerier, accountID, resource string, quantity int64) error
	insertReceiptFn func(ctx context.Context, tx database.TxQuerier, receipt *model.Receipt) error
	grants          int
}

func (m *mockPurchaseRepository) Grant(ctx context.Context, tx database.TxQuerier, accountID, resource string, quantity int64) error {
	m.grants++
	if m.grantFn != nil {
		return m.grantFn(ctx, tx, accountID, resource, quantity)
	}
	return nil
}

func (m *mockPurchaseRepository) InsertReceipt(ctx context.Context, tx database.TxQuerier, receipt *model.Receipt) error {
	if m.insertReceiptFn != nil {
		return m.insertReceiptFn(ctx, tx, receipt)
	}
	return nil
}

// mockReferralRepository is a mock implementation of ReferralRepositoryInterface.
type mockReferralRepository struct {
	lockAccountFn  func(ctx context.Context, tx database.TxQuerier, accountID string) error
	countCodesFn   func(ctx context.Context, tx database.TxQuerier, accountID string) (int, error)
	insertCodeFn   func(ctx context.Context, tx database.TxQuerier, code *model.ReferralCode) error
	listCodesFn    func(ctx context.Context, accountID string) ([]model.ReferralCode, error)
	getCodeFn      func(ctx context.Context, tx database.TxQuerier, code string) (*model.ReferralCode, error)
	insertUseFn    func(ctx context.Context, tx database.TxQuerier, referredID string, code *model.ReferralCode, reward int64) (*model.ReferralActivity, error)
	deleteCodeFn   func(ctx context.Context, accountID, code string) (bool, error)
	listActivityFn func(ctx context.Context, accountID string) ([]model.ReferralActivity, error)
}

func (m *mockReferralRepository) LockAccount(ctx context.Context, tx database.TxQuerier, accountID string) error {
	if m.lockAccountFn != nil {
		return m.lockAccountFn(ctx, tx, accountID)
	}
	return nil
}

func (m *mockReferralRepository) CountCodes(ctx context.Context, tx database.TxQuerier, accountID string) (int, error) {
	if m.countCodesFn != nil {
		return m.countCodesFn(ctx, tx, accountID)
	}
	return 0, nil
}

func (m *mockReferralRepository) InsertCode(ctx context.Context, tx database.TxQuerier, code *model.ReferralCode) error {
	if m.insertCodeFn != nil {
		return m.insertCodeFn(ctx, tx, code)
	}
	return nil
}

func (m *mockReferralRepository) ListCodes(ctx context.Context, accountID string) ([]model.ReferralCode, error) {
	if m.listCodesFn != nil {
		return m.listCodesFn(ctx, accountID)
	}
	return []model.ReferralCode{}, nil
}

func (m *mockReferralRepository) GetCode(ctx context.Context, tx database.TxQuerier, code string) (*model.ReferralCode, error) {
	if m.getCodeFn != nil {
		return m.getCodeFn(ctx, tx, code)
	}
	return nil, ErrReferralNotFound
}

func (m *mockReferralRepository) InsertUse(ctx context.Context, tx database.TxQuerier, referredID string, code *model.ReferralCode, reward int64) (*model.ReferralActivity, error) {
	if m.insertUseFn != nil {
		return m.insertUseFn(ctx, tx, referredID, code, reward)
	}
	return &model.ReferralActivity{Code: code.Code, ReferredID: referredID, Reward: reward}, nil
}

func (m *mockReferralRepository) DeleteCode(ctx context.Context, accountID, code string) (bool, error) {
	if m.deleteCodeFn != nil {
		return m.deleteCodeFn(ctx, accountID, code)
	}
	return true, nil
}

func (m *mockReferralRepository) ListActivity(ctx context.Context, accountID string) ([]model.ReferralActivity, error) {
	if m.listActivityFn != nil {
		return m.listActivityFn(ctx, accountID)
	}
	return []model.ReferralActivity{}, nil
}

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
	onCommit   []func()
	committed  bool
	rolledBack bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		if err := m.commitFn(ctx); err != nil {
			return err
		}
	}
	m.committed = true
	for _, fn := range m.onCommit {
		fn()
	}
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if !m.committed {
		m.rolledBack = true
	}
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

// beginnerFor returns a TxBeginner that always hands out tx.
func beginnerFor(tx *mockTx) *mockTxBeginner {
	return &mockTxBeginner{beginFn: func(ctx context.Context) (pgx.Tx, error) { return tx, nil }}
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []notifier.Event
}

func (p *recordingPublisher) Publish(e notifier.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []notifier.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notifier.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func intPtr(i int) *int {
	return &i
}

func int64Ptr(i int64) *int64 {
	return &i
}
