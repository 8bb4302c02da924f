package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

// MockRepository is an in-memory implementation of Repository for testing.
// Records are copied on the way in and out so callers cannot mutate stored
// state without going through an update, the same as a real database.
type MockRepository struct {
	mu sync.Mutex

	transactions     map[int64]*model.Transaction
	bankTransactions map[int64]*model.BankTransaction
	matches          map[int64]*model.Match
	nextID           int64

	// Hooks for test assertions
	InTxCalls   int
	Rollbacks   int
	LastCreated *model.Match

	// Error injection for testing error paths
	CreateTransactionErr     error
	UpdateTransactionErr     error
	ListTransactionsErr      error
	CreateBankTransactionErr error
	UpdateBankTransactionErr error
	ListBankTransactionsErr  error
	CreateMatchErr           error
	DeleteMatchErr           error
	ListMatchesErr           error
	PingErr                  error

	// FailAfterBankCreates makes CreateBankTransaction fail once this many
	// bank transactions have been created. Zero disables it.
	FailAfterBankCreates int
	bankCreates          int
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		transactions:     make(map[int64]*model.Transaction),
		bankTransactions: make(map[int64]*model.BankTransaction),
		matches:          make(map[int64]*model.Match),
		nextID:           1,
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Ping returns PingErr.
func (m *MockRepository) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PingErr
}

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// InTx snapshots the stored records, runs fn and restores the snapshot if fn
// fails.
func (m *MockRepository) InTx(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	m.InTxCalls++
	txs, banks, matches := m.snapshotLocked()
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.transactions, m.bankTransactions, m.matches = txs, banks, matches
		m.Rollbacks++
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *MockRepository) snapshotLocked() (map[int64]*model.Transaction, map[int64]*model.BankTransaction, map[int64]*model.Match) {
	txs := make(map[int64]*model.Transaction, len(m.transactions))
	for id, tx := range m.transactions {
		txs[id] = cloneTransaction(tx)
	}
	banks := make(map[int64]*model.BankTransaction, len(m.bankTransactions))
	for id, bank := range m.bankTransactions {
		banks[id] = cloneBankTransaction(bank)
	}
	matches := make(map[int64]*model.Match, len(m.matches))
	for id, match := range m.matches {
		c := *match
		matches[id] = &c
	}
	return txs, banks, matches
}

// ============================================================================
// Transactions
// ============================================================================

func (m *MockRepository) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateTransactionErr != nil {
		return m.CreateTransactionErr
	}

	tx.ID = m.nextID
	m.nextID++
	tx.Date = model.Day(tx.Date)
	m.transactions[tx.ID] = cloneTransaction(tx)
	return nil
}

func (m *MockRepository) GetTransaction(ctx context.Context, id, ownerID int64) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.transactions[id]
	if !ok || tx.OwnerID != ownerID {
		return nil, fmt.Errorf("transaction %d: %w", id, model.ErrNotFound)
	}
	return cloneTransaction(tx), nil
}

func (m *MockRepository) ListTransactions(ctx context.Context, filter TransactionFilter) ([]*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListTransactionsErr != nil {
		return nil, m.ListTransactionsErr
	}

	lo, hi := dayBounds(filter.From, filter.To)
	result := make([]*model.Transaction, 0)
	for _, tx := range m.transactions {
		if tx.OwnerID != filter.OwnerID || (filter.UnmatchedOnly && tx.Matched) || !inDays(tx.Date, lo, hi) {
			continue
		}
		result = append(result, cloneTransaction(tx))
	}

	sort.Slice(result, func(i, j int) bool {
		return dateThenID(result[i].Date, result[i].ID, result[j].Date, result[j].ID)
	})
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (m *MockRepository) UpdateTransaction(ctx context.Context, tx *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateTransactionErr != nil {
		return m.UpdateTransactionErr
	}

	existing, ok := m.transactions[tx.ID]
	if !ok || existing.OwnerID != tx.OwnerID {
		return fmt.Errorf("transaction %d: %w", tx.ID, model.ErrNotFound)
	}
	tx.Date = model.Day(tx.Date)
	m.transactions[tx.ID] = cloneTransaction(tx)
	return nil
}

func (m *MockRepository) DeleteTransaction(ctx context.Context, id, ownerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.transactions[id]
	if !ok || tx.OwnerID != ownerID {
		return fmt.Errorf("transaction %d: %w", id, model.ErrNotFound)
	}
	delete(m.transactions, id)
	return nil
}

// ============================================================================
// Bank transactions
// ============================================================================

func (m *MockRepository) CreateBankTransaction(ctx context.Context, bank *model.BankTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateBankTransactionErr != nil {
		return m.CreateBankTransactionErr
	}
	if m.FailAfterBankCreates > 0 && m.bankCreates >= m.FailAfterBankCreates {
		return fmt.Errorf("injected failure after %d bank transactions", m.bankCreates)
	}
	m.bankCreates++

	bank.ID = m.nextID
	m.nextID++
	bank.Date = model.Day(bank.Date)
	m.bankTransactions[bank.ID] = cloneBankTransaction(bank)
	return nil
}

func (m *MockRepository) GetBankTransaction(ctx context.Context, id, ownerID int64) (*model.BankTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bank, ok := m.bankTransactions[id]
	if !ok || bank.OwnerID != ownerID {
		return nil, fmt.Errorf("bank transaction %d: %w", id, model.ErrNotFound)
	}
	return cloneBankTransaction(bank), nil
}

func (m *MockRepository) ListBankTransactions(ctx context.Context, filter BankTransactionFilter) ([]*model.BankTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListBankTransactionsErr != nil {
		return nil, m.ListBankTransactionsErr
	}

	lo, hi := dayBounds(filter.From, filter.To)
	result := make([]*model.BankTransaction, 0)
	for _, bank := range m.bankTransactions {
		if bank.OwnerID != filter.OwnerID || (filter.UnmatchedOnly && bank.IsMatched) || !inDays(bank.Date, lo, hi) {
			continue
		}
		result = append(result, cloneBankTransaction(bank))
	}

	sort.Slice(result, func(i, j int) bool {
		return dateThenID(result[i].Date, result[i].ID, result[j].Date, result[j].ID)
	})
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (m *MockRepository) UpdateBankTransaction(ctx context.Context, bank *model.BankTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateBankTransactionErr != nil {
		return m.UpdateBankTransactionErr
	}

	existing, ok := m.bankTransactions[bank.ID]
	if !ok || existing.OwnerID != bank.OwnerID {
		return fmt.Errorf("bank transaction %d: %w", bank.ID, model.ErrNotFound)
	}
	bank.Date = model.Day(bank.Date)
	m.bankTransactions[bank.ID] = cloneBankTransaction(bank)
	return nil
}

func (m *MockRepository) DeleteBankTransaction(ctx context.Context, id, ownerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bank, ok := m.bankTransactions[id]
	if !ok || bank.OwnerID != ownerID {
		return fmt.Errorf("bank transaction %d: %w", id, model.ErrNotFound)
	}
	delete(m.bankTransactions, id)
	return nil
}

// ============================================================================
// Matches
// ============================================================================

func (m *MockRepository) CreateMatch(ctx context.Context, match *model.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateMatchErr != nil {
		return m.CreateMatchErr
	}

	match.ID = m.nextID
	m.nextID++
	match.MatchDate = model.Day(match.MatchDate)
	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	stored := *match
	m.matches[match.ID] = &stored
	created := *match
	m.LastCreated = &created
	return nil
}

func (m *MockRepository) GetMatch(ctx context.Context, id, ownerID int64) (*model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	match, ok := m.matches[id]
	if !ok || match.OwnerID != ownerID {
		return nil, fmt.Errorf("match %d: %w", id, model.ErrNotFound)
	}
	c := *match
	return &c, nil
}

func (m *MockRepository) ListMatches(ctx context.Context, ownerID int64) ([]*model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListMatchesErr != nil {
		return nil, m.ListMatchesErr
	}

	result := make([]*model.Match, 0)
	for _, match := range m.matches {
		if match.OwnerID != ownerID {
			continue
		}
		c := *match
		result = append(result, &c)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockRepository) DeleteMatch(ctx context.Context, id, ownerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteMatchErr != nil {
		return m.DeleteMatchErr
	}

	match, ok := m.matches[id]
	if !ok || match.OwnerID != ownerID {
		return fmt.Errorf("match %d: %w", id, model.ErrNotFound)
	}
	delete(m.matches, id)
	return nil
}

// ============================================================================
// Test helpers
// ============================================================================

// AddTransaction stores tx as-is, keeping a preset ID. Used for test setup.
func (m *MockRepository) AddTransaction(tx *model.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tx.ID == 0 {
		tx.ID = m.nextID
	}
	if tx.ID >= m.nextID {
		m.nextID = tx.ID + 1
	}
	m.transactions[tx.ID] = cloneTransaction(tx)
}

// AddBankTransaction stores bank as-is, keeping a preset ID. Used for test setup.
func (m *MockRepository) AddBankTransaction(bank *model.BankTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if bank.ID == 0 {
		bank.ID = m.nextID
	}
	if bank.ID >= m.nextID {
		m.nextID = bank.ID + 1
	}
	m.bankTransactions[bank.ID] = cloneBankTransaction(bank)
}

// TransactionCount returns the number of stored transactions.
func (m *MockRepository) TransactionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transactions)
}

// BankTransactionCount returns the number of stored bank transactions.
func (m *MockRepository) BankTransactionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bankTransactions)
}

// MatchCount returns the number of stored match rows.
func (m *MockRepository) MatchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.matches)
}

// Reset clears all stored data and error injections
func (m *MockRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transactions = make(map[int64]*model.Transaction)
	m.bankTransactions = make(map[int64]*model.BankTransaction)
	m.matches = make(map[int64]*model.Match)
	m.nextID = 1
	m.bankCreates = 0

	m.InTxCalls = 0
	m.Rollbacks = 0
	m.LastCreated = nil

	m.CreateTransactionErr = nil
	m.UpdateTransactionErr = nil
	m.ListTransactionsErr = nil
	m.CreateBankTransactionErr = nil
	m.UpdateBankTransactionErr = nil
	m.ListBankTransactionsErr = nil
	m.CreateMatchErr = nil
	m.DeleteMatchErr = nil
	m.ListMatchesErr = nil
	m.PingErr = nil
	m.FailAfterBankCreates = 0
}

func cloneTransaction(tx *model.Transaction) *model.Transaction {
	c := *tx
	c.BankTransactionID = copyID(tx.BankTransactionID)
	return &c
}

func cloneBankTransaction(bank *model.BankTransaction) *model.BankTransaction {
	c := *bank
	c.TransactionID = copyID(bank.TransactionID)
	return &c
}

func inDays(date, lo, hi time.Time) bool {
	if !lo.IsZero() && date.Before(lo) {
		return false
	}
	if !hi.IsZero() && !date.Before(hi) {
		return false
	}
	return true
}

func dateThenID(aDate time.Time, aID int64, bDate time.Time, bID int64) bool {
	if !aDate.Equal(bDate) {
		return aDate.Before(bDate)
	}
	return aID < bID
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
