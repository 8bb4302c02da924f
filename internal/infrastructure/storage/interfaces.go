package storage

import (
	"context"
	"time"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

// Repository combines all storage operations.
// This interface allows for easy mocking in tests.
type Repository interface {
	Store

	// InTx runs fn against a transactional Store. Everything fn writes is
	// committed if it returns nil and discarded otherwise.
	InTx(ctx context.Context, fn func(Store) error) error

	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Store holds the owner-scoped record operations. Lookups and deletes of a
// record that does not exist or belongs to another owner return
// model.ErrNotFound.
type Store interface {
	TransactionRepository
	BankTransactionRepository
	MatchRepository
}

// TransactionRepository handles user-reported transactions.
type TransactionRepository interface {
	CreateTransaction(ctx context.Context, tx *model.Transaction) error
	GetTransaction(ctx context.Context, id, ownerID int64) (*model.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]*model.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *model.Transaction) error
	DeleteTransaction(ctx context.Context, id, ownerID int64) error
}

// BankTransactionRepository handles imported bank transactions.
type BankTransactionRepository interface {
	CreateBankTransaction(ctx context.Context, bank *model.BankTransaction) error
	GetBankTransaction(ctx context.Context, id, ownerID int64) (*model.BankTransaction, error)
	ListBankTransactions(ctx context.Context, filter BankTransactionFilter) ([]*model.BankTransaction, error)
	UpdateBankTransaction(ctx context.Context, bank *model.BankTransaction) error
	DeleteBankTransaction(ctx context.Context, id, ownerID int64) error
}

// MatchRepository handles persisted match rows.
type MatchRepository interface {
	CreateMatch(ctx context.Context, match *model.Match) error
	GetMatch(ctx context.Context, id, ownerID int64) (*model.Match, error)
	ListMatches(ctx context.Context, ownerID int64) ([]*model.Match, error)
	DeleteMatch(ctx context.Context, id, ownerID int64) error
}

// TransactionFilter narrows ListTransactions. Results are ordered by date,
// then ID.
type TransactionFilter struct {
	OwnerID       int64
	UnmatchedOnly bool
	From          *time.Time // inclusive calendar day
	To            *time.Time // inclusive calendar day
	Limit         int        // 0 means no limit
	Offset        int
}

// BankTransactionFilter narrows ListBankTransactions. Results are ordered by
// date, then ID.
type BankTransactionFilter struct {
	OwnerID       int64
	UnmatchedOnly bool
	From          *time.Time // inclusive calendar day
	To            *time.Time // inclusive calendar day
	Limit         int        // 0 means no limit
	Offset        int
}

// dayBounds returns the half-open [from, to) day range for the inclusive
// filter bounds. Missing bounds come back as the zero time.
func dayBounds(from, to *time.Time) (time.Time, time.Time) {
	var lo, hi time.Time
	if from != nil {
		lo = model.Day(*from)
	}
	if to != nil {
		hi = model.Day(*to).AddDate(0, 0, 1)
	}
	return lo, hi
}
