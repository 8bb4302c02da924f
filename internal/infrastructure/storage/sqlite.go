package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

// Storage provides SQLite database access for reconciliation records.
// It implements the Repository interface.
type Storage struct {
	sqlStore
	db     *sql.DB
	logger *slog.Logger
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// One connection serialises writers and keeps ":memory:" databases whole.
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{
		sqlStore: sqlStore{q: db},
		db:       db,
		logger:   slog.Default().With(slog.String("system", "storage")),
	}

	// Run all pending migrations
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Ping checks the database connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// InTx runs fn inside a database transaction.
func (s *Storage) InTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&sqlStore{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqlStore implements Store on top of a querier.
type sqlStore struct {
	q querier
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const (
	transactionColumns     = `id, date, amount, category, type, note, owner_id, matched, bank_transaction_id`
	bankTransactionColumns = `id, date, amount, description, bank_name, account_number, owner_id, is_matched, transaction_id`
	matchColumns           = `id, transaction_id, bank_transaction_id, match_date, match_amount, owner_id, is_confirmed, created_at`
)

// ============================================================================
// Transactions
// ============================================================================

// CreateTransaction inserts tx and sets its ID.
func (s *sqlStore) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	tx.Date = model.Day(tx.Date)

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO transactions (date, amount, category, type, note, owner_id, matched, bank_transaction_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.Date, tx.Amount, tx.Category, string(tx.Type), tx.Note, tx.OwnerID, tx.Matched, nullableID(tx.BankTransactionID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read transaction id: %w", err)
	}
	tx.ID = id
	return nil
}

// GetTransaction loads one of the owner's transactions.
func (s *sqlStore) GetTransaction(ctx context.Context, id, ownerID int64) (*model.Transaction, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)

	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %d: %w", id, err)
	}
	return tx, nil
}

// ListTransactions returns the owner's transactions matching filter.
func (s *sqlStore) ListTransactions(ctx context.Context, filter TransactionFilter) ([]*model.Transaction, error) {
	where, args := listWhere(filter.OwnerID, filter.UnmatchedOnly, "matched", filter.From, filter.To)
	query := `SELECT ` + transactionColumns + ` FROM transactions` + where +
		` ORDER BY date, id` + pageClause(filter.Limit, filter.Offset)

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]*model.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// UpdateTransaction overwrites every column of an existing transaction.
func (s *sqlStore) UpdateTransaction(ctx context.Context, tx *model.Transaction) error {
	tx.Date = model.Day(tx.Date)

	result, err := s.q.ExecContext(ctx, `
		UPDATE transactions
		SET date = ?, amount = ?, category = ?, type = ?, note = ?, matched = ?, bank_transaction_id = ?
		WHERE id = ? AND owner_id = ?`,
		tx.Date, tx.Amount, tx.Category, string(tx.Type), tx.Note, tx.Matched, nullableID(tx.BankTransactionID),
		tx.ID, tx.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %d: %w", tx.ID, err)
	}
	return requireAffected(result, "transaction", tx.ID)
}

// DeleteTransaction removes one of the owner's transactions.
func (s *sqlStore) DeleteTransaction(ctx context.Context, id, ownerID int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", id, err)
	}
	return requireAffected(result, "transaction", id)
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		tx     model.Transaction
		txType string
		bankID sql.NullInt64
	)
	if err := row.Scan(&tx.ID, &tx.Date, &tx.Amount, &tx.Category, &txType, &tx.Note,
		&tx.OwnerID, &tx.Matched, &bankID); err != nil {
		return nil, err
	}
	tx.Type = model.TransactionType(txType)
	tx.BankTransactionID = idFromNull(bankID)
	return &tx, nil
}

// ============================================================================
// Bank transactions
// ============================================================================

// CreateBankTransaction inserts bank and sets its ID.
func (s *sqlStore) CreateBankTransaction(ctx context.Context, bank *model.BankTransaction) error {
	bank.Date = model.Day(bank.Date)

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO bank_transactions (date, amount, description, bank_name, account_number, owner_id, is_matched, transaction_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		bank.Date, bank.Amount, bank.Description, bank.BankName, bank.AccountNumber, bank.OwnerID,
		bank.IsMatched, nullableID(bank.TransactionID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert bank transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read bank transaction id: %w", err)
	}
	bank.ID = id
	return nil
}

// GetBankTransaction loads one of the owner's bank transactions.
func (s *sqlStore) GetBankTransaction(ctx context.Context, id, ownerID int64) (*model.BankTransaction, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+bankTransactionColumns+` FROM bank_transactions WHERE id = ? AND owner_id = ?`, id, ownerID)

	bank, err := scanBankTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bank transaction %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bank transaction %d: %w", id, err)
	}
	return bank, nil
}

// ListBankTransactions returns the owner's bank transactions matching filter.
func (s *sqlStore) ListBankTransactions(ctx context.Context, filter BankTransactionFilter) ([]*model.BankTransaction, error) {
	where, args := listWhere(filter.OwnerID, filter.UnmatchedOnly, "is_matched", filter.From, filter.To)
	query := `SELECT ` + bankTransactionColumns + ` FROM bank_transactions` + where +
		` ORDER BY date, id` + pageClause(filter.Limit, filter.Offset)

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank transactions: %w", err)
	}
	defer rows.Close()

	banks := make([]*model.BankTransaction, 0)
	for rows.Next() {
		bank, err := scanBankTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank transaction: %w", err)
		}
		banks = append(banks, bank)
	}
	return banks, rows.Err()
}

// UpdateBankTransaction overwrites every column of an existing bank transaction.
func (s *sqlStore) UpdateBankTransaction(ctx context.Context, bank *model.BankTransaction) error {
	bank.Date = model.Day(bank.Date)

	result, err := s.q.ExecContext(ctx, `
		UPDATE bank_transactions
		SET date = ?, amount = ?, description = ?, bank_name = ?, account_number = ?, is_matched = ?, transaction_id = ?
		WHERE id = ? AND owner_id = ?`,
		bank.Date, bank.Amount, bank.Description, bank.BankName, bank.AccountNumber,
		bank.IsMatched, nullableID(bank.TransactionID), bank.ID, bank.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bank transaction %d: %w", bank.ID, err)
	}
	return requireAffected(result, "bank transaction", bank.ID)
}

// DeleteBankTransaction removes one of the owner's bank transactions.
func (s *sqlStore) DeleteBankTransaction(ctx context.Context, id, ownerID int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM bank_transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete bank transaction %d: %w", id, err)
	}
	return requireAffected(result, "bank transaction", id)
}

func scanBankTransaction(row rowScanner) (*model.BankTransaction, error) {
	var (
		bank model.BankTransaction
		txID sql.NullInt64
	)
	if err := row.Scan(&bank.ID, &bank.Date, &bank.Amount, &bank.Description, &bank.BankName,
		&bank.AccountNumber, &bank.OwnerID, &bank.IsMatched, &txID); err != nil {
		return nil, err
	}
	bank.TransactionID = idFromNull(txID)
	return &bank, nil
}

// ============================================================================
// Matches
// ============================================================================

// CreateMatch inserts match and sets its ID and creation time.
func (s *sqlStore) CreateMatch(ctx context.Context, match *model.Match) error {
	match.MatchDate = model.Day(match.MatchDate)
	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO matches (transaction_id, bank_transaction_id, match_date, match_amount, owner_id, is_confirmed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		match.TransactionID, match.BankTransactionID, match.MatchDate, match.MatchAmount,
		match.OwnerID, match.IsConfirmed, match.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read match id: %w", err)
	}
	match.ID = id
	return nil
}

// GetMatch loads one of the owner's match rows.
func (s *sqlStore) GetMatch(ctx context.Context, id, ownerID int64) (*model.Match, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = ? AND owner_id = ?`, id, ownerID)

	match, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return match, nil
}

// ListMatches returns all of the owner's match rows in creation order.
func (s *sqlStore) ListMatches(ctx context.Context, ownerID int64) ([]*model.Match, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*model.Match, 0)
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

// DeleteMatch removes one of the owner's match rows.
func (s *sqlStore) DeleteMatch(ctx context.Context, id, ownerID int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM matches WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	return requireAffected(result, "match", id)
}

func scanMatch(row rowScanner) (*model.Match, error) {
	var match model.Match
	if err := row.Scan(&match.ID, &match.TransactionID, &match.BankTransactionID, &match.MatchDate,
		&match.MatchAmount, &match.OwnerID, &match.IsConfirmed, &match.CreatedAt); err != nil {
		return nil, err
	}
	return &match, nil
}

// ============================================================================
// Helpers
// ============================================================================

// listWhere builds the WHERE clause shared by the list queries.
func listWhere(ownerID int64, unmatchedOnly bool, flagColumn string, from, to *time.Time) (string, []interface{}) {
	clauses := []string{"owner_id = ?"}
	args := []interface{}{ownerID}

	if unmatchedOnly {
		clauses = append(clauses, flagColumn+" = 0")
	}

	lo, hi := dayBounds(from, to)
	if !lo.IsZero() {
		clauses = append(clauses, "date >= ?")
		args = append(args, lo)
	}
	if !hi.IsZero() {
		clauses = append(clauses, "date < ?")
		args = append(args, hi)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func pageClause(limit, offset int) string {
	if limit <= 0 {
		if offset > 0 {
			return fmt.Sprintf(" LIMIT -1 OFFSET %d", offset)
		}
		return ""
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
}

func requireAffected(result sql.Result, kind string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, model.ErrNotFound)
	}
	return nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idFromNull(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	id := n.Int64
	return &id
}
