package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

// PostgresStorage provides PostgreSQL access through GORM.
// It implements the Repository interface.
type PostgresStorage struct {
	gormStore
	logger *slog.Logger
}

// Compile-time check that PostgresStorage implements Repository
var _ Repository = (*PostgresStorage)(nil)

// NewPostgresStorage connects to dsn and brings the schema up to date.
func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.AutoMigrate(&transactionRow{}, &bankTransactionRow{}, &matchRow{}); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("failed to migrate postgres schema: %w", err)
	}

	p := &PostgresStorage{
		gormStore: gormStore{db: db},
		logger:    slog.Default().With(slog.String("system", "storage")),
	}
	p.logger.Info("postgres schema ready", slog.String("driver", "postgres"))

	return p, nil
}

// Ping checks the connection pool.
func (p *PostgresStorage) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (p *PostgresStorage) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InTx runs fn inside a database transaction.
func (p *PostgresStorage) InTx(ctx context.Context, fn func(Store) error) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// gormStore implements Store on top of a *gorm.DB, which may be a transaction.
type gormStore struct {
	db *gorm.DB
}

// ============================================================================
// Transactions
// ============================================================================

func (s *gormStore) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	row := newTransactionRow(tx)
	row.ID = 0
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	tx.ID = row.ID
	tx.Date = row.Date
	return nil
}

func (s *gormStore) GetTransaction(ctx context.Context, id, ownerID int64) (*model.Transaction, error) {
	var row transactionRow
	err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("transaction %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %d: %w", id, err)
	}
	return row.toModel(), nil
}

func (s *gormStore) ListTransactions(ctx context.Context, filter TransactionFilter) ([]*model.Transaction, error) {
	query := s.listQuery(ctx, &transactionRow{}, filter.OwnerID, filter.UnmatchedOnly, "matched",
		filter.From, filter.To, filter.Limit, filter.Offset)

	var rows []transactionRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	txs := make([]*model.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, row.toModel())
	}
	return txs, nil
}

func (s *gormStore) UpdateTransaction(ctx context.Context, tx *model.Transaction) error {
	tx.Date = model.Day(tx.Date)
	result := s.db.WithContext(ctx).Model(&transactionRow{}).
		Where("id = ? AND owner_id = ?", tx.ID, tx.OwnerID).
		Updates(map[string]interface{}{
			"date":                tx.Date,
			"amount":              tx.Amount,
			"category":            tx.Category,
			"type":                string(tx.Type),
			"note":                tx.Note,
			"matched":             tx.Matched,
			"bank_transaction_id": tx.BankTransactionID,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction %d: %w", tx.ID, result.Error)
	}
	return affected(result.RowsAffected, "transaction", tx.ID)
}

func (s *gormStore) DeleteTransaction(ctx context.Context, id, ownerID int64) error {
	result := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&transactionRow{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", id, result.Error)
	}
	return affected(result.RowsAffected, "transaction", id)
}

// ============================================================================
// Bank transactions
// ============================================================================

func (s *gormStore) CreateBankTransaction(ctx context.Context, bank *model.BankTransaction) error {
	row := newBankTransactionRow(bank)
	row.ID = 0
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert bank transaction: %w", err)
	}
	bank.ID = row.ID
	bank.Date = row.Date
	return nil
}

func (s *gormStore) GetBankTransaction(ctx context.Context, id, ownerID int64) (*model.BankTransaction, error) {
	var row bankTransactionRow
	err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("bank transaction %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bank transaction %d: %w", id, err)
	}
	return row.toModel(), nil
}

func (s *gormStore) ListBankTransactions(ctx context.Context, filter BankTransactionFilter) ([]*model.BankTransaction, error) {
	query := s.listQuery(ctx, &bankTransactionRow{}, filter.OwnerID, filter.UnmatchedOnly, "is_matched",
		filter.From, filter.To, filter.Limit, filter.Offset)

	var rows []bankTransactionRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list bank transactions: %w", err)
	}

	banks := make([]*model.BankTransaction, 0, len(rows))
	for _, row := range rows {
		banks = append(banks, row.toModel())
	}
	return banks, nil
}

func (s *gormStore) UpdateBankTransaction(ctx context.Context, bank *model.BankTransaction) error {
	bank.Date = model.Day(bank.Date)
	result := s.db.WithContext(ctx).Model(&bankTransactionRow{}).
		Where("id = ? AND owner_id = ?", bank.ID, bank.OwnerID).
		Updates(map[string]interface{}{
			"date":           bank.Date,
			"amount":         bank.Amount,
			"description":    bank.Description,
			"bank_name":      bank.BankName,
			"account_number": bank.AccountNumber,
			"is_matched":     bank.IsMatched,
			"transaction_id": bank.TransactionID,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update bank transaction %d: %w", bank.ID, result.Error)
	}
	return affected(result.RowsAffected, "bank transaction", bank.ID)
}

func (s *gormStore) DeleteBankTransaction(ctx context.Context, id, ownerID int64) error {
	result := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&bankTransactionRow{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete bank transaction %d: %w", id, result.Error)
	}
	return affected(result.RowsAffected, "bank transaction", id)
}

// ============================================================================
// Matches
// ============================================================================

func (s *gormStore) CreateMatch(ctx context.Context, match *model.Match) error {
	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	row := newMatchRow(match)
	row.ID = 0
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	match.ID = row.ID
	match.MatchDate = row.MatchDate
	return nil
}

func (s *gormStore) GetMatch(ctx context.Context, id, ownerID int64) (*model.Match, error) {
	var row matchRow
	err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("match %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return row.toModel(), nil
}

func (s *gormStore) ListMatches(ctx context.Context, ownerID int64) ([]*model.Match, error) {
	var rows []matchRow
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	matches := make([]*model.Match, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, row.toModel())
	}
	return matches, nil
}

func (s *gormStore) DeleteMatch(ctx context.Context, id, ownerID int64) error {
	result := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&matchRow{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete match %d: %w", id, result.Error)
	}
	return affected(result.RowsAffected, "match", id)
}

// ============================================================================
// Helpers
// ============================================================================

func (s *gormStore) listQuery(ctx context.Context, table interface{}, ownerID int64, unmatchedOnly bool,
	flagColumn string, from, to *time.Time, limit, offset int) *gorm.DB {
	query := s.db.WithContext(ctx).Model(table).Where("owner_id = ?", ownerID)

	if unmatchedOnly {
		query = query.Where(flagColumn+" = ?", false)
	}

	lo, hi := dayBounds(from, to)
	if !lo.IsZero() {
		query = query.Where("date >= ?", lo)
	}
	if !hi.IsZero() {
		query = query.Where("date < ?", hi)
	}

	query = query.Order("date, id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

func affected(n int64, kind string, id int64) error {
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, model.ErrNotFound)
	}
	return nil
}
