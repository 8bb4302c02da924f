package storage

import (
	"time"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

// Row types mapped by GORM. They mirror the SQLite migrations so both
// backends share one schema.

type transactionRow struct {
	ID                int64     `gorm:"primaryKey;autoIncrement"`
	Date              time.Time `gorm:"type:date;not null;index:idx_transactions_owner_date,priority:2"`
	Amount            float64   `gorm:"not null"`
	Category          string    `gorm:"not null"`
	Type              string    `gorm:"not null"`
	Note              string    `gorm:"not null"`
	OwnerID           int64     `gorm:"not null;index:idx_transactions_owner_date,priority:1"`
	Matched           bool      `gorm:"not null"`
	BankTransactionID *int64
}

func (transactionRow) TableName() string { return "transactions" }

func newTransactionRow(tx *model.Transaction) transactionRow {
	return transactionRow{
		ID:                tx.ID,
		Date:              model.Day(tx.Date),
		Amount:            tx.Amount,
		Category:          tx.Category,
		Type:              string(tx.Type),
		Note:              tx.Note,
		OwnerID:           tx.OwnerID,
		Matched:           tx.Matched,
		BankTransactionID: copyID(tx.BankTransactionID),
	}
}

func (r transactionRow) toModel() *model.Transaction {
	return &model.Transaction{
		ID:                r.ID,
		Date:              model.Day(r.Date),
		Amount:            r.Amount,
		Category:          r.Category,
		Type:              model.TransactionType(r.Type),
		Note:              r.Note,
		OwnerID:           r.OwnerID,
		Matched:           r.Matched,
		BankTransactionID: copyID(r.BankTransactionID),
	}
}

type bankTransactionRow struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	Date          time.Time `gorm:"type:date;not null;index:idx_bank_transactions_owner_date,priority:2"`
	Amount        float64   `gorm:"not null"`
	Description   string    `gorm:"not null"`
	BankName      string    `gorm:"not null"`
	AccountNumber string    `gorm:"not null"`
	OwnerID       int64     `gorm:"not null;index:idx_bank_transactions_owner_date,priority:1"`
	IsMatched     bool      `gorm:"not null"`
	TransactionID *int64
}

func (bankTransactionRow) TableName() string { return "bank_transactions" }

func newBankTransactionRow(b *model.BankTransaction) bankTransactionRow {
	return bankTransactionRow{
		ID:            b.ID,
		Date:          model.Day(b.Date),
		Amount:        b.Amount,
		Description:   b.Description,
		BankName:      b.BankName,
		AccountNumber: b.AccountNumber,
		OwnerID:       b.OwnerID,
		IsMatched:     b.IsMatched,
		TransactionID: copyID(b.TransactionID),
	}
}

func (r bankTransactionRow) toModel() *model.BankTransaction {
	return &model.BankTransaction{
		ID:            r.ID,
		Date:          model.Day(r.Date),
		Amount:        r.Amount,
		Description:   r.Description,
		BankName:      r.BankName,
		AccountNumber: r.AccountNumber,
		OwnerID:       r.OwnerID,
		IsMatched:     r.IsMatched,
		TransactionID: copyID(r.TransactionID),
	}
}

type matchRow struct {
	ID                int64     `gorm:"primaryKey;autoIncrement"`
	TransactionID     int64     `gorm:"not null;index"`
	BankTransactionID int64     `gorm:"not null;index"`
	MatchDate         time.Time `gorm:"type:date;not null"`
	MatchAmount       float64   `gorm:"not null"`
	OwnerID           int64     `gorm:"not null;index"`
	IsConfirmed       bool      `gorm:"not null"`
	CreatedAt         time.Time `gorm:"not null"`
}

func (matchRow) TableName() string { return "matches" }

func newMatchRow(m *model.Match) matchRow {
	return matchRow{
		ID:                m.ID,
		TransactionID:     m.TransactionID,
		BankTransactionID: m.BankTransactionID,
		MatchDate:         model.Day(m.MatchDate),
		MatchAmount:       m.MatchAmount,
		OwnerID:           m.OwnerID,
		IsConfirmed:       m.IsConfirmed,
		CreatedAt:         m.CreatedAt,
	}
}

func (r matchRow) toModel() *model.Match {
	return &model.Match{
		ID:                r.ID,
		TransactionID:     r.TransactionID,
		BankTransactionID: r.BankTransactionID,
		MatchDate:         model.Day(r.MatchDate),
		MatchAmount:       r.MatchAmount,
		OwnerID:           r.OwnerID,
		IsConfirmed:       r.IsConfirmed,
		CreatedAt:         r.CreatedAt.UTC(),
	}
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
