// Package model holds the records the reconciliation engine works on.
//
// A Transaction is entered by the user, a BankTransaction is imported from a
// bank statement and a Match is a proposed pairing of the two. The matched
// flag on either side is true iff that side carries a reference to the other.
package model

import (
	"strings"
	"time"
)

// TransactionType distinguishes income from expense entries.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is a user-reported income or expense.
type Transaction struct {
	ID                int64           `json:"id"`
	Date              time.Time       `json:"date"`
	Amount            float64         `json:"amount"`
	Category          string          `json:"category"`
	Type              TransactionType `json:"type"`
	Note              string          `json:"note,omitempty"`
	OwnerID           int64           `json:"owner_id"`
	Matched           bool            `json:"matched"`
	BankTransactionID *int64          `json:"bank_transaction_id,omitempty"`
}

// Description is the text compared against a bank description: the note when
// present, otherwise the category.
func (t *Transaction) Description() string {
	if strings.TrimSpace(t.Note) != "" {
		return t.Note
	}
	return t.Category
}

// LinkTo points the transaction at a bank transaction and sets the flag.
func (t *Transaction) LinkTo(bankTransactionID int64) {
	id := bankTransactionID
	t.BankTransactionID = &id
	t.Matched = true
}

// Unlink clears the bank transaction reference and the flag.
func (t *Transaction) Unlink() {
	t.BankTransactionID = nil
	t.Matched = false
}

// LinkedTo reports whether the transaction references the given bank transaction.
func (t *Transaction) LinkedTo(bankTransactionID int64) bool {
	return t.BankTransactionID != nil && *t.BankTransactionID == bankTransactionID
}

// BankTransaction is a record imported from a bank statement.
type BankTransaction struct {
	ID            int64     `json:"id"`
	Date          time.Time `json:"date"`
	Amount        float64   `json:"amount"`
	Description   string    `json:"description"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	OwnerID       int64     `json:"owner_id"`
	IsMatched     bool      `json:"is_matched"`
	TransactionID *int64    `json:"transaction_id,omitempty"`
}

// LinkTo points the bank transaction at a transaction and sets the flag.
func (b *BankTransaction) LinkTo(transactionID int64) {
	id := transactionID
	b.TransactionID = &id
	b.IsMatched = true
}

// Unlink clears the transaction reference and the flag.
func (b *BankTransaction) Unlink() {
	b.TransactionID = nil
	b.IsMatched = false
}

// LinkedTo reports whether the bank transaction references the given transaction.
func (b *BankTransaction) LinkedTo(transactionID int64) bool {
	return b.TransactionID != nil && *b.TransactionID == transactionID
}

// Match pairs a transaction with a bank transaction. MatchDate and MatchAmount
// are copied from the bank side when the match is made and are not kept in
// sync afterwards.
type Match struct {
	ID                int64     `json:"id"`
	TransactionID     int64     `json:"transaction_id"`
	BankTransactionID int64     `json:"bank_transaction_id"`
	MatchDate         time.Time `json:"match_date"`
	MatchAmount       float64   `json:"match_amount"`
	OwnerID           int64     `json:"owner_id"`
	IsConfirmed       bool      `json:"is_confirmed"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewMatch builds an unpersisted match snapshot for the pair.
func NewMatch(t *Transaction, b *BankTransaction, confirmed bool) *Match {
	return &Match{
		TransactionID:     t.ID,
		BankTransactionID: b.ID,
		MatchDate:         b.Date,
		MatchAmount:       b.Amount,
		OwnerID:           t.OwnerID,
		IsConfirmed:       confirmed,
	}
}

// StatementRow is one normalised line of a bank statement, as produced by the
// ingestion layer.
type StatementRow struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
}
