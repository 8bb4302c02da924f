package model

import (
	"strings"
	"time"
)

// TransactionInput is the payload for creating a transaction.
type TransactionInput struct {
	Date     time.Time
	Amount   float64
	Category string
	Type     TransactionType
	Note     string
}

// Validate checks required fields.
func (in TransactionInput) Validate() error {
	if in.Date.IsZero() {
		return Invalid("date", "is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return Invalid("category", "is required")
	}
	if !in.Type.Valid() {
		return Invalid("type", "must be income or expense")
	}
	return nil
}

// Build creates an unmatched transaction for owner.
func (in TransactionInput) Build(ownerID int64) *Transaction {
	return &Transaction{
		Date:     Day(in.Date),
		Amount:   in.Amount,
		Category: strings.TrimSpace(in.Category),
		Type:     in.Type,
		Note:     in.Note,
		OwnerID:  ownerID,
	}
}

// TransactionUpdate lists the fields of a transaction a caller may change.
// Nil fields are left untouched. Match state is not editable here.
type TransactionUpdate struct {
	Date     *time.Time
	Amount   *float64
	Category *string
	Type     *TransactionType
	Note     *string
}

// Validate checks the fields that are set.
func (u TransactionUpdate) Validate() error {
	if u.Date != nil && u.Date.IsZero() {
		return Invalid("date", "must not be empty")
	}
	if u.Category != nil && strings.TrimSpace(*u.Category) == "" {
		return Invalid("category", "must not be empty")
	}
	if u.Type != nil && !u.Type.Valid() {
		return Invalid("type", "must be income or expense")
	}
	return nil
}

// Apply copies the set fields onto t.
func (u TransactionUpdate) Apply(t *Transaction) {
	if u.Date != nil {
		t.Date = Day(*u.Date)
	}
	if u.Amount != nil {
		t.Amount = *u.Amount
	}
	if u.Category != nil {
		t.Category = strings.TrimSpace(*u.Category)
	}
	if u.Type != nil {
		t.Type = *u.Type
	}
	if u.Note != nil {
		t.Note = *u.Note
	}
}

// BankTransactionInput is the payload for creating a bank transaction.
type BankTransactionInput struct {
	Date          time.Time
	Amount        float64
	Description   string
	BankName      string
	AccountNumber string
}

// Validate checks required fields.
func (in BankTransactionInput) Validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return Invalid("description", "is required")
	}
	return in.ValidateStatementRow()
}

// ValidateStatementRow is Validate for rows imported from a statement, where
// banks may leave the description blank.
func (in BankTransactionInput) ValidateStatementRow() error {
	if in.Date.IsZero() {
		return Invalid("date", "is required")
	}
	if strings.TrimSpace(in.BankName) == "" {
		return Invalid("bank_name", "is required")
	}
	if strings.TrimSpace(in.AccountNumber) == "" {
		return Invalid("account_number", "is required")
	}
	return nil
}

// Build creates an unmatched bank transaction for owner.
func (in BankTransactionInput) Build(ownerID int64) *BankTransaction {
	return &BankTransaction{
		Date:          Day(in.Date),
		Amount:        in.Amount,
		Description:   strings.TrimSpace(in.Description),
		BankName:      strings.TrimSpace(in.BankName),
		AccountNumber: strings.TrimSpace(in.AccountNumber),
		OwnerID:       ownerID,
	}
}

// BankTransactionUpdate lists the editable fields of a bank transaction.
type BankTransactionUpdate struct {
	Date          *time.Time
	Amount        *float64
	Description   *string
	BankName      *string
	AccountNumber *string
}

// Validate checks the fields that are set.
func (u BankTransactionUpdate) Validate() error {
	if u.Date != nil && u.Date.IsZero() {
		return Invalid("date", "must not be empty")
	}
	if u.Description != nil && strings.TrimSpace(*u.Description) == "" {
		return Invalid("description", "must not be empty")
	}
	if u.BankName != nil && strings.TrimSpace(*u.BankName) == "" {
		return Invalid("bank_name", "must not be empty")
	}
	if u.AccountNumber != nil && strings.TrimSpace(*u.AccountNumber) == "" {
		return Invalid("account_number", "must not be empty")
	}
	return nil
}

// Apply copies the set fields onto b.
func (u BankTransactionUpdate) Apply(b *BankTransaction) {
	if u.Date != nil {
		b.Date = Day(*u.Date)
	}
	if u.Amount != nil {
		b.Amount = *u.Amount
	}
	if u.Description != nil {
		b.Description = strings.TrimSpace(*u.Description)
	}
	if u.BankName != nil {
		b.BankName = strings.TrimSpace(*u.BankName)
	}
	if u.AccountNumber != nil {
		b.AccountNumber = strings.TrimSpace(*u.AccountNumber)
	}
}
