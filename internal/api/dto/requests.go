package dto

import (
	"time"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

// TransactionRequest is the body of POST /api/transactions.
type TransactionRequest struct {
	Date     string  `json:"date" binding:"required"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category" binding:"required"`
	Type     string  `json:"type" binding:"required"`
	Note     string  `json:"note"`
}

// ToInput converts the request into a model input.
func (r TransactionRequest) ToInput() (model.TransactionInput, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return model.TransactionInput{}, err
	}
	return model.TransactionInput{
		Date:     date,
		Amount:   r.Amount,
		Category: r.Category,
		Type:     model.TransactionType(r.Type),
		Note:     r.Note,
	}, nil
}

// TransactionUpdateRequest is the body of PUT /api/transactions/:id. Omitted
// fields are left unchanged.
type TransactionUpdateRequest struct {
	Date     *string  `json:"date"`
	Amount   *float64 `json:"amount"`
	Category *string  `json:"category"`
	Type     *string  `json:"type"`
	Note     *string  `json:"note"`
}

// ToUpdate converts the request into a model update.
func (r TransactionUpdateRequest) ToUpdate() (model.TransactionUpdate, error) {
	u := model.TransactionUpdate{
		Amount:   r.Amount,
		Category: r.Category,
		Note:     r.Note,
	}
	if r.Date != nil {
		date, err := parseDate(*r.Date)
		if err != nil {
			return model.TransactionUpdate{}, err
		}
		u.Date = &date
	}
	if r.Type != nil {
		t := model.TransactionType(*r.Type)
		u.Type = &t
	}
	return u, nil
}

// BankTransactionRequest is the body of POST /api/bank-transactions.
type BankTransactionRequest struct {
	Date          string  `json:"date" binding:"required"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description" binding:"required"`
	BankName      string  `json:"bank_name" binding:"required"`
	AccountNumber string  `json:"account_number" binding:"required"`
}

// ToInput converts the request into a model input.
func (r BankTransactionRequest) ToInput() (model.BankTransactionInput, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return model.BankTransactionInput{}, err
	}
	return model.BankTransactionInput{
		Date:          date,
		Amount:        r.Amount,
		Description:   r.Description,
		BankName:      r.BankName,
		AccountNumber: r.AccountNumber,
	}, nil
}

// BankTransactionUpdateRequest is the body of PUT /api/bank-transactions/:id.
type BankTransactionUpdateRequest struct {
	Date          *string  `json:"date"`
	Amount        *float64 `json:"amount"`
	Description   *string  `json:"description"`
	BankName      *string  `json:"bank_name"`
	AccountNumber *string  `json:"account_number"`
}

// ToUpdate converts the request into a model update.
func (r BankTransactionUpdateRequest) ToUpdate() (model.BankTransactionUpdate, error) {
	u := model.BankTransactionUpdate{
		Amount:        r.Amount,
		Description:   r.Description,
		BankName:      r.BankName,
		AccountNumber: r.AccountNumber,
	}
	if r.Date != nil {
		date, err := parseDate(*r.Date)
		if err != nil {
			return model.BankTransactionUpdate{}, err
		}
		u.Date = &date
	}
	return u, nil
}

// CreateMatchRequest is the body of POST /api/matching/confirm.
type CreateMatchRequest struct {
	TransactionID     int64 `json:"transaction_id" binding:"required"`
	BankTransactionID int64 `json:"bank_transaction_id" binding:"required"`
}

// Default list parameters.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

func parseDate(s string) (time.Time, error) {
	date, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, model.Invalid("date", "must be YYYY-MM-DD")
	}
	return date, nil
}
