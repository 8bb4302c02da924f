package dto

import (
	"time"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// OKResponse acknowledges a deletion.
type OKResponse struct {
	OK bool `json:"ok"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID                int64   `json:"id"`
	Date              string  `json:"date"`
	Amount            float64 `json:"amount"`
	Category          string  `json:"category"`
	Type              string  `json:"type"`
	Note              string  `json:"note,omitempty"`
	OwnerID           int64   `json:"owner_id"`
	Matched           bool    `json:"matched"`
	BankTransactionID *int64  `json:"bank_transaction_id"`
}

// TransactionListResponse is returned when listing transactions.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

// BankTransactionResponse represents a bank transaction in API responses.
type BankTransactionResponse struct {
	ID            int64   `json:"id"`
	Date          string  `json:"date"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
	BankName      string  `json:"bank_name"`
	AccountNumber string  `json:"account_number"`
	OwnerID       int64   `json:"owner_id"`
	IsMatched     bool    `json:"is_matched"`
	TransactionID *int64  `json:"transaction_id"`
}

// BankTransactionListResponse is returned when listing bank transactions.
type BankTransactionListResponse struct {
	BankTransactions []BankTransactionResponse `json:"bank_transactions"`
	Count            int                       `json:"count"`
	Limit            int                       `json:"limit"`
	Offset           int                       `json:"offset"`
}

// ImportResponse is returned by the statement upload.
type ImportResponse struct {
	BatchID          string                    `json:"batch_id"`
	BankTransactions []BankTransactionResponse `json:"bank_transactions"`
	Count            int                       `json:"count"`
}

// StatementRowResponse is one parsed statement line.
type StatementRowResponse struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// PreviewResponse splits statement rows by whether a transaction covers them.
type PreviewResponse struct {
	Matched   []StatementRowResponse `json:"matched"`
	Unmatched []StatementRowResponse `json:"unmatched"`
}

// MatchResponse represents a match row or a match projection.
type MatchResponse struct {
	ID                int64   `json:"id"`
	TransactionID     int64   `json:"transaction_id"`
	BankTransactionID int64   `json:"bank_transaction_id"`
	MatchDate         string  `json:"match_date"`
	MatchAmount       float64 `json:"match_amount"`
	OwnerID           int64   `json:"owner_id"`
	IsConfirmed       bool    `json:"is_confirmed"`
	CreatedAt         string  `json:"created_at,omitempty"`
}

// MatchListResponse is returned when listing matches.
type MatchListResponse struct {
	Matches []MatchResponse `json:"matches"`
	Count   int             `json:"count"`
}

// LinkResponse is returned when a pair is linked or unlinked.
type LinkResponse struct {
	Transaction     TransactionResponse      `json:"transaction"`
	BankTransaction *BankTransactionResponse `json:"bank_transaction,omitempty"`
}

// CandidateResponse is one scored bank transaction.
type CandidateResponse struct {
	BankTransaction BankTransactionResponse `json:"bank_transaction"`
	Score           float64                 `json:"score"`
}

// SuggestionResponse lists the candidates for one transaction.
type SuggestionResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Candidates  []CandidateResponse `json:"candidates"`
}

// SuggestionListResponse is returned by the suggestions endpoint.
type SuggestionListResponse struct {
	Suggestions []SuggestionResponse `json:"suggestions"`
	Count       int                  `json:"count"`
}

// SummaryResponse reports match coverage.
type SummaryResponse struct {
	TotalTransactions     int     `json:"total_transactions"`
	MatchedCount          int     `json:"matched_count"`
	UnmatchedCount        int     `json:"unmatched_count"`
	MatchPercentage       float64 `json:"match_percentage"`
	TotalBankTransactions int     `json:"total_bank_transactions"`
	UnmatchedBankCount    int     `json:"unmatched_bank_count"`
	PendingMatches        int     `json:"pending_matches"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// FromTransaction converts a model transaction.
func FromTransaction(tx *model.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                tx.ID,
		Date:              tx.Date.Format(model.DateLayout),
		Amount:            tx.Amount,
		Category:          tx.Category,
		Type:              string(tx.Type),
		Note:              tx.Note,
		OwnerID:           tx.OwnerID,
		Matched:           tx.Matched,
		BankTransactionID: tx.BankTransactionID,
	}
}

// FromBankTransaction converts a model bank transaction.
func FromBankTransaction(bank *model.BankTransaction) BankTransactionResponse {
	return BankTransactionResponse{
		ID:            bank.ID,
		Date:          bank.Date.Format(model.DateLayout),
		Amount:        bank.Amount,
		Description:   bank.Description,
		BankName:      bank.BankName,
		AccountNumber: bank.AccountNumber,
		OwnerID:       bank.OwnerID,
		IsMatched:     bank.IsMatched,
		TransactionID: bank.TransactionID,
	}
}

// FromBankTransactions converts a slice of model bank transactions.
func FromBankTransactions(banks []*model.BankTransaction) []BankTransactionResponse {
	out := make([]BankTransactionResponse, 0, len(banks))
	for _, bank := range banks {
		out = append(out, FromBankTransaction(bank))
	}
	return out
}

// FromMatch converts a match row or projection.
func FromMatch(m *model.Match) MatchResponse {
	resp := MatchResponse{
		ID:                m.ID,
		TransactionID:     m.TransactionID,
		BankTransactionID: m.BankTransactionID,
		MatchDate:         m.MatchDate.Format(model.DateLayout),
		MatchAmount:       m.MatchAmount,
		OwnerID:           m.OwnerID,
		IsConfirmed:       m.IsConfirmed,
	}
	if !m.CreatedAt.IsZero() {
		resp.CreatedAt = m.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// FromMatches converts a slice of matches into a list response.
func FromMatches(matches []*model.Match) MatchListResponse {
	resp := MatchListResponse{Matches: make([]MatchResponse, 0, len(matches))}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, FromMatch(m))
	}
	resp.Count = len(resp.Matches)
	return resp
}

// FromStatementRows converts parsed statement rows.
func FromStatementRows(rows []model.StatementRow) []StatementRowResponse {
	out := make([]StatementRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, StatementRowResponse{
			Date:        row.Date.Format(model.DateLayout),
			Description: row.Description,
			Amount:      row.Amount,
		})
	}
	return out
}
