package reconcile

import (
	"context"
	"fmt"
	"math"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
	"github.com/eshaffer321/homebudget-guard/internal/infrastructure/storage"
)

// Summary counts the owner's transactions by match state.
type Summary struct {
	TotalTransactions     int     `json:"total_transactions"`
	MatchedTransactions   int     `json:"matched_transactions"`
	UnmatchedTransactions int     `json:"unmatched_transactions"`
	MatchPercentage       float64 `json:"match_percentage"`
	TotalBankTransactions int     `json:"total_bank_transactions"`
	UnmatchedBank         int     `json:"unmatched_bank_transactions"`
	PendingMatches        int     `json:"pending_matches"`
}

// ListCandidates returns the owner's pending Match rows.
func (s *Service) ListCandidates(ctx context.Context, ownerID int64) ([]*model.Match, error) {
	matches, err := s.repo.ListMatches(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return matches, nil
}

// ListConfirmed returns every linked pair as a confirmed Match value. The
// values are projections of the links and carry ID 0; MatchDate and
// MatchAmount come from the bank side.
func (s *Service) ListConfirmed(ctx context.Context, ownerID int64) ([]*model.Match, error) {
	txs, err := s.repo.ListTransactions(ctx, storage.TransactionFilter{OwnerID: ownerID})
	if err != nil {
		return nil, fmt.Errorf("list confirmed: %w", err)
	}
	banks, err := s.repo.ListBankTransactions(ctx, storage.BankTransactionFilter{OwnerID: ownerID})
	if err != nil {
		return nil, fmt.Errorf("list confirmed: %w", err)
	}

	bankByID := make(map[int64]*model.BankTransaction, len(banks))
	for _, bank := range banks {
		bankByID[bank.ID] = bank
	}

	confirmed := make([]*model.Match, 0)
	for _, tx := range txs {
		if !tx.Matched || tx.BankTransactionID == nil {
			continue
		}
		bank, ok := bankByID[*tx.BankTransactionID]
		if !ok || !bank.LinkedTo(tx.ID) {
			s.logger.Warn("Skipping one-sided link",
				"owner_id", ownerID,
				"transaction_id", tx.ID,
				"bank_transaction_id", *tx.BankTransactionID,
			)
			continue
		}
		confirmed = append(confirmed, model.NewMatch(tx, bank, true))
	}
	return confirmed, nil
}

// Summary reports match coverage for the owner.
func (s *Service) Summary(ctx context.Context, ownerID int64) (*Summary, error) {
	txs, err := s.repo.ListTransactions(ctx, storage.TransactionFilter{OwnerID: ownerID})
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	banks, err := s.repo.ListBankTransactions(ctx, storage.BankTransactionFilter{OwnerID: ownerID})
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	pending, err := s.repo.ListMatches(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}

	summary := &Summary{
		TotalTransactions:     len(txs),
		TotalBankTransactions: len(banks),
		PendingMatches:        len(pending),
	}
	for _, tx := range txs {
		if tx.Matched {
			summary.MatchedTransactions++
		}
	}
	for _, bank := range banks {
		if !bank.IsMatched {
			summary.UnmatchedBank++
		}
	}
	summary.UnmatchedTransactions = summary.TotalTransactions - summary.MatchedTransactions

	if summary.TotalTransactions > 0 {
		pct := float64(summary.MatchedTransactions) / float64(summary.TotalTransactions) * 100
		summary.MatchPercentage = math.Round(pct*100) / 100
	}

	return summary, nil
}
