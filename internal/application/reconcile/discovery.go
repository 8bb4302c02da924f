package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/eshaffer321/homebudget-guard/internal/domain/matcher"
	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
	"github.com/eshaffer321/homebudget-guard/internal/infrastructure/storage"
)

// Suggestion is one transaction with its ranked bank transaction candidates.
type Suggestion struct {
	Transaction *model.Transaction  `json:"transaction"`
	Candidates  []matcher.Candidate `json:"candidates"`
}

// ProposeExactMatches runs the exact strategy over the owner's unmatched
// records and stores one pending Match row per pair. Records that already sit
// in a pending row are left out. All rows are written together or not at all.
func (s *Service) ProposeExactMatches(ctx context.Context, ownerID int64) ([]*model.Match, error) {
	created := make([]*model.Match, 0)

	err := s.repo.InTx(ctx, func(st storage.Store) error {
		txs, banks, err := loadUnmatched(ctx, st, ownerID)
		if err != nil {
			return err
		}

		pending, err := st.ListMatches(ctx, ownerID)
		if err != nil {
			return err
		}
		txs, banks = withoutPending(txs, banks, pending)

		for _, pair := range s.matcher.FindExactMatches(txs, banks) {
			match := model.NewMatch(pair.Transaction, pair.BankTransaction, false)
			if err := st.CreateMatch(ctx, match); err != nil {
				return err
			}
			created = append(created, match)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("propose exact matches: %w", err)
	}

	s.logger.Info("Proposed exact matches", "owner_id", ownerID, "count", len(created))
	return created, nil
}

// SuggestMatches runs the confidence strategy over the owner's unmatched
// records. A nil threshold uses the configured one; an explicit threshold must
// lie in [0, 1]. Suggestions are ordered by transaction date.
func (s *Service) SuggestMatches(ctx context.Context, ownerID int64, threshold *float64) ([]Suggestion, error) {
	minConfidence := s.matcher.Config().MinConfidence
	if threshold != nil {
		if *threshold < 0 || *threshold > 1 {
			return nil, model.Invalid("min_confidence", "must be between 0 and 1")
		}
		minConfidence = *threshold
	}

	txs, banks, err := loadUnmatched(ctx, s.repo, ownerID)
	if err != nil {
		return nil, fmt.Errorf("suggest matches: %w", err)
	}

	byTransaction := matcher.FindConfidenceMatches(txs, banks, minConfidence)

	suggestions := make([]Suggestion, 0, len(byTransaction))
	for _, tx := range matcher.SortByDate(txs) {
		if candidates, ok := byTransaction[tx.ID]; ok {
			suggestions = append(suggestions, Suggestion{Transaction: tx, Candidates: candidates})
		}
	}

	s.logger.Debug("Suggested matches",
		"owner_id", ownerID,
		"min_confidence", minConfidence,
		"transactions", len(suggestions),
	)
	return suggestions, nil
}

// PotentialMatches lists the owner's unmatched bank transactions near a
// transaction in date and amount. The results are unpersisted Match values
// with ID 0. An empty opts.Mode uses the configured mode.
func (s *Service) PotentialMatches(ctx context.Context, transactionID, ownerID int64, opts matcher.WindowOptions) ([]*model.Match, error) {
	if opts.Days < 0 {
		return nil, model.Invalid("time_window_days", "must not be negative")
	}
	if opts.AmountTolerance < 0 {
		return nil, model.Invalid("amount_tolerance", "must not be negative")
	}

	if opts.Mode == "" {
		opts.Mode = s.matcher.Config().AmountMode
	}
	if !opts.Mode.Valid() {
		return nil, model.Invalid("amount_mode", "must be signed or magnitude")
	}

	tx, err := s.repo.GetTransaction(ctx, transactionID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("potential matches: %w", err)
	}

	banks, err := s.repo.ListBankTransactions(ctx, storage.BankTransactionFilter{OwnerID: ownerID, UnmatchedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("potential matches: %w", err)
	}

	found := matcher.FindPotentialMatchesByWindow(tx, banks, opts)

	matches := make([]*model.Match, 0, len(found))
	for _, bank := range found {
		matches = append(matches, model.NewMatch(tx, bank, false))
	}
	return matches, nil
}

// DefaultWindow returns the configured window options.
func (s *Service) DefaultWindow() matcher.WindowOptions {
	return s.matcher.WindowOptions()
}

// loadUnmatched fetches the owner's unmatched records from either side.
func loadUnmatched(ctx context.Context, st storage.Store, ownerID int64) ([]*model.Transaction, []*model.BankTransaction, error) {
	txs, err := st.ListTransactions(ctx, storage.TransactionFilter{OwnerID: ownerID, UnmatchedOnly: true})
	if err != nil {
		return nil, nil, err
	}
	banks, err := st.ListBankTransactions(ctx, storage.BankTransactionFilter{OwnerID: ownerID, UnmatchedOnly: true})
	if err != nil {
		return nil, nil, err
	}
	return txs, banks, nil
}

// withoutPending drops records that already appear in a pending row.
func withoutPending(txs []*model.Transaction, banks []*model.BankTransaction, pending []*model.Match) ([]*model.Transaction, []*model.BankTransaction) {
	if len(pending) == 0 {
		return txs, banks
	}

	pendingTx := make(map[int64]bool, len(pending))
	pendingBank := make(map[int64]bool, len(pending))
	for _, m := range pending {
		pendingTx[m.TransactionID] = true
		pendingBank[m.BankTransactionID] = true
	}

	keptTxs := make([]*model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !pendingTx[tx.ID] {
			keptTxs = append(keptTxs, tx)
		}
	}
	keptBanks := make([]*model.BankTransaction, 0, len(banks))
	for _, bank := range banks {
		if !pendingBank[bank.ID] {
			keptBanks = append(keptBanks, bank)
		}
	}
	return keptTxs, keptBanks
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
