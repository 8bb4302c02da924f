// Package reconcile turns matcher output into persisted links between
// transactions and bank transactions.
//
// A pending Match row is a proposal. Confirming it links both records and
// consumes the row; deleting it leaves the records alone. Linking directly
// (CreateMatch) needs no row at all, and Unmatch is the only operation that
// clears an existing link. Every mutation runs in one storage transaction and
// every lookup is scoped to the calling owner.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eshaffer321/homebudget-guard/internal/domain/matcher"
	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
	"github.com/eshaffer321/homebudget-guard/internal/infrastructure/storage"
)

// Service manages the match lifecycle for all owners.
type Service struct {
	repo    storage.Repository
	matcher *matcher.Matcher
	logger  *slog.Logger
}

// NewService creates a reconciliation service.
func NewService(repo storage.Repository, m *matcher.Matcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = matcher.NewMatcher(matcher.DefaultConfig())
	}
	return &Service{
		repo:    repo,
		matcher: m,
		logger:  logger,
	}
}

// CreateMatch links a transaction and a bank transaction directly.
// Both must belong to ownerID (model.ErrNotFound otherwise). If either side is
// already linked to a different record, model.ErrConflict is returned and
// nothing changes.
func (s *Service) CreateMatch(ctx context.Context, transactionID, bankTransactionID, ownerID int64) (*model.Transaction, *model.BankTransaction, error) {
	if err := requireIDs(transactionID, bankTransactionID); err != nil {
		return nil, nil, err
	}

	var (
		tx   *model.Transaction
		bank *model.BankTransaction
	)
	err := s.repo.InTx(ctx, func(st storage.Store) error {
		var err error
		tx, bank, err = link(ctx, st, transactionID, bankTransactionID, ownerID)
		if err != nil {
			return err
		}
		return dropPendingFor(ctx, st, ownerID, transactionID, bankTransactionID, 0)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create match: %w", err)
	}

	s.logger.Info("Linked transaction",
		"owner_id", ownerID,
		"transaction_id", transactionID,
		"bank_transaction_id", bankTransactionID,
	)
	return tx, bank, nil
}

// Confirm applies a pending match: both records are linked and the Match row
// is removed. Other pending rows that share either record are removed too,
// since they can no longer be confirmed. Confirming the same id twice fails
// with model.ErrNotFound.
func (s *Service) Confirm(ctx context.Context, matchID, ownerID int64) error {
	var match *model.Match
	err := s.repo.InTx(ctx, func(st storage.Store) error {
		var err error
		match, err = st.GetMatch(ctx, matchID, ownerID)
		if err != nil {
			return err
		}

		if _, _, err := link(ctx, st, match.TransactionID, match.BankTransactionID, ownerID); err != nil {
			return err
		}

		if err := st.DeleteMatch(ctx, match.ID, ownerID); err != nil {
			return err
		}
		return dropPendingFor(ctx, st, ownerID, match.TransactionID, match.BankTransactionID, match.ID)
	})
	if err != nil {
		return fmt.Errorf("confirm match %d: %w", matchID, err)
	}

	s.logger.Info("Confirmed match",
		"owner_id", ownerID,
		"match_id", matchID,
		"transaction_id", match.TransactionID,
		"bank_transaction_id", match.BankTransactionID,
	)
	return nil
}

// Delete removes a pending Match row. The records it references are not touched.
func (s *Service) Delete(ctx context.Context, matchID, ownerID int64) error {
	if err := s.repo.DeleteMatch(ctx, matchID, ownerID); err != nil {
		return fmt.Errorf("delete match %d: %w", matchID, err)
	}

	s.logger.Info("Deleted match", "owner_id", ownerID, "match_id", matchID)
	return nil
}

// Unmatch clears the link held by a transaction and by its bank transaction.
// A transaction that is not linked is a validation error.
func (s *Service) Unmatch(ctx context.Context, transactionID, ownerID int64) (*model.Transaction, *model.BankTransaction, error) {
	var (
		tx   *model.Transaction
		bank *model.BankTransaction
	)
	err := s.repo.InTx(ctx, func(st storage.Store) error {
		var err error
		tx, err = st.GetTransaction(ctx, transactionID, ownerID)
		if err != nil {
			return err
		}
		if !tx.Matched || tx.BankTransactionID == nil {
			return model.Invalid("transaction_id", "transaction is not matched")
		}

		bank, err = unlinkCounterpart(ctx, st, *tx.BankTransactionID, ownerID, tx.ID)
		if err != nil {
			return err
		}

		tx.Unlink()
		return st.UpdateTransaction(ctx, tx)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("unmatch transaction %d: %w", transactionID, err)
	}

	s.logger.Info("Unmatched transaction", "owner_id", ownerID, "transaction_id", transactionID)
	return tx, bank, nil
}

// link sets both flags and both references for the pair.
func link(ctx context.Context, st storage.Store, transactionID, bankTransactionID, ownerID int64) (*model.Transaction, *model.BankTransaction, error) {
	tx, err := st.GetTransaction(ctx, transactionID, ownerID)
	if err != nil {
		return nil, nil, err
	}
	bank, err := st.GetBankTransaction(ctx, bankTransactionID, ownerID)
	if err != nil {
		return nil, nil, err
	}

	if tx.Matched && !tx.LinkedTo(bank.ID) {
		return nil, nil, fmt.Errorf("transaction %d: %w", tx.ID, model.ErrConflict)
	}
	if bank.IsMatched && !bank.LinkedTo(tx.ID) {
		return nil, nil, fmt.Errorf("bank transaction %d: %w", bank.ID, model.ErrConflict)
	}

	tx.LinkTo(bank.ID)
	bank.LinkTo(tx.ID)

	if err := st.UpdateTransaction(ctx, tx); err != nil {
		return nil, nil, err
	}
	if err := st.UpdateBankTransaction(ctx, bank); err != nil {
		return nil, nil, err
	}
	return tx, bank, nil
}

// unlinkCounterpart clears a bank transaction's link to transactionID. A bank
// transaction that is gone or points elsewhere is left alone.
func unlinkCounterpart(ctx context.Context, st storage.Store, bankTransactionID, ownerID, transactionID int64) (*model.BankTransaction, error) {
	bank, err := st.GetBankTransaction(ctx, bankTransactionID, ownerID)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !bank.LinkedTo(transactionID) {
		return bank, nil
	}

	bank.Unlink()
	if err := st.UpdateBankTransaction(ctx, bank); err != nil {
		return nil, err
	}
	return bank, nil
}

// dropPendingFor removes pending rows touching either record, except keepID.
func dropPendingFor(ctx context.Context, st storage.Store, ownerID, transactionID, bankTransactionID, keepID int64) error {
	matches, err := st.ListMatches(ctx, ownerID)
	if err != nil {
		return err
	}
	for _, m := range matches {
		if m.ID == keepID {
			continue
		}
		if m.TransactionID == transactionID || m.BankTransactionID == bankTransactionID {
			if err := st.DeleteMatch(ctx, m.ID, ownerID); err != nil {
				return err
			}
		}
	}
	return nil
}

func requireIDs(transactionID, bankTransactionID int64) error {
	if transactionID <= 0 {
		return model.Invalid("transaction_id", "is required")
	}
	if bankTransactionID <= 0 {
		return model.Invalid("bank_transaction_id", "is required")
	}
	return nil
}
