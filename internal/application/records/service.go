// Package records manages the owner's transactions and bank transactions:
// manual entry, statement import, listing and deletion.
//
// Deleting a linked record clears the link on its counterpart and removes any
// pending Match rows that reference it, so the flag on each side stays true
// only while the reference is set.
package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
	"github.com/eshaffer321/homebudget-guard/internal/infrastructure/storage"
)

// Service provides record CRUD and statement import.
type Service struct {
	repo   storage.Repository
	logger *slog.Logger
}

// NewService creates a records service.
func NewService(repo storage.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ListOptions narrows a listing. Limit 0 means no limit.
type ListOptions struct {
	UnmatchedOnly bool
	Period        Period
	Limit         int
	Offset        int
}

func (o ListOptions) validate() error {
	if o.Limit < 0 {
		return model.Invalid("limit", "must not be negative")
	}
	if o.Offset < 0 {
		return model.Invalid("skip", "must not be negative")
	}
	return nil
}

// bounds resolves the period to inclusive day pointers, nil when unset.
func (o ListOptions) bounds() (*time.Time, *time.Time, error) {
	if o.Period.IsZero() {
		return nil, nil, nil
	}
	from, to, err := o.Period.Bounds()
	if err != nil {
		return nil, nil, err
	}
	return &from, &to, nil
}

// ============================================================================
// Transactions
// ============================================================================

// CreateTransaction stores a new unmatched transaction for the owner.
func (s *Service) CreateTransaction(ctx context.Context, ownerID int64, in model.TransactionInput) (*model.Transaction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tx := in.Build(ownerID)
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.logger.Info("Created transaction", "owner_id", ownerID, "transaction_id", tx.ID)
	return tx, nil
}

// GetTransaction returns one of the owner's transactions.
func (s *Service) GetTransaction(ctx context.Context, id, ownerID int64) (*model.Transaction, error) {
	return s.repo.GetTransaction(ctx, id, ownerID)
}

// ListTransactions returns the owner's transactions ordered by date.
func (s *Service) ListTransactions(ctx context.Context, ownerID int64, opts ListOptions) ([]*model.Transaction, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	from, to, err := opts.bounds()
	if err != nil {
		return nil, err
	}

	return s.repo.ListTransactions(ctx, storage.TransactionFilter{
		OwnerID:       ownerID,
		UnmatchedOnly: opts.UnmatchedOnly,
		From:          from,
		To:            to,
		Limit:         opts.Limit,
		Offset:        opts.Offset,
	})
}

// UpdateTransaction applies the set fields of u. Match state is kept.
func (s *Service) UpdateTransaction(ctx context.Context, id, ownerID int64, u model.TransactionUpdate) (*model.Transaction, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	var tx *model.Transaction
	err := s.repo.InTx(ctx, func(st storage.Store) error {
		var err error
		tx, err = st.GetTransaction(ctx, id, ownerID)
		if err != nil {
			return err
		}
		u.Apply(tx)
		return st.UpdateTransaction(ctx, tx)
	})
	if err != nil {
		return nil, fmt.Errorf("update transaction %d: %w", id, err)
	}

	s.logger.Info("Updated transaction", "owner_id", ownerID, "transaction_id", id)
	return tx, nil
}

// DeleteTransaction removes a transaction, unlinking its bank transaction and
// dropping pending rows that reference it.
func (s *Service) DeleteTransaction(ctx context.Context, id, ownerID int64) error {
	err := s.repo.InTx(ctx, func(st storage.Store) error {
		tx, err := st.GetTransaction(ctx, id, ownerID)
		if err != nil {
			return err
		}

		if tx.BankTransactionID != nil {
			bank, err := st.GetBankTransaction(ctx, *tx.BankTransactionID, ownerID)
			switch {
			case err == nil && bank.LinkedTo(tx.ID):
				bank.Unlink()
				if err := st.UpdateBankTransaction(ctx, bank); err != nil {
					return err
				}
			case err != nil && !isNotFound(err):
				return err
			}
		}

		if err := dropPending(ctx, st, ownerID, func(m *model.Match) bool { return m.TransactionID == id }); err != nil {
			return err
		}
		return st.DeleteTransaction(ctx, id, ownerID)
	})
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}

	s.logger.Info("Deleted transaction", "owner_id", ownerID, "transaction_id", id)
	return nil
}

// ============================================================================
// Bank transactions
// ============================================================================

// CreateBankTransaction stores a single bank transaction entered by hand.
func (s *Service) CreateBankTransaction(ctx context.Context, ownerID int64, in model.BankTransactionInput) (*model.BankTransaction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	bank := in.Build(ownerID)
	if err := s.repo.CreateBankTransaction(ctx, bank); err != nil {
		return nil, fmt.Errorf("create bank transaction: %w", err)
	}

	s.logger.Info("Created bank transaction", "owner_id", ownerID, "bank_transaction_id", bank.ID)
	return bank, nil
}

// CreateBankTransactions stores several bank transactions at once. Either all
// are stored or none.
func (s *Service) CreateBankTransactions(ctx context.Context, ownerID int64, inputs []model.BankTransactionInput) ([]*model.BankTransaction, error) {
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}

	created := make([]*model.BankTransaction, 0, len(inputs))
	err := s.repo.InTx(ctx, func(st storage.Store) error {
		for _, in := range inputs {
			bank := in.Build(ownerID)
			if err := st.CreateBankTransaction(ctx, bank); err != nil {
				return err
			}
			created = append(created, bank)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create bank transactions: %w", err)
	}

	s.logger.Info("Created bank transactions", "owner_id", ownerID, "count", len(created))
	return created, nil
}

// GetBankTransaction returns one of the owner's bank transactions.
func (s *Service) GetBankTransaction(ctx context.Context, id, ownerID int64) (*model.BankTransaction, error) {
	return s.repo.GetBankTransaction(ctx, id, ownerID)
}

// ListBankTransactions returns the owner's bank transactions ordered by date,
// optionally restricted to a calendar period.
func (s *Service) ListBankTransactions(ctx context.Context, ownerID int64, opts ListOptions) ([]*model.BankTransaction, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	from, to, err := opts.bounds()
	if err != nil {
		return nil, err
	}

	return s.repo.ListBankTransactions(ctx, storage.BankTransactionFilter{
		OwnerID:       ownerID,
		UnmatchedOnly: opts.UnmatchedOnly,
		From:          from,
		To:            to,
		Limit:         opts.Limit,
		Offset:        opts.Offset,
	})
}

// UpdateBankTransaction applies the set fields of u. Match state is kept.
func (s *Service) UpdateBankTransaction(ctx context.Context, id, ownerID int64, u model.BankTransactionUpdate) (*model.BankTransaction, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	var bank *model.BankTransaction
	err := s.repo.InTx(ctx, func(st storage.Store) error {
		var err error
		bank, err = st.GetBankTransaction(ctx, id, ownerID)
		if err != nil {
			return err
		}
		u.Apply(bank)
		return st.UpdateBankTransaction(ctx, bank)
	})
	if err != nil {
		return nil, fmt.Errorf("update bank transaction %d: %w", id, err)
	}

	s.logger.Info("Updated bank transaction", "owner_id", ownerID, "bank_transaction_id", id)
	return bank, nil
}

// DeleteBankTransaction removes a bank transaction, unlinking its transaction
// and dropping pending rows that reference it.
func (s *Service) DeleteBankTransaction(ctx context.Context, id, ownerID int64) error {
	err := s.repo.InTx(ctx, func(st storage.Store) error {
		bank, err := st.GetBankTransaction(ctx, id, ownerID)
		if err != nil {
			return err
		}

		if bank.TransactionID != nil {
			tx, err := st.GetTransaction(ctx, *bank.TransactionID, ownerID)
			switch {
			case err == nil && tx.LinkedTo(bank.ID):
				tx.Unlink()
				if err := st.UpdateTransaction(ctx, tx); err != nil {
					return err
				}
			case err != nil && !isNotFound(err):
				return err
			}
		}

		if err := dropPending(ctx, st, ownerID, func(m *model.Match) bool { return m.BankTransactionID == id }); err != nil {
			return err
		}
		return st.DeleteBankTransaction(ctx, id, ownerID)
	})
	if err != nil {
		return fmt.Errorf("delete bank transaction %d: %w", id, err)
	}

	s.logger.Info("Deleted bank transaction", "owner_id", ownerID, "bank_transaction_id", id)
	return nil
}

// dropPending deletes the owner's pending rows selected by match.
func dropPending(ctx context.Context, st storage.Store, ownerID int64, match func(*model.Match) bool) error {
	pending, err := st.ListMatches(ctx, ownerID)
	if err != nil {
		return err
	}
	for _, m := range pending {
		if !match(m) {
			continue
		}
		if err := st.DeleteMatch(ctx, m.ID, ownerID); err != nil {
			return err
		}
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
