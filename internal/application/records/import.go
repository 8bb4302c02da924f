package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/eshaffer321/homebudget-guard/internal/domain/matcher"
	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
	"github.com/eshaffer321/homebudget-guard/internal/infrastructure/storage"
)

// PreviewDateTolerance is the day distance PreviewStatement accepts.
const PreviewDateTolerance = 1

// ImportResult reports one statement import.
type ImportResult struct {
	BatchID          string                   `json:"batch_id"`
	BankTransactions []*model.BankTransaction `json:"bank_transactions"`
}

// UnmatchedReport lists everything the owner has not reconciled yet.
type UnmatchedReport struct {
	Transactions     []*model.Transaction     `json:"transactions"`
	BankTransactions []*model.BankTransaction `json:"bank_transactions"`
}

// ImportStatement stores parsed statement rows as unmatched bank transactions
// under one bank name and account number. The rows are stored together or not
// at all.
func (s *Service) ImportStatement(ctx context.Context, ownerID int64, rows []model.StatementRow, bankName, accountNumber string) (*ImportResult, error) {
	bankName = strings.TrimSpace(bankName)
	accountNumber = strings.TrimSpace(accountNumber)
	if bankName == "" {
		return nil, model.Invalid("bank_name", "is required")
	}
	if accountNumber == "" {
		return nil, model.Invalid("account_number", "is required")
	}

	inputs := make([]model.BankTransactionInput, 0, len(rows))
	for i, row := range rows {
		in := model.BankTransactionInput{
			Date:          row.Date,
			Amount:        row.Amount,
			Description:   row.Description,
			BankName:      bankName,
			AccountNumber: accountNumber,
		}
		if err := in.ValidateStatementRow(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		inputs = append(inputs, in)
	}

	result := &ImportResult{
		BatchID:          uuid.NewString(),
		BankTransactions: make([]*model.BankTransaction, 0, len(inputs)),
	}
	err := s.repo.InTx(ctx, func(st storage.Store) error {
		for _, in := range inputs {
			bank := in.Build(ownerID)
			if err := st.CreateBankTransaction(ctx, bank); err != nil {
				return err
			}
			result.BankTransactions = append(result.BankTransactions, bank)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import statement: %w", err)
	}

	s.logger.Info("Imported statement",
		"owner_id", ownerID,
		"batch_id", result.BatchID,
		"bank_name", bankName,
		"rows", len(result.BankTransactions),
	)
	return result, nil
}

// PreviewStatement splits statement rows by whether one of the owner's
// transactions already covers them. Nothing is stored.
func (s *Service) PreviewStatement(ctx context.Context, ownerID int64, rows []model.StatementRow) (matcher.Preview, error) {
	txs, err := s.repo.ListTransactions(ctx, storage.TransactionFilter{OwnerID: ownerID})
	if err != nil {
		return matcher.Preview{}, fmt.Errorf("preview statement: %w", err)
	}

	preview := matcher.PreviewStatement(rows, txs, PreviewDateTolerance)

	s.logger.Debug("Previewed statement",
		"owner_id", ownerID,
		"matched", len(preview.Matched),
		"unmatched", len(preview.Unmatched),
	)
	return preview, nil
}

// Unmatched returns the owner's unmatched transactions and bank transactions.
func (s *Service) Unmatched(ctx context.Context, ownerID int64) (*UnmatchedReport, error) {
	txs, err := s.repo.ListTransactions(ctx, storage.TransactionFilter{OwnerID: ownerID, UnmatchedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("unmatched report: %w", err)
	}
	banks, err := s.repo.ListBankTransactions(ctx, storage.BankTransactionFilter{OwnerID: ownerID, UnmatchedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("unmatched report: %w", err)
	}
	return &UnmatchedReport{Transactions: txs, BankTransactions: banks}, nil
}
