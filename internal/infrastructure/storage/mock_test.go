package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

func TestMockRepository_CopiesRecords(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()

	tx := sampleTransaction(1, 10, jan10)
	require.NoError(t, repo.CreateTransaction(ctx, tx))

	// Mutating the caller's copy does not touch the stored record
	tx.Amount = 999
	got, err := repo.GetTransaction(ctx, tx.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Amount)

	got.LinkTo(5)
	again, err := repo.GetTransaction(ctx, tx.ID, 1)
	require.NoError(t, err)
	assert.False(t, again.Matched)
}

func TestMockRepository_ErrorInjection(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()
	injected := errors.New("disk full")

	repo.CreateMatchErr = injected
	err := repo.CreateMatch(ctx, &model.Match{OwnerID: 1})
	assert.ErrorIs(t, err, injected)

	repo.Reset()
	assert.NoError(t, repo.CreateMatch(ctx, &model.Match{OwnerID: 1}))
	assert.Equal(t, 1, repo.MatchCount())
}

func TestMockRepository_FailAfterBankCreates(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()
	repo.FailAfterBankCreates = 2

	err := repo.InTx(ctx, func(s Store) error {
		for i := 0; i < 3; i++ {
			if err := s.CreateBankTransaction(ctx, sampleBankTransaction(1, float64(i), jan10)); err != nil {
				return err
			}
		}
		return nil
	})

	require.Error(t, err)
	assert.Equal(t, 0, repo.BankTransactionCount())
	assert.Equal(t, 1, repo.Rollbacks)
}

func TestMockRepository_AddKeepsPresetIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()

	repo.AddTransaction(&model.Transaction{ID: 7, OwnerID: 1, Date: jan10, Type: model.TypeIncome})
	tx := sampleTransaction(1, 1, jan10)
	require.NoError(t, repo.CreateTransaction(ctx, tx))

	assert.Equal(t, int64(8), tx.ID)
	assert.Equal(t, 2, repo.TransactionCount())
}
