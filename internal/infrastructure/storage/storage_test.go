package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

var jan10 = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

func newSQLiteRepo(t *testing.T) Repository {
	tmpDB := createTempDB(t)
	t.Cleanup(func() { os.Remove(tmpDB) })

	store, err := NewStorage(tmpDB)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// repoFactories lists every backend the shared behaviour tests run against.
func repoFactories(t *testing.T) map[string]func(t *testing.T) Repository {
	factories := map[string]func(t *testing.T) Repository{
		"sqlite": newSQLiteRepo,
		"mock":   func(t *testing.T) Repository { return NewMockRepository() },
	}
	if dsn := os.Getenv("HOMEBUDGET_TEST_DATABASE_URL"); dsn != "" {
		factories["postgres"] = func(t *testing.T) Repository { return newPostgresRepo(t, dsn) }
	}
	return factories
}

func sampleTransaction(owner int64, amount float64, date time.Time) *model.Transaction {
	return &model.Transaction{
		Date:     date,
		Amount:   amount,
		Category: "groceries",
		Type:     model.TypeExpense,
		OwnerID:  owner,
	}
}

func sampleBankTransaction(owner int64, amount float64, date time.Time) *model.BankTransaction {
	return &model.BankTransaction{
		Date:          date,
		Amount:        amount,
		Description:   "SUPERMART",
		BankName:      "First Bank",
		AccountNumber: "12345678",
		OwnerID:       owner,
	}
}

func TestRepository_TransactionCRUD(t *testing.T) {
	for name, factory := range repoFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)

			// Create
			tx := sampleTransaction(1, -50.00, jan10.Add(15*time.Hour))
			tx.Note = "weekly shop"
			require.NoError(t, repo.CreateTransaction(ctx, tx))
			require.NotZero(t, tx.ID)
			assert.Equal(t, jan10, tx.Date, "date is truncated to the day")

			// Get
			got, err := repo.GetTransaction(ctx, tx.ID, 1)
			require.NoError(t, err)
			assert.Equal(t, -50.00, got.Amount)
			assert.Equal(t, "groceries", got.Category)
			assert.Equal(t, model.TypeExpense, got.Type)
			assert.Equal(t, "weekly shop", got.Note)
			assert.True(t, jan10.Equal(got.Date))
			assert.False(t, got.Matched)
			assert.Nil(t, got.BankTransactionID)

			// Update
			got.Amount = -55.00
			got.LinkTo(42)
			require.NoError(t, repo.UpdateTransaction(ctx, got))

			updated, err := repo.GetTransaction(ctx, tx.ID, 1)
			require.NoError(t, err)
			assert.Equal(t, -55.00, updated.Amount)
			assert.True(t, updated.Matched)
			require.NotNil(t, updated.BankTransactionID)
			assert.Equal(t, int64(42), *updated.BankTransactionID)

			// Delete
			require.NoError(t, repo.DeleteTransaction(ctx, tx.ID, 1))
			_, err = repo.GetTransaction(ctx, tx.ID, 1)
			assert.ErrorIs(t, err, model.ErrNotFound)
		})
	}
}

func TestRepository_OwnerScoping(t *testing.T) {
	for name, factory := range repoFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)

			tx := sampleTransaction(1, 10, jan10)
			require.NoError(t, repo.CreateTransaction(ctx, tx))
			bank := sampleBankTransaction(1, 10, jan10)
			require.NoError(t, repo.CreateBankTransaction(ctx, bank))

			_, err := repo.GetTransaction(ctx, tx.ID, 2)
			assert.ErrorIs(t, err, model.ErrNotFound)
			_, err = repo.GetBankTransaction(ctx, bank.ID, 2)
			assert.ErrorIs(t, err, model.ErrNotFound)

			assert.ErrorIs(t, repo.DeleteTransaction(ctx, tx.ID, 2), model.ErrNotFound)
			assert.ErrorIs(t, repo.DeleteBankTransaction(ctx, bank.ID, 2), model.ErrNotFound)

			foreign := *tx
			foreign.OwnerID = 2
			assert.ErrorIs(t, repo.UpdateTransaction(ctx, &foreign), model.ErrNotFound)

			list, err := repo.ListTransactions(ctx, TransactionFilter{OwnerID: 2})
			require.NoError(t, err)
			assert.Empty(t, list)

			// Still there for the real owner
			_, err = repo.GetTransaction(ctx, tx.ID, 1)
			assert.NoError(t, err)
		})
	}
}

func TestRepository_ListFilters(t *testing.T) {
	for name, factory := range repoFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)

			dates := []time.Time{jan10.AddDate(0, 0, 2), jan10, jan10.AddDate(0, 0, 1), jan10.AddDate(0, 1, 0)}
			for i, d := range dates {
				bank := sampleBankTransaction(1, float64(i+1), d)
				if i == 2 {
					bank.LinkTo(99)
				}
				require.NoError(t, repo.CreateBankTransaction(ctx, bank))
			}

			t.Run("ordered by date", func(t *testing.T) {
				all, err := repo.ListBankTransactions(ctx, BankTransactionFilter{OwnerID: 1})
				require.NoError(t, err)
				require.Len(t, all, 4)
				assert.Equal(t, []float64{2, 3, 1, 4}, []float64{all[0].Amount, all[1].Amount, all[2].Amount, all[3].Amount})
			})

			t.Run("unmatched only", func(t *testing.T) {
				unmatched, err := repo.ListBankTransactions(ctx, BankTransactionFilter{OwnerID: 1, UnmatchedOnly: true})
				require.NoError(t, err)
				assert.Len(t, unmatched, 3)
				for _, b := range unmatched {
					assert.False(t, b.IsMatched)
				}
			})

			t.Run("inclusive date range", func(t *testing.T) {
				from, to := jan10, jan10.AddDate(0, 0, 1)
				ranged, err := repo.ListBankTransactions(ctx, BankTransactionFilter{OwnerID: 1, From: &from, To: &to})
				require.NoError(t, err)
				assert.Len(t, ranged, 2)
			})

			t.Run("limit and offset", func(t *testing.T) {
				page, err := repo.ListBankTransactions(ctx, BankTransactionFilter{OwnerID: 1, Limit: 2, Offset: 1})
				require.NoError(t, err)
				require.Len(t, page, 2)
				assert.Equal(t, 3.0, page[0].Amount)
				assert.Equal(t, 1.0, page[1].Amount)
			})
		})
	}
}

func TestRepository_Matches(t *testing.T) {
	for name, factory := range repoFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)

			tx := sampleTransaction(1, -20, jan10)
			require.NoError(t, repo.CreateTransaction(ctx, tx))
			bank := sampleBankTransaction(1, -20, jan10.AddDate(0, 0, 1))
			require.NoError(t, repo.CreateBankTransaction(ctx, bank))

			match := model.NewMatch(tx, bank, false)
			require.NoError(t, repo.CreateMatch(ctx, match))
			require.NotZero(t, match.ID)
			assert.False(t, match.CreatedAt.IsZero())

			got, err := repo.GetMatch(ctx, match.ID, 1)
			require.NoError(t, err)
			assert.Equal(t, tx.ID, got.TransactionID)
			assert.Equal(t, bank.ID, got.BankTransactionID)
			assert.True(t, bank.Date.Equal(got.MatchDate))
			assert.Equal(t, -20.0, got.MatchAmount)
			assert.False(t, got.IsConfirmed)

			_, err = repo.GetMatch(ctx, match.ID, 2)
			assert.ErrorIs(t, err, model.ErrNotFound)

			list, err := repo.ListMatches(ctx, 1)
			require.NoError(t, err)
			assert.Len(t, list, 1)

			require.NoError(t, repo.DeleteMatch(ctx, match.ID, 1))
			assert.ErrorIs(t, repo.DeleteMatch(ctx, match.ID, 1), model.ErrNotFound)
		})
	}
}

func TestRepository_InTx(t *testing.T) {
	for name, factory := range repoFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)

			t.Run("commits on success", func(t *testing.T) {
				err := repo.InTx(ctx, func(s Store) error {
					return s.CreateTransaction(ctx, sampleTransaction(1, 1, jan10))
				})
				require.NoError(t, err)

				list, err := repo.ListTransactions(ctx, TransactionFilter{OwnerID: 1})
				require.NoError(t, err)
				assert.Len(t, list, 1)
			})

			t.Run("rolls back on error", func(t *testing.T) {
				boom := errors.New("boom")
				err := repo.InTx(ctx, func(s Store) error {
					if err := s.CreateTransaction(ctx, sampleTransaction(1, 2, jan10)); err != nil {
						return err
					}
					if err := s.CreateBankTransaction(ctx, sampleBankTransaction(1, 2, jan10)); err != nil {
						return err
					}
					return boom
				})
				assert.ErrorIs(t, err, boom)

				txs, err := repo.ListTransactions(ctx, TransactionFilter{OwnerID: 1})
				require.NoError(t, err)
				assert.Len(t, txs, 1, "only the committed transaction remains")

				banks, err := repo.ListBankTransactions(ctx, BankTransactionFilter{OwnerID: 1})
				require.NoError(t, err)
				assert.Empty(t, banks)
			})
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("mysql", "", "")
	assert.Error(t, err)
}

func TestOpen_DefaultsToSQLite(t *testing.T) {
	tmpDB := createTempDB(t)
	defer os.Remove(tmpDB)

	repo, err := Open("", tmpDB, "")
	require.NoError(t, err)
	defer repo.Close()

	_, ok := repo.(*Storage)
	assert.True(t, ok)
}
