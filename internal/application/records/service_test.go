package records

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
	"github.com/eshaffer321/homebudget-guard/internal/infrastructure/storage"
)

const owner = int64(1)
const otherOwner = int64(2)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T) (*Service, *storage.MockRepository) {
	t.Helper()
	repo := storage.NewMockRepository()
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

// seedLinkedPair stores transaction 1 linked to bank transaction 10 plus a
// pending row for each.
func seedLinkedPair(t *testing.T, repo *storage.MockRepository) {
	t.Helper()
	ctx := context.Background()

	tx := &model.Transaction{ID: 1, Date: day(2024, 1, 10), Amount: -50, Category: "groceries", Type: model.TypeExpense, OwnerID: owner}
	bank := &model.BankTransaction{ID: 10, Date: day(2024, 1, 10), Amount: -50, Description: "SUPERMART", BankName: "B", AccountNumber: "1", OwnerID: owner}
	tx.LinkTo(bank.ID)
	bank.LinkTo(tx.ID)
	repo.AddTransaction(tx)
	repo.AddBankTransaction(bank)

	repo.AddTransaction(&model.Transaction{ID: 2, Date: day(2024, 1, 11), Amount: -50, Category: "groceries", Type: model.TypeExpense, OwnerID: owner})
	repo.AddBankTransaction(&model.BankTransaction{ID: 11, Date: day(2024, 1, 11), Amount: -50, Description: "SUPERMART", BankName: "B", AccountNumber: "1", OwnerID: owner})

	require.NoError(t, repo.CreateMatch(ctx, &model.Match{TransactionID: 1, BankTransactionID: 11, OwnerID: owner}))
	require.NoError(t, repo.CreateMatch(ctx, &model.Match{TransactionID: 2, BankTransactionID: 10, OwnerID: owner}))
	require.NoError(t, repo.CreateMatch(ctx, &model.Match{TransactionID: 2, BankTransactionID: 11, OwnerID: owner}))
}

func TestCreateTransaction(t *testing.T) {
	// Arrange
	svc, repo := newTestService(t)
	in := model.TransactionInput{
		Date:     time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC),
		Amount:   -42.5,
		Category: " dining ",
		Type:     model.TypeExpense,
		Note:     "pizza",
	}

	// Act
	tx, err := svc.CreateTransaction(context.Background(), owner, in)

	// Assert
	require.NoError(t, err)
	assert.NotZero(t, tx.ID)
	assert.Equal(t, day(2024, 1, 10), tx.Date)
	assert.Equal(t, "dining", tx.Category)
	assert.False(t, tx.Matched)
	assert.Nil(t, tx.BankTransactionID)
	assert.Equal(t, 1, repo.TransactionCount())
}

func TestCreateTransaction_Invalid(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.CreateTransaction(context.Background(), owner, model.TransactionInput{
		Date:     day(2024, 1, 10),
		Category: "x",
		Type:     "transfer",
	})

	assert.True(t, model.IsValidation(err))
	assert.Equal(t, 0, repo.TransactionCount())
}

func TestGetTransaction_OwnerScoped(t *testing.T) {
	svc, repo := newTestService(t)
	repo.AddTransaction(&model.Transaction{ID: 5, Date: day(2024, 1, 1), Category: "x", Type: model.TypeIncome, OwnerID: owner})

	_, err := svc.GetTransaction(context.Background(), 5, otherOwner)
	assert.ErrorIs(t, err, model.ErrNotFound)

	tx, err := svc.GetTransaction(context.Background(), 5, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(5), tx.ID)
}

func TestListTransactions(t *testing.T) {
	svc, repo := newTestService(t)
	repo.AddTransaction(&model.Transaction{ID: 1, Date: day(2024, 1, 20), Category: "a", Type: model.TypeExpense, OwnerID: owner})
	repo.AddTransaction(&model.Transaction{ID: 2, Date: day(2024, 1, 5), Category: "b", Type: model.TypeExpense, OwnerID: owner, Matched: true})
	repo.AddTransaction(&model.Transaction{ID: 3, Date: day(2024, 2, 1), Category: "c", Type: model.TypeExpense, OwnerID: owner})
	repo.AddTransaction(&model.Transaction{ID: 4, Date: day(2024, 1, 1), Category: "d", Type: model.TypeExpense, OwnerID: otherOwner})
	ctx := context.Background()

	tests := []struct {
		name    string
		opts    ListOptions
		wantIDs []int64
	}{
		{"all by date", ListOptions{}, []int64{2, 1, 3}},
		{"unmatched only", ListOptions{UnmatchedOnly: true}, []int64{1, 3}},
		{"month", ListOptions{Period: Period{Kind: PeriodMonth, Value: "2024-01"}}, []int64{2, 1}},
		{"paged", ListOptions{Limit: 1, Offset: 1}, []int64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, err := svc.ListTransactions(ctx, owner, tt.opts)
			require.NoError(t, err)

			ids := make([]int64, 0, len(txs))
			for _, tx := range txs {
				ids = append(ids, tx.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	_, err := svc.ListTransactions(ctx, owner, ListOptions{Limit: -1})
	assert.True(t, model.IsValidation(err))
}

func TestUpdateTransaction_KeepsMatchState(t *testing.T) {
	svc, repo := newTestService(t)
	seedLinkedPair(t, repo)
	amount := -55.0
	note := "weekly shop"

	tx, err := svc.UpdateTransaction(context.Background(), 1, owner, model.TransactionUpdate{Amount: &amount, Note: &note})

	require.NoError(t, err)
	assert.Equal(t, -55.0, tx.Amount)
	assert.Equal(t, "weekly shop", tx.Note)
	assert.True(t, tx.Matched)
	assert.True(t, tx.LinkedTo(10))
}

func TestUpdateTransaction_Errors(t *testing.T) {
	svc, repo := newTestService(t)
	seedLinkedPair(t, repo)
	empty := " "

	_, err := svc.UpdateTransaction(context.Background(), 1, owner, model.TransactionUpdate{Category: &empty})
	assert.True(t, model.IsValidation(err))

	_, err = svc.UpdateTransaction(context.Background(), 1, otherOwner, model.TransactionUpdate{})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteTransaction_ClearsCounterpartAndPendingRows(t *testing.T) {
	// Arrange
	svc, repo := newTestService(t)
	seedLinkedPair(t, repo)
	ctx := context.Background()

	// Act
	err := svc.DeleteTransaction(ctx, 1, owner)

	// Assert
	require.NoError(t, err)
	_, err = repo.GetTransaction(ctx, 1, owner)
	assert.ErrorIs(t, err, model.ErrNotFound)

	bank, err := repo.GetBankTransaction(ctx, 10, owner)
	require.NoError(t, err)
	assert.False(t, bank.IsMatched)
	assert.Nil(t, bank.TransactionID)

	pending, err := repo.ListMatches(ctx, owner)
	require.NoError(t, err)
	for _, m := range pending {
		assert.NotEqual(t, int64(1), m.TransactionID)
	}
	assert.Len(t, pending, 2)
}

func TestDeleteTransaction_AtomicOnFailure(t *testing.T) {
	svc, repo := newTestService(t)
	seedLinkedPair(t, repo)
	repo.DeleteMatchErr = errors.New("write failed")
	ctx := context.Background()

	err := svc.DeleteTransaction(ctx, 1, owner)

	require.Error(t, err)
	repo.DeleteMatchErr = nil
	bank, err := repo.GetBankTransaction(ctx, 10, owner)
	require.NoError(t, err)
	assert.True(t, bank.IsMatched, "counterpart restored")
	assert.Equal(t, 4, repo.TransactionCount()+repo.BankTransactionCount())
}

func TestDeleteTransaction_OtherOwner(t *testing.T) {
	svc, repo := newTestService(t)
	seedLinkedPair(t, repo)

	err := svc.DeleteTransaction(context.Background(), 1, otherOwner)

	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, 2, repo.TransactionCount())
}

func TestDeleteBankTransaction_ClearsCounterpartAndPendingRows(t *testing.T) {
	svc, repo := newTestService(t)
	seedLinkedPair(t, repo)
	ctx := context.Background()

	require.NoError(t, svc.DeleteBankTransaction(ctx, 10, owner))

	tx, err := repo.GetTransaction(ctx, 1, owner)
	require.NoError(t, err)
	assert.False(t, tx.Matched)
	assert.Nil(t, tx.BankTransactionID)

	pending, err := repo.ListMatches(ctx, owner)
	require.NoError(t, err)
	for _, m := range pending {
		assert.NotEqual(t, int64(10), m.BankTransactionID)
	}
	assert.Len(t, pending, 2)
}

func TestCreateBankTransaction(t *testing.T) {
	svc, _ := newTestService(t)

	bank, err := svc.CreateBankTransaction(context.Background(), owner, model.BankTransactionInput{
		Date:          day(2024, 3, 1),
		Amount:        12,
		Description:   "REFUND",
		BankName:      "First Bank",
		AccountNumber: "1234",
	})
	require.NoError(t, err)
	assert.NotZero(t, bank.ID)
	assert.False(t, bank.IsMatched)

	_, err = svc.CreateBankTransaction(context.Background(), owner, model.BankTransactionInput{Date: day(2024, 3, 1)})
	assert.True(t, model.IsValidation(err))
}

func TestCreateBankTransactions_AllOrNothing(t *testing.T) {
	svc, repo := newTestService(t)
	input := model.BankTransactionInput{Date: day(2024, 3, 1), Amount: 1, Description: "X", BankName: "B", AccountNumber: "1"}
	repo.FailAfterBankCreates = 2

	_, err := svc.CreateBankTransactions(context.Background(), owner, []model.BankTransactionInput{input, input, input})

	require.Error(t, err)
	assert.Equal(t, 0, repo.BankTransactionCount())
}

func TestListBankTransactions_Periods(t *testing.T) {
	svc, repo := newTestService(t)
	dates := []time.Time{
		day(2023, 12, 31), // ISO week 2023-52
		day(2024, 1, 1),   // ISO week 2024-01, Monday
		day(2024, 1, 7),   // ISO week 2024-01, Sunday
		day(2024, 1, 8),   // ISO week 2024-02
		day(2024, 2, 29),
	}
	for i, d := range dates {
		repo.AddBankTransaction(&model.BankTransaction{ID: int64(i + 1), Date: d, Description: "x", BankName: "B", AccountNumber: "1", OwnerID: owner})
	}
	ctx := context.Background()

	tests := []struct {
		name    string
		period  Period
		wantIDs []int64
	}{
		{"none", Period{}, []int64{1, 2, 3, 4, 5}},
		{"date", Period{Kind: PeriodDate, Value: "2024-01-07"}, []int64{3}},
		{"month", Period{Kind: PeriodMonth, Value: "2024-02"}, []int64{5}},
		{"year", Period{Kind: PeriodYear, Value: "2024"}, []int64{2, 3, 4, 5}},
		{"iso week", Period{Kind: PeriodWeek, Value: "2024-01"}, []int64{2, 3}},
		{"iso week spanning years", Period{Kind: PeriodWeek, Value: "2023-52"}, []int64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			banks, err := svc.ListBankTransactions(ctx, owner, ListOptions{Period: tt.period})
			require.NoError(t, err)

			ids := make([]int64, 0, len(banks))
			for _, b := range banks {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestPeriodBounds_Invalid(t *testing.T) {
	tests := []Period{
		{Kind: PeriodDate, Value: "2024/01/07"},
		{Kind: PeriodMonth, Value: "2024-13"},
		{Kind: PeriodYear, Value: "twenty"},
		{Kind: PeriodWeek, Value: "2024-54"},
		{Kind: PeriodWeek, Value: "2023-53"},
		{Kind: PeriodWeek, Value: "202401"},
		{Kind: "quarter", Value: "2024-1"},
		{Kind: PeriodDate, Value: ""},
	}

	for _, p := range tests {
		t.Run(string(p.Kind)+" "+p.Value, func(t *testing.T) {
			_, _, err := p.Bounds()
			assert.True(t, model.IsValidation(err))
		})
	}
}

func TestPeriodBounds_Week53(t *testing.T) {
	from, to, err := Period{Kind: PeriodWeek, Value: "2020-53"}.Bounds()

	require.NoError(t, err)
	assert.Equal(t, day(2020, 12, 28), from)
	assert.Equal(t, day(2021, 1, 3), to)
}

func TestUpdateBankTransaction(t *testing.T) {
	svc, repo := newTestService(t)
	seedLinkedPair(t, repo)
	desc := "SUPERMART #42"

	bank, err := svc.UpdateBankTransaction(context.Background(), 10, owner, model.BankTransactionUpdate{Description: &desc})

	require.NoError(t, err)
	assert.Equal(t, "SUPERMART #42", bank.Description)
	assert.True(t, bank.IsMatched)

	_, err = svc.UpdateBankTransaction(context.Background(), 10, otherOwner, model.BankTransactionUpdate{})
	assert.ErrorIs(t, err, model.ErrNotFound)
}
