package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_Description(t *testing.T) {
	tx := &Transaction{Category: "groceries"}
	assert.Equal(t, "groceries", tx.Description())

	tx.Note = "  "
	assert.Equal(t, "groceries", tx.Description(), "blank note falls back to category")

	tx.Note = "Supermart run"
	assert.Equal(t, "Supermart run", tx.Description())
}

func TestLinkAndUnlink(t *testing.T) {
	tx := &Transaction{ID: 1}
	bank := &BankTransaction{ID: 2}

	tx.LinkTo(bank.ID)
	bank.LinkTo(tx.ID)

	assert.True(t, tx.Matched)
	assert.True(t, bank.IsMatched)
	assert.True(t, tx.LinkedTo(2))
	assert.True(t, bank.LinkedTo(1))
	assert.False(t, tx.LinkedTo(3))

	tx.Unlink()
	bank.Unlink()

	assert.False(t, tx.Matched)
	assert.Nil(t, tx.BankTransactionID)
	assert.False(t, bank.IsMatched)
	assert.Nil(t, bank.TransactionID)
}

func TestDaysBetween(t *testing.T) {
	base := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysBetween(base, base.Add(23*time.Hour)))
	assert.Equal(t, 1, DaysBetween(base, base.AddDate(0, 0, 1)))
	assert.Equal(t, 1, DaysBetween(base.AddDate(0, 0, 1), base))
	assert.Equal(t, 3, DaysBetween(base, base.AddDate(0, 0, -3)))
	// Spans months of different lengths.
	assert.Equal(t, 31, DaysBetween(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func TestTransactionInput_Validate(t *testing.T) {
	valid := TransactionInput{
		Date:     time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC),
		Amount:   -50,
		Category: "groceries",
		Type:     TypeExpense,
	}
	require.NoError(t, valid.Validate())

	built := valid.Build(7)
	assert.Equal(t, int64(7), built.OwnerID)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), built.Date)
	assert.False(t, built.Matched)

	tests := []struct {
		name  string
		input TransactionInput
		field string
	}{
		{"missing date", TransactionInput{Category: "x", Type: TypeIncome}, "date"},
		{"missing category", TransactionInput{Date: time.Now(), Type: TypeIncome}, "category"},
		{"bad type", TransactionInput{Date: time.Now(), Category: "x", Type: "transfer"}, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestTransactionUpdate_Apply(t *testing.T) {
	tx := &Transaction{ID: 1, Amount: 10, Category: "food", Type: TypeExpense, Matched: true}
	amount := 12.5
	note := "lunch"

	update := TransactionUpdate{Amount: &amount, Note: &note}
	require.NoError(t, update.Validate())
	update.Apply(tx)

	assert.Equal(t, 12.5, tx.Amount)
	assert.Equal(t, "lunch", tx.Note)
	assert.Equal(t, "food", tx.Category)
	assert.True(t, tx.Matched, "match state is not touched by updates")

	empty := ""
	assert.Error(t, TransactionUpdate{Category: &empty}.Validate())
}

func TestBankTransactionInput_Validate(t *testing.T) {
	in := BankTransactionInput{
		Date:          time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
		Amount:        -50,
		Description:   " SUPERMART ",
		BankName:      "First Bank",
		AccountNumber: "12345678",
	}
	require.NoError(t, in.Validate())
	assert.Equal(t, "SUPERMART", in.Build(1).Description)

	in.AccountNumber = ""
	assert.True(t, IsValidation(in.Validate()))
}

func TestBankTransactionInput_ValidateStatementRow(t *testing.T) {
	in := BankTransactionInput{
		Date:          time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
		Amount:        -50,
		BankName:      "First Bank",
		AccountNumber: "12345678",
	}

	assert.True(t, IsValidation(in.Validate()), "manual entries need a description")
	require.NoError(t, in.ValidateStatementRow())
	assert.Equal(t, "", in.Build(1).Description)

	in.Date = time.Time{}
	assert.True(t, IsValidation(in.ValidateStatementRow()))
}
