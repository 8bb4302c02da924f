package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

func TestParseCSV_StandardHeaders(t *testing.T) {
	// Arrange
	input := `Date,Description,Amount
2024-01-10,SUPERMART,-50.00
2024-01-11,PAYROLL,2500
`
	// Act
	rows, err := ParseCSV(strings.NewReader(input))

	// Assert
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, model.StatementRow{
		Date:        time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Description: "SUPERMART",
		Amount:      -50.00,
	}, rows[0])
	assert.Equal(t, 2500.0, rows[1].Amount)
}

func TestParseCSV_Aliases(t *testing.T) {
	input := "\ufeffTransaction Date , Narration,Debit/Credit,Balance\n" +
		"01/15/2024,COFFEE SHOP,-4.50,100.00\n" +
		"\n" +
		"2024/01/16,\"PAYROLL, ACME\",\"+2,500.00\",2600.00\n"

	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, "COFFEE SHOP", rows[0].Description)
	assert.Equal(t, -4.50, rows[0].Amount)

	assert.Equal(t, time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), rows[1].Date)
	assert.Equal(t, "PAYROLL, ACME", rows[1].Description)
	assert.Equal(t, 2500.00, rows[1].Amount)
}

func TestParseCSV_AliasPriority(t *testing.T) {
	// "description" wins over "details" regardless of column order
	input := "details,date,description,amount\nignored,2024-01-10,kept,1\n"

	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "kept", rows[0].Description)
}

func TestParseCSV_MissingColumn(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("date,description\n2024-01-10,x\n"))
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
	assert.Contains(t, err.Error(), "amount")
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyStatement)
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader("date,description,amount\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseCSV_BadRowReportsLine(t *testing.T) {
	input := "date,description,amount\n2024-01-10,ok,1\n2024-13-45,bad,2\n"

	_, err := ParseCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3 date")
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	inputs := []string{
		"2024-03-05",
		"2024/03/05",
		"03/05/2024",
		"3/5/2024",
		"03/05/24",
		"05 Mar 2024",
		"5 Mar 2024",
		"Mar 5, 2024",
		"March 5, 2024",
		"05-Mar-2024",
		"2024-03-05 13:45:00",
		"2024-03-05T23:10:00Z",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got, err := ParseDate(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := ParseDate("yesterday")
	assert.Error(t, err)
	_, err = ParseDate("  ")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"42", "42"},
		{"-50.00", "-50"},
		{"+12.34", "12.34"},
		{"1,234.56", "1234.56"},
		{"$1,000", "1000"},
		{"(12.50)", "-12.5"},
		{" 7.25 ", "7.25"},
		{"£3.10", "3.1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	for _, bad := range []string{"", "-", "abc", "1.2.3"} {
		_, err := ParseAmount(bad)
		assert.Error(t, err, bad)
	}
}
