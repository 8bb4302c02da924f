package ingest

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

func TestWriteUnmatchedCSV(t *testing.T) {
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	txs := []*model.Transaction{
		{ID: 1, Date: day, Amount: -12.5, Category: "lunch", Note: "team lunch", Type: model.TypeExpense},
	}
	banks := []*model.BankTransaction{
		{ID: 2, Date: day, Amount: -50, Description: "SUPERMART, INC", BankName: "First Bank", AccountNumber: "1234"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteUnmatchedCSV(&buf, txs, banks))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Description,Amount,Bank Name,Account Number,Category,Source", lines[0])
	assert.Equal(t, `2024-01-10,"SUPERMART, INC",-50.00,First Bank,1234,,Bank Transaction`, lines[1])
	assert.Equal(t, "2024-01-10,team lunch,-12.50,,,lunch,User Transaction", lines[2])
}

func TestWriteUnmatchedCSV_RoundTripsThroughParser(t *testing.T) {
	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	banks := []*model.BankTransaction{
		{Date: day, Amount: 99.99, Description: "REFUND", BankName: "B", AccountNumber: "1"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteUnmatchedCSV(&buf, nil, banks))

	rows, err := ParseCSV(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, day, rows[0].Date)
	assert.Equal(t, "REFUND", rows[0].Description)
	assert.Equal(t, 99.99, rows[0].Amount)
}
