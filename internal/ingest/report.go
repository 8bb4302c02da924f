package ingest

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

var reportHeader = []string{"Date", "Description", "Amount", "Bank Name", "Account Number", "Category", "Source"}

// WriteUnmatchedCSV writes unmatched bank transactions followed by unmatched
// user transactions as one CSV sheet.
func WriteUnmatchedCSV(w io.Writer, txs []*model.Transaction, banks []*model.BankTransaction) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(reportHeader); err != nil {
		return err
	}

	for _, bank := range banks {
		record := []string{
			bank.Date.Format(model.DateLayout),
			bank.Description,
			formatAmount(bank.Amount),
			bank.BankName,
			bank.AccountNumber,
			"",
			"Bank Transaction",
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	for _, tx := range txs {
		record := []string{
			tx.Date.Format(model.DateLayout),
			tx.Description(),
			formatAmount(tx.Amount),
			"",
			"",
			tx.Category,
			"User Transaction",
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
