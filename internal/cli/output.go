package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/eshaffer321/homebudget-guard/internal/application/reconcile"
	"github.com/eshaffer321/homebudget-guard/internal/application/records"
	"github.com/eshaffer321/homebudget-guard/internal/domain/matcher"
	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

// PrintHeader prints the application header
func PrintHeader(w io.Writer, ownerID int64, dryRun bool) {
	mode := "IMPORT"
	if dryRun {
		mode = "DRY-RUN"
	}
	fmt.Fprintf(w, "homebudget-guard: owner %d (%s mode)\n", ownerID, mode)
}

// PrintImport prints the rows stored by a statement import.
func PrintImport(w io.Writer, result *records.ImportResult) {
	fmt.Fprintf(w, "Imported %d bank transactions (batch %s)\n", len(result.BankTransactions), result.BatchID)
}

// PrintPreview prints which statement rows already have a transaction.
func PrintPreview(w io.Writer, preview matcher.Preview) {
	fmt.Fprintf(w, "Preview: %d already recorded, %d new\n", len(preview.Matched), len(preview.Unmatched))
	for _, row := range preview.Unmatched {
		fmt.Fprintf(w, "  + %s  %10.2f  %s\n", row.Date.Format(model.DateLayout), row.Amount, row.Description)
	}
}

// PrintProposals prints the pending matches just created.
func PrintProposals(w io.Writer, matches []*model.Match) {
	fmt.Fprintf(w, "Proposed %d exact matches\n", len(matches))
	for _, m := range matches {
		fmt.Fprintf(w, "  #%d  transaction %d <-> bank %d  %s  %.2f\n",
			m.ID, m.TransactionID, m.BankTransactionID, m.MatchDate.Format(model.DateLayout), m.MatchAmount)
	}
}

// PrintSummary prints the reconciliation summary
func PrintSummary(w io.Writer, summary *reconcile.Summary) {
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Summary: Transactions=%d Matched=%d Unmatched=%d (%.2f%%)\n",
		summary.TotalTransactions,
		summary.MatchedTransactions,
		summary.UnmatchedTransactions,
		summary.MatchPercentage)
	fmt.Fprintf(w, "Bank: Total=%d Unmatched=%d | Pending matches=%d\n",
		summary.TotalBankTransactions,
		summary.UnmatchedBank,
		summary.PendingMatches)
}
