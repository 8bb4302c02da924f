package matcher

import (
	"math"
	"sort"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

// FindExactMatches pairs each transaction with the first bank transaction, in
// pool order, that falls on the same calendar day with an identical amount
// and has not been claimed earlier in this call. The assignment is greedy in
// input order; neither slice is re-sorted.
// Dates are treated as calendar days, so any time of day is ignored.
func FindExactMatches(txs []*model.Transaction, pool []*model.BankTransaction) []Pair {
	pairs := make([]Pair, 0)

	// Track claims in this operation to prevent duplicates
	claimed := make(map[int64]bool)

	for _, tx := range txs {
		if tx == nil {
			continue
		}

		for _, bank := range pool {
			if bank == nil || claimed[bank.ID] {
				continue
			}
			if !model.SameDay(tx.Date, bank.Date) || tx.Amount != bank.Amount {
				continue
			}

			claimed[bank.ID] = true
			pairs = append(pairs, Pair{Transaction: tx, BankTransaction: bank})
			break
		}
	}

	return pairs
}

// FindConfidenceMatches evaluates every unmatched transaction, oldest first,
// against the whole pool and keeps the ranked candidates of those that have
// any. Bank transactions are not claimed between transactions, so one bank
// transaction may be offered to several of them.
func FindConfidenceMatches(txs []*model.Transaction, pool []*model.BankTransaction, minConfidence float64) ConfidenceMatches {
	matches := make(ConfidenceMatches)

	for _, tx := range SortByDate(txs) {
		if tx.Matched {
			continue
		}

		candidates := FindCandidates(tx, pool, minConfidence)
		if len(candidates) > 0 {
			matches[tx.ID] = candidates
		}
	}

	return matches
}

// SortByDate returns the non-nil transactions ordered by calendar date,
// keeping input order for equal dates. The input slice is not modified.
func SortByDate(txs []*model.Transaction) []*model.Transaction {
	sorted := make([]*model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx != nil {
			sorted = append(sorted, tx)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return model.Day(sorted[i].Date).Before(model.Day(sorted[j].Date))
	})

	return sorted
}

// PreviewStatement reports, for each statement row, whether one of txs lies
// within dateTolerance days and a cent of it.
func PreviewStatement(rows []model.StatementRow, txs []*model.Transaction, dateTolerance int) Preview {
	preview := Preview{
		Matched:   make([]model.StatementRow, 0),
		Unmatched: make([]model.StatementRow, 0),
	}

	for _, row := range rows {
		if hasCounterpart(row, txs, dateTolerance) {
			preview.Matched = append(preview.Matched, row)
		} else {
			preview.Unmatched = append(preview.Unmatched, row)
		}
	}

	return preview
}

func hasCounterpart(row model.StatementRow, txs []*model.Transaction, dateTolerance int) bool {
	for _, tx := range txs {
		if tx == nil {
			continue
		}
		if model.DaysBetween(row.Date, tx.Date) <= dateTolerance && math.Abs(tx.Amount-row.Amount) < AmountEpsilon {
			return true
		}
	}
	return false
}
