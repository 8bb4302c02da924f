package matcher

import (
	"math"
	"sort"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

// FindCandidates scores every unmatched bank transaction in pool against tx
// and returns those scoring at least minConfidence, best first. Equal scores
// are ordered by bank transaction ID.
func FindCandidates(tx *model.Transaction, pool []*model.BankTransaction, minConfidence float64) []Candidate {
	candidates := make([]Candidate, 0)

	for _, bank := range pool {
		if bank == nil || bank.IsMatched {
			continue
		}

		score := Score(tx, bank)
		if score < minConfidence {
			continue
		}

		candidates = append(candidates, Candidate{BankTransaction: bank, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].BankTransaction.ID < candidates[j].BankTransaction.ID
	})

	return candidates
}

// FindBest returns the highest ranked candidate. When nothing clears the
// threshold it returns the zero Candidate (nil bank transaction, score 0) and false.
func FindBest(tx *model.Transaction, pool []*model.BankTransaction, minConfidence float64) (Candidate, bool) {
	candidates := FindCandidates(tx, pool, minConfidence)
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	return candidates[0], true
}

// FindPotentialMatchesByWindow returns the unmatched bank transactions of
// tx's owner dated within opts.Days of tx (inclusive) whose amount lies in the
// tolerance range chosen by opts.Mode. Pool order is preserved.
func FindPotentialMatchesByWindow(tx *model.Transaction, pool []*model.BankTransaction, opts WindowOptions) []*model.BankTransaction {
	inRange := amountRange(tx.Amount, opts)

	matches := make([]*model.BankTransaction, 0)
	for _, bank := range pool {
		if bank == nil || bank.IsMatched || bank.OwnerID != tx.OwnerID {
			continue
		}
		if model.DaysBetween(tx.Date, bank.Date) > opts.Days {
			continue
		}
		if !inRange(bank.Amount) {
			continue
		}
		matches = append(matches, bank)
	}

	return matches
}

// amountRange builds the inclusive amount predicate for the window filter.
func amountRange(amount float64, opts WindowOptions) func(float64) bool {
	// Add small epsilon to handle floating point precision issues
	const epsilon = 0.0000001

	if opts.Mode == AmountMagnitude {
		magnitude := math.Abs(amount)
		lo := magnitude * (1 - opts.AmountTolerance)
		hi := magnitude * (1 + opts.AmountTolerance)
		negative := amount < 0
		return func(v float64) bool {
			if (v < 0) != negative {
				return false
			}
			abs := math.Abs(v)
			return abs >= lo-epsilon && abs <= hi+epsilon
		}
	}

	lo := amount * (1 - opts.AmountTolerance)
	hi := amount * (1 + opts.AmountTolerance)
	return func(v float64) bool {
		return v >= lo-epsilon && v <= hi+epsilon
	}
}
