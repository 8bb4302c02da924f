// Package matcher decides which bank transactions correspond to which
// user-reported transactions.
//
// Two strategies are provided:
//   - Exact: same calendar day and identical amount, first unclaimed bank
//     transaction wins (FindExactMatches)
//   - Confidence: every unmatched bank transaction is scored and candidates at
//     or above a threshold are ranked (FindConfidenceMatches)
//
// A coarser window filter (FindPotentialMatchesByWindow) lists bank
// transactions near a transaction in date and amount without scoring them.
//
// Nothing in this package persists or mutates records; confirming a pairing is
// the caller's job.
//
// Example usage:
//
//	m := matcher.NewMatcher(matcher.DefaultConfig())
//	best, ok := m.FindBest(tx, bankTransactions)
//	if ok {
//		// best.BankTransaction scored best.Score
//	}
package matcher

import (
	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

// Matcher applies the package functions with configured defaults.
type Matcher struct {
	config Config
}

// NewMatcher creates a new matcher with the given config
func NewMatcher(config Config) *Matcher {
	return &Matcher{
		config: config,
	}
}

// Config returns the matcher configuration.
func (m *Matcher) Config() Config {
	return m.config
}

// WindowOptions returns the configured window filter options.
func (m *Matcher) WindowOptions() WindowOptions {
	return WindowOptions{
		Days:            m.config.WindowDays,
		AmountTolerance: m.config.AmountTolerance,
		Mode:            m.config.AmountMode,
	}
}

// FindCandidates ranks pool against tx using the configured threshold.
func (m *Matcher) FindCandidates(tx *model.Transaction, pool []*model.BankTransaction) []Candidate {
	return FindCandidates(tx, pool, m.config.MinConfidence)
}

// FindBest returns the top candidate for tx using the configured threshold.
func (m *Matcher) FindBest(tx *model.Transaction, pool []*model.BankTransaction) (Candidate, bool) {
	return FindBest(tx, pool, m.config.MinConfidence)
}

// FindConfidenceMatches runs the confidence strategy with the configured threshold.
func (m *Matcher) FindConfidenceMatches(txs []*model.Transaction, pool []*model.BankTransaction) ConfidenceMatches {
	return FindConfidenceMatches(txs, pool, m.config.MinConfidence)
}

// FindPotentialMatchesByWindow runs the window filter with the configured options.
func (m *Matcher) FindPotentialMatchesByWindow(tx *model.Transaction, pool []*model.BankTransaction) []*model.BankTransaction {
	return FindPotentialMatchesByWindow(tx, pool, m.WindowOptions())
}

// FindExactMatches runs the exact strategy.
func (m *Matcher) FindExactMatches(txs []*model.Transaction, pool []*model.BankTransaction) []Pair {
	return FindExactMatches(txs, pool)
}
