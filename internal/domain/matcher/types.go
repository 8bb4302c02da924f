package matcher

import (
	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

// AmountMode selects how the window filter builds its amount range.
type AmountMode string

const (
	// AmountSigned multiplies the signed amount by (1±tolerance) and keeps
	// bank amounts between the two products. For negative amounts the lower
	// product is the larger number, so the range is empty.
	AmountSigned AmountMode = "signed"

	// AmountMagnitude applies the tolerance to the absolute value and requires
	// both amounts to have the same sign.
	AmountMagnitude AmountMode = "magnitude"
)

// Valid reports whether m is a known mode.
func (m AmountMode) Valid() bool {
	return m == AmountSigned || m == AmountMagnitude
}

// Config holds matcher configuration
type Config struct {
	MinConfidence   float64    // Default: 0.6
	WindowDays      int        // Default: 1
	AmountTolerance float64    // Fraction of the amount, default: 0.01 (1%)
	AmountMode      AmountMode // Default: signed
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		MinConfidence:   DefaultMinConfidence,
		WindowDays:      1,
		AmountTolerance: 0.01,
		AmountMode:      AmountSigned,
	}
}

// WindowOptions parameterise FindPotentialMatchesByWindow.
type WindowOptions struct {
	Days            int
	AmountTolerance float64
	Mode            AmountMode
}

// Candidate is a bank transaction scored against one transaction.
type Candidate struct {
	BankTransaction *model.BankTransaction
	Score           float64
}

// Pair is an exact (transaction, bank transaction) assignment.
type Pair struct {
	Transaction     *model.Transaction
	BankTransaction *model.BankTransaction
}

// ConfidenceMatches maps a transaction ID to its ranked candidates.
type ConfidenceMatches map[int64][]Candidate

// Preview splits statement rows by whether a user transaction already covers them.
type Preview struct {
	Matched   []model.StatementRow
	Unmatched []model.StatementRow
}
