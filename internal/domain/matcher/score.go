package matcher

import (
	"math"
	"strings"

	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
)

const (
	// DefaultMinConfidence is the lowest score a candidate may have.
	DefaultMinConfidence = 0.6

	// AmountEpsilon is the currency-unit tolerance for "same amount".
	AmountEpsilon = 0.01

	// ScoreDateWindow is the day difference at which the date factor reaches zero.
	ScoreDateWindow = 3

	factorCount = 3
)

// Score rates how likely tx and bank describe the same event, in [0,1].
// It is the unweighted mean of an amount, a date and a description factor.
func Score(tx *model.Transaction, bank *model.BankTransaction) float64 {
	return (amountFactor(tx.Amount, bank.Amount) +
		dateFactor(model.DaysBetween(tx.Date, bank.Date)) +
		descriptionFactor(tx.Description(), bank.Description)) / factorCount
}

// amountFactor is binary: amounts within a cent score 1.
func amountFactor(a, b float64) float64 {
	if math.Abs(a-b) < AmountEpsilon {
		return 1.0
	}
	return 0.0
}

// dateFactor decays linearly from 1 on the same day to 0 at ScoreDateWindow days.
func dateFactor(days int) float64 {
	if days > ScoreDateWindow {
		return 0.0
	}
	return 1.0 - float64(days)/ScoreDateWindow
}

// descriptionFactor is 1 when either text contains the other, ignoring case.
// Text is compared as given, so an empty text is contained in anything.
func descriptionFactor(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if strings.Contains(b, a) || strings.Contains(a, b) {
		return 1.0
	}
	return 0.0
}
