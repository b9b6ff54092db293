package recon

import (
	"time"

	"github.com/shopspring/decimal"
)

// The three dimension scorers are pure functions mapping a pair of inputs to
// a score in [0,1] with discrete bands. Missing or degenerate input scores 0,
// it never errors.

// AmountScore compares absolute values. Signs are ignored because bank
// transactions are signed while record amounts are magnitudes.
func AmountScore(a, b decimal.Decimal) float64 {
	absA := a.Abs()
	absB := b.Abs()
	if absA.Equal(absB) {
		return 1.0
	}
	max := decimal.Max(absA, absB)
	if max.IsZero() {
		return 0
	}
	d, _ := absA.Sub(absB).Abs().Div(max).Float64()
	switch {
	case d <= 0.02:
		return 0.95
	case d <= 0.05:
		return 0.7
	case d <= 0.10:
		return 0.3
	default:
		return 0
	}
}

// DateScore scores calendar-day proximity. Same day is a perfect score;
// anything beyond two weeks scores 0.
func DateScore(a, b time.Time) float64 {
	switch diff := daysApart(a, b); {
	case diff <= 0:
		return 1.0
	case diff <= 3:
		return 0.9
	case diff <= 5:
		return 0.7
	case diff <= 7:
		return 0.5
	case diff <= 14:
		return 0.3
	default:
		return 0
	}
}

// TextScore computes Jaccard similarity over the normalized token sets of the
// two texts. An empty token set on either side scores 0.
func TextScore(a, b string) float64 {
	setA := tokenSet(tokenize(a))
	setB := tokenSet(tokenize(b))
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

// daysApart returns the absolute whole-day distance between two calendar
// dates, ignoring the time-of-day component.
func daysApart(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := int(da.Sub(db).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}
