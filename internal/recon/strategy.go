package recon

import (
	"fmt"

	"github.com/shopspring/decimal"

	"traveldesk-backend/internal/models"
)

// Breakdown is the outcome of scoring one transaction/record pair: a score
// on the strategy's own scale plus the reasons that contributed to it.
type Breakdown struct {
	Score   float64
	Reasons []string
}

// ScoringStrategy scores a candidate record against a transaction. The two
// implementations encode the same intuition on different scales: the ranker
// uses a normalized weighted average in [0,1], the batch reconciler a fixed
// additive 0-100 point scale. They are deliberately kept as two named
// policies rather than merged.
//
// Score returns ok=false when the pair is ineligible for this strategy and
// must be skipped rather than scored.
type ScoringStrategy interface {
	Name() string
	Score(tx *models.BankTransaction, rec *models.FinancialRecord) (Breakdown, bool)
}

// Ranker weights and thresholds.
const (
	weightAmount = 0.40
	weightDate   = 0.35
	weightText   = 0.25

	// MinSuggestionConfidence is the floor below which the ranker discards
	// a candidate outright.
	MinSuggestionConfidence = 0.5
)

// NormalizedWeightedStrategy is the interactive ranker's policy: a weighted
// average over the dimensions that actually had data. A record missing a
// date is not penalized for it — the date weight simply leaves the
// denominator. Amount is the one mandatory dimension.
type NormalizedWeightedStrategy struct{}

func (NormalizedWeightedStrategy) Name() string { return "normalized_weighted" }

func (NormalizedWeightedStrategy) Score(tx *models.BankTransaction, rec *models.FinancialRecord) (Breakdown, bool) {
	if rec.Amount == nil {
		return Breakdown{}, false
	}
	amount := AmountScore(tx.Amount, *rec.Amount)
	if amount == 0 {
		return Breakdown{}, false
	}

	sum := amount * weightAmount
	weightSum := weightAmount
	reasons := amountReasons(amount)

	if rec.RecordDate != nil {
		date := DateScore(tx.TransactionDate, *rec.RecordDate)
		sum += date * weightDate
		weightSum += weightDate
		reasons = append(reasons, dateReasons(date)...)
	}

	if text := rec.ComparableText(); text != "" {
		score := TextScore(tx.Description, text)
		sum += score * weightText
		weightSum += weightText
		reasons = append(reasons, textReasons(score)...)
	}

	return Breakdown{Score: sum / weightSum, Reasons: reasons}, true
}

func amountReasons(score float64) []string {
	switch {
	case score >= 1.0:
		return []string{"exact amount"}
	case score >= 0.95:
		return []string{"amount within 2%"}
	case score >= 0.7:
		return []string{"amount within 5%"}
	case score > 0:
		return []string{"amount within 10%"}
	}
	return nil
}

func dateReasons(score float64) []string {
	switch {
	case score >= 1.0:
		return []string{"same date"}
	case score >= 0.9:
		return []string{"within 3 days"}
	case score >= 0.7:
		return []string{"within 5 days"}
	case score >= 0.5:
		return []string{"within 7 days"}
	case score > 0:
		return []string{"within 14 days"}
	}
	return nil
}

func textReasons(score float64) []string {
	switch {
	case score >= 0.7:
		return []string{"name match"}
	case score >= 0.3:
		return []string{"partial name match"}
	}
	return nil
}

// Additive point values for the batch reconciler: amount up to 50, date up
// to 25, text up to 15, matching group +10.
const (
	pointsAmountExact   = 50.0
	pointsAmountOnePct  = 45.0
	pointsAmountFivePct = 30.0
	pointsDateClose     = 25.0
	pointsDateWeek      = 20.0
	pointsDateMonth     = 10.0
	pointsTextStrong    = 15.0
	pointsTextPartial   = 10.0
	pointsGroup         = 10.0
)

// AdditivePointStrategy is the batch reconciler's policy: a 0-100 additive
// point scale. Unlike the weighted strategy it tolerates a missing amount
// (that dimension just contributes nothing), because the batch path filters
// candidates by expected kind instead.
type AdditivePointStrategy struct{}

func (AdditivePointStrategy) Name() string { return "additive_points" }

func (AdditivePointStrategy) Score(tx *models.BankTransaction, rec *models.FinancialRecord) (Breakdown, bool) {
	var points float64
	var reasons []string

	if rec.Amount != nil {
		txAbs := tx.Amount.Abs()
		recAbs := rec.Amount.Abs()
		switch {
		case txAbs.Equal(recAbs):
			points += pointsAmountExact
			reasons = append(reasons, "exact amount")
		default:
			if max := decimal.Max(txAbs, recAbs); !max.IsZero() {
				d, _ := txAbs.Sub(recAbs).Abs().Div(max).Float64()
				switch {
				case d <= 0.01:
					points += pointsAmountOnePct
					reasons = append(reasons, "amount within 1%")
				case d <= 0.05:
					points += pointsAmountFivePct
					reasons = append(reasons, "amount within 5%")
				}
			}
		}
	}

	if rec.RecordDate != nil {
		switch diff := daysApart(tx.TransactionDate, *rec.RecordDate); {
		case diff <= 3:
			points += pointsDateClose
			reasons = append(reasons, "within 3 days")
		case diff <= 7:
			points += pointsDateWeek
			reasons = append(reasons, "within 7 days")
		case diff <= 30:
			points += pointsDateMonth
			reasons = append(reasons, "within 30 days")
		}
	}

	if text := rec.ComparableText(); text != "" {
		switch similarity := TextScore(tx.Description, text); {
		case similarity > 0.7:
			points += pointsTextStrong
			reasons = append(reasons, "name match")
		case similarity > 0.4:
			points += pointsTextPartial
			reasons = append(reasons, fmt.Sprintf("partial name match (%.0f%%)", similarity*100))
		}
	}

	if tx.GroupID != nil && rec.GroupID != nil && *tx.GroupID == *rec.GroupID {
		points += pointsGroup
		reasons = append(reasons, "same group")
	}

	return Breakdown{Score: points, Reasons: reasons}, true
}
