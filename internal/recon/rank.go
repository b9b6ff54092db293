package recon

import (
	"sort"

	"github.com/google/uuid"

	"traveldesk-backend/internal/models"
)

// DefaultMaxSuggestions caps the interactive suggestion list.
const DefaultMaxSuggestions = 5

// MatchSuggestion is one ranked candidate pairing surfaced for human review.
// Suggestions are ephemeral: recomputed on every call, never persisted.
type MatchSuggestion struct {
	RecordID        uuid.UUID               `json:"record_id"`
	RecordKind      models.RecordKind       `json:"record_kind"`
	Confidence      float64                 `json:"confidence"`
	ConfidenceLevel Level                   `json:"confidence_level"`
	DisplayStyle    string                  `json:"display_style"`
	Reasons         []string                `json:"reasons"`
	Record          *models.FinancialRecord `json:"record"`
}

// Rank scores every candidate record against tx with the normalized weighted
// strategy and returns the top maxSuggestions candidates above the
// suggestion threshold, best first. Records without an amount, or whose
// amount scores 0 against tx, never appear. Rank is pure and deterministic:
// the sort is stable, so equal-confidence candidates keep input order.
func Rank(tx *models.BankTransaction, records []*models.FinancialRecord, maxSuggestions int) []MatchSuggestion {
	if maxSuggestions <= 0 {
		maxSuggestions = DefaultMaxSuggestions
	}

	var strategy NormalizedWeightedStrategy
	var suggestions []MatchSuggestion
	for _, rec := range records {
		breakdown, ok := strategy.Score(tx, rec)
		if !ok || breakdown.Score < MinSuggestionConfidence {
			continue
		}
		level := Classify(breakdown.Score)
		suggestions = append(suggestions, MatchSuggestion{
			RecordID:        rec.ID,
			RecordKind:      rec.Kind,
			Confidence:      breakdown.Score,
			ConfidenceLevel: level,
			DisplayStyle:    DisplayStyle(level),
			Reasons:         breakdown.Reasons,
			Record:          rec,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}
