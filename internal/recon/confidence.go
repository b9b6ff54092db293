package recon

// Level buckets a continuous confidence score for display.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Classify maps a confidence in [0,1] to its display level.
func Classify(confidence float64) Level {
	switch {
	case confidence >= 0.9:
		return LevelHigh
	case confidence >= 0.7:
		return LevelMedium
	default:
		return LevelLow
	}
}

// DisplayStyle returns the UI styling hint for a level. Purely cosmetic,
// nothing in the engine branches on it.
func DisplayStyle(level Level) string {
	switch level {
	case LevelHigh:
		return "success"
	case LevelMedium:
		return "warning"
	default:
		return "muted"
	}
}
