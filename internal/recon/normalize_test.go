package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "latin lowercase passthrough", input: "aegean airlines", want: "aegean airlines"},
		{name: "uppercase lowered", input: "AEGEAN Airlines", want: "aegean airlines"},
		{name: "punctuation stripped", input: "S.A. Travel, Ltd.", want: "sa travel ltd"},
		{name: "greek diacritics stripped", input: "Καφές", want: "καφες"},
		{name: "greek with abbreviation dots", input: "ΔΕΗ Α.Ε.", want: "δεη αε"},
		{name: "mixed scripts and digits", input: "ΔΕΗ invoice #2024-15", want: "δεη invoice 202415"},
		{name: "whitespace trimmed", input: "  πληρωμη  ", want: "πληρωμη"},
		{name: "empty", input: "", want: ""},
		{name: "only punctuation", input: "...!!!", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.input))
		})
	}
}

func TestTokenizeDropsShortTokens(t *testing.T) {
	tokens := tokenize("ΔΕΗ ΑΕ πληρωμή το 15")
	// "αε", "το" and "15" are two runes or fewer and must not survive.
	assert.Equal(t, []string{"δεη", "πληρωμη"}, tokens)
}
