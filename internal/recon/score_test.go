package recon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func TestAmountScore(t *testing.T) {
	tests := []struct {
		name string
		a, b decimal.Decimal
		want float64
	}{
		{name: "exact", a: d("100.00"), b: d("100.00"), want: 1.0},
		{name: "sign ignored", a: d("-50.00"), b: d("50.00"), want: 1.0},
		{name: "within 2 percent", a: d("98.00"), b: d("100.00"), want: 0.95},
		{name: "within 5 percent", a: d("96.00"), b: d("100.00"), want: 0.7},
		{name: "within 10 percent", a: d("91.00"), b: d("100.00"), want: 0.3},
		{name: "beyond 10 percent", a: d("80.00"), b: d("100.00"), want: 0},
		{name: "zero vs nonzero", a: d("0"), b: d("100.00"), want: 0},
		{name: "both zero", a: d("0"), b: d("0"), want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AmountScore(tt.a, tt.b)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestDateScore(t *testing.T) {
	base := day(2024, time.March, 15)
	tests := []struct {
		name  string
		other time.Time
		want  float64
	}{
		{name: "same day", other: day(2024, time.March, 15), want: 1.0},
		{name: "same day different hour", other: time.Date(2024, time.March, 15, 23, 30, 0, 0, time.UTC), want: 1.0},
		{name: "three days", other: day(2024, time.March, 18), want: 0.9},
		{name: "five days", other: day(2024, time.March, 10), want: 0.7},
		{name: "seven days", other: day(2024, time.March, 22), want: 0.5},
		{name: "fourteen days", other: day(2024, time.March, 1), want: 0.3},
		{name: "beyond two weeks", other: day(2024, time.April, 20), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateScore(base, tt.other)
			assert.Equal(t, tt.want, got)
			// Symmetric in its arguments.
			assert.Equal(t, got, DateScore(tt.other, base))
		})
	}
}

func TestTextScore(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "aegean airlines", b: "aegean airlines", want: 1.0},
		{name: "case and punctuation irrelevant", a: "AEGEAN Airlines S.A.", b: "aegean airlines sa!", want: 1.0},
		{name: "half overlap", a: "aegean airlines", b: "aegean hotels", want: 1.0 / 3.0},
		{name: "no overlap", a: "aegean airlines", b: "olympic travel", want: 0},
		{name: "greek vendor", a: "πληρωμη ΔΕΗ λογαριασμος", b: "ΔΕΗ Α.Ε.", want: 1.0 / 3.0},
		{name: "empty left", a: "", b: "aegean", want: 0},
		{name: "empty right", a: "aegean", b: "", want: 0},
		{name: "only short tokens", a: "το α.ε.", b: "aegean", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TextScore(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}
