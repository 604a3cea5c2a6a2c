package format

import (
	"math"
	"testing"
)

func TestCost(t *testing.T) {
	f := New("en-US")

	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{"grouped thousands", 1234567.891, "$1,234,567.89"},
		{"zero", 0, "$0.00"},
		{"NaN renders as zero", math.NaN(), "$0.00"},
		{"Inf renders as zero", math.Inf(1), "$0.00"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.Cost(tc.amount); got != tc.want {
				t.Errorf("Cost(%v) = %q, want %q", tc.amount, got, tc.want)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	f := New("en-US", WithCurrency("€"), WithDecimals(0))
	if got := f.Cost(1500); got != "€1,500" {
		t.Errorf("Cost(1500) = %q, want €1,500", got)
	}
}

func TestPercent(t *testing.T) {
	f := New("en-US")
	if got := f.Percent(12.34); got != "+12.3%" {
		t.Errorf("Percent(12.34) = %q, want +12.3%%", got)
	}
	if got := f.Percent(-5); got != "-5.0%" {
		t.Errorf("Percent(-5) = %q, want -5.0%%", got)
	}
	if got := f.Percent(math.Inf(1)); got != "0.0%" {
		t.Errorf("Percent(+Inf) = %q, want 0.0%%", got)
	}
}

func TestUnknownLocaleFallsBack(t *testing.T) {
	f := New("not a locale")
	if got := f.Cost(1000); got != "$1,000.00" {
		t.Errorf("Cost(1000) = %q, want en-US fallback", got)
	}
}
