package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders monetary amounts and percentages for display. All
// aggregation output stays numeric; rendering happens here at the edge.
type Formatter struct {
	printer  *message.Printer
	currency string
	decimals int
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithCurrency sets the currency symbol prefix. Default "$".
func WithCurrency(symbol string) Option {
	return func(f *Formatter) { f.currency = symbol }
}

// WithDecimals sets the number of fraction digits. Default 2.
func WithDecimals(n int) Option {
	return func(f *Formatter) {
		if n >= 0 {
			f.decimals = n
		}
	}
}

// New creates a Formatter for the given BCP 47 locale tag. Unknown or
// empty tags fall back to en-US.
func New(locale string, opts ...Option) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.AmericanEnglish
	}
	f := &Formatter{
		printer:  message.NewPrinter(tag),
		currency: "$",
		decimals: 2,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Cost renders an amount with the currency symbol and locale-aware
// digit grouping. Non-finite amounts render as zero.
func (f *Formatter) Cost(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	return f.printer.Sprintf("%s%.*f", f.currency, f.decimals, amount)
}

// Percent renders a signed percentage with one fraction digit.
func (f *Formatter) Percent(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		pct = 0
	}
	if pct > 0 {
		return f.printer.Sprintf("+%.1f%%", pct)
	}
	return f.printer.Sprintf("%.1f%%", pct)
}

// Count renders an integer with locale-aware digit grouping.
func (f *Formatter) Count(n int) string {
	return f.printer.Sprintf("%d", n)
}
