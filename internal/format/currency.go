// Package format renders amounts and percentages for people.
package format

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"fintrack/internal/core"
)

const (
	DefaultLocale = "en-IN"
	DefaultSymbol = "₹"
)

// Formatter renders Money in one locale with a fixed currency symbol.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// New returns a Formatter for the BCP 47 locale tag. An unparseable tag
// falls back to DefaultLocale.
func New(locale, symbol string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	return &Formatter{printer: message.NewPrinter(tag), symbol: symbol}
}

// Default is the en-IN rupee formatter.
func Default() *Formatter {
	return New(DefaultLocale, DefaultSymbol)
}

// Currency renders m with grouping and exactly two fraction digits,
// for example ₹1,23,456.50 in en-IN.
func (f *Formatter) Currency(m core.Money) string {
	d := m.Decimal()
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole := d.Truncate(0)
	cents, _ := d.Sub(whole).Float64()

	// fraction renders as 0.xx; the leading zero is dropped below
	intDigits := f.printer.Sprint(number.Decimal(whole.IntPart()))
	fraction := strings.TrimSpace(f.printer.Sprint(number.Decimal(cents, number.Scale(2))))
	_, size := utf8.DecodeRuneInString(fraction)
	return sign + f.symbol + strings.TrimSpace(intDigits) + fraction[size:]
}

// Percent renders p with one decimal place.
func (f *Formatter) Percent(p float64) string {
	return f.printer.Sprintf("%.1f%%", p)
}

// Currency formats with the default formatter.
func Currency(m core.Money) string {
	return Default().Currency(m)
}
