// Package currency formats rupiah amounts for display.
package currency

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const fractionDigits = 3

var printer = message.NewPrinter(language.Indonesian)

// Format renders amount with Indonesian grouping, e.g. "Rp 5.100.000".
// Up to three fraction digits are kept; trailing zeros are dropped. The
// digits come from the decimal itself, so large amounts stay exact.
func Format(amount decimal.Decimal) string {
	rounded := amount.Round(fractionDigits)
	digits := rounded.Abs().String()
	whole, frac, _ := strings.Cut(digits, ".")

	var b strings.Builder
	b.WriteString("Rp ")
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(groupWhole(whole))
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}

func groupWhole(whole string) string {
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		return printer.Sprint(number.Decimal(n))
	}
	// Beyond int64 the locale separator is applied by hand.
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String()
}
