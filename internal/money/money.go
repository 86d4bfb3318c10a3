// Package money converts between decimal amounts and the int64 cents used
// everywhere else.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FromDecimal converts d to cents, rounding half away from zero.
func FromDecimal(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

func ToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Format renders cents as a fixed two-decimal string, e.g. 123456 -> "1234.56".
func Format(cents int64) string {
	return ToDecimal(cents).StringFixed(2)
}

// ParseEuropean parses amounts like "1.234,56" or "-588,74" into cents.
func ParseEuropean(s string) (int64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	return FromDecimal(d), nil
}

// Parse parses a plain decimal amount like "1234.56" into cents.
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}

	return FromDecimal(d), nil
}

// Percent returns part/whole*100 rounded to two places, or 0 when whole is 0.
func Percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}

	return Round2(decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(whole)))
}

// PercentFloor is Percent truncated toward zero at two decimals.
func PercentFloor(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}

	return decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(whole)).Truncate(2).InexactFloat64()
}

// Round2 rounds d to two decimal places and returns it as a float.
func Round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Average returns total/count in cents, rounded, or 0 when count is 0.
func Average(total int64, count int) int64 {
	if count == 0 {
		return 0
	}

	return decimal.NewFromInt(total).Div(decimal.NewFromInt(int64(count))).Round(0).IntPart()
}
