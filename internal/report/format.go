package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency code is configured.
const DefaultCurrency = "EUR"

// FormatTonnes renders whole tonnes with thousands separators.
func FormatTonnes(v float64) string {
	return groupThousands(decimal.NewFromFloat(v).Round(0).String())
}

// FormatMoney renders an amount in whole currency units, e.g. "EUR 302,681".
// Halves round away from zero.
func FormatMoney(amount float64, currency string) string {
	value := groupThousands(decimal.NewFromFloat(amount).Round(0).String())
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return value
	}
	return currency + " " + value
}

// FormatScore renders a risk score with one decimal.
func FormatScore(score float64) string {
	return decimal.NewFromFloat(score).StringFixed(1)
}

// FormatSignal renders a normalized signal with two decimals.
func FormatSignal(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatInt renders an integer with thousands separators.
func FormatInt(v int) string {
	return groupThousands(decimal.NewFromInt(int64(v)).String())
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}
