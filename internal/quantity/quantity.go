// Package quantity parses feed-reported stock quantities.
//
// Feed columns use two encodings. Decimal columns carry a localized
// number such as "5,0" and are rounded half-up to a whole unit. Integer
// columns are read from their leading digits. Both read the longest
// numeric prefix of the value, so "12 pcs" is 12.
package quantity

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/stocksync/internal/core/domain"
)

var (
	half     = decimal.NewFromFloat(0.5)
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// inRange reports whether d fits an int64.
func inRange(d decimal.Decimal) bool {
	return !d.LessThan(minInt64) && !d.GreaterThan(maxInt64)
}

// Parse reads raw according to format.
//
// Decimal: empty is 0, a value without a numeric prefix is not valid.
// Integer: empty or a value without a numeric prefix is 0.
func Parse(raw string, format domain.QuantityFormat) domain.ReportedQuantity {
	switch format {
	case domain.QuantityInteger:
		return ParseInteger(raw)
	default:
		return ParseDecimal(raw)
	}
}

// ParseDecimal reads a localized decimal and rounds it half-up.
func ParseDecimal(raw string) domain.ReportedQuantity {
	if raw == "" {
		return domain.Quantity(0)
	}

	value := strings.Replace(strings.TrimSpace(raw), ",", ".", 1)
	prefix := numericPrefix(value, true)
	if prefix == "" {
		return domain.NoQuantity
	}

	d, err := decimal.NewFromString(prefix)
	if err != nil {
		return domain.NoQuantity
	}

	// Half-up toward positive infinity: 2.5 -> 3, -2.5 -> -2.
	rounded := d.Add(half).Floor()
	if !inRange(rounded) {
		return domain.NoQuantity
	}
	return domain.Quantity(rounded.IntPart())
}

// ParseInteger reads the leading integer of raw, defaulting to 0.
func ParseInteger(raw string) domain.ReportedQuantity {
	prefix := numericPrefix(strings.TrimSpace(raw), false)
	if prefix == "" {
		return domain.Quantity(0)
	}

	d, err := decimal.NewFromString(prefix)
	if err != nil || !inRange(d) {
		return domain.Quantity(0)
	}
	return domain.Quantity(d.IntPart())
}

// numericPrefix returns the longest leading run of s that reads as a
// signed number, or "" when s does not start with one.
func numericPrefix(s string, fraction bool) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}

	if fraction && i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if frac > 0 {
			i = j
			digits += frac
		} else if digits > 0 {
			i = j
		}
	}

	if digits == 0 {
		return ""
	}

	num := strings.TrimSuffix(strings.TrimPrefix(s[:i], "+"), ".")
	switch {
	case strings.HasPrefix(num, "."):
		num = "0" + num
	case strings.HasPrefix(num, "-."):
		num = "-0" + num[1:]
	}
	return num
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
