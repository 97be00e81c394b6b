package quantity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/stocksync/internal/core/domain"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.ReportedQuantity
	}{
		{"localized whole", "5,0", domain.Quantity(5)},
		{"rounds half up", "2,5", domain.Quantity(3)},
		{"rounds down", "2,49", domain.Quantity(2)},
		{"dot separator", "7.6", domain.Quantity(8)},
		{"plain integer", "12", domain.Quantity(12)},
		{"empty is zero", "", domain.Quantity(0)},
		{"surrounding spaces", " 4,0 ", domain.Quantity(4)},
		{"trailing text", "3,0 stk", domain.Quantity(3)},
		{"leading fraction", ",5", domain.Quantity(1)},
		{"negative half", "-2,5", domain.Quantity(-2)},
		{"negative", "-3,2", domain.Quantity(-3)},
		{"not a number", "abc", domain.NoQuantity},
		{"whitespace only", "   ", domain.NoQuantity},
		{"sign only", "-", domain.NoQuantity},
		{"int64 max", "9223372036854775807", domain.Quantity(math.MaxInt64)},
		{"beyond int64", "99999999999999999999", domain.NoQuantity},
		{"below int64", "-99999999999999999999,0", domain.NoQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDecimal(tt.raw))
		})
	}
}

func TestParseInteger(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int64
	}{
		{"integer", "3", 3},
		{"leading digits", "12abc", 12},
		{"decimal truncated", "4,9", 4},
		{"empty", "", 0},
		{"not a number", "n/a", 0},
		{"negative", "-6", -6},
		{"spaces", "  9 ", 9},
		{"int64 min", "-9223372036854775808", math.MinInt64},
		{"beyond int64", "99999999999999999999", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseInteger(tt.raw)
			assert.True(t, got.Valid)
			assert.Equal(t, tt.want, got.Value)
		})
	}
}

func TestParse_DispatchesOnFormat(t *testing.T) {
	assert.Equal(t, domain.Quantity(0), Parse("x", domain.QuantityInteger))
	assert.Equal(t, domain.NoQuantity, Parse("x", domain.QuantityDecimal))
	assert.Equal(t, domain.Quantity(5), Parse("5,0", domain.QuantityDecimal))
}
