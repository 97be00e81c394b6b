package domain

import "strings"

// FeedRecord is one decoded feed row: column name to raw value.
// Records are ephemeral and have no identity beyond their position
// in the stream.
type FeedRecord map[string]string

// Get returns the trimmed value of a column, or "" when absent.
func (r FeedRecord) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// SKU returns the product code held in the given column.
func (r FeedRecord) SKU(column string) string {
	return r.Get(column)
}

// QuantityFormat describes how a feed column encodes a quantity.
type QuantityFormat string

// Supported quantity formats.
const (
	// QuantityDecimal is a localized decimal ("5,0") rounded half-up.
	// Empty means 0, anything unparseable means "no quantity".
	QuantityDecimal QuantityFormat = "decimal"

	// QuantityInteger is parsed from its leading integer digits.
	// Empty or unparseable values coerce to 0.
	QuantityInteger QuantityFormat = "integer"
)

// IsValid returns true if the format is recognised.
func (f QuantityFormat) IsValid() bool {
	return f == QuantityDecimal || f == QuantityInteger
}

// ReportedQuantity is a feed-reported quantity. Valid is false when
// the column held a value that could not be read as a number.
type ReportedQuantity struct {
	Value int64
	Valid bool
}

// Quantity returns a valid reported quantity.
func Quantity(v int64) ReportedQuantity {
	return ReportedQuantity{Value: v, Valid: true}
}

// NoQuantity is the reported quantity of an unparseable value.
var NoQuantity = ReportedQuantity{}
