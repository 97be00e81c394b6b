package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown run mode or feed source.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrRunInProgress indicates a reconciliation run is already active.
	ErrRunInProgress = errors.New("run in progress")

	// ErrNoTenants indicates the credential store returned no tenants.
	ErrNoTenants = errors.New("no tenants configured")

	// ErrRateLimited indicates the catalog API throttled the request.
	ErrRateLimited = errors.New("rate limited")
)

// TransferError is returned when the feed cannot be fetched.
// It is fatal to the run: no records are processed.
type TransferError struct {
	Op  string
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("feed transfer: %s: %v", e.Op, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// DecodeError is returned when the local feed cannot be opened or read.
// It is fatal to the run.
type DecodeError struct {
	Path string
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("feed decode %s line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("feed decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// SkipReason explains why a record was not reconciled.
type SkipReason string

// Skip reasons.
const (
	SkipMissingSKU             SkipReason = "missing_sku"
	SkipNoQuantity             SkipReason = "no_quantity"
	SkipNotFound               SkipReason = "not_found"
	SkipAmbiguous              SkipReason = "ambiguous"
	SkipNoInventoryLevels      SkipReason = "no_inventory_levels"
	SkipLocationNotInDirectory SkipReason = "location_not_in_directory"
	SkipActivationFailed       SkipReason = "activation_failed"
)

// RecordSkipped is recovered locally: the record is logged, counted
// and the run continues with the next record.
type RecordSkipped struct {
	SKU    string
	Reason SkipReason
	Detail string
}

func (e *RecordSkipped) Error() string {
	msg := fmt.Sprintf("record %q skipped: %s", e.SKU, e.Reason)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// UserError is a validation error reported by a catalog mutation.
type UserError struct {
	Field   []string
	Message string
}

func (u UserError) String() string {
	if len(u.Field) == 0 {
		return u.Message
	}
	return strings.Join(u.Field, ".") + ": " + u.Message
}

// MutationSoftError means a catalog mutation returned user errors.
// The mutation did not apply; the run continues.
type MutationSoftError struct {
	Mutation   string
	UserErrors []UserError
}

func (e *MutationSoftError) Error() string {
	msgs := make([]string, len(e.UserErrors))
	for i, u := range e.UserErrors {
		msgs[i] = u.String()
	}
	return fmt.Sprintf("%s: %s", e.Mutation, strings.Join(msgs, "; "))
}

// IsSkipped reports whether err is a RecordSkipped and returns it.
func IsSkipped(err error) (*RecordSkipped, bool) {
	var rs *RecordSkipped
	if errors.As(err, &rs) {
		return rs, true
	}
	return nil, false
}

// IsSoftError reports whether err is a MutationSoftError.
func IsSoftError(err error) bool {
	var se *MutationSoftError
	return errors.As(err, &se)
}
