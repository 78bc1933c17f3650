package models

import (
	"errors"
	"fmt"
)

// MalformedInputError reports a structural problem with the input file:
// missing header, wrong field count, undecodable bytes, an out-of-domain
// ordinal token. It aborts the whole run.
type MalformedInputError struct {
	Line   int
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed input at line %d: %s", e.Line, e.Reason)
	}
	return "malformed input: " + e.Reason
}

// RowInvalidError reports a single row whose value failed a type or range
// check. The pipeline excludes the row and records the reason; it does not
// abort.
type RowInvalidError struct {
	Line      int
	ListingID string
	Field     string
	Reason    string
}

func (e *RowInvalidError) Error() string {
	return fmt.Sprintf("invalid row at line %d (listing %q): %s: %s",
		e.Line, e.ListingID, e.Field, e.Reason)
}

// DomainError reports a candidate outside its declared optimization bounds.
// It fails that single evaluation; the optimizer treats the candidate as
// rejected.
type DomainError struct {
	Param  string
	Value  any
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("candidate out of domain: %s=%v: %s", e.Param, e.Value, e.Reason)
}

var (
	// ErrLengthMismatch: observed and predicted vectors differ in length.
	ErrLengthMismatch = errors.New("observed and predicted differ in length")
	// ErrEmptyInput: an evaluation vector is empty.
	ErrEmptyInput = errors.New("empty input vector")
	// ErrNonPositiveArea: derivation was asked to divide by a non-positive area.
	ErrNonPositiveArea = errors.New("area must be positive")
)
