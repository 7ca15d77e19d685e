package paging

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLimit is matched by every ValidationError on the limit field.
	ErrInvalidLimit = errors.New("invalid page limit")

	// ErrInvalidCursor is matched by every DecodeError.
	ErrInvalidCursor = errors.New("invalid cursor")
)

// ValidationError reports a page request that was rejected before querying.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("paging: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidLimit && e.Field == "limit"
}

// DecodeError reports a cursor token that does not parse into a compound key.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("paging: decode cursor: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrInvalidCursor }
