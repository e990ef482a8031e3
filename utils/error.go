package utils

import (
	"errors"
	"fmt"
)

// The posting engine distinguishes four failure classes so handlers can map them
// to transport codes and callers know which ones are retryable.

// ValidationError rejects bad input before any write.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConflictError marks transient contention (sequence collision, lock timeout).
// Safe to retry; the workflow already retries within a bound before surfacing it.
type ConflictError struct {
	Msg string
	Err error
}

func (e *ConflictError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ConflictError) Unwrap() error { return e.Err }

func NewConflictError(msg string, err error) error {
	return &ConflictError{Msg: msg, Err: err}
}

func IsConflictError(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// ConsistencyError rejects an operation that would break a ledger invariant
// (payment on a settled invoice, credit payment exceeding the balance).
// State is left unchanged.
type ConsistencyError struct {
	Msg string
}

func (e *ConsistencyError) Error() string { return e.Msg }

func NewConsistencyError(format string, args ...interface{}) error {
	return &ConsistencyError{Msg: fmt.Sprintf(format, args...)}
}

func IsConsistencyError(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}

// NotFoundError surfaces a missing invoice/customer/product with no partial writes.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

func IsNotFoundError(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
