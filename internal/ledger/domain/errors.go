package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for retry decisions and for the caller
type ErrorKind string

// Error kinds
const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindIntegrity  ErrorKind = "integrity"
	KindInternal   ErrorKind = "internal"
)

// RetryMessage is what callers see once contention retries are exhausted
const RetryMessage = "operation could not complete, please retry"

// Error is the ledger's structured error
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind and message, so sentinels work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// Sentinel errors
var (
	ErrInsufficientStock = &Error{Kind: KindValidation, Message: "insufficient stock"}
	ErrStockItemNotFound = &Error{Kind: KindNotFound, Message: "stock item not found"}
	ErrConflict          = &Error{Kind: KindConflict, Message: "write conflict"}
	ErrUnavailable       = &Error{Kind: KindConflict, Message: "store unavailable"}
)

// Validation creates a validation error
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not-found error
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict wraps a transient store error
func Conflict(err error) *Error {
	return &Error{Kind: KindConflict, Message: ErrConflict.Message, Err: err}
}

// Unavailable wraps a transient connectivity error
func Unavailable(err error) *Error {
	return &Error{Kind: KindConflict, Message: ErrUnavailable.Message, Err: err}
}

// Integrity creates a consistency finding error
func Integrity(format string, args ...interface{}) *Error {
	return &Error{Kind: KindIntegrity, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first ledger error in the chain, or internal
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsRetryable reports whether the executor may retry after err
func IsRetryable(err error) bool {
	return KindOf(err) == KindConflict
}

// MessageOf returns a human-readable message suitable for the UI layer
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindConflict {
			return RetryMessage
		}
		if e.Kind == KindInternal {
			return "internal error"
		}
		return e.Message
	}
	return "internal error"
}

// InsufficientStock reports a shortfall while still matching ErrInsufficientStock
func InsufficientStock(requested, available int) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: ErrInsufficientStock.Message,
		Err:     fmt.Errorf("requested %d, available %d", requested, available),
	}
}

// StockItemNotFound reports a missing (itemCode, location) pair
func StockItemNotFound(itemCode, location string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: ErrStockItemNotFound.Message,
		Err:     fmt.Errorf("item %s at %s", itemCode, location),
	}
}
