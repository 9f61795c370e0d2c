package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the order id is unknown.
	ErrNotFound = errors.New("order not found")
	// ErrInvalidState means the operation is not permitted in the order's
	// current lifecycle state (e.g. mutating or re-finalizing a finalized order).
	ErrInvalidState = errors.New("order is not pending")
	// ErrDuplicateCode is returned by the store when a generated code collides
	// with an existing one. It is retried internally and never surfaced.
	ErrDuplicateCode = errors.New("duplicate order code")
	// ErrStoreUnavailable means the persistence layer failed; fatal to the request.
	ErrStoreUnavailable = errors.New("order store unavailable")
	// ErrDuplicate means the idempotency key is already locked by an in-flight create.
	ErrDuplicate = errors.New("duplicate idempotency key")
)

// ValidationError reports malformed input. ItemIndex is >= 0 when the
// offending value sits inside the items list.
type ValidationError struct {
	Field     string
	ItemIndex int
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.ItemIndex >= 0 {
		return fmt.Sprintf("item at index %d: %s %s", e.ItemIndex, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func invalidField(field, reason string) *ValidationError {
	return &ValidationError{Field: field, ItemIndex: -1, Reason: reason}
}

func invalidItem(idx int, field, reason string) *ValidationError {
	return &ValidationError{Field: field, ItemIndex: idx, Reason: reason}
}

// AsValidation unwraps err into a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
