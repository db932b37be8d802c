// Package apperr translates storage outcomes into classified application faults.
package apperr

import (
	"errors"

	"communityhub/internal/adapters/storage"
	"communityhub/internal/domain/fault"
)

// MsgOutOfRange is returned when an amount is too large to persist.
const MsgOutOfRange = "amount is too large"

// FromStore maps a store error onto the fault taxonomy.
// notFound and conflict are the client messages used for the matching sentinels.
// PRE: none
// POST: nil stays nil; faults pass through; unknown errors become internal faults
func FromStore(err error, notFound, conflict string) error {
	if err == nil {
		return nil
	}
	if _, ok := fault.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, storage.ErrUnavailable), errors.Is(err, storage.ErrBusy):
		return fault.Dependency(err)
	case errors.Is(err, storage.ErrOutOfRange):
		return &fault.Error{Kind: fault.KindValidation, Message: MsgOutOfRange, Err: err}
	case errors.Is(err, storage.ErrNotFound):
		return &fault.Error{Kind: fault.KindNotFound, Message: notFound, Err: err}
	case errors.Is(err, storage.ErrDuplicate), errors.Is(err, storage.ErrStale):
		return &fault.Error{Kind: fault.KindConflict, Message: conflict, Err: err}
	default:
		return fault.Internal("internal error", err)
	}
}

// Internal maps a store error where neither not-found nor duplicate is expected.
func Internal(err error) error {
	return FromStore(err, "not found", "already exists")
}
