package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every storage backend.
var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicate           = errors.New("already exists")
	ErrInvalidReference    = errors.New("referenced record does not exist")
	ErrRestrictedDeletion  = errors.New("record is still referenced by a participation")
	ErrStorageFailure      = errors.New("storage failure")
	ErrTransactionDegraded = errors.New("topology does not support multi-document transactions")
)

// Sentinel errors for service-level validation.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrAlreadyParticipating  = errors.New("user already participates in the event")
	ErrEventStartNotInFuture = errors.New("event start time must be in the future")
)

// StoreError is the error returned by repositories and units of work.
// It matches both its Kind sentinel and the underlying driver error with errors.Is.
type StoreError struct {
	Backend string
	Op      string
	Kind    error
	Err     error
}

// NewStoreError wraps err as a storage-layer error of the given kind.
func NewStoreError(backend, op string, kind, err error) error {
	return &StoreError{Backend: backend, Op: op, Kind: kind, Err: err}
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %v", e.Backend, e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v: %v", e.Backend, e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
