package campusfeed

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrRecordNotFound indicates the id could not be resolved in the
	// target adapter.
	ErrRecordNotFound = errors.New("record not found")

	// ErrKeyNotFound indicates a missing key in a document or blob store.
	ErrKeyNotFound = errors.New("key not found")

	// ErrUnknownSource indicates a source type that none of the registered
	// adapters owns.
	ErrUnknownSource = errors.New("unknown source type")
)

// ValidationError rejects a request before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// RecordError represents an error during an adapter operation.
type RecordError struct {
	Source SourceType
	ID     string
	Op     string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s operation %s failed for record %q: %v", e.Source, e.Op, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// StoreError represents a backing-store failure that survived the
// resilience wrapper (both the primary and the substitute failed).
type StoreError struct {
	Collection string
	Key        string
	Op         string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation %s failed for key %s in %s: %v", e.Op, e.Key, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// StorageError represents a blob-store failure. It is always surfaced to
// the caller: silent fallback is not safe for binary data.
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
