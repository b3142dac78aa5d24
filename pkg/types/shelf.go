package types

import "errors"

// Shelf defines the interface for backend-agnostic storage access.
// Callers attach to a backend, operate on records and settings, and detach
// when done. Every backend produces identical observable behavior for the
// same sequence of operations, so switching backends is transparent to
// upper layers.
type Shelf interface {
	// Attach connects the Shelf to the backend described by config.
	// Creates the DataDir if it does not exist and runs the backend's
	// readiness check (schema setup for structured backends).
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, all operations return ErrDetached.
	Detach() error

	// GetRecord retrieves a record by ID from the named collection.
	// Returns ErrNotFound if no record has that ID, ErrInvalidID if id is
	// empty, ErrCollectionUnknown for an unrecognized collection.
	GetRecord(collection, id string) (any, error)

	// PutRecord creates or updates a record. If id is empty a UUID v7 is
	// generated. The record is validated before it reaches the durable
	// tier; malformed records fail with ErrInvalidData.
	// Returns the record ID.
	PutRecord(collection, id string, record any) (string, error)

	// DeleteRecord removes a record. With hard=false the record is
	// soft-deleted (marked, retained for undo); with hard=true it is
	// purged permanently along with its dependent records.
	// Returns ErrNotFound if no record has that ID.
	DeleteRecord(collection, id string, hard bool) error

	// ListRecords returns records matching the filter. Empty filter
	// matches all. The result order is unspecified; callers impose order
	// with their own comparator.
	ListRecords(collection string, filter map[string]any) ([]any, error)

	// GetSetting returns the stored value for key, or def if no value is
	// stored.
	GetSetting(key string, def any) (any, error)

	// SetSetting stores the value for key, overwriting any previous value.
	SetSetting(key string, value any) error

	// GetSettings returns the stored values for every key in defaults,
	// falling back to the default for keys with no stored value.
	GetSettings(defaults map[string]any) (map[string]any, error)

	// SetSettings stores all given key/value pairs. Applied as a single
	// transaction when the backend supports it; otherwise sequentially,
	// reporting which keys failed.
	SetSettings(values map[string]any) error
}

// Shelf lifecycle errors.
var (
	ErrDetached        = errors.New("shelf is detached")
	ErrAlreadyAttached = errors.New("shelf is already attached")
	ErrNotReady        = errors.New("shelf backend is not ready")
)

// Record operation errors.
var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidID         = errors.New("invalid record ID")
	ErrInvalidData       = errors.New("invalid record data")
	ErrInvalidFilter     = errors.New("invalid filter value")
	ErrCollectionUnknown = errors.New("unknown collection")
	ErrTimeout           = errors.New("backend operation timed out")
)
