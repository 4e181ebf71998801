package store

import (
	"errors"
	"fmt"
)

// Common store error types
var (
	ErrItemNotFound = errors.New("item not found")
	ErrInvalidKey   = errors.New("invalid item key")
	ErrEmptyUpdate  = errors.New("update sets no attributes")
)

// StoreError represents a store operation error with additional context
type StoreError struct {
	Op  string // Operation that failed (e.g., "PutItem", "GetItem")
	Key string // Item id involved in the operation
	Err error  // Underlying error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("store %s operation failed for key '%s': %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("store %s operation failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError
func NewStoreError(op, key string, err error) *StoreError {
	return &StoreError{
		Op:  op,
		Key: key,
		Err: err,
	}
}

// IsNotFound returns true if the error indicates the item does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}
