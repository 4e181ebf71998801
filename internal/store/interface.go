// Package store provides the key-value table used by the bus and notification handlers.
package store

import "context"

// KeyAttribute is the partition key of every item
const KeyAttribute = "id"

// Item is a flat set of string attributes, always including KeyAttribute
type Item map[string]string

// ID returns the item key
func (i Item) ID() string {
	return i[KeyAttribute]
}

// Store provides an abstraction over a single key-value table.
// Implementations exist for DynamoDB (AWS backend), Redis (local backend) and memory (tests).
type Store interface {
	// PutItem writes the item, replacing any item with the same id
	PutItem(ctx context.Context, item Item) error

	// GetItem returns the item with the given id, or ErrItemNotFound
	GetItem(ctx context.Context, id string) (Item, error)

	// UpdateItem sets the given attributes on the item with the given id
	UpdateItem(ctx context.Context, id string, set map[string]string) error

	// Close cleans up any resources used by the implementation
	Close() error
}
