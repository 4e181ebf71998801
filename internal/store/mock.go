package store

import (
	"context"
	"sync"
)

// MockStore is an in-memory implementation of Store for testing
type MockStore struct {
	mu    sync.RWMutex
	items map[string]Item

	// Err, when set, is returned by every operation
	Err error
}

// NewMockStore creates a new MockStore instance
func NewMockStore() *MockStore {
	return &MockStore{
		items: make(map[string]Item),
	}
}

// PutItem implements Store.PutItem
func (m *MockStore) PutItem(ctx context.Context, item Item) error {
	if m.Err != nil {
		return m.Err
	}
	if item.ID() == "" {
		return NewStoreError("PutItem", "", ErrInvalidKey)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[item.ID()] = copyItem(item)
	return nil
}

// GetItem implements Store.GetItem
func (m *MockStore) GetItem(ctx context.Context, id string) (Item, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if id == "" {
		return nil, NewStoreError("GetItem", id, ErrInvalidKey)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	item, exists := m.items[id]
	if !exists {
		return nil, NewStoreError("GetItem", id, ErrItemNotFound)
	}

	// Return a copy of the item
	return copyItem(item), nil
}

// UpdateItem implements Store.UpdateItem
func (m *MockStore) UpdateItem(ctx context.Context, id string, set map[string]string) error {
	if m.Err != nil {
		return m.Err
	}
	if id == "" {
		return NewStoreError("UpdateItem", id, ErrInvalidKey)
	}
	if len(set) == 0 {
		return NewStoreError("UpdateItem", id, ErrEmptyUpdate)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item, exists := m.items[id]
	if !exists {
		item = Item{KeyAttribute: id}
		m.items[id] = item
	}
	for k, v := range set {
		item[k] = v
	}
	return nil
}

// Len returns the number of stored items
func (m *MockStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Close implements Store.Close
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]Item)
	return nil
}

func copyItem(item Item) Item {
	c := make(Item, len(item))
	for k, v := range item {
		c[k] = v
	}
	return c
}
