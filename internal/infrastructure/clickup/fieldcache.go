package clickup

import (
	"context"
	"fmt"
	"sync"
)

// FieldResolver maps custom field names to field IDs for a list
type FieldResolver interface {
	// FieldID resolves a field name to its ID on the given list
	FieldID(ctx context.Context, listID, name string) (string, error)
	// Invalidate drops all cached definitions. The next lookup refetches
	// from the API.
	Invalidate()
}

// fieldLister is the slice of Client the cache needs
type fieldLister interface {
	GetListCustomFields(ctx context.Context, listID string) ([]FieldDefinition, error)
}

// FieldCache caches custom field definitions per list. Entries live until
// Invalidate is called; there is no TTL.
type FieldCache struct {
	client fieldLister

	mu    sync.RWMutex
	lists map[string]map[string]string // listID -> field name -> field ID
}

// NewFieldCache creates an empty cache backed by the given client
func NewFieldCache(client fieldLister) *FieldCache {
	return &FieldCache{
		client: client,
		lists:  make(map[string]map[string]string),
	}
}

// FieldID resolves a field name to its ID, fetching the list's definitions
// on first use
func (fc *FieldCache) FieldID(ctx context.Context, listID, name string) (string, error) {
	fc.mu.RLock()
	fields, ok := fc.lists[listID]
	fc.mu.RUnlock()

	if !ok {
		defs, err := fc.client.GetListCustomFields(ctx, listID)
		if err != nil {
			return "", err
		}
		fields = make(map[string]string, len(defs))
		for _, def := range defs {
			fields[def.Name] = def.ID
		}
		fc.mu.Lock()
		fc.lists[listID] = fields
		fc.mu.Unlock()
	}

	id, ok := fields[name]
	if !ok {
		return "", fmt.Errorf("clickup: field %q not found on list %s", name, listID)
	}
	return id, nil
}

// Invalidate drops every cached list
func (fc *FieldCache) Invalidate() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.lists = make(map[string]map[string]string)
}

var _ FieldResolver = (*FieldCache)(nil)
