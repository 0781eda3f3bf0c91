// Package memory provides the in-memory list storage engine.
//
// State is partitioned per user: each identity gets its own registry with
// its own lock, so operations for different users never contend. Mutations
// for one user serialize on that user's registry lock, and reads take the
// same lock shared, returning copies so no caller ever observes a
// partially-applied mutation.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/louisbranch/tally/internal/errors"
	"github.com/louisbranch/tally/internal/services/lists/storage"
)

// Store keeps every user's lists in process memory.
type Store struct {
	mu         sync.RWMutex
	registries map[string]*registry
}

// registry holds the named lists owned by a single user.
type registry struct {
	mu    sync.RWMutex
	lists map[string]*list
	// order records list creation order; Lists and cross-list search
	// iterate in this order.
	order []string
}

// list is one named, ordered collection of items.
type list struct {
	name        string
	description string
	// nextItemID only ever increments, so item IDs stay stable and are
	// never reused within a list's lifetime even after removals.
	nextItemID int64
	items      []storage.Item
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{registries: make(map[string]*registry)}
}

// registryFor returns the user's registry, creating it on first reference.
// The double check under the write lock keeps two concurrent first calls for
// the same user from creating two distinct registries.
func (s *Store) registryFor(userID string) *registry {
	s.mu.RLock()
	reg, ok := s.registries[userID]
	s.mu.RUnlock()
	if ok {
		return reg
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if reg, ok := s.registries[userID]; ok {
		return reg
	}
	reg = &registry{lists: make(map[string]*list)}
	s.registries[userID] = reg
	return reg
}

// CreateList creates an empty list for the user.
func (s *Store) CreateList(ctx context.Context, userID, name, description string) (storage.ListSummary, error) {
	if err := ctx.Err(); err != nil {
		return storage.ListSummary{}, err
	}
	reg := s.registryFor(userID)
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.lists[name]; exists {
		return storage.ListSummary{}, errors.New(errors.CodeListExists, fmt.Sprintf("list %q already exists", name))
	}
	reg.lists[name] = &list{name: name, description: description, nextItemID: 1}
	reg.order = append(reg.order, name)

	return storage.ListSummary{Name: name, Description: description}, nil
}

// Lists returns one summary per list in creation order.
func (s *Store) Lists(ctx context.Context, userID string) ([]storage.ListSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reg := s.registryFor(userID)
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	summaries := make([]storage.ListSummary, 0, len(reg.order))
	for _, name := range reg.order {
		summaries = append(summaries, reg.lists[name].summary())
	}
	return summaries, nil
}

// DeleteList removes a list and its items, reporting whether one existed.
func (s *Store) DeleteList(ctx context.Context, userID, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	reg := s.registryFor(userID)
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.lists[name]; !exists {
		return false, nil
	}
	delete(reg.lists, name)
	for i, existing := range reg.order {
		if existing == name {
			reg.order = append(reg.order[:i], reg.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// AddItem appends an item to the named list with the next sequential ID.
func (s *Store) AddItem(ctx context.Context, userID, listName, text string, quantity int, notes string) (storage.Item, error) {
	if err := ctx.Err(); err != nil {
		return storage.Item{}, err
	}
	reg := s.registryFor(userID)
	reg.mu.Lock()
	defer reg.mu.Unlock()

	l, exists := reg.lists[listName]
	if !exists {
		return storage.Item{}, listNotFound(listName)
	}
	if text == "" {
		return storage.Item{}, errors.New(errors.CodeItemTextEmpty, "item text is required")
	}
	if quantity < 1 {
		return storage.Item{}, errors.New(errors.CodeItemQuantityInvalid, fmt.Sprintf("item quantity must be at least 1, got %d", quantity))
	}

	item := storage.Item{
		ID:       l.nextItemID,
		Text:     text,
		Quantity: quantity,
		Notes:    notes,
	}
	l.nextItemID++
	l.items = append(l.items, item)
	return item, nil
}

// ListItems returns the named list's items in insertion order.
func (s *Store) ListItems(ctx context.Context, userID, listName string) ([]storage.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reg := s.registryFor(userID)
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	l, exists := reg.lists[listName]
	if !exists {
		return nil, listNotFound(listName)
	}
	items := make([]storage.Item, len(l.items))
	copy(items, l.items)
	return items, nil
}

// RemoveItem removes the item with the given ID, reporting whether it existed.
func (s *Store) RemoveItem(ctx context.Context, userID, listName string, itemID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	reg := s.registryFor(userID)
	reg.mu.Lock()
	defer reg.mu.Unlock()

	l, exists := reg.lists[listName]
	if !exists {
		return false, listNotFound(listName)
	}
	for i, item := range l.items {
		if item.ID == itemID {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ToggleItem flips an item's completed flag and returns the updated item.
func (s *Store) ToggleItem(ctx context.Context, userID, listName string, itemID int64) (storage.Item, error) {
	if err := ctx.Err(); err != nil {
		return storage.Item{}, err
	}
	reg := s.registryFor(userID)
	reg.mu.Lock()
	defer reg.mu.Unlock()

	l, exists := reg.lists[listName]
	if !exists {
		return storage.Item{}, listNotFound(listName)
	}
	for i := range l.items {
		if l.items[i].ID == itemID {
			l.items[i].Completed = !l.items[i].Completed
			return l.items[i], nil
		}
	}
	return storage.Item{}, itemNotFound(itemID, listName)
}

// SearchItems scans one list, or every list in registry order, for items
// whose text or notes contain the query.
func (s *Store) SearchItems(ctx context.Context, userID, query, listName string) ([]storage.SearchMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reg := s.registryFor(userID)
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	names := reg.order
	if listName != "" {
		if _, exists := reg.lists[listName]; !exists {
			return nil, listNotFound(listName)
		}
		names = []string{listName}
	}

	matches := make([]storage.SearchMatch, 0)
	for _, name := range names {
		for _, item := range reg.lists[name].items {
			if storage.MatchesQuery(item, query) {
				matches = append(matches, storage.SearchMatch{ListName: name, Item: item})
			}
		}
	}
	return matches, nil
}

func (l *list) summary() storage.ListSummary {
	completed := 0
	for _, item := range l.items {
		if item.Completed {
			completed++
		}
	}
	return storage.ListSummary{
		Name:           l.name,
		Description:    l.description,
		ItemCount:      len(l.items),
		CompletedCount: completed,
	}
}

func listNotFound(name string) error {
	return errors.New(errors.CodeListNotFound, fmt.Sprintf("list %q does not exist", name))
}

func itemNotFound(itemID int64, listName string) error {
	return errors.New(errors.CodeItemNotFound, fmt.Sprintf("item %d not found in list %q", itemID, listName))
}

var _ storage.Store = (*Store)(nil)
