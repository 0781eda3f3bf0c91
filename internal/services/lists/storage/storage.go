// Package storage defines the persistence contract for per-user list state.
//
// Every operation takes the caller's user ID; implementations must never let
// state created under one identity become visible to another. List names are
// the public key of a list (case-sensitive, exact match) and item IDs are
// assigned per list, monotonically from 1, and never reused even after
// removal.
package storage

import (
	"context"
	"strings"
)

// Item is a single trackable entry in a list.
type Item struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes"`
	Completed bool   `json:"completed"`
}

// ListSummary describes one list without its items.
type ListSummary struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	ItemCount      int    `json:"item_count"`
	CompletedCount int    `json:"completed_count"`
}

// SearchMatch pairs a matched item with the list that holds it.
type SearchMatch struct {
	ListName string `json:"list_name"`
	Item     Item   `json:"item"`
}

// Store persists per-user named lists and their items.
//
// Mutations for one user are serialized; operations for different users may
// proceed in parallel. Reads observe a consistent snapshot: a returned Item
// never reflects a partially-applied mutation.
type Store interface {
	// CreateList creates an empty list. It fails with a duplicate-name error
	// when the user already owns a list with that exact name.
	CreateList(ctx context.Context, userID, name, description string) (ListSummary, error)

	// Lists returns one summary per list in registry insertion order.
	Lists(ctx context.Context, userID string) ([]ListSummary, error)

	// DeleteList removes a list and all of its items. It reports whether a
	// list existed to delete; a missing list is not an error.
	DeleteList(ctx context.Context, userID, name string) (bool, error)

	// AddItem appends an item to the named list, assigning the next
	// sequential item ID. It fails with a validation error when text is
	// empty or quantity is less than 1, and a not-found error when the list
	// does not exist.
	AddItem(ctx context.Context, userID, listName, text string, quantity int, notes string) (Item, error)

	// ListItems returns the named list's items in insertion order.
	ListItems(ctx context.Context, userID, listName string) ([]Item, error)

	// RemoveItem removes the item with the given ID from the named list. It
	// reports whether a removal occurred; a missing item is not an error,
	// but a missing list is.
	RemoveItem(ctx context.Context, userID, listName string, itemID int64) (bool, error)

	// ToggleItem flips the completed flag of the item with the given ID and
	// returns the updated item.
	ToggleItem(ctx context.Context, userID, listName string, itemID int64) (Item, error)

	// SearchItems returns items whose text or notes contain the query,
	// case-insensitively. An empty listName scans every list the user owns
	// in registry order; a non-empty listName restricts the scan to that
	// list and fails with a not-found error when it does not exist. An
	// empty query matches every item.
	SearchItems(ctx context.Context, userID, query, listName string) ([]SearchMatch, error)
}

// MatchesQuery reports whether an item's text or notes contain query,
// case-insensitively. The empty query is a substring of everything and so
// matches every item; both backends share this helper so search semantics
// cannot drift between them.
func MatchesQuery(item Item, query string) bool {
	needle := strings.ToLower(query)
	return strings.Contains(strings.ToLower(item.Text), needle) ||
		strings.Contains(strings.ToLower(item.Notes), needle)
}
