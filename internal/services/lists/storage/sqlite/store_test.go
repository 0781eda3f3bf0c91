package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/louisbranch/tally/internal/errors"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestCreateListRoundTrip(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	ctx := context.Background()

	created, err := store.CreateList(ctx, "u1", "Groceries", "weekly run")
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	if created.Name != "Groceries" || created.Description != "weekly run" {
		t.Fatalf("created summary = %+v", created)
	}

	summaries, err := store.Lists(ctx, "u1")
	if err != nil {
		t.Fatalf("lists: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 list, got %d", len(summaries))
	}
	if summaries[0].Name != "Groceries" || summaries[0].ItemCount != 0 {
		t.Fatalf("summary = %+v", summaries[0])
	}
}

func TestCreateListDuplicateFails(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	ctx := context.Background()

	if _, err := store.CreateList(ctx, "u1", "Chores", ""); err != nil {
		t.Fatalf("create list: %v", err)
	}
	_, err := store.CreateList(ctx, "u1", "Chores", "")
	if !errors.IsDuplicateName(err) {
		t.Fatalf("duplicate create error = %v, want duplicate-name", err)
	}

	// The same name under another user is a distinct list.
	if _, err := store.CreateList(ctx, "u2", "Chores", ""); err != nil {
		t.Fatalf("create for second user: %v", err)
	}
}

func TestItemIDsSurviveRemovals(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	ctx := context.Background()

	if _, err := store.CreateList(ctx, "u1", "Groceries", ""); err != nil {
		t.Fatalf("create list: %v", err)
	}
	for _, text := range []string{"first", "second", "third"} {
		if _, err := store.AddItem(ctx, "u1", "Groceries", text, 1, ""); err != nil {
			t.Fatalf("add %s: %v", text, err)
		}
	}
	if removed, err := store.RemoveItem(ctx, "u1", "Groceries", 2); err != nil || !removed {
		t.Fatalf("remove item 2: removed=%v err=%v", removed, err)
	}
	fourth, err := store.AddItem(ctx, "u1", "Groceries", "fourth", 1, "")
	if err != nil {
		t.Fatalf("add fourth: %v", err)
	}
	if fourth.ID != 4 {
		t.Fatalf("fourth item id = %d, want 4", fourth.ID)
	}

	items, err := store.ListItems(ctx, "u1", "Groceries")
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	wantIDs := []int64{1, 3, 4}
	if len(items) != len(wantIDs) {
		t.Fatalf("expected %d items, got %d", len(wantIDs), len(items))
	}
	for i, want := range wantIDs {
		if items[i].ID != want {
			t.Fatalf("items[%d].ID = %d, want %d", i, items[i].ID, want)
		}
	}
}

func TestAddItemValidationAndMissingList(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	ctx := context.Background()

	if _, err := store.CreateList(ctx, "u1", "Groceries", ""); err != nil {
		t.Fatalf("create list: %v", err)
	}

	if _, err := store.AddItem(ctx, "u1", "Groceries", "", 1, ""); !errors.IsValidation(err) {
		t.Fatalf("empty text error = %v, want validation", err)
	}
	if _, err := store.AddItem(ctx, "u1", "Groceries", "Eggs", 0, ""); !errors.IsValidation(err) {
		t.Fatalf("zero quantity error = %v, want validation", err)
	}
	if _, err := store.AddItem(ctx, "u1", "Missing", "Eggs", 1, ""); !errors.IsNotFound(err) {
		t.Fatalf("missing list error = %v, want not-found", err)
	}

	items, err := store.ListItems(ctx, "u1", "Groceries")
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("rejected adds must not insert items, got %d", len(items))
	}
}

func TestToggleItemRoundTrip(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	ctx := context.Background()

	if _, err := store.CreateList(ctx, "u1", "Groceries", ""); err != nil {
		t.Fatalf("create list: %v", err)
	}
	if _, err := store.AddItem(ctx, "u1", "Groceries", "Eggs", 12, ""); err != nil {
		t.Fatalf("add item: %v", err)
	}

	once, err := store.ToggleItem(ctx, "u1", "Groceries", 1)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !once.Completed {
		t.Fatal("first toggle should mark the item completed")
	}
	twice, err := store.ToggleItem(ctx, "u1", "Groceries", 1)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if twice.Completed {
		t.Fatal("second toggle should restore the pending state")
	}
	if _, err := store.ToggleItem(ctx, "u1", "Groceries", 99); !errors.IsNotFound(err) {
		t.Fatalf("toggle missing item = %v, want not-found", err)
	}
}

func TestDeleteListDiscardsItems(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	ctx := context.Background()

	if deleted, err := store.DeleteList(ctx, "u1", "Missing"); err != nil || deleted {
		t.Fatalf("delete missing list: deleted=%v err=%v", deleted, err)
	}

	if _, err := store.CreateList(ctx, "u1", "Groceries", ""); err != nil {
		t.Fatalf("create list: %v", err)
	}
	if _, err := store.AddItem(ctx, "u1", "Groceries", "Eggs", 1, ""); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if deleted, err := store.DeleteList(ctx, "u1", "Groceries"); err != nil || !deleted {
		t.Fatalf("delete list: deleted=%v err=%v", deleted, err)
	}

	// Recreating the list must not resurrect old items or IDs.
	if _, err := store.CreateList(ctx, "u1", "Groceries", ""); err != nil {
		t.Fatalf("recreate list: %v", err)
	}
	items, err := store.ListItems(ctx, "u1", "Groceries")
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("recreated list should start empty, got %d items", len(items))
	}
	item, err := store.AddItem(ctx, "u1", "Groceries", "Eggs", 1, "")
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if item.ID != 1 {
		t.Fatalf("recreated list first item id = %d, want 1", item.ID)
	}
}

func TestListsKeepCreationOrder(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	ctx := context.Background()

	for _, name := range []string{"Zeta", "Alpha", "Middle"} {
		if _, err := store.CreateList(ctx, "u1", name, ""); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	summaries, err := store.Lists(ctx, "u1")
	if err != nil {
		t.Fatalf("lists: %v", err)
	}
	want := []string{"Zeta", "Alpha", "Middle"}
	for i, name := range want {
		if summaries[i].Name != name {
			t.Fatalf("lists[%d] = %q, want %q", i, summaries[i].Name, name)
		}
	}
}

func TestSearchItems(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	ctx := context.Background()

	if _, err := store.CreateList(ctx, "u1", "Shopping", ""); err != nil {
		t.Fatalf("create list: %v", err)
	}
	if _, err := store.CreateList(ctx, "u1", "Pantry", ""); err != nil {
		t.Fatalf("create list: %v", err)
	}
	if _, err := store.AddItem(ctx, "u1", "Shopping", "Milk", 2, "2%"); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := store.AddItem(ctx, "u1", "Pantry", "Flour", 1, "for milk bread"); err != nil {
		t.Fatalf("add item: %v", err)
	}

	matches, err := store.SearchItems(ctx, "u1", "MILK", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	if matches[0].ListName != "Shopping" || matches[1].ListName != "Pantry" {
		t.Fatalf("match order = %+v", matches)
	}

	matches, err = store.SearchItems(ctx, "u1", "milk", "Shopping")
	if err != nil {
		t.Fatalf("restricted search: %v", err)
	}
	if len(matches) != 1 || matches[0].Item.Text != "Milk" {
		t.Fatalf("restricted matches = %+v", matches)
	}

	if _, err := store.SearchItems(ctx, "u1", "milk", "Nope"); !errors.IsNotFound(err) {
		t.Fatalf("missing list search = %v, want not-found", err)
	}

	matches, err = store.SearchItems(ctx, "u1", "", "")
	if err != nil {
		t.Fatalf("empty query search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("empty query matches = %d, want 2", len(matches))
	}
}

func TestUserIsolation(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	ctx := context.Background()

	if _, err := store.CreateList(ctx, "alice", "Private", ""); err != nil {
		t.Fatalf("create list: %v", err)
	}
	if _, err := store.AddItem(ctx, "alice", "Private", "secret", 1, ""); err != nil {
		t.Fatalf("add item: %v", err)
	}

	summaries, err := store.Lists(ctx, "bob")
	if err != nil {
		t.Fatalf("lists: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("bob must not see alice's lists, got %d", len(summaries))
	}
	matches, err := store.SearchItems(ctx, "bob", "secret", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("bob's search must not surface alice's items, got %d", len(matches))
	}
}

func TestStateSurvivesReopen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tally.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := store.CreateList(ctx, "u1", "Groceries", "weekly"); err != nil {
		t.Fatalf("create list: %v", err)
	}
	if _, err := store.AddItem(ctx, "u1", "Groceries", "Eggs", 12, ""); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()

	items, err := reopened.ListItems(ctx, "u1", "Groceries")
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 || items[0].Text != "Eggs" || items[0].Quantity != 12 {
		t.Fatalf("items after reopen = %+v", items)
	}

	// The item counter also survives.
	item, err := reopened.AddItem(ctx, "u1", "Groceries", "Bread", 1, "")
	if err != nil {
		t.Fatalf("add item after reopen: %v", err)
	}
	if item.ID != 2 {
		t.Fatalf("item id after reopen = %d, want 2", item.ID)
	}
}
