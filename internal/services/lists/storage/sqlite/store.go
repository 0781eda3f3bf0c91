// Package sqlite provides a SQLite-backed list storage implementation.
//
// It is the durable alternative to the in-memory engine: same contract, same
// error semantics, state survives process restarts. Item order inside a list
// is item_id order, which equals insertion order because IDs only ever grow;
// registry order is tracked with an explicit per-user position column.
package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/louisbranch/tally/internal/errors"
	sqlitemigrate "github.com/louisbranch/tally/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/tally/internal/services/lists/storage"
	"github.com/louisbranch/tally/internal/services/lists/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists per-user lists in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite list store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateList inserts one empty list at the end of the user's registry.
func (s *Store) CreateList(ctx context.Context, userID, name, description string) (storage.ListSummary, error) {
	if err := ctx.Err(); err != nil {
		return storage.ListSummary{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ListSummary{}, fmt.Errorf("storage is not configured")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO lists (user_id, name, description, position, next_item_id)
		 VALUES (?, ?, ?, COALESCE((SELECT MAX(position) + 1 FROM lists WHERE user_id = ?), 1), 1)`,
		userID,
		name,
		description,
		userID,
	)
	if err != nil {
		if isListUniqueViolation(err) {
			return storage.ListSummary{}, errors.New(errors.CodeListExists, fmt.Sprintf("list %q already exists", name))
		}
		return storage.ListSummary{}, fmt.Errorf("create list: %w", err)
	}
	return storage.ListSummary{Name: name, Description: description}, nil
}

// Lists returns one summary per list in registry position order.
func (s *Store) Lists(ctx context.Context, userID string) ([]storage.ListSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT l.name, l.description,
		        COUNT(i.item_id),
		        COALESCE(SUM(i.completed), 0)
		   FROM lists l
		   LEFT JOIN list_items i
		     ON i.user_id = l.user_id AND i.list_name = l.name
		  WHERE l.user_id = ?
		  GROUP BY l.name, l.description, l.position
		  ORDER BY l.position ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	summaries := make([]storage.ListSummary, 0)
	for rows.Next() {
		var summary storage.ListSummary
		if err := rows.Scan(&summary.Name, &summary.Description, &summary.ItemCount, &summary.CompletedCount); err != nil {
			return nil, fmt.Errorf("list lists: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	return summaries, nil
}

// DeleteList removes a list and its items, reporting whether one existed.
func (s *Store) DeleteList(ctx context.Context, userID, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("delete list: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM list_items WHERE user_id = ? AND list_name = ?`,
		userID, name,
	); err != nil {
		return false, fmt.Errorf("delete list items: %w", err)
	}
	result, err := tx.ExecContext(
		ctx,
		`DELETE FROM lists WHERE user_id = ? AND name = ?`,
		userID, name,
	)
	if err != nil {
		return false, fmt.Errorf("delete list: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete list: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("delete list: %w", err)
	}
	return affected > 0, nil
}

// AddItem appends an item to the named list with the next sequential ID.
func (s *Store) AddItem(ctx context.Context, userID, listName, text string, quantity int, notes string) (storage.Item, error) {
	if err := ctx.Err(); err != nil {
		return storage.Item{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Item{}, fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.Item{}, fmt.Errorf("add item: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var nextItemID int64
	err = tx.QueryRowContext(
		ctx,
		`SELECT next_item_id FROM lists WHERE user_id = ? AND name = ?`,
		userID, listName,
	).Scan(&nextItemID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return storage.Item{}, listNotFound(listName)
		}
		return storage.Item{}, fmt.Errorf("add item: %w", err)
	}
	if text == "" {
		return storage.Item{}, errors.New(errors.CodeItemTextEmpty, "item text is required")
	}
	if quantity < 1 {
		return storage.Item{}, errors.New(errors.CodeItemQuantityInvalid, fmt.Sprintf("item quantity must be at least 1, got %d", quantity))
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO list_items (user_id, list_name, item_id, text, quantity, notes, completed)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`,
		userID, listName, nextItemID, text, quantity, notes,
	); err != nil {
		return storage.Item{}, fmt.Errorf("add item: %w", err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`UPDATE lists SET next_item_id = next_item_id + 1 WHERE user_id = ? AND name = ?`,
		userID, listName,
	); err != nil {
		return storage.Item{}, fmt.Errorf("advance item id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return storage.Item{}, fmt.Errorf("add item: %w", err)
	}

	return storage.Item{ID: nextItemID, Text: text, Quantity: quantity, Notes: notes}, nil
}

// ListItems returns the named list's items in insertion order.
func (s *Store) ListItems(ctx context.Context, userID, listName string) ([]storage.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	if err := s.requireList(ctx, s.sqlDB, userID, listName); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT item_id, text, quantity, notes, completed
		   FROM list_items
		  WHERE user_id = ? AND list_name = ?
		  ORDER BY item_id ASC`,
		userID, listName,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]storage.Item, 0)
	for rows.Next() {
		var item storage.Item
		if err := rows.Scan(&item.ID, &item.Text, &item.Quantity, &item.Notes, &item.Completed); err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// RemoveItem removes the item with the given ID, reporting whether it existed.
func (s *Store) RemoveItem(ctx context.Context, userID, listName string, itemID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}

	if err := s.requireList(ctx, s.sqlDB, userID, listName); err != nil {
		return false, err
	}
	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM list_items WHERE user_id = ? AND list_name = ? AND item_id = ?`,
		userID, listName, itemID,
	)
	if err != nil {
		return false, fmt.Errorf("remove item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove item: %w", err)
	}
	return affected > 0, nil
}

// ToggleItem flips an item's completed flag and returns the updated item.
func (s *Store) ToggleItem(ctx context.Context, userID, listName string, itemID int64) (storage.Item, error) {
	if err := ctx.Err(); err != nil {
		return storage.Item{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Item{}, fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.Item{}, fmt.Errorf("toggle item: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.requireList(ctx, tx, userID, listName); err != nil {
		return storage.Item{}, err
	}
	result, err := tx.ExecContext(
		ctx,
		`UPDATE list_items SET completed = 1 - completed
		  WHERE user_id = ? AND list_name = ? AND item_id = ?`,
		userID, listName, itemID,
	)
	if err != nil {
		return storage.Item{}, fmt.Errorf("toggle item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.Item{}, fmt.Errorf("toggle item: %w", err)
	}
	if affected == 0 {
		return storage.Item{}, itemNotFound(itemID, listName)
	}

	var item storage.Item
	err = tx.QueryRowContext(
		ctx,
		`SELECT item_id, text, quantity, notes, completed
		   FROM list_items
		  WHERE user_id = ? AND list_name = ? AND item_id = ?`,
		userID, listName, itemID,
	).Scan(&item.ID, &item.Text, &item.Quantity, &item.Notes, &item.Completed)
	if err != nil {
		return storage.Item{}, fmt.Errorf("toggle item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return storage.Item{}, fmt.Errorf("toggle item: %w", err)
	}
	return item, nil
}

// SearchItems scans one list, or every list in registry order, for items
// whose text or notes contain the query. Matching runs through
// storage.MatchesQuery so semantics stay identical to the memory engine.
func (s *Store) SearchItems(ctx context.Context, userID, query, listName string) ([]storage.SearchMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var (
		rows *sql.Rows
		err  error
	)
	if listName != "" {
		if err := s.requireList(ctx, s.sqlDB, userID, listName); err != nil {
			return nil, err
		}
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT list_name, item_id, text, quantity, notes, completed
			   FROM list_items
			  WHERE user_id = ? AND list_name = ?
			  ORDER BY item_id ASC`,
			userID, listName,
		)
	} else {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT i.list_name, i.item_id, i.text, i.quantity, i.notes, i.completed
			   FROM list_items i
			   JOIN lists l ON l.user_id = i.user_id AND l.name = i.list_name
			  WHERE i.user_id = ?
			  ORDER BY l.position ASC, i.item_id ASC`,
			userID,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	defer rows.Close()

	matches := make([]storage.SearchMatch, 0)
	for rows.Next() {
		var match storage.SearchMatch
		if err := rows.Scan(&match.ListName, &match.Item.ID, &match.Item.Text, &match.Item.Quantity, &match.Item.Notes, &match.Item.Completed); err != nil {
			return nil, fmt.Errorf("search items: %w", err)
		}
		if storage.MatchesQuery(match.Item, query) {
			matches = append(matches, match)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return matches, nil
}

// querier covers both *sql.DB and *sql.Tx for existence checks.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// requireList fails with a not-found domain error when the list is absent.
func (s *Store) requireList(ctx context.Context, q querier, userID, listName string) error {
	var one int
	err := q.QueryRowContext(
		ctx,
		`SELECT 1 FROM lists WHERE user_id = ? AND name = ?`,
		userID, listName,
	).Scan(&one)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return listNotFound(listName)
		}
		return fmt.Errorf("check list: %w", err)
	}
	return nil
}

func isListUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if stderrors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "lists.")
}

func listNotFound(name string) error {
	return errors.New(errors.CodeListNotFound, fmt.Sprintf("list %q does not exist", name))
}

func itemNotFound(itemID int64, listName string) error {
	return errors.New(errors.CodeItemNotFound, fmt.Sprintf("item %d not found in list %q", itemID, listName))
}

var _ storage.Store = (*Store)(nil)
