package domain

import (
	"context"
	"fmt"

	"github.com/louisbranch/tally/internal/platform/requestctx"
	"github.com/louisbranch/tally/internal/services/lists/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// defaultItemQuantity applies when an add request omits the quantity field.
// An explicit quantity below 1 is still rejected by the store.
const defaultItemQuantity = 1

// AddItemHandler executes an item add request against the store.
func AddItemHandler(store storage.Store) mcp.ToolHandlerFor[AddItemInput, AddItemResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AddItemInput) (*mcp.CallToolResult, AddItemResult, error) {
		if store == nil {
			return nil, AddItemResult{}, fmt.Errorf("list store is not configured")
		}
		userID := requestctx.UserIDFromContext(ctx)

		quantity := defaultItemQuantity
		if input.Quantity != nil {
			quantity = *input.Quantity
		}

		item, err := store.AddItem(ctx, userID, input.ListName, input.Item, quantity, input.Notes)
		if err != nil {
			return nil, AddItemResult{}, err
		}
		return nil, AddItemResult{
			Message: fmt.Sprintf("Item %q added to list %q", item.Text, input.ListName),
			Item:    itemResult(item),
		}, nil
	}
}

// GetListItemsHandler returns all items from one list.
func GetListItemsHandler(store storage.Store) mcp.ToolHandlerFor[GetListItemsInput, GetListItemsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetListItemsInput) (*mcp.CallToolResult, GetListItemsResult, error) {
		if store == nil {
			return nil, GetListItemsResult{}, fmt.Errorf("list store is not configured")
		}
		userID := requestctx.UserIDFromContext(ctx)

		items, err := store.ListItems(ctx, userID, input.ListName)
		if err != nil {
			return nil, GetListItemsResult{}, err
		}
		result := GetListItemsResult{
			ListName:   input.ListName,
			Items:      make([]ItemResult, 0, len(items)),
			TotalItems: len(items),
		}
		for _, item := range items {
			result.Items = append(result.Items, itemResult(item))
		}
		return nil, result, nil
	}
}

// RemoveItemHandler executes an item removal request against the store.
func RemoveItemHandler(store storage.Store) mcp.ToolHandlerFor[RemoveItemInput, RemoveItemResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RemoveItemInput) (*mcp.CallToolResult, RemoveItemResult, error) {
		if store == nil {
			return nil, RemoveItemResult{}, fmt.Errorf("list store is not configured")
		}
		userID := requestctx.UserIDFromContext(ctx)

		removed, err := store.RemoveItem(ctx, userID, input.ListName, input.ItemID)
		if err != nil {
			return nil, RemoveItemResult{}, err
		}
		message := fmt.Sprintf("Item removed from list %q", input.ListName)
		if !removed {
			message = fmt.Sprintf("Item with ID %d not found in list %q", input.ItemID, input.ListName)
		}
		return nil, RemoveItemResult{Message: message, Removed: removed}, nil
	}
}

// ToggleItemHandler flips the completion state of one item.
func ToggleItemHandler(store storage.Store) mcp.ToolHandlerFor[ToggleItemInput, ToggleItemResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ToggleItemInput) (*mcp.CallToolResult, ToggleItemResult, error) {
		if store == nil {
			return nil, ToggleItemResult{}, fmt.Errorf("list store is not configured")
		}
		userID := requestctx.UserIDFromContext(ctx)

		item, err := store.ToggleItem(ctx, userID, input.ListName, input.ItemID)
		if err != nil {
			return nil, ToggleItemResult{}, err
		}
		status := "uncompleted"
		if item.Completed {
			status = "completed"
		}
		return nil, ToggleItemResult{
			Message: fmt.Sprintf("Item marked as %s", status),
			Item:    itemResult(item),
		}, nil
	}
}

func itemResult(item storage.Item) ItemResult {
	return ItemResult{
		ID:        item.ID,
		Text:      item.Text,
		Quantity:  item.Quantity,
		Notes:     item.Notes,
		Completed: item.Completed,
	}
}
