package domain

import (
	"context"
	"fmt"

	"github.com/louisbranch/tally/internal/platform/requestctx"
	"github.com/louisbranch/tally/internal/services/lists/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CreateListHandler executes a list creation request against the store.
func CreateListHandler(store storage.Store) mcp.ToolHandlerFor[CreateListInput, CreateListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CreateListInput) (*mcp.CallToolResult, CreateListResult, error) {
		if store == nil {
			return nil, CreateListResult{}, fmt.Errorf("list store is not configured")
		}
		userID := requestctx.UserIDFromContext(ctx)

		summary, err := store.CreateList(ctx, userID, input.Name, input.Description)
		if err != nil {
			return nil, CreateListResult{}, err
		}
		return nil, CreateListResult{
			Message: fmt.Sprintf("List %q created successfully", summary.Name),
			List:    listSummaryResult(summary),
		}, nil
	}
}

// GetListsHandler returns the caller's list summaries.
func GetListsHandler(store storage.Store) mcp.ToolHandlerFor[GetListsInput, GetListsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ GetListsInput) (*mcp.CallToolResult, GetListsResult, error) {
		if store == nil {
			return nil, GetListsResult{}, fmt.Errorf("list store is not configured")
		}
		userID := requestctx.UserIDFromContext(ctx)

		summaries, err := store.Lists(ctx, userID)
		if err != nil {
			return nil, GetListsResult{}, err
		}
		result := GetListsResult{
			Lists:      make([]ListSummaryResult, 0, len(summaries)),
			TotalLists: len(summaries),
		}
		for _, summary := range summaries {
			result.Lists = append(result.Lists, listSummaryResult(summary))
		}
		return nil, result, nil
	}
}

// DeleteListHandler executes a list deletion request against the store.
func DeleteListHandler(store storage.Store) mcp.ToolHandlerFor[DeleteListInput, DeleteListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input DeleteListInput) (*mcp.CallToolResult, DeleteListResult, error) {
		if store == nil {
			return nil, DeleteListResult{}, fmt.Errorf("list store is not configured")
		}
		userID := requestctx.UserIDFromContext(ctx)

		deleted, err := store.DeleteList(ctx, userID, input.ListName)
		if err != nil {
			return nil, DeleteListResult{}, err
		}
		message := fmt.Sprintf("List %q deleted successfully", input.ListName)
		if !deleted {
			message = fmt.Sprintf("List %q does not exist", input.ListName)
		}
		return nil, DeleteListResult{Message: message, Deleted: deleted}, nil
	}
}

func listSummaryResult(summary storage.ListSummary) ListSummaryResult {
	return ListSummaryResult{
		Name:           summary.Name,
		Description:    summary.Description,
		ItemCount:      summary.ItemCount,
		CompletedCount: summary.CompletedCount,
	}
}
