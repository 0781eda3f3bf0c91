package domain

import (
	"context"
	"fmt"

	"github.com/louisbranch/tally/internal/platform/requestctx"
	"github.com/louisbranch/tally/internal/services/lists/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchItemsHandler executes an item search against the store.
func SearchItemsHandler(store storage.Store) mcp.ToolHandlerFor[SearchItemsInput, SearchItemsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SearchItemsInput) (*mcp.CallToolResult, SearchItemsResult, error) {
		if store == nil {
			return nil, SearchItemsResult{}, fmt.Errorf("list store is not configured")
		}
		userID := requestctx.UserIDFromContext(ctx)

		matches, err := store.SearchItems(ctx, userID, input.Query, input.ListName)
		if err != nil {
			return nil, SearchItemsResult{}, err
		}
		result := SearchItemsResult{
			Query:      input.Query,
			Results:    make([]SearchMatchResult, 0, len(matches)),
			TotalFound: len(matches),
		}
		for _, match := range matches {
			result.Results = append(result.Results, SearchMatchResult{
				ListName: match.ListName,
				Item:     itemResult(match.Item),
			})
		}
		return nil, result, nil
	}
}
