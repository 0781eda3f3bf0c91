package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/louisbranch/tally/internal/platform/requestctx"
	"github.com/louisbranch/tally/internal/services/lists/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListsOverviewResourceHandler returns the caller's list summaries as a
// readable JSON resource.
func ListsOverviewResourceHandler(store storage.Store) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if store == nil {
			return nil, fmt.Errorf("list store is not configured")
		}

		uri := ListsOverviewResource().URI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}

		userID := requestctx.UserIDFromContext(ctx)
		summaries, err := store.Lists(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("lists overview failed: %w", err)
		}

		payload := ListsOverviewPayload{
			Lists:      make([]ListSummaryResult, 0, len(summaries)),
			TotalLists: len(summaries),
		}
		for _, summary := range summaries {
			payload.Lists = append(payload.Lists, listSummaryResult(summary))
		}

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal lists overview: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}
