package domain

import "github.com/modelcontextprotocol/go-sdk/mcp"

// SearchItemsInput represents the MCP tool input for item search.
type SearchItemsInput struct {
	Query    string `json:"query" jsonschema:"substring to match against item text and notes"`
	ListName string `json:"list_name,omitempty" jsonschema:"optional list name to restrict the search"`
}

// SearchMatchResult represents a single search match in MCP responses.
type SearchMatchResult struct {
	ListName string     `json:"list_name" jsonschema:"list holding the matching item"`
	Item     ItemResult `json:"item" jsonschema:"the matching item"`
}

// SearchItemsResult represents the MCP tool output for item search.
type SearchItemsResult struct {
	Query      string              `json:"query" jsonschema:"the query that was searched"`
	Results    []SearchMatchResult `json:"results" jsonschema:"matches in list order"`
	TotalFound int                 `json:"total_found" jsonschema:"number of matches"`
}

// SearchItemsTool defines the MCP tool for item search.
func SearchItemsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "search_items",
		Description: "Search for items across all lists or within a specific list",
	}
}
