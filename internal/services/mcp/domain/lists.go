package domain

import "github.com/modelcontextprotocol/go-sdk/mcp"

// CreateListInput represents the MCP tool input for list creation.
type CreateListInput struct {
	Name        string `json:"name" jsonschema:"list name"`
	Description string `json:"description,omitempty" jsonschema:"optional list description"`
}

// CreateListResult represents the MCP tool output for list creation.
type CreateListResult struct {
	Message string            `json:"message" jsonschema:"human-readable confirmation"`
	List    ListSummaryResult `json:"list" jsonschema:"summary of the created list"`
}

// ListSummaryResult represents a list summary in MCP responses.
type ListSummaryResult struct {
	Name           string `json:"name" jsonschema:"list name"`
	Description    string `json:"description" jsonschema:"list description"`
	ItemCount      int    `json:"item_count" jsonschema:"number of items in the list"`
	CompletedCount int    `json:"completed_count" jsonschema:"number of completed items in the list"`
}

// GetListsInput represents the MCP tool input for list enumeration.
type GetListsInput struct{}

// GetListsResult represents the MCP tool output for list enumeration.
type GetListsResult struct {
	Lists      []ListSummaryResult `json:"lists" jsonschema:"list summaries in creation order"`
	TotalLists int                 `json:"total_lists" jsonschema:"number of lists"`
}

// DeleteListInput represents the MCP tool input for list deletion.
type DeleteListInput struct {
	ListName string `json:"list_name" jsonschema:"name of the list to delete"`
}

// DeleteListResult represents the MCP tool output for list deletion.
type DeleteListResult struct {
	Message string `json:"message" jsonschema:"human-readable outcome"`
	Deleted bool   `json:"deleted" jsonschema:"whether a list was deleted"`
}

// CreateListTool defines the MCP tool for list creation.
func CreateListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "create_list",
		Description: "Create a new list with a given name",
	}
}

// GetListsTool defines the MCP tool for list enumeration.
func GetListsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_lists",
		Description: "Get all lists with their basic information",
	}
}

// DeleteListTool defines the MCP tool for list deletion.
func DeleteListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "delete_list",
		Description: "Delete an entire list",
	}
}

// ListsOverviewResource defines the readable overview resource for the
// caller's lists.
func ListsOverviewResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "lists_overview",
		Title:       "Lists",
		Description: "Readable overview of the caller's lists",
		URI:         "lists://overview",
		MIMEType:    "application/json",
	}
}

// ListsOverviewPayload represents the overview resource payload.
type ListsOverviewPayload struct {
	Lists      []ListSummaryResult `json:"lists"`
	TotalLists int                 `json:"total_lists"`
}
