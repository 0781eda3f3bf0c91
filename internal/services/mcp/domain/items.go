package domain

import "github.com/modelcontextprotocol/go-sdk/mcp"

// ItemResult represents a list item in MCP responses.
type ItemResult struct {
	ID        int64  `json:"id" jsonschema:"item identifier within the list"`
	Text      string `json:"text" jsonschema:"item text"`
	Quantity  int    `json:"quantity" jsonschema:"item quantity"`
	Notes     string `json:"notes" jsonschema:"item notes"`
	Completed bool   `json:"completed" jsonschema:"whether the item is completed"`
}

// AddItemInput represents the MCP tool input for adding an item to a list.
type AddItemInput struct {
	ListName string `json:"list_name" jsonschema:"name of the list to add to"`
	Item     string `json:"item" jsonschema:"item text"`
	Quantity *int   `json:"quantity,omitempty" jsonschema:"optional item quantity, defaults to 1"`
	Notes    string `json:"notes,omitempty" jsonschema:"optional item notes"`
}

// AddItemResult represents the MCP tool output for adding an item.
type AddItemResult struct {
	Message string     `json:"message" jsonschema:"human-readable confirmation"`
	Item    ItemResult `json:"item" jsonschema:"the created item"`
}

// GetListItemsInput represents the MCP tool input for item enumeration.
type GetListItemsInput struct {
	ListName string `json:"list_name" jsonschema:"name of the list to read"`
}

// GetListItemsResult represents the MCP tool output for item enumeration.
type GetListItemsResult struct {
	ListName   string       `json:"list_name" jsonschema:"list name"`
	Items      []ItemResult `json:"items" jsonschema:"items in insertion order"`
	TotalItems int          `json:"total_items" jsonschema:"number of items in the list"`
}

// RemoveItemInput represents the MCP tool input for item removal.
type RemoveItemInput struct {
	ListName string `json:"list_name" jsonschema:"name of the list to remove from"`
	ItemID   int64  `json:"item_id" jsonschema:"identifier of the item to remove"`
}

// RemoveItemResult represents the MCP tool output for item removal.
type RemoveItemResult struct {
	Message string `json:"message" jsonschema:"human-readable outcome"`
	Removed bool   `json:"removed" jsonschema:"whether an item was removed"`
}

// ToggleItemInput represents the MCP tool input for toggling item completion.
type ToggleItemInput struct {
	ListName string `json:"list_name" jsonschema:"name of the list holding the item"`
	ItemID   int64  `json:"item_id" jsonschema:"identifier of the item to toggle"`
}

// ToggleItemResult represents the MCP tool output for toggling item completion.
type ToggleItemResult struct {
	Message string     `json:"message" jsonschema:"human-readable confirmation"`
	Item    ItemResult `json:"item" jsonschema:"the item after toggling"`
}

// AddItemTool defines the MCP tool for adding an item to a list.
func AddItemTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "add_item_to_list",
		Description: "Add an item to a specific list",
	}
}

// GetListItemsTool defines the MCP tool for item enumeration.
func GetListItemsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_list_items",
		Description: "Get all items from a specific list",
	}
}

// RemoveItemTool defines the MCP tool for item removal.
func RemoveItemTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "remove_item_from_list",
		Description: "Remove an item from a specific list",
	}
}

// ToggleItemTool defines the MCP tool for toggling item completion.
func ToggleItemTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "toggle_item_completion",
		Description: "Mark an item as completed or uncompleted in a list",
	}
}
