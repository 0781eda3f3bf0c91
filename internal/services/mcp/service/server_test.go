package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/tally/internal/platform/requestctx"
	"github.com/louisbranch/tally/internal/services/lists/storage/memory"
	"github.com/louisbranch/tally/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// startTestSession serves a fresh server over in-memory transports and
// returns a connected client session.
func startTestSession(t *testing.T, userID string) *mcp.ClientSession {
	t.Helper()

	server, err := New(memory.NewStore())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.serveWithTransport(requestctx.WithUserID(ctx, userID), serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientCtx, clientCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer clientCancel()
	session, err := client.Connect(clientCtx, clientTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("connect client: %v", err)
	}

	t.Cleanup(func() {
		_ = session.Close()
		cancel()
		select {
		case <-serveErr:
		case <-time.After(2 * time.Second):
			t.Error("server did not stop after cancel")
		}
	})

	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("call %s: %v", name, err)
	}
	if result == nil {
		t.Fatalf("call %s returned nil result", name)
	}
	return result
}

func decodeStructuredContent[T any](t *testing.T, value any) T {
	t.Helper()

	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var output T
	if err := json.Unmarshal(data, &output); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return output
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestServerListsAllTools(t *testing.T) {
	session := startTestSession(t, "u1")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	listed, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}

	want := map[string]bool{
		"create_list":            false,
		"get_lists":              false,
		"delete_list":            false,
		"add_item_to_list":       false,
		"get_list_items":         false,
		"remove_item_from_list":  false,
		"toggle_item_completion": false,
		"search_items":           false,
	}
	for _, tool := range listed.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("tool %q is not registered", name)
		}
	}
}

func TestServerGroceriesScenario(t *testing.T) {
	session := startTestSession(t, "u1")

	result := callTool(t, session, "create_list", map[string]any{
		"name":        "Groceries",
		"description": "weekly run",
	})
	if result.IsError {
		t.Fatalf("create_list returned error content: %+v", result.Content)
	}
	created := decodeStructuredContent[domain.CreateListResult](t, result.StructuredContent)
	if created.List.Name != "Groceries" {
		t.Fatalf("created list = %+v", created.List)
	}

	result = callTool(t, session, "add_item_to_list", map[string]any{
		"list_name": "Groceries",
		"item":      "Eggs",
		"quantity":  12,
	})
	if result.IsError {
		t.Fatalf("add_item_to_list returned error content: %+v", result.Content)
	}
	added := decodeStructuredContent[domain.AddItemResult](t, result.StructuredContent)
	if added.Item.ID != 1 || added.Item.Quantity != 12 {
		t.Fatalf("added item = %+v", added.Item)
	}

	result = callTool(t, session, "add_item_to_list", map[string]any{
		"list_name": "Groceries",
		"item":      "Bread",
	})
	if result.IsError {
		t.Fatalf("add_item_to_list returned error content: %+v", result.Content)
	}
	added = decodeStructuredContent[domain.AddItemResult](t, result.StructuredContent)
	if added.Item.ID != 2 || added.Item.Quantity != 1 {
		t.Fatalf("defaulted item = %+v", added.Item)
	}

	result = callTool(t, session, "toggle_item_completion", map[string]any{
		"list_name": "Groceries",
		"item_id":   1,
	})
	if result.IsError {
		t.Fatalf("toggle_item_completion returned error content: %+v", result.Content)
	}
	toggled := decodeStructuredContent[domain.ToggleItemResult](t, result.StructuredContent)
	if !toggled.Item.Completed {
		t.Fatal("expected item 1 completed")
	}

	result = callTool(t, session, "get_lists", map[string]any{})
	if result.IsError {
		t.Fatalf("get_lists returned error content: %+v", result.Content)
	}
	lists := decodeStructuredContent[domain.GetListsResult](t, result.StructuredContent)
	if lists.TotalLists != 1 || lists.Lists[0].ItemCount != 2 || lists.Lists[0].CompletedCount != 1 {
		t.Fatalf("lists = %+v", lists)
	}

	result = callTool(t, session, "search_items", map[string]any{"query": "egg"})
	if result.IsError {
		t.Fatalf("search_items returned error content: %+v", result.Content)
	}
	found := decodeStructuredContent[domain.SearchItemsResult](t, result.StructuredContent)
	if found.TotalFound != 1 || found.Results[0].Item.Text != "Eggs" {
		t.Fatalf("search results = %+v", found)
	}

	result = callTool(t, session, "remove_item_from_list", map[string]any{
		"list_name": "Groceries",
		"item_id":   2,
	})
	if result.IsError {
		t.Fatalf("remove_item_from_list returned error content: %+v", result.Content)
	}
	removed := decodeStructuredContent[domain.RemoveItemResult](t, result.StructuredContent)
	if !removed.Removed {
		t.Fatal("expected removed=true")
	}

	result = callTool(t, session, "get_list_items", map[string]any{"list_name": "Groceries"})
	if result.IsError {
		t.Fatalf("get_list_items returned error content: %+v", result.Content)
	}
	items := decodeStructuredContent[domain.GetListItemsResult](t, result.StructuredContent)
	if items.TotalItems != 1 || items.Items[0].ID != 1 {
		t.Fatalf("items = %+v", items)
	}
}

func TestServerReportsToolErrors(t *testing.T) {
	session := startTestSession(t, "u1")

	result := callTool(t, session, "get_list_items", map[string]any{"list_name": "Missing"})
	if !result.IsError {
		t.Fatal("expected error result for missing list")
	}

	callTool(t, session, "create_list", map[string]any{"name": "Chores"})
	result = callTool(t, session, "create_list", map[string]any{"name": "Chores"})
	if !result.IsError {
		t.Fatal("expected error result for duplicate list")
	}
}

func TestServerOverviewResource(t *testing.T) {
	session := startTestSession(t, "u1")

	callTool(t, session, "create_list", map[string]any{"name": "Groceries"})
	callTool(t, session, "add_item_to_list", map[string]any{"list_name": "Groceries", "item": "Eggs"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resource, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "lists://overview"})
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	if len(resource.Contents) != 1 {
		t.Fatalf("expected 1 content entry, got %d", len(resource.Contents))
	}

	var payload domain.ListsOverviewPayload
	if err := json.Unmarshal([]byte(resource.Contents[0].Text), &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.TotalLists != 1 || payload.Lists[0].ItemCount != 1 {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestRunUnsupportedTransport(t *testing.T) {
	err := Run(context.Background(), Config{Transport: "websocket"}, memory.NewStore())
	if err == nil {
		t.Fatal("expected error for unsupported transport")
	}
	if !strings.Contains(err.Error(), "not supported") {
		t.Errorf("expected 'not supported' in error, got: %v", err)
	}
}
