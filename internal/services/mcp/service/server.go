package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/tally/internal/platform/requestctx"
	"github.com/louisbranch/tally/internal/services/lists/storage"
	"github.com/louisbranch/tally/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "Tally MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

type mcpRegistrationKind int

const (
	mcpRegistrationKindTools mcpRegistrationKind = iota
	mcpRegistrationKindResources
)

type mcpRegistrationModule struct {
	name     string
	kind     mcpRegistrationKind
	register func(mcpRegistrationTarget) error
}

const (
	mcpListToolsModuleName    = "list-tools"
	mcpItemToolsModuleName    = "item-tools"
	mcpSearchToolsModuleName  = "search-tools"
	mcpListResourceModuleName = "lists-resources"
)

type mcpRegistrationTarget interface {
	AddTool(*mcp.Tool, any) error
	AddResource(*mcp.Resource, mcp.ResourceHandler)
}

type mcpServerRegistrationAdapter struct {
	server *mcp.Server
}

func (r mcpServerRegistrationAdapter) AddTool(tool *mcp.Tool, handler any) error {
	return addMCPTool(r.server, tool, handler)
}

func (r mcpServerRegistrationAdapter) AddResource(resource *mcp.Resource, handler mcp.ResourceHandler) {
	r.server.AddResource(resource, handler)
}

type mcpToolRegistrar struct {
	matches func(any) bool
	add     func(*mcp.Server, *mcp.Tool, any)
}

func newMCPToolRegistrar[I any, O any]() mcpToolRegistrar {
	return mcpToolRegistrar{
		matches: func(handler any) bool {
			_, ok := handler.(mcp.ToolHandlerFor[I, O])
			return ok
		},
		add: func(server *mcp.Server, tool *mcp.Tool, handler any) {
			mcp.AddTool(server, tool, handler.(mcp.ToolHandlerFor[I, O]))
		},
	}
}

var mcpToolRegistrars = []mcpToolRegistrar{
	newMCPToolRegistrar[domain.CreateListInput, domain.CreateListResult](),
	newMCPToolRegistrar[domain.GetListsInput, domain.GetListsResult](),
	newMCPToolRegistrar[domain.DeleteListInput, domain.DeleteListResult](),
	newMCPToolRegistrar[domain.AddItemInput, domain.AddItemResult](),
	newMCPToolRegistrar[domain.GetListItemsInput, domain.GetListItemsResult](),
	newMCPToolRegistrar[domain.RemoveItemInput, domain.RemoveItemResult](),
	newMCPToolRegistrar[domain.ToggleItemInput, domain.ToggleItemResult](),
	newMCPToolRegistrar[domain.SearchItemsInput, domain.SearchItemsResult](),
}

func addMCPTool(server *mcp.Server, tool *mcp.Tool, handler any) error {
	for _, registrar := range mcpToolRegistrars {
		if registrar.matches(handler) {
			registrar.add(server, tool, handler)
			return nil
		}
	}
	toolName := "<nil>"
	if tool != nil {
		toolName = tool.Name
	}
	return fmt.Errorf("mcp registration adapter does not support handler type %T for tool %q", handler, toolName)
}

func registerListTools(registrar mcpRegistrationTarget, store storage.Store) error {
	registrations := []struct {
		tool    *mcp.Tool
		handler any
	}{
		{tool: domain.CreateListTool(), handler: domain.CreateListHandler(store)},
		{tool: domain.GetListsTool(), handler: domain.GetListsHandler(store)},
		{tool: domain.DeleteListTool(), handler: domain.DeleteListHandler(store)},
	}
	for _, registration := range registrations {
		if err := registerTool(registrar, registration.tool, registration.handler); err != nil {
			return err
		}
	}
	return nil
}

func registerItemTools(registrar mcpRegistrationTarget, store storage.Store) error {
	registrations := []struct {
		tool    *mcp.Tool
		handler any
	}{
		{tool: domain.AddItemTool(), handler: domain.AddItemHandler(store)},
		{tool: domain.GetListItemsTool(), handler: domain.GetListItemsHandler(store)},
		{tool: domain.RemoveItemTool(), handler: domain.RemoveItemHandler(store)},
		{tool: domain.ToggleItemTool(), handler: domain.ToggleItemHandler(store)},
	}
	for _, registration := range registrations {
		if err := registerTool(registrar, registration.tool, registration.handler); err != nil {
			return err
		}
	}
	return nil
}

func registerSearchTools(registrar mcpRegistrationTarget, store storage.Store) error {
	return registerTool(registrar, domain.SearchItemsTool(), domain.SearchItemsHandler(store))
}

// registerListResources registers readable list MCP resources.
func registerListResources(registrar mcpRegistrationTarget, store storage.Store) {
	registrar.AddResource(domain.ListsOverviewResource(), domain.ListsOverviewResourceHandler(store))
}

func registerTool(registrar mcpRegistrationTarget, tool *mcp.Tool, handler any) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	return registrar.AddTool(tool, handler)
}

func newMCPRegistrationModules(store storage.Store) []mcpRegistrationModule {
	return []mcpRegistrationModule{
		{
			name: mcpListToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerListTools(registrar, store)
			},
		},
		{
			name: mcpItemToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerItemTools(registrar, store)
			},
		},
		{
			name: mcpSearchToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerSearchTools(registrar, store)
			},
		},
		{
			name: mcpListResourceModuleName,
			kind: mcpRegistrationKindResources,
			register: func(registrar mcpRegistrationTarget) error {
				registerListResources(registrar, store)
				return nil
			},
		},
	}
}

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves MCP over streamable HTTP for remote clients.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	// HTTPAddr is the HTTP listen address. Defaults to localhost:8081 for
	// the HTTP transport.
	HTTPAddr string
	// StdioUserID is the identity bound to every stdio request. HTTP
	// requests carry identity per request instead.
	StdioUserID string
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
	store     storage.Store
}

// New creates a configured MCP server with tool and resource handlers bound
// to the given list store.
func New(store storage.Store) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("list store is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{})

	for _, module := range newMCPRegistrationModules(store) {
		if err := module.register(mcpServerRegistrationAdapter{server: mcpServer}); err != nil {
			return nil, fmt.Errorf("register MCP module %q: %w", module.name, err)
		}
	}

	return &Server{mcpServer: mcpServer, store: store}, nil
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport starts the MCP server using the provided transport.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// Run is the service entrypoint for MCP and blocks until context
// cancellation. It is transport-agnostic so startup can choose stdio for
// local tools and HTTP for remote integrations.
func Run(ctx context.Context, cfg Config, store storage.Store) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	server, err := New(store)
	if err != nil {
		return err
	}

	switch cfg.Transport {
	case TransportStdio:
		// Stdio runs for one local caller, so identity is fixed for the
		// whole session.
		return server.Serve(requestctx.WithUserID(ctx, cfg.StdioUserID))
	case TransportHTTP:
		return NewHTTPTransport(cfg.HTTPAddr, server).Start(ctx)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}
