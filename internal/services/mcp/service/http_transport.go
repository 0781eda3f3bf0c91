package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/louisbranch/tally/internal/platform/config"
	"github.com/louisbranch/tally/internal/platform/requestctx"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// mcpHTTPEnv holds env-parsed configuration for the MCP HTTP transport.
type mcpHTTPEnv struct {
	AllowedHosts []string `env:"TALLY_MCP_ALLOWED_HOSTS" envSeparator:","`
	APIToken     string   `env:"TALLY_MCP_API_TOKEN"`
}

const (
	// userIDHeader carries the caller identity on HTTP requests.
	userIDHeader = "X-User-Id"

	// defaultHTTPAddr is the localhost-only default listen address.
	defaultHTTPAddr = "localhost:8081"

	// defaultShutdownTimeout is the maximum time to wait for graceful HTTP
	// server shutdown, long enough for in-flight tool calls to complete.
	defaultShutdownTimeout = 30 * time.Second
)

// HTTPTransport serves MCP over streamable HTTP. Requests are stateless, so
// every call carries its own identity and no session state survives between
// requests. Host and Origin headers are validated per MCP guidance so remote
// web pages cannot reach local MCP servers via DNS rebinding.
type HTTPTransport struct {
	addr         string
	allowedHosts map[string]struct{}
	apiToken     string
	handler      http.Handler

	shutdownTimeout time.Duration
}

// NewHTTPTransport creates an HTTP transport serving the given MCP server.
// It defaults to localhost-only binding unless explicit host configuration
// broadens access.
func NewHTTPTransport(addr string, server *Server) *HTTPTransport {
	if addr == "" {
		addr = defaultHTTPAddr
	}
	var raw mcpHTTPEnv
	_ = config.ParseEnv(&raw)

	transport := &HTTPTransport{
		addr:            addr,
		allowedHosts:    parseAllowedHosts(raw.AllowedHosts),
		apiToken:        strings.TrimSpace(raw.APIToken),
		shutdownTimeout: defaultShutdownTimeout,
	}

	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		if server == nil {
			return nil
		}
		return server.mcpServer
	}, &mcp.StreamableHTTPOptions{Stateless: true})

	mux := http.NewServeMux()
	mux.HandleFunc("/mcp/health", transport.handleHealth)
	mux.Handle("/mcp", transport.guard(withRequestIdentity(streamable)))
	transport.handler = mux

	return transport
}

// Start runs the HTTP server and blocks until the context is cancelled or
// the listener fails.
func (t *HTTPTransport) Start(ctx context.Context) error {
	if t == nil || t.handler == nil {
		return fmt.Errorf("HTTP transport is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	httpServer := &http.Server{
		Addr:    t.addr,
		Handler: t.handler,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("mcp http transport listening on %s", t.addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve MCP over HTTP: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), t.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown MCP HTTP server: %w", err)
		}
		<-errCh
		return nil
	}
}

// guard applies host validation and token authorization ahead of the MCP
// handler.
func (t *HTTPTransport) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := t.validateLocalRequest(r); err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		if !t.authorize(r) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authorize checks the bearer token when one is configured. An empty
// configured token means local trust and every request passes.
func (t *HTTPTransport) authorize(r *http.Request) bool {
	if t.apiToken == "" {
		return true
	}
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return subtle.ConstantTimeCompare([]byte(token), []byte(t.apiToken)) == 1
}

// withRequestIdentity copies the caller identity header into the request
// context before the MCP handler runs. Absent or blank headers fall back to
// the anonymous identity.
func withRequestIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(userIDHeader))
		ctx := requestctx.WithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (t *HTTPTransport) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := t.validateLocalRequest(r); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// validateLocalRequest enforces host access to mitigate DNS rebinding. It
// checks Host and Origin headers against allowed hosts; the default posture
// is loopback-only unless explicit hosts are configured.
func (t *HTTPTransport) validateLocalRequest(r *http.Request) error {
	if r == nil {
		return fmt.Errorf("invalid request")
	}

	if !t.isAllowedHostHeader(r.Host) {
		return fmt.Errorf("invalid host")
	}

	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return nil
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin")
	}

	originHost := parsed.Host
	if originHost == "" {
		return fmt.Errorf("invalid origin")
	}

	if !t.isAllowedHostHeader(originHost) {
		return fmt.Errorf("invalid origin")
	}

	return nil
}

// isAllowedHostHeader reports whether a Host/Origin header resolves to an
// allowed host.
func (t *HTTPTransport) isAllowedHostHeader(host string) bool {
	resolvedHost, ok := normalizeHost(host)
	if !ok {
		return false
	}

	if isLoopbackHost(resolvedHost) {
		return true
	}

	allowed := t.allowedHosts
	if len(allowed) == 0 {
		return false
	}

	_, ok = allowed[strings.ToLower(resolvedHost)]
	return ok
}

// isLoopbackHost reports whether a host resolves to loopback. It is
// intentionally strict: only explicit local loopback hosts pass by default.
func isLoopbackHost(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}

func parseAllowedHosts(hosts []string) map[string]struct{} {
	result := make(map[string]struct{}, len(hosts))
	for _, entry := range hosts {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			continue
		}
		result[strings.ToLower(trimmed)] = struct{}{}
	}
	return result
}

// normalizeHost extracts the hostname portion from Host/Origin headers.
func normalizeHost(host string) (string, bool) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", false
	}

	if strings.HasPrefix(host, "[") {
		if splitHost, _, err := net.SplitHostPort(host); err == nil {
			return splitHost, true
		}
		if strings.HasSuffix(host, "]") {
			return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]"), true
		}
		return "", false
	}

	if strings.Count(host, ":") > 1 {
		return host, true
	}

	if strings.Contains(host, ":") {
		splitHost, _, err := net.SplitHostPort(host)
		if err != nil {
			return "", false
		}
		return splitHost, true
	}

	return host, true
}
