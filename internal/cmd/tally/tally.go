// Package tally parses command flags and wires the list store into the MCP
// server.
package tally

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/louisbranch/tally/internal/platform/config"
	"github.com/louisbranch/tally/internal/platform/otel"
	"github.com/louisbranch/tally/internal/platform/requestctx"
	"github.com/louisbranch/tally/internal/services/lists/storage"
	"github.com/louisbranch/tally/internal/services/lists/storage/memory"
	"github.com/louisbranch/tally/internal/services/lists/storage/sqlite"
	"github.com/louisbranch/tally/internal/services/mcp/service"
)

const (
	// StorageMemory keeps all lists in process memory.
	StorageMemory = "memory"
	// StorageSQLite persists lists to a local SQLite database.
	StorageSQLite = "sqlite"
)

// Config holds command configuration.
type Config struct {
	Transport  string `env:"TALLY_MCP_TRANSPORT" envDefault:"stdio"`
	HTTPAddr   string `env:"TALLY_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	Storage    string `env:"TALLY_STORAGE"       envDefault:"memory"`
	SQLitePath string `env:"TALLY_SQLITE_PATH"   envDefault:"tally.db"`
	// UserID is the identity bound to stdio sessions. HTTP requests carry
	// identity in the X-User-Id header instead.
	UserID string `env:"TALLY_MCP_USER_ID" envDefault:"anonymous"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "Storage backend: memory or sqlite")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database path (for sqlite storage)")
	fs.StringVar(&cfg.UserID, "user-id", cfg.UserID, "User identity for stdio sessions")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server with the configured storage backend.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "tally")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	store, closeStore, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	userID := cfg.UserID
	if userID == "" {
		userID = requestctx.AnonymousUserID
	}

	return service.Run(ctx, service.Config{
		Transport:   service.TransportKind(cfg.Transport),
		HTTPAddr:    cfg.HTTPAddr,
		StdioUserID: userID,
	}, store)
}

// newStore builds the configured storage backend and a close func.
func newStore(cfg Config) (storage.Store, func() error, error) {
	switch cfg.Storage {
	case StorageMemory:
		return memory.NewStore(), func() error { return nil }, nil
	case StorageSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("storage backend %q is not supported", cfg.Storage)
	}
}
