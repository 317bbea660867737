package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"dashboard-service/config"
	"dashboard-service/db"
	"dashboard-service/store"
)

// env is what a command needs to reach storage.
type env struct {
	cfg    *config.Config
	slots  store.SlotStore
	logger *slog.Logger
	close  func() error
}

// openEnv loads the configuration and opens the configured backend. The
// caller must call close.
func openEnv(ctx context.Context, cmd *cobra.Command, opts *rootOptions) (*env, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)

	slots, closeFn, err := openSlots(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("storage opened", "backend", cfg.Storage.Backend)
	return &env{cfg: cfg, slots: slots, logger: logger, close: closeFn}, nil
}

func openSlots(ctx context.Context, cfg *config.Config) (store.SlotStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return store.NewMemorySlots(), noop, nil
	case config.BackendFile:
		slots, err := store.NewFileSlots(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		return slots, noop, nil
	case config.BackendPostgres:
		conn, err := db.Open(ctx, cfg.Storage.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return store.NewPostgresSlots(conn), conn.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
