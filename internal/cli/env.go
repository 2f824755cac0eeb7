package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/roach88/looper/internal/clock"
	"github.com/roach88/looper/internal/config"
	"github.com/roach88/looper/internal/signature"
	"github.com/roach88/looper/internal/store"
	"github.com/roach88/looper/internal/submission"
	"github.com/roach88/looper/internal/syncqueue"
)

// environment is what a command needs beyond its flags: settings, a
// logger, the clock and, for stateful commands, an open store.
type environment struct {
	cfg     config.Config
	logger  *slog.Logger
	clock   clock.Clock
	backend store.Backend
}

// loadEnv loads config and sets up logging. It does not open the store.
func loadEnv(opts *RootOptions, cmd *cobra.Command) (*environment, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeConfig, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger, err = newLogger(cmd.ErrOrStderr(), cfg.LogLevel, opts.Verbose)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, ErrCodeConfig, err)
		}
	}

	return &environment{cfg: cfg, logger: logger, clock: opts.clockOf()}, nil
}

// openEnv is loadEnv plus the configured store backend.
// Callers must call close.
func openEnv(opts *RootOptions, cmd *cobra.Command) (*environment, error) {
	env, err := loadEnv(opts, cmd)
	if err != nil {
		return nil, err
	}
	backend, err := openBackend(commandContext(cmd), env.cfg, env.clock)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}
	env.backend = backend
	env.logger.Debug("store ready", "backend", env.cfg.Store)
	return env, nil
}

func (e *environment) close() {
	if e.backend == nil {
		return
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing store", "error", err)
	}
}

func (e *environment) signer() (*signature.Signer, error) {
	secret, err := e.cfg.RequireSecret()
	if err != nil {
		return nil, err
	}
	return signature.NewSigner(secret)
}

// queue builds the sync queue over the local store, submitting to the
// configured API.
func (e *environment) queue() *syncqueue.Queue {
	client := submission.NewClient(e.cfg.APIURL, e.cfg.SubmitTimeout)
	return syncqueue.New(
		e.backend.Namespace(store.PendingSync),
		e.backend.Namespace(store.Settings),
		client,
		syncqueue.WithClock(e.clock),
		syncqueue.WithTimeout(e.cfg.SubmitTimeout),
		syncqueue.WithDebounce(e.cfg.SyncDebounce),
		syncqueue.WithLogger(e.logger),
	)
}

func openBackend(ctx context.Context, cfg config.Config, c clock.Clock) (store.Backend, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return store.NewMemory(), nil
	case config.StoreRedis:
		r := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "")
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, err
		}
		return r, nil
	case config.StoreSQLite:
		s, err := store.Open(cfg.Database)
		if err != nil {
			return nil, err
		}
		return s.WithClock(c), nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// newLogger returns a slog logger backed by charmbracelet/log.
func newLogger(w io.Writer, level string, verbose bool) (*slog.Logger, error) {
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if verbose {
		lvl = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           lvl,
		ReportTimestamp: true,
	})
	return slog.New(handler), nil
}

// commandContext returns cmd's context, or Background when run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
