package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/looper/internal/store"
	"github.com/roach88/looper/internal/streak"
	"github.com/roach88/looper/internal/submission"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string

	// IDs overrides the receipt id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs submission.IDGenerator

	// ready, when set, receives the bound address once listening (for testing).
	ready chan<- string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the score validation server",
		Long: `Run the HTTP server that validates signed scores and keeps per-user
scores and streaks in the configured store (redis recommended).

Example:
  LOOPER_STORE=redis looper serve --addr :3001`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from config, :3001)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	env, err := openEnv(opts.RootOptions, cmd)
	if err != nil {
		return f.Fail(err)
	}
	defer env.close()

	signer, err := env.signer()
	if err != nil {
		return f.Fail(err)
	}
	gate, err := submission.NewGate(signer, env.clock)
	if err != nil {
		return f.Fail(err)
	}

	ids := opts.IDs
	if ids == nil {
		ids = submission.UUIDv7Generator{}
	}
	srv := submission.NewServer(submission.ServerConfig{
		Gate:    gate,
		Scores:  env.backend.Namespace(store.Scores),
		Streaks: streak.NewRegistry(env.backend.Namespace(store.Streaks)),
		IDs:     ids,
		Clock:   env.clock,
		Logger:  env.logger,
	})

	addr := opts.Addr
	if addr == "" {
		addr = env.cfg.Addr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return f.Fail(WrapExitError(ExitCommandError, "failed to listen", err))
	}

	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.Serve(ln) }()

	env.logger.Info("server listening", "addr", ln.Addr().String(), "store", env.cfg.Store)
	if opts.ready != nil {
		opts.ready <- ln.Addr().String()
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return f.Fail(fmt.Errorf("serve: %w", err))
		}
		return nil
	case <-ctx.Done():
	}

	env.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return f.Fail(fmt.Errorf("shutdown: %w", err))
	}
	env.logger.Info("server stopped gracefully")
	return nil
}
