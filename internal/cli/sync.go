package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/looper/internal/submission"
	"github.com/roach88/looper/internal/syncqueue"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	Token    string
	Watch    bool
	Interval time.Duration
}

// SyncResult is the output of a one-shot sync.
type SyncResult struct {
	syncqueue.Result
}

// Text renders the flush summary.
func (r SyncResult) Text() string {
	out := fmt.Sprintf("Synced %d, failed %d, stalled %d", r.Success, r.Failed, r.Stalled)
	for _, rej := range r.Rejected {
		out += fmt.Sprintf("\n  rejected %s: %s", rej.Date, rej.Reason)
	}
	return out
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Send pending submissions to the server",
		Long: `Send pending submissions to the configured API (LOOPER_API_URL).

With --watch, sync keeps running: it probes the server's health endpoint
every --interval and flushes the queue after each probe the server answers.
This is a periodic flush while the server is up, so entries queued by other
runs are picked up without waiting for an outage to end.

Example:
  looper sync --token alice
  looper sync --token alice --watch --interval 30s`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Token, "token", "", "bearer token identifying the player")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "keep syncing whenever the server is reachable")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 30*time.Second, "time between health checks (and flushes) for --watch")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func runSync(opts *SyncOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	if opts.Watch && opts.Interval <= 0 {
		return f.Fail(WrapExitError(ExitCommandError, ErrCodeGeneric,
			fmt.Errorf("--interval must be positive, got %s", opts.Interval)))
	}

	env, err := openEnv(opts.RootOptions, cmd)
	if err != nil {
		return f.Fail(err)
	}
	defer env.close()

	q := env.queue()

	if opts.Watch {
		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client := submission.NewClient(env.cfg.APIURL, env.cfg.SubmitTimeout)
		online := probe(ctx, client, opts.Interval)
		env.logger.Info("watching for connectivity", "api", env.cfg.APIURL, "interval", opts.Interval)
		if err := q.Watch(ctx, online, opts.Token); err != nil && ctx.Err() == nil {
			return f.Fail(err)
		}
		env.logger.Info("sync watcher stopped")
		return nil
	}

	res, err := q.Flush(commandContext(cmd), opts.Token)
	if err != nil {
		return f.Fail(err)
	}
	if err := f.Success(SyncResult{Result: res}); err != nil {
		return err
	}
	if res.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d submission(s) failed to sync", res.Failed))
	}
	return nil
}

// healthChecker is the part of submission.Client probe needs.
type healthChecker interface {
	Health(ctx context.Context) error
}

// probe checks the server every interval, starting immediately, and
// signals on the returned channel after every healthy check, not only the
// first one after an outage. The channel closes when ctx is done.
// interval must be positive.
func probe(ctx context.Context, hc healthChecker, interval time.Duration) <-chan struct{} {
	online := make(chan struct{})
	go func() {
		defer close(online)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if hc.Health(ctx) == nil {
				select {
				case online <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return online
}
