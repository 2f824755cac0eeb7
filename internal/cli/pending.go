package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/looper/internal/syncqueue"
)

// PendingEntry is one queued submission as shown by the pending command.
type PendingEntry struct {
	Key        string `json:"key"`
	Date       string `json:"date"`
	PuzzleID   string `json:"puzzleId"`
	Score      int    `json:"score"`
	RetryCount int    `json:"retryCount"`
	Stalled    bool   `json:"stalled"`
	LastError  string `json:"lastError,omitempty"`
}

// PendingResult is the output of the pending command.
type PendingResult struct {
	Entries  []PendingEntry `json:"entries"`
	LastSync string         `json:"lastSync,omitempty"`
}

// Text renders the queue as a table.
func (r PendingResult) Text() string {
	var b strings.Builder
	if len(r.Entries) == 0 {
		b.WriteString("No pending submissions.")
	} else {
		fmt.Fprintf(&b, "%d pending submission(s):\n", len(r.Entries))
		for _, e := range r.Entries {
			status := fmt.Sprintf("retries %d/%d", e.RetryCount, syncqueue.MaxRetries)
			if e.Stalled {
				status = "stalled"
			}
			fmt.Fprintf(&b, "  %s  %-22s score %-4d %s", e.Date, e.PuzzleID, e.Score, status)
			if e.LastError != "" {
				fmt.Fprintf(&b, "  (%s)", e.LastError)
			}
			b.WriteByte('\n')
		}
	}
	if r.LastSync != "" {
		fmt.Fprintf(&b, "\nLast sync: %s", r.LastSync)
	}
	return strings.TrimRight(b.String(), "\n")
}

// CountResult reports how many entries a maintenance command touched.
type CountResult struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}

// Text renders the count.
func (r CountResult) Text() string {
	return fmt.Sprintf("%s: %d", r.Action, r.Count)
}

// NewPendingCommand creates the pending command and its subcommands.
func NewPendingCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Show submissions waiting to sync",
		Long: `Show submissions waiting to sync.

Entries that failed MaxRetries times, or that the server rejected, are
stalled: sync skips them until "pending retry" re-arms them or
"pending clear" drops the queue.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPending(rootOpts, cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "clear",
		Short:         "Drop every pending submission",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPendingClear(rootOpts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "retry",
		Short:         "Re-arm stalled submissions for the next sync",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPendingRetry(rootOpts, cmd)
		},
	})

	return cmd
}

func runPending(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := commandContext(cmd)

	env, err := openEnv(opts, cmd)
	if err != nil {
		return f.Fail(err)
	}
	defer env.close()

	q := env.queue()
	entries, err := q.Pending(ctx)
	if err != nil {
		return f.Fail(err)
	}

	res := PendingResult{Entries: make([]PendingEntry, 0, len(entries))}
	for _, e := range entries {
		res.Entries = append(res.Entries, PendingEntry{
			Key:        e.Key,
			Date:       e.Submission.Date,
			PuzzleID:   e.Submission.PuzzleID,
			Score:      e.Submission.Score,
			RetryCount: e.RetryCount,
			Stalled:    e.Stalled(),
			LastError:  e.LastError,
		})
	}
	last, ok, err := q.LastSynced(ctx)
	if err != nil {
		return f.Fail(err)
	}
	if ok {
		res.LastSync = last.Format(time.RFC3339)
	}
	return f.Success(res)
}

func runPendingClear(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := commandContext(cmd)

	env, err := openEnv(opts, cmd)
	if err != nil {
		return f.Fail(err)
	}
	defer env.close()

	q := env.queue()
	entries, err := q.Pending(ctx)
	if err != nil {
		return f.Fail(err)
	}
	if err := q.Clear(ctx); err != nil {
		return f.Fail(err)
	}
	return f.Success(CountResult{Action: "cleared", Count: len(entries)})
}

func runPendingRetry(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := commandContext(cmd)

	env, err := openEnv(opts, cmd)
	if err != nil {
		return f.Fail(err)
	}
	defer env.close()

	n, err := env.queue().ResetStalled(ctx)
	if err != nil {
		return f.Fail(err)
	}
	return f.Success(CountResult{Action: "re-armed", Count: n})
}
