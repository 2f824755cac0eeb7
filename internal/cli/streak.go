package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/looper/internal/clock"
	"github.com/roach88/looper/internal/store"
	"github.com/roach88/looper/internal/streak"
)

// heatmapDays is how many days the streak command shows.
const heatmapDays = 30

// StreakResult is the output of the streak command.
type StreakResult struct {
	streak.State
	Heatmap []streak.Day `json:"heatmap"`
}

// Text renders the streak and a one-line heatmap, oldest day first.
func (r StreakResult) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current streak: %d\n", r.CurrentStreak)
	fmt.Fprintf(&b, "Longest streak: %d\n", r.LongestStreak)
	if r.LastPlayedDate != "" {
		fmt.Fprintf(&b, "Last played:    %s\n", r.LastPlayedDate)
	}
	if len(r.Heatmap) > 0 {
		fmt.Fprintf(&b, "\n%s .. %s\n", r.Heatmap[0].Date, r.Heatmap[len(r.Heatmap)-1].Date)
		for _, d := range r.Heatmap {
			if d.Played {
				b.WriteString("■")
			} else {
				b.WriteString("□")
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewStreakCommand creates the streak command.
func NewStreakCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "streak",
		Short:         "Show the local streak and a 30-day heatmap",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStreak(rootOpts, cmd)
		},
	}
}

func runStreak(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := commandContext(cmd)

	env, err := openEnv(opts, cmd)
	if err != nil {
		return f.Fail(err)
	}
	defer env.close()

	state, err := streak.NewTracker(env.backend.Namespace(store.Streaks), streak.DefaultKey).Load(ctx)
	if err != nil {
		return f.Fail(err)
	}

	now := env.clock.Now()
	to := clock.Today(env.clock)
	from := now.AddDate(0, 0, -(heatmapDays - 1)).Format(clock.DateLayout)
	days, err := streak.Heatmap(state, from, to)
	if err != nil {
		return f.Fail(err)
	}
	return f.Success(StreakResult{State: state, Heatmap: days})
}
