package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/looper/internal/clock"
	"github.com/roach88/looper/internal/fault"
	"github.com/roach88/looper/internal/puzzle"
)

// PuzzleOptions holds flags for the puzzle command.
type PuzzleOptions struct {
	*RootOptions
	Date     string
	Solution bool
}

// PuzzleResult is the output of the puzzle command.
type PuzzleResult struct {
	Puzzle      puzzle.Puzzle `json:"puzzle"`
	Fingerprint string        `json:"fingerprint"`

	showSolution bool
}

// Text renders the puzzle for a terminal.
func (r PuzzleResult) Text() string {
	out := renderPuzzle(r.Puzzle, r.showSolution)
	if r.showSolution {
		out += "\nFingerprint: " + r.Fingerprint
	}
	return out
}

// NewPuzzleCommand creates the puzzle command.
func NewPuzzleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PuzzleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "puzzle",
		Short: "Print the puzzle for a date",
		Long: `Print the daily puzzle. Defaults to today's local date.

The JSON form is the canonical wire shape and includes the solution.

Example:
  looper puzzle
  looper puzzle --date 2026-02-14 --solution
  looper puzzle --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPuzzle(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", "", "puzzle date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&opts.Solution, "solution", false, "show the solution in text output")

	return cmd
}

func runPuzzle(opts *PuzzleOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	date := opts.Date
	if date == "" {
		date = clock.Today(opts.clockOf())
	}

	p, err := puzzle.Generate(date)
	if err != nil {
		return f.Fail(fault.Validationf("puzzle", "%v", err))
	}
	fp, err := puzzle.Fingerprint(p)
	if err != nil {
		return f.Fail(err)
	}

	f.VerboseLog("seed for %s: %d", date, puzzle.Seed(date))
	return f.Success(PuzzleResult{Puzzle: p, Fingerprint: fp, showSolution: opts.Solution})
}
