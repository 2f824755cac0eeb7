package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/looper/internal/fault"
	"github.com/roach88/looper/internal/puzzle"
	"github.com/roach88/looper/internal/scoring"
)

// ScoreOptions holds flags for the score command.
type ScoreOptions struct {
	*RootOptions
	TimeTaken  int
	HintsUsed  int
	Difficulty string
}

// ScoreResult is the output of the score command.
type ScoreResult struct {
	Score      int               `json:"score"`
	MaxScore   int               `json:"maxScore"`
	MinTime    int               `json:"minTime"`
	Difficulty puzzle.Difficulty `json:"difficulty"`
}

// Text renders the score line.
func (r ScoreResult) Text() string {
	return fmt.Sprintf("Score: %d / %d (%s, fastest accepted time %ds)", r.Score, r.MaxScore, r.Difficulty, r.MinTime)
}

// NewScoreCommand creates the score command.
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute the score for a solve",
		Long: `Compute the score for a solve time, hint count and difficulty.

Example:
  looper score --time 45 --hints 1 --difficulty medium`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.TimeTaken, "time", 0, "seconds taken")
	cmd.Flags().IntVar(&opts.HintsUsed, "hints", 0, "hints used")
	cmd.Flags().StringVar(&opts.Difficulty, "difficulty", string(puzzle.Medium), "easy|medium|hard")

	return cmd
}

func runScore(opts *ScoreOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	d, err := puzzle.ParseDifficulty(opts.Difficulty)
	if err != nil {
		return f.Fail(fault.Validation("score", err.Error()))
	}
	return f.Success(ScoreResult{
		Score:      scoring.Score(opts.TimeTaken, opts.HintsUsed, d),
		MaxScore:   scoring.MaxScore(d),
		MinTime:    scoring.MinTime(d),
		Difficulty: d,
	})
}
