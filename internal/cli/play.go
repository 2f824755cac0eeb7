package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/looper/internal/clock"
	"github.com/roach88/looper/internal/fault"
	"github.com/roach88/looper/internal/game"
	"github.com/roach88/looper/internal/puzzle"
	"github.com/roach88/looper/internal/store"
	"github.com/roach88/looper/internal/streak"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Date   string
	Answer string
	Hints  int
}

// PlayResult is the output of a solved puzzle.
type PlayResult struct {
	PuzzleID      string `json:"puzzleId"`
	Score         int    `json:"score"`
	TimeTaken     int    `json:"timeTaken"`
	HintsUsed     int    `json:"hintsUsed"`
	CurrentStreak int    `json:"currentStreak"`
	LongestStreak int    `json:"longestStreak"`
	QueueKey      string `json:"queueKey"`
	Signature     string `json:"signature"`
}

// Text renders the outcome.
func (r PlayResult) Text() string {
	return fmt.Sprintf("✓ Solved %s\nScore: %d  Time: %ds  Hints: %d\nStreak: %d (best %d)\nQueued for sync as %s",
		r.PuzzleID, r.Score, r.TimeTaken, r.HintsUsed, r.CurrentStreak, r.LongestStreak, r.QueueKey)
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the daily puzzle",
		Long: `Play the daily puzzle, resuming saved progress.

Without --answer, play reads lines from stdin:
  hint         use a hint
  save JSON    save a partial answer
  quit         stop; progress is kept
  JSON         submit an answer

With --answer the answer is submitted at once. A correct answer is scored,
signed and queued for the next sync; the streak is updated.

Answer shapes:
  matrix     [[1,2,3,4],[3,4,1,2],[2,3,4,1],[4,1,2,3]]
  pattern    "🔺"
  sequence   [8]
  deduction  {"Alice":"Blue","Bob":"Red","Carol":"Green"}
  binary     [false,true,true]

Example:
  looper play
  looper play --date 2026-02-17 --answer '{"Alice":"Blue","Bob":"Red","Carol":"Green"}' --hints 1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", "", "puzzle date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&opts.Answer, "answer", "", "answer as JSON; submits without prompting")
	cmd.Flags().IntVar(&opts.Hints, "hints", 0, "hints to use before submitting --answer")

	return cmd
}

func runPlay(opts *PlayOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := commandContext(cmd)

	env, err := openEnv(opts.RootOptions, cmd)
	if err != nil {
		return f.Fail(err)
	}
	defer env.close()

	signer, err := env.signer()
	if err != nil {
		return f.Fail(err)
	}

	progress := env.backend.Namespace(store.Progress)
	puzzles := env.backend.Namespace(store.Puzzles)
	if n, err := game.Cleanup(ctx, progress, puzzles, clock.Today(env.clock)); err != nil {
		env.logger.Warn("cleanup failed", "error", err)
	} else if n > 0 {
		env.logger.Debug("removed old progress", "dates", n)
	}

	session := game.NewSession(game.Deps{
		Puzzles:  puzzles,
		Progress: progress,
		Signer:   signer,
		Queue:    env.queue(),
		Streak:   streak.NewTracker(env.backend.Namespace(store.Streaks), streak.DefaultKey),
		Clock:    env.clock,
		Logger:   env.logger,
	})

	var st game.State
	if opts.Date != "" {
		st, err = session.LoadDate(ctx, opts.Date)
	} else {
		st, err = session.Load(ctx)
	}
	if err != nil {
		return f.Fail(err)
	}
	if st.Complete {
		return f.Fail(fault.State("play", fmt.Sprintf("%s already completed with score %d", st.Puzzle.ID, st.Score)))
	}

	if opts.Answer != "" {
		return playOnce(ctx, f, session, st, opts)
	}
	return playInteractive(ctx, f, session, st, cmd.InOrStdin())
}

func playOnce(ctx context.Context, f *OutputFormatter, s *game.Session, st game.State, opts *PlayOptions) error {
	for i := 0; i < opts.Hints; i++ {
		if _, err := s.UseHint(ctx); err != nil {
			return f.Fail(err)
		}
	}
	done, err := submitLine(ctx, f, s, st.Puzzle, opts.Answer)
	if err != nil {
		return err
	}
	if !done {
		return f.Fail(WrapExitError(ExitFailure, ErrCodeIncorrect, errors.New("incorrect answer")))
	}
	return nil
}

func playInteractive(ctx context.Context, f *OutputFormatter, s *game.Session, st game.State, in io.Reader) error {
	if f.Format != "json" {
		fmt.Fprintln(f.Writer, renderPuzzle(st.Puzzle, false))
		if st.HintsUsed > 0 || st.Elapsed > 0 {
			fmt.Fprintf(f.Writer, "Resumed: %ds played, %d hint(s) used\n", st.Elapsed, st.HintsUsed)
		}
	}

	scanner := bufio.NewScanner(in)
	for {
		if f.Format != "json" {
			fmt.Fprint(f.Writer, "> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "quit" || line == "exit":
			fmt.Fprintln(f.GetErrWriter(), "Progress saved.")
			return nil
		case line == "hint":
			n, err := s.UseHint(ctx)
			if err != nil {
				return f.Fail(err)
			}
			fmt.Fprintf(f.GetErrWriter(), "Hints used: %d/%d\n", n, st.Puzzle.MaxHints)
		case strings.HasPrefix(line, "save "):
			a, err := puzzle.DecodeAnswer(st.Puzzle.Category, []byte(strings.TrimPrefix(line, "save ")))
			if err != nil {
				fmt.Fprintf(f.GetErrWriter(), "Could not read answer: %v\n", err)
				continue
			}
			if err := s.UpdateAnswer(ctx, a); err != nil {
				return f.Fail(err)
			}
			fmt.Fprintln(f.GetErrWriter(), "Saved.")
		default:
			done, err := submitLine(ctx, f, s, st.Puzzle, line)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return f.Fail(err)
	}
	return nil
}

// submitLine decodes and submits one answer. It reports whether the
// puzzle was solved; a wrong or unreadable answer is not an error.
func submitLine(ctx context.Context, f *OutputFormatter, s *game.Session, p puzzle.Puzzle, line string) (bool, error) {
	a, err := puzzle.DecodeAnswer(p.Category, []byte(line))
	if err != nil {
		fmt.Fprintf(f.GetErrWriter(), "Could not read answer: %v\n", err)
		return false, nil
	}

	out, err := s.Submit(ctx, a)
	if err != nil {
		if errors.Is(err, game.ErrRolledOver) {
			fmt.Fprintln(f.GetErrWriter(), "A new day has started; run play again for today's puzzle.")
		}
		return false, f.Fail(err)
	}
	if !out.Correct {
		fmt.Fprintln(f.GetErrWriter(), "Not quite. Try again!")
		return false, nil
	}

	return true, f.Success(PlayResult{
		PuzzleID:      out.Submission.PuzzleID,
		Score:         out.Score,
		TimeTaken:     out.TimeTaken,
		HintsUsed:     out.HintsUsed,
		CurrentStreak: out.Streak.CurrentStreak,
		LongestStreak: out.Streak.LongestStreak,
		QueueKey:      out.QueueKey,
		Signature:     out.Submission.Signature,
	})
}
