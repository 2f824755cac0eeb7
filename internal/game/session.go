// Package game runs one player's attempt at the daily puzzle: loading or
// resuming it, hints, answers and the final submission.
package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/looper/internal/clock"
	"github.com/roach88/looper/internal/fault"
	"github.com/roach88/looper/internal/puzzle"
	"github.com/roach88/looper/internal/scoring"
	"github.com/roach88/looper/internal/signature"
	"github.com/roach88/looper/internal/store"
	"github.com/roach88/looper/internal/streak"
	"github.com/roach88/looper/internal/submission"
)

// ErrRolledOver is returned when the calendar date changed under a
// session that follows today's puzzle. The state has been discarded.
var ErrRolledOver = fault.State("game", "the daily puzzle changed; load today's puzzle")

// Enqueuer accepts signed submissions for later sync. Withdraw drops an
// entry that was queued by a submit that could not be completed.
type Enqueuer interface {
	Enqueue(ctx context.Context, sub submission.Submission) (string, error)
	Withdraw(ctx context.Context, key string) error
}

// Deps wires a Session.
type Deps struct {
	Puzzles  store.Namespace
	Progress store.Namespace
	Signer   *signature.Signer
	Queue    Enqueuer
	Streak   *streak.Tracker
	Clock    clock.Clock
	Logger   *slog.Logger
}

// State is the in-memory game state for the loaded puzzle.
type State struct {
	Puzzle        puzzle.Puzzle
	StartedAt     time.Time
	Elapsed       int // seconds played before StartedAt, from saved progress
	HintsUsed     int
	CurrentAnswer puzzle.Answer
	Complete      bool
	Score         int
}

// Outcome is the result of Submit.
type Outcome struct {
	Correct    bool
	Score      int
	TimeTaken  int
	HintsUsed  int
	Streak     streak.State
	QueueKey   string
	Submission submission.Submission
}

// Session owns the game state for one player.
//
// Thread-safety: All methods are safe for concurrent use.
type Session struct {
	deps Deps

	mu          sync.Mutex
	state       *State
	followToday bool
}

// NewSession creates a session with nothing loaded.
func NewSession(deps Deps) *Session {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Session{deps: deps}
}

// Load loads today's puzzle, resuming saved progress. A session loaded
// this way returns ErrRolledOver once the date changes.
func (s *Session) Load(ctx context.Context) (State, error) {
	return s.load(ctx, clock.Today(s.deps.Clock), true)
}

// LoadDate loads the puzzle for a specific date. The session stays on
// that date regardless of the clock.
func (s *Session) LoadDate(ctx context.Context, date string) (State, error) {
	return s.load(ctx, date, false)
}

func (s *Session) load(ctx context.Context, date string, followToday bool) (State, error) {
	p, err := s.cachedPuzzle(ctx, date)
	if err != nil {
		return State{}, err
	}

	st := State{Puzzle: p, StartedAt: s.deps.Clock.Now()}

	saved, ok, err := LoadProgress(ctx, s.deps.Progress, date)
	if err != nil {
		return State{}, err
	}
	if ok && saved.PuzzleID == p.ID {
		st.Elapsed = saved.TimeTaken
		st.HintsUsed = saved.HintsUsed
		st.Complete = saved.Completed
		st.Score = saved.Score
		if len(saved.Answer) > 0 && string(saved.Answer) != "null" {
			a, err := puzzle.DecodeAnswer(p.Category, saved.Answer)
			if err != nil {
				s.deps.Logger.Warn("discarding unreadable saved answer", "date", date, "error", err)
			} else {
				st.CurrentAnswer = a
			}
		}
		s.deps.Logger.Info("resumed puzzle", "date", date, "hints_used", st.HintsUsed, "complete", st.Complete)
	} else {
		s.deps.Logger.Info("started puzzle", "date", date, "puzzle_id", p.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = &st
	s.followToday = followToday
	return st, nil
}

// cachedPuzzle returns the puzzle for date, refreshing the cache when it is
// missing or does not match what the generator produces.
func (s *Session) cachedPuzzle(ctx context.Context, date string) (puzzle.Puzzle, error) {
	fresh, err := puzzle.Generate(date)
	if err != nil {
		return puzzle.Puzzle{}, fault.Validationf("game.load", "%v", err)
	}
	want, err := puzzle.Fingerprint(fresh)
	if err != nil {
		return puzzle.Puzzle{}, fmt.Errorf("game.load: %w", err)
	}

	cached, ok, err := store.GetJSON[puzzle.Puzzle](ctx, s.deps.Puzzles, date)
	if err != nil {
		s.deps.Logger.Warn("puzzle cache unreadable, regenerating", "date", date, "error", err)
		ok = false
	}
	if ok {
		got, err := puzzle.Fingerprint(cached)
		if err == nil && got == want {
			return cached, nil
		}
		s.deps.Logger.Warn("puzzle cache mismatch, regenerating", "date", date)
	}

	if err := store.SetJSON(ctx, s.deps.Puzzles, date, fresh); err != nil {
		return puzzle.Puzzle{}, fmt.Errorf("game.load: %w", err)
	}
	return fresh, nil
}

// State returns a copy of the current state.
func (s *Session) State() (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return State{}, false
	}
	return *s.state, true
}

// active returns the loaded state or a STATE error. Callers hold s.mu.
func (s *Session) active(op string) (*State, error) {
	if s.state == nil {
		return nil, fault.State(op, "no active puzzle")
	}
	if s.followToday && clock.Today(s.deps.Clock) != s.state.Puzzle.Date {
		s.deps.Logger.Info("date rolled over, discarding state", "date", s.state.Puzzle.Date)
		s.state = nil
		return nil, ErrRolledOver
	}
	if s.state.Complete {
		return nil, fault.State(op, "puzzle already completed")
	}
	return s.state, nil
}

// UseHint spends a hint if any remain and returns the number used.
func (s *Session) UseHint(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.active("game.hint")
	if err != nil {
		return 0, err
	}
	if st.HintsUsed >= st.Puzzle.MaxHints {
		return st.HintsUsed, nil
	}
	st.HintsUsed++
	if err := s.saveProgress(ctx, st); err != nil {
		return st.HintsUsed, err
	}
	return st.HintsUsed, nil
}

// UpdateAnswer records a partial answer so it survives a restart.
func (s *Session) UpdateAnswer(ctx context.Context, a puzzle.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.active("game.answer")
	if err != nil {
		return err
	}
	st.CurrentAnswer = a
	return s.saveProgress(ctx, st)
}

// Submit checks answer. A wrong answer returns Outcome{Correct: false}
// and leaves the game running. A correct one scores, signs and queues the
// submission, records progress and the streak, and completes the game.
//
// The session is marked complete only after all three writes succeed.
// If a later write fails the queued entry is withdrawn and the previous
// progress restored, so the answer can be submitted again.
func (s *Session) Submit(ctx context.Context, answer puzzle.Answer) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.active("game.submit")
	if err != nil {
		return Outcome{}, err
	}

	if !puzzle.Validate(st.Puzzle, answer) {
		s.deps.Logger.Debug("incorrect answer", "puzzle_id", st.Puzzle.ID)
		return Outcome{Correct: false}, nil
	}

	timeTaken := s.elapsed(st)
	score := scoring.Score(timeTaken, st.HintsUsed, st.Puzzle.Difficulty)
	sub := submission.ForPuzzle(st.Puzzle, score, timeTaken, st.HintsUsed).Signed(s.deps.Signer)

	key, err := s.deps.Queue.Enqueue(ctx, sub)
	if err != nil {
		return Outcome{}, fmt.Errorf("game.submit: %w", err)
	}

	done := *st
	done.CurrentAnswer = answer
	done.Complete = true
	done.Score = score
	if err := s.saveProgress(ctx, &done); err != nil {
		s.withdraw(ctx, key)
		return Outcome{}, fmt.Errorf("game.submit: %w", err)
	}

	streakState, err := s.deps.Streak.Complete(ctx, st.Puzzle.Date)
	if err != nil {
		s.withdraw(ctx, key)
		if rerr := s.saveProgress(ctx, st); rerr != nil {
			s.deps.Logger.Error("restore progress failed", "date", st.Puzzle.Date, "error", rerr)
		}
		return Outcome{}, fmt.Errorf("game.submit: %w", err)
	}

	*st = done
	s.deps.Logger.Info("puzzle solved",
		"puzzle_id", st.Puzzle.ID,
		"score", score,
		"time_taken", timeTaken,
		"hints_used", st.HintsUsed,
		"streak", streakState.CurrentStreak,
	)
	return Outcome{
		Correct:    true,
		Score:      score,
		TimeTaken:  timeTaken,
		HintsUsed:  st.HintsUsed,
		Streak:     streakState,
		QueueKey:   key,
		Submission: sub,
	}, nil
}

func (s *Session) withdraw(ctx context.Context, key string) {
	if err := s.deps.Queue.Withdraw(ctx, key); err != nil {
		s.deps.Logger.Error("withdraw queued submission failed", "key", key, "error", err)
	}
}

// elapsed is whole seconds played, including time from earlier runs.
func (s *Session) elapsed(st *State) int {
	d := s.deps.Clock.Now().Sub(st.StartedAt)
	if d < 0 {
		d = 0
	}
	return st.Elapsed + int(d/time.Second)
}

func (s *Session) saveProgress(ctx context.Context, st *State) error {
	var answer json.RawMessage
	if st.CurrentAnswer != nil {
		raw, err := json.Marshal(st.CurrentAnswer)
		if err != nil {
			return fmt.Errorf("save progress: %w", err)
		}
		answer = raw
	}

	p := Progress{
		Date:        st.Puzzle.Date,
		PuzzleID:    st.Puzzle.ID,
		PuzzleType:  st.Puzzle.Category,
		Answer:      answer,
		Score:       st.Score,
		TimeTaken:   s.elapsed(st),
		HintsUsed:   st.HintsUsed,
		Completed:   st.Complete,
		LastUpdated: s.deps.Clock.Now().UTC(),
	}
	if err := store.SetJSON(ctx, s.deps.Progress, p.Date, p); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}
