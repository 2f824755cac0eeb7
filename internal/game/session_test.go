package game

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/looper/internal/fault"
	"github.com/roach88/looper/internal/puzzle"
	"github.com/roach88/looper/internal/signature"
	"github.com/roach88/looper/internal/store"
	"github.com/roach88/looper/internal/streak"
	"github.com/roach88/looper/internal/submission"
	"github.com/roach88/looper/internal/syncqueue"
	"github.com/roach88/looper/internal/testutil"
)

type fixture struct {
	session *Session
	clock   *testutil.FakeClock
	mem     *store.Memory
	queue   *syncqueue.Queue
	signer  *signature.Signer
	deps    Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	signer, err := signature.NewSigner("test-secret")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := store.NewMemory()
	clk := testutil.At(2026, time.February, 14, 9, 0)
	queue := syncqueue.New(mem.Namespace(store.PendingSync), mem.Namespace(store.Settings), nil,
		syncqueue.WithClock(clk), syncqueue.WithLogger(logger))

	deps := Deps{
		Puzzles:  mem.Namespace(store.Puzzles),
		Progress: mem.Namespace(store.Progress),
		Signer:   signer,
		Queue:    queue,
		Streak:   streak.NewTracker(mem.Namespace(store.Streaks), streak.DefaultKey),
		Clock:    clk,
		Logger:   logger,
	}
	return &fixture{
		session: NewSession(deps),
		clock:   clk,
		mem:     mem,
		queue:   queue,
		signer:  signer,
		deps:    deps,
	}
}

func TestSession_ActionsWithoutPuzzle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.session.UseHint(ctx)
	assert.True(t, fault.IsState(err))

	err = f.session.UpdateAnswer(ctx, puzzle.PatternAnswer("x"))
	assert.True(t, fault.IsState(err))

	_, err = f.session.Submit(ctx, puzzle.PatternAnswer("x"))
	assert.True(t, fault.IsState(err))

	_, ok := f.session.State()
	assert.False(t, ok)
}

func TestSession_LoadToday(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.session.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "matrix-2026-02-14", st.Puzzle.ID)
	assert.Equal(t, 0, st.HintsUsed)
	assert.False(t, st.Complete)

	cached, ok, err := store.GetJSON[puzzle.Puzzle](ctx, f.deps.Puzzles, "2026-02-14")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, st.Puzzle, cached)
}

func TestSession_TamperedCacheIsReplaced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := puzzle.MustGenerate("2026-02-15")
	pl := bad.Payload.(puzzle.Pattern)
	pl.CorrectAnswer = "🔻"
	bad.Payload = pl
	require.NoError(t, store.SetJSON(ctx, f.deps.Puzzles, "2026-02-15", bad))

	st, err := f.session.LoadDate(ctx, "2026-02-15")
	require.NoError(t, err)
	assert.Equal(t, "🔺", st.Puzzle.Payload.(puzzle.Pattern).CorrectAnswer)
}

func TestSession_LoadInvalidDate(t *testing.T) {
	f := newFixture(t)
	_, err := f.session.LoadDate(context.Background(), "2026-13-01")
	assert.True(t, fault.IsValidation(err))
}

func TestSession_Hints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.session.LoadDate(ctx, "2026-02-17") // deduction, 1 hint
	require.NoError(t, err)

	n, err := f.session.UseHint(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = f.session.UseHint(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "capped at MaxHints")
}

func TestSession_SubmitWrongAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.session.Load(ctx)
	require.NoError(t, err)

	out, err := f.session.Submit(ctx, puzzle.MatrixAnswer{})
	require.NoError(t, err)
	assert.False(t, out.Correct)

	pending, err := f.queue.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	st, _ := f.session.State()
	assert.False(t, st.Complete)
}

func TestSession_SubmitCorrect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st, err := f.session.Load(ctx)
	require.NoError(t, err)

	_, err = f.session.UseHint(ctx)
	require.NoError(t, err)
	f.clock.Advance(90 * time.Second)

	out, err := f.session.Submit(ctx, puzzle.SolutionOf(st.Puzzle))
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Equal(t, 90, out.TimeTaken)
	assert.Equal(t, 1, out.HintsUsed)
	// easy: 100 + floor(210/300*100) - 20
	assert.Equal(t, 150, out.Score)
	assert.Equal(t, 1, out.Streak.CurrentStreak)

	assert.True(t, f.signer.Verify(out.Submission.Fields(), out.Submission.Signature))
	assert.Equal(t, submission.ForPuzzle(st.Puzzle, 150, 90, 1).Signed(f.signer), out.Submission)

	pending, err := f.queue.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, out.QueueKey, pending[0].Key)

	saved, ok, err := LoadProgress(ctx, f.deps.Progress, "2026-02-14")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, saved.Completed)
	assert.Equal(t, 150, saved.Score)

	_, err = f.session.Submit(ctx, puzzle.SolutionOf(st.Puzzle))
	assert.True(t, fault.IsState(err), "a completed puzzle cannot be resubmitted")
}

func TestSession_ResumeKeepsHintsAnswerAndTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.session.Load(ctx)
	require.NoError(t, err)

	_, err = f.session.UseHint(ctx)
	require.NoError(t, err)
	f.clock.Advance(40 * time.Second)
	partial := puzzle.MatrixAnswer{{2, 3, 4, 1}}
	require.NoError(t, f.session.UpdateAnswer(ctx, partial))

	// A new process picks up where the last one stopped.
	again := NewSession(f.deps)
	f.clock.Advance(time.Hour)
	st, err := again.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.HintsUsed)
	assert.Equal(t, 40, st.Elapsed)
	assert.Equal(t, partial, st.CurrentAnswer)

	f.clock.Advance(20 * time.Second)
	out, err := again.Submit(ctx, puzzle.SolutionOf(st.Puzzle))
	require.NoError(t, err)
	assert.Equal(t, 60, out.TimeTaken, "time offline between runs is not counted")
}

func TestSession_ResumeCompletedStaysComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st, err := f.session.Load(ctx)
	require.NoError(t, err)
	_, err = f.session.Submit(ctx, puzzle.SolutionOf(st.Puzzle))
	require.NoError(t, err)

	again := NewSession(f.deps)
	st, err = again.Load(ctx)
	require.NoError(t, err)
	assert.True(t, st.Complete)

	_, err = again.UseHint(ctx)
	assert.True(t, fault.IsState(err))
}

func TestSession_Rollover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.session.Load(ctx)
	require.NoError(t, err)

	f.clock.Advance(16 * time.Hour) // 2026-02-15 01:00 local
	_, err = f.session.UseHint(ctx)
	assert.True(t, errors.Is(err, ErrRolledOver))

	_, ok := f.session.State()
	assert.False(t, ok, "state is discarded")

	st, err := f.session.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pattern-2026-02-15", st.Puzzle.ID)
}

func TestSession_LoadDateIgnoresRollover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.session.LoadDate(ctx, "2026-02-10")
	require.NoError(t, err)

	_, err = f.session.UseHint(ctx)
	assert.NoError(t, err)
}

type failingQueue struct{}

func (failingQueue) Enqueue(context.Context, submission.Submission) (string, error) {
	return "", fault.Storage("enqueue", errors.New("quota exceeded"))
}

func (failingQueue) Withdraw(context.Context, string) error { return nil }

func TestSession_EnqueueFailureLeavesGameOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deps := f.deps
	deps.Queue = failingQueue{}
	s := NewSession(deps)

	st, err := s.Load(ctx)
	require.NoError(t, err)

	_, err = s.Submit(ctx, puzzle.SolutionOf(st.Puzzle))
	assert.True(t, fault.IsStorage(err))

	st, _ = s.State()
	assert.False(t, st.Complete)
}

// flakyNamespace fails every Set while broken is true.
type flakyNamespace struct {
	store.Namespace
	broken bool
}

func (n *flakyNamespace) Set(ctx context.Context, key string, value []byte) error {
	if n.broken {
		return fault.Storage("set "+key, errors.New("disk full"))
	}
	return n.Namespace.Set(ctx, key, value)
}

func TestSession_ProgressFailureLeavesGameOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	progress := &flakyNamespace{Namespace: f.mem.Namespace(store.Progress)}
	deps := f.deps
	deps.Progress = progress
	s := NewSession(deps)

	st, err := s.Load(ctx)
	require.NoError(t, err)

	progress.broken = true
	_, err = s.Submit(ctx, puzzle.SolutionOf(st.Puzzle))
	require.Error(t, err)
	assert.True(t, fault.IsStorage(err))

	pending, err := f.queue.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending, "queued submission is withdrawn")

	got, ok := s.State()
	require.True(t, ok)
	assert.False(t, got.Complete)
	assert.Zero(t, got.Score)

	streakState, err := deps.Streak.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, streakState.CurrentStreak)

	progress.broken = false
	f.clock.Advance(30 * time.Second)
	out, err := s.Submit(ctx, puzzle.SolutionOf(st.Puzzle))
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Equal(t, 1, out.Streak.CurrentStreak)

	pending, err = f.queue.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, out.QueueKey, pending[0].Key)
}

func TestSession_StreakFailureRestoresProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	streaks := &flakyNamespace{Namespace: f.mem.Namespace(store.Streaks)}
	deps := f.deps
	deps.Streak = streak.NewTracker(streaks, streak.DefaultKey)
	s := NewSession(deps)

	st, err := s.Load(ctx)
	require.NoError(t, err)
	_, err = s.UseHint(ctx)
	require.NoError(t, err)

	streaks.broken = true
	_, err = s.Submit(ctx, puzzle.SolutionOf(st.Puzzle))
	require.Error(t, err)
	assert.True(t, fault.IsStorage(err))

	pending, err := f.queue.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	saved, ok, err := LoadProgress(ctx, deps.Progress, st.Puzzle.Date)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, saved.Completed)
	assert.Equal(t, 1, saved.HintsUsed)

	got, _ := s.State()
	assert.False(t, got.Complete)

	streaks.broken = false
	out, err := s.Submit(ctx, puzzle.SolutionOf(st.Puzzle))
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Equal(t, 1, out.HintsUsed)
}
