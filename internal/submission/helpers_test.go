package submission

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/looper/internal/puzzle"
	"github.com/roach88/looper/internal/signature"
	"github.com/roach88/looper/internal/testutil"
)

const testSecret = "test-secret"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSigner(t *testing.T) *signature.Signer {
	t.Helper()
	s, err := signature.NewSigner(testSecret)
	require.NoError(t, err)
	return s
}

// newTestGate returns a gate whose clock reads 2026-02-14 12:00 local.
func newTestGate(t *testing.T) (*Gate, *testutil.FakeClock) {
	t.Helper()
	c := testutil.At(2026, time.February, 14, 12, 0)
	g, err := NewGate(newTestSigner(t), c)
	require.NoError(t, err)
	return g, c
}

// validSubmission is a signed medium submission for 2026-02-14.
func validSubmission(t *testing.T) Submission {
	t.Helper()
	return Submission{
		Date:       "2026-02-14",
		PuzzleID:   "matrix-2026-02-14",
		PuzzleType: puzzle.CategoryMatrix,
		Score:      250,
		TimeTaken:  45,
		HintsUsed:  1,
		Difficulty: puzzle.Medium,
	}.Signed(newTestSigner(t))
}
