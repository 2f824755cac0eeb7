package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/looper/internal/testutil"
)

const testSecret = "test-secret"

// matrixSolution solves the 2026-02-14 puzzle.
const matrixSolution = `[[2,3,4,1],[1,2,3,4],[3,4,1,2],[4,1,2,3]]`

type harness struct {
	opts  *RootOptions
	clock *testutil.FakeClock
	db    string
}

// newHarness points the CLI at a fresh SQLite file with a fixed clock at
// 2026-02-14 09:00 local time.
func newHarness(t *testing.T) *harness {
	t.Helper()
	db := filepath.Join(t.TempDir(), "looper.db")
	t.Setenv("LOOPER_STORE", "sqlite")
	t.Setenv("LOOPER_DB", db)
	t.Setenv("LOOPER_HMAC_SECRET", testSecret)
	t.Setenv("LOOPER_API_URL", "http://127.0.0.1:1/api")
	t.Setenv("LOOPER_SUBMIT_TIMEOUT", "2s")
	t.Setenv("LOOPER_LOG_LEVEL", "")

	clk := testutil.At(2026, time.February, 14, 9, 0)
	return &harness{
		opts: &RootOptions{
			Clock:  clk,
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
		clock: clk,
		db:    db,
	}
}

// run executes the root command with args and returns stdout.
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return h.runWithInput(t, "", args...)
}

func (h *harness) runWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(h.opts)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// runJSON executes with --format json and decodes the response.
func (h *harness) runJSON(t *testing.T, args ...string) (CLIResponse, map[string]any, error) {
	t.Helper()
	out, err := h.run(t, append([]string{"--format", "json"}, args...)...)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	data, _ := resp.Data.(map[string]any)
	return resp, data, err
}
