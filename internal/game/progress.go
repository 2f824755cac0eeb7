package game

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/roach88/looper/internal/puzzle"
	"github.com/roach88/looper/internal/store"
)

// RetentionDays is how long progress and cached puzzles are kept.
const RetentionDays = 30

// Progress is the saved play state for one date.
type Progress struct {
	Date        string          `json:"date"`
	PuzzleID    string          `json:"puzzleId"`
	PuzzleType  puzzle.Category `json:"puzzleType"`
	Answer      json.RawMessage `json:"currentState,omitempty"`
	Score       int             `json:"score"`
	TimeTaken   int             `json:"timeTaken"`
	HintsUsed   int             `json:"hintsUsed"`
	Completed   bool            `json:"completed"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// LoadProgress returns the saved progress for date, if any.
func LoadProgress(ctx context.Context, ns store.Namespace, date string) (Progress, bool, error) {
	p, ok, err := store.GetJSON[Progress](ctx, ns, date)
	if err != nil {
		return Progress{}, false, fmt.Errorf("load progress %s: %w", date, err)
	}
	return p, ok, nil
}

// AllProgress returns every saved progress record in date order.
func AllProgress(ctx context.Context, ns store.Namespace) ([]Progress, error) {
	keys, err := ns.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	out := make([]Progress, 0, len(keys))
	for _, key := range keys {
		p, ok, err := LoadProgress(ctx, ns, key)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Cleanup removes progress and cached puzzles dated more than
// RetentionDays before today. Both namespaces are walked, so a puzzle
// cached by a load that never saved progress is removed too. Keys that
// are not dates are left alone. It returns the number of dates removed.
func Cleanup(ctx context.Context, progress, puzzles store.Namespace, today string) (int, error) {
	now, err := puzzle.ParseDate(today)
	if err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}
	cutoff := now.AddDate(0, 0, -RetentionDays).Format(puzzle.DateLayout)

	expired := make(map[string]struct{})
	for _, ns := range []store.Namespace{progress, puzzles} {
		keys, err := ns.Keys(ctx)
		if err != nil {
			return 0, fmt.Errorf("cleanup: %w", err)
		}
		for _, key := range keys {
			if _, err := puzzle.ParseDate(key); err != nil || key >= cutoff {
				continue
			}
			expired[key] = struct{}{}
		}
	}

	removed := 0
	for _, date := range slices.Sorted(maps.Keys(expired)) {
		if err := progress.Remove(ctx, date); err != nil {
			return removed, fmt.Errorf("cleanup: %w", err)
		}
		if err := puzzles.Remove(ctx, date); err != nil {
			return removed, fmt.Errorf("cleanup: %w", err)
		}
		removed++
	}
	return removed, nil
}
