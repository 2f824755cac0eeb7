package streak

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/looper/internal/store"
)

// DefaultKey is the key used for a single local player.
const DefaultKey = "local"

// Tracker persists one player's State.
//
// Complete holds a mutex across read, apply and write so two completions
// for the same player can never both read the old state.
//
// Thread-safety: All methods are safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	ns     store.Namespace
	key    string
	logger *slog.Logger
}

// NewTracker creates a tracker for key in ns.
func NewTracker(ns store.Namespace, key string) *Tracker {
	return &Tracker{ns: ns, key: key, logger: slog.Default()}
}

// Load returns the stored state, or an empty state if none is stored.
func (t *Tracker) Load(ctx context.Context) (State, error) {
	s, ok, err := store.GetJSON[State](ctx, t.ns, t.key)
	if err != nil {
		return State{}, fmt.Errorf("load streak %q: %w", t.key, err)
	}
	if !ok {
		return State{PlayedDates: []string{}}, nil
	}
	return s, nil
}

// Save writes s.
func (t *Tracker) Save(ctx context.Context, s State) error {
	if err := store.SetJSON(ctx, t.ns, t.key, s); err != nil {
		return fmt.Errorf("save streak %q: %w", t.key, err)
	}
	return nil
}

// Complete applies a completion on date and persists the result.
func (t *Tracker) Complete(ctx context.Context, date string) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, err := t.Load(ctx)
	if err != nil {
		return State{}, err
	}
	next, err := Apply(prev, date)
	if err != nil {
		return State{}, err
	}
	if err := t.Save(ctx, next); err != nil {
		return State{}, err
	}

	t.logger.Debug("streak updated",
		"key", t.key,
		"date", date,
		"current", next.CurrentStreak,
		"longest", next.LongestStreak,
	)
	return next, nil
}

// Registry hands out one Tracker per player over a shared namespace.
type Registry struct {
	mu       sync.Mutex
	ns       store.Namespace
	trackers map[string]*Tracker
}

// NewRegistry creates a registry over ns.
func NewRegistry(ns store.Namespace) *Registry {
	return &Registry{ns: ns, trackers: make(map[string]*Tracker)}
}

// For returns the tracker for user, creating it on first use.
func (r *Registry) For(user string) *Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.trackers[user]; ok {
		return t
	}
	t := NewTracker(r.ns, user)
	r.trackers[user] = t
	return t
}
