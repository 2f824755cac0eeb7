package store

import "context"

// Namespace names used across the module.
const (
	Puzzles     = "puzzles"
	Progress    = "progress"
	Settings    = "settings"
	PendingSync = "pending_sync"
	Scores      = "scores"
	Streaks     = "streaks"
)

// Namespace is a string-keyed map of raw JSON values.
//
// Implementations are safe for concurrent use. Get reports a missing key
// with ok == false and a nil error.
type Namespace interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

// Backend opens namespaces over one underlying store.
type Backend interface {
	Namespace(name string) Namespace
	Close() error
}
