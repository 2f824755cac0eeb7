// Package store provides the namespaced key/value storage used by the
// puzzle client, the sync queue and the submission server.
//
// A Backend hands out Namespaces. Each namespace is an independent
// string-keyed map of JSON values:
//
//   - puzzles: generated puzzles cached by date
//   - progress: per-date play progress
//   - settings: small client settings such as the last sync time
//   - pending_sync: the offline submission queue
//   - scores: accepted submissions on the server
//   - streaks: streak state per user
//
// # Backends
//
//   - SQLite (Open): durable local storage, one kv table in WAL mode
//   - Redis (NewRedis): one hash per namespace, for the server
//   - Memory (NewMemory): tests and throwaway runs
//
// # Ordering
//
// Keys always returns keys in byte order (COLLATE BINARY in SQLite, sorted
// in the other backends) so callers iterate deterministically.
//
// # Errors
//
// Every backend failure is returned as a fault.Storage error so callers can
// tell storage trouble apart from validation or network problems.
package store
