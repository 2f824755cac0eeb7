// Package syncqueue holds signed submissions until the server accepts them.
//
// Completions are written to the pending_sync namespace first and sent
// later by Flush, so a player offline for days loses nothing.
//
// # Flush semantics
//
//   - At most one Flush runs per Queue. A concurrent call returns an empty
//     Result immediately.
//   - Entries are sent one at a time in key order, each with its own timeout.
//   - Accepted entries are removed.
//   - A NETWORK failure re-stores the entry with RetryCount+1.
//   - A terminal failure (the server rejected the entry) parks it at
//     MaxRetries with LastError set. It is never sent again.
//   - Entries at MaxRetries are skipped and reported as Stalled. They stay
//     queued until Clear or ResetStalled.
//   - When nothing failed or stalled, the lastSync time is written to
//     settings.
//   - Storage errors abort the flush and are returned.
package syncqueue
