package syncqueue

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/roach88/looper/internal/clock"
	"github.com/roach88/looper/internal/fault"
	"github.com/roach88/looper/internal/store"
	"github.com/roach88/looper/internal/submission"
)

const (
	// MaxRetries is the retry cap for one entry.
	MaxRetries = 3

	// LastSyncKey is the settings key holding the last successful flush time.
	LastSyncKey = "lastSync"

	// DefaultTimeout bounds each submit.
	DefaultTimeout = 10 * time.Second

	meterName = "github.com/roach88/looper/syncqueue"
)

// Submitter sends one submission to the server.
//
// Implementations return a fault.Network error for failures worth
// retrying and a terminal fault (fault.IsTerminal) when the server
// refused the submission.
type Submitter interface {
	Submit(ctx context.Context, authToken string, sub submission.Submission) error
}

// Entry is one queued submission.
type Entry struct {
	Key        string                `json:"key"`
	Submission submission.Submission `json:"scoreData"`
	CreatedAt  time.Time             `json:"createdAt"`
	RetryCount int                   `json:"retryCount"`
	LastError  string                `json:"lastError,omitempty"`
}

// Stalled reports whether the entry reached the retry cap.
func (e Entry) Stalled() bool {
	return e.RetryCount >= MaxRetries
}

// Rejection describes an entry the server refused.
type Rejection struct {
	Key    string `json:"key"`
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// Result summarizes one Flush.
type Result struct {
	Success  int         `json:"success"`
	Failed   int         `json:"failed"`
	Stalled  int         `json:"stalled"`
	Rejected []Rejection `json:"rejected,omitempty"`
}

// Queue is the offline submission queue.
//
// Thread-safety: All methods are safe for concurrent use. Flush is
// single-flight per Queue.
type Queue struct {
	pending   store.Namespace
	settings  store.Namespace
	submitter Submitter
	clock     clock.Clock
	timeout   time.Duration
	debounce  time.Duration
	logger    *slog.Logger
	entries   metric.Int64Counter

	inFlight atomic.Bool

	// keyMu guards lastKeyMillis so two enqueues in the same millisecond
	// still get distinct keys.
	keyMu         sync.Mutex
	lastKeyMillis int64
}

// Option configures a Queue.
type Option func(*Queue)

// WithClock sets the clock used for keys and timestamps.
func WithClock(c clock.Clock) Option {
	return func(q *Queue) { q.clock = c }
}

// WithTimeout sets the per-submit timeout.
func WithTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithDebounce sets the minimum spacing between flushes started by Watch.
// Zero or less disables debouncing.
func WithDebounce(d time.Duration) Option {
	return func(q *Queue) { q.debounce = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) { q.logger = l }
}

// WithMeter sets the meter used for entry counters.
// Defaults to the global otel meter, which is a no-op unless an SDK is installed.
func WithMeter(m metric.Meter) Option {
	return func(q *Queue) { q.initMetrics(m) }
}

// New creates a queue over the pending and settings namespaces.
func New(pending, settings store.Namespace, submitter Submitter, opts ...Option) *Queue {
	q := &Queue{
		pending:   pending,
		settings:  settings,
		submitter: submitter,
		clock:     clock.System{},
		timeout:   DefaultTimeout,
		debounce:  2 * time.Second,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.entries == nil {
		q.initMetrics(otel.Meter(meterName))
	}
	return q
}

func (q *Queue) initMetrics(m metric.Meter) {
	c, err := m.Int64Counter("looper.sync.entries",
		metric.WithDescription("Queued submissions processed by flush, by outcome"),
	)
	if err != nil {
		q.logger.Warn("sync metrics disabled", "error", err)
		return
	}
	q.entries = c
}

func (q *Queue) record(ctx context.Context, outcome string) {
	if q.entries != nil {
		q.entries.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

// Enqueue stores sub and returns its key, "<date>_<unix-millis>".
func (q *Queue) Enqueue(ctx context.Context, sub submission.Submission) (string, error) {
	now := q.clock.Now()
	key := fmt.Sprintf("%s_%s", sub.Date, strconv.FormatInt(q.nextMillis(now), 10))

	entry := Entry{
		Key:        key,
		Submission: sub,
		CreatedAt:  now.UTC(),
	}
	if err := store.SetJSON(ctx, q.pending, key, entry); err != nil {
		return "", fmt.Errorf("enqueue %s: %w", sub.Date, err)
	}

	q.logger.Info("score queued for sync", "key", key, "puzzle_id", sub.PuzzleID)
	return key, nil
}

func (q *Queue) nextMillis(now time.Time) int64 {
	q.keyMu.Lock()
	defer q.keyMu.Unlock()
	ms := now.UnixMilli()
	if ms <= q.lastKeyMillis {
		ms = q.lastKeyMillis + 1
	}
	q.lastKeyMillis = ms
	return ms
}

// Pending returns every queued entry in key order.
func (q *Queue) Pending(ctx context.Context) ([]Entry, error) {
	keys, err := q.pending.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		e, ok, err := store.GetJSON[Entry](ctx, q.pending, key)
		if err != nil {
			return nil, fmt.Errorf("list pending: %w", err)
		}
		if !ok {
			// Removed between Keys and Get.
			continue
		}
		e.Key = key
		entries = append(entries, e)
	}
	return entries, nil
}

// Flush submits every pending entry. See the package documentation for
// the exact rules.
func (q *Queue) Flush(ctx context.Context, authToken string) (Result, error) {
	if !q.inFlight.CompareAndSwap(false, true) {
		q.logger.Debug("sync already in progress")
		return Result{}, nil
	}
	defer q.inFlight.Store(false)

	res, err := q.flush(ctx, authToken)
	if err != nil {
		q.logger.Error("sync aborted", "error", err, "success", res.Success, "failed", res.Failed)
	}
	return res, err
}

func (q *Queue) flush(ctx context.Context, authToken string) (Result, error) {
	entries, err := q.Pending(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(entries) == 0 {
		q.logger.Debug("no pending syncs")
		return Result{}, nil
	}

	var res Result
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("flush: %w", err)
		}

		if e.Stalled() {
			res.Stalled++
			q.record(ctx, "stalled")
			q.logger.Warn("skipping entry at retry cap", "key", e.Key, "last_error", e.LastError)
			continue
		}

		err := q.submit(ctx, authToken, e.Submission)
		switch {
		case err == nil:
			if err := q.pending.Remove(ctx, e.Key); err != nil {
				return res, fmt.Errorf("flush: %w", err)
			}
			res.Success++
			q.record(ctx, "success")

		case fault.IsTerminal(err):
			e.RetryCount = MaxRetries
			e.LastError = fault.MessageOf(err)
			if err := store.SetJSON(ctx, q.pending, e.Key, e); err != nil {
				return res, fmt.Errorf("flush: %w", err)
			}
			res.Failed++
			res.Rejected = append(res.Rejected, Rejection{Key: e.Key, Date: e.Submission.Date, Reason: e.LastError})
			q.record(ctx, "rejected")
			q.logger.Warn("submission rejected by server", "key", e.Key, "reason", e.LastError)

		default:
			e.RetryCount++
			e.LastError = err.Error()
			if err := store.SetJSON(ctx, q.pending, e.Key, e); err != nil {
				return res, fmt.Errorf("flush: %w", err)
			}
			res.Failed++
			q.record(ctx, "retry")
			q.logger.Info("submission failed, will retry", "key", e.Key, "retry_count", e.RetryCount, "error", err)
		}
	}

	if res.Failed == 0 && res.Stalled == 0 {
		if err := store.SetJSON(ctx, q.settings, LastSyncKey, q.clock.Now().UTC().Format(time.RFC3339)); err != nil {
			return res, fmt.Errorf("flush: %w", err)
		}
	}

	q.logger.Info("sync complete",
		"success", res.Success,
		"failed", res.Failed,
		"stalled", res.Stalled,
	)
	return res, nil
}

func (q *Queue) submit(ctx context.Context, authToken string, sub submission.Submission) error {
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()
	return q.submitter.Submit(ctx, authToken, sub)
}

// Withdraw drops the entry stored under key. A missing key is not an error.
func (q *Queue) Withdraw(ctx context.Context, key string) error {
	if err := q.pending.Remove(ctx, key); err != nil {
		return fmt.Errorf("withdraw %s: %w", key, err)
	}
	q.logger.Info("queued score withdrawn", "key", key)
	return nil
}

// Clear drops every pending entry.
func (q *Queue) Clear(ctx context.Context) error {
	if err := q.pending.Clear(ctx); err != nil {
		return fmt.Errorf("clear pending: %w", err)
	}
	q.logger.Info("pending sync queue cleared")
	return nil
}

// ResetStalled re-arms entries at the retry cap so the next Flush sends
// them again. It returns the number of entries reset.
func (q *Queue) ResetStalled(ctx context.Context) (int, error) {
	entries, err := q.Pending(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if !e.Stalled() {
			continue
		}
		e.RetryCount = 0
		e.LastError = ""
		if err := store.SetJSON(ctx, q.pending, e.Key, e); err != nil {
			return n, fmt.Errorf("reset stalled: %w", err)
		}
		n++
	}
	return n, nil
}

// LastSynced returns the time of the last flush that left nothing unsent.
func (q *Queue) LastSynced(ctx context.Context) (time.Time, bool, error) {
	s, ok, err := store.GetJSON[string](ctx, q.settings, LastSyncKey)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fault.Storage("read lastSync", err)
	}
	return t, true, nil
}
