package syncqueue

import (
	"context"

	"golang.org/x/time/rate"
)

// Watch flushes the queue each time a value arrives on online, such as
// after each health check the server answers. Signals closer together
// than the debounce interval are dropped.
//
// Watch returns when ctx is done or online is closed. Flush errors are
// logged, not returned, so one bad flush does not stop the watcher.
func (q *Queue) Watch(ctx context.Context, online <-chan struct{}, authToken string) error {
	limit := rate.Inf
	if q.debounce > 0 {
		limit = rate.Every(q.debounce)
	}
	limiter := rate.NewLimiter(limit, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-online:
			if !ok {
				return nil
			}
			if !limiter.Allow() {
				q.logger.Debug("connectivity signal debounced")
				continue
			}
			q.logger.Info("connection restored, syncing")
			if _, err := q.Flush(ctx, authToken); err != nil {
				q.logger.Error("sync after reconnect failed", "error", err)
			}
		}
	}
}
