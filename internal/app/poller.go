package app

import (
	"context"
	"time"
)

const defaultRetryInterval = 5 * time.Second

// Retrier is the part of the session the poller drives.
type Retrier interface {
	Retry()
}

// StartPoller launches a background goroutine that retries pending remote
// pushes at a fixed cadence. A push that failed while the user is idle is
// retried here without any further edit. It returns immediately.
func StartPoller(ctx context.Context, r Retrier, interval time.Duration) {
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Retry()
			}
		}
	}()
}
