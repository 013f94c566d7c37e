package ctxutil

import (
	"context"
	"time"
)

// WithDelayedTimeout returns a context that stays alive for delay after
// parent is done, giving in-flight writes a chance to finish on shutdown.
func WithDelayedTimeout(parent context.Context, delay time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-parent.Done():
			time.AfterFunc(delay, cancel)
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
