package waitqueue

import (
	"context"
	"sync"
	"time"
)

// WaitQueue serializes calls and keeps at least gap between the end of one
// call and the start of the next.
type WaitQueue struct {
	gap      time.Duration
	sendLock sync.Mutex
	last     time.Time
	sent     int
}

func New(gap time.Duration) *WaitQueue {
	return &WaitQueue{gap: gap}
}

// Send runs fn once the gap since the previous send has elapsed. The first
// send never waits. A canceled context aborts the wait without running fn.
func (w *WaitQueue) Send(ctx context.Context, fn func() error) error {
	w.sendLock.Lock()
	defer w.sendLock.Unlock()

	if w.sent > 0 {
		if wait := w.gap - time.Since(w.last); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	if err := ctx.Err(); nil != err {
		return err
	}

	defer func() {
		w.last = time.Now()
		w.sent++
	}()
	return fn()
}

// Sent reports how many calls have gone through the queue.
func (w *WaitQueue) Sent() int {
	w.sendLock.Lock()
	defer w.sendLock.Unlock()
	return w.sent
}
