package httputil

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// NewBackoff returns an exponential policy bounded by a total wall-clock
// budget instead of a retry count.
func NewBackoff(budget time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.Multiplier = 2
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = budget
	return b
}
