package waitqueue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/spotdata/waitqueue"
)

func TestSend(t *testing.T) {
	t.Parallel()

	t.Run("first_send_does_not_wait", func(t *testing.T) {
		t.Parallel()

		wq := waitqueue.New(time.Minute)
		start := time.Now()
		require.NoError(t, wq.Send(t.Context(), func() error { return nil }))
		assert.Less(t, time.Since(start), time.Second)
		assert.Equal(t, 1, wq.Sent())
	})

	t.Run("keeps_gap_between_sends", func(t *testing.T) {
		t.Parallel()

		gap := 100 * time.Millisecond
		wq := waitqueue.New(gap)
		var stamps []time.Time
		for range 3 {
			require.NoError(t, wq.Send(t.Context(), func() error {
				stamps = append(stamps, time.Now())
				return nil
			}))
		}
		require.Len(t, stamps, 3)
		for i := 1; i < len(stamps); i++ {
			assert.GreaterOrEqual(t, stamps[i].Sub(stamps[i-1]), gap)
		}
	})

	t.Run("returns_fn_error", func(t *testing.T) {
		t.Parallel()

		errBoom := errors.New("boom")
		wq := waitqueue.New(0)
		require.ErrorIs(t, wq.Send(t.Context(), func() error { return errBoom }), errBoom)
		assert.Equal(t, 1, wq.Sent())
	})

	t.Run("canceled_while_waiting", func(t *testing.T) {
		t.Parallel()

		wq := waitqueue.New(time.Minute)
		require.NoError(t, wq.Send(t.Context(), func() error { return nil }))

		ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
		defer cancel()
		called := false
		err := wq.Send(ctx, func() error {
			called = true
			return nil
		})
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, called)
	})
}
