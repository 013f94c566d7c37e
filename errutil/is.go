package errutil

import (
	"context"
	"errors"
	"fmt"
)

func IsAny(err error, target error, targets ...error) (error, bool) {
	if errors.Is(err, target) {
		return target, true
	}
	for _, t := range targets {
		if errors.Is(err, t) {
			return t, true
		}
	}
	return nil, false
}

func IsContext(ctx context.Context) bool {
	err := ctx.Err()
	return nil != err && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

// IsRetryable reports whether err is a transient remote failure that a
// backoff loop may retry.
func IsRetryable(err error) bool {
	if remoteErr := new(RemoteRequestError); errors.As(err, &remoteErr) {
		return true
	}
	return IsFlaw(err) && !errors.Is(err, context.Canceled)
}

// UnknownError describes an error that matched none of the kinds a caller
// handles, for use as a panic value.
func UnknownError(err error) string {
	return fmt.Sprintf("unhandled error of type %T: %v", err, err)
}
