package must

import (
	"errors"
	"fmt"

	"github.com/xeptore/flaw/v8"
)

func BeFlaw(err error) *flaw.Flaw {
	if f := new(flaw.Flaw); errors.As(err, &f) {
		return f
	}
	panic(fmt.Sprintf("expected error to be of type *flaw.Flaw, got error of type %T: %v", err, err))
}

// JoinClose merges an error returned from a deferred Close call into the
// function's named error result.
func JoinClose(err, closeErr error) error {
	switch {
	case nil == closeErr:
		return err
	case nil == err:
		return closeErr
	case errors.As(err, new(*flaw.Flaw)):
		return BeFlaw(err).Join(closeErr)
	default:
		return flaw.From(err).Join(closeErr)
	}
}
