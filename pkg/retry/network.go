package retry

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// IsNetworkErrorRetryable reports whether err is a transient dial or
// connection failure: refused, reset or timed out. Cancellation and the
// caller's own deadline are never retried.
func IsNetworkErrorRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
