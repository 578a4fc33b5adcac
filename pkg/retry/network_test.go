package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestIsNetworkErrorRetryable(t *testing.T) {
	testData := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
		{"reset", fmt.Errorf("read response: %w", syscall.ECONNRESET), true},
		{"timeout", &net.OpError{Op: "dial", Net: "tcp", Err: timeoutError{}}, true},
		{"cancelled", fmt.Errorf("dial: %w", context.Canceled), false},
		{"deadline", context.DeadlineExceeded, false},
		{"other", errors.New("malformed status line"), false},
	}

	for _, record := range testData {
		t.Run(record.name, func(t *testing.T) {
			assert.Equal(t, record.expected, IsNetworkErrorRetryable(record.err))
		})
	}
}

func TestRetryDialRefused(t *testing.T) {
	// grab a free port and close it so nothing is listening
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	attempts := 0
	opts := DefaultOptions()
	opts.InitialDelay = time.Millisecond
	opts.MaxDelay = 2 * time.Millisecond
	opts.MaxRetries = 2

	_, err = Do(context.Background(), func(ctx context.Context) (net.Conn, error) {
		attempts++
		var d net.Dialer
		return d.DialContext(ctx, "tcp", addr)
	}, opts)

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}
