package retry

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/niels/tinyhttpd/pkg/logging"
)

// IsRetryableFunc is a function that determines if an error is retryable
type IsRetryableFunc func(error) bool

// Options configures the retry behavior
type Options struct {
	// MaxRetries is the maximum number of retry attempts (not including the initial attempt)
	MaxRetries int

	// InitialDelay is the delay before the first retry
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries
	MaxDelay time.Duration

	// BackoffFactor is the factor by which the delay increases after each retry
	BackoffFactor float64

	// JitterFactor adds randomness to the delay (0.0 = no jitter, 1.0 = 100% jitter)
	JitterFactor float64

	// RetryableErrors are matched against the error text
	RetryableErrors []error

	// IsRetryableFunc takes precedence over RetryableErrors when set
	IsRetryableFunc IsRetryableFunc

	// Logger is a function that logs retry attempts
	Logger func(format string, args ...interface{})
}

// DefaultOptions returns default retry options
func DefaultOptions() Options {
	return Options{
		MaxRetries:      3,
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        2 * time.Second,
		BackoffFactor:   2.0,
		JitterFactor:    0.2,
		IsRetryableFunc: IsNetworkErrorRetryable,
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, runs out of
// attempts or ctx is done. Waiting between attempts is cut short by ctx.
func Do[T any](ctx context.Context, fn func(context.Context) (T, error), opts Options) (T, error) {
	var (
		zero  T
		delay time.Duration
	)

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	if opts.Logger == nil {
		opts.Logger = func(format string, args ...interface{}) {
			logger := logging.GetLogger()
			logger.Debug().Msgf(format, args...)
		}
	}

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				opts.Logger("Retry successful on attempt %d", attempt+1)
			}
			return result, nil
		}

		if !isRetryable(err, opts) {
			opts.Logger("Non-retryable error: %v", err)
			return zero, err
		}

		if attempt == opts.MaxRetries {
			opts.Logger("Max retries exceeded (%d attempts): %v", attempt+1, err)
			return zero, err
		}

		if attempt == 0 {
			delay = opts.InitialDelay
		} else {
			delay = time.Duration(float64(delay) * opts.BackoffFactor)
			if delay > opts.MaxDelay {
				delay = opts.MaxDelay
			}
		}

		wait := delay
		if opts.JitterFactor > 0 {
			jitter := float64(delay) * opts.JitterFactor
			wait = time.Duration(float64(delay) + (rnd.Float64()*jitter*2 - jitter))
		}

		opts.Logger("Retry attempt %d after %v: %v", attempt+1, wait, err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, errors.New("unexpected error in retry logic")
}

// IsRetryable checks if an error is retryable based on the provided retryable errors
func IsRetryable(err error, retryableErrors []error) bool {
	if err == nil {
		return false
	}

	errMsg := err.Error()
	for _, retryableErr := range retryableErrors {
		if strings.Contains(errMsg, retryableErr.Error()) {
			return true
		}
	}

	return false
}

func isRetryable(err error, opts Options) bool {
	if opts.IsRetryableFunc != nil {
		return opts.IsRetryableFunc(err)
	}
	return IsRetryable(err, opts.RetryableErrors)
}
