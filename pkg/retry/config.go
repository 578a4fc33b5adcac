package retry

import (
	"errors"
	"time"

	"github.com/niels/tinyhttpd/pkg/config"
)

// FromConfig creates retry options from the application configuration.
// Network errors are always retryable; the configured strings add to them.
func FromConfig(cfg *config.Config) Options {
	if !cfg.Retry.Enabled {
		return Options{
			MaxRetries: 0,
		}
	}

	retryableErrors := make([]error, 0, len(cfg.Retry.RetryableErrors))
	for _, errStr := range cfg.Retry.RetryableErrors {
		retryableErrors = append(retryableErrors, errors.New(errStr))
	}

	return Options{
		MaxRetries:      cfg.Retry.MaxRetries,
		InitialDelay:    time.Duration(cfg.Retry.InitialDelay) * time.Millisecond,
		MaxDelay:        time.Duration(cfg.Retry.MaxDelay) * time.Millisecond,
		BackoffFactor:   cfg.Retry.BackoffFactor,
		JitterFactor:    cfg.Retry.JitterFactor,
		RetryableErrors: retryableErrors,
		IsRetryableFunc: func(err error) bool {
			return IsNetworkErrorRetryable(err) || IsRetryable(err, retryableErrors)
		},
	}
}
