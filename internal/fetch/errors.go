package fetch

import (
	"fmt"
	"time"
)

// Kind classifies a failed provider attempt. The dispatcher decides
// retry and status policy from the kind, not the error text.
type Kind string

const (
	// KindTimeout: the attempt exceeded its deadline. Retryable.
	KindTimeout Kind = "timeout"
	// KindRateLimited: the provider answered 429. Never retried
	// locally; the provider is parked until its window resets.
	KindRateLimited Kind = "rate_limited"
	// KindHTTP: a non-2xx response. Retryable up to the budget.
	KindHTTP Kind = "http_error"
	// KindNetwork: connection-level failure. Retryable.
	KindNetwork Kind = "network"
	// KindTransform: the normalizer rejected the payload. Counts as a
	// provider failure; retrying the same payload would not help.
	KindTransform Kind = "transform"
)

// AttemptError is one failed provider attempt with enough context for
// the dispatch policy and the logs.
type AttemptError struct {
	Provider   string
	Kind       Kind
	Status     int       // HTTP status when applicable
	RetryAfter time.Time // set for KindRateLimited
	Err        error
}

func (e *AttemptError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// retryable reports whether the dispatcher should burn another attempt
// on the same provider.
func (e *AttemptError) retryable() bool {
	switch e.Kind {
	case KindTimeout, KindHTTP, KindNetwork:
		return true
	default:
		return false
	}
}
