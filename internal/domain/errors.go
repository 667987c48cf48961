package domain

import (
	"errors"
	"fmt"
)

// TransientError marks a send failure worth retrying (network timeout,
// transient network error, rate limit). Anything not wrapped in it is fatal
// for the current attempt sequence.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("transient: %v", e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retryable. Returns nil for a nil err.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is classified as retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// ErrDeliveryExhausted is returned once the delivery retry budget is spent.
// The caller must surface it; retrying further is the one thing it means not
// to do.
var ErrDeliveryExhausted = errors.New("delivery retries exhausted")
