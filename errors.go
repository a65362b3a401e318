package sendsync

import (
	"errors"
	"strings"
)

var (
	// ErrFeeRateSourceRequired is returned when no fee rate fetcher is
	// configured.
	ErrFeeRateSourceRequired = errors.New("fee rate source is required")

	// ErrEstimatorRequired is returned when no resource estimator is
	// configured.
	ErrEstimatorRequired = errors.New("resource estimator is required")

	// ErrValidatorRequired is returned when no validator is configured.
	ErrValidatorRequired = errors.New("validator is required")

	// ErrBalanceSourceRequired is returned when no balance source is
	// configured.
	ErrBalanceSourceRequired = errors.New("balance source is required")

	// ErrInvalidFetchTimeout is returned for a non-positive fetch timeout.
	ErrInvalidFetchTimeout = errors.New("fetch timeout must be positive")

	// ErrNotStarted is returned when an operation is issued before Start.
	ErrNotStarted = errors.New("coordinator not started")

	// ErrShuttingDown is returned when an operation is issued after Stop.
	ErrShuttingDown = errors.New("coordinator shutting down")

	// ErrAlreadyInitialized is returned when Initialize is called twice.
	ErrAlreadyInitialized = errors.New("coordinator already initialized")

	// ErrNothingToRetry is returned by Retry when no slot is in error.
	ErrNothingToRetry = errors.New("no failed fetch to retry")

	// ErrNoFeeAvailable is returned by PrepareSubmission when the fee rate
	// or the resource estimate is not resolved.
	ErrNoFeeAvailable = errors.New("no fee available")

	// ErrNetwork wraps fee rate fetch failures.
	ErrNetwork = errors.New("fee rate fetch failed")

	// ErrEstimation wraps resource estimation failures.
	ErrEstimation = errors.New("resource estimation failed")
)

// ValidationError is returned by PrepareSubmission when the draft does not
// pass validation. Reasons are the individual failures.
type ValidationError struct {
	Reasons []error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Reasons))
	for _, r := range e.Reasons {
		msgs = append(msgs, r.Error())
	}

	return "invalid transaction draft: " + strings.Join(msgs, "; ")
}

// Unwrap exposes every reason to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	return e.Reasons
}
