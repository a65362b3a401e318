package feerate

import "errors"

var (
	// ErrUnknownPriority is returned for a priority level that is not
	// defined.
	ErrUnknownPriority = errors.New("unknown fee priority")

	// ErrCustomRateOutOfRange is returned when a custom rate lies outside
	// the range it was offered with.
	ErrCustomRateOutOfRange = errors.New("custom fee rate out of range")

	// ErrInvalidRange is returned when a custom range has min above max.
	ErrInvalidRange = errors.New("invalid custom fee rate range")

	// ErrUnsupportedPriority is returned by a fetcher that has no rate for
	// the requested priority.
	ErrUnsupportedPriority = errors.New("fee priority not supported")

	// ErrNegativeRate is returned when converting a negative presentation
	// value.
	ErrNegativeRate = errors.New("fee rate must not be negative")

	// ErrTooPrecise is returned when a presentation value has more
	// fractional digits than the base unit allows.
	ErrTooPrecise = errors.New("fee rate exceeds base unit precision")
)
