package asyncval

import "fmt"

// Status enumerates the lifecycle stages of an asynchronously fetched value.
type Status uint8

const (
	// StatusIdle means no fetch has been issued yet.
	StatusIdle Status = iota

	// StatusLoading means a fetch is in flight.
	StatusLoading

	// StatusValue means the last fetch succeeded.
	StatusValue

	// StatusError means the last fetch failed.
	StatusError
)

// String returns a human readable status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusValue:
		return "value"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// State is a tagged variant over {Idle, Loading, Value(T), Error(err)}.
// The zero value is Idle.
type State[T any] struct {
	status Status
	value  T
	err    error
}

// Idle returns a state that has never been fetched.
func Idle[T any]() State[T] {
	return State[T]{status: StatusIdle}
}

// Loading returns a state with a fetch in flight.
func Loading[T any]() State[T] {
	return State[T]{status: StatusLoading}
}

// Ready returns a state holding v.
func Ready[T any](v T) State[T] {
	return State[T]{status: StatusValue, value: v}
}

// Failed returns a state holding err. A nil err is not a failure, so
// Failed(nil) yields Idle.
func Failed[T any](err error) State[T] {
	if err == nil {
		return Idle[T]()
	}

	return State[T]{status: StatusError, err: err}
}

// Status returns the variant tag.
func (s State[T]) Status() Status {
	return s.status
}

// IsIdle reports whether no fetch was issued yet.
func (s State[T]) IsIdle() bool {
	return s.status == StatusIdle
}

// IsLoading reports whether a fetch is in flight.
func (s State[T]) IsLoading() bool {
	return s.status == StatusLoading
}

// IsError reports whether the last fetch failed.
func (s State[T]) IsError() bool {
	return s.status == StatusError
}

// Value returns the held value and true if the state is a Value.
func (s State[T]) Value() (T, bool) {
	if s.status != StatusValue {
		var zero T
		return zero, false
	}

	return s.value, true
}

// Err returns the held error, or nil if the state is not an Error.
func (s State[T]) Err() error {
	if s.status != StatusError {
		return nil
	}

	return s.err
}

// String implements fmt.Stringer.
func (s State[T]) String() string {
	switch s.status {
	case StatusValue:
		return fmt.Sprintf("value(%v)", s.value)
	case StatusError:
		return fmt.Sprintf("error(%v)", s.err)
	default:
		return s.status.String()
	}
}
