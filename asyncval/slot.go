package asyncval

// Generation identifies one fetch issued for a slot. Generations increase
// monotonically, so a result carrying anything but the slot's current
// generation belongs to a superseded fetch.
type Generation uint64

// Slot holds the state of one asynchronous input together with the
// generation of its live fetch.
//
// A Slot is not safe for concurrent use. It is meant to be owned by a single
// goroutine that also receives the fetch results.
type Slot[T any] struct {
	state State[T]
	gen   Generation
}

// Begin starts a new fetch: the slot moves to Loading and every earlier
// generation becomes stale.
func (s *Slot[T]) Begin() Generation {
	s.gen++
	s.state = Loading[T]()

	return s.gen
}

// Settle stores the outcome of the fetch identified by gen. It returns false
// and leaves the slot untouched if gen is stale or the slot is not loading.
func (s *Slot[T]) Settle(gen Generation, v T, err error) bool {
	if gen != s.gen || !s.state.IsLoading() {
		return false
	}

	if err != nil {
		s.state = Failed[T](err)
	} else {
		s.state = Ready(v)
	}

	return true
}

// Reset drops the slot back to Idle and invalidates any in-flight fetch.
func (s *Slot[T]) Reset() {
	s.gen++
	s.state = Idle[T]()
}

// State returns the current slot state.
func (s *Slot[T]) State() State[T] {
	return s.state
}

// Generation returns the generation of the most recent fetch.
func (s *Slot[T]) Generation() Generation {
	return s.gen
}
