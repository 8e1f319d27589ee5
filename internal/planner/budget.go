package planner

import "sync/atomic"

// BudgetTracker counts search calls against a fixed ceiling for one
// planning request. It is shared by all phases of that request and
// discarded with it.
//
// Phases currently run sequentially, but the reservation contract is safe
// under concurrent callers so the invariant used <= max survives a future
// parallel-phase design.
type BudgetTracker struct {
	used atomic.Int64
	max  int64
}

// NewBudgetTracker creates a tracker with the given ceiling. A ceiling of
// zero disables search entirely.
func NewBudgetTracker(max int) *BudgetTracker {
	if max < 0 {
		max = 0
	}
	return &BudgetTracker{max: int64(max)}
}

// Reservation is a successful claim against the budget, permitting exactly
// one search call.
type Reservation struct {
	// N is the 1-based ordinal of this reservation within the request.
	N int
}

// TryReserve claims one search slot. It returns ErrBudgetExhausted once the
// ceiling has been reached; the counter is never decremented, so after the
// first exhaustion every later attempt fails too.
func (b *BudgetTracker) TryReserve() (Reservation, error) {
	for {
		cur := b.used.Load()
		if cur >= b.max {
			return Reservation{}, ErrBudgetExhausted
		}
		if b.used.CompareAndSwap(cur, cur+1) {
			return Reservation{N: int(cur + 1)}, nil
		}
	}
}

// Used returns the number of reservations granted so far.
func (b *BudgetTracker) Used() int {
	return int(b.used.Load())
}

// Max returns the ceiling.
func (b *BudgetTracker) Max() int {
	return int(b.max)
}

// Exhausted reports whether the budget is spent.
func (b *BudgetTracker) Exhausted() bool {
	return b.used.Load() >= b.max
}
