// Package pg implements the Program Graph engine: a finite-control program
// with typed variables, clocks, guarded/timed transitions, and three kinds
// of action effect (local assignment, send, receive). Handles (Location,
// Action, Var, Clock) are opaque uint16 indices into a Definition; their
// fields are unexported so the compiler — not a runtime check — enforces
// that they are never serialised (mirroring the reference newtypes' private
// tuple fields).
package pg

import "math"

type Location struct{ idx uint16 }
type Action struct{ idx uint16 }
type Var struct{ idx uint16 }
type Clock struct{ idx uint16 }

// Epsilon is the distinguished autonomous (τ) action: every PG has exactly
// one, it carries no effects, and it is never a communication.
var Epsilon = Action{idx: math.MaxUint16}

func (a Action) IsEpsilon() bool { return a == Epsilon }

func (l Location) index() int { return int(l.idx) }
func (a Action) index() int   { return int(a.idx) }
func (v Var) index() int      { return int(v.idx) }
func (c Clock) index() int    { return int(c.idx) }

// Time is the global non-negative clock-valuation domain; it saturates at
// math.MaxUint64 rather than wrapping, matching numset.DenseTime's T
// component (PG clocks and the monitor's real-time axis share one domain).
type Time = uint64

const TimeMax = math.MaxUint64

// TimeConstraint restricts Clock to the optional half-open range
// [Lower, Upper), used both for location invariants and for per-transition
// time guards. A nil bound means unconstrained on that side.
type TimeConstraint struct {
	Clock Clock
	Lower *Time
	Upper *Time
}

func (tc TimeConstraint) satisfied(val Time) bool {
	if tc.Lower != nil && val < *tc.Lower {
		return false
	}
	if tc.Upper != nil && val >= *tc.Upper {
		return false
	}
	return true
}
