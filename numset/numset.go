// Package numset implements the dense-time interval algebra the PMTL
// monitor is built on: a union of half-open time intervals represented as
// a step function over DenseTime, encoded as an initial truth value plus a
// sorted list of change points. This is the total, always-defined encoding
// Full/Empty/Complement need — see DESIGN.md for why this differs in
// bookkeeping (though not in the algebra it implements) from the bound-list
// prose in spec.md.
package numset

import (
	"math"
	"sort"
)

// DenseTime is a dense-time instant: a real-valued component T and a
// same-instant event ordinal N, ordered lexicographically. Both saturate
// at math.MaxUint64 rather than wrapping.
type DenseTime struct {
	T uint64
	N uint64
}

const Max = math.MaxUint64

// Less reports whether d sorts strictly before o.
func (d DenseTime) Less(o DenseTime) bool {
	return d.T < o.T || (d.T == o.T && d.N < o.N)
}

func (d DenseTime) Equal(o DenseTime) bool { return d.T == o.T && d.N == o.N }

func (d DenseTime) LessEq(o DenseTime) bool { return d.Less(o) || d.Equal(o) }

// NextTick returns the lexicographically smallest DenseTime strictly
// greater than d, saturating at (Max,Max).
func (d DenseTime) NextTick() DenseTime {
	if d.N < math.MaxUint64 {
		return DenseTime{T: d.T, N: d.N + 1}
	}
	if d.T < math.MaxUint64 {
		return DenseTime{T: d.T + 1, N: 0}
	}
	return d
}

// addSaturating adds offset to t.T, saturating at math.MaxUint64.
func addSaturating(t uint64, offset uint64) (uint64, bool) {
	if offset == 0 {
		return t, true
	}
	if t > math.MaxUint64-offset {
		return math.MaxUint64, false
	}
	return t + offset, true
}

// AddLowerBound shifts d by a lower offset l, per the Historically/
// Previously/Since saturating-arithmetic convention: a zero offset leaves
// both components untouched; a nonzero offset resets N to zero and
// saturates to (Max,Max) on overflow.
func AddLowerBound(d DenseTime, l uint64) DenseTime {
	if l == 0 {
		return d
	}
	sum, ok := addSaturating(d.T, l)
	if !ok {
		return DenseTime{T: Max, N: Max}
	}
	return DenseTime{T: sum, N: 0}
}

// AddUpperBound shifts d by an upper offset u; N is always forced to Max
// (success or saturation), matching the reference saturating-arithmetic
// convention for upper bounds.
func AddUpperBound(d DenseTime, u uint64) DenseTime {
	sum, ok := addSaturating(d.T, u)
	if !ok {
		return DenseTime{T: Max, N: Max}
	}
	return DenseTime{T: sum, N: Max}
}

// Bound is a single change point: the set's truth value becomes Truth at
// At and stays so until the next Bound (or forever, for the last one).
type Bound struct {
	At    DenseTime
	Truth bool
}

// Set is a union of dense-time intervals, represented as a step function:
// `initial` before the first bound, then each Bound's Truth from its At
// onward. The zero value is Empty.
type Set struct {
	initial bool
	bounds  []Bound
}

func Empty() Set { return Set{} }
func Full() Set  { return Set{initial: true} }

// FromRange builds the closed interval [lo,hi]; empty if hi < lo.
func FromRange(lo, hi DenseTime) Set {
	if hi.Less(lo) {
		return Empty()
	}
	next := hi.NextTick()
	if next.Equal(hi) {
		// hi is (Max,Max), the last instant: the interval runs to the end.
		return Set{bounds: []Bound{{At: lo, Truth: true}}}
	}
	return Set{bounds: []Bound{{At: lo, Truth: true}, {At: next, Truth: false}}}
}

// Bounds returns the raw change-point list (read-only; callers must not
// mutate the returned slice).
func (s Set) Bounds() []Bound { return s.bounds }

// IsEmpty reports whether the set is true nowhere.
func (s Set) IsEmpty() bool {
	if s.initial {
		return false
	}
	for _, b := range s.bounds {
		if b.Truth {
			return false
		}
	}
	return true
}

// Contains reports the set's truth value at pt.
func (s Set) Contains(pt DenseTime) bool {
	idx := sort.Search(len(s.bounds), func(i int) bool { return pt.Less(s.bounds[i].At) })
	if idx == 0 {
		return s.initial
	}
	return s.bounds[idx-1].Truth
}

// Complement returns the pointwise negation.
func (s Set) Complement() Set {
	out := Set{initial: !s.initial, bounds: make([]Bound, len(s.bounds))}
	for i, b := range s.bounds {
		out.bounds[i] = Bound{At: b.At, Truth: !b.Truth}
	}
	return out
}

// Union returns the pointwise OR of s and o.
func (s Set) Union(o Set) Set { return combine(s, o, func(a, b bool) bool { return a || b }) }

// Intersection returns the pointwise AND across all of sets. With zero
// arguments it returns Full (the identity for AND).
func Intersection(sets ...Set) Set {
	if len(sets) == 0 {
		return Full()
	}
	acc := sets[0]
	for _, s := range sets[1:] {
		acc = combine(acc, s, func(a, b bool) bool { return a && b })
	}
	return acc
}

// AddInterval unions in the closed range [lo,hi].
func (s Set) AddInterval(lo, hi DenseTime) Set { return s.Union(FromRange(lo, hi)) }

// InsertBound ensures b is an explicit change point without altering the
// function the set represents.
func (s Set) InsertBound(b DenseTime) Set {
	idx := sort.Search(len(s.bounds), func(i int) bool { return !s.bounds[i].At.Less(b) })
	if idx < len(s.bounds) && s.bounds[idx].At.Equal(b) {
		return s
	}
	v := s.Contains(b)
	out := Set{initial: s.initial, bounds: make([]Bound, 0, len(s.bounds)+1)}
	out.bounds = append(out.bounds, s.bounds[:idx]...)
	out.bounds = append(out.bounds, Bound{At: b, Truth: v})
	out.bounds = append(out.bounds, s.bounds[idx:]...)
	return out
}

// Sync refines s with every change point present in o, without altering
// the function s represents.
func (s Set) Sync(o Set) Set {
	out := s
	for _, b := range o.bounds {
		out = out.InsertBound(b.At)
	}
	return out
}

// Simplify removes redundant change points: consecutive bounds carrying
// the same truth value, and a leading bound equal to the initial value.
func (s Set) Simplify() Set {
	out := Set{initial: s.initial}
	prev := s.initial
	for _, b := range s.bounds {
		if b.Truth == prev {
			continue
		}
		out.bounds = append(out.bounds, b)
		prev = b.Truth
	}
	return out
}

func combine(a, b Set, op func(x, y bool) bool) Set {
	pts := mergePoints(a.bounds, b.bounds)
	out := Set{initial: op(a.initial, b.initial)}
	aVal, bVal := a.initial, b.initial
	ai, bi := 0, 0
	for _, p := range pts {
		if ai < len(a.bounds) && a.bounds[ai].At.Equal(p) {
			aVal = a.bounds[ai].Truth
			ai++
		}
		if bi < len(b.bounds) && b.bounds[bi].At.Equal(p) {
			bVal = b.bounds[bi].Truth
			bi++
		}
		out.bounds = append(out.bounds, Bound{At: p, Truth: op(aVal, bVal)})
	}
	return out.Simplify()
}

func mergePoints(a, b []Bound) []DenseTime {
	pts := make([]DenseTime, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].At.Less(b[j].At):
			pts = append(pts, a[i].At)
			i++
		case b[j].At.Less(a[i].At):
			pts = append(pts, b[j].At)
			j++
		default:
			pts = append(pts, a[i].At)
			i++
			j++
		}
	}
	for ; i < len(a); i++ {
		pts = append(pts, a[i].At)
	}
	for ; j < len(b); j++ {
		pts = append(pts, b[j].At)
	}
	return pts
}
