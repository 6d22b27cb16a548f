package pmtl

import (
	"fmt"

	"github.com/pouyapd/scanmc/numset"
)

// Monitor is the Oracle: an incremental valuation engine over a fixed,
// depth-ordered set of subformulae. Update feeds it one observed
// (action, state_bits, t) event at a time and returns the top-level
// formula's verdict at the new instant.
type Monitor[V comparable] struct {
	nodes      []node[V]
	top        int
	time       numset.DenseTime
	valuations []numset.Set
	outputs    []numset.Set
}

// NewMonitor compiles formula into its depth-ordered subformula vector and
// initializes time to (0,1) per the construction rule.
func NewMonitor[V comparable](formula Formula[V]) *Monitor[V] {
	var nodes []node[V]
	top := compile(formula, &nodes)
	return &Monitor[V]{
		nodes:      nodes,
		top:        top,
		time:       numset.DenseTime{T: 0, N: 1},
		valuations: make([]numset.Set, len(nodes)),
		outputs:    make([]numset.Set, len(nodes)),
	}
}

// Update advances the monitor past one observed event: action fired,
// stateBits holds the current value of every atom predicate, and t is the
// event's physical time (t >= the time of every previous Update). It
// returns the top-level formula's truth value at the new instant.
//
// Update observes exactly one event per call, so every "walk the
// sub-intervals crossing the event" rule in the semantics collapses to a
// single set update triggered by whether a child's fresh output is empty
// or not, rather than a general interval walk. A temporal operator's own
// output may still cover only part of the window.
func (m *Monitor[V]) Update(action V, stateBits []bool, t uint64) bool {
	if t < m.time.T {
		panic(fmt.Sprintf("pmtl: event time %d precedes monitor time %d", t, m.time.T))
	}
	newTime := numset.DenseTime{T: t, N: m.time.N + 1}
	window := numset.FromRange(m.time, newTime)

	for i, n := range m.nodes {
		switch n.kind {
		case kindTrue:
			m.valuations[i] = numset.Full()
			m.outputs[i] = window

		case kindFalse:
			m.valuations[i] = numset.Empty()
			m.outputs[i] = numset.Empty()

		case kindAtomPredicate:
			if n.predicate < 0 || n.predicate >= len(stateBits) {
				panic(fmt.Sprintf("pmtl: atom predicate %d out of range for state_bits of length %d", n.predicate, len(stateBits)))
			}
			if stateBits[n.predicate] {
				m.valuations[i] = window
				m.outputs[i] = window
			} else {
				m.valuations[i] = numset.Empty()
				m.outputs[i] = numset.Empty()
			}

		case kindAtomEvent:
			if n.event == action {
				m.valuations[i] = numset.FromRange(newTime, newTime)
				m.outputs[i] = m.valuations[i]
			} else {
				m.valuations[i] = numset.Empty()
				m.outputs[i] = numset.Empty()
			}

		case kindAnd:
			acc := numset.Full()
			for _, c := range n.children {
				acc = numset.Intersection(acc, m.valuations[c])
			}
			m.valuations[i] = acc
			m.outputs[i] = numset.Intersection(acc, window)

		case kindOr:
			acc := numset.Empty()
			for _, c := range n.children {
				acc = acc.Union(m.valuations[c])
			}
			m.valuations[i] = acc
			m.outputs[i] = numset.Intersection(acc, window)

		case kindNot:
			v := numset.Intersection(m.valuations[n.children[0]].Complement(), window)
			m.valuations[i] = v
			m.outputs[i] = v

		case kindImplies:
			aOut := m.outputs[n.children[0]]
			bOut := m.outputs[n.children[1]]
			v := aOut.Complement().Union(bOut)
			m.valuations[i] = v
			m.outputs[i] = numset.Intersection(v, window)

		case kindHistorically:
			childFalse := m.outputs[n.children[0]].IsEmpty()
			if childFalse {
				lo := numset.AddLowerBound(m.time, n.lower)
				hi := numset.AddUpperBound(newTime, n.upper)
				m.valuations[i] = m.valuations[i].AddInterval(lo, hi)
			}
			m.outputs[i] = numset.Intersection(m.valuations[i].Complement(), window)

		case kindPreviously:
			childTrue := !m.outputs[n.children[0]].IsEmpty()
			if childTrue {
				lo := numset.AddLowerBound(m.time, n.lower)
				hi := numset.AddUpperBound(newTime, n.upper)
				m.valuations[i] = m.valuations[i].AddInterval(lo, hi)
			}
			m.outputs[i] = numset.Intersection(m.valuations[i], window)

		case kindSince:
			aHolds := !m.outputs[n.children[0]].IsEmpty()
			bHolds := !m.outputs[n.children[1]].IsEmpty()
			switch {
			case aHolds && bHolds:
				lo := numset.AddLowerBound(m.time, n.lower)
				hi := numset.AddUpperBound(newTime, n.upper)
				m.valuations[i] = m.valuations[i].AddInterval(lo, hi)
			case !aHolds && bHolds:
				// A fresh witness at newTime satisfies Since starting from
				// the next tick, not at newTime itself: AddLowerBound's
				// l==0 short-circuit would otherwise leave lo == newTime,
				// making the formula hold at the very instant beta is
				// first observed even though no time has yet elapsed since
				// the witness.
				lo := newTime.NextTick()
				if n.lower > 0 {
					lo = numset.AddLowerBound(newTime, n.lower)
				}
				hi := numset.AddUpperBound(newTime, n.upper)
				m.valuations[i] = numset.FromRange(lo, hi)
			case aHolds && !bHolds:
				// carry: valuations[i] persists unchanged
			default:
				m.valuations[i] = numset.Empty()
			}
			m.outputs[i] = numset.Intersection(m.valuations[i], window)

		default:
			panic("pmtl: unknown node kind")
		}
	}

	m.time = newTime
	return m.outputs[m.top].Contains(newTime)
}
