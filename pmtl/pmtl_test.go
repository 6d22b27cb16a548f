package pmtl

import "testing"

type label int

const (
	actA label = iota
	actB
)

func TestTrueAlwaysVerifies(t *testing.T) {
	m := NewMonitor[label](TrueF[label]{})
	for i, tm := range []uint64{0, 1, 5, 5, 9} {
		if got := m.Update(actA, nil, tm); !got {
			t.Errorf("step %d: True should always verify, got false", i)
		}
	}
}

func TestFalseNeverVerifies(t *testing.T) {
	m := NewMonitor[label](FalseF[label]{})
	for i, tm := range []uint64{0, 1, 5, 5, 9} {
		if got := m.Update(actA, nil, tm); got {
			t.Errorf("step %d: False should never verify, got true", i)
		}
	}
}

func TestAtomPredicateFollowsStateBits(t *testing.T) {
	m := NewMonitor[label](AtomF[label]{Kind: AtomPredicate, Predicate: 0})
	cases := []struct {
		t    uint64
		bits []bool
		want bool
	}{
		{0, []bool{false}, false},
		{1, []bool{true}, true},
		{2, []bool{true}, true},
		{3, []bool{false}, false},
	}
	for _, c := range cases {
		if got := m.Update(actA, c.bits, c.t); got != c.want {
			t.Errorf("t=%d: got %v, want %v", c.t, got, c.want)
		}
	}
}

func TestAtomEventFollowsAction(t *testing.T) {
	m := NewMonitor[label](AtomF[label]{Kind: AtomEvent, Event: actB})
	cases := []struct {
		t      uint64
		action label
		want   bool
	}{
		{0, actA, false},
		{1, actB, true},
		{2, actA, false},
		{3, actB, true},
	}
	for _, c := range cases {
		if got := m.Update(c.action, nil, c.t); got != c.want {
			t.Errorf("t=%d: got %v, want %v", c.t, got, c.want)
		}
	}
}

func TestAndOrNotCombineAtomsPerStep(t *testing.T) {
	p0 := AtomF[label]{Kind: AtomPredicate, Predicate: 0}
	p1 := AtomF[label]{Kind: AtomPredicate, Predicate: 1}
	and := NewMonitor[label](AndF[label]{Subs: []Formula[label]{p0, p1}})
	or := NewMonitor[label](OrF[label]{Subs: []Formula[label]{p0, p1}})
	not := NewMonitor[label](NotF[label]{Sub: p0})

	cases := []struct {
		t        uint64
		bits     []bool
		wantAnd  bool
		wantOr   bool
		wantNot  bool
	}{
		{0, []bool{false, false}, false, false, true},
		{1, []bool{true, false}, false, true, false},
		{2, []bool{true, true}, true, true, false},
		{3, []bool{false, true}, false, true, true},
	}
	for _, c := range cases {
		if got := and.Update(actA, c.bits, c.t); got != c.wantAnd {
			t.Errorf("And t=%d: got %v, want %v", c.t, got, c.wantAnd)
		}
		if got := or.Update(actA, c.bits, c.t); got != c.wantOr {
			t.Errorf("Or t=%d: got %v, want %v", c.t, got, c.wantOr)
		}
		if got := not.Update(actA, c.bits, c.t); got != c.wantNot {
			t.Errorf("Not t=%d: got %v, want %v", c.t, got, c.wantNot)
		}
	}
}

func TestHistoricallyOfTrueIsAlwaysTrue(t *testing.T) {
	m := NewMonitor[label](HistoricallyF[label]{Sub: TrueF[label]{}, Lower: 0, Upper: 5})
	for i, tm := range []uint64{0, 2, 4, 4, 10} {
		if got := m.Update(actA, nil, tm); !got {
			t.Errorf("step %d: Historically(True) should always hold, got false", i)
		}
	}
}

func TestPreviouslyOfFalseIsAlwaysFalse(t *testing.T) {
	m := NewMonitor[label](PreviouslyF[label]{Sub: FalseF[label]{}, Lower: 0, Upper: 5})
	for i, tm := range []uint64{0, 2, 4, 4, 10} {
		if got := m.Update(actA, nil, tm); got {
			t.Errorf("step %d: Previously(False) should never hold, got true", i)
		}
	}
}

func TestSinceBoundedLowerZero(t *testing.T) {
	p0 := AtomF[label]{Kind: AtomPredicate, Predicate: 0}
	p1 := AtomF[label]{Kind: AtomPredicate, Predicate: 1}
	m := NewMonitor[label](SinceF[label]{Alpha: p0, Beta: p1, Lower: 0, Upper: 2})

	cases := []struct {
		t    uint64
		bits []bool
		want bool
	}{
		{0, []bool{false, true}, false},
		{1, []bool{false, true}, false},
		{2, []bool{true, true}, true},
		{3, []bool{true, false}, true},
		{4, []bool{true, false}, true},
		{5, []bool{false, false}, false},
	}
	for _, c := range cases {
		if got := m.Update(actA, c.bits, c.t); got != c.want {
			t.Errorf("t=%d: got %v, want %v", c.t, got, c.want)
		}
	}
}

func TestHistoricallyFlipsFalseImmediatelyOnFalsifyingAtom(t *testing.T) {
	atom := AtomF[label]{Kind: AtomPredicate, Predicate: 0}
	m := NewMonitor[label](HistoricallyF[label]{Sub: atom, Lower: 0, Upper: 0})
	if got := m.Update(actA, []bool{true}, 0); !got {
		t.Fatal("Historically should hold while the atom has always been true")
	}
	if got := m.Update(actA, []bool{true}, 1); !got {
		t.Fatal("Historically should still hold")
	}
	if got := m.Update(actA, []bool{false}, 2); got {
		t.Fatal("Historically should become false the instant the atom is false")
	}
}
