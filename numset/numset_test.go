package numset

import "testing"

func dt(t, n uint64) DenseTime { return DenseTime{T: t, N: n} }

func TestContainsFromRange(t *testing.T) {
	s := FromRange(dt(5, 0), dt(10, 0))
	cases := []struct {
		pt   DenseTime
		want bool
	}{
		{dt(4, 0), false},
		{dt(5, 0), true},
		{dt(7, 3), true},
		{dt(10, 0), true},
		{dt(10, 1), false},
	}
	for _, c := range cases {
		if got := s.Contains(c.pt); got != c.want {
			t.Errorf("Contains(%v) = %v, want %v", c.pt, got, c.want)
		}
	}
}

func TestComplementInvolution(t *testing.T) {
	s := FromRange(dt(1, 0), dt(3, 0)).Union(FromRange(dt(5, 0), dt(8, 0)))
	back := s.Complement().Complement().Simplify()
	probe := []DenseTime{dt(0, 0), dt(1, 0), dt(2, 5), dt(4, 0), dt(6, 0), dt(9, 0)}
	for _, p := range probe {
		if s.Contains(p) != back.Contains(p) {
			t.Errorf("complement involution broke at %v", p)
		}
	}
}

func TestUnionIntersectionWithComplement(t *testing.T) {
	s := FromRange(dt(2, 0), dt(6, 0))
	notS := s.Complement()
	union := s.Union(notS)
	inter := Intersection(s, notS)
	probe := []DenseTime{dt(0, 0), dt(2, 0), dt(4, 0), dt(6, 0), dt(9, 0)}
	for _, p := range probe {
		if !union.Contains(p) {
			t.Errorf("x ∪ ¬x should be full at %v", p)
		}
		if inter.Contains(p) {
			t.Errorf("x ∩ ¬x should be empty at %v", p)
		}
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	s := FromRange(dt(1, 0), dt(3, 0)).Union(FromRange(dt(3, 1), dt(5, 0)))
	once := s.Simplify()
	twice := once.Simplify()
	if len(once.bounds) != len(twice.bounds) {
		t.Fatalf("simplify not idempotent: %d vs %d bounds", len(once.bounds), len(twice.bounds))
	}
	for i := range once.bounds {
		if once.bounds[i] != twice.bounds[i] {
			t.Errorf("bound %d differs after re-simplify", i)
		}
	}
}

func TestInsertBoundPreservesFunction(t *testing.T) {
	s := FromRange(dt(2, 0), dt(6, 0))
	inserted := s.InsertBound(dt(4, 0))
	probe := []DenseTime{dt(0, 0), dt(2, 0), dt(3, 9), dt(4, 0), dt(6, 0), dt(7, 0)}
	for _, p := range probe {
		if s.Contains(p) != inserted.Contains(p) {
			t.Errorf("InsertBound changed the function at %v", p)
		}
	}
}

func TestSyncPreservesBothFunctions(t *testing.T) {
	a := FromRange(dt(1, 0), dt(4, 0))
	b := FromRange(dt(2, 0), dt(6, 0))
	synced := a.Sync(b)
	probe := []DenseTime{dt(0, 0), dt(1, 0), dt(2, 0), dt(3, 0), dt(4, 0), dt(5, 0), dt(7, 0)}
	for _, p := range probe {
		if a.Contains(p) != synced.Contains(p) {
			t.Errorf("Sync changed a's function at %v", p)
		}
	}
}

func TestEmptyFull(t *testing.T) {
	if !Empty().IsEmpty() {
		t.Error("Empty should be empty")
	}
	if Full().IsEmpty() {
		t.Error("Full should not be empty")
	}
	if !Full().Contains(dt(0, 0)) || !Full().Contains(dt(Max, Max)) {
		t.Error("Full should contain every point")
	}
}

func TestFromRangeEmptyWhenInverted(t *testing.T) {
	s := FromRange(dt(10, 0), dt(5, 0))
	if !s.IsEmpty() {
		t.Error("FromRange with hi < lo should be empty")
	}
}

func TestSaturatingArithmetic(t *testing.T) {
	base := dt(Max, 5)
	if got := AddUpperBound(base, 1); got != (DenseTime{T: Max, N: Max}) {
		t.Errorf("AddUpperBound overflow should saturate, got %v", got)
	}
	if got := AddLowerBound(base, 1); got != (DenseTime{T: Max, N: Max}) {
		t.Errorf("AddLowerBound overflow should saturate, got %v", got)
	}
	if got := AddLowerBound(dt(3, 7), 0); got != dt(3, 7) {
		t.Errorf("AddLowerBound with zero offset should be identity, got %v", got)
	}
}
