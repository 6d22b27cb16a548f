package cs

import (
	"testing"

	"github.com/pouyapd/scanmc/pg"
	"github.com/pouyapd/scanmc/value"
)

// buildProducerConsumer wires the classic S1 scenario: P1 sends true on a
// capacity-1 Bool channel, P2 receives it into v.
func buildProducerConsumer(t *testing.T) (*Definition, PgID, PgID, Channel, pg.Var) {
	t.Helper()
	csb := NewBuilder()

	p1b := pg.NewBuilder()
	s0 := p1b.NewLocation()
	s1 := p1b.NewLocation()
	if err := p1b.SetInitial(s0); err != nil {
		t.Fatalf("SetInitial p1: %v", err)
	}
	p1 := csb.AddPg(p1b)

	p2b := pg.NewBuilder()
	r0 := p2b.NewLocation()
	r1 := p2b.NewLocation()
	v := p2b.NewVar(value.Bool(), value.Const[pg.Var]{Value: value.BoolVal(false)})
	if err := p2b.SetInitial(r0); err != nil {
		t.Fatalf("SetInitial p2: %v", err)
	}
	p2 := csb.AddPg(p2b)

	one := 1
	ch, err := csb.NewChannel(value.Bool(), &one)
	if err != nil {
		t.Fatalf("NewChannel: %v", err)
	}

	sendAction, err := csb.NewSend(p1, ch, value.Const[pg.Var]{Value: value.BoolVal(true)})
	if err != nil {
		t.Fatalf("NewSend: %v", err)
	}
	if err := p1b.AddTransition(s0, sendAction, s1, nil); err != nil {
		t.Fatalf("AddTransition send: %v", err)
	}

	recvAction, err := csb.NewReceive(p2, ch, v, value.Bool())
	if err != nil {
		t.Fatalf("NewReceive: %v", err)
	}
	if err := p2b.AddTransition(r0, recvAction, r1, nil); err != nil {
		t.Fatalf("AddTransition receive: %v", err)
	}

	def, err := csb.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return def, p1, p2, ch, v
}

func TestProducerConsumerLifecycle(t *testing.T) {
	def, _, p2, ch, v := buildProducerConsumer(t)
	ins, err := New(def, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var ats []AdmissibleTransition
	for at := range ins.PossibleTransitions() {
		ats = append(ats, at)
	}
	if len(ats) != 1 {
		t.Fatalf("expected exactly one admissible transition before any commit, got %d", len(ats))
	}

	ev, err := ins.Transition(ats[0].Pg, ats[0].Action, ats[0].Post, nil)
	if err != nil {
		t.Fatalf("Transition (send): %v", err)
	}
	if ev.Type != EventSend {
		t.Errorf("expected EventSend, got %v", ev.Type)
	}
	if ins.queues[ch.index()].Len() != 1 {
		t.Fatalf("expected queue length 1 after send, got %d", ins.queues[ch.index()].Len())
	}

	ats = ats[:0]
	for at := range ins.PossibleTransitions() {
		ats = append(ats, at)
	}
	if len(ats) != 1 {
		t.Fatalf("expected exactly one admissible transition after send, got %d", len(ats))
	}
	if ats[0].Pg != p2 {
		t.Fatalf("expected the admissible transition to belong to p2, got %v", ats[0].Pg)
	}

	ev, err = ins.Transition(ats[0].Pg, ats[0].Action, ats[0].Post, nil)
	if err != nil {
		t.Fatalf("Transition (receive): %v", err)
	}
	if ev.Type != EventReceive {
		t.Errorf("expected EventReceive, got %v", ev.Type)
	}
	if !ins.queues[ch.index()].IsEmpty() {
		t.Error("expected queue empty after receive")
	}

	got, err := ins.Pg(p2).Var(v)
	if err != nil {
		t.Fatalf("Var: %v", err)
	}
	b, err := got.Bool()
	if err != nil {
		t.Fatalf("Bool: %v", err)
	}
	if !b {
		t.Error("expected v == true after receive")
	}

	count := 0
	for range ins.PossibleTransitions() {
		count++
	}
	if count != 0 {
		t.Errorf("expected no further admissible transitions, got %d", count)
	}
}

func TestHandshakeChannelRejected(t *testing.T) {
	csb := NewBuilder()
	zero := 0
	if _, err := csb.NewChannel(value.Bool(), &zero); err == nil {
		t.Error("expected zero-capacity channel to be rejected")
	}
}

func TestProbeFullRequiresBoundedChannel(t *testing.T) {
	csb := NewBuilder()
	pgb := pg.NewBuilder()
	l0 := pgb.NewLocation()
	if err := pgb.SetInitial(l0); err != nil {
		t.Fatalf("SetInitial: %v", err)
	}
	p := csb.AddPg(pgb)
	ch, err := csb.NewChannel(value.Int(), nil)
	if err != nil {
		t.Fatalf("NewChannel: %v", err)
	}
	if _, err := csb.NewProbeFullQueue(p, ch); err == nil {
		t.Error("expected ProbeFullQueue on an unbounded channel to be rejected")
	}
}

func TestCloneIsolatesQueues(t *testing.T) {
	def, p1, _, ch, _ := buildProducerConsumer(t)
	ins, err := New(def, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	clone := ins.Clone()

	for at := range ins.PossibleTransitions() {
		if at.Pg == p1 {
			if _, err := ins.Transition(at.Pg, at.Action, at.Post, nil); err != nil {
				t.Fatalf("Transition: %v", err)
			}
			break
		}
	}
	if ins.queues[ch.index()].Len() == clone.queues[ch.index()].Len() {
		t.Error("clone should not observe the original's queue mutation")
	}
}
