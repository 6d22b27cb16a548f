package sim_test

import (
	"context"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/pouyapd/scanmc/cs"
	"github.com/pouyapd/scanmc/pg"
	"github.com/pouyapd/scanmc/pmtl"
	"github.com/pouyapd/scanmc/sim"
	"github.com/pouyapd/scanmc/value"
)

// buildProducerConsumer wires the S1 scenario (spec.md §8): P1 sends true
// on a capacity-1 Bool channel, P2 receives it into v.
func buildProducerConsumer(t *testing.T) *cs.Definition {
	t.Helper()
	csb := cs.NewBuilder()

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
	return def
}

func TestDriverProducerConsumer(t *testing.T) {
	Convey("Given the S1 producer/consumer channel system", t, func() {
		def := buildProducerConsumer(t)
		rng := rand.New(rand.NewSource(1))
		csi, err := cs.New(def, rng)
		So(err, ShouldBeNil)

		formula := pmtl.TrueF[sim.ActionID]{}
		driver := sim.NewDriver(csi, formula, nil, sim.RoleGuarantee, 5, rng)

		Convey("Running it to completion fires exactly the send then the receive", func() {
			var sinkEvents []cs.Event
			verdict, trace, err := driver.Run(context.Background(), func(ev cs.Event) {
				sinkEvents = append(sinkEvents, ev)
			})
			So(err, ShouldBeNil)
			So(len(trace), ShouldEqual, 2)
			So(trace[0].Type, ShouldEqual, cs.EventSend)
			So(trace[1].Type, ShouldEqual, cs.EventReceive)
			So(len(sinkEvents), ShouldEqual, 2)
			So(verdict.Kind, ShouldEqual, sim.VerdictDeadlineExceeded)
		})
	})
}

// buildBatteryRobot wires a cut-down S2 scenario: a single variable b
// starting at 3, decremented by a self-looping move_right action guarded
// on b>0.
func buildBatteryRobot(t *testing.T) (*cs.Definition, cs.PgID, pg.Var) {
	t.Helper()
	csb := cs.NewBuilder()
	pgb := pg.NewBuilder()
	b := pgb.NewVar(value.Int(), value.Const[pg.Var]{Value: value.IntVal(3)})
	bRef := value.VarRef[pg.Var]{Handle: b, VarType: value.Int()}
	l0 := pgb.NewLocation()
	if err := pgb.SetInitial(l0); err != nil {
		t.Fatalf("SetInitial: %v", err)
	}
	moveRight := pgb.NewAction()
	if err := pgb.AddEffect(moveRight, b, value.Sum[pg.Var]{Operands: []value.Expr[pg.Var]{bRef, value.Const[pg.Var]{Value: value.IntVal(-1)}}}); err != nil {
		t.Fatalf("AddEffect: %v", err)
	}
	guard := value.Greater[pg.Var]{Left: bRef, Right: value.Const[pg.Var]{Value: value.IntVal(0)}}
	if err := pgb.AddTransition(l0, moveRight, l0, guard); err != nil {
		t.Fatalf("AddTransition: %v", err)
	}
	p := csb.AddPg(pgb)
	def, err := csb.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return def, p, b
}

func TestDriverGuaranteeViolatedWhenBatteryExhausted(t *testing.T) {
	Convey("Given a battery robot whose guarantee is that its battery stays positive", t, func() {
		def, p, b := buildBatteryRobot(t)
		rng := rand.New(rand.NewSource(7))
		csi, err := cs.New(def, rng)
		So(err, ShouldBeNil)

		bPositive := value.Greater[pg.Var]{Left: value.VarRef[pg.Var]{Handle: b, VarType: value.Int()}, Right: value.Const[pg.Var]{Value: value.IntVal(0)}}
		predicates := []sim.Predicate{{Pg: p, Expr: bPositive}}
		formula := pmtl.AtomF[sim.ActionID]{Kind: pmtl.AtomPredicate, Predicate: 0}
		driver := sim.NewDriver(csi, formula, predicates, sim.RoleGuarantee, 100, rng)

		Convey("Running it stops the instant the third move drains the battery", func() {
			verdict, trace, err := driver.Run(context.Background(), nil)
			So(err, ShouldBeNil)
			So(len(trace), ShouldEqual, 3)
			So(verdict.Kind, ShouldEqual, sim.VerdictGuaranteeViolated)
		})
	})
}

func TestDriverDeadlineExceededWithNoAdmissibleTransition(t *testing.T) {
	Convey("Given a PG with no outgoing transitions at all", t, func() {
		csb := cs.NewBuilder()
		pgb := pg.NewBuilder()
		upper := pg.Time(5)
		c := pgb.NewClock()
		l0 := pgb.NewTimedLocation([]pg.TimeConstraint{{Clock: c, Upper: &upper}})
		if err := pgb.SetInitial(l0); err != nil {
			t.Fatalf("SetInitial: %v", err)
		}
		csb.AddPg(pgb)
		def, err := csb.Build()
		So(err, ShouldBeNil)

		rng := rand.New(rand.NewSource(2))
		csi, err := cs.New(def, rng)
		So(err, ShouldBeNil)

		formula := pmtl.TrueF[sim.ActionID]{}
		driver := sim.NewDriver(csi, formula, nil, sim.RoleGuarantee, 3, rng)

		Convey("Run advances time straight to the deadline and stops", func() {
			verdict, trace, err := driver.Run(context.Background(), nil)
			So(err, ShouldBeNil)
			So(len(trace), ShouldEqual, 0)
			So(verdict.Kind, ShouldEqual, sim.VerdictDeadlineExceeded)
			So(verdict.AtTime, ShouldEqual, cs.Time(3))
		})
	})
}
