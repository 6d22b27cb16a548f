// Package sim implements the single-run simulation driver contract of
// spec.md §4.6/component F: the step loop that samples an admissible
// channel-system transition (or advances time when none is admissible),
// commits it, and feeds the resulting event to a PMTL oracle. Repeating
// many such runs and aggregating their verdicts into a confidence interval
// is the excluded outer Monte-Carlo sweep — Driver drives exactly one run
// to its stop condition.
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	channerics "github.com/niceyeti/channerics/channels"

	"github.com/pouyapd/scanmc/cs"
	"github.com/pouyapd/scanmc/pg"
	"github.com/pouyapd/scanmc/pmtl"
)

// ActionID is the event identity the monitor's Atom(Event) nodes compare
// against: which member PG fired which of its own actions. Its fields are
// the same plain uint16-backed handles pg/cs already use, so it is
// comparable for free — the constraint pmtl.Monitor's type parameter needs
// as a map/lookup key.
type ActionID struct {
	Pg     cs.PgID
	Action pg.Action
}

// FormulaRole selects which stop condition a false top-level verdict
// triggers: an assumption going false discards the run (vacuously
// satisfied, not a finding); a guarantee going false is a counterexample.
type FormulaRole int

const (
	RoleGuarantee FormulaRole = iota
	RoleAssume
)

// VerdictKind classifies why a run stopped.
type VerdictKind int

const (
	// VerdictRunning is never returned from Run; it is Step's interim
	// result for a non-terminal step.
	VerdictRunning VerdictKind = iota
	VerdictAssumeViolated
	VerdictGuaranteeViolated
	VerdictDeadlineExceeded
	VerdictDeadlocked
)

func (k VerdictKind) String() string {
	switch k {
	case VerdictRunning:
		return "running"
	case VerdictAssumeViolated:
		return "assume-violated"
	case VerdictGuaranteeViolated:
		return "guarantee-violated"
	case VerdictDeadlineExceeded:
		return "deadline-exceeded"
	case VerdictDeadlocked:
		return "deadlocked"
	default:
		return "unknown"
	}
}

// Verdict is a run's terminal outcome: what stopped it, and the channel
// system's simulated time at that instant.
type Verdict struct {
	Kind   VerdictKind
	AtTime cs.Time
}

// StepOutcome classifies what one Step call did.
type StepOutcome int

const (
	StepCommitted StepOutcome = iota
	StepWaited
	StepTerminal
)

// StepResult is the outcome of one Driver.Step call. Event is non-nil
// whenever the step committed a transition: always for StepCommitted, and
// for a StepTerminal whose verdict the committed event produced. A
// wait-only step, or a terminal step with no transition, fires no event
// and so feeds nothing to the monitor.
type StepResult struct {
	Outcome StepOutcome
	Event   *cs.Event
	Verdict Verdict // meaningful only when Outcome == StepTerminal
}

// Driver owns one channel-system instance and drives it, step by step, per
// §4.6. It never blocks or spawns goroutines itself (see DESIGN.md); Run's
// internal event broadcaster is the only exception, scoped to the
// lifetime of a single Run call.
type Driver struct {
	cs         *cs.Instance
	monitor    *pmtl.Monitor[ActionID]
	predicates []Predicate
	role       FormulaRole
	deadline   cs.Time
	rng        *rand.Rand
	policy     Policy
}

// NewDriver constructs a Driver over csi, checking formula's top-level
// verdict with role semantics, sampling admissible transitions via
// UniformPolicy by default (override with SetPolicy), and stopping no
// later than deadline (pass cs.TimeMax for "no deadline").
func NewDriver(csi *cs.Instance, formula pmtl.Formula[ActionID], predicates []Predicate, role FormulaRole, deadline cs.Time, rng *rand.Rand) *Driver {
	return &Driver{
		cs:         csi,
		monitor:    pmtl.NewMonitor(formula),
		predicates: predicates,
		role:       role,
		deadline:   deadline,
		rng:        rng,
		policy:     UniformPolicy,
	}
}

// SetPolicy overrides the default uniform sampling policy.
func (d *Driver) SetPolicy(p Policy) { d.policy = p }

// Time reports the driver's underlying channel system's current simulated
// time.
func (d *Driver) Time() cs.Time { return d.cs.Time() }

// Step performs one iteration of the §4.6 loop: enumerate admissible
// transitions; if none, advance time by the largest admissible δ bounded
// by the deadline (or stop if δ=0, a deadlock); otherwise sample one
// transition, commit it, evaluate predicates, and feed the oracle.
func (d *Driver) Step(ctx context.Context) (StepResult, error) {
	if err := ctx.Err(); err != nil {
		return StepResult{}, err
	}

	var transitions []cs.AdmissibleTransition
	for at := range d.cs.PossibleTransitions() {
		transitions = append(transitions, at)
	}

	if len(transitions) == 0 {
		return d.stepWait()
	}
	return d.stepCommit(transitions)
}

func (d *Driver) stepWait() (StepResult, error) {
	now := d.cs.Time()
	if now >= d.deadline {
		return StepResult{Outcome: StepTerminal, Verdict: Verdict{Kind: VerdictDeadlineExceeded, AtTime: now}}, nil
	}
	delta := d.cs.MaxWaitDelta(d.deadline - now)
	if delta == 0 {
		return StepResult{Outcome: StepTerminal, Verdict: Verdict{Kind: VerdictDeadlocked, AtTime: now}}, nil
	}
	if err := d.cs.Wait(delta); err != nil {
		return StepResult{}, err
	}
	if d.cs.Time() >= d.deadline {
		return StepResult{Outcome: StepTerminal, Verdict: Verdict{Kind: VerdictDeadlineExceeded, AtTime: d.cs.Time()}}, nil
	}
	return StepResult{Outcome: StepWaited}, nil
}

func (d *Driver) stepCommit(transitions []cs.AdmissibleTransition) (StepResult, error) {
	at := transitions[d.policy(len(transitions), d.rng)]
	ev, err := d.cs.Transition(at.Pg, at.Action, at.Post, d.rng)
	if err != nil {
		return StepResult{}, err
	}

	bits, err := evalPredicates(d.cs, d.predicates)
	if err != nil {
		return StepResult{}, fmt.Errorf("stepCommit: %w", err)
	}

	action := ActionID{Pg: at.Pg, Action: at.Action}
	ok := d.monitor.Update(action, bits, d.cs.Time())
	res := StepResult{Outcome: StepCommitted, Event: ev}
	if !ok {
		res.Outcome = StepTerminal
		switch d.role {
		case RoleAssume:
			res.Verdict = Verdict{Kind: VerdictAssumeViolated, AtTime: d.cs.Time()}
		case RoleGuarantee:
			res.Verdict = Verdict{Kind: VerdictGuaranteeViolated, AtTime: d.cs.Time()}
		}
	}
	return res, nil
}

// Run drives Step to a terminal outcome, returning the verdict and the
// full trace of committed events. sink, if non-nil, receives every
// committed Event as it happens — the one piece of "evidence (traces,
// counts)" §1 promises out of a single run; collecting many runs' traces
// into aggregate counts is the excluded outer driver's job. The internal
// fan-out from one committed-event stream to the trace accumulator and
// sink uses the same channerics.Broadcast pipeline as the teacher's
// fastview.ViewBuilder, the only goroutines Driver ever spawns.
func (d *Driver) Run(ctx context.Context, sink func(cs.Event)) (Verdict, []cs.Event, error) {
	raw := make(chan cs.Event)
	outs := channerics.Broadcast(ctx.Done(), raw, 2)

	var trace []cs.Event
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for ev := range outs[0] {
			trace = append(trace, ev)
		}
	}()
	go func() {
		defer wg.Done()
		for ev := range outs[1] {
			if sink != nil {
				sink(ev)
			}
		}
	}()

	var verdict Verdict
	var runErr error
loop:
	for {
		res, err := d.Step(ctx)
		if err != nil {
			runErr = err
			break loop
		}
		if res.Event != nil {
			select {
			case raw <- *res.Event:
			case <-ctx.Done():
				runErr = ctx.Err()
				break loop
			}
		}
		if res.Outcome == StepTerminal {
			verdict = res.Verdict
			break loop
		}
	}
	close(raw)
	wg.Wait()
	return verdict, trace, runErr
}
