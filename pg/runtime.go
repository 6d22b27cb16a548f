package pg

import (
	"fmt"
	"iter"
	"math/rand"
	"sort"

	"github.com/pouyapd/scanmc/errs"
	"github.com/pouyapd/scanmc/value"
)

// Instance is the mutable runtime state of a program graph: its current
// locations (a singleton in standard use; a vector supports the product/
// race composition spec.md's source retains the contract for — see
// DESIGN.md), variable valuation, and clock valuation.
type Instance struct {
	def           *Definition
	currentStates []Location
	vars          []value.Val
	clocks        []Time
}

// New builds an Instance at def's initial location, evaluating every
// variable's initializer in declaration order (later initializers may not
// forward-reference variables declared after them).
func New(def *Definition, rng *rand.Rand) (*Instance, error) {
	ins := &Instance{
		def:           def,
		currentStates: []Location{def.initial},
		vars:          make([]value.Val, len(def.varTypes)),
		clocks:        make([]Time, def.numClocks),
	}
	for i, init := range def.varInit {
		v, err := value.Eval(init, ins.varLookup(), rng)
		if err != nil {
			return nil, fmt.Errorf("initializing var %d: %w", i, err)
		}
		ins.vars[i] = v
	}
	return ins, nil
}

func (ins *Instance) CurrentStates() []Location {
	return append([]Location(nil), ins.currentStates...)
}

func (ins *Instance) Clocks() []Time { return append([]Time(nil), ins.clocks...) }

func (ins *Instance) Var(v Var) (value.Val, error) { return ins.varLookup()(v) }

func (ins *Instance) varLookup() value.Lookup[Var] {
	return func(v Var) (value.Val, error) {
		if v.index() < 0 || v.index() >= len(ins.vars) {
			return value.Val{}, fmt.Errorf("%w: var %d", errs.ErrMissingVar, v.index())
		}
		return ins.vars[v.index()], nil
	}
}

func (ins *Instance) transitionEnabled(tr Transition) bool {
	if tr.Guard != nil {
		v, err := value.Eval(tr.Guard, ins.varLookup(), nil)
		if err != nil {
			return false
		}
		b, err := v.Bool()
		if err != nil || !b {
			return false
		}
	}
	for _, tc := range tr.Constraints {
		if !tc.satisfied(ins.clocks[tc.Clock.index()]) {
			return false
		}
	}
	return true
}

func (ins *Instance) invariantSatisfied(loc Location, clocks []Time) bool {
	for _, tc := range ins.def.invariants[loc.index()] {
		if !tc.satisfied(clocks[tc.Clock.index()]) {
			return false
		}
	}
	return true
}

func (ins *Instance) actionResets(action Action) []Clock {
	if action.IsEpsilon() {
		return nil
	}
	return ins.def.actions[action.index()].resets
}

// PossibleTransitions enumerates every (Action, joint-post) pair admissible
// from the current state: for the singleton case this is a simple binary
// search-free scan; for |currentStates| > 1 an action is enabled only when
// every position has a matching enabled transition, and the joint post
// enumerates the cartesian product of each position's individually valid
// posts, filtered by invariant satisfaction under the action's clock
// resets.
func (ins *Instance) PossibleTransitions() iter.Seq2[Action, iter.Seq[[]Location]] {
	return func(yield func(Action, iter.Seq[[]Location]) bool) {
		perPos := make([][]Transition, len(ins.currentStates))
		present := make([]map[uint16]bool, len(ins.currentStates))
		for i, loc := range ins.currentStates {
			set := map[uint16]bool{}
			for _, tr := range ins.def.transitions[loc.index()] {
				if ins.transitionEnabled(tr) {
					perPos[i] = append(perPos[i], tr)
					set[tr.Action.idx] = true
				}
			}
			present[i] = set
		}
		if len(present) == 0 {
			return
		}
		var candidates []uint16
		for aid := range present[0] {
			inAll := true
			for i := 1; i < len(present); i++ {
				if !present[i][aid] {
					inAll = false
					break
				}
			}
			if inAll {
				candidates = append(candidates, aid)
			}
		}
		sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

		for _, aid := range candidates {
			action := Action{idx: aid}
			options := make([][]Transition, len(perPos))
			for i, trs := range perPos {
				for _, tr := range trs {
					if tr.Action.idx == aid {
						options[i] = append(options[i], tr)
					}
				}
			}
			if !yield(action, ins.jointPosts(action, options)) {
				return
			}
		}
	}
}

func (ins *Instance) jointPosts(action Action, options [][]Transition) iter.Seq[[]Location] {
	return func(yield func([]Location) bool) {
		resets := ins.actionResets(action)
		newClocks := append([]Time(nil), ins.clocks...)
		for _, c := range resets {
			newClocks[c.index()] = 0
		}
		combo := make([]Location, len(options))
		stopped := false
		var rec func(i int)
		rec = func(i int) {
			if stopped {
				return
			}
			if i == len(options) {
				for _, loc := range combo {
					if !ins.invariantSatisfied(loc, newClocks) {
						return
					}
				}
				if !yield(append([]Location(nil), combo...)) {
					stopped = true
				}
				return
			}
			for _, tr := range options[i] {
				combo[i] = tr.Post
				rec(i + 1)
				if stopped {
					return
				}
			}
		}
		rec(0)
	}
}

// commitJoint validates that post is reachable by action from the current
// state, applies action's clock resets, checks post invariants, and
// updates currentStates. It does not apply assignment or communication
// effects — callers do that before/after as appropriate.
func (ins *Instance) commitJoint(action Action, post []Location) error {
	if len(post) != len(ins.currentStates) {
		return fmt.Errorf("%w: got %d, want %d", errs.ErrMismatchingPostStates, len(post), len(ins.currentStates))
	}
	for i, loc := range ins.currentStates {
		ok := false
		for _, tr := range ins.def.transitions[loc.index()] {
			if tr.Action == action && tr.Post == post[i] && ins.transitionEnabled(tr) {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%w: no enabled transition at position %d", errs.ErrUnsatisfiedGuard, i)
		}
	}
	resets := ins.actionResets(action)
	for _, c := range resets {
		ins.clocks[c.index()] = 0
	}
	for _, loc := range post {
		if !ins.invariantSatisfied(loc, ins.clocks) {
			return fmt.Errorf("%w: location %d", errs.ErrInvariant, loc.index())
		}
	}
	ins.currentStates = append([]Location(nil), post...)
	return nil
}

// Transition commits a non-communication joint transition: guards and time
// constraints are checked against the valuation from before the step,
// assignment effects apply (in declaration order), then clock resets, then
// the post-location invariants are checked. The new variable values are
// stored only once the transition has been accepted.
func (ins *Instance) Transition(action Action, post []Location, rng *rand.Rand) error {
	newVars := ins.vars
	if !action.IsEpsilon() {
		ad := ins.def.actions[action.index()]
		if ad.kind == effectSend || ad.kind == effectReceive {
			return fmt.Errorf("%w: use CommitSend/CommitReceive for action %d", errs.ErrActionIsCommunication, action.index())
		}
		if ad.kind == effectAssign {
			newVars = append([]value.Val(nil), ins.vars...)
			lookup := func(v Var) (value.Val, error) {
				if v.index() < 0 || v.index() >= len(newVars) {
					return value.Val{}, fmt.Errorf("%w: var %d", errs.ErrMissingVar, v.index())
				}
				return newVars[v.index()], nil
			}
			for _, asg := range ad.assigns {
				v, err := value.Eval(asg.Expr, lookup, rng)
				if err != nil {
					return err
				}
				newVars[asg.Var.index()] = v
			}
		}
	}
	if err := ins.commitJoint(action, post); err != nil {
		return err
	}
	ins.vars = newVars
	return nil
}

// CanWait reports whether Wait(delta) would succeed, without mutating any
// state. Used by package cs to check every member PG can advance before
// committing a joint wait to any of them.
func (ins *Instance) CanWait(delta Time) bool {
	newClocks := make([]Time, len(ins.clocks))
	for i, c := range ins.clocks {
		if delta > TimeMax-c {
			newClocks[i] = TimeMax
		} else {
			newClocks[i] = c + delta
		}
	}
	for _, loc := range ins.currentStates {
		if !ins.invariantSatisfied(loc, newClocks) {
			return false
		}
	}
	return true
}

// Wait advances every clock by delta (saturating at TimeMax), rejecting
// the advance if it would violate an invariant at the current location(s).
func (ins *Instance) Wait(delta Time) error {
	newClocks := make([]Time, len(ins.clocks))
	for i, c := range ins.clocks {
		if delta > TimeMax-c {
			newClocks[i] = TimeMax
		} else {
			newClocks[i] = c + delta
		}
	}
	for _, loc := range ins.currentStates {
		if !ins.invariantSatisfied(loc, newClocks) {
			return fmt.Errorf("%w: location %d after wait", errs.ErrInvariant, loc.index())
		}
	}
	ins.clocks = newClocks
	return nil
}

// CommitSend evaluates and commits the Send effect of action, returning
// the value placed on the channel. Exported for package cs's exclusive
// use — the enclosing channel system resolves which channel the value
// is pushed to.
func (ins *Instance) CommitSend(action Action, post []Location, rng *rand.Rand) (value.Val, error) {
	if action.IsEpsilon() {
		return value.Val{}, fmt.Errorf("%w: epsilon is not a communication", errs.ErrActionIsCommunication)
	}
	ad := ins.def.actions[action.index()]
	if ad.kind != effectSend {
		return value.Val{}, fmt.Errorf("%w: action %d", errs.ErrNotSend, action.index())
	}
	v, err := value.Eval(ad.sendExpr, ins.varLookup(), rng)
	if err != nil {
		return value.Val{}, err
	}
	if err := ins.commitJoint(action, post); err != nil {
		return value.Val{}, err
	}
	return v, nil
}

// CommitReceive commits the Receive effect of action, storing v into the
// receiving variable. See CommitSend.
func (ins *Instance) CommitReceive(action Action, post []Location, v value.Val) error {
	if action.IsEpsilon() {
		return fmt.Errorf("%w: epsilon is not a communication", errs.ErrActionIsCommunication)
	}
	ad := ins.def.actions[action.index()]
	if ad.kind != effectReceive {
		return fmt.Errorf("%w: action %d", errs.ErrNotReceive, action.index())
	}
	if err := ins.commitJoint(action, post); err != nil {
		return err
	}
	ins.vars[ad.receiveVar.index()] = v
	return nil
}

// Clone performs a cheap, deep copy of exactly the mutable per-run state;
// the shared Definition is referenced, not copied.
func (ins *Instance) Clone() *Instance {
	return &Instance{
		def:           ins.def,
		currentStates: append([]Location(nil), ins.currentStates...),
		vars:          append([]value.Val(nil), ins.vars...),
		clocks:        append([]Time(nil), ins.clocks...),
	}
}
