package pg

import (
	"fmt"
	"sort"

	"github.com/pouyapd/scanmc/errs"
	"github.com/pouyapd/scanmc/value"
)

// Builder accumulates locations, actions, variables, clocks, and
// transitions, validating references as they are added; Build freezes the
// accumulated state into an immutable Definition.
type Builder struct {
	varTypes   []value.Type
	varInit    []value.Expr[Var]
	numClocks  int
	actions    []ActionDef
	invariants [][]TimeConstraint
	transitions [][]Transition
	initial    Location
	initialSet bool
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) NewVar(t value.Type, init value.Expr[Var]) Var {
	v := Var{idx: uint16(len(b.varTypes))}
	b.varTypes = append(b.varTypes, t)
	b.varInit = append(b.varInit, init)
	return v
}

func (b *Builder) NewClock() Clock {
	c := Clock{idx: uint16(b.numClocks)}
	b.numClocks++
	return c
}

func (b *Builder) NewAction() Action {
	a := Action{idx: uint16(len(b.actions))}
	b.actions = append(b.actions, ActionDef{kind: effectNone})
	return a
}

func (b *Builder) NewLocation() Location {
	return b.newLocation(nil)
}

func (b *Builder) NewTimedLocation(invariants []TimeConstraint) Location {
	return b.newLocation(invariants)
}

func (b *Builder) newLocation(invariants []TimeConstraint) Location {
	l := Location{idx: uint16(len(b.invariants))}
	b.invariants = append(b.invariants, invariants)
	b.transitions = append(b.transitions, nil)
	return l
}

func (b *Builder) SetInitial(l Location) error {
	if err := b.checkLocation(l); err != nil {
		return err
	}
	b.initial = l
	b.initialSet = true
	return nil
}

func (b *Builder) checkLocation(l Location) error {
	if l.index() < 0 || l.index() >= len(b.invariants) {
		return fmt.Errorf("%w: location %d", errs.ErrMissingLocation, l.index())
	}
	return nil
}

func (b *Builder) checkAction(a Action) error {
	if a.IsEpsilon() {
		return nil
	}
	if a.index() < 0 || a.index() >= len(b.actions) {
		return fmt.Errorf("%w: action %d", errs.ErrMissingAction, a.index())
	}
	return nil
}

func (b *Builder) checkVar(v Var) error {
	if v.index() < 0 || v.index() >= len(b.varTypes) {
		return fmt.Errorf("%w: var %d", errs.ErrMissingVar, v.index())
	}
	return nil
}

func (b *Builder) checkClock(c Clock) error {
	if c.index() < 0 || c.index() >= b.numClocks {
		return fmt.Errorf("%w: clock %d", errs.ErrMissingClock, c.index())
	}
	return nil
}

// AddEffect attaches a local assignment to action. Fails if action is
// epsilon or already carries a send/receive effect.
func (b *Builder) AddEffect(action Action, v Var, expr value.Expr[Var]) error {
	if action.IsEpsilon() {
		return fmt.Errorf("%w: epsilon carries no effects", errs.ErrActionIsCommunication)
	}
	if err := b.checkAction(action); err != nil {
		return err
	}
	if err := b.checkVar(v); err != nil {
		return err
	}
	ad := &b.actions[action.index()]
	if ad.kind == effectSend || ad.kind == effectReceive || ad.kind == effectProbe {
		return fmt.Errorf("%w: action %d", errs.ErrEffectOnCommunication, action.index())
	}
	ad.kind = effectAssign
	ad.assigns = append(ad.assigns, Assignment{Var: v, Expr: expr})
	return nil
}

// ResetClock attaches a clock reset to action's effect.
func (b *Builder) ResetClock(action Action, clock Clock) error {
	if action.IsEpsilon() {
		return fmt.Errorf("%w: epsilon carries no effects", errs.ErrActionIsCommunication)
	}
	if err := b.checkAction(action); err != nil {
		return err
	}
	if err := b.checkClock(clock); err != nil {
		return err
	}
	ad := &b.actions[action.index()]
	if ad.kind == effectSend || ad.kind == effectReceive || ad.kind == effectProbe {
		return fmt.Errorf("%w: action %d", errs.ErrEffectOnCommunication, action.index())
	}
	if ad.kind == effectNone {
		ad.kind = effectAssign
	}
	ad.resets = append(ad.resets, clock)
	return nil
}

// SetSend marks action as a send of expr. Used by package cs when wiring a
// program graph action into a channel communication; fails if action
// already carries an assignment or a send/receive effect.
func (b *Builder) SetSend(action Action, expr value.Expr[Var]) error {
	if err := b.checkAction(action); err != nil {
		return err
	}
	ad := &b.actions[action.index()]
	if ad.kind != effectNone {
		return fmt.Errorf("%w: action %d", errs.ErrActionIsCommunication, action.index())
	}
	ad.kind = effectSend
	ad.sendExpr = expr
	return nil
}

// SetReceive marks action as a receive into v. See SetSend.
func (b *Builder) SetReceive(action Action, v Var) error {
	if err := b.checkAction(action); err != nil {
		return err
	}
	if err := b.checkVar(v); err != nil {
		return err
	}
	ad := &b.actions[action.index()]
	if ad.kind != effectNone {
		return fmt.Errorf("%w: action %d", errs.ErrActionIsCommunication, action.index())
	}
	ad.kind = effectReceive
	ad.receiveVar = v
	return nil
}

// MarkProbe marks action as a queue probe (empty or full). Used by package
// cs when wiring a program graph action into a channel probe; like
// SetSend/SetReceive, it carries no assignment effects of its own and
// rejects a later AddEffect/ResetClock call the same way a communication
// action does.
func (b *Builder) MarkProbe(action Action) error {
	if err := b.checkAction(action); err != nil {
		return err
	}
	ad := &b.actions[action.index()]
	if ad.kind != effectNone {
		return fmt.Errorf("%w: action %d", errs.ErrActionIsCommunication, action.index())
	}
	ad.kind = effectProbe
	return nil
}

func (b *Builder) AddTransition(pre Location, action Action, post Location, guard value.Expr[Var]) error {
	return b.AddTimedTransition(pre, action, post, guard, nil)
}

func (b *Builder) AddAutonomousTransition(pre, post Location, guard value.Expr[Var]) error {
	return b.AddTimedTransition(pre, Epsilon, post, guard, nil)
}

func (b *Builder) AddTimedTransition(pre Location, action Action, post Location, guard value.Expr[Var], constraints []TimeConstraint) error {
	if err := b.checkLocation(pre); err != nil {
		return err
	}
	if err := b.checkLocation(post); err != nil {
		return err
	}
	if err := b.checkAction(action); err != nil {
		return err
	}
	for _, tc := range constraints {
		if err := b.checkClock(tc.Clock); err != nil {
			return err
		}
	}
	b.transitions[pre.index()] = append(b.transitions[pre.index()], Transition{
		Pre: pre, Action: action, Post: post, Guard: guard, Constraints: constraints,
	})
	return nil
}

// Build freezes the accumulated graph. The initial location must have been
// set via SetInitial.
func (b *Builder) Build() (*Definition, error) {
	if !b.initialSet {
		return nil, fmt.Errorf("%w: no initial location set", errs.ErrMissingLocation)
	}
	transitions := make([][]Transition, len(b.transitions))
	for i, trs := range b.transitions {
		cp := append([]Transition(nil), trs...)
		sort.Slice(cp, func(i, j int) bool {
			if cp[i].Action.idx != cp[j].Action.idx {
				return cp[i].Action.idx < cp[j].Action.idx
			}
			return cp[i].Post.idx < cp[j].Post.idx
		})
		transitions[i] = cp
	}
	return &Definition{
		varTypes:    append([]value.Type(nil), b.varTypes...),
		varInit:     append([]value.Expr[Var](nil), b.varInit...),
		numClocks:   b.numClocks,
		actions:     append([]ActionDef(nil), b.actions...),
		invariants:  append([][]TimeConstraint(nil), b.invariants...),
		transitions: transitions,
		initial:     b.initial,
	}, nil
}
