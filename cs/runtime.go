package cs

import (
	"fmt"
	"iter"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/pouyapd/scanmc/errs"
	"github.com/pouyapd/scanmc/pg"
)

// parallelThreshold is the member-PG count above which PossibleTransitions
// fans its per-PG admissibility scan out across goroutines. Below it the
// errgroup's own bookkeeping would cost more than it saves.
const parallelThreshold = 4

// AdmissibleTransition names one admissible joint step: firing Action on
// member Pg leads it to Post. This flattens the Rust reference's iterator-
// of-iterators shape (PgId -> Action -> JointPost) into a single sequence,
// since a CS-level action only ever moves its own PG — unlike a PG's
// internal product/race composition, CS actions do not join posts across
// member PGs (see DESIGN.md).
type AdmissibleTransition struct {
	Pg     PgID
	Action pg.Action
	Post   []pg.Location
}

// Instance is the mutable runtime state of a channel system: every member
// PG's own Instance, one queue per channel, and the shared simulated time.
type Instance struct {
	def     *Definition
	pgs     []*pg.Instance
	queues  []queue
	time    Time
}

// New builds an Instance with every member PG at its initial state and
// every channel queue empty.
func New(def *Definition, rng *rand.Rand) (*Instance, error) {
	ins := &Instance{
		def:    def,
		pgs:    make([]*pg.Instance, len(def.pgs)),
		queues: make([]queue, len(def.channelTypes)),
	}
	for i, pgDef := range def.pgs {
		pgi, err := pg.New(pgDef, rng)
		if err != nil {
			return nil, fmt.Errorf("initializing pg %d: %w", i, err)
		}
		ins.pgs[i] = pgi
	}
	for i, capacity := range def.channelCaps {
		ins.queues[i] = newQueue(capacity)
	}
	return ins, nil
}

func (ins *Instance) Time() Time { return ins.time }

func (ins *Instance) Pg(p PgID) *pg.Instance { return ins.pgs[p.index()] }

// PossibleTransitions enumerates every admissible transition across every
// member PG, scanning PGs in parallel via errgroup once their count passes
// parallelThreshold; output order always matches the sequential scan.
func (ins *Instance) PossibleTransitions() iter.Seq[AdmissibleTransition] {
	return func(yield func(AdmissibleTransition) bool) {
		for _, list := range ins.scanAll() {
			for _, at := range list {
				if !yield(at) {
					return
				}
			}
		}
	}
}

func (ins *Instance) scanAll() [][]AdmissibleTransition {
	n := len(ins.pgs)
	results := make([][]AdmissibleTransition, n)
	if n <= parallelThreshold {
		for i := range ins.pgs {
			results[i] = ins.scanPg(PgID{idx: uint16(i)})
		}
		return results
	}
	var g errgroup.Group
	for i := range ins.pgs {
		i := i
		g.Go(func() error {
			results[i] = ins.scanPg(PgID{idx: uint16(i)})
			return nil
		})
	}
	_ = g.Wait() // scanPg never errors; it only filters by queue admissibility
	return results
}

func (ins *Instance) scanPg(p PgID) []AdmissibleTransition {
	var out []AdmissibleTransition
	pgi := ins.pgs[p.index()]
	for action, posts := range pgi.PossibleTransitions() {
		comm, isComm := ins.def.communications[commKey{Pg: p, Action: action}]
		if isComm && !ins.admissible(comm) {
			continue
		}
		for post := range posts {
			out = append(out, AdmissibleTransition{Pg: p, Action: action, Post: post})
		}
	}
	return out
}

func (ins *Instance) admissible(comm Communication) bool {
	q := ins.queues[comm.Channel.index()]
	switch comm.Kind {
	case MessageSend:
		return !q.IsFull()
	case MessageReceive:
		return !q.IsEmpty()
	case MessageProbeEmpty:
		return q.IsEmpty()
	case MessageProbeFull:
		return q.IsFull()
	default:
		return false
	}
}

// Transition commits a joint step of action at member pg, leading it to
// post. For a Send/Receive this also moves the value across the channel
// queue; for a probe it validates the channel precondition and fires the
// underlying PG transition with no queue side effect. Returns the Event
// describing what happened.
func (ins *Instance) Transition(p PgID, action pg.Action, post []pg.Location, rng *rand.Rand) (*Event, error) {
	comm, isComm := ins.def.communications[commKey{Pg: p, Action: action}]
	if !isComm {
		if err := ins.pgs[p.index()].Transition(action, post, rng); err != nil {
			return nil, err
		}
		return &Event{Pg: p, Type: EventLocal}, nil
	}
	if !ins.admissible(comm) {
		return nil, fmt.Errorf("%w: channel %d not admissible for this communication", errs.ErrUnsatisfiedGuard, comm.Channel.index())
	}
	switch comm.Kind {
	case MessageSend:
		v, err := ins.pgs[p.index()].CommitSend(action, post, rng)
		if err != nil {
			return nil, err
		}
		if err := ins.queues[comm.Channel.index()].Push(v); err != nil {
			return nil, err
		}
		return &Event{Pg: p, Channel: comm.Channel, Type: EventSend}, nil

	case MessageReceive:
		v, err := ins.queues[comm.Channel.index()].Pop()
		if err != nil {
			return nil, err
		}
		if err := ins.pgs[p.index()].CommitReceive(action, post, v); err != nil {
			return nil, err
		}
		return &Event{Pg: p, Channel: comm.Channel, Type: EventReceive}, nil

	case MessageProbeEmpty:
		if err := ins.pgs[p.index()].Transition(action, post, rng); err != nil {
			return nil, err
		}
		return &Event{Pg: p, Channel: comm.Channel, Type: EventProbeEmpty}, nil

	case MessageProbeFull:
		if err := ins.pgs[p.index()].Transition(action, post, rng); err != nil {
			return nil, err
		}
		return &Event{Pg: p, Channel: comm.Channel, Type: EventProbeFull}, nil

	default:
		return nil, fmt.Errorf("%w: unknown message kind", errs.ErrCommunication)
	}
}

// Wait advances every member PG's clocks by delta, and the CS's own time
// axis. It is all-or-nothing: every member PG must be able to wait before
// any of them commits.
func (ins *Instance) Wait(delta Time) error {
	for _, pgi := range ins.pgs {
		if !pgi.CanWait(delta) {
			return fmt.Errorf("%w: a member pg's invariant forbids waiting %d", errs.ErrInvariant, delta)
		}
	}
	for _, pgi := range ins.pgs {
		if err := pgi.Wait(delta); err != nil {
			return err
		}
	}
	if delta > TimeMax-ins.time {
		ins.time = TimeMax
	} else {
		ins.time += delta
	}
	return nil
}

// MaxWaitDelta returns the largest δ in [0, bound] for which every member
// PG's CanWait(δ) holds — used by package sim to pick how far to advance
// simulated time when §4.6's step (2) finds no admissible transition.
// Admissibility is monotonically non-increasing in δ: a post-location's
// invariant only ever goes from holding to not holding as a clock crosses
// an upper bound, never the reverse, since clocks never decrease and δ=0
// always holds (every currently-occupied location's invariant was already
// checked at the transition that entered it) — so a binary search over the
// integer domain is exact, not an approximation of some continuous search.
func (ins *Instance) MaxWaitDelta(bound Time) Time {
	canWaitAll := func(delta Time) bool {
		for _, pgi := range ins.pgs {
			if !pgi.CanWait(delta) {
				return false
			}
		}
		return true
	}
	if bound == 0 || canWaitAll(bound) {
		return bound
	}
	lo, hi := Time(0), bound
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		if canWaitAll(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// Clone performs a cheap, deep copy of exactly the mutable per-run state —
// every member PG instance and every channel queue — sharing the immutable
// Definition.
func (ins *Instance) Clone() *Instance {
	out := &Instance{
		def:    ins.def,
		pgs:    make([]*pg.Instance, len(ins.pgs)),
		queues: make([]queue, len(ins.queues)),
		time:   ins.time,
	}
	for i, pgi := range ins.pgs {
		out.pgs[i] = pgi.Clone()
	}
	for i, q := range ins.queues {
		out.queues[i] = q.Clone()
	}
	return out
}
