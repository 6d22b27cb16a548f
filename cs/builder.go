package cs

import (
	"fmt"

	"github.com/pouyapd/scanmc/errs"
	"github.com/pouyapd/scanmc/pg"
	"github.com/pouyapd/scanmc/value"
)

// Builder accumulates member PG builders, channel declarations, and the
// communications table, validating references and type-matching sends and
// receives against their channel's declared type as they are added.
type Builder struct {
	pgs             []*pg.Builder
	channelTypes    []value.Type
	channelCaps     []*int
	communications  map[commKey]Communication
}

func NewBuilder() *Builder {
	return &Builder{communications: map[commKey]Communication{}}
}

// AddPg registers a member program graph builder, returning its PgID. The
// builder remains mutable until Build: CS-level Send/Receive/Probe actions
// are created directly on it.
func (b *Builder) AddPg(pgb *pg.Builder) PgID {
	id := PgID{idx: uint16(len(b.pgs))}
	b.pgs = append(b.pgs, pgb)
	return id
}

// NewChannel declares a channel of type t. capacity nil means unbounded;
// capacity pointing at 0 is rejected — handshake (zero-capacity rendezvous)
// channels are not supported (see DESIGN.md).
func (b *Builder) NewChannel(t value.Type, capacity *int) (Channel, error) {
	if capacity != nil && *capacity == 0 {
		return Channel{}, fmt.Errorf("%w", errs.ErrHandshakeUnsupported)
	}
	ch := Channel{idx: uint16(len(b.channelTypes))}
	b.channelTypes = append(b.channelTypes, t)
	b.channelCaps = append(b.channelCaps, capacity)
	return ch, nil
}

func (b *Builder) checkPg(p PgID) (*pg.Builder, error) {
	if p.index() < 0 || p.index() >= len(b.pgs) {
		return nil, fmt.Errorf("%w: pg %d", errs.ErrMissingPg, p.index())
	}
	return b.pgs[p.index()], nil
}

func (b *Builder) checkChannel(ch Channel) error {
	if ch.index() < 0 || ch.index() >= len(b.channelTypes) {
		return fmt.Errorf("%w: channel %d", errs.ErrMissingChannel, ch.index())
	}
	return nil
}

// NewSend declares a new action on p that sends expr's value on ch.
// expr's inferred type must match ch's declared type.
func (b *Builder) NewSend(p PgID, ch Channel, expr value.Expr[pg.Var]) (pg.Action, error) {
	pgb, err := b.checkPg(p)
	if err != nil {
		return pg.Action{}, err
	}
	if err := b.checkChannel(ch); err != nil {
		return pg.Action{}, err
	}
	t, err := value.TypeOf[pg.Var](expr)
	if err != nil {
		return pg.Action{}, err
	}
	if !t.Equal(b.channelTypes[ch.index()]) {
		return pg.Action{}, fmt.Errorf("%w: send expression type %s does not match channel type %s", errs.ErrTypeMismatch, t, b.channelTypes[ch.index()])
	}
	action := pgb.NewAction()
	if err := pgb.SetSend(action, expr); err != nil {
		return pg.Action{}, err
	}
	b.communications[commKey{Pg: p, Action: action}] = Communication{Channel: ch, Kind: MessageSend}
	return action, nil
}

// NewReceive declares a new action on p that receives a value from ch into
// v. v's type (as reported by its PG's VarType, supplied by the caller)
// must match ch's declared type.
func (b *Builder) NewReceive(p PgID, ch Channel, v pg.Var, varType value.Type) (pg.Action, error) {
	pgb, err := b.checkPg(p)
	if err != nil {
		return pg.Action{}, err
	}
	if err := b.checkChannel(ch); err != nil {
		return pg.Action{}, err
	}
	if !varType.Equal(b.channelTypes[ch.index()]) {
		return pg.Action{}, fmt.Errorf("%w: receive variable type %s does not match channel type %s", errs.ErrTypeMismatch, varType, b.channelTypes[ch.index()])
	}
	action := pgb.NewAction()
	if err := pgb.SetReceive(action, v); err != nil {
		return pg.Action{}, err
	}
	b.communications[commKey{Pg: p, Action: action}] = Communication{Channel: ch, Kind: MessageReceive}
	return action, nil
}

// NewProbeEmptyQueue declares a new action on p admissible only while ch's
// queue is empty.
func (b *Builder) NewProbeEmptyQueue(p PgID, ch Channel) (pg.Action, error) {
	pgb, err := b.checkPg(p)
	if err != nil {
		return pg.Action{}, err
	}
	if err := b.checkChannel(ch); err != nil {
		return pg.Action{}, err
	}
	action := pgb.NewAction()
	if err := pgb.MarkProbe(action); err != nil {
		return pg.Action{}, err
	}
	b.communications[commKey{Pg: p, Action: action}] = Communication{Channel: ch, Kind: MessageProbeEmpty}
	return action, nil
}

// NewProbeFullQueue declares a new action on p admissible only while ch's
// queue is at capacity. ch must be bounded.
func (b *Builder) NewProbeFullQueue(p PgID, ch Channel) (pg.Action, error) {
	pgb, err := b.checkPg(p)
	if err != nil {
		return pg.Action{}, err
	}
	if err := b.checkChannel(ch); err != nil {
		return pg.Action{}, err
	}
	if b.channelCaps[ch.index()] == nil {
		return pg.Action{}, fmt.Errorf("%w: channel %d", errs.ErrProbingInfiniteQueue, ch.index())
	}
	action := pgb.NewAction()
	if err := pgb.MarkProbe(action); err != nil {
		return pg.Action{}, err
	}
	b.communications[commKey{Pg: p, Action: action}] = Communication{Channel: ch, Kind: MessageProbeFull}
	return action, nil
}

// Build freezes every member PG builder and the channel/communications
// tables into an immutable Definition.
func (b *Builder) Build() (*Definition, error) {
	pgs := make([]*pg.Definition, len(b.pgs))
	for i, pgb := range b.pgs {
		def, err := pgb.Build()
		if err != nil {
			return nil, fmt.Errorf("building pg %d: %w", i, err)
		}
		pgs[i] = def
	}
	comms := make(map[commKey]Communication, len(b.communications))
	for k, v := range b.communications {
		comms[k] = v
	}
	return &Definition{
		pgs:            pgs,
		channelTypes:   append([]value.Type(nil), b.channelTypes...),
		channelCaps:    append([]*int(nil), b.channelCaps...),
		communications: comms,
	}, nil
}
