package cs

import (
	"github.com/pouyapd/scanmc/pg"
	"github.com/pouyapd/scanmc/value"
)

// commKey identifies a CS-level communication action: a specific action of
// a specific member PG.
type commKey struct {
	Pg     PgID
	Action pg.Action
}

// Definition is the immutable, built channel system: a fixed set of member
// PG definitions, channel declarations, and the communications table
// binding (PgID, pg.Action) pairs to channel roles.
type Definition struct {
	pgs            []*pg.Definition
	channelTypes   []value.Type
	channelCaps    []*int // nil = unbounded
	communications map[commKey]Communication
}

func (d *Definition) NumPgs() int      { return len(d.pgs) }
func (d *Definition) NumChannels() int { return len(d.channelTypes) }

func (d *Definition) Pg(p PgID) *pg.Definition { return d.pgs[p.index()] }

func (d *Definition) ChannelType(ch Channel) value.Type { return d.channelTypes[ch.index()] }

// ChannelCapacity reports the channel's bound and whether it is bounded at
// all (ok == false means unbounded).
func (d *Definition) ChannelCapacity(ch Channel) (cap int, ok bool) {
	c := d.channelCaps[ch.index()]
	if c == nil {
		return 0, false
	}
	return *c, true
}
