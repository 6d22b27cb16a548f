// Package cs implements the channel system engine: parallel composition of
// program graphs over named, typed, bounded/unbounded FIFO channels. A CS
// preserves each member PG's local semantics and additionally admits
// communication actions (Send/Receive/ProbeEmptyQueue/ProbeFullQueue)
// mediated by shared channel queues.
package cs

import "math"

type PgID struct{ idx uint16 }
type Channel struct{ idx uint16 }

func (p PgID) index() int    { return int(p.idx) }
func (c Channel) index() int { return int(c.idx) }

// Time mirrors pg.Time: a single global clock domain shared by every member
// PG's local clocks and by the channel system's own wait steps.
type Time = uint64

const TimeMax = math.MaxUint64

// MessageKind identifies the role a CS-level action plays at a channel.
type MessageKind int

const (
	MessageSend MessageKind = iota
	MessageReceive
	MessageProbeEmpty
	MessageProbeFull
)

// Communication is the resolved binding of a (PgID, pg.Action) action to a
// channel and role, looked up from the CS's Communications table during
// admissibility scanning and commit.
type Communication struct {
	Channel Channel
	Kind    MessageKind
}

// EventType classifies what a committed transition did, for the event
// stream consumed by the monitor and any trace sink.
type EventType int

const (
	EventLocal EventType = iota
	EventSend
	EventReceive
	EventProbeEmpty
	EventProbeFull
)

// Event describes one committed transition for the event stream: which
// member PG moved, the channel involved (for a communication), and what
// kind of step it was. It does not carry the fired pg.Action itself.
type Event struct {
	Pg      PgID
	Channel Channel
	Type    EventType
}
