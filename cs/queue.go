package cs

import (
	"fmt"

	"github.com/pouyapd/scanmc/errs"
	"github.com/pouyapd/scanmc/value"
)

// queue is a FIFO of channel payloads backed by a plain slice. Run-local
// state is owned by exactly one goroutine for the duration of a run (see
// Instance.Clone and DESIGN.md), so there is no concurrent access to guard
// against here — a lock-free ring buffer would buy nothing a slice doesn't
// already give for free.
type queue struct {
	capacity *int // nil = unbounded
	items    []value.Val
}

func newQueue(capacity *int) queue {
	return queue{capacity: capacity}
}

func (q queue) Len() int { return len(q.items) }

func (q queue) IsEmpty() bool { return len(q.items) == 0 }

func (q queue) IsFull() bool {
	return q.capacity != nil && len(q.items) >= *q.capacity
}

func (q *queue) Push(v value.Val) error {
	if q.IsFull() {
		return fmt.Errorf("%w", errs.ErrOutOfCapacity)
	}
	q.items = append(q.items, v)
	return nil
}

func (q *queue) Pop() (value.Val, error) {
	if q.IsEmpty() {
		return value.Val{}, fmt.Errorf("%w", errs.ErrEmpty)
	}
	v := q.items[0]
	q.items = q.items[1:]
	return v, nil
}

func (q queue) Clone() queue {
	return queue{capacity: q.capacity, items: append([]value.Val(nil), q.items...)}
}
