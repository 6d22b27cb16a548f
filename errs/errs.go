// Package errs collects the sentinel errors shared across value, pg, cs,
// and sim. Every package wraps these with fmt.Errorf("%w: ...")
// for context; callers compare with errors.Is/errors.As, never by string.
package errs

import "errors"

var (
	// value/expression algebra
	ErrMalformed    = errors.New("malformed expression")
	ErrTypeMismatch = errors.New("type mismatch")
	ErrArithmetic   = errors.New("arithmetic error")

	// program graph builder/runtime
	ErrMissingLocation = errors.New("missing location")
	ErrMissingAction    = errors.New("missing action")
	ErrMissingVar       = errors.New("missing variable")
	ErrMissingClock     = errors.New("missing clock")

	ErrLocationNotInPg = errors.New("location does not belong to this program graph")
	ErrActionNotInPg   = errors.New("action does not belong to this program graph")
	ErrVarNotInPg      = errors.New("variable does not belong to this program graph")

	ErrActionIsCommunication  = errors.New("action already carries a send or receive effect")
	ErrEffectOnCommunication  = errors.New("cannot attach assignment effects to a send or receive action")
	ErrUnsatisfiedGuard       = errors.New("no enabled transition satisfies the current valuation")
	ErrMismatchingPostStates  = errors.New("post-state count does not match current-state count")
	ErrInvariant              = errors.New("location invariant violated in post-state")
	ErrHandshakeUnsupported   = errors.New("handshake channels (capacity zero) are not supported")

	// channel system builder/runtime
	ErrMissingPg      = errors.New("missing program graph")
	ErrMissingChannel = errors.New("missing channel")

	ErrCommunication           = errors.New("action is not registered as a channel communication")
	ErrNotSend                 = errors.New("action is not a send communication")
	ErrNotReceive              = errors.New("action is not a receive communication")
	ErrOutOfCapacity           = errors.New("channel is at full capacity")
	ErrEmpty                   = errors.New("channel is empty")
	ErrProbingHandshakeChannel = errors.New("cannot probe a handshake channel")
	ErrProbingInfiniteQueue    = errors.New("cannot probe full on an unbounded channel")
)
