// Package ilp defines the request/response abstraction shared by every
// middleware in an Interledger node's packet pipeline: IncomingHandler and
// OutgoingHandler, the polymorphic stages a Prepare passes through on its
// way across a hop, and Result, the Fulfill-or-Reject outcome both
// produce.
//
// The account type A is carried as a type parameter rather than inspected:
// nothing in this package, or in internal/validator, ever looks inside A.
// It only needs to flow through untouched from the caller to the
// downstream handler.
package ilp

import (
	"context"

	"github.com/interledger-go/ilp-node/pkg/packet"
)

// Result is the tagged union a handler resolves to: exactly one of Fulfill
// or Reject is set. Both are successful protocol outcomes (spec.md §9);
// neither is carried as a Go error.
type Result struct {
	fulfill *packet.Fulfill
	reject  *packet.Reject
}

// Fulfilled wraps a Fulfill packet as a Result.
func Fulfilled(f packet.Fulfill) Result { return Result{fulfill: &f} }

// Rejected wraps a Reject packet as a Result.
func Rejected(r packet.Reject) Result { return Result{reject: &r} }

// IsFulfill reports whether the result is a Fulfill.
func (r Result) IsFulfill() bool { return r.fulfill != nil }

// IsReject reports whether the result is a Reject.
func (r Result) IsReject() bool { return r.reject != nil }

// Fulfill returns the wrapped Fulfill and true, or the zero Fulfill and
// false if the result is a Reject.
func (r Result) Fulfill() (packet.Fulfill, bool) {
	if r.fulfill == nil {
		return packet.Fulfill{}, false
	}
	return *r.fulfill, true
}

// Reject returns the wrapped Reject and true, or the zero Reject and false
// if the result is a Fulfill.
func (r Result) Reject() (packet.Reject, bool) {
	if r.reject == nil {
		return packet.Reject{}, false
	}
	return *r.reject, true
}

// IncomingRequest is a Prepare arriving from a peer, together with the
// account it arrived from.
type IncomingRequest[A any] struct {
	From    A
	Prepare packet.Prepare
}

// OutgoingRequest is a Prepare about to be dispatched to a peer, together
// with the accounts it is being forwarded between.
type OutgoingRequest[A any] struct {
	From    A
	To      A
	Prepare packet.Prepare
}

// IncomingHandler processes a Prepare arriving from a peer and resolves to
// a Fulfill or a Reject. A non-nil error indicates a runtime failure in the
// handler chain itself, never a protocol-level refusal — those are always
// expressed as a Reject Result (spec.md §7).
type IncomingHandler[A any] interface {
	HandleRequest(ctx context.Context, req IncomingRequest[A]) (Result, error)
}

// OutgoingHandler dispatches a Prepare to a peer and resolves to the peer's
// Fulfill or Reject.
type OutgoingHandler[A any] interface {
	SendRequest(ctx context.Context, req OutgoingRequest[A]) (Result, error)
}

// IncomingHandlerFunc adapts a function to an IncomingHandler, the way
// http.HandlerFunc adapts a function to an http.Handler.
type IncomingHandlerFunc[A any] func(ctx context.Context, req IncomingRequest[A]) (Result, error)

func (f IncomingHandlerFunc[A]) HandleRequest(ctx context.Context, req IncomingRequest[A]) (Result, error) {
	return f(ctx, req)
}

// OutgoingHandlerFunc adapts a function to an OutgoingHandler.
type OutgoingHandlerFunc[A any] func(ctx context.Context, req OutgoingRequest[A]) (Result, error)

func (f OutgoingHandlerFunc[A]) SendRequest(ctx context.Context, req OutgoingRequest[A]) (Result, error) {
	return f(ctx, req)
}
