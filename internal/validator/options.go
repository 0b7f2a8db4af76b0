// Package validator implements the two middleware adapters that enforce
// ILP's timing and cryptographic guarantees on every hop: Incoming rejects
// expired Prepares at the boundary, Outgoing bounds the downstream call by
// the packet's remaining lifetime and verifies the returned Fulfill against
// the Prepare's execution condition.
//
// Both adapters are stateless beyond the handler they wrap: no field is
// ever written after construction, so a single instance is safe to use
// concurrently across any number of in-flight requests.
package validator

import (
	"github.com/interledger-go/ilp-node/internal/clock"
	"go.uber.org/zap"
)

type options struct {
	clock  clock.Clock
	logger *zap.Logger
}

func newOptions(opts []Option) options {
	o := options{
		clock:  clock.New(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures an IncomingValidator or OutgoingValidator. Neither
// constructor requires one: spec.md §6 calls for "no configuration", so
// both default to the real wall clock and a no-op logger. Options exist
// only for dependency injection (a fake clock and an observable logger in
// tests), not operator-facing tuning.
type Option func(*options)

// WithClock overrides the time source and timer used to evaluate
// expiry and bound the downstream call.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger overrides the structured logger used for the three
// error-level failure records spec.md §7 requires.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}
