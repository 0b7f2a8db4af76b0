package validator

import (
	"context"
	"time"

	"github.com/interledger-go/ilp-node/internal/clock"
	"github.com/interledger-go/ilp-node/pkg/ilp"
	"github.com/interledger-go/ilp-node/pkg/packet"
	"go.uber.org/zap"
)

// Incoming rejects Prepares that have already expired before they reach the
// rest of the pipeline, shielding downstream stages (exchange rate,
// settlement) from doing futile work on stale packets (spec.md §4.1).
type Incoming[A any] struct {
	next   ilp.IncomingHandler[A]
	clock  clock.Clock
	logger *zap.Logger
}

var _ ilp.IncomingHandler[struct{}] = (*Incoming[struct{}])(nil)

// NewIncoming wraps next with expiry enforcement. The returned handler is
// safe for concurrent use by any number of in-flight requests.
func NewIncoming[A any](next ilp.IncomingHandler[A], opts ...Option) ilp.IncomingHandler[A] {
	o := newOptions(opts)
	return &Incoming[A]{next: next, clock: o.clock, logger: o.logger}
}

// HandleRequest admits req.Prepare downstream if it has not yet expired,
// otherwise resolves immediately to Reject(R00) without invoking next
// (spec.md §4.1, §8 invariants 1-2).
func (v *Incoming[A]) HandleRequest(ctx context.Context, req ilp.IncomingRequest[A]) (ilp.Result, error) {
	now := v.clock.Now()
	expiresAt := req.Prepare.ExpiresAt()

	if !expiresAt.Before(now) {
		return v.next.HandleRequest(ctx, req)
	}

	v.logger.Error("incoming packet expired",
		zap.Int64("expired_ms_ago", now.Sub(expiresAt).Milliseconds()),
		zap.String("expires_at", expiresAt.UTC().Format(time.RFC3339)),
		zap.String("now", now.UTC().Format(time.RFC3339)),
	)

	return ilp.Rejected(packet.RejectBuilder{Code: packet.R00TransferTimedOut}.Build()), nil
}
