package validator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"time"

	"github.com/interledger-go/ilp-node/internal/clock"
	"github.com/interledger-go/ilp-node/pkg/ilp"
	"github.com/interledger-go/ilp-node/pkg/packet"
	"go.uber.org/zap"
)

// outgoingTimeoutFallback bounds the downstream call when the packet's
// remaining lifetime cannot be trusted as a duration. It is a safety net,
// not a default: a well-formed positive time_left always takes precedence
// (spec.md §4.2 step 1b, §5 "Timeouts").
const outgoingTimeoutFallback = 30 * time.Second

// Outgoing imposes a deadline on the downstream call equal to the Prepare's
// remaining lifetime, and verifies that any Fulfill the downstream returns
// satisfies the Prepare's execution condition (spec.md §4.2).
type Outgoing[A any] struct {
	next   ilp.OutgoingHandler[A]
	clock  clock.Clock
	logger *zap.Logger
}

var _ ilp.OutgoingHandler[struct{}] = (*Outgoing[struct{}])(nil)

// NewOutgoing wraps next with deadline enforcement and Fulfill verification.
// The returned handler is safe for concurrent use by any number of
// in-flight requests.
func NewOutgoing[A any](next ilp.OutgoingHandler[A], opts ...Option) ilp.OutgoingHandler[A] {
	o := newOptions(opts)
	return &Outgoing[A]{next: next, clock: o.clock, logger: o.logger}
}

// SendRequest implements the state machine from spec.md §4.2: reject
// immediately if the Prepare has no time left; otherwise race the
// downstream call against a timer bounded by that remaining time, and
// verify SHA256(fulfillment) against the execution condition before
// returning any Fulfill to the caller.
func (v *Outgoing[A]) SendRequest(ctx context.Context, req ilp.OutgoingRequest[A]) (ilp.Result, error) {
	now := v.clock.Now()
	condition := req.Prepare.ExecutionCondition()
	timeLeft := req.Prepare.ExpiresAt().Sub(now)

	if timeLeft <= 0 {
		v.logger.Error("outgoing packet expired",
			zap.Int64("expired_ms_ago", (-timeLeft).Milliseconds()),
		)
		return ilp.Rejected(packet.RejectBuilder{Code: packet.R00TransferTimedOut}.Build()), nil
	}

	bound := boundedTimeout(timeLeft)
	deadlineCtx, cancel := v.clock.WithTimeout(ctx, bound)
	defer cancel()

	type outcome struct {
		result ilp.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := v.next.SendRequest(deadlineCtx, req)
		done <- outcome{result, err}
	}()

	select {
	case <-deadlineCtx.Done():
		// Either the bound elapsed or the caller dropped the request;
		// either way next's future is abandoned here (spec.md §5
		// "Cancellation semantics" — the downstream future and timer are
		// both released once this select returns).
		v.logger.Error("outgoing request timed out",
			zap.Int64("time_left_ms", timeLeft.Milliseconds()),
		)
		return ilp.Rejected(packet.RejectBuilder{Code: packet.R00TransferTimedOut}.Build()), nil

	case o := <-done:
		if o.err != nil {
			return ilp.Result{}, o.err
		}
		if reject, ok := o.result.Reject(); ok {
			return ilp.Rejected(reject), nil
		}

		fulfill, _ := o.result.Fulfill()
		fulfillment := fulfill.Fulfillment()
		computed := sha256.Sum256(fulfillment[:])

		// Bytewise equality is sufficient here: the execution condition is
		// public protocol data, not a secret, so there is nothing for a
		// constant-time comparison to protect (spec.md §9 open question).
		if computed == condition {
			return ilp.Fulfilled(fulfill), nil
		}

		v.logger.Error("fulfillment did not match condition",
			zap.String("fulfillment", hex.EncodeToString(fulfillment[:])),
			zap.String("computed_hash", hex.EncodeToString(computed[:])),
			zap.String("condition", hex.EncodeToString(condition[:])),
		)
		return ilp.Rejected(packet.RejectBuilder{
			Code:    packet.F09InvalidPeerResponse,
			Message: []byte("Fulfillment did not match condition"),
		}.Build()), nil
	}
}

// boundedTimeout returns timeLeft unchanged unless it is not a trustworthy
// duration, in which case it falls back to outgoingTimeoutFallback.
//
// Go's time.Time.Sub saturates to the minimum/maximum representable
// Duration instead of failing when the true difference overflows — that
// saturation is this port's analog of the signed-delta-to-duration
// conversion failure spec.md §4.2/§9 guards against in the source
// language. The already-expired branch is always taken first by the
// caller, so this fallback can never mask an expired packet.
func boundedTimeout(timeLeft time.Duration) time.Duration {
	if timeLeft == time.Duration(math.MaxInt64) || timeLeft == time.Duration(math.MinInt64) {
		return outgoingTimeoutFallback
	}
	return timeLeft
}
