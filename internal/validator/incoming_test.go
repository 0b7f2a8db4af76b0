package validator

import (
	"context"
	"testing"
	"time"

	"github.com/interledger-go/ilp-node/internal/clock"
	"github.com/interledger-go/ilp-node/pkg/ilp"
	"github.com/interledger-go/ilp-node/pkg/packet"
)

// cond0 is SHA256(0x00 x 32), the fixed condition used throughout spec.md §8.
var cond0 = [32]byte{
	0x66, 0x68, 0x7a, 0xad, 0xf8, 0x62, 0xbd, 0x77,
	0x6c, 0x8f, 0xc1, 0x8b, 0x8e, 0x9f, 0x8e, 0x20,
	0x08, 0x97, 0x14, 0x85, 0x6e, 0xe2, 0x33, 0xb3,
	0x90, 0x2a, 0x59, 0x1d, 0x0d, 0x5f, 0x29, 0x25,
}

type fakeIncoming struct {
	calls  int
	result ilp.Result
	err    error
}

func (f *fakeIncoming) HandleRequest(ctx context.Context, req ilp.IncomingRequest[string]) (ilp.Result, error) {
	f.calls++
	return f.result, f.err
}

func fulfillResult(fulfillment [32]byte) ilp.Result {
	return ilp.Fulfilled(packet.FulfillBuilder{Fulfillment: fulfillment, Data: []byte("test data")}.Build())
}

func TestIncoming_LetsThroughUnexpiredPrepare(t *testing.T) {
	mock := clock.NewMock()
	next := &fakeIncoming{result: fulfillResult([32]byte{})}
	v := NewIncoming[string](next, WithClock(mock))

	prepare := packet.PrepareBuilder{
		Destination:        "g.example.alice",
		Amount:             100,
		ExpiresAt:          mock.Now().Add(30 * time.Second),
		ExecutionCondition: cond0,
		Data:               []byte("test data"),
	}.Build()

	result, err := v.HandleRequest(context.Background(), ilp.IncomingRequest[string]{From: "peer", Prepare: prepare})
	if err != nil {
		t.Fatalf("HandleRequest() error = %v", err)
	}
	if !result.IsFulfill() {
		t.Fatalf("HandleRequest() = reject, want the fulfill next returned")
	}
	if next.calls != 1 {
		t.Fatalf("next called %d times, want 1", next.calls)
	}
}

func TestIncoming_RejectsExpiredPrepare(t *testing.T) {
	mock := clock.NewMock()
	next := &fakeIncoming{result: fulfillResult([32]byte{})}
	v := NewIncoming[string](next, WithClock(mock))

	prepare := packet.PrepareBuilder{
		Destination:        "g.example.alice",
		Amount:             100,
		ExpiresAt:          mock.Now().Add(-30 * time.Second),
		ExecutionCondition: cond0,
		Data:               []byte("test data"),
	}.Build()

	result, err := v.HandleRequest(context.Background(), ilp.IncomingRequest[string]{From: "peer", Prepare: prepare})
	if err != nil {
		t.Fatalf("HandleRequest() error = %v", err)
	}
	reject, ok := result.Reject()
	if !ok {
		t.Fatalf("HandleRequest() = fulfill, want reject")
	}
	if reject.Code() != packet.R00TransferTimedOut {
		t.Errorf("reject code = %v, want %v", reject.Code(), packet.R00TransferTimedOut)
	}
	if next.calls != 0 {
		t.Fatalf("next called %d times, want 0", next.calls)
	}
}

func TestIncoming_BoundaryExpiryIsAdmitted(t *testing.T) {
	// expires_at == now satisfies "expires_at >= now" (spec.md §3 invariant),
	// so the boundary instant itself must still be admitted downstream.
	mock := clock.NewMock()
	next := &fakeIncoming{result: fulfillResult([32]byte{})}
	v := NewIncoming[string](next, WithClock(mock))

	prepare := packet.PrepareBuilder{
		ExpiresAt:          mock.Now(),
		ExecutionCondition: cond0,
	}.Build()

	if _, err := v.HandleRequest(context.Background(), ilp.IncomingRequest[string]{Prepare: prepare}); err != nil {
		t.Fatalf("HandleRequest() error = %v", err)
	}
	if next.calls != 1 {
		t.Fatalf("next called %d times, want 1", next.calls)
	}
}
