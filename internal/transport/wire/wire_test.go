package wire

import (
	"testing"
	"time"

	"github.com/interledger-go/ilp-node/pkg/packet"
)

func TestPrepareRoundTrip(t *testing.T) {
	expiresAt := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	var condition [32]byte
	for i := range condition {
		condition[i] = byte(i)
	}
	original := packet.PrepareBuilder{
		Destination:        "g.example.alice",
		Amount:             1000,
		ExpiresAt:          expiresAt,
		ExecutionCondition: condition,
		Data:               []byte("hello"),
	}.Build()

	frame := EncodePrepare(original)
	decoded, err := DecodePrepare(frame)
	if err != nil {
		t.Fatalf("DecodePrepare() error = %v", err)
	}

	if decoded.Destination() != original.Destination() {
		t.Errorf("Destination = %q, want %q", decoded.Destination(), original.Destination())
	}
	if decoded.Amount() != original.Amount() {
		t.Errorf("Amount = %d, want %d", decoded.Amount(), original.Amount())
	}
	if !decoded.ExpiresAt().Equal(original.ExpiresAt()) {
		t.Errorf("ExpiresAt = %v, want %v", decoded.ExpiresAt(), original.ExpiresAt())
	}
	if decoded.ExecutionCondition() != original.ExecutionCondition() {
		t.Errorf("ExecutionCondition = %x, want %x", decoded.ExecutionCondition(), original.ExecutionCondition())
	}
	if string(decoded.Data()) != string(original.Data()) {
		t.Errorf("Data = %q, want %q", decoded.Data(), original.Data())
	}
}

func TestFulfillRoundTrip(t *testing.T) {
	var fulfillment [32]byte
	for i := range fulfillment {
		fulfillment[i] = byte(255 - i)
	}
	original := packet.FulfillBuilder{Fulfillment: fulfillment, Data: []byte("ok")}.Build()

	decoded, err := DecodeFulfill(EncodeFulfill(original))
	if err != nil {
		t.Fatalf("DecodeFulfill() error = %v", err)
	}
	if decoded.Fulfillment() != original.Fulfillment() {
		t.Errorf("Fulfillment mismatch")
	}
	if string(decoded.Data()) != "ok" {
		t.Errorf("Data = %q, want %q", decoded.Data(), "ok")
	}
}

func TestRejectRoundTrip(t *testing.T) {
	original := packet.RejectBuilder{
		Code:        packet.F09InvalidPeerResponse,
		Message:     []byte("fulfillment mismatch"),
		TriggeredBy: "g.example.connector",
		Data:        []byte("details"),
	}.Build()

	decoded, err := DecodeReject(EncodeReject(original))
	if err != nil {
		t.Fatalf("DecodeReject() error = %v", err)
	}
	if decoded.Code() != original.Code() {
		t.Errorf("Code = %v, want %v", decoded.Code(), original.Code())
	}
	if string(decoded.Message()) != string(original.Message()) {
		t.Errorf("Message = %q, want %q", decoded.Message(), original.Message())
	}
	if decoded.TriggeredBy() != original.TriggeredBy() {
		t.Errorf("TriggeredBy = %q, want %q", decoded.TriggeredBy(), original.TriggeredBy())
	}
}

func TestDecodePrepare_RejectsShortCondition(t *testing.T) {
	frame := PrepareFrame{
		Destination:        "g.example.alice",
		Amount:             "100",
		ExpiresAt:          time.Now().Format(time.RFC3339Nano),
		ExecutionCondition: "aabb",
	}
	if _, err := DecodePrepare(frame); err == nil {
		t.Error("DecodePrepare() error = nil, want error for short condition")
	}
}
