package packet

import (
	"testing"
	"time"
)

func TestPrepareBuilder(t *testing.T) {
	expires := time.Now().Add(30 * time.Second)
	cond := [32]byte{1, 2, 3}

	p := PrepareBuilder{
		Destination:        "g.example.alice",
		Amount:             100,
		ExpiresAt:          expires,
		ExecutionCondition: cond,
		Data:               []byte("test data"),
	}.Build()

	if p.Destination() != "g.example.alice" {
		t.Errorf("Destination() = %q, want %q", p.Destination(), "g.example.alice")
	}
	if p.Amount() != 100 {
		t.Errorf("Amount() = %d, want 100", p.Amount())
	}
	if !p.ExpiresAt().Equal(expires) {
		t.Errorf("ExpiresAt() = %v, want %v", p.ExpiresAt(), expires)
	}
	if p.ExecutionCondition() != cond {
		t.Errorf("ExecutionCondition() = %v, want %v", p.ExecutionCondition(), cond)
	}
	if string(p.Data()) != "test data" {
		t.Errorf("Data() = %q, want %q", p.Data(), "test data")
	}
}

func TestFulfillBuilder(t *testing.T) {
	fulfillment := [32]byte{}
	f := FulfillBuilder{Fulfillment: fulfillment, Data: []byte("data")}.Build()

	if f.Fulfillment() != fulfillment {
		t.Errorf("Fulfillment() = %v, want %v", f.Fulfillment(), fulfillment)
	}
	if string(f.Data()) != "data" {
		t.Errorf("Data() = %q, want %q", f.Data(), "data")
	}
}

func TestRejectBuilder(t *testing.T) {
	tests := []struct {
		name        string
		code        ErrorCode
		message     string
		triggeredBy string
	}{
		{"timed out", R00TransferTimedOut, "", ""},
		{"invalid peer response", F09InvalidPeerResponse, "Fulfillment did not match condition", "g.connector1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RejectBuilder{
				Code:        tt.code,
				Message:     []byte(tt.message),
				TriggeredBy: tt.triggeredBy,
			}.Build()

			if r.Code() != tt.code {
				t.Errorf("Code() = %v, want %v", r.Code(), tt.code)
			}
			if string(r.Message()) != tt.message {
				t.Errorf("Message() = %q, want %q", r.Message(), tt.message)
			}
			if r.TriggeredBy() != tt.triggeredBy {
				t.Errorf("TriggeredBy() = %q, want %q", r.TriggeredBy(), tt.triggeredBy)
			}
		})
	}
}

func TestErrorCodeString(t *testing.T) {
	if R00TransferTimedOut.String() != "R00" {
		t.Errorf("R00TransferTimedOut.String() = %q, want %q", R00TransferTimedOut.String(), "R00")
	}
	if F09InvalidPeerResponse.String() != "F09" {
		t.Errorf("F09InvalidPeerResponse.String() = %q, want %q", F09InvalidPeerResponse.String(), "F09")
	}
}
