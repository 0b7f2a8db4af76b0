// Package wire defines the JSON frames the node's two ILP-over-HTTP
// transports (chihttp, ginhttp) exchange, and the conversions between
// those frames and pkg/packet's builder types. Keeping the conversions
// here means both transports encode/decode packets identically, the
// same way the teacher keeps its X-PAYMENT header parsing in one
// helpers package shared by every transport that needs it.
package wire

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/interledger-go/ilp-node/pkg/packet"
)

// PrepareFrame is the wire representation of a packet.Prepare.
type PrepareFrame struct {
	Destination        string `json:"destination"`
	Amount             string `json:"amount"`
	ExpiresAt          string `json:"expiresAt"`
	ExecutionCondition string `json:"executionCondition"`
	Data               string `json:"data,omitempty"`
}

// FulfillFrame is the wire representation of a packet.Fulfill.
type FulfillFrame struct {
	Fulfillment string `json:"fulfillment"`
	Data        string `json:"data,omitempty"`
}

// RejectFrame is the wire representation of a packet.Reject.
type RejectFrame struct {
	Code        string `json:"code"`
	Message     string `json:"message,omitempty"`
	TriggeredBy string `json:"triggeredBy,omitempty"`
	Data        string `json:"data,omitempty"`
}

// RequestFrame is the body of an incoming ILP-over-HTTP request: who it
// is from, and the Prepare packet to forward.
type RequestFrame struct {
	From    string       `json:"from"`
	Prepare PrepareFrame `json:"prepare"`
}

// ResultFrame is the body of an ILP-over-HTTP response: exactly one of
// Fulfill or Reject is populated, mirroring pkg/ilp.Result.
type ResultFrame struct {
	Fulfill *FulfillFrame `json:"fulfill,omitempty"`
	Reject  *RejectFrame  `json:"reject,omitempty"`
}

// DecodePrepare converts a wire frame into a packet.Prepare.
func DecodePrepare(f PrepareFrame) (packet.Prepare, error) {
	expiresAt, err := time.Parse(time.RFC3339Nano, f.ExpiresAt)
	if err != nil {
		return packet.Prepare{}, fmt.Errorf("wire: parsing expiresAt: %w", err)
	}

	var amount uint64
	if _, err := fmt.Sscanf(f.Amount, "%d", &amount); err != nil {
		return packet.Prepare{}, fmt.Errorf("wire: parsing amount %q: %w", f.Amount, err)
	}

	conditionBytes, err := hex.DecodeString(f.ExecutionCondition)
	if err != nil {
		return packet.Prepare{}, fmt.Errorf("wire: decoding executionCondition: %w", err)
	}
	if len(conditionBytes) != 32 {
		return packet.Prepare{}, fmt.Errorf("wire: executionCondition must be 32 bytes, got %d", len(conditionBytes))
	}
	var condition [32]byte
	copy(condition[:], conditionBytes)

	var data []byte
	if f.Data != "" {
		data, err = base64.StdEncoding.DecodeString(f.Data)
		if err != nil {
			return packet.Prepare{}, fmt.Errorf("wire: decoding data: %w", err)
		}
	}

	return packet.PrepareBuilder{
		Destination:        f.Destination,
		Amount:             amount,
		ExpiresAt:          expiresAt,
		ExecutionCondition: condition,
		Data:               data,
	}.Build(), nil
}

// EncodeFulfill converts a packet.Fulfill into its wire frame.
func EncodeFulfill(f packet.Fulfill) FulfillFrame {
	fulfillment := f.Fulfillment()
	frame := FulfillFrame{Fulfillment: hex.EncodeToString(fulfillment[:])}
	if data := f.Data(); len(data) > 0 {
		frame.Data = base64.StdEncoding.EncodeToString(data)
	}
	return frame
}

// EncodeReject converts a packet.Reject into its wire frame.
func EncodeReject(r packet.Reject) RejectFrame {
	frame := RejectFrame{
		Code:        r.Code().String(),
		Message:     string(r.Message()),
		TriggeredBy: r.TriggeredBy(),
	}
	if data := r.Data(); len(data) > 0 {
		frame.Data = base64.StdEncoding.EncodeToString(data)
	}
	return frame
}

// EncodePrepare converts a packet.Prepare into its wire frame, the
// reverse of DecodePrepare.
func EncodePrepare(p packet.Prepare) PrepareFrame {
	condition := p.ExecutionCondition()
	frame := PrepareFrame{
		Destination:        p.Destination(),
		Amount:             fmt.Sprintf("%d", p.Amount()),
		ExpiresAt:          p.ExpiresAt().UTC().Format(time.RFC3339Nano),
		ExecutionCondition: hex.EncodeToString(condition[:]),
	}
	if data := p.Data(); len(data) > 0 {
		frame.Data = base64.StdEncoding.EncodeToString(data)
	}
	return frame
}

// DecodeFulfill converts a wire frame into a packet.Fulfill.
func DecodeFulfill(f FulfillFrame) (packet.Fulfill, error) {
	fulfillmentBytes, err := hex.DecodeString(f.Fulfillment)
	if err != nil {
		return packet.Fulfill{}, fmt.Errorf("wire: decoding fulfillment: %w", err)
	}
	if len(fulfillmentBytes) != 32 {
		return packet.Fulfill{}, fmt.Errorf("wire: fulfillment must be 32 bytes, got %d", len(fulfillmentBytes))
	}
	var fulfillment [32]byte
	copy(fulfillment[:], fulfillmentBytes)

	var data []byte
	if f.Data != "" {
		data, err = base64.StdEncoding.DecodeString(f.Data)
		if err != nil {
			return packet.Fulfill{}, fmt.Errorf("wire: decoding data: %w", err)
		}
	}

	return packet.FulfillBuilder{Fulfillment: fulfillment, Data: data}.Build(), nil
}

// DecodeReject converts a wire frame into a packet.Reject.
func DecodeReject(f RejectFrame) (packet.Reject, error) {
	var data []byte
	if f.Data != "" {
		decoded, err := base64.StdEncoding.DecodeString(f.Data)
		if err != nil {
			return packet.Reject{}, fmt.Errorf("wire: decoding data: %w", err)
		}
		data = decoded
	}

	return packet.RejectBuilder{
		Code:        packet.ErrorCode(f.Code),
		Message:     []byte(f.Message),
		TriggeredBy: f.TriggeredBy,
		Data:        data,
	}.Build(), nil
}
