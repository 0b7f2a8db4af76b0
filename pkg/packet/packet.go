// Package packet defines the ILP Prepare, Fulfill, and Reject wire entities
// exchanged hop-by-hop across an Interledger payment path, along with the
// standard three-character ILP error codes. It has no dependency on the
// transport or service layers that move these values between peers.
package packet

import "time"

// ErrorCode is a three-character ILP error code, per the ILP error taxonomy
// (https://interledger.org/rfcs/0027-interledger-protocol-4/#error-codes).
type ErrorCode string

const (
	// R00TransferTimedOut is returned when a Prepare's expiry, or a hop's
	// own forwarding deadline, has passed.
	R00TransferTimedOut ErrorCode = "R00"

	// F09InvalidPeerResponse is returned when a peer's Fulfill does not
	// satisfy the Prepare's execution condition.
	F09InvalidPeerResponse ErrorCode = "F09"

	// F02UnreachableAccount is returned when a Prepare's destination does
	// not match any account this node can forward to or fulfill locally.
	F02UnreachableAccount ErrorCode = "F02"

	// F00BadRequest is returned when a Prepare is structurally invalid.
	F00BadRequest ErrorCode = "F00"

	// T00InternalError is returned when a node fails in a way unrelated
	// to the Prepare itself, and the sender may retry.
	T00InternalError ErrorCode = "T00"

	// T01PeerUnreachable is returned when the next hop could not be
	// reached at all, as opposed to responding with an invalid Fulfill.
	T01PeerUnreachable ErrorCode = "T01"
)

func (c ErrorCode) String() string { return string(c) }

// Prepare is the conditional-payment request packet. It is immutable once
// built and is only ever read by the packages that forward it.
type Prepare struct {
	destination        string
	amount             uint64
	expiresAt          time.Time
	executionCondition [32]byte
	data               []byte
}

// PrepareBuilder constructs a Prepare from its wire fields.
type PrepareBuilder struct {
	Destination        string
	Amount             uint64
	ExpiresAt          time.Time
	ExecutionCondition [32]byte
	Data               []byte
}

// Build returns the immutable Prepare described by the builder.
func (b PrepareBuilder) Build() Prepare {
	return Prepare{
		destination:        b.Destination,
		amount:             b.Amount,
		expiresAt:          b.ExpiresAt,
		executionCondition: b.ExecutionCondition,
		data:               b.Data,
	}
}

func (p Prepare) Destination() string          { return p.destination }
func (p Prepare) Amount() uint64               { return p.amount }
func (p Prepare) ExpiresAt() time.Time         { return p.expiresAt }
func (p Prepare) ExecutionCondition() [32]byte { return p.executionCondition }
func (p Prepare) Data() []byte                 { return p.data }

// Fulfill is the success response to a Prepare, carrying the 32-byte
// preimage of its execution condition.
type Fulfill struct {
	fulfillment [32]byte
	data        []byte
}

// FulfillBuilder constructs a Fulfill from its wire fields.
type FulfillBuilder struct {
	Fulfillment [32]byte
	Data        []byte
}

// Build returns the immutable Fulfill described by the builder.
func (b FulfillBuilder) Build() Fulfill {
	return Fulfill{fulfillment: b.Fulfillment, data: b.Data}
}

func (f Fulfill) Fulfillment() [32]byte { return f.fulfillment }
func (f Fulfill) Data() []byte          { return f.data }

// Reject is the failure response to a Prepare, carrying a standard ILP
// error code and diagnostic fields.
type Reject struct {
	code        ErrorCode
	message     []byte
	triggeredBy string
	data        []byte
}

// RejectBuilder produces bit-exact Reject packets given (code, message,
// triggered_by, data), per spec.md §6's RejectBuilder collaborator.
type RejectBuilder struct {
	Code        ErrorCode
	Message     []byte
	TriggeredBy string
	Data        []byte
}

// Build returns the immutable Reject described by the builder.
func (b RejectBuilder) Build() Reject {
	return Reject{
		code:        b.Code,
		message:     b.Message,
		triggeredBy: b.TriggeredBy,
		data:        b.Data,
	}
}

func (r Reject) Code() ErrorCode     { return r.code }
func (r Reject) Message() []byte     { return r.message }
func (r Reject) TriggeredBy() string { return r.triggeredBy }
func (r Reject) Data() []byte        { return r.data }
