package ilp

import "errors"

// Standard node-level error definitions. These are Go-level failures in the
// surrounding plumbing (config, storage, transport decode), never
// protocol-level refusals — a protocol refusal is always a packet.Reject
// value, not one of these (spec.md §7).
var (
	// ErrAccountNotFound indicates the referenced account does not exist
	// in the account store.
	ErrAccountNotFound = errors.New("ilp: account not found")

	// ErrMalformedPacket indicates a wire frame could not be decoded into
	// a Prepare, Fulfill, or Reject.
	ErrMalformedPacket = errors.New("ilp: malformed packet")

	// ErrNoRoute indicates the destination address did not match any
	// configured route.
	ErrNoRoute = errors.New("ilp: no route to destination")

	// ErrSettlementUnavailable indicates the settlement engine could not
	// be reached.
	ErrSettlementUnavailable = errors.New("ilp: settlement engine unavailable")

	// ErrConfigInvalid indicates the merged node configuration failed
	// validation.
	ErrConfigInvalid = errors.New("ilp: invalid configuration")
)
