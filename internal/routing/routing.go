// Package routing defines the node's interface to CCP route broadcast,
// without (yet) wiring a transport for it. Every other collaborator
// package in this node (settlement, exchangerate, store) maps onto a
// concrete third-party dependency from the example corpus; CCP does
// not — see DESIGN.md for why the one candidate library in the example
// pack (a Kafka client) doesn't fit this role. NoopBroadcaster keeps the
// interface load-bearing in the meantime: a connector built against
// this node links a working routing.Broadcaster in, it just isn't this
// package's job to provide one yet.
package routing

import "context"

// Route is a single entry this node would advertise to peers: reachable
// address prefix, and the route's relative cost.
type Route struct {
	Prefix string
	Cost   uint32
}

// Broadcaster advertises this node's routing table to its peers. The
// validator and transports never call this directly — only the
// connector's route manager does, on route-table changes.
type Broadcaster interface {
	Broadcast(ctx context.Context, routes []Route) error
}

// NoopBroadcaster discards every broadcast. It satisfies Broadcaster so
// the node can run with route broadcast disabled rather than requiring
// every caller to nil-check.
type NoopBroadcaster struct{}

// Broadcast implements Broadcaster by doing nothing.
func (NoopBroadcaster) Broadcast(ctx context.Context, routes []Route) error {
	return nil
}

var _ Broadcaster = NoopBroadcaster{}
