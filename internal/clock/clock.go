// Package clock wraps github.com/benbjohnson/clock with the one extra
// operation the rest of the node needs that the upstream library doesn't
// provide: a context deadline driven by the same clock as Now() and
// After(), so tests can bound a goroutine by a mock clock instead of
// real wall-clock time (spec.md §6's "timer capable of bounding a
// future"). Production code uses the real wall clock; tests use
// NewMock() to advance time deterministically without sleeping.
package clock

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Clock is the current-UTC-instant-plus-timer abstraction spec.md §6
// requires: Now/After/etc. are the time source and raw timer,
// WithTimeout is the context-bounded future.
type Clock interface {
	clock.Clock
	WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc)
}

type realClock struct {
	clock.Clock
}

// New returns the real, wall-clock-backed Clock.
func New() Clock { return realClock{Clock: clock.New()} }

func (realClock) WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

// Mock is a fake Clock whose Now/After/WithTimeout only advance when
// Add or Set is called, used to make deadline and timeout tests
// deterministic.
type Mock struct {
	*clock.Mock
}

// NewMock returns a Mock initialized to the Unix epoch.
func NewMock() *Mock { return &Mock{Mock: clock.NewMock()} }

// WithTimeout returns a context cancelled when either parent is
// cancelled or timeout elapses on this Mock's notion of time, whichever
// comes first. The deadline timer is registered against the mock clock,
// so it only fires in response to Add/Set, never real time passing.
func (m *Mock) WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	timer := m.Mock.Timer(timeout)

	var once sync.Once
	stop := make(chan struct{})
	stopFn := func() { once.Do(func() { close(stop) }) }

	go func() {
		select {
		case <-timer.C:
			cancel()
		case <-stop:
			timer.Stop()
		case <-ctx.Done():
			timer.Stop()
		}
	}()

	return ctx, func() {
		stopFn()
		cancel()
	}
}
