package exchangerate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoller_RunFetchesImmediatelyAndOnInterval(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value":1.25}`))
	}))
	defer server.Close()

	poller := NewPoller(server.URL, 100, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		poller.Run(ctx, "USD", "XRP", 20*time.Millisecond)
		close(done)
	}()
	<-done

	rate, ok := poller.Rate("USD", "XRP")
	if !ok {
		t.Fatal("Rate() ok = false, want true after Run")
	}
	if rate.Value != 1.25 {
		t.Errorf("Rate().Value = %v, want 1.25", rate.Value)
	}
	if atomic.LoadInt32(&calls) < 2 {
		t.Errorf("handler called %d times, want at least 2 (initial + interval)", calls)
	}
}

func TestPoller_RateUnknownPairNotOK(t *testing.T) {
	poller := NewPoller("http://example.invalid", 10, nil)
	if _, ok := poller.Rate("USD", "EUR"); ok {
		t.Error("Rate() ok = true for a pair never fetched, want false")
	}
}

func TestPoller_RunStopsOnContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value":1}`))
	}))
	defer server.Close()

	poller := NewPoller(server.URL, 100, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := poller.Run(ctx, "USD", "XRP", time.Second)
	if err == nil {
		t.Error("Run() error = nil, want context cancellation error")
	}
}
