package chihttp

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/interledger-go/ilp-node/internal/transport/wire"
	"github.com/interledger-go/ilp-node/pkg/ilp"
	"github.com/interledger-go/ilp-node/pkg/packet"
)

type stubIncomingHandler struct {
	result ilp.Result
}

func (s stubIncomingHandler) HandleRequest(_ context.Context, _ ilp.IncomingRequest[string]) (ilp.Result, error) {
	return s.result, nil
}

func stubResolver(account string) AccountResolver {
	return func(r *http.Request) (string, error) {
		return account, nil
	}
}

func TestHandleILP_Fulfills(t *testing.T) {
	var fulfillment [32]byte
	fulfillment[0] = 0x42
	result := ilp.Fulfilled(packet.FulfillBuilder{Fulfillment: fulfillment}.Build())

	router := NewRouter(stubIncomingHandler{result: result}, stubResolver("g.example.alice"), nil)

	var condition [32]byte
	body := wire.RequestFrame{
		From: "g.example.alice",
		Prepare: wire.PrepareFrame{
			Destination:        "g.example.bob",
			Amount:             "100",
			ExpiresAt:          time.Now().Add(time.Minute).Format(time.RFC3339Nano),
			ExecutionCondition: hex.EncodeToString(condition[:]),
		},
	}
	payload, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/ilp", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}

	var resp wire.ResultFrame
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Fulfill == nil {
		t.Fatal("response has no fulfill frame")
	}
	if resp.Fulfill.Fulfillment != hex.EncodeToString(fulfillment[:]) {
		t.Errorf("fulfillment = %q, want %q", resp.Fulfill.Fulfillment, hex.EncodeToString(fulfillment[:]))
	}
}

func TestHandleILP_RejectsUnauthorized(t *testing.T) {
	router := NewRouter(stubIncomingHandler{}, func(r *http.Request) (string, error) {
		return "", http.ErrNoCookie
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/ilp", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestHandleILP_RejectsMalformedBody(t *testing.T) {
	router := NewRouter(stubIncomingHandler{}, stubResolver("g.example.alice"), nil)

	req := httptest.NewRequest(http.MethodPost, "/ilp", bytes.NewReader([]byte(`not json`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
