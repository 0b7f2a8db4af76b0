// Package settlement talks to an external settlement engine over HTTP,
// the way an ILP connector hands off "move N units to this counterparty
// outside the Prepare/Fulfill/Reject flow" to a specialized process.
// The client shape is grounded on the teacher's FacilitatorClient
// (its facilitator package): a thin struct around
// *http.Client plus a retry policy, with no state of its own.
package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/interledger-go/ilp-node/internal/retry"
)

// ErrEngineUnavailable wraps transport-level failures talking to the
// settlement engine, so callers can distinguish "try again" from
// "the engine rejected this settlement".
var ErrEngineUnavailable = errors.New("settlement: engine unavailable")

// Request describes a single outgoing settlement instruction.
type Request struct {
	AccountID string `json:"-"`
	Amount    string `json:"amount"`
	Scale     uint8  `json:"scale"`
}

// Response is what the settlement engine returns for a settlement it
// accepted.
type Response struct {
	SettlementID string `json:"settlementId"`
}

// Client sends settlement instructions to a single settlement engine
// instance reachable at BaseURL.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	RetryCfg   retry.Config
}

// NewClient builds a Client with the default retry policy.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: http.DefaultClient,
		RetryCfg:   retry.DefaultConfig,
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Settle instructs the engine to move req.Amount of the configured asset
// to the counterparty behind req.AccountID, retrying on transport errors.
func (c *Client) Settle(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("settlement: encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/accounts/%s/settlements", c.BaseURL, req.AccountID)

	return retry.Do(ctx, c.RetryCfg, func(err error) bool {
		return errors.Is(err, ErrEngineUnavailable)
	}, func() (Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return Response{}, fmt.Errorf("settlement: building request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		httpResp, err := c.httpClient().Do(httpReq)
		if err != nil {
			return Response{}, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
		}
		defer httpResp.Body.Close()

		if httpResp.StatusCode >= 500 {
			return Response{}, fmt.Errorf("%w: status %d", ErrEngineUnavailable, httpResp.StatusCode)
		}
		if httpResp.StatusCode != http.StatusOK {
			return Response{}, parseEngineError(httpResp)
		}

		var settleResp Response
		if err := json.NewDecoder(httpResp.Body).Decode(&settleResp); err != nil {
			return Response{}, fmt.Errorf("settlement: decoding response: %w", err)
		}
		return settleResp, nil
	})
}

func parseEngineError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<12))
	var payload struct {
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Reason != "" {
		return fmt.Errorf("settlement: rejected: status %d, reason: %s", resp.StatusCode, payload.Reason)
	}
	return fmt.Errorf("settlement: rejected: status %d", resp.StatusCode)
}

// defaultTimeout bounds a single settlement call when the caller's
// context carries no deadline of its own.
const defaultTimeout = 10 * time.Second

// WithDefaultTimeout returns ctx unchanged if it already has a deadline,
// otherwise wraps it with defaultTimeout.
func WithDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultTimeout)
}
