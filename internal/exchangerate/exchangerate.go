// Package exchangerate polls an external rate provider in the background
// and serves the most recently observed rate for a currency pair. Go
// uber's ratelimit package bounds how often the provider is hit even if
// the configured poll interval is misconfigured to something far too
// small; internal/retry absorbs transient fetch failures in between.
package exchangerate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	"github.com/interledger-go/ilp-node/internal/retry"
)

// ErrProviderUnavailable wraps transport-level failures talking to the
// rate provider.
var ErrProviderUnavailable = errors.New("exchangerate: provider unavailable")

// Rate is the most recently observed price of Quote in terms of Base.
type Rate struct {
	Base      string
	Quote     string
	Value     float64
	FetchedAt time.Time
}

// Poller periodically refreshes exchange rates from a single HTTP
// provider endpoint and caches the latest value per pair.
type Poller struct {
	baseURL    string
	httpClient *http.Client
	limiter    ratelimit.Limiter
	retryCfg   retry.Config
	logger     *zap.Logger

	mu    sync.RWMutex
	rates map[string]Rate
}

// NewPoller builds a Poller that fetches from baseURL, throttled to at
// most ratePerSecond requests per second.
func NewPoller(baseURL string, ratePerSecond int, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		limiter:    ratelimit.New(ratePerSecond),
		retryCfg:   retry.DefaultConfig,
		logger:     logger,
		rates:      make(map[string]Rate),
	}
}

func pairKey(base, quote string) string {
	return base + "/" + quote
}

// Rate returns the most recently fetched rate for base/quote, if any has
// been fetched yet.
func (p *Poller) Rate(base, quote string) (Rate, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	r, ok := p.rates[pairKey(base, quote)]
	return r, ok
}

// Run fetches base/quote every interval until ctx is cancelled. It
// fetches once immediately before entering the interval loop, so
// callers observe a rate as soon as Run starts succeeding.
func (p *Poller) Run(ctx context.Context, base, quote string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := p.refresh(ctx, base, quote); err != nil {
		p.logger.Warn("initial exchange rate fetch failed",
			zap.String("base", base), zap.String("quote", quote), zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.refresh(ctx, base, quote); err != nil {
				p.logger.Warn("exchange rate refresh failed",
					zap.String("base", base), zap.String("quote", quote), zap.Error(err))
			}
		}
	}
}

func (p *Poller) refresh(ctx context.Context, base, quote string) error {
	p.limiter.Take()

	rate, err := retry.Do(ctx, p.retryCfg, func(err error) bool {
		return errors.Is(err, ErrProviderUnavailable)
	}, func() (Rate, error) {
		return p.fetch(ctx, base, quote)
	})
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.rates[pairKey(base, quote)] = rate
	p.mu.Unlock()
	return nil
}

func (p *Poller) fetch(ctx context.Context, base, quote string) (Rate, error) {
	url := fmt.Sprintf("%s/rates?base=%s&quote=%s", p.baseURL, base, quote)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Rate{}, fmt.Errorf("exchangerate: building request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Rate{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Rate{}, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return Rate{}, fmt.Errorf("exchangerate: provider rejected request: status %d", resp.StatusCode)
	}

	var payload struct {
		Value float64 `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Rate{}, fmt.Errorf("exchangerate: decoding response: %w", err)
	}

	return Rate{Base: base, Quote: quote, Value: payload.Value, FetchedAt: time.Now()}, nil
}
