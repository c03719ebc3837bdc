package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cryptoboard/gateway/internal/domain/feed"
	"github.com/cryptoboard/gateway/internal/metrics"
	"github.com/cryptoboard/gateway/pkg/logger"
)

// PriceAdapter fetches spot quotes for the fixed symbol set from a
// CoinGecko-compatible endpoint.
type PriceAdapter struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
	log     *logger.Logger
}

// NewPriceAdapter constructs the price adapter. A nil client and zero timeout
// fall back to sane defaults.
func NewPriceAdapter(client *http.Client, baseURL string, timeout time.Duration, log *logger.Logger) *PriceAdapter {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	if log == nil {
		log = logger.NewDefault("upstream-prices")
	}
	return &PriceAdapter{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		log:     log,
	}
}

func (a *PriceAdapter) Section() feed.Section { return feed.SectionPrices }

// Fetch returns live quotes, or zero-valued quotes for every symbol when the
// source is unavailable or too slow.
func (a *PriceAdapter) Fetch(ctx context.Context) Result {
	start := time.Now()
	prices, err := a.fetch(ctx)
	fallback := err != nil
	if fallback {
		a.log.WithError(err).Warn("price fetch failed; serving fallback quotes")
		prices = feed.Prices{}
	}
	metrics.RecordUpstreamFetch(string(feed.SectionPrices), fallback, time.Since(start))
	return Result{Section: feed.SectionPrices, Payload: prices, Fallback: fallback}
}

func (a *PriceAdapter) fetch(ctx context.Context) (feed.Prices, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	url := a.baseURL + "/simple/price?ids=bitcoin,ethereum,solana&vs_currencies=usd"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return feed.Prices{}, fmt.Errorf("build price request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return feed.Prices{}, fmt.Errorf("price request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return feed.Prices{}, fmt.Errorf("price source status %d", resp.StatusCode)
	}

	var prices feed.Prices
	if err := json.NewDecoder(resp.Body).Decode(&prices); err != nil {
		return feed.Prices{}, fmt.Errorf("decode price response: %w", err)
	}
	return prices, nil
}
