package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/cryptoboard/gateway/internal/domain/feed"
	"github.com/cryptoboard/gateway/internal/metrics"
	"github.com/cryptoboard/gateway/pkg/logger"
)

// maxNewsBody bounds how much of an upstream response gets read.
const maxNewsBody = 1 << 20

// NewsAdapter fetches market headlines from a CryptoPanic-compatible feed and
// normalizes the arbitrary upstream item shape.
type NewsAdapter struct {
	client  *http.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	log     *logger.Logger
}

// NewNewsAdapter constructs the news adapter.
func NewNewsAdapter(client *http.Client, baseURL, apiKey string, timeout time.Duration, log *logger.Logger) *NewsAdapter {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	if log == nil {
		log = logger.NewDefault("upstream-news")
	}
	return &NewsAdapter{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		log:     log,
	}
}

func (a *NewsAdapter) Section() feed.Section { return feed.SectionNews }

// Fetch returns normalized headlines, or a single placeholder item when the
// source is unavailable.
func (a *NewsAdapter) Fetch(ctx context.Context) Result {
	start := time.Now()
	news, err := a.fetch(ctx)
	fallback := err != nil
	if fallback {
		a.log.WithError(err).Warn("news fetch failed; serving placeholder item")
		news = fallbackNews()
	}
	metrics.RecordUpstreamFetch(string(feed.SectionNews), fallback, time.Since(start))
	return Result{Section: feed.SectionNews, Payload: news, Fallback: fallback}
}

func (a *NewsAdapter) fetch(ctx context.Context) (feed.News, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("auth_token", a.apiKey)
	q.Set("currencies", "BTC,ETH,SOL")
	q.Set("public", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/posts/?"+q.Encode(), nil)
	if err != nil {
		return feed.News{}, fmt.Errorf("build news request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return feed.News{}, fmt.Errorf("news request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return feed.News{}, fmt.Errorf("news source status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxNewsBody))
	if err != nil {
		return feed.News{}, fmt.Errorf("read news response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return feed.News{}, fmt.Errorf("malformed news response")
	}

	results := gjson.GetBytes(body, "results")
	if !results.IsArray() {
		return feed.News{}, fmt.Errorf("news response missing results array")
	}

	news := feed.News{Items: []feed.NewsItem{}}
	results.ForEach(func(_, post gjson.Result) bool {
		item := feed.NewsItem{
			ID:          post.Get("id").String(),
			Title:       post.Get("title").String(),
			URL:         post.Get("url").String(),
			Source:      post.Get("source.title").String(),
			PublishedAt: post.Get("published_at").String(),
		}
		if item.Source == "" {
			item.Source = "News"
		}
		news.Items = append(news.Items, item)
		return true
	})
	return news, nil
}

func fallbackNews() feed.News {
	return feed.News{Items: []feed.NewsItem{{
		ID:          "static",
		Title:       "Here is some news about the crypto market...",
		URL:         "#",
		Source:      "Fallback",
		PublishedAt: time.Now().UTC().Format(time.RFC3339),
	}}}
}
