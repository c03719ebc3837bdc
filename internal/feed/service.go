// Package feed aggregates the upstream adapters into the personalized
// dashboard feed.
package feed

import (
	"context"
	"fmt"
	"time"

	domain "github.com/cryptoboard/gateway/internal/domain/feed"
	"github.com/cryptoboard/gateway/internal/upstream"
	"github.com/cryptoboard/gateway/pkg/logger"
)

// Service fans out to the registered adapters and assembles their results.
// No section's failure or delay affects another's beyond the shared settle
// barrier; the outer refresh bound caps the whole call even if an adapter's
// own timeout is misconfigured.
type Service struct {
	adapters map[domain.Section]upstream.Adapter
	timeout  time.Duration
	log      *logger.Logger
}

// New constructs the orchestrator. Every dashboard section must be covered by
// exactly one adapter.
func New(adapters []upstream.Adapter, refreshTimeout time.Duration, log *logger.Logger) (*Service, error) {
	if refreshTimeout <= 0 {
		refreshTimeout = 10 * time.Second
	}
	if log == nil {
		log = logger.NewDefault("feed")
	}

	bydomain := make(map[domain.Section]upstream.Adapter, len(adapters))
	for _, adapter := range adapters {
		section := adapter.Section()
		if _, dup := bydomain[section]; dup {
			return nil, fmt.Errorf("duplicate adapter for section %s", section)
		}
		bydomain[section] = adapter
	}
	for _, section := range domain.Sections {
		if _, ok := bydomain[section]; !ok {
			return nil, fmt.Errorf("no adapter for section %s", section)
		}
	}

	return &Service{
		adapters: bydomain,
		timeout:  refreshTimeout,
		log:      log,
	}, nil
}

// Refresh fetches a single section. The result never carries an error; the
// only failure mode is asking for a section that does not exist.
func (s *Service) Refresh(ctx context.Context, section domain.Section) (upstream.Result, error) {
	adapter, ok := s.adapters[section]
	if !ok {
		return upstream.Result{}, fmt.Errorf("unknown section %s", section)
	}
	return adapter.Fetch(ctx), nil
}

// RefreshAll invokes all four adapters concurrently and waits for each to
// settle. Sections still in flight when the outer bound elapses are abandoned
// and substituted with their static fallback, so the snapshot always carries
// every section exactly once.
func (s *Service) RefreshAll(ctx context.Context) domain.Snapshot {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results := make(chan upstream.Result, len(s.adapters))
	for _, adapter := range s.adapters {
		go func(a upstream.Adapter) {
			results <- a.Fetch(ctx)
		}(adapter)
	}

	settled := make(map[domain.Section]upstream.Result, len(s.adapters))
	for len(settled) < len(s.adapters) {
		select {
		case res := <-results:
			settled[res.Section] = res
		case <-ctx.Done():
			for section := range s.adapters {
				if _, ok := settled[section]; !ok {
					s.log.WithField("section", string(section)).
						Warn("adapter missed the refresh bound; substituting fallback")
					settled[section] = upstream.FallbackResult(section)
				}
			}
		}
	}

	return assemble(settled)
}

func assemble(results map[domain.Section]upstream.Result) domain.Snapshot {
	var snap domain.Snapshot
	for _, res := range results {
		switch payload := res.Payload.(type) {
		case domain.Prices:
			snap.Prices = payload
		case domain.News:
			snap.News = payload
		case domain.Insight:
			snap.Insight = payload
		case domain.Meme:
			snap.Meme = payload
		}
	}
	return snap
}
