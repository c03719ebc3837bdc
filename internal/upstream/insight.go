package upstream

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/cryptoboard/gateway/internal/auth"
	"github.com/cryptoboard/gateway/internal/domain/feed"
	"github.com/cryptoboard/gateway/internal/metrics"
	"github.com/cryptoboard/gateway/internal/storage"
	"github.com/cryptoboard/gateway/pkg/logger"
)

var genericInsights = []string{
	"Tip: diversify and set alerts for BTC.",
	"Tip: dollar-cost averaging smooths out volatile entries.",
	"Tip: review your portfolio allocation once a week.",
	"Tip: volume often moves before price does.",
}

// InsightAdapter synthesizes one short observation. Its only data source is
// the local preference store, so it cannot fail: an anonymous caller or a
// store problem both degrade to a generic phrase. A generic phrase for an
// anonymous caller is normal output, not a fallback; only a failed preference
// lookup counts as one.
type InsightAdapter struct {
	prefs storage.PreferenceStore
	log   *logger.Logger

	mu   sync.Mutex
	rand *rand.Rand
}

// NewInsightAdapter constructs the insight adapter.
func NewInsightAdapter(prefs storage.PreferenceStore, log *logger.Logger) *InsightAdapter {
	if log == nil {
		log = logger.NewDefault("upstream-insight")
	}
	return &InsightAdapter{
		prefs: prefs,
		log:   log,
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (a *InsightAdapter) Section() feed.Section { return feed.SectionInsight }

// Fetch personalizes on the authenticated user's investor type, content type
// and top asset when the request context carries an identity.
func (a *InsightAdapter) Fetch(ctx context.Context) Result {
	start := time.Now()
	insight, fallback := a.compose(ctx)
	metrics.RecordUpstreamFetch(string(feed.SectionInsight), fallback, time.Since(start))
	return Result{Section: feed.SectionInsight, Payload: insight, Fallback: fallback}
}

func (a *InsightAdapter) compose(ctx context.Context) (feed.Insight, bool) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok || a.prefs == nil {
		return a.generic(), false
	}

	prefs, err := a.prefs.GetPreferences(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNoPreferences) {
			return a.generic(), false
		}
		a.log.WithError(err).WithField("user_id", userID).Warn("preference lookup failed; serving generic insight")
		return a.generic(), true
	}

	investor := prefs.InvestorType
	if investor == "" {
		investor = "crypto investor"
	}
	kind := prefs.ContentType
	if kind == "" {
		kind = "News"
	}
	asset := prefs.TopAsset("BTC")

	text := fmt.Sprintf("Insight: As a %s who likes %s, keep an eye on %s today.", investor, kind, asset)
	return feed.Insight{Insight: text}, false
}

func (a *InsightAdapter) generic() feed.Insight {
	a.mu.Lock()
	phrase := genericInsights[a.rand.Intn(len(genericInsights))]
	a.mu.Unlock()
	return feed.Insight{Insight: phrase}
}
