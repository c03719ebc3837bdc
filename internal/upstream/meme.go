package upstream

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/cryptoboard/gateway/internal/domain/feed"
	"github.com/cryptoboard/gateway/internal/metrics"
	"github.com/cryptoboard/gateway/pkg/logger"
)

var memeCatalog = []feed.Meme{
	{Title: "HODL", URL: "/memes/meme1.jpg"},
	{Title: "To the moon", URL: "/memes/meme2.jpg"},
	{Title: "Buy the dip", URL: "/memes/meme3.jpg"},
	{Title: "Diamond hands", URL: "/memes/meme4.jpg"},
}

// MemeAdapter picks one entry from a fixed local catalog. The lookup cannot
// fail, so the result is never a fallback.
type MemeAdapter struct {
	log *logger.Logger

	mu   sync.Mutex
	rand *rand.Rand
}

// NewMemeAdapter constructs the meme adapter.
func NewMemeAdapter(log *logger.Logger) *MemeAdapter {
	if log == nil {
		log = logger.NewDefault("upstream-meme")
	}
	return &MemeAdapter{
		log:  log,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (a *MemeAdapter) Section() feed.Section { return feed.SectionMeme }

// Fetch returns a random catalog entry.
func (a *MemeAdapter) Fetch(ctx context.Context) Result {
	_ = ctx
	start := time.Now()

	a.mu.Lock()
	meme := memeCatalog[a.rand.Intn(len(memeCatalog))]
	a.mu.Unlock()

	metrics.RecordUpstreamFetch(string(feed.SectionMeme), false, time.Since(start))
	return Result{Section: feed.SectionMeme, Payload: meme, Fallback: false}
}
