package upstream

import (
	"context"
	"testing"

	"github.com/cryptoboard/gateway/internal/domain/feed"
)

func TestMemeAdapterAlwaysReturnsCatalogEntry(t *testing.T) {
	adapter := NewMemeAdapter(nil)

	for i := 0; i < 20; i++ {
		res := adapter.Fetch(context.Background())
		if res.Fallback {
			t.Fatal("meme adapter can never fall back")
		}
		meme := res.Payload.(feed.Meme)
		found := false
		for _, entry := range memeCatalog {
			if entry == meme {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("meme %+v not in catalog", meme)
		}
	}
}
