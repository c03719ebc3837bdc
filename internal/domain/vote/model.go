// Package vote defines the append-only feedback ledger records.
package vote

import (
	"time"

	"github.com/cryptoboard/gateway/internal/domain/feed"
)

// Vote is one immutable feedback fact. UserID is nil for anonymous votes.
type Vote struct {
	ID        int64        `json:"id"`
	UserID    *int64       `json:"userId"`
	Section   feed.Section `json:"section"`
	Value     int          `json:"value"`
	CreatedAt time.Time    `json:"createdAt"`
}

// ValidValue reports whether v is an accepted vote value.
func ValidValue(v int) bool {
	return v == 1 || v == -1
}
