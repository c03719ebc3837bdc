// Package upstream wraps each external or local data source behind a uniform
// fetch contract that never fails: a slow, broken or unreachable source
// resolves to the adapter's static fallback value instead of an error.
package upstream

import (
	"context"

	"github.com/cryptoboard/gateway/internal/domain/feed"
)

// Result is the outcome of one adapter fetch. Payload always holds the
// section's data shape; Fallback marks whether it is the static substitute
// rather than live data. Both variants satisfy the same shape, so callers
// never special-case failure.
type Result struct {
	Section  feed.Section
	Payload  interface{}
	Fallback bool
}

// Adapter wraps exactly one data source. Fetch must complete within the
// adapter's own time budget and must not propagate upstream errors; the
// returned Result is always usable.
type Adapter interface {
	Section() feed.Section
	Fetch(ctx context.Context) Result
}
