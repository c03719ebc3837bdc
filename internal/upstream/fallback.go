package upstream

import "github.com/cryptoboard/gateway/internal/domain/feed"

// FallbackResult returns the static substitute for a section. The
// orchestrator uses it when an in-flight fetch is abandoned at the outer
// aggregation bound before its adapter settled.
func FallbackResult(section feed.Section) Result {
	res := Result{Section: section, Fallback: true}
	switch section {
	case feed.SectionPrices:
		res.Payload = feed.Prices{}
	case feed.SectionNews:
		res.Payload = fallbackNews()
	case feed.SectionInsight:
		res.Payload = feed.Insight{Insight: genericInsights[0]}
	case feed.SectionMeme:
		res.Payload = memeCatalog[0]
	}
	return res
}
