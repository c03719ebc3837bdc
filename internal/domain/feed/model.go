// Package feed defines the dashboard sections and their data shapes.
package feed

// Section identifies one dashboard panel.
type Section string

const (
	SectionNews    Section = "news"
	SectionPrices  Section = "prices"
	SectionInsight Section = "aiInsight"
	SectionMeme    Section = "meme"
)

// Sections lists every section in presentation order.
var Sections = []Section{SectionNews, SectionPrices, SectionInsight, SectionMeme}

// ValidSection reports whether s names a known section.
func ValidSection(s Section) bool {
	switch s {
	case SectionNews, SectionPrices, SectionInsight, SectionMeme:
		return true
	}
	return false
}

// Quote is a single fiat quote for an asset.
type Quote struct {
	USD float64 `json:"usd"`
}

// Prices carries quotes for the fixed symbol set the dashboard tracks.
type Prices struct {
	Bitcoin  Quote `json:"bitcoin"`
	Ethereum Quote `json:"ethereum"`
	Solana   Quote `json:"solana"`
}

// NewsItem is a normalized headline regardless of upstream shape.
type NewsItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
}

// News wraps the headline list.
type News struct {
	Items []NewsItem `json:"items"`
}

// Insight is one short textual observation.
type Insight struct {
	Insight string `json:"insight"`
}

// Meme is one catalog entry.
type Meme struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Snapshot is the composite result of a full refresh. Every section is always
// populated, with fallback data when its source was unavailable.
type Snapshot struct {
	Prices  Prices  `json:"prices"`
	News    News    `json:"news"`
	Insight Insight `json:"aiInsight"`
	Meme    Meme    `json:"meme"`
}
