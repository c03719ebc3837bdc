// Package user defines the identity and preference models.
package user

import (
	"strings"
	"time"
)

// User is the identity record. The password hash never serializes.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	InvestorType string    `json:"investorType,omitempty"`
	ContentType  string    `json:"contentType,omitempty"`
	CryptoAssets []string  `json:"cryptoAssets,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Preferences holds the onboarding choices, one record per user.
type Preferences struct {
	UserID       int64     `json:"userId"`
	InvestorType string    `json:"investorType"`
	ContentType  string    `json:"contentType"`
	CryptoAssets []string  `json:"cryptoAssets"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NormalizeAssets uppercases ticker symbols, drops blanks and duplicates, and
// preserves the submitted order.
func NormalizeAssets(assets []string) []string {
	seen := make(map[string]bool, len(assets))
	out := make([]string, 0, len(assets))
	for _, asset := range assets {
		ticker := strings.ToUpper(strings.TrimSpace(asset))
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true
		out = append(out, ticker)
	}
	return out
}

// TopAsset returns the first configured ticker, or fallback when none exists.
func (p Preferences) TopAsset(fallback string) string {
	if len(p.CryptoAssets) > 0 {
		return p.CryptoAssets[0]
	}
	return fallback
}
