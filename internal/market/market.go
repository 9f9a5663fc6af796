// internal/market/market.go
package market

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is one asset's current market data snapshot.
type Quote struct {
	Price     decimal.Decimal `json:"price"`
	Change24h decimal.Decimal `json:"change_24h"`
	Volume24h decimal.Decimal `json:"volume_24h"`
	MarketCap decimal.Decimal `json:"market_cap"`
}

// PricePoint is one historical price observation.
type PricePoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
}

// NewsArticle is a normalized news item.
type NewsArticle struct {
	ID       int64  `json:"id"`
	Datetime int64  `json:"datetime"` // UNIX timestamp, seconds
	Headline string `json:"headline"`
	Image    string `json:"image"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	Source   string `json:"source"`
}

// DataGateway is the narrow interface the core consumes for market data.
// Implementations may fail; callers must degrade to empty/fallback data
// rather than propagate the failure.
type DataGateway interface {
	// GetCurrentPrices fetches quotes for the given symbol -> provider-ID
	// mapping in one batched call. The result may be partial.
	GetCurrentPrices(ctx context.Context, assets map[string]string) (map[string]Quote, error)
	// GetHistoricalPrices fetches up to the given number of days of price
	// history for one asset, oldest first.
	GetHistoricalPrices(ctx context.Context, providerID string, days int) ([]PricePoint, error)
}

// NewsProvider is the narrow interface for the news feed.
type NewsProvider interface {
	GetCryptoNews(ctx context.Context, limit int) ([]NewsArticle, error)
}
