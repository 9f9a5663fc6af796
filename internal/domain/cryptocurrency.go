// internal/domain/cryptocurrency.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category classifies a cryptocurrency for filtering and organization.
type Category string

const (
	CategoryCrypto     Category = "CRYPTO"
	CategoryStablecoin Category = "STABLECOIN"
	CategoryDeFi       Category = "DEFI"
	CategoryNFT        Category = "NFT"
	CategoryMeme       Category = "MEME"
)

// Cryptocurrency is a tradable asset. Market data fields are nullable because
// they depend on external provider availability; the periodic price refresh
// job is the only writer of those fields after creation.
type Cryptocurrency struct {
	ID             string              `db:"id" json:"id"`
	Symbol         string              `db:"symbol" json:"symbol"` // Unique trading symbol, e.g. "BTC"
	Name           string              `db:"name" json:"name"`
	CoinGeckoID    string              `db:"coingecko_id" json:"coingecko_id"` // CoinGecko asset identifier
	IconURL        string              `db:"icon_url" json:"icon_url"`
	Category       Category            `db:"category" json:"category"`
	CurrentPrice   decimal.NullDecimal `db:"current_price" json:"current_price"` // Latest USD spot price, NUMERIC(20, 8)
	PriceChange24h decimal.NullDecimal `db:"price_change_24h" json:"price_change_24h"`
	Volume24h      decimal.NullDecimal `db:"volume_24h" json:"volume_24h"`
	MarketCap      decimal.NullDecimal `db:"market_cap" json:"market_cap"`
	LastUpdated    *time.Time          `db:"last_updated" json:"last_updated"`
	IsActive       bool                `db:"is_active" json:"is_active"`
	CreatedAt      time.Time           `db:"created_at" json:"created_at"`
}

// NewCryptocurrency creates a new Cryptocurrency instance with no market data yet.
func NewCryptocurrency(symbol, name, coinGeckoID, iconURL string, category Category) *Cryptocurrency {
	return &Cryptocurrency{
		ID:          uuid.NewString(),
		Symbol:      symbol,
		Name:        name,
		CoinGeckoID: coinGeckoID,
		IconURL:     iconURL,
		Category:    category,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
}

// HasPrice reports whether a positive spot price is available for trading.
func (c *Cryptocurrency) HasPrice() bool {
	return c.CurrentPrice.Valid && c.CurrentPrice.Decimal.IsPositive()
}

// Price returns the current spot price, or zero if none is available.
func (c *Cryptocurrency) Price() decimal.Decimal {
	if !c.CurrentPrice.Valid {
		return decimal.Zero
	}
	return c.CurrentPrice.Decimal
}
