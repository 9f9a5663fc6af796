// internal/domain/pricehistory.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceHistory is one persisted price snapshot, unique per
// (cryptocurrency, timestamp). Populated by the price refresh job so charts
// can be served without re-querying the market data gateway.
type PriceHistory struct {
	ID               string          `db:"id" json:"id"`
	CryptocurrencyID string          `db:"cryptocurrency_id" json:"cryptocurrency_id"`
	Price            decimal.Decimal `db:"price" json:"price"` // NUMERIC(20, 8)
	Timestamp        time.Time       `db:"timestamp" json:"timestamp"`
}

// NewPriceHistory creates a price snapshot record.
func NewPriceHistory(cryptocurrencyID string, price decimal.Decimal, timestamp time.Time) *PriceHistory {
	return &PriceHistory{
		ID:               uuid.NewString(),
		CryptocurrencyID: cryptocurrencyID,
		Price:            price,
		Timestamp:        timestamp,
	}
}
