// internal/repository/pricehistory_repo.go
package repository

import (
	"context"
	"time"

	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
)

// PriceHistoryRepository defines the interface for the persisted price cache.
type PriceHistoryRepository interface {
	// Insert stores a price snapshot. Duplicate (cryptocurrency, timestamp)
	// pairs are ignored.
	Insert(ctx context.Context, q DBExecutor, snapshot *domain.PriceHistory) error
	// ListRange retrieves snapshots for one asset within [from, to], oldest first.
	ListRange(ctx context.Context, q DBExecutor, cryptocurrencyID string, from, to time.Time) ([]domain.PriceHistory, error)
}
