// internal/repository/cryptocurrency_repo.go
package repository

import (
	"context"
	"time"

	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
	"github.com/jpwyse/bitsofstock-sandbox/internal/market"
)

// CryptocurrencyRepository defines the interface for asset data operations.
type CryptocurrencyRepository interface {
	// Create adds a new cryptocurrency using the provided DBExecutor.
	Create(ctx context.Context, q DBExecutor, crypto *domain.Cryptocurrency) error
	// GetByID retrieves a cryptocurrency by its ID.
	GetByID(ctx context.Context, q DBExecutor, id string) (*domain.Cryptocurrency, error)
	// GetBySymbol retrieves a cryptocurrency by its unique symbol.
	GetBySymbol(ctx context.Context, q DBExecutor, symbol string) (*domain.Cryptocurrency, error)
	// ListActive retrieves all tradable cryptocurrencies ordered by symbol.
	ListActive(ctx context.Context, q DBExecutor) ([]domain.Cryptocurrency, error)
	// ListByIDs retrieves the cryptocurrencies with the given IDs.
	ListByIDs(ctx context.Context, q DBExecutor, ids []string) ([]domain.Cryptocurrency, error)
	// UpdateMarketData overwrites the market data fields from a gateway quote
	// and stamps last_updated.
	UpdateMarketData(ctx context.Context, q DBExecutor, id string, quote market.Quote, at time.Time) error
}
