// internal/repository/holding_repo.go
package repository

import (
	"context"

	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
)

// HoldingRepository defines the interface for holding data operations.
type HoldingRepository interface {
	// Create adds a new holding using the provided DBExecutor.
	Create(ctx context.Context, q DBExecutor, holding *domain.Holding) error
	// GetByPortfolioAndCrypto retrieves the unique holding for a
	// (portfolio, cryptocurrency) pair. Returns util.ErrNotFound if absent.
	GetByPortfolioAndCrypto(ctx context.Context, q DBExecutor, portfolioID, cryptocurrencyID string) (*domain.Holding, error)
	// ListByPortfolio retrieves all holdings of a portfolio, largest cost basis first.
	ListByPortfolio(ctx context.Context, q DBExecutor, portfolioID string) ([]domain.Holding, error)
	// Update persists quantity, average price and cost basis of a holding.
	Update(ctx context.Context, q DBExecutor, holding *domain.Holding) error
	// Delete removes a holding entirely (full position exit).
	Delete(ctx context.Context, q DBExecutor, id string) error
}
