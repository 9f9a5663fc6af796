// internal/repository/portfolio_repo.go
package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
)

// PortfolioRepository defines the interface for portfolio data operations.
type PortfolioRepository interface {
	// Create adds a new portfolio using the provided DBExecutor.
	Create(ctx context.Context, q DBExecutor, portfolio *domain.Portfolio) error
	// GetByID retrieves a portfolio by its ID.
	GetByID(ctx context.Context, q DBExecutor, id string) (*domain.Portfolio, error)
	// GetByUserID retrieves the portfolio owned by a user (1:1).
	GetByUserID(ctx context.Context, q DBExecutor, userID string) (*domain.Portfolio, error)
	// List retrieves all portfolios, oldest first.
	List(ctx context.Context, q DBExecutor) ([]domain.Portfolio, error)
	// AdjustCashBalance applies a signed delta to a portfolio's cash balance.
	// The cash_balance >= 0 invariant is enforced by a DB check constraint.
	AdjustCashBalance(ctx context.Context, q DBExecutor, portfolioID string, delta decimal.Decimal) error
}
