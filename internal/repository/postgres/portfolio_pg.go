// internal/repository/postgres/portfolio_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
	"github.com/jpwyse/bitsofstock-sandbox/internal/repository"
	"github.com/jpwyse/bitsofstock-sandbox/internal/util"
)

// PortfolioRepository implements repository.PortfolioRepository for PostgreSQL.
type PortfolioRepository struct{}

// NewPortfolioRepository creates a new PortfolioRepository.
func NewPortfolioRepository() repository.PortfolioRepository {
	return &PortfolioRepository{}
}

// Create inserts a new portfolio using the provided DBExecutor.
func (r *PortfolioRepository) Create(ctx context.Context, q repository.DBExecutor, portfolio *domain.Portfolio) error {
	query := `INSERT INTO portfolios (id, user_id, cash_balance, initial_cash, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := q.ExecContext(ctx, query,
		portfolio.ID, portfolio.UserID, portfolio.CashBalance, portfolio.InitialCash,
		portfolio.CreatedAt, portfolio.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}
	return nil
}

// GetByID retrieves a portfolio by its ID using the provided DBExecutor.
func (r *PortfolioRepository) GetByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.Portfolio, error) {
	var portfolio domain.Portfolio
	query := `SELECT id, user_id, cash_balance, initial_cash, created_at, updated_at
              FROM portfolios WHERE id = $1`
	err := q.GetContext(ctx, &portfolio, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get portfolio by ID %s: %w", id, err)
	}
	return &portfolio, nil
}

// GetByUserID retrieves a user's portfolio using the provided DBExecutor.
func (r *PortfolioRepository) GetByUserID(ctx context.Context, q repository.DBExecutor, userID string) (*domain.Portfolio, error) {
	var portfolio domain.Portfolio
	query := `SELECT id, user_id, cash_balance, initial_cash, created_at, updated_at
              FROM portfolios WHERE user_id = $1`
	err := q.GetContext(ctx, &portfolio, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get portfolio for user %s: %w", userID, err)
	}
	return &portfolio, nil
}

// List retrieves all portfolios, oldest first.
func (r *PortfolioRepository) List(ctx context.Context, q repository.DBExecutor) ([]domain.Portfolio, error) {
	portfolios := []domain.Portfolio{}
	query := `SELECT id, user_id, cash_balance, initial_cash, created_at, updated_at
              FROM portfolios ORDER BY created_at ASC`
	if err := q.SelectContext(ctx, &portfolios, query); err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	return portfolios, nil
}

// AdjustCashBalance applies a signed delta to the cash balance.
func (r *PortfolioRepository) AdjustCashBalance(ctx context.Context, q repository.DBExecutor, portfolioID string, delta decimal.Decimal) error {
	query := `UPDATE portfolios SET cash_balance = cash_balance + $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, delta, time.Now().UTC(), portfolioID)
	if err != nil {
		return fmt.Errorf("failed to adjust cash balance for portfolio %s: %w", portfolioID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected adjusting cash for portfolio %s: %w", portfolioID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows affected adjusting cash for portfolio %s: %w", portfolioID, util.ErrNotFound)
	}
	return nil
}
