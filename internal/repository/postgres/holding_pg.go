// internal/repository/postgres/holding_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
	"github.com/jpwyse/bitsofstock-sandbox/internal/repository"
	"github.com/jpwyse/bitsofstock-sandbox/internal/util"
)

// HoldingRepository implements repository.HoldingRepository for PostgreSQL.
type HoldingRepository struct{}

// NewHoldingRepository creates a new HoldingRepository.
func NewHoldingRepository() repository.HoldingRepository {
	return &HoldingRepository{}
}

// Create inserts a new holding using the provided DBExecutor.
func (r *HoldingRepository) Create(ctx context.Context, q repository.DBExecutor, holding *domain.Holding) error {
	query := `INSERT INTO holdings (id, portfolio_id, cryptocurrency_id, quantity, average_purchase_price, total_cost_basis, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := q.ExecContext(ctx, query,
		holding.ID, holding.PortfolioID, holding.CryptocurrencyID,
		holding.Quantity, holding.AveragePurchasePrice, holding.TotalCostBasis,
		holding.CreatedAt, holding.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create holding: %w", err)
	}
	return nil
}

// GetByPortfolioAndCrypto retrieves the unique holding of a portfolio in one asset.
func (r *HoldingRepository) GetByPortfolioAndCrypto(ctx context.Context, q repository.DBExecutor, portfolioID, cryptocurrencyID string) (*domain.Holding, error) {
	var holding domain.Holding
	query := `SELECT id, portfolio_id, cryptocurrency_id, quantity, average_purchase_price, total_cost_basis, created_at, updated_at
              FROM holdings WHERE portfolio_id = $1 AND cryptocurrency_id = $2`
	err := q.GetContext(ctx, &holding, query, portfolioID, cryptocurrencyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get holding for portfolio %s crypto %s: %w", portfolioID, cryptocurrencyID, err)
	}
	return &holding, nil
}

// ListByPortfolio retrieves all holdings of a portfolio, largest cost basis first.
func (r *HoldingRepository) ListByPortfolio(ctx context.Context, q repository.DBExecutor, portfolioID string) ([]domain.Holding, error) {
	holdings := []domain.Holding{}
	query := `SELECT id, portfolio_id, cryptocurrency_id, quantity, average_purchase_price, total_cost_basis, created_at, updated_at
              FROM holdings WHERE portfolio_id = $1 ORDER BY total_cost_basis DESC`
	if err := q.SelectContext(ctx, &holdings, query, portfolioID); err != nil {
		return nil, fmt.Errorf("failed to list holdings for portfolio %s: %w", portfolioID, err)
	}
	return holdings, nil
}

// Update persists the mutable position fields of a holding.
func (r *HoldingRepository) Update(ctx context.Context, q repository.DBExecutor, holding *domain.Holding) error {
	query := `UPDATE holdings SET quantity = $1, average_purchase_price = $2, total_cost_basis = $3, updated_at = $4
              WHERE id = $5`
	result, err := q.ExecContext(ctx, query,
		holding.Quantity, holding.AveragePurchasePrice, holding.TotalCostBasis, holding.UpdatedAt, holding.ID)
	if err != nil {
		return fmt.Errorf("failed to update holding %s: %w", holding.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected updating holding %s: %w", holding.ID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows affected updating holding %s: %w", holding.ID, util.ErrNotFound)
	}
	return nil
}

// Delete removes a holding entirely.
func (r *HoldingRepository) Delete(ctx context.Context, q repository.DBExecutor, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM holdings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holding %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected deleting holding %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows affected deleting holding %s: %w", id, util.ErrNotFound)
	}
	return nil
}
