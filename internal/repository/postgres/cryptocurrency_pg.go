// internal/repository/postgres/cryptocurrency_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
	"github.com/jpwyse/bitsofstock-sandbox/internal/market"
	"github.com/jpwyse/bitsofstock-sandbox/internal/repository"
	"github.com/jpwyse/bitsofstock-sandbox/internal/util"
)

// CryptocurrencyRepository implements repository.CryptocurrencyRepository for PostgreSQL.
type CryptocurrencyRepository struct{}

// NewCryptocurrencyRepository creates a new CryptocurrencyRepository.
func NewCryptocurrencyRepository() repository.CryptocurrencyRepository {
	return &CryptocurrencyRepository{}
}

const cryptocurrencyColumns = `id, symbol, name, coingecko_id, icon_url, category, current_price, price_change_24h, volume_24h, market_cap, last_updated, is_active, created_at`

// Create inserts a new cryptocurrency using the provided DBExecutor.
func (r *CryptocurrencyRepository) Create(ctx context.Context, q repository.DBExecutor, crypto *domain.Cryptocurrency) error {
	query := `INSERT INTO cryptocurrencies (` + cryptocurrencyColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := q.ExecContext(ctx, query,
		crypto.ID, crypto.Symbol, crypto.Name, crypto.CoinGeckoID, crypto.IconURL, crypto.Category,
		crypto.CurrentPrice, crypto.PriceChange24h, crypto.Volume24h, crypto.MarketCap,
		crypto.LastUpdated, crypto.IsActive, crypto.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("cryptocurrency %s: %w", crypto.Symbol, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create cryptocurrency %s: %w", crypto.Symbol, err)
	}
	return nil
}

// GetByID retrieves a cryptocurrency by its ID.
func (r *CryptocurrencyRepository) GetByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.Cryptocurrency, error) {
	var crypto domain.Cryptocurrency
	query := `SELECT ` + cryptocurrencyColumns + ` FROM cryptocurrencies WHERE id = $1`
	err := q.GetContext(ctx, &crypto, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cryptocurrency by ID %s: %w", id, err)
	}
	return &crypto, nil
}

// GetBySymbol retrieves a cryptocurrency by its unique symbol.
func (r *CryptocurrencyRepository) GetBySymbol(ctx context.Context, q repository.DBExecutor, symbol string) (*domain.Cryptocurrency, error) {
	var crypto domain.Cryptocurrency
	query := `SELECT ` + cryptocurrencyColumns + ` FROM cryptocurrencies WHERE symbol = $1`
	err := q.GetContext(ctx, &crypto, query, symbol)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cryptocurrency by symbol %s: %w", symbol, err)
	}
	return &crypto, nil
}

// ListActive retrieves all tradable cryptocurrencies ordered by symbol.
func (r *CryptocurrencyRepository) ListActive(ctx context.Context, q repository.DBExecutor) ([]domain.Cryptocurrency, error) {
	cryptos := []domain.Cryptocurrency{}
	query := `SELECT ` + cryptocurrencyColumns + ` FROM cryptocurrencies WHERE is_active = TRUE ORDER BY symbol ASC`
	if err := q.SelectContext(ctx, &cryptos, query); err != nil {
		return nil, fmt.Errorf("failed to list active cryptocurrencies: %w", err)
	}
	return cryptos, nil
}

// ListByIDs retrieves the cryptocurrencies with the given IDs.
func (r *CryptocurrencyRepository) ListByIDs(ctx context.Context, q repository.DBExecutor, ids []string) ([]domain.Cryptocurrency, error) {
	cryptos := []domain.Cryptocurrency{}
	if len(ids) == 0 {
		return cryptos, nil
	}
	query := `SELECT ` + cryptocurrencyColumns + ` FROM cryptocurrencies WHERE id = ANY($1)`
	if err := q.SelectContext(ctx, &cryptos, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to list cryptocurrencies by IDs: %w", err)
	}
	return cryptos, nil
}

// UpdateMarketData overwrites the market data fields from a gateway quote.
func (r *CryptocurrencyRepository) UpdateMarketData(ctx context.Context, q repository.DBExecutor, id string, quote market.Quote, at time.Time) error {
	query := `UPDATE cryptocurrencies
              SET current_price = $1, price_change_24h = $2, volume_24h = $3, market_cap = $4, last_updated = $5
              WHERE id = $6`
	result, err := q.ExecContext(ctx, query,
		quote.Price, quote.Change24h, quote.Volume24h, quote.MarketCap, at, id)
	if err != nil {
		return fmt.Errorf("failed to update market data for cryptocurrency %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected updating cryptocurrency %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows affected updating cryptocurrency %s: %w", id, util.ErrNotFound)
	}
	return nil
}
