// internal/repository/postgres/pricehistory_pg.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
	"github.com/jpwyse/bitsofstock-sandbox/internal/repository"
)

// PriceHistoryRepository implements repository.PriceHistoryRepository for PostgreSQL.
type PriceHistoryRepository struct{}

// NewPriceHistoryRepository creates a new PriceHistoryRepository.
func NewPriceHistoryRepository() repository.PriceHistoryRepository {
	return &PriceHistoryRepository{}
}

// Insert stores a price snapshot, ignoring duplicate (cryptocurrency, timestamp) pairs.
func (r *PriceHistoryRepository) Insert(ctx context.Context, q repository.DBExecutor, snapshot *domain.PriceHistory) error {
	query := `INSERT INTO price_history (id, cryptocurrency_id, price, timestamp)
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (cryptocurrency_id, timestamp) DO NOTHING`
	_, err := q.ExecContext(ctx, query, snapshot.ID, snapshot.CryptocurrencyID, snapshot.Price, snapshot.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert price snapshot for cryptocurrency %s: %w", snapshot.CryptocurrencyID, err)
	}
	return nil
}

// ListRange retrieves snapshots for one asset within [from, to], oldest first.
func (r *PriceHistoryRepository) ListRange(ctx context.Context, q repository.DBExecutor, cryptocurrencyID string, from, to time.Time) ([]domain.PriceHistory, error) {
	snapshots := []domain.PriceHistory{}
	query := `SELECT id, cryptocurrency_id, price, timestamp FROM price_history
              WHERE cryptocurrency_id = $1 AND timestamp >= $2 AND timestamp <= $3
              ORDER BY timestamp ASC`
	if err := q.SelectContext(ctx, &snapshots, query, cryptocurrencyID, from, to); err != nil {
		return nil, fmt.Errorf("failed to list price history for cryptocurrency %s: %w", cryptocurrencyID, err)
	}
	return snapshots, nil
}
