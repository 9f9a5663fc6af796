// internal/repository/postgres/transaction_pg.go
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

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

const transactionColumns = `id, portfolio_id, cryptocurrency_id, transaction_type, quantity, price_per_unit, total_amount, timestamp, realized_gain_loss`

// Create appends a new transaction record using the provided DBExecutor.
func (r *TransactionRepository) Create(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (` + transactionColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := q.ExecContext(ctx, query,
		transaction.ID, transaction.PortfolioID, transaction.CryptocurrencyID,
		transaction.Type, transaction.Quantity, transaction.PricePerUnit,
		transaction.TotalAmount, transaction.Timestamp, transaction.RealizedGainLoss)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// ListByPortfolio retrieves transactions newest first with optional type filter
// and the total matching count for pagination.
func (r *TransactionRepository) ListByPortfolio(ctx context.Context, q repository.DBExecutor, portfolioID string, txType *domain.TransactionType, limit, offset int) ([]domain.Transaction, int64, error) {
	transactions := []domain.Transaction{}
	var totalCount int64

	if txType != nil {
		countQuery := `SELECT COUNT(*) FROM transactions WHERE portfolio_id = $1 AND transaction_type = $2`
		if err := q.GetContext(ctx, &totalCount, countQuery, portfolioID, *txType); err != nil {
			return nil, 0, fmt.Errorf("failed to count transactions for portfolio %s: %w", portfolioID, err)
		}
		query := `SELECT ` + transactionColumns + ` FROM transactions
                  WHERE portfolio_id = $1 AND transaction_type = $2
                  ORDER BY timestamp DESC LIMIT $3 OFFSET $4`
		if err := q.SelectContext(ctx, &transactions, query, portfolioID, *txType, limit, offset); err != nil {
			return nil, 0, fmt.Errorf("failed to list transactions for portfolio %s: %w", portfolioID, err)
		}
		return transactions, totalCount, nil
	}

	countQuery := `SELECT COUNT(*) FROM transactions WHERE portfolio_id = $1`
	if err := q.GetContext(ctx, &totalCount, countQuery, portfolioID); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions for portfolio %s: %w", portfolioID, err)
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions
              WHERE portfolio_id = $1 ORDER BY timestamp DESC LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &transactions, query, portfolioID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions for portfolio %s: %w", portfolioID, err)
	}
	return transactions, totalCount, nil
}

// ListByPortfolioSince retrieves transactions at or after since, oldest first.
func (r *TransactionRepository) ListByPortfolioSince(ctx context.Context, q repository.DBExecutor, portfolioID string, since time.Time) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	query := `SELECT ` + transactionColumns + ` FROM transactions
              WHERE portfolio_id = $1 AND timestamp >= $2 ORDER BY timestamp ASC`
	if err := q.SelectContext(ctx, &transactions, query, portfolioID, since); err != nil {
		return nil, fmt.Errorf("failed to list transactions since %s for portfolio %s: %w", since, portfolioID, err)
	}
	return transactions, nil
}

// ListByPortfolioAndCrypto retrieves one asset's trade history, oldest first.
func (r *TransactionRepository) ListByPortfolioAndCrypto(ctx context.Context, q repository.DBExecutor, portfolioID, cryptocurrencyID string) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	query := `SELECT ` + transactionColumns + ` FROM transactions
              WHERE portfolio_id = $1 AND cryptocurrency_id = $2 ORDER BY timestamp ASC`
	if err := q.SelectContext(ctx, &transactions, query, portfolioID, cryptocurrencyID); err != nil {
		return nil, fmt.Errorf("failed to list transactions for portfolio %s crypto %s: %w", portfolioID, cryptocurrencyID, err)
	}
	return transactions, nil
}

// FirstTimestamp returns the earliest transaction timestamp of a portfolio,
// or nil when the portfolio has never traded.
func (r *TransactionRepository) FirstTimestamp(ctx context.Context, q repository.DBExecutor, portfolioID string) (*time.Time, error) {
	var ts time.Time
	query := `SELECT timestamp FROM transactions WHERE portfolio_id = $1 ORDER BY timestamp ASC LIMIT 1`
	err := q.GetContext(ctx, &ts, query, portfolioID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get first transaction timestamp for portfolio %s: %w", portfolioID, err)
	}
	return &ts, nil
}

// DistinctCryptocurrencyIDs returns the IDs of every asset the portfolio has traded.
func (r *TransactionRepository) DistinctCryptocurrencyIDs(ctx context.Context, q repository.DBExecutor, portfolioID string) ([]string, error) {
	ids := []string{}
	query := `SELECT DISTINCT cryptocurrency_id FROM transactions WHERE portfolio_id = $1`
	if err := q.SelectContext(ctx, &ids, query, portfolioID); err != nil {
		return nil, fmt.Errorf("failed to list traded cryptocurrencies for portfolio %s: %w", portfolioID, err)
	}
	return ids, nil
}

// UpdateRealizedGainLoss rewrites the realized P&L of one record (backfill only).
func (r *TransactionRepository) UpdateRealizedGainLoss(ctx context.Context, q repository.DBExecutor, transactionID string, realized decimal.Decimal) error {
	result, err := q.ExecContext(ctx, `UPDATE transactions SET realized_gain_loss = $1 WHERE id = $2`, realized, transactionID)
	if err != nil {
		return fmt.Errorf("failed to update realized gain/loss for transaction %s: %w", transactionID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected updating transaction %s: %w", transactionID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows affected updating transaction %s: %w", transactionID, util.ErrNotFound)
	}
	return nil
}
