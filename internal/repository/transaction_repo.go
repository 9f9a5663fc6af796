// internal/repository/transaction_repo.go
package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
)

// TransactionRepository defines the interface for trade ledger operations.
// The ledger is append-only; UpdateRealizedGainLoss exists solely for the
// backfill job.
type TransactionRepository interface {
	// Create appends a new transaction record using the provided DBExecutor.
	Create(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// ListByPortfolio retrieves transactions newest first, optionally filtered
	// by type, with the total count for pagination.
	ListByPortfolio(ctx context.Context, q DBExecutor, portfolioID string, txType *domain.TransactionType, limit, offset int) ([]domain.Transaction, int64, error)
	// ListByPortfolioSince retrieves transactions at or after the given time,
	// oldest first.
	ListByPortfolioSince(ctx context.Context, q DBExecutor, portfolioID string, since time.Time) ([]domain.Transaction, error)
	// ListByPortfolioAndCrypto retrieves the full trade history of one asset,
	// oldest first, for chronological replay.
	ListByPortfolioAndCrypto(ctx context.Context, q DBExecutor, portfolioID, cryptocurrencyID string) ([]domain.Transaction, error)
	// FirstTimestamp returns the earliest transaction timestamp of a
	// portfolio, or nil when the portfolio has never traded.
	FirstTimestamp(ctx context.Context, q DBExecutor, portfolioID string) (*time.Time, error)
	// DistinctCryptocurrencyIDs returns the IDs of every asset the portfolio
	// has ever traded.
	DistinctCryptocurrencyIDs(ctx context.Context, q DBExecutor, portfolioID string) ([]string, error)
	// UpdateRealizedGainLoss rewrites the realized P&L of one record
	// (backfill job only).
	UpdateRealizedGainLoss(ctx context.Context, q DBExecutor, transactionID string, realized decimal.Decimal) error
}
