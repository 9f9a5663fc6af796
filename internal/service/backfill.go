// internal/service/backfill.go
package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
	"github.com/jpwyse/bitsofstock-sandbox/internal/repository"
	"github.com/jpwyse/bitsofstock-sandbox/pkg/db"
)

// residualQuantity is the threshold below which a replayed position counts as
// fully exited; accumulated rounding can leave dust smaller than one satoshi.
var residualQuantity = decimal.New(1, -domain.QuantityPrecision)

// AssetBackfillSummary reports the replay outcome for one asset.
type AssetBackfillSummary struct {
	CryptocurrencyID string          `json:"cryptocurrency_id"`
	Transactions     int             `json:"transactions"`
	Updated          int             `json:"updated"`
	TotalRealized    decimal.Decimal `json:"total_realized"`
	Anomalies        int             `json:"anomalies"`
}

// BackfillResult reports the outcome of one portfolio backfill run.
type BackfillResult struct {
	PortfolioID string                 `json:"portfolio_id"`
	DryRun      bool                   `json:"dry_run"`
	Assets      []AssetBackfillSummary `json:"assets"`
	Updated     int                    `json:"updated"`
	Anomalies   int                    `json:"anomalies"`
}

// BackfillService recomputes realized P&L for historical transactions by
// replaying each (portfolio, asset) ledger chronologically with the same
// weighted-average algorithm the trade engine uses.
type BackfillService interface {
	// BackfillRealizedGains replays one portfolio's ledger. When dryRun is
	// set, results are computed and reported but nothing is persisted.
	BackfillRealizedGains(ctx context.Context, portfolioID string, dryRun bool) (*BackfillResult, error)
	// BackfillAll runs BackfillRealizedGains for every portfolio.
	BackfillAll(ctx context.Context, dryRun bool) ([]BackfillResult, error)
}

type backfillService struct {
	dbBeginner      db.DBTxBeginner
	portfolioRepo   repository.PortfolioRepository
	transactionRepo repository.TransactionRepository
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
	log             *logrus.Logger
}

// NewBackfillService creates a new instance of BackfillService.
func NewBackfillService(
	dbBeginner db.DBTxBeginner,
	portfolioRepo repository.PortfolioRepository,
	transactionRepo repository.TransactionRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	log *logrus.Logger,
) BackfillService {
	return &backfillService{
		dbBeginner:      dbBeginner,
		portfolioRepo:   portfolioRepo,
		transactionRepo: transactionRepo,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
		log:             log,
	}
}

func (s *backfillService) BackfillRealizedGains(ctx context.Context, portfolioID string, dryRun bool) (*BackfillResult, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("backfill: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("backfill: transaction controller does not implement DBExecutor")
	}

	if _, err := s.portfolioRepo.GetByID(ctx, txExecutor, portfolioID); err != nil {
		return nil, fmt.Errorf("backfill: failed to get portfolio %s: %w", portfolioID, err)
	}

	cryptoIDs, err := s.transactionRepo.DistinctCryptocurrencyIDs(ctx, txExecutor, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("backfill: failed to list traded assets: %w", err)
	}

	result := &BackfillResult{PortfolioID: portfolioID, DryRun: dryRun}
	for _, cryptoID := range cryptoIDs {
		summary, err := s.replayAsset(ctx, txExecutor, portfolioID, cryptoID, dryRun)
		if err != nil {
			return nil, err
		}
		result.Assets = append(result.Assets, summary)
		result.Updated += summary.Updated
		result.Anomalies += summary.Anomalies
	}

	if dryRun {
		// The deferred rollback discards any accidental writes.
		s.log.Infof("backfill dry run for portfolio %s: %d of %d assets would change", portfolioID, result.Updated, len(cryptoIDs))
		return result, nil
	}
	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("backfill: failed to commit transaction: %w", err)
	}
	s.log.Infof("backfill for portfolio %s: updated %d transactions across %d assets", portfolioID, result.Updated, len(cryptoIDs))
	return result, nil
}

// replayAsset walks one asset's trades oldest first, maintaining a running
// quantity, cost basis and average price exactly as live execution would.
func (s *backfillService) replayAsset(ctx context.Context, q repository.DBExecutor, portfolioID, cryptoID string, dryRun bool) (AssetBackfillSummary, error) {
	summary := AssetBackfillSummary{CryptocurrencyID: cryptoID, TotalRealized: decimal.Zero}

	transactions, err := s.transactionRepo.ListByPortfolioAndCrypto(ctx, q, portfolioID, cryptoID)
	if err != nil {
		return summary, fmt.Errorf("backfill: failed to list transactions for asset %s: %w", cryptoID, err)
	}
	summary.Transactions = len(transactions)

	runningQty := decimal.Zero
	runningCost := decimal.Zero
	runningAvg := decimal.Zero

	for _, tx := range transactions {
		var realized decimal.Decimal

		switch tx.Type {
		case domain.TransactionTypeBuy:
			realized = decimal.Zero.Round(domain.USDPrecision)
			runningQty = runningQty.Add(tx.Quantity)
			runningCost = runningCost.Add(tx.TotalAmount)
			runningAvg = runningCost.DivRound(runningQty, domain.QuantityPrecision)

		case domain.TransactionTypeSell:
			if runningQty.IsZero() {
				// SELL with no prior BUY in the replay. Default to zero and
				// report it rather than abort the run.
				realized = decimal.Zero.Round(domain.USDPrecision)
				summary.Anomalies++
				s.log.Warnf("backfill: transaction %s sells %s with no prior buys", tx.ID, cryptoID)
			} else {
				realized = tx.PricePerUnit.Sub(runningAvg).Mul(tx.Quantity).Round(domain.USDPrecision)
				costSold := tx.Quantity.DivRound(runningQty, domain.QuantityPrecision).Mul(runningCost).Round(domain.USDPrecision)
				runningQty = runningQty.Sub(tx.Quantity)
				runningCost = runningCost.Sub(costSold)
				if runningQty.LessThan(residualQuantity) {
					runningQty = decimal.Zero
					runningCost = decimal.Zero
					runningAvg = decimal.Zero
				}
			}
		}

		summary.TotalRealized = summary.TotalRealized.Add(realized)
		if tx.RealizedGainLoss.Equal(realized) {
			continue
		}
		summary.Updated++
		if dryRun {
			s.log.Infof("backfill: would update transaction %s realized P&L %s -> %s", tx.ID, tx.RealizedGainLoss, realized)
			continue
		}
		if err := s.transactionRepo.UpdateRealizedGainLoss(ctx, q, tx.ID, realized); err != nil {
			return summary, fmt.Errorf("backfill: failed to update transaction %s: %w", tx.ID, err)
		}
	}
	return summary, nil
}

func (s *backfillService) BackfillAll(ctx context.Context, dryRun bool) ([]BackfillResult, error) {
	executor, ok := s.dbBeginner.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("backfill: database handle does not implement DBExecutor")
	}
	portfolios, err := s.portfolioRepo.List(ctx, executor)
	if err != nil {
		return nil, fmt.Errorf("backfill: failed to list portfolios: %w", err)
	}

	results := make([]BackfillResult, 0, len(portfolios))
	for _, portfolio := range portfolios {
		result, err := s.BackfillRealizedGains(ctx, portfolio.ID, dryRun)
		if err != nil {
			return results, err
		}
		results = append(results, *result)
	}
	return results, nil
}
