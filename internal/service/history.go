// internal/service/history.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
	"github.com/jpwyse/bitsofstock-sandbox/internal/market"
	"github.com/jpwyse/bitsofstock-sandbox/internal/repository"
)

// Timeframe selects the lookback window of a portfolio history request.
type Timeframe string

const (
	Timeframe1D  Timeframe = "1D"
	Timeframe5D  Timeframe = "5D"
	Timeframe1M  Timeframe = "1M"
	Timeframe3M  Timeframe = "3M"
	Timeframe6M  Timeframe = "6M"
	TimeframeYTD Timeframe = "YTD"
)

// timeframeSpec holds the sampling parameters of one timeframe.
type timeframeSpec struct {
	lookbackDays int
	step         time.Duration
	points       int
}

var timeframeSpecs = map[Timeframe]timeframeSpec{
	Timeframe1D: {lookbackDays: 1, step: time.Hour, points: 24},
	Timeframe5D: {lookbackDays: 5, step: time.Hour, points: 120},
	Timeframe1M: {lookbackDays: 30, step: 24 * time.Hour, points: 30},
	Timeframe3M: {lookbackDays: 90, step: 24 * time.Hour, points: 90},
	Timeframe6M: {lookbackDays: 180, step: 24 * time.Hour, points: 180},
}

// resolveTimeframe maps a timeframe to its sampling parameters. YTD is
// computed from Jan 1 of the current year; anything unrecognized degrades
// to 1M rather than failing.
func resolveTimeframe(timeframe Timeframe, now time.Time) timeframeSpec {
	if timeframe == TimeframeYTD {
		jan1 := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		days := int(now.Sub(jan1).Hours() / 24)
		if days < 1 {
			days = 1
		}
		return timeframeSpec{lookbackDays: days, step: 24 * time.Hour, points: days}
	}
	spec, ok := timeframeSpecs[timeframe]
	if !ok {
		return timeframeSpecs[Timeframe1M]
	}
	return spec
}

// HistoryPoint is one sampled (timestamp, portfolio value) pair.
type HistoryPoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Value     decimal.Decimal `json:"value"`
}

// HistoryService reconstructs a portfolio's value over time for charting.
//
// The engine is read-only. Per sampled point it replays the full transaction
// ledger from scratch rather than keeping a rolling position, which stays
// correct in the presence of back-dated trades. Market data failures degrade
// to cached or zero prices instead of failing the request.
type HistoryService interface {
	CalculatePortfolioHistory(ctx context.Context, portfolioID string, timeframe Timeframe) ([]HistoryPoint, error)
}

type historyService struct {
	db               repository.DBExecutor
	portfolioRepo    repository.PortfolioRepository
	holdingRepo      repository.HoldingRepository
	transactionRepo  repository.TransactionRepository
	cryptoRepo       repository.CryptocurrencyRepository
	priceHistoryRepo repository.PriceHistoryRepository
	gateway          market.DataGateway
	log              *logrus.Logger
	now              func() time.Time
}

// NewHistoryService creates a new instance of HistoryService.
func NewHistoryService(
	db repository.DBExecutor,
	portfolioRepo repository.PortfolioRepository,
	holdingRepo repository.HoldingRepository,
	transactionRepo repository.TransactionRepository,
	cryptoRepo repository.CryptocurrencyRepository,
	priceHistoryRepo repository.PriceHistoryRepository,
	gateway market.DataGateway,
	log *logrus.Logger,
) HistoryService {
	return &historyService{
		db:               db,
		portfolioRepo:    portfolioRepo,
		holdingRepo:      holdingRepo,
		transactionRepo:  transactionRepo,
		cryptoRepo:       cryptoRepo,
		priceHistoryRepo: priceHistoryRepo,
		gateway:          gateway,
		log:              log,
		now:              time.Now,
	}
}

// CalculatePortfolioHistory samples the portfolio's value at fixed intervals
// across the timeframe and returns the points in ascending timestamp order.
func (s *historyService) CalculatePortfolioHistory(ctx context.Context, portfolioID string, timeframe Timeframe) ([]HistoryPoint, error) {
	now := s.now().UTC()
	spec := resolveTimeframe(timeframe, now)
	start := now.AddDate(0, 0, -spec.lookbackDays)

	portfolio, err := s.portfolioRepo.GetByID(ctx, s.db, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("portfolio history: failed to get portfolio %s: %w", portfolioID, err)
	}

	// Full ledger, oldest first. Replay needs every transaction at or before
	// each sampled point, including trades older than the window itself.
	transactions, err := s.transactionRepo.ListByPortfolioSince(ctx, s.db, portfolioID, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("portfolio history: failed to list transactions: %w", err)
	}

	inception := portfolio.CreatedAt
	if len(transactions) > 0 && transactions[0].Timestamp.Before(inception) {
		// Back-dated trades move inception earlier.
		inception = transactions[0].Timestamp
	}

	priceCache := s.buildPriceCache(ctx, portfolioID, transactions, spec.lookbackDays, now)

	points := make([]HistoryPoint, 0, spec.points)
	for i := 0; i < spec.points; i++ {
		at := start.Add(time.Duration(i) * spec.step)

		var value decimal.Decimal
		if at.Before(inception) {
			value = portfolio.InitialCash
		} else {
			// cash_balance approximates the cash component at every point;
			// a historical cash ledger replay is a tracked improvement.
			value = portfolio.CashBalance.Add(s.holdingsValueAt(transactions, priceCache, at))
		}
		points = append(points, HistoryPoint{Timestamp: at, Value: value.Round(domain.USDPrecision)})
	}
	return points, nil
}

// holdingsValueAt marks every position held at the given time to market by
// replaying the full ledger up to that point.
func (s *historyService) holdingsValueAt(transactions []domain.Transaction, priceCache map[string][]market.PricePoint, at time.Time) decimal.Decimal {
	quantities := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		if tx.Timestamp.After(at) {
			continue
		}
		switch tx.Type {
		case domain.TransactionTypeBuy:
			quantities[tx.CryptocurrencyID] = quantities[tx.CryptocurrencyID].Add(tx.Quantity)
		case domain.TransactionTypeSell:
			quantities[tx.CryptocurrencyID] = quantities[tx.CryptocurrencyID].Sub(tx.Quantity)
		}
	}

	total := decimal.Zero
	for cryptoID, quantity := range quantities {
		if !quantity.IsPositive() {
			continue
		}
		total = total.Add(quantity.Mul(closestPrice(priceCache[cryptoID], at)))
	}
	return total
}

// closestPrice forward-fills from an ascending price series: the most recent
// price at or before the target, else the earliest known price, else zero.
func closestPrice(points []market.PricePoint, at time.Time) decimal.Decimal {
	if len(points) == 0 {
		return decimal.Zero
	}
	best := decimal.Decimal{}
	found := false
	for _, p := range points {
		if p.Timestamp.After(at) {
			break
		}
		best = p.Price
		found = true
	}
	if !found {
		return points[0].Price
	}
	return best
}

// buildPriceCache fetches one historical price series per distinct asset the
// portfolio has touched. Gateway results are mirrored into the persisted
// price history; on gateway failure the persisted rows serve as the fallback,
// and failing that a single entry at the asset's last-known spot price.
func (s *historyService) buildPriceCache(ctx context.Context, portfolioID string, transactions []domain.Transaction, lookbackDays int, now time.Time) map[string][]market.PricePoint {
	assetIDs := make(map[string]struct{})
	for _, tx := range transactions {
		assetIDs[tx.CryptocurrencyID] = struct{}{}
	}
	holdings, err := s.holdingRepo.ListByPortfolio(ctx, s.db, portfolioID)
	if err != nil {
		s.log.Warnf("portfolio history: failed to list holdings for %s: %v", portfolioID, err)
	}
	for _, h := range holdings {
		assetIDs[h.CryptocurrencyID] = struct{}{}
	}

	cache := make(map[string][]market.PricePoint, len(assetIDs))
	if len(assetIDs) == 0 {
		return cache
	}

	ids := make([]string, 0, len(assetIDs))
	for id := range assetIDs {
		ids = append(ids, id)
	}
	cryptos, err := s.cryptoRepo.ListByIDs(ctx, s.db, ids)
	if err != nil {
		s.log.Warnf("portfolio history: failed to load cryptocurrencies: %v", err)
		return cache
	}

	for _, crypto := range cryptos {
		series, err := s.gateway.GetHistoricalPrices(ctx, crypto.CoinGeckoID, lookbackDays)
		if err != nil {
			s.log.Warnf("portfolio history: historical prices for %s unavailable: %v", crypto.Symbol, err)
		}
		if len(series) > 0 {
			cache[crypto.ID] = series
			s.persistSeries(ctx, crypto.ID, series)
			continue
		}
		if cached := s.cachedSeries(ctx, crypto.ID, now.AddDate(0, 0, -lookbackDays), now); len(cached) > 0 {
			cache[crypto.ID] = cached
			continue
		}
		if crypto.HasPrice() {
			cache[crypto.ID] = []market.PricePoint{{Timestamp: now, Price: crypto.Price()}}
		}
		// No data at all: the asset contributes $0 to holdings value.
	}
	return cache
}

// persistSeries mirrors a fetched series into price_history, best effort.
func (s *historyService) persistSeries(ctx context.Context, cryptoID string, series []market.PricePoint) {
	for _, p := range series {
		snapshot := domain.NewPriceHistory(cryptoID, p.Price, p.Timestamp)
		if err := s.priceHistoryRepo.Insert(ctx, s.db, snapshot); err != nil {
			s.log.Warnf("portfolio history: failed to cache price for %s: %v", cryptoID, err)
			return
		}
	}
}

// cachedSeries reads previously persisted snapshots for an asset.
func (s *historyService) cachedSeries(ctx context.Context, cryptoID string, from, to time.Time) []market.PricePoint {
	rows, err := s.priceHistoryRepo.ListRange(ctx, s.db, cryptoID, from, to)
	if err != nil {
		s.log.Warnf("portfolio history: failed to read cached prices for %s: %v", cryptoID, err)
		return nil
	}
	series := make([]market.PricePoint, 0, len(rows))
	for _, row := range rows {
		series = append(series, market.PricePoint{Timestamp: row.Timestamp, Price: row.Price})
	}
	return series
}
