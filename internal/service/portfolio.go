// internal/service/portfolio.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
	"github.com/jpwyse/bitsofstock-sandbox/internal/repository"
)

// HoldingDetail is one position enriched with its asset and mark-to-market
// valuation.
type HoldingDetail struct {
	Holding            domain.Holding        `json:"holding"`
	Cryptocurrency     domain.Cryptocurrency `json:"cryptocurrency"`
	CurrentValue       decimal.Decimal       `json:"current_value"`
	GainLoss           decimal.Decimal       `json:"gain_loss"`
	GainLossPercentage decimal.Decimal       `json:"gain_loss_percentage"`
}

// PortfolioSummary aggregates a portfolio's cash, positions and P&L.
type PortfolioSummary struct {
	Portfolio          domain.Portfolio `json:"portfolio"`
	Holdings           []HoldingDetail  `json:"holdings"`
	TotalHoldingsValue decimal.Decimal  `json:"total_holdings_value"`
	TotalValue         decimal.Decimal  `json:"total_value"`
	TotalGainLoss      decimal.Decimal  `json:"total_gain_loss"`
	TotalGainLossPct   decimal.Decimal  `json:"total_gain_loss_percentage"`
}

// PortfolioService exposes read-side portfolio aggregation.
type PortfolioService interface {
	// GetSummary values every holding at its asset's current price and
	// derives portfolio-level totals against initial cash.
	GetSummary(ctx context.Context, portfolioID string) (*PortfolioSummary, error)
	// GetDefaultPortfolio returns the portfolio of the first user. The
	// sandbox runs single-user; this anchors API routes that carry no auth.
	GetDefaultPortfolio(ctx context.Context) (*domain.Portfolio, error)
	// GetAccount returns the first user together with their portfolio.
	GetAccount(ctx context.Context) (*domain.User, *domain.Portfolio, error)
	// ListTransactions pages through a portfolio's ledger, newest first.
	ListTransactions(ctx context.Context, portfolioID string, txType *domain.TransactionType, limit, offset int) ([]domain.Transaction, int64, error)
	// FirstTradeAt returns the portfolio's earliest trade timestamp, if any.
	FirstTradeAt(ctx context.Context, portfolioID string) (*time.Time, error)
}

type portfolioService struct {
	db              repository.DBExecutor
	userRepo        repository.UserRepository
	portfolioRepo   repository.PortfolioRepository
	holdingRepo     repository.HoldingRepository
	transactionRepo repository.TransactionRepository
	cryptoRepo      repository.CryptocurrencyRepository
}

// NewPortfolioService creates a new instance of PortfolioService.
func NewPortfolioService(
	db repository.DBExecutor,
	userRepo repository.UserRepository,
	portfolioRepo repository.PortfolioRepository,
	holdingRepo repository.HoldingRepository,
	transactionRepo repository.TransactionRepository,
	cryptoRepo repository.CryptocurrencyRepository,
) PortfolioService {
	return &portfolioService{
		db:              db,
		userRepo:        userRepo,
		portfolioRepo:   portfolioRepo,
		holdingRepo:     holdingRepo,
		transactionRepo: transactionRepo,
		cryptoRepo:      cryptoRepo,
	}
}

func (s *portfolioService) GetSummary(ctx context.Context, portfolioID string) (*PortfolioSummary, error) {
	portfolio, err := s.portfolioRepo.GetByID(ctx, s.db, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("portfolio summary: failed to get portfolio %s: %w", portfolioID, err)
	}

	holdings, err := s.holdingRepo.ListByPortfolio(ctx, s.db, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("portfolio summary: failed to list holdings: %w", err)
	}

	ids := make([]string, 0, len(holdings))
	for _, h := range holdings {
		ids = append(ids, h.CryptocurrencyID)
	}
	cryptos := make(map[string]domain.Cryptocurrency, len(ids))
	if len(ids) > 0 {
		list, err := s.cryptoRepo.ListByIDs(ctx, s.db, ids)
		if err != nil {
			return nil, fmt.Errorf("portfolio summary: failed to load cryptocurrencies: %w", err)
		}
		for _, c := range list {
			cryptos[c.ID] = c
		}
	}

	summary := &PortfolioSummary{
		Portfolio:          *portfolio,
		Holdings:           make([]HoldingDetail, 0, len(holdings)),
		TotalHoldingsValue: decimal.Zero,
	}
	for _, h := range holdings {
		crypto := cryptos[h.CryptocurrencyID]
		price := crypto.Price()
		value := h.CurrentValue(price)
		summary.Holdings = append(summary.Holdings, HoldingDetail{
			Holding:            h,
			Cryptocurrency:     crypto,
			CurrentValue:       value,
			GainLoss:           h.GainLoss(price),
			GainLossPercentage: h.GainLossPercentage(price),
		})
		summary.TotalHoldingsValue = summary.TotalHoldingsValue.Add(value)
	}

	summary.TotalValue = portfolio.TotalValue(summary.TotalHoldingsValue)
	summary.TotalGainLoss = portfolio.GainLoss(summary.TotalHoldingsValue)
	summary.TotalGainLossPct = portfolio.GainLossPercentage(summary.TotalHoldingsValue)
	return summary, nil
}

func (s *portfolioService) GetDefaultPortfolio(ctx context.Context) (*domain.Portfolio, error) {
	user, err := s.userRepo.GetFirst(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("default portfolio: failed to get user: %w", err)
	}
	portfolio, err := s.portfolioRepo.GetByUserID(ctx, s.db, user.ID)
	if err != nil {
		return nil, fmt.Errorf("default portfolio: failed to get portfolio for user %s: %w", user.ID, err)
	}
	return portfolio, nil
}

func (s *portfolioService) GetAccount(ctx context.Context) (*domain.User, *domain.Portfolio, error) {
	user, err := s.userRepo.GetFirst(ctx, s.db)
	if err != nil {
		return nil, nil, fmt.Errorf("account: failed to get user: %w", err)
	}
	portfolio, err := s.portfolioRepo.GetByUserID(ctx, s.db, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("account: failed to get portfolio for user %s: %w", user.ID, err)
	}
	return user, portfolio, nil
}

func (s *portfolioService) ListTransactions(ctx context.Context, portfolioID string, txType *domain.TransactionType, limit, offset int) ([]domain.Transaction, int64, error) {
	transactions, total, err := s.transactionRepo.ListByPortfolio(ctx, s.db, portfolioID, txType, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return transactions, total, nil
}

func (s *portfolioService) FirstTradeAt(ctx context.Context, portfolioID string) (*time.Time, error) {
	ts, err := s.transactionRepo.FirstTimestamp(ctx, s.db, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("first trade: %w", err)
	}
	return ts, nil
}
