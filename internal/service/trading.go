// internal/service/trading.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
	"github.com/jpwyse/bitsofstock-sandbox/internal/repository"
	"github.com/jpwyse/bitsofstock-sandbox/internal/util"
	"github.com/jpwyse/bitsofstock-sandbox/pkg/db"
)

// MinimumTradeAmount is the smallest accepted order size in USD.
var MinimumTradeAmount = decimal.RequireFromString("0.01")

// TradeOrder describes one buy or sell request. Exactly one of AmountUSD and
// Quantity must be set; the other side is derived from the asset's current
// price. ExecutedAt back-dates the resulting ledger record when set (used by
// seeding); it defaults to now.
type TradeOrder struct {
	PortfolioID      string
	CryptocurrencyID string
	AmountUSD        *decimal.Decimal
	Quantity         *decimal.Decimal
	ExecutedAt       *time.Time
}

// TradingService executes buy and sell orders against current spot prices.
//
// Every execution is one atomic unit of work spanning the cash update, the
// holding upsert/delete and the transaction insert. Business rule violations
// come back as sentinel errors from internal/util; anything else is an
// infrastructure failure and the unit of work is rolled back either way.
type TradingService interface {
	ExecuteBuy(ctx context.Context, order TradeOrder) (*domain.Transaction, error)
	ExecuteSell(ctx context.Context, order TradeOrder) (*domain.Transaction, error)
}

type tradingService struct {
	dbBeginner      db.DBTxBeginner
	portfolioRepo   repository.PortfolioRepository
	holdingRepo     repository.HoldingRepository
	transactionRepo repository.TransactionRepository
	cryptoRepo      repository.CryptocurrencyRepository
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
	log             *logrus.Logger
	now             func() time.Time
}

// NewTradingService creates a new instance of TradingService.
func NewTradingService(
	dbBeginner db.DBTxBeginner,
	portfolioRepo repository.PortfolioRepository,
	holdingRepo repository.HoldingRepository,
	transactionRepo repository.TransactionRepository,
	cryptoRepo repository.CryptocurrencyRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	log *logrus.Logger,
) TradingService {
	return &tradingService{
		dbBeginner:      dbBeginner,
		portfolioRepo:   portfolioRepo,
		holdingRepo:     holdingRepo,
		transactionRepo: transactionRepo,
		cryptoRepo:      cryptoRepo,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
		log:             log,
		now:             time.Now,
	}
}

// resolveOrderSides derives the missing side of an order from the spot price.
// Quantities are held to 8 decimal places and USD amounts to 2.
func resolveOrderSides(order TradeOrder, price decimal.Decimal) (amountUSD, quantity decimal.Decimal, err error) {
	switch {
	case order.AmountUSD != nil && order.Quantity != nil:
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: provide either amount_usd or quantity, not both", util.ErrInvalidInput)
	case order.AmountUSD != nil:
		amountUSD = *order.AmountUSD
		quantity = amountUSD.DivRound(price, domain.QuantityPrecision)
	case order.Quantity != nil:
		quantity = *order.Quantity
		amountUSD = quantity.Mul(price).Round(domain.USDPrecision)
	default:
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: must provide either amount_usd or quantity", util.ErrInvalidInput)
	}
	if !quantity.IsPositive() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: trade quantity must be positive", util.ErrInvalidInput)
	}
	return amountUSD, quantity, nil
}

func (s *tradingService) executedAt(order TradeOrder) time.Time {
	if order.ExecutedAt != nil {
		return order.ExecutedAt.UTC()
	}
	return s.now().UTC()
}

// ExecuteBuy executes a BUY order: validates price availability, minimum size
// and available cash, then atomically debits cash, upserts the holding with a
// weighted-average cost basis recompute, and appends the ledger record.
func (s *tradingService) ExecuteBuy(ctx context.Context, order TradeOrder) (*domain.Transaction, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("execute buy: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("execute buy: transaction controller does not implement DBExecutor")
	}

	crypto, err := s.cryptoRepo.GetByID(ctx, txExecutor, order.CryptocurrencyID)
	if err != nil {
		return nil, fmt.Errorf("execute buy: failed to get cryptocurrency %s: %w", order.CryptocurrencyID, err)
	}
	if !crypto.HasPrice() {
		return nil, fmt.Errorf("%s: %w", crypto.Symbol, util.ErrPriceUnavailable)
	}

	portfolio, err := s.portfolioRepo.GetByID(ctx, txExecutor, order.PortfolioID)
	if err != nil {
		return nil, fmt.Errorf("execute buy: failed to get portfolio %s: %w", order.PortfolioID, err)
	}

	price := crypto.Price()
	amountUSD, quantity, err := resolveOrderSides(order, price)
	if err != nil {
		return nil, err
	}

	if amountUSD.LessThan(MinimumTradeAmount) {
		return nil, fmt.Errorf("%w: minimum trade amount is $%s", util.ErrInvalidInput, MinimumTradeAmount)
	}
	if amountUSD.GreaterThan(portfolio.CashBalance) {
		return nil, fmt.Errorf("%w: available $%s, required $%s", util.ErrInsufficientFunds, portfolio.CashBalance, amountUSD)
	}

	if err := s.portfolioRepo.AdjustCashBalance(ctx, txExecutor, portfolio.ID, amountUSD.Neg()); err != nil {
		return nil, fmt.Errorf("execute buy: failed to debit cash: %w", err)
	}

	holding, err := s.holdingRepo.GetByPortfolioAndCrypto(ctx, txExecutor, portfolio.ID, crypto.ID)
	switch {
	case err == nil:
		holding.ApplyBuy(quantity, amountUSD)
		if err := s.holdingRepo.Update(ctx, txExecutor, holding); err != nil {
			return nil, fmt.Errorf("execute buy: failed to update holding: %w", err)
		}
	case util.IsError(err, util.ErrNotFound):
		avg := amountUSD.DivRound(quantity, domain.QuantityPrecision)
		holding = domain.NewHolding(portfolio.ID, crypto.ID, quantity, avg, amountUSD)
		if err := s.holdingRepo.Create(ctx, txExecutor, holding); err != nil {
			return nil, fmt.Errorf("execute buy: failed to create holding: %w", err)
		}
	default:
		return nil, fmt.Errorf("execute buy: failed to get holding: %w", err)
	}

	transaction := domain.NewTransaction(
		portfolio.ID, crypto.ID, domain.TransactionTypeBuy,
		quantity, price, amountUSD, s.executedAt(order), decimal.Zero.Round(domain.USDPrecision))
	if err := s.transactionRepo.Create(ctx, txExecutor, transaction); err != nil {
		return nil, fmt.Errorf("execute buy: failed to create transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("execute buy: failed to commit transaction: %w", err)
	}

	s.log.Infof("buy executed: %s %s for $%s", quantity, crypto.Symbol, amountUSD)
	return transaction, nil
}

// ExecuteSell executes a SELL order: validates price availability and owned
// quantity, computes realized P&L from the cost basis as it stood before the
// sale, then atomically credits cash, reduces or deletes the holding, and
// appends the ledger record.
func (s *tradingService) ExecuteSell(ctx context.Context, order TradeOrder) (*domain.Transaction, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("execute sell: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("execute sell: transaction controller does not implement DBExecutor")
	}

	crypto, err := s.cryptoRepo.GetByID(ctx, txExecutor, order.CryptocurrencyID)
	if err != nil {
		return nil, fmt.Errorf("execute sell: failed to get cryptocurrency %s: %w", order.CryptocurrencyID, err)
	}
	if !crypto.HasPrice() {
		return nil, fmt.Errorf("%s: %w", crypto.Symbol, util.ErrPriceUnavailable)
	}

	portfolio, err := s.portfolioRepo.GetByID(ctx, txExecutor, order.PortfolioID)
	if err != nil {
		return nil, fmt.Errorf("execute sell: failed to get portfolio %s: %w", order.PortfolioID, err)
	}

	holding, err := s.holdingRepo.GetByPortfolioAndCrypto(ctx, txExecutor, portfolio.ID, crypto.ID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, fmt.Errorf("%w: you don't own any %s", util.ErrNoHolding, crypto.Symbol)
		}
		return nil, fmt.Errorf("execute sell: failed to get holding: %w", err)
	}

	price := crypto.Price()
	amountUSD, quantity, err := resolveOrderSides(order, price)
	if err != nil {
		return nil, err
	}

	if quantity.GreaterThan(holding.Quantity) {
		return nil, fmt.Errorf("%w: you own %s %s, requested %s %s",
			util.ErrInsufficientHoldings, holding.Quantity, crypto.Symbol, quantity, crypto.Symbol)
	}

	// Realized P&L uses the average purchase price as it stands before the
	// holding is mutated; the order of operations here is load-bearing.
	realized := price.Sub(holding.AveragePurchasePrice).Mul(quantity).Round(domain.USDPrecision)

	if err := s.portfolioRepo.AdjustCashBalance(ctx, txExecutor, portfolio.ID, amountUSD); err != nil {
		return nil, fmt.Errorf("execute sell: failed to credit cash: %w", err)
	}

	if quantity.Equal(holding.Quantity) {
		// Full position exit: no zero-quantity holdings persist.
		if err := s.holdingRepo.Delete(ctx, txExecutor, holding.ID); err != nil {
			return nil, fmt.Errorf("execute sell: failed to delete holding: %w", err)
		}
	} else {
		holding.ApplySell(quantity)
		if err := s.holdingRepo.Update(ctx, txExecutor, holding); err != nil {
			return nil, fmt.Errorf("execute sell: failed to update holding: %w", err)
		}
	}

	transaction := domain.NewTransaction(
		portfolio.ID, crypto.ID, domain.TransactionTypeSell,
		quantity, price, amountUSD, s.executedAt(order), realized)
	if err := s.transactionRepo.Create(ctx, txExecutor, transaction); err != nil {
		return nil, fmt.Errorf("execute sell: failed to create transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("execute sell: failed to commit transaction: %w", err)
	}

	s.log.Infof("sell executed: %s %s for $%s, realized P&L $%s", quantity, crypto.Symbol, amountUSD, realized)
	return transaction, nil
}
