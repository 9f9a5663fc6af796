// Command seed populates the database with a demo user, portfolio and asset
// catalog, refreshes market data once, and executes a handful of back-dated
// trades so charts and history have something to show. Safe to rerun: it
// stops early when the demo user already exists.
package main

import (
	"context"
	"os"
	"time"

	"github.com/shopspring/decimal"

	app "github.com/jpwyse/bitsofstock-sandbox/internal"
	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
	"github.com/jpwyse/bitsofstock-sandbox/internal/service"
	"github.com/jpwyse/bitsofstock-sandbox/internal/util"
)

const (
	demoUsername = "john_smith"
	demoEmail    = "john.smith@example.com"
)

var demoInitialCash = decimal.RequireFromString("10000.00")

type seedAsset struct {
	symbol      string
	name        string
	coinGeckoID string
	category    domain.Category
}

var seedAssets = []seedAsset{
	{"BTC", "Bitcoin", "bitcoin", domain.CategoryCrypto},
	{"ETH", "Ethereum", "ethereum", domain.CategoryCrypto},
	{"SOL", "Solana", "solana", domain.CategoryCrypto},
	{"XRP", "XRP", "ripple", domain.CategoryCrypto},
	{"USDC", "USD Coin", "usd-coin", domain.CategoryStablecoin},
}

// demoTrade describes one back-dated trade executed during seeding.
type demoTrade struct {
	symbol    string
	amountUSD string
	daysAgo   int
}

var demoTrades = []demoTrade{
	{"BTC", "2500.00", 21},
	{"ETH", "1500.00", 14},
	{"SOL", "500.00", 7},
}

func main() {
	ctx := context.Background()

	application := app.NewApplication()
	if err := application.Initialize(ctx); err != nil {
		util.GetLogger().Errorf("Failed to initialize application: %v", err)
		os.Exit(1)
	}
	defer func() {
		_ = application.Shutdown(ctx)
	}()

	log := application.Logger

	if _, err := application.UserRepository.GetByUsername(ctx, application.DB, demoUsername); err == nil {
		log.Infof("demo user %s already exists, nothing to do", demoUsername)
		return
	}

	user := domain.NewUser(demoUsername, demoEmail)
	firstName, lastName := "John", "Smith"
	user.FirstName = &firstName
	user.LastName = &lastName
	if err := application.UserRepository.Create(ctx, application.DB, user); err != nil {
		log.Errorf("Failed to create demo user: %v", err)
		os.Exit(1)
	}

	portfolio := domain.NewPortfolio(user.ID, demoInitialCash)
	if err := application.PortfolioRepository.Create(ctx, application.DB, portfolio); err != nil {
		log.Errorf("Failed to create portfolio: %v", err)
		os.Exit(1)
	}
	log.Infof("created demo user %s with $%s", demoUsername, demoInitialCash)

	for _, asset := range seedAssets {
		crypto := domain.NewCryptocurrency(asset.symbol, asset.name, asset.coinGeckoID, "", asset.category)
		if err := application.CryptocurrencyRepository.Create(ctx, application.DB, crypto); err != nil {
			log.Errorf("Failed to create cryptocurrency %s: %v", asset.symbol, err)
			os.Exit(1)
		}
	}
	log.Infof("created %d cryptocurrencies", len(seedAssets))

	// Trades need spot prices; fetch them once before seeding positions.
	if n, err := application.PriceUpdateService.RefreshOnce(ctx); err != nil {
		log.Warnf("price refresh failed, skipping demo trades: %v", err)
		return
	} else if n == 0 {
		log.Warn("no prices available, skipping demo trades")
		return
	}

	now := time.Now().UTC()
	for _, trade := range demoTrades {
		crypto, err := application.CryptocurrencyRepository.GetBySymbol(ctx, application.DB, trade.symbol)
		if err != nil {
			log.Warnf("skipping demo trade for %s: %v", trade.symbol, err)
			continue
		}
		amount := decimal.RequireFromString(trade.amountUSD)
		executedAt := now.AddDate(0, 0, -trade.daysAgo)
		_, err = application.TradingService.ExecuteBuy(ctx, service.TradeOrder{
			PortfolioID:      portfolio.ID,
			CryptocurrencyID: crypto.ID,
			AmountUSD:        &amount,
			ExecutedAt:       &executedAt,
		})
		if err != nil {
			log.Warnf("demo buy of %s failed: %v", trade.symbol, err)
			continue
		}
		log.Infof("seeded buy: $%s of %s dated %s", amount, trade.symbol, executedAt.Format("2006-01-02"))
	}

	log.Info("seed complete")
}
