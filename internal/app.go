// internal/app.go
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	router "github.com/jpwyse/bitsofstock-sandbox/internal/api"
	"github.com/jpwyse/bitsofstock-sandbox/internal/api/handler"
	"github.com/jpwyse/bitsofstock-sandbox/internal/config"
	"github.com/jpwyse/bitsofstock-sandbox/internal/market"
	"github.com/jpwyse/bitsofstock-sandbox/internal/repository"
	"github.com/jpwyse/bitsofstock-sandbox/internal/repository/postgres"
	"github.com/jpwyse/bitsofstock-sandbox/internal/service"
	"github.com/jpwyse/bitsofstock-sandbox/internal/util"
	"github.com/jpwyse/bitsofstock-sandbox/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *logrus.Logger
	DB     *sqlx.DB

	// Repositories
	UserRepository           repository.UserRepository
	PortfolioRepository      repository.PortfolioRepository
	HoldingRepository        repository.HoldingRepository
	TransactionRepository    repository.TransactionRepository
	CryptocurrencyRepository repository.CryptocurrencyRepository
	PriceHistoryRepository   repository.PriceHistoryRepository

	// Market data clients
	MarketGateway market.DataGateway
	NewsProvider  market.NewsProvider

	// Services
	TradingService     service.TradingService
	PortfolioService   service.PortfolioService
	HistoryService     service.HistoryService
	BackfillService    service.BackfillService
	PriceUpdateService service.PriceUpdateService
	AssetService       service.AssetService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	// 4. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository()
	app.PortfolioRepository = postgres.NewPortfolioRepository()
	app.HoldingRepository = postgres.NewHoldingRepository()
	app.TransactionRepository = postgres.NewTransactionRepository()
	app.CryptocurrencyRepository = postgres.NewCryptocurrencyRepository()
	app.PriceHistoryRepository = postgres.NewPriceHistoryRepository()
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize market data clients
	app.MarketGateway = market.NewCoinGeckoClient(app.Config.CoinGeckoAPIURL, app.Config.CoinGeckoAPIKey, app.Logger)
	app.NewsProvider = market.NewFinnhubClient(app.Config.FinnhubAPIKey, app.Logger)

	// 6. Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	app.TradingService = service.NewTradingService(
		app.DB, // This is the DBTxBeginner
		app.PortfolioRepository,
		app.HoldingRepository,
		app.TransactionRepository,
		app.CryptocurrencyRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		app.Logger,
	)
	app.PortfolioService = service.NewPortfolioService(
		app.DB, // This is the DBExecutor for read paths
		app.UserRepository,
		app.PortfolioRepository,
		app.HoldingRepository,
		app.TransactionRepository,
		app.CryptocurrencyRepository,
	)
	app.HistoryService = service.NewHistoryService(
		app.DB,
		app.PortfolioRepository,
		app.HoldingRepository,
		app.TransactionRepository,
		app.CryptocurrencyRepository,
		app.PriceHistoryRepository,
		app.MarketGateway,
		app.Logger,
	)
	app.BackfillService = service.NewBackfillService(
		app.DB,
		app.PortfolioRepository,
		app.TransactionRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		app.Logger,
	)
	app.PriceUpdateService = service.NewPriceUpdateService(
		app.DB,
		app.CryptocurrencyRepository,
		app.PriceHistoryRepository,
		app.MarketGateway,
		app.Logger,
	)
	app.AssetService = service.NewAssetService(app.DB, app.CryptocurrencyRepository, app.PriceHistoryRepository, app.NewsProvider)
	app.Logger.Info("Services initialized.")

	// 7. Initialize HTTP Handlers and Router
	tradeHandler := handler.NewTradeHandler(app.TradingService, app.PortfolioService, app.Logger)
	portfolioHandler := handler.NewPortfolioHandler(app.PortfolioService, app.HistoryService, app.Logger)
	marketHandler := handler.NewMarketHandler(app.AssetService, app.Logger)
	accountHandler := handler.NewAccountHandler(app.PortfolioService, app.Logger)
	app.HTTPHandler = router.NewRouter(tradeHandler, portfolioHandler, marketHandler, accountHandler)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Errorf("Failed to close database connection: %v", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
