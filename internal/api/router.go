// internal/api/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jpwyse/bitsofstock-sandbox/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(
	tradeHandler *handler.TradeHandler,
	portfolioHandler *handler.PortfolioHandler,
	marketHandler *handler.MarketHandler,
	accountHandler *handler.AccountHandler,
) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/trades", func(r chi.Router) {
			r.Post("/buy", tradeHandler.ExecuteBuy)
			r.Post("/sell", tradeHandler.ExecuteSell)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/summary", portfolioHandler.GetSummary)
			r.Get("/history", portfolioHandler.GetHistory)
		})
		r.Get("/holdings", portfolioHandler.GetHoldings)
		r.Get("/transactions", portfolioHandler.GetTransactions)

		r.Route("/cryptocurrencies", func(r chi.Router) {
			r.Get("/", marketHandler.ListCryptocurrencies)
			r.Get("/{cryptoID}", marketHandler.GetCryptocurrency)
		})
		r.Get("/news/crypto", marketHandler.GetCryptoNews)

		r.Get("/user/account", accountHandler.GetAccount)
	})

	return r
}
