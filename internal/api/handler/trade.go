// internal/api/handler/trade.go
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/jpwyse/bitsofstock-sandbox/internal/api/types"
	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
	"github.com/jpwyse/bitsofstock-sandbox/internal/service"
	"github.com/jpwyse/bitsofstock-sandbox/internal/util"
)

// TradeHandler handles HTTP requests for buy and sell orders.
type TradeHandler struct {
	trading    service.TradingService
	portfolios service.PortfolioService
	log        *logrus.Logger
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(trading service.TradingService, portfolios service.PortfolioService, log *logrus.Logger) *TradeHandler {
	return &TradeHandler{
		trading:    trading,
		portfolios: portfolios,
		log:        log,
	}
}

// TradeRequest represents the request body for buy and sell.
// Exactly one of amount_usd and quantity must be present. PortfolioID is
// optional; the default portfolio is used when omitted.
type TradeRequest struct {
	PortfolioID      string           `json:"portfolio_id"`
	CryptocurrencyID string           `json:"cryptocurrency_id"`
	AmountUSD        *decimal.Decimal `json:"amount_usd"`
	Quantity         *decimal.Decimal `json:"quantity"`
}

// isBusinessError reports whether a trade failure is a recoverable business
// rule violation. These surface as a success=false envelope, not an HTTP
// error status; the caller can retry with different parameters.
func isBusinessError(err error) bool {
	return util.IsError(err, util.ErrPriceUnavailable) ||
		util.IsError(err, util.ErrInsufficientFunds) ||
		util.IsError(err, util.ErrInsufficientHoldings) ||
		util.IsError(err, util.ErrNoHolding)
}

func (h *TradeHandler) resolveOrder(ctx context.Context, req TradeRequest) (service.TradeOrder, error) {
	order := service.TradeOrder{
		PortfolioID:      req.PortfolioID,
		CryptocurrencyID: req.CryptocurrencyID,
		AmountUSD:        req.AmountUSD,
		Quantity:         req.Quantity,
	}
	if order.PortfolioID == "" {
		portfolio, err := h.portfolios.GetDefaultPortfolio(ctx)
		if err != nil {
			return order, err
		}
		order.PortfolioID = portfolio.ID
	}
	return order, nil
}

func (h *TradeHandler) executeTrade(w http.ResponseWriter, r *http.Request,
	execute func(ctx context.Context, order service.TradeOrder) (*domain.Transaction, error)) {

	var req TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.log, util.ErrInvalidInput)
		return
	}
	if req.CryptocurrencyID == "" {
		respondWithError(w, h.log, util.ErrInvalidInput)
		return
	}

	order, err := h.resolveOrder(r.Context(), req)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	transaction, err := execute(r.Context(), order)
	if err != nil {
		if isBusinessError(err) {
			respondWithJSON(w, h.log, http.StatusOK, types.TradeResponse[domain.Transaction]{
				Success: false,
				Error:   err.Error(),
			})
			return
		}
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, h.log, http.StatusOK, types.TradeResponse[domain.Transaction]{
		Success:     true,
		Transaction: transaction,
	})
}

// ExecuteBuy handles the buy order request.
// POST /api/trades/buy
func (h *TradeHandler) ExecuteBuy(w http.ResponseWriter, r *http.Request) {
	h.executeTrade(w, r, h.trading.ExecuteBuy)
}

// ExecuteSell handles the sell order request.
// POST /api/trades/sell
func (h *TradeHandler) ExecuteSell(w http.ResponseWriter, r *http.Request) {
	h.executeTrade(w, r, h.trading.ExecuteSell)
}
