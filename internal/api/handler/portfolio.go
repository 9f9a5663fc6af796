// internal/api/handler/portfolio.go
package handler

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/jpwyse/bitsofstock-sandbox/internal/api/types"
	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
	"github.com/jpwyse/bitsofstock-sandbox/internal/service"
	"github.com/jpwyse/bitsofstock-sandbox/internal/util"
)

// PortfolioHandler handles HTTP requests for portfolio reads.
type PortfolioHandler struct {
	portfolios service.PortfolioService
	history    service.HistoryService
	log        *logrus.Logger
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolios service.PortfolioService, history service.HistoryService, log *logrus.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolios: portfolios,
		history:    history,
		log:        log,
	}
}

// resolvePortfolioID reads the optional portfolio_id query parameter, falling
// back to the default portfolio.
func (h *PortfolioHandler) resolvePortfolioID(r *http.Request) (string, error) {
	if id := r.URL.Query().Get("portfolio_id"); id != "" {
		return id, nil
	}
	portfolio, err := h.portfolios.GetDefaultPortfolio(r.Context())
	if err != nil {
		return "", err
	}
	return portfolio.ID, nil
}

// GetSummary handles the portfolio summary request.
// GET /api/portfolio/summary
func (h *PortfolioHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	portfolioID, err := h.resolvePortfolioID(r)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	summary, err := h.portfolios.GetSummary(r.Context(), portfolioID)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	respondWithJSON(w, h.log, http.StatusOK, summary)
}

var validTimeframes = map[service.Timeframe]bool{
	service.Timeframe1D:  true,
	service.Timeframe5D:  true,
	service.Timeframe1M:  true,
	service.Timeframe3M:  true,
	service.Timeframe6M:  true,
	service.TimeframeYTD: true,
}

// GetHistory handles the portfolio history request.
// GET /api/portfolio/history?timeframe=1M
func (h *PortfolioHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	timeframe := service.Timeframe(r.URL.Query().Get("timeframe"))
	if timeframe == "" {
		timeframe = service.Timeframe1M
	}
	// The engine itself degrades unknown timeframes to 1M; at the HTTP
	// boundary an explicit bad value is a client error.
	if !validTimeframes[timeframe] {
		respondWithError(w, h.log, util.ErrInvalidInput)
		return
	}

	portfolioID, err := h.resolvePortfolioID(r)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	points, err := h.history.CalculatePortfolioHistory(r.Context(), portfolioID, timeframe)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	respondWithJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"timeframe": timeframe,
		"points":    points,
	})
}

// GetHoldings handles the holdings list request.
// GET /api/holdings
func (h *PortfolioHandler) GetHoldings(w http.ResponseWriter, r *http.Request) {
	portfolioID, err := h.resolvePortfolioID(r)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	summary, err := h.portfolios.GetSummary(r.Context(), portfolioID)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	respondWithJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"holdings":             summary.Holdings,
		"total_holdings_value": summary.TotalHoldingsValue,
	})
}

// GetTransactions handles the transaction history request.
// GET /api/transactions?type=BUY&limit=10&offset=0
func (h *PortfolioHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	portfolioID, err := h.resolvePortfolioID(r)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	var txType *domain.TransactionType
	if t := r.URL.Query().Get("type"); t != "" {
		parsed := domain.TransactionType(t)
		if parsed != domain.TransactionTypeBuy && parsed != domain.TransactionTypeSell {
			respondWithError(w, h.log, util.ErrInvalidInput)
			return
		}
		txType = &parsed
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	transactions, total, err := h.portfolios.ListTransactions(r.Context(), portfolioID, txType, limit, offset)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	respondWithJSON(w, h.log, http.StatusOK, types.PaginatedResponse[domain.Transaction]{
		Data:       transactions,
		Limit:      limit,
		Offset:     offset,
		TotalCount: total,
	})
}
