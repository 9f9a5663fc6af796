// internal/api/handler/market.go
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/jpwyse/bitsofstock-sandbox/internal/service"
	"github.com/jpwyse/bitsofstock-sandbox/internal/util"
)

// MarketHandler handles HTTP requests for the asset catalog and news feed.
type MarketHandler struct {
	assets service.AssetService
	log    *logrus.Logger
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(assets service.AssetService, log *logrus.Logger) *MarketHandler {
	return &MarketHandler{
		assets: assets,
		log:    log,
	}
}

// ListCryptocurrencies handles the asset catalog request.
// GET /api/cryptocurrencies
func (h *MarketHandler) ListCryptocurrencies(w http.ResponseWriter, r *http.Request) {
	cryptos, err := h.assets.ListCryptocurrencies(r.Context())
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	respondWithJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"cryptocurrencies": cryptos,
	})
}

// GetCryptocurrency handles the single asset request.
// GET /api/cryptocurrencies/{cryptoID}
func (h *MarketHandler) GetCryptocurrency(w http.ResponseWriter, r *http.Request) {
	cryptoID := chi.URLParam(r, "cryptoID")
	if cryptoID == "" {
		respondWithError(w, h.log, util.ErrInvalidInput)
		return
	}

	crypto, err := h.assets.GetCryptocurrency(r.Context(), cryptoID)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	respondWithJSON(w, h.log, http.StatusOK, crypto)
}

// GetCryptoNews handles the news feed request. A provider failure surfaces as
// 502 Bad Gateway; news is the one external call whose failure the caller
// should see.
// GET /api/news/crypto?limit=10
func (h *MarketHandler) GetCryptoNews(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	articles, err := h.assets.GetCryptoNews(r.Context(), limit)
	if err != nil {
		h.log.Errorf("news provider failed: %v", err)
		respondWithJSON(w, h.log, http.StatusBadGateway, map[string]string{"error": "News provider unavailable"})
		return
	}
	respondWithJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"articles": articles,
	})
}
