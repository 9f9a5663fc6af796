// internal/api/handler/account.go
package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/jpwyse/bitsofstock-sandbox/internal/service"
)

// AccountHandler handles HTTP requests for the user account.
type AccountHandler struct {
	portfolios service.PortfolioService
	log        *logrus.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(portfolios service.PortfolioService, log *logrus.Logger) *AccountHandler {
	return &AccountHandler{
		portfolios: portfolios,
		log:        log,
	}
}

// GetAccount handles the account details request.
// GET /api/user/account
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	user, portfolio, err := h.portfolios.GetAccount(r.Context())
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}
	respondWithJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"user":      user,
		"portfolio": portfolio,
	})
}
