// internal/domain/holding.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quantity and price precision for crypto amounts. USD amounts use 2 places.
const (
	QuantityPrecision = 8
	USDPrecision      = 2
)

// Holding is a user's position in one cryptocurrency, unique per
// (portfolio, cryptocurrency). A holding only exists while quantity > 0;
// selling a full position deletes the row.
//
// Cost basis uses the weighted average method: every buy blends into a single
// running average price, and partial sells reduce quantity and cost basis
// proportionally without re-averaging.
type Holding struct {
	ID                   string          `db:"id" json:"id"`
	PortfolioID          string          `db:"portfolio_id" json:"portfolio_id"`
	CryptocurrencyID     string          `db:"cryptocurrency_id" json:"cryptocurrency_id"`
	Quantity             decimal.Decimal `db:"quantity" json:"quantity"`                             // NUMERIC(20, 8) in DB
	AveragePurchasePrice decimal.Decimal `db:"average_purchase_price" json:"average_purchase_price"` // Weighted average cost per unit
	TotalCostBasis       decimal.Decimal `db:"total_cost_basis" json:"total_cost_basis"`             // Total USD invested, NUMERIC(20, 2)
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updated_at"`
}

// NewHolding creates a holding for a first purchase: the trade's own price and
// cost become the position's average price and cost basis.
func NewHolding(portfolioID, cryptocurrencyID string, quantity, purchasePrice, costBasis decimal.Decimal) *Holding {
	now := time.Now().UTC()
	return &Holding{
		ID:                   uuid.NewString(),
		PortfolioID:          portfolioID,
		CryptocurrencyID:     cryptocurrencyID,
		Quantity:             quantity,
		AveragePurchasePrice: purchasePrice,
		TotalCostBasis:       costBasis,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// ApplyBuy folds a purchase into the position, recomputing the weighted
// average: new_avg = (old_cost_basis + amount_usd) / (old_quantity + quantity).
func (h *Holding) ApplyBuy(quantity, amountUSD decimal.Decimal) {
	newCostBasis := h.TotalCostBasis.Add(amountUSD)
	newQuantity := h.Quantity.Add(quantity)
	h.AveragePurchasePrice = newCostBasis.DivRound(newQuantity, QuantityPrecision)
	h.Quantity = newQuantity
	h.TotalCostBasis = newCostBasis
	h.UpdatedAt = time.Now().UTC()
}

// ApplySell reduces the position for a partial sale. The cost basis sold is
// proportional to the quantity sold; the average purchase price is left
// unchanged.
func (h *Holding) ApplySell(quantity decimal.Decimal) {
	costBasisSold := quantity.DivRound(h.Quantity, QuantityPrecision).Mul(h.TotalCostBasis).Round(USDPrecision)
	h.Quantity = h.Quantity.Sub(quantity)
	h.TotalCostBasis = h.TotalCostBasis.Sub(costBasisSold)
	h.UpdatedAt = time.Now().UTC()
}

// CurrentValue returns the mark-to-market value of the position at price.
func (h *Holding) CurrentValue(price decimal.Decimal) decimal.Decimal {
	return h.Quantity.Mul(price)
}

// GainLoss returns the unrealized profit/loss in dollars at price.
func (h *Holding) GainLoss(price decimal.Decimal) decimal.Decimal {
	return h.CurrentValue(price).Sub(h.TotalCostBasis)
}

// GainLossPercentage returns the unrealized return as a percentage of cost basis.
func (h *Holding) GainLossPercentage(price decimal.Decimal) decimal.Decimal {
	if h.TotalCostBasis.IsZero() {
		return decimal.Zero
	}
	return h.GainLoss(price).Div(h.TotalCostBasis).Mul(decimal.NewFromInt(100))
}
