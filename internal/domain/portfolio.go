// internal/domain/portfolio.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Portfolio is a user's cash and holdings container. One portfolio per user.
//
// InitialCash is the immutable cost-basis anchor for portfolio-level P&L: in
// the sandbox there are no deposits or withdrawals, so the portfolio's cost
// basis is simply its starting cash.
type Portfolio struct {
	ID          string          `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"user_id"`
	CashBalance decimal.Decimal `db:"cash_balance" json:"cash_balance"` // Available USD, >= 0, NUMERIC(15, 2) in DB
	InitialCash decimal.Decimal `db:"initial_cash" json:"initial_cash"` // Starting cash, P&L baseline
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// NewPortfolio creates a new Portfolio instance funded with initialCash.
func NewPortfolio(userID string, initialCash decimal.Decimal) *Portfolio {
	now := time.Now().UTC()
	return &Portfolio{
		ID:          uuid.NewString(),
		UserID:      userID,
		CashBalance: initialCash,
		InitialCash: initialCash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TotalValue returns cash plus the given mark-to-market holdings value.
func (p *Portfolio) TotalValue(holdingsValue decimal.Decimal) decimal.Decimal {
	return p.CashBalance.Add(holdingsValue)
}

// GainLoss returns total profit/loss in dollars against the initial cash.
func (p *Portfolio) GainLoss(holdingsValue decimal.Decimal) decimal.Decimal {
	return p.TotalValue(holdingsValue).Sub(p.InitialCash)
}

// GainLossPercentage returns total profit/loss as a percentage of initial cash.
func (p *Portfolio) GainLossPercentage(holdingsValue decimal.Decimal) decimal.Decimal {
	if p.InitialCash.IsZero() {
		return decimal.Zero
	}
	return p.GainLoss(holdingsValue).Div(p.InitialCash).Mul(decimal.NewFromInt(100))
}
