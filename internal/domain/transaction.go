// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType defines the side of an executed trade.
type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "BUY"
	TransactionTypeSell TransactionType = "SELL"
)

// Transaction is an immutable record of one executed trade. The ledger is
// append-only: records are never updated or deleted after creation, with the
// single exception of the realized-P&L backfill job.
//
// Timestamp may be back-dated at creation time (sandbox allowance for seeding
// historical scenarios).
type Transaction struct {
	ID               string          `db:"id" json:"id"`
	PortfolioID      string          `db:"portfolio_id" json:"portfolio_id"`
	CryptocurrencyID string          `db:"cryptocurrency_id" json:"cryptocurrency_id"`
	Type             TransactionType `db:"transaction_type" json:"type"`
	Quantity         decimal.Decimal `db:"quantity" json:"quantity"`               // NUMERIC(20, 8)
	PricePerUnit     decimal.Decimal `db:"price_per_unit" json:"price_per_unit"`   // Execution price, NUMERIC(20, 8)
	TotalAmount      decimal.Decimal `db:"total_amount" json:"total_amount"`       // quantity × price, NUMERIC(20, 2)
	Timestamp        time.Time       `db:"timestamp" json:"timestamp"`             // Timezone-aware; back-dating permitted
	RealizedGainLoss decimal.Decimal `db:"realized_gain_loss" json:"realized_gain_loss"` // 0.00 for BUY, computed for SELL
}

// NewTransaction creates a new Transaction record executed at the given time.
func NewTransaction(
	portfolioID, cryptocurrencyID string,
	txType TransactionType,
	quantity, pricePerUnit, totalAmount decimal.Decimal,
	executedAt time.Time,
	realizedGainLoss decimal.Decimal,
) *Transaction {
	return &Transaction{
		ID:               uuid.NewString(),
		PortfolioID:      portfolioID,
		CryptocurrencyID: cryptocurrencyID,
		Type:             txType,
		Quantity:         quantity,
		PricePerUnit:     pricePerUnit,
		TotalAmount:      totalAmount,
		Timestamp:        executedAt,
		RealizedGainLoss: realizedGainLoss,
	}
}
