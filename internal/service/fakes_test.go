// internal/service/fakes_test.go
package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
	"github.com/jpwyse/bitsofstock-sandbox/internal/market"
	"github.com/jpwyse/bitsofstock-sandbox/internal/repository"
	"github.com/jpwyse/bitsofstock-sandbox/internal/util"
	"github.com/jpwyse/bitsofstock-sandbox/pkg/db"
)

// The fakes below are in-memory repository implementations. Repositories
// receive a DBExecutor per call but the fakes keep state in maps, so the
// executor argument is ignored; fakeTxController stands in for a *sqlx.Tx
// and records commit/rollback calls so tests can assert on atomicity.

type fakeExecutor struct{}

func (fakeExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}
func (fakeExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}
func (fakeExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (fakeExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

type fakeTxController struct {
	fakeExecutor
	commits   int
	rollbacks int
}

func (f *fakeTxController) Commit() error {
	f.commits++
	return nil
}

func (f *fakeTxController) Rollback() error {
	f.rollbacks++
	return nil
}

type fakeTxBeginner struct{}

func (fakeTxBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return nil, nil
}

// txFuncs returns begin/commit/rollback functions bound to one controller.
func txFuncs(controller *fakeTxController) (db.BeginTxFunc, db.CommitTxFunc, db.RollbackTxFunc) {
	begin := func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
		return controller, nil
	}
	commit := func(tx db.TxController) error {
		return tx.Commit()
	}
	rollback := func(tx db.TxController) {
		_ = tx.Rollback()
	}
	return begin, commit, rollback
}

type fakePortfolioRepo struct {
	portfolios map[string]*domain.Portfolio
}

func newFakePortfolioRepo() *fakePortfolioRepo {
	return &fakePortfolioRepo{portfolios: make(map[string]*domain.Portfolio)}
}

func (f *fakePortfolioRepo) Create(ctx context.Context, q repository.DBExecutor, portfolio *domain.Portfolio) error {
	cp := *portfolio
	f.portfolios[portfolio.ID] = &cp
	return nil
}

func (f *fakePortfolioRepo) GetByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.Portfolio, error) {
	p, ok := f.portfolios[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePortfolioRepo) GetByUserID(ctx context.Context, q repository.DBExecutor, userID string) (*domain.Portfolio, error) {
	for _, p := range f.portfolios {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, util.ErrNotFound
}

func (f *fakePortfolioRepo) List(ctx context.Context, q repository.DBExecutor) ([]domain.Portfolio, error) {
	out := make([]domain.Portfolio, 0, len(f.portfolios))
	for _, p := range f.portfolios {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakePortfolioRepo) AdjustCashBalance(ctx context.Context, q repository.DBExecutor, portfolioID string, delta decimal.Decimal) error {
	p, ok := f.portfolios[portfolioID]
	if !ok {
		return util.ErrNotFound
	}
	p.CashBalance = p.CashBalance.Add(delta)
	return nil
}

type fakeHoldingRepo struct {
	holdings map[string]*domain.Holding
}

func newFakeHoldingRepo() *fakeHoldingRepo {
	return &fakeHoldingRepo{holdings: make(map[string]*domain.Holding)}
}

func (f *fakeHoldingRepo) Create(ctx context.Context, q repository.DBExecutor, holding *domain.Holding) error {
	cp := *holding
	f.holdings[holding.ID] = &cp
	return nil
}

func (f *fakeHoldingRepo) GetByPortfolioAndCrypto(ctx context.Context, q repository.DBExecutor, portfolioID, cryptocurrencyID string) (*domain.Holding, error) {
	for _, h := range f.holdings {
		if h.PortfolioID == portfolioID && h.CryptocurrencyID == cryptocurrencyID {
			cp := *h
			return &cp, nil
		}
	}
	return nil, util.ErrNotFound
}

func (f *fakeHoldingRepo) ListByPortfolio(ctx context.Context, q repository.DBExecutor, portfolioID string) ([]domain.Holding, error) {
	var out []domain.Holding
	for _, h := range f.holdings {
		if h.PortfolioID == portfolioID {
			out = append(out, *h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalCostBasis.GreaterThan(out[j].TotalCostBasis) })
	return out, nil
}

func (f *fakeHoldingRepo) Update(ctx context.Context, q repository.DBExecutor, holding *domain.Holding) error {
	if _, ok := f.holdings[holding.ID]; !ok {
		return util.ErrNotFound
	}
	cp := *holding
	f.holdings[holding.ID] = &cp
	return nil
}

func (f *fakeHoldingRepo) Delete(ctx context.Context, q repository.DBExecutor, id string) error {
	if _, ok := f.holdings[id]; !ok {
		return util.ErrNotFound
	}
	delete(f.holdings, id)
	return nil
}

type fakeTransactionRepo struct {
	transactions []domain.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{}
}

func (f *fakeTransactionRepo) Create(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	f.transactions = append(f.transactions, *transaction)
	return nil
}

func (f *fakeTransactionRepo) ListByPortfolio(ctx context.Context, q repository.DBExecutor, portfolioID string, txType *domain.TransactionType, limit, offset int) ([]domain.Transaction, int64, error) {
	var matched []domain.Transaction
	for _, tx := range f.transactions {
		if tx.PortfolioID != portfolioID {
			continue
		}
		if txType != nil && tx.Type != *txType {
			continue
		}
		matched = append(matched, tx)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Timestamp.After(matched[j].Timestamp) })
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (f *fakeTransactionRepo) ListByPortfolioSince(ctx context.Context, q repository.DBExecutor, portfolioID string, since time.Time) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, tx := range f.transactions {
		if tx.PortfolioID == portfolioID && !tx.Timestamp.Before(since) {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (f *fakeTransactionRepo) ListByPortfolioAndCrypto(ctx context.Context, q repository.DBExecutor, portfolioID, cryptocurrencyID string) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, tx := range f.transactions {
		if tx.PortfolioID == portfolioID && tx.CryptocurrencyID == cryptocurrencyID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (f *fakeTransactionRepo) FirstTimestamp(ctx context.Context, q repository.DBExecutor, portfolioID string) (*time.Time, error) {
	var first *time.Time
	for _, tx := range f.transactions {
		if tx.PortfolioID != portfolioID {
			continue
		}
		ts := tx.Timestamp
		if first == nil || ts.Before(*first) {
			first = &ts
		}
	}
	return first, nil
}

func (f *fakeTransactionRepo) DistinctCryptocurrencyIDs(ctx context.Context, q repository.DBExecutor, portfolioID string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, tx := range f.transactions {
		if tx.PortfolioID == portfolioID && !seen[tx.CryptocurrencyID] {
			seen[tx.CryptocurrencyID] = true
			out = append(out, tx.CryptocurrencyID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeTransactionRepo) UpdateRealizedGainLoss(ctx context.Context, q repository.DBExecutor, transactionID string, realized decimal.Decimal) error {
	for i := range f.transactions {
		if f.transactions[i].ID == transactionID {
			f.transactions[i].RealizedGainLoss = realized
			return nil
		}
	}
	return util.ErrNotFound
}

type fakeCryptoRepo struct {
	cryptos map[string]*domain.Cryptocurrency
}

func newFakeCryptoRepo() *fakeCryptoRepo {
	return &fakeCryptoRepo{cryptos: make(map[string]*domain.Cryptocurrency)}
}

func (f *fakeCryptoRepo) Create(ctx context.Context, q repository.DBExecutor, crypto *domain.Cryptocurrency) error {
	cp := *crypto
	f.cryptos[crypto.ID] = &cp
	return nil
}

func (f *fakeCryptoRepo) GetByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.Cryptocurrency, error) {
	c, ok := f.cryptos[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCryptoRepo) GetBySymbol(ctx context.Context, q repository.DBExecutor, symbol string) (*domain.Cryptocurrency, error) {
	for _, c := range f.cryptos {
		if c.Symbol == symbol {
			cp := *c
			return &cp, nil
		}
	}
	return nil, util.ErrNotFound
}

func (f *fakeCryptoRepo) ListActive(ctx context.Context, q repository.DBExecutor) ([]domain.Cryptocurrency, error) {
	var out []domain.Cryptocurrency
	for _, c := range f.cryptos {
		if c.IsActive {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (f *fakeCryptoRepo) ListByIDs(ctx context.Context, q repository.DBExecutor, ids []string) ([]domain.Cryptocurrency, error) {
	var out []domain.Cryptocurrency
	for _, id := range ids {
		if c, ok := f.cryptos[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCryptoRepo) UpdateMarketData(ctx context.Context, q repository.DBExecutor, id string, quote market.Quote, at time.Time) error {
	c, ok := f.cryptos[id]
	if !ok {
		return util.ErrNotFound
	}
	c.CurrentPrice = decimal.NewNullDecimal(quote.Price)
	c.PriceChange24h = decimal.NewNullDecimal(quote.Change24h)
	c.Volume24h = decimal.NewNullDecimal(quote.Volume24h)
	c.MarketCap = decimal.NewNullDecimal(quote.MarketCap)
	c.LastUpdated = &at
	return nil
}

type fakePriceHistoryRepo struct {
	snapshots []domain.PriceHistory
}

func newFakePriceHistoryRepo() *fakePriceHistoryRepo {
	return &fakePriceHistoryRepo{}
}

func (f *fakePriceHistoryRepo) Insert(ctx context.Context, q repository.DBExecutor, snapshot *domain.PriceHistory) error {
	for _, s := range f.snapshots {
		if s.CryptocurrencyID == snapshot.CryptocurrencyID && s.Timestamp.Equal(snapshot.Timestamp) {
			return nil
		}
	}
	f.snapshots = append(f.snapshots, *snapshot)
	return nil
}

func (f *fakePriceHistoryRepo) ListRange(ctx context.Context, q repository.DBExecutor, cryptocurrencyID string, from, to time.Time) ([]domain.PriceHistory, error) {
	var out []domain.PriceHistory
	for _, s := range f.snapshots {
		if s.CryptocurrencyID == cryptocurrencyID && !s.Timestamp.Before(from) && !s.Timestamp.After(to) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

type fakeUserRepo struct {
	users []domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{}
}

func (f *fakeUserRepo) Create(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, util.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			cp := u
			return &cp, nil
		}
	}
	return nil, util.ErrNotFound
}

func (f *fakeUserRepo) GetFirst(ctx context.Context, q repository.DBExecutor) (*domain.User, error) {
	if len(f.users) == 0 {
		return nil, util.ErrNotFound
	}
	cp := f.users[0]
	return &cp, nil
}

// fakeGateway serves canned price series and quotes.
type fakeGateway struct {
	quotes     map[string]market.Quote
	series     map[string][]market.PricePoint
	quotesErr  error
	historyErr error
}

func (f *fakeGateway) GetCurrentPrices(ctx context.Context, assets map[string]string) (map[string]market.Quote, error) {
	if f.quotesErr != nil {
		return nil, f.quotesErr
	}
	out := make(map[string]market.Quote)
	for symbol := range assets {
		if quote, ok := f.quotes[symbol]; ok {
			out[symbol] = quote
		}
	}
	return out, nil
}

func (f *fakeGateway) GetHistoricalPrices(ctx context.Context, providerID string, days int) ([]market.PricePoint, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.series[providerID], nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newTestCrypto builds an active asset with the given spot price. An empty
// price string leaves the asset without market data.
func newTestCrypto(symbol, coinGeckoID, price string) *domain.Cryptocurrency {
	crypto := domain.NewCryptocurrency(symbol, symbol, coinGeckoID, "", domain.CategoryCrypto)
	if price != "" {
		crypto.CurrentPrice = decimal.NewNullDecimal(mustDecimal(price))
	}
	return crypto
}
