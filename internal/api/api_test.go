// internal/api/api_test.go
package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpwyse/bitsofstock-sandbox/internal/api"
	"github.com/jpwyse/bitsofstock-sandbox/internal/api/handler"
	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
	"github.com/jpwyse/bitsofstock-sandbox/internal/market"
	"github.com/jpwyse/bitsofstock-sandbox/internal/service"
	"github.com/jpwyse/bitsofstock-sandbox/internal/util"
)

// The stubs below script service-layer responses so the HTTP layer can be
// exercised without a database or external APIs.

type stubTradingService struct {
	tx  *domain.Transaction
	err error
}

func (s *stubTradingService) ExecuteBuy(ctx context.Context, order service.TradeOrder) (*domain.Transaction, error) {
	return s.tx, s.err
}

func (s *stubTradingService) ExecuteSell(ctx context.Context, order service.TradeOrder) (*domain.Transaction, error) {
	return s.tx, s.err
}

type stubPortfolioService struct {
	portfolio *domain.Portfolio
	summary   *service.PortfolioSummary
}

func (s *stubPortfolioService) GetSummary(ctx context.Context, portfolioID string) (*service.PortfolioSummary, error) {
	if s.summary == nil {
		return nil, util.ErrNotFound
	}
	return s.summary, nil
}

func (s *stubPortfolioService) GetDefaultPortfolio(ctx context.Context) (*domain.Portfolio, error) {
	if s.portfolio == nil {
		return nil, util.ErrNotFound
	}
	return s.portfolio, nil
}

func (s *stubPortfolioService) GetAccount(ctx context.Context) (*domain.User, *domain.Portfolio, error) {
	if s.portfolio == nil {
		return nil, nil, util.ErrNotFound
	}
	return domain.NewUser("john_smith", "john.smith@example.com"), s.portfolio, nil
}

func (s *stubPortfolioService) ListTransactions(ctx context.Context, portfolioID string, txType *domain.TransactionType, limit, offset int) ([]domain.Transaction, int64, error) {
	return nil, 0, nil
}

func (s *stubPortfolioService) FirstTradeAt(ctx context.Context, portfolioID string) (*time.Time, error) {
	return nil, nil
}

type stubHistoryService struct {
	points []service.HistoryPoint
}

func (s *stubHistoryService) CalculatePortfolioHistory(ctx context.Context, portfolioID string, timeframe service.Timeframe) ([]service.HistoryPoint, error) {
	return s.points, nil
}

type stubAssetService struct {
	cryptos  []domain.Cryptocurrency
	newsErr  error
	articles []market.NewsArticle
}

func (s *stubAssetService) ListCryptocurrencies(ctx context.Context) ([]domain.Cryptocurrency, error) {
	return s.cryptos, nil
}

func (s *stubAssetService) GetCryptocurrency(ctx context.Context, id string) (*service.CryptocurrencyDetail, error) {
	for i := range s.cryptos {
		if s.cryptos[i].ID == id {
			return &service.CryptocurrencyDetail{Cryptocurrency: s.cryptos[i]}, nil
		}
	}
	return nil, util.ErrNotFound
}

func (s *stubAssetService) GetCryptoNews(ctx context.Context, limit int) ([]market.NewsArticle, error) {
	return s.articles, s.newsErr
}

type testEnv struct {
	server    *httptest.Server
	trading   *stubTradingService
	portfolio *stubPortfolioService
	history   *stubHistoryService
	assets    *stubAssetService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	portfolio := domain.NewPortfolio("user-1", decimal.RequireFromString("10000.00"))
	env := &testEnv{
		trading: &stubTradingService{},
		portfolio: &stubPortfolioService{
			portfolio: portfolio,
			summary:   &service.PortfolioSummary{Portfolio: *portfolio},
		},
		history: &stubHistoryService{},
		assets:  &stubAssetService{},
	}

	router := api.NewRouter(
		handler.NewTradeHandler(env.trading, env.portfolio, log),
		handler.NewPortfolioHandler(env.portfolio, env.history, log),
		handler.NewMarketHandler(env.assets, log),
		handler.NewAccountHandler(env.portfolio, log),
	)
	env.server = httptest.NewServer(router)
	t.Cleanup(env.server.Close)
	return env
}

func (env *testEnv) get(t *testing.T, path string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(env.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var body map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func (env *testEnv) post(t *testing.T, path, payload string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(env.server.URL+path, "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var body map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExecuteBuyEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.trading.tx = domain.NewTransaction("p1", "c1", domain.TransactionTypeBuy,
		decimal.RequireFromString("0.1"), decimal.RequireFromString("50000"),
		decimal.RequireFromString("5000.00"), time.Now().UTC(), decimal.Zero)

	resp, body := env.post(t, "/api/trades/buy", `{"cryptocurrency_id": "c1", "amount_usd": "5000.00"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	require.NotNil(t, body["transaction"])
}

func TestExecuteBuyBusinessFailureEnvelope(t *testing.T) {
	env := newTestEnv(t)
	env.trading.err = fmt.Errorf("%w: available $100, required $500", util.ErrInsufficientFunds)

	resp, body := env.post(t, "/api/trades/buy", `{"cryptocurrency_id": "c1", "amount_usd": "500.00"}`)

	// Business rule violations are a 200 with success=false, not an HTTP error.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "insufficient funds")
}

func TestExecuteBuyValidationFailure(t *testing.T) {
	env := newTestEnv(t)
	env.trading.err = fmt.Errorf("%w: must provide either amount_usd or quantity", util.ErrInvalidInput)

	resp, _ := env.post(t, "/api/trades/buy", `{"cryptocurrency_id": "c1"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExecuteBuyMissingAsset(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.post(t, "/api/trades/buy", `{"amount_usd": "100.00"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExecuteSellEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.trading.err = fmt.Errorf("%w: you don't own any BTC", util.ErrNoHolding)

	resp, body := env.post(t, "/api/trades/sell", `{"cryptocurrency_id": "c1", "quantity": "0.1"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestPortfolioHistoryEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.history.points = []service.HistoryPoint{
		{Timestamp: time.Now().UTC().Add(-time.Hour), Value: decimal.RequireFromString("10000.00")},
		{Timestamp: time.Now().UTC(), Value: decimal.RequireFromString("10500.00")},
	}

	resp, body := env.get(t, "/api/portfolio/history?timeframe=1D")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1D", body["timeframe"])
	assert.Len(t, body["points"], 2)
}

func TestPortfolioHistoryInvalidTimeframe(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.get(t, "/api/portfolio/history?timeframe=2Y")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPortfolioSummaryEndpoint(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.get(t, "/api/portfolio/summary")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, body["portfolio"])
}

func TestGetCryptocurrencyNotFound(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.get(t, "/api/cryptocurrencies/unknown")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCryptoNewsUpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	env.assets.newsErr = fmt.Errorf("finnhub crypto news: unexpected status 500")

	resp, body := env.get(t, "/api/news/crypto")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body["error"], "unavailable")
}

func TestTransactionsEndpointShape(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.get(t, "/api/transactions?limit=5")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(5), body["limit"])
	assert.Equal(t, float64(0), body["total_count"])
}

func TestAccountEndpoint(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.get(t, "/api/user/account")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "john_smith", user["username"])
}
