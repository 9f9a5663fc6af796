// internal/market/coingecko_test.go
package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestGetCurrentPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("ids"), "bitcoin")
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"bitcoin": {
				"usd": 64123.45678901,
				"usd_24h_change": -1.23,
				"usd_24h_vol": 28000000000,
				"usd_market_cap": 1260000000000
			}
		}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, "", testLogger())
	quotes, err := client.GetCurrentPrices(context.Background(), map[string]string{
		"BTC": "bitcoin",
		"ETH": "ethereum", // missing from the response
	})
	require.NoError(t, err)

	require.Contains(t, quotes, "BTC")
	assert.NotContains(t, quotes, "ETH")

	// The full fractional precision survives the decode.
	assert.True(t, quotes["BTC"].Price.Equal(decimal.RequireFromString("64123.45678901")),
		"price = %s", quotes["BTC"].Price)
	assert.True(t, quotes["BTC"].Change24h.Equal(decimal.RequireFromString("-1.23")))
}

func TestGetCurrentPricesEmptyInput(t *testing.T) {
	client := NewCoinGeckoClient("http://unused", "", testLogger())
	quotes, err := client.GetCurrentPrices(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestGetCurrentPricesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, "", testLogger())
	_, err := client.GetCurrentPrices(context.Background(), map[string]string{"BTC": "bitcoin"})
	assert.Error(t, err)
}

func TestGetCurrentPricesSendsAPIKeyHeader(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-CG-API-KEY")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, "secret", testLogger())
	_, err := client.GetCurrentPrices(context.Background(), map[string]string{"BTC": "bitcoin"})
	require.NoError(t, err)
	assert.Equal(t, "secret", gotKey)
}

func TestGetHistoricalPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "30", r.URL.Query().Get("days"))

		_, _ = w.Write([]byte(`{
			"prices": [
				[1749600000000, 61000.5],
				[1749686400000, 62250.25]
			],
			"market_caps": [],
			"total_volumes": []
		}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, "", testLogger())
	points, err := client.GetHistoricalPrices(context.Background(), "bitcoin", 30)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.True(t, points[0].Timestamp.Before(points[1].Timestamp))
	assert.True(t, points[0].Price.Equal(decimal.RequireFromString("61000.5")))
	assert.True(t, points[1].Price.Equal(decimal.RequireFromString("62250.25")))
	assert.Equal(t, int64(1749600000000), points[0].Timestamp.UnixMilli())
}

func TestGetHistoricalPricesMalformedPairsSkipped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"prices": [[1749600000000], [1749686400000, 62250.25]]}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, "", testLogger())
	points, err := client.GetHistoricalPrices(context.Background(), "bitcoin", 30)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.True(t, points[0].Price.Equal(decimal.RequireFromString("62250.25")))
}
