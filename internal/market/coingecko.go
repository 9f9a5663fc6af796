// internal/market/coingecko.go
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	currentPriceTimeout    = 10 * time.Second
	historicalPriceTimeout = 15 * time.Second
)

// CoinGeckoClient fetches market data from the CoinGecko API v3.
// An API key is optional; when set it is sent as the pro-tier header.
type CoinGeckoClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logrus.Logger
}

// NewCoinGeckoClient creates a CoinGecko-backed DataGateway.
func NewCoinGeckoClient(baseURL, apiKey string, log *logrus.Logger) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{},
		log:        log,
	}
}

func (c *CoinGeckoClient) get(ctx context.Context, timeout time.Duration, path string, params url.Values, dest interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-CG-API-KEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request %s: unexpected status %d", path, resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// GetCurrentPrices fetches current price, 24h change, volume and market cap
// for every asset in the symbol -> CoinGecko ID mapping with a single batched
// /simple/price call. Assets missing from the response are skipped, so the
// returned map may be partial.
func (c *CoinGeckoClient) GetCurrentPrices(ctx context.Context, assets map[string]string) (map[string]Quote, error) {
	if len(assets) == 0 {
		return map[string]Quote{}, nil
	}

	ids := ""
	for _, id := range assets {
		if ids != "" {
			ids += ","
		}
		ids += id
	}

	params := url.Values{}
	params.Set("ids", ids)
	params.Set("vs_currencies", "usd")
	params.Set("include_24hr_change", "true")
	params.Set("include_24hr_vol", "true")
	params.Set("include_market_cap", "true")

	var payload map[string]map[string]json.Number
	if err := c.get(ctx, currentPriceTimeout, "/simple/price", params, &payload); err != nil {
		return nil, fmt.Errorf("coingecko current prices: %w", err)
	}

	result := make(map[string]Quote, len(assets))
	for symbol, coinID := range assets {
		coin, ok := payload[coinID]
		if !ok {
			c.log.Warnf("coingecko response missing %s (%s)", symbol, coinID)
			continue
		}
		price, ok := coin["usd"]
		if !ok {
			continue
		}
		result[symbol] = Quote{
			Price:     numberToDecimal(price),
			Change24h: numberToDecimal(coin["usd_24h_change"]),
			Volume24h: numberToDecimal(coin["usd_24h_vol"]),
			MarketCap: numberToDecimal(coin["usd_market_cap"]),
		}
	}
	return result, nil
}

// GetHistoricalPrices fetches a time series from /coins/{id}/market_chart.
// CoinGecko selects granularity automatically: hourly for ranges up to 90
// days, daily beyond.
func (c *CoinGeckoClient) GetHistoricalPrices(ctx context.Context, providerID string, days int) ([]PricePoint, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("days", fmt.Sprintf("%d", days))

	var payload struct {
		Prices [][]json.Number `json:"prices"`
	}
	path := fmt.Sprintf("/coins/%s/market_chart", providerID)
	if err := c.get(ctx, historicalPriceTimeout, path, params, &payload); err != nil {
		return nil, fmt.Errorf("coingecko historical prices for %s: %w", providerID, err)
	}

	points := make([]PricePoint, 0, len(payload.Prices))
	for _, pair := range payload.Prices {
		if len(pair) != 2 {
			continue
		}
		ms, err := pair[0].Int64()
		if err != nil {
			continue
		}
		points = append(points, PricePoint{
			Timestamp: time.UnixMilli(ms).UTC(),
			Price:     numberToDecimal(pair[1]),
		})
	}
	return points, nil
}

// numberToDecimal converts via the number's string form so no precision is
// lost to float64.
func numberToDecimal(n json.Number) decimal.Decimal {
	if n == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
