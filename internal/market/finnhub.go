// internal/market/finnhub.go
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

const newsRequestTimeout = 10 * time.Second

// newsMaxRetries is the number of retries after the initial attempt.
const newsMaxRetries = 1

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// FinnhubClient fetches cryptocurrency news from the Finnhub API.
type FinnhubClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logrus.Logger

	// sleep is swappable so tests don't wait out the backoff.
	sleep func(time.Duration)
}

// NewFinnhubClient creates a Finnhub-backed NewsProvider.
func NewFinnhubClient(apiKey string, log *logrus.Logger) *FinnhubClient {
	return &FinnhubClient{
		baseURL:    finnhubBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{},
		log:        log,
		sleep:      time.Sleep,
	}
}

type finnhubArticle struct {
	ID       int64  `json:"id"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Image    string `json:"image"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	Source   string `json:"source"`
}

// GetCryptoNews fetches the latest crypto news, newest first, up to limit
// articles. Unlike the price paths this one retries once with exponential
// backoff; a final failure propagates to the caller, which surfaces it as an
// upstream-error status.
func (c *FinnhubClient) GetCryptoNews(ctx context.Context, limit int) ([]NewsArticle, error) {
	params := url.Values{}
	params.Set("category", "crypto")
	params.Set("token", c.apiKey)

	articles, err := c.fetchWithRetry(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("finnhub crypto news: %w", err)
	}

	sort.Slice(articles, func(i, j int) bool {
		return articles[i].Datetime > articles[j].Datetime
	})
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	normalized := make([]NewsArticle, 0, len(articles))
	for _, a := range articles {
		if a.Headline == "" || a.URL == "" {
			c.log.Warnf("skipping finnhub article %d: missing required fields", a.ID)
			continue
		}
		normalized = append(normalized, NewsArticle{
			ID:       a.ID,
			Datetime: a.Datetime,
			Headline: a.Headline,
			Image:    a.Image,
			Summary:  sanitizeSummary(a.Summary),
			URL:      a.URL,
			Source:   a.Source,
		})
	}
	return normalized, nil
}

func (c *FinnhubClient) fetchWithRetry(ctx context.Context, params url.Values) ([]finnhubArticle, error) {
	var lastErr error
	for attempt := 0; attempt <= newsMaxRetries; attempt++ {
		articles, err := c.fetch(ctx, params)
		if err == nil {
			return articles, nil
		}
		lastErr = err
		if attempt < newsMaxRetries {
			wait := time.Duration(1<<attempt) * time.Second
			c.log.Warnf("finnhub request failed (attempt %d), retrying in %s: %v", attempt+1, wait, err)
			c.sleep(wait)
		}
	}
	return nil, lastErr
}

func (c *FinnhubClient) fetch(ctx context.Context, params url.Values) ([]finnhubArticle, error) {
	ctx, cancel := context.WithTimeout(ctx, newsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/news?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var articles []finnhubArticle
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return articles, nil
}

// sanitizeSummary strips HTML tags, decodes entities and collapses whitespace.
func sanitizeSummary(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
