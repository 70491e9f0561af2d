package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/futures-signal/internal/models"
)

const (
	barsAPISourceName     = "bars_api"
	barsAPIDateLayout     = "2006-01-02"
	sourceDisabledMessage = "data source is disabled"
)

// BarsAPIClient implements BarSource for a JSON daily-bars API
type BarsAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Logger
}

// barsAPIResponse is the provider's response envelope
type barsAPIResponse struct {
	Symbol string       `json:"symbol"`
	Bars   []barsAPIBar `json:"bars"`
}

// barsAPIBar is one daily record as the provider serves it
type barsAPIBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// NewBarsAPIClient creates a new daily-bars API client
func NewBarsAPIClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *logrus.Logger) *BarsAPIClient {
	if logger == nil {
		logger = logrus.New()
	}
	return &BarsAPIClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// Name returns the name of the data source
func (c *BarsAPIClient) Name() string {
	return barsAPISourceName
}

// IsEnabled returns whether this data source is currently enabled
func (c *BarsAPIClient) IsEnabled() bool {
	return c.enabled
}

// FetchBars retrieves daily bars for a symbol within the date range
func (c *BarsAPIClient) FetchBars(ctx context.Context, symbol string, startDate, endDate time.Time) ([]models.Bar, error) {
	if !c.enabled {
		return nil, NewSourceError(barsAPISourceName, ErrCodeDisabled, sourceDisabledMessage, ErrSourceDisabled)
	}
	if symbol == "" {
		return nil, NewSourceError(barsAPISourceName, ErrCodeInvalidData, "symbol is required", models.ErrSymbolRequired)
	}

	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("start", startDate.Format(barsAPIDateLayout))
	query.Set("end", endDate.Format(barsAPIDateLayout))
	requestURL := fmt.Sprintf("%s?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, NewSourceError(barsAPISourceName, ErrCodeNetworkError, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewSourceError(barsAPISourceName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewSourceError(barsAPISourceName, ErrCodeAuthenticationFailed, "provider rejected credentials", ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewSourceError(barsAPISourceName, ErrCodeRateLimitExceeded, "provider rate limit hit", ErrRateLimitExceeded)
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewSourceError(barsAPISourceName, ErrCodeNotFound, fmt.Sprintf("no data for %s", symbol), models.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, NewSourceError(barsAPISourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var payload barsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewSourceError(barsAPISourceName, ErrCodeInvalidData, "failed to decode response", err)
	}

	bars := make([]models.Bar, 0, len(payload.Bars))
	for _, raw := range payload.Bars {
		date, err := time.Parse(barsAPIDateLayout, raw.Date)
		if err != nil {
			return nil, NewSourceError(barsAPISourceName, ErrCodeInvalidData,
				fmt.Sprintf("unparseable date %q", raw.Date), models.ErrUnparseableDate)
		}
		bars = append(bars, models.Bar{
			Date:   date,
			Open:   raw.Open,
			High:   raw.High,
			Low:    raw.Low,
			Close:  raw.Close,
			Volume: raw.Volume,
		})
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	c.logger.WithFields(logrus.Fields{
		"symbol": symbol,
		"bars":   len(bars),
		"start":  startDate.Format(barsAPIDateLayout),
		"end":    endDate.Format(barsAPIDateLayout),
	}).Debug("Fetched bars from provider")

	return bars, nil
}
