// Package binance fetches crypto OHLCV history from the Binance spot API.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"alphapulse/internal/domain"
)

const (
	SpotBaseURL = "https://api.binance.com"

	defaultLookbackDays = 365
	klineLimit          = 1000
)

var intervals = map[string]string{
	"M":   "1M",
	"W":   "1w",
	"D":   "1d",
	"4H":  "4h",
	"1H":  "1h",
	"15M": "15m",
}

type Client struct {
	HttpClient *http.Client
	BaseURL    string
	log        *zap.SugaredLogger
}

func NewClient(log *zap.SugaredLogger) *Client {
	return &Client{
		HttpClient: &http.Client{Timeout: 30 * time.Second},
		BaseURL:    SpotBaseURL,
		log:        log,
	}
}

func (c *Client) Name() string { return "binance" }

// Available pings the exchange; a failed ping disables the crypto leg of
// the scan for the cycle.
func (c *Client) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/v3/ping", nil)
	if err != nil {
		return false
	}
	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Fetch pulls spot klines for the pair, defaulting to the trailing year of
// daily candles. Unknown timeframes fall back to daily.
func (c *Client) Fetch(ctx context.Context, symbol, timeframe string, start, end *time.Time) (domain.OHLCV, error) {
	interval, ok := intervals[timeframe]
	if !ok {
		interval = "1d"
	}

	since := time.Now().AddDate(0, 0, -defaultLookbackDays)
	if start != nil {
		since = *start
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("startTime", strconv.FormatInt(since.UnixMilli(), 10))
	q.Set("limit", strconv.Itoa(klineLimit))
	if end != nil {
		q.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/v3/klines?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get klines for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("binance API error for %s: %d", symbol, resp.StatusCode)
	}

	// klines are mixed-type arrays: open time is a number, prices and
	// volume are numeric strings
	var klines [][]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&klines); err != nil {
		return nil, fmt.Errorf("failed to decode klines for %s: %w", symbol, err)
	}

	bars := make(domain.OHLCV, 0, len(klines))
	for _, k := range klines {
		bar, err := parseKline(k)
		if err != nil {
			return nil, fmt.Errorf("bad kline for %s: %w", symbol, err)
		}
		bars = append(bars, bar)
	}

	if err := bars.Validate(); err != nil {
		return nil, fmt.Errorf("invalid series for %s: %w", symbol, err)
	}

	c.log.Debugf("binance: fetched %d bars for %s", len(bars), symbol)
	return bars, nil
}

func parseKline(k []interface{}) (domain.Bar, error) {
	if len(k) < 6 {
		return domain.Bar{}, fmt.Errorf("kline has %d fields, want at least 6", len(k))
	}

	openTime, ok := k[0].(float64)
	if !ok {
		return domain.Bar{}, fmt.Errorf("open time is %T, want number", k[0])
	}

	fields := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		s, ok := k[i].(string)
		if !ok {
			return domain.Bar{}, fmt.Errorf("field %d is %T, want string", i, k[i])
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Bar{}, fmt.Errorf("field %d: %w", i, err)
		}
		fields[i-1] = v
	}

	return domain.Bar{
		Timestamp: time.UnixMilli(int64(openTime)).UTC(),
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
		Close:     fields[3],
		Volume:    fields[4],
	}, nil
}
