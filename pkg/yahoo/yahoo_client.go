// Package yahoo fetches OHLCV history from Yahoo Finance via the chart API.
package yahoo

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"go.uber.org/zap"

	"alphapulse/internal/domain"
)

const defaultLookbackDays = 365

var intervals = map[string]datetime.Interval{
	"D": datetime.OneDay,
	"W": datetime.FiveDay,
	"M": datetime.OneMonth,
}

type Client struct {
	log *zap.SugaredLogger
}

func NewClient(log *zap.SugaredLogger) *Client {
	return &Client{log: log}
}

func (c *Client) Name() string { return "yahoo" }

// Available is always true: the chart API needs no credentials.
func (c *Client) Available() bool { return true }

// Fetch pulls bars for the symbol over [start, end], defaulting to the
// trailing year of daily bars. Unknown timeframes fall back to daily.
func (c *Client) Fetch(ctx context.Context, symbol, timeframe string, start, end *time.Time) (domain.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	interval, ok := intervals[timeframe]
	if !ok {
		interval = datetime.OneDay
	}

	to := time.Now()
	if end != nil {
		to = *end
	}
	from := to.AddDate(0, 0, -defaultLookbackDays)
	if start != nil {
		from = *start
	}

	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&from),
		End:      datetime.New(&to),
		Interval: interval,
	}

	bars := domain.OHLCV{}
	iter := chart.Get(params)
	for iter.Next() {
		b := iter.Bar()
		bars = append(bars, domain.Bar{
			Timestamp: time.Unix(int64(b.Timestamp), 0).UTC(),
			Open:      b.Open.InexactFloat64(),
			High:      b.High.InexactFloat64(),
			Low:       b.Low.InexactFloat64(),
			Close:     b.Close.InexactFloat64(),
			Volume:    float64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get prices for %s: %w", symbol, err)
	}

	if err := bars.Validate(); err != nil {
		return nil, fmt.Errorf("invalid series for %s: %w", symbol, err)
	}

	c.log.Debugf("yahoo: fetched %d bars for %s", len(bars), symbol)
	return bars, nil
}
