package domain

import (
	"context"
	"time"

	"alphapulse/internal/timeseries"
)

// PriceProvider fetches OHLCV history for one symbol. Implementations fail
// closed: upstream errors are logged and surface as an empty series plus a
// non-nil error the caller may skip on, never a panic.
type PriceProvider interface {
	Name() string
	Available() bool
	Fetch(ctx context.Context, symbol, timeframe string, start, end *time.Time) (OHLCV, error)
}

// SeriesInfo is the metadata a macro provider reports for one series.
type SeriesInfo struct {
	// Frequency is the native reporting frequency: D, W, M, Q or A.
	Frequency          string `json:"frequency"`
	Units              string `json:"units"`
	SeasonalAdjustment string `json:"seasonal_adjustment"`
}

// MacroSeriesProvider fetches dated observations for macro series, with the
// same fail-closed contract as PriceProvider.
type MacroSeriesProvider interface {
	Available() bool
	FetchSeries(ctx context.Context, seriesID string, start, end time.Time) ([]timeseries.Point, error)
	SeriesInfo(ctx context.Context, seriesID string) (SeriesInfo, error)
}
