package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(zap.NewNop().Sugar())
	c.BaseURL = srv.URL
	return c
}

func TestFetchParsesKlines(t *testing.T) {
	var gotQuery map[string]string
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"symbol":   r.URL.Query().Get("symbol"),
			"interval": r.URL.Query().Get("interval"),
			"limit":    r.URL.Query().Get("limit"),
		}
		w.Write([]byte(`[
			[1700000000000, "35000.1", "35500.0", "34800.5", "35200.2", "1234.5", 1700086399999, "0", 0, "0", "0", "0"],
			[1700086400000, "35200.2", "35900.0", "35100.0", "35800.9", "987.6", 1700172799999, "0", 0, "0", "0", "0"]
		]`))
	})

	bars, err := c.Fetch(context.Background(), "BTCUSDT", "D", nil, nil)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	require.Equal(t, "BTCUSDT", gotQuery["symbol"])
	require.Equal(t, "1d", gotQuery["interval"])
	require.Equal(t, "1000", gotQuery["limit"])

	require.Equal(t, time.UnixMilli(1700000000000).UTC(), bars[0].Timestamp)
	require.Equal(t, 35000.1, bars[0].Open)
	require.Equal(t, 35500.0, bars[0].High)
	require.Equal(t, 34800.5, bars[0].Low)
	require.Equal(t, 35200.2, bars[0].Close)
	require.Equal(t, 1234.5, bars[0].Volume)
	require.Equal(t, 35800.9, bars[1].Close)
}

func TestFetchMapsTimeframes(t *testing.T) {
	var interval string
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		interval = r.URL.Query().Get("interval")
		w.Write([]byte(`[]`))
	})

	_, err := c.Fetch(context.Background(), "ETHUSDT", "4H", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "4h", interval)

	// unknown timeframe falls back to daily
	_, err = c.Fetch(context.Background(), "ETHUSDT", "3D", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "1d", interval)
}

func TestFetchAPIError(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	_, err := c.Fetch(context.Background(), "BTCUSDT", "D", nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "418")
}

func TestFetchRejectsMalformedKline(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[1700000000000, "35000.1"]]`))
	})

	_, err := c.Fetch(context.Background(), "BTCUSDT", "D", nil, nil)
	require.Error(t, err)
}

func TestAvailable(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/ping", r.URL.Path)
		w.Write([]byte(`{}`))
	})
	require.True(t, c.Available())

	down := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	require.False(t, down.Available())
}
