// Package fred is a thin client for the St. Louis Fed FRED API. It serves
// macro series observations and metadata, failing closed (empty results)
// when the upstream is unavailable.
package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"alphapulse/internal/domain"
	"alphapulse/internal/timeseries"
)

const baseURL = "https://api.stlouisfed.org/fred"

type Client struct {
	HttpClient *http.Client
	ApiKey     string
}

func NewClient(apiKey string) *Client {
	return &Client{
		HttpClient: http.DefaultClient,
		ApiKey:     apiKey,
	}
}

func (c *Client) Available() bool {
	return c != nil && c.ApiKey != ""
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// FetchSeries returns the dated observations for a series in [start, end].
// Missing observations (reported as ".") are skipped.
func (c *Client) FetchSeries(ctx context.Context, seriesID string, start, end time.Time) ([]timeseries.Point, error) {
	if !c.Available() {
		return nil, nil
	}

	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("api_key", c.ApiKey)
	q.Set("file_type", "json")
	q.Set("observation_start", start.Format(time.DateOnly))
	q.Set("observation_end", end.Format(time.DateOnly))

	body, err := c.get(ctx, "/series/observations", q)
	if err != nil {
		return nil, err
	}

	responseJson := observationsResponse{}
	if err := json.Unmarshal(body, &responseJson); err != nil {
		return nil, fmt.Errorf("failed to parse observations for %s: %w", seriesID, err)
	}

	points := []timeseries.Point{}
	for _, obs := range responseJson.Observations {
		if obs.Value == "." || obs.Value == "" {
			continue
		}
		date, err := time.Parse(time.DateOnly, obs.Date)
		if err != nil {
			continue
		}
		var v float64
		if _, err := fmt.Sscanf(obs.Value, "%f", &v); err != nil {
			continue
		}
		points = append(points, timeseries.Point{Date: date, Value: v})
	}

	return timeseries.Clean(points), nil
}

type seriesResponse struct {
	Seriess []struct {
		FrequencyShort          string `json:"frequency_short"`
		UnitsShort              string `json:"units_short"`
		SeasonalAdjustmentShort string `json:"seasonal_adjustment_short"`
	} `json:"seriess"`
}

// SeriesInfo returns the native frequency (D/W/M/Q/A), units and seasonal
// adjustment for a series.
func (c *Client) SeriesInfo(ctx context.Context, seriesID string) (domain.SeriesInfo, error) {
	if !c.Available() {
		return domain.SeriesInfo{}, nil
	}

	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("api_key", c.ApiKey)
	q.Set("file_type", "json")

	body, err := c.get(ctx, "/series", q)
	if err != nil {
		return domain.SeriesInfo{}, err
	}

	responseJson := seriesResponse{}
	if err := json.Unmarshal(body, &responseJson); err != nil {
		return domain.SeriesInfo{}, fmt.Errorf("failed to parse series info for %s: %w", seriesID, err)
	}
	if len(responseJson.Seriess) == 0 {
		return domain.SeriesInfo{}, fmt.Errorf("no series info for %s", seriesID)
	}

	s := responseJson.Seriess[0]
	return domain.SeriesInfo{
		Frequency:          s.FrequencyShort,
		Units:              s.UnitsShort,
		SeasonalAdjustment: s.SeasonalAdjustmentShort,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	response, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("received status code %d and failed to read body: %w", response.StatusCode, err)
	}
	if response.StatusCode != 200 {
		return nil, fmt.Errorf("failed with status code %d: %s", response.StatusCode, string(responseBytes))
	}

	return responseBytes, nil
}
