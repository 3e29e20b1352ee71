package macro

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"alphapulse/internal/domain"
	"alphapulse/internal/timeseries"
)

const (
	snapshotLookbackDays = 730
	cacheCapacity        = 128
)

// Builder assembles one MacroSnapshot per cycle. Per-series failures are
// logged, recorded in Quality and Diagnostics, and never abort the build.
type Builder struct {
	log    *zap.SugaredLogger
	series domain.MacroSeriesProvider
	prices domain.PriceProvider

	cache *seriesCache

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewBuilder(log *zap.SugaredLogger, series domain.MacroSeriesProvider, prices domain.PriceProvider) *Builder {
	return &Builder{
		log:    log,
		series: series,
		prices: prices,
		cache:  newSeriesCache(cacheCapacity),
		Now:    time.Now,
	}
}

// Build fetches every tracked series over a trailing two-year window and
// aggregates latest values, staleness, frequency-aware changes, 2y
// percentile/z-score stats and the three composite macro features. It
// always returns a well-formed snapshot with whatever subset succeeded.
func (b *Builder) Build(ctx context.Context) domain.MacroSnapshot {
	now := b.Now()
	start := now.AddDate(0, 0, -snapshotLookbackDays)

	snap := domain.MacroSnapshot{
		Timestamp:  now,
		Flat:       map[string]float64{},
		RawLatest:  map[string]domain.RawObservation{},
		Derived:    map[string]float64{},
		Timeseries: map[string][]timeseries.Point{},
		Domains:    map[string][]string{},
	}

	for _, def := range TrackedSeries {
		points, source, frequency, err := b.fetchSeries(ctx, def, start, now)
		if err != nil {
			b.log.Warnf("macro series %s failed: %v", def.Name, err)
		}
		if len(points) == 0 {
			snap.Quality.Missing = append(snap.Quality.Missing, def.Name)
			snap.RawLatest[def.Name] = domain.RawObservation{Available: false}
			snap.Diagnostics = append(snap.Diagnostics, domain.Diagnostic{
				Component: "macro.snapshot",
				Symbol:    def.Name,
				Reason:    "no data",
			})
			continue
		}

		latest := points[len(points)-1]
		staleness := calendarDays(latest.Date, now)
		stale := staleness > stalenessThreshold(frequency)

		snap.RawLatest[def.Name] = domain.RawObservation{
			Value:         latest.Value,
			AsOf:          latest.Date,
			Source:        source,
			Frequency:     frequency,
			StalenessDays: staleness,
			Stale:         stale,
			Available:     true,
		}
		if stale {
			snap.Quality.Stale = append(snap.Quality.Stale, def.Name)
		}

		snap.Timeseries[def.Name] = points
		d := DomainFor(def.Name)
		snap.Domains[d] = append(snap.Domains[d], def.Name)

		deriveChanges(def.Name, frequency, points, snap.Derived)

		if alias, ok := zscoreAliases[def.Name]; ok {
			values := timeseries.Values(points)
			snap.Derived[alias+"_pctl_2y"] = timeseries.PercentileRank(values, latest.Value)
			snap.Derived[alias+"_zscore_2y"] = timeseries.ZScore(values, latest.Value)
		}
	}
	snap.Quality.MissingCount = len(snap.Quality.Missing)

	b.deriveInflation(&snap)
	snap.Features = deriveFeatures(snap.Derived)

	// Merge precedence: raw latest first, then derived over it, then the
	// composite features last.
	for name, obs := range snap.RawLatest {
		if obs.Available {
			snap.Flat[name] = obs.Value
		}
	}
	addAliases(snap.RawLatest, snap.Flat)
	for k, v := range snap.Derived {
		snap.Flat[k] = v
	}
	for k, v := range snap.Features.AsMap() {
		snap.Flat[k] = v
	}

	return snap
}

func (b *Builder) fetchSeries(ctx context.Context, def SeriesDef, start, end time.Time) ([]timeseries.Point, string, string, error) {
	if def.FredID != "" && b.series != nil && b.series.Available() {
		key := cacheKey("fred", def.FredID, start, end)
		if points, ok := b.cache.get(key); ok && len(points) > 0 {
			return points, "fred", b.seriesFrequency(ctx, def.FredID), nil
		}
		points, err := b.series.FetchSeries(ctx, def.FredID, start, end)
		if err == nil && len(points) > 0 {
			b.cache.put(key, points)
			return points, "fred", b.seriesFrequency(ctx, def.FredID), nil
		}
		if err != nil && len(def.Tickers) == 0 {
			return nil, "fred", "", err
		}
	}

	// Secondary price source, first available ticker wins.
	if b.prices != nil && b.prices.Available() {
		for _, ticker := range def.Tickers {
			key := cacheKey(b.prices.Name(), ticker, start, end)
			if points, ok := b.cache.get(key); ok && len(points) > 0 {
				return points, b.prices.Name(), "D", nil
			}
			bars, err := b.prices.Fetch(ctx, ticker, "D", &start, &end)
			if err != nil || len(bars) == 0 {
				continue
			}
			points := make([]timeseries.Point, len(bars))
			for i, bar := range bars {
				points[i] = timeseries.Point{Date: bar.Timestamp, Value: bar.Close}
			}
			b.cache.put(key, points)
			return points, b.prices.Name(), "D", nil
		}
	}

	return nil, "", "", fmt.Errorf("no source produced data for %s", def.Name)
}

func (b *Builder) seriesFrequency(ctx context.Context, fredID string) string {
	info, err := b.series.SeriesInfo(ctx, fredID)
	if err != nil {
		b.log.Debugf("series info for %s failed: %v", fredID, err)
		return ""
	}
	return info.Frequency
}

// deriveChanges writes frequency-appropriate period-over-period deltas. A
// missing base observation leaves the change unset rather than zero.
func deriveChanges(name, frequency string, points []timeseries.Point, derived map[string]float64) {
	n := len(points)
	if n < 2 {
		return
	}
	latest := points[n-1]

	switch frequency {
	case "D", "W":
		if base, ok := timeseries.ValueAtOrBefore(points, latest.Date.AddDate(0, 0, -7)); ok {
			derived[name+"_change_1w"] = latest.Value - base
		}
		if base, ok := timeseries.ValueAtOrBefore(points, latest.Date.AddDate(0, 0, -30)); ok {
			derived[name+"_change_1m"] = latest.Value - base
			if base != 0 {
				derived[name+"_pct_change_1m"] = (latest.Value/base - 1.0) * 100.0
			}
		}
	case "M":
		derived[name+"_change_1m"] = latest.Value - points[n-2].Value
		if n >= 4 {
			derived[name+"_change_3m"] = latest.Value - points[n-4].Value
		}
	case "Q":
		derived[name+"_change_1q"] = latest.Value - points[n-2].Value
		if n >= 5 {
			derived[name+"_change_1y"] = latest.Value - points[n-5].Value
		}
	case "A":
		derived[name+"_change_1y"] = latest.Value - points[n-2].Value
	default:
		if base, ok := timeseries.ValueAtOrBefore(points, latest.Date.AddDate(-1, 0, 0)); ok {
			derived[name+"_change_1y"] = latest.Value - base
		}
	}
}

// deriveInflation computes the 13-observation year-over-year inflation rate
// for CPI and core CPI and the directional trend over the last six CPI
// observations.
func (b *Builder) deriveInflation(snap *domain.MacroSnapshot) {
	for name, key := range map[string]string{"CPI": "cpi_yoy", "CORE_CPI": "core_cpi_yoy"} {
		points := snap.Timeseries[name]
		if len(points) < 13 {
			continue
		}
		latest := points[len(points)-1].Value
		base := points[len(points)-13].Value
		if base != 0 {
			snap.Derived[key] = (latest/base - 1.0) * 100.0
		}
	}

	snap.InflationTrend = "UNKNOWN"
	cpi := snap.Timeseries["CPI"]
	if len(cpi) >= 6 {
		recent := cpi[len(cpi)-6:]
		first, last := recent[0].Value, recent[len(recent)-1].Value
		switch {
		case last > first:
			snap.InflationTrend = "RISING"
		case last < first:
			snap.InflationTrend = "FALLING"
		default:
			snap.InflationTrend = "FLAT"
		}
	}
}

// deriveFeatures builds the three composite macro scores from the 2y
// percentile ranks, skipping unavailable terms and defaulting to 50 when
// nothing is available.
func deriveFeatures(derived map[string]float64) domain.MacroFeatures {
	pctl := func(alias string) (float64, bool) {
		v, ok := derived[alias+"_pctl_2y"]
		return v, ok
	}

	riskOn := []float64{}
	stress := []float64{}
	if v, ok := pctl("vix"); ok {
		riskOn = append(riskOn, 100-v)
		stress = append(stress, v)
	}
	if v, ok := pctl("credit_spread"); ok {
		riskOn = append(riskOn, 100-v)
		stress = append(stress, v)
	}
	if v, ok := pctl("yield_curve"); ok {
		riskOn = append(riskOn, v)
		stress = append(stress, 100-v)
	}
	if v, ok := pctl("financial_stress"); ok {
		riskOn = append(riskOn, 100-v)
		stress = append(stress, v)
	}
	if v, ok := pctl("nfci"); ok {
		riskOn = append(riskOn, 100-v)
		stress = append(stress, v)
	}

	features := domain.MacroFeatures{
		RiskOn:      clamp(mean(riskOn, 50), 0, 100),
		Stress:      clamp(mean(stress, 50), 0, 100),
		USDStrength: 50,
	}
	if v, ok := pctl("dollar_index"); ok {
		features.USDStrength = clamp(v, 0, 100)
	}
	return features
}

// addAliases writes the lowercase indicator aliases regime and scenario
// classification key off. The credit spread alias is basis-point
// normalized.
func addAliases(rawLatest map[string]domain.RawObservation, flat map[string]float64) {
	aliases := map[string]string{
		"CPI":                "inflation_level",
		"CORE_CPI":           "core_inflation",
		"GDP_GROWTH":         "gdp_growth",
		"UNEMPLOYMENT":       "unemployment",
		"FED_FUNDS":          "fed_funds",
		"YIELD_CURVE_10Y2Y":  "yield_curve",
		"CONSUMER_SENTIMENT": "consumer_sentiment",
		"VIX":                "vix",
	}
	for name, alias := range aliases {
		if obs, ok := rawLatest[name]; ok && obs.Available {
			flat[alias] = obs.Value
		}
	}
	if obs, ok := rawLatest["HY_SPREAD"]; ok && obs.Available {
		flat["credit_spread"] = NormalizeHYSpreadBps(obs.Value)
	}
}

func calendarDays(asof, now time.Time) int {
	a := time.Date(asof.Year(), asof.Month(), asof.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(n.Sub(a).Hours() / 24)
}

func mean(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
