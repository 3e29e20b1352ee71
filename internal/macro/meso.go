package macro

import (
	"sort"
	"time"

	"alphapulse/internal/domain"
	"alphapulse/internal/timeseries"
)

// mesoTracked is the set of market-speed series the analyzer summarizes
// with calendar-day lookbacks.
var mesoTracked = []string{
	"VIX",
	"HY_SPREAD",
	"YIELD_CURVE_10Y2Y",
	"DOLLAR_INDEX",
	"TREASURY_10Y",
	"FINANCIAL_STRESS_INDEX",
	"NFCI",
	"ANFCI",
	"SP500",
	"WTI_OIL",
	"COPPER",
	"GOLD",
}

// MesoAnalyzer turns a macro snapshot into staleness maps, daily change
// summaries, threshold alerts and a ranked driver list.
type MesoAnalyzer struct {
	// MaxDrivers caps the returned driver list; zero means the default 5.
	MaxDrivers int

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewMesoAnalyzer() *MesoAnalyzer {
	return &MesoAnalyzer{MaxDrivers: 5, Now: time.Now}
}

func (m *MesoAnalyzer) Analyze(snap domain.MacroSnapshot) domain.MesoSummary {
	now := time.Now()
	if m.Now != nil {
		now = m.Now()
	}
	maxDrivers := m.MaxDrivers
	if maxDrivers <= 0 {
		maxDrivers = 5
	}

	out := domain.MesoSummary{
		Timestamp:     now,
		StalenessDays: map[string]int{},
		Daily:         map[string]domain.DailySummary{},
	}

	for name, obs := range snap.RawLatest {
		if !obs.Available {
			continue
		}
		out.StalenessDays[name] = calendarDays(obs.AsOf, now)
	}

	for _, name := range mesoTracked {
		points, ok := snap.Timeseries[name]
		if !ok {
			continue
		}
		summary, ok := summarizeDaily(points)
		if !ok {
			continue
		}
		if name == "HY_SPREAD" {
			addSpreadBps(&summary)
		}
		out.Daily[name] = summary
	}

	out.Alerts = buildAlerts(snap, out.StalenessDays)
	out.Drivers = buildDrivers(snap, out.Daily)
	if len(out.Drivers) > maxDrivers {
		out.Drivers = out.Drivers[:maxDrivers]
	}

	return out
}

// summarizeDaily computes 1-day/1-week/1-month absolute and percent
// changes against the series' own trailing history using calendar-day
// lookbacks from the last observation.
func summarizeDaily(points []timeseries.Point) (domain.DailySummary, bool) {
	points = timeseries.Clean(points)
	if len(points) < 2 {
		return domain.DailySummary{}, false
	}

	last := points[len(points)-1]
	summary := domain.DailySummary{AsOf: last.Date, Value: last.Value}

	lookback := func(days int) (*float64, *float64) {
		base, ok := timeseries.ValueAtOrBefore(points, last.Date.AddDate(0, 0, -days))
		if !ok {
			return nil, nil
		}
		change := last.Value - base
		var pct *float64
		if base != 0 {
			p := (last.Value/base - 1.0) * 100.0
			pct = &p
		}
		return &change, pct
	}

	summary.Change1D, summary.PctChange1D = lookback(1)
	summary.Change1W, summary.PctChange1W = lookback(7)
	summary.Change1M, summary.PctChange1M = lookback(30)

	return summary, true
}

// addSpreadBps attaches basis-point copies of the value and each change
// field. Values below 50 are percentage points and scale by 100.
func addSpreadBps(summary *domain.DailySummary) {
	scale := 1.0
	if summary.Value < 50 {
		scale = 100.0
	}
	bps := summary.Value * scale
	summary.ValueBps = &bps

	scaled := func(ch *float64) *float64 {
		if ch == nil {
			return nil
		}
		v := *ch * scale
		return &v
	}
	summary.Change1DBps = scaled(summary.Change1D)
	summary.Change1WBps = scaled(summary.Change1W)
	summary.Change1MBps = scaled(summary.Change1M)
}

func buildAlerts(snap domain.MacroSnapshot, stalenessDays map[string]int) []domain.Alert {
	alerts := []domain.Alert{}
	flat := snap.Flat
	derived := snap.Derived

	add := func(id, level, series string, detail map[string]float64) {
		alerts = append(alerts, domain.Alert{ID: id, Level: level, Series: series, Detail: detail})
	}

	if v, ok := flat["macro_stress"]; ok && v >= 75 {
		add("macro_stress_high", "HIGH", "", map[string]float64{"value": v})
	}

	if v, ok := flat["vix"]; ok {
		if v >= 30 {
			add("vix_elevated", "HIGH", "", map[string]float64{"value": v})
		} else if v >= 22 {
			add("vix_watch", "MEDIUM", "", map[string]float64{"value": v})
		}
	}

	if v, ok := flat["credit_spread"]; ok {
		if v >= 500 {
			add("credit_spread_stressed", "HIGH", "", map[string]float64{"value_bps": v})
		} else if v >= 350 {
			add("credit_spread_widening", "MEDIUM", "", map[string]float64{"value_bps": v})
		}
	}

	if v, ok := flat["yield_curve"]; ok && v < 0 {
		add("yield_curve_inverted", "MEDIUM", "", map[string]float64{"value": v})
	}

	for _, series := range []string{"CPI", "CORE_CPI"} {
		if days, ok := stalenessDays[series]; ok && days >= 45 {
			add("inflation_data_stale", "LOW", series, map[string]float64{"staleness_days": float64(days)})
		}
	}

	zscoreAlerts := []struct {
		key   string
		id    string
		level string
	}{
		{"credit_spread_zscore_2y", "credit_spread_zscore_high", "MEDIUM"},
		{"vix_zscore_2y", "vix_zscore_high", "MEDIUM"},
		{"financial_stress_zscore_2y", "financial_stress_zscore_high", "HIGH"},
		{"nfci_zscore_2y", "nfci_zscore_high", "HIGH"},
	}
	for _, za := range zscoreAlerts {
		if z, ok := derived[za.key]; ok && z >= 1.5 {
			add(za.id, za.level, "", map[string]float64{"zscore": z})
		}
	}

	if _, ok := flat["SP500"]; ok {
		if ch, ok := derived["SP500_pct_change_1m"]; ok && ch <= -6 {
			add("sp500_drawdown", "HIGH", "", map[string]float64{"pct_change_1m": ch})
		}
	}

	if ch, ok := derived["WTI_OIL_pct_change_1m"]; ok && ch >= 15 {
		add("oil_spike", "MEDIUM", "", map[string]float64{"pct_change_1m": ch})
	}

	return alerts
}

// buildDrivers maps raw, derived and feature values onto 0-100 attention
// scores via fixed linear mappings and returns them sorted descending.
func buildDrivers(snap domain.MacroSnapshot, daily map[string]domain.DailySummary) []domain.Driver {
	drivers := []domain.Driver{}
	flat := snap.Flat
	derived := snap.Derived

	add := func(name string, score float64, payload map[string]float64) {
		drivers = append(drivers, domain.Driver{Name: name, Score: score, Payload: payload})
	}

	if v, ok := flat["macro_stress"]; ok {
		add("macro_stress", v, map[string]float64{"value": v})
	}

	linearZ := []struct {
		key   string
		slope float64
	}{
		{"credit_spread_zscore_2y", 20},
		{"vix_zscore_2y", 20},
		{"yield_curve_zscore_2y", -15},
		{"financial_stress_zscore_2y", 20},
		{"nfci_zscore_2y", 20},
	}
	for _, lz := range linearZ {
		if z, ok := derived[lz.key]; ok {
			add(lz.key, clamp(50+z*lz.slope, 0, 100), map[string]float64{"zscore": z})
		}
	}

	if v, ok := flat["macro_usd_strength"]; ok {
		add("usd_strength", v, map[string]float64{"value": v})
	}

	if vix, ok := daily["VIX"]; ok && vix.Change1W != nil {
		add("vix_change_1w", clamp(50+*vix.Change1W*5, 0, 100), map[string]float64{"change_1w": *vix.Change1W})
	}
	if spread, ok := daily["HY_SPREAD"]; ok && spread.Change1WBps != nil {
		add("credit_spread_change_1w", clamp(50+*spread.Change1WBps*0.2, 0, 100), map[string]float64{"change_1w_bps": *spread.Change1WBps})
	}
	if spx, ok := daily["SP500"]; ok && spx.PctChange1W != nil {
		add("sp500_pct_change_1w", clamp(50-*spx.PctChange1W*2, 0, 100), map[string]float64{"pct_change_1w": *spx.PctChange1W})
	}
	if wti, ok := daily["WTI_OIL"]; ok && wti.PctChange1W != nil {
		add("wti_pct_change_1w", clamp(50+*wti.PctChange1W*2, 0, 100), map[string]float64{"pct_change_1w": *wti.PctChange1W})
	}

	sort.SliceStable(drivers, func(i, j int) bool {
		return drivers[i].Score > drivers[j].Score
	})
	return drivers
}
