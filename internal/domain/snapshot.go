package domain

import (
	"time"

	"alphapulse/internal/timeseries"
)

// RawObservation is the latest value of one macro series together with its
// as-of date and where it came from.
type RawObservation struct {
	Value         float64   `json:"value"`
	AsOf          time.Time `json:"asof"`
	Source        string    `json:"source"`
	Frequency     string    `json:"frequency"`
	StalenessDays int       `json:"staleness_days"`
	Stale         bool      `json:"stale"`
	Available     bool      `json:"available"`
}

// MacroFeatures are the three composite 0-100 macro scores derived from
// the snapshot's percentile ranks.
type MacroFeatures struct {
	RiskOn      float64 `json:"macro_risk_on"`
	Stress      float64 `json:"macro_stress"`
	USDStrength float64 `json:"macro_usd_strength"`
}

func (m MacroFeatures) AsMap() map[string]float64 {
	return map[string]float64{
		"macro_risk_on":      m.RiskOn,
		"macro_stress":       m.Stress,
		"macro_usd_strength": m.USDStrength,
	}
}

type SnapshotQuality struct {
	Missing      []string `json:"missing"`
	Stale        []string `json:"stale"`
	MissingCount int      `json:"missing_count"`
}

// SnapshotStates is appended to the snapshot by the orchestrator after the
// regime and scenario classifiers have run.
type SnapshotStates struct {
	Regime              string  `json:"regime"`
	RegimeConfidence    float64 `json:"regime_confidence"`
	Scenario            string  `json:"scenario"`
	ScenarioProbability float64 `json:"scenario_probability"`
}

// MacroSnapshot is the point-in-time view of macro conditions built once
// per cycle. Apart from States and Meso, which the orchestrator appends
// after classification, it is never mutated after construction.
type MacroSnapshot struct {
	Timestamp time.Time `json:"timestamp"`

	// Flat is the union of raw latest values, derived scalars and the
	// composite features. Merge precedence: raw < derived < features.
	Flat map[string]float64 `json:"flat"`

	// InflationTrend is RISING/FALLING/FLAT/UNKNOWN over the last six CPI
	// observations.
	InflationTrend string `json:"inflation_trend"`

	RawLatest  map[string]RawObservation     `json:"raw_latest"`
	Derived    map[string]float64            `json:"derived"`
	Features   MacroFeatures                 `json:"features"`
	Timeseries map[string][]timeseries.Point `json:"timeseries"`
	Domains    map[string][]string           `json:"domains"`
	Quality    SnapshotQuality               `json:"quality"`

	States *SnapshotStates `json:"states,omitempty"`
	Meso   *MesoSummary    `json:"meso,omitempty"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// DailySummary is the meso analyzer's calendar-day change summary for one
// tracked series. Pointer fields are nil when the lookback base is missing.
type DailySummary struct {
	AsOf  time.Time `json:"asof"`
	Value float64   `json:"value"`

	Change1D    *float64 `json:"change_1d"`
	Change1W    *float64 `json:"change_1w"`
	Change1M    *float64 `json:"change_1m"`
	PctChange1D *float64 `json:"pct_change_1d"`
	PctChange1W *float64 `json:"pct_change_1w"`
	PctChange1M *float64 `json:"pct_change_1m"`

	// Basis-point copies, set only for the high-yield spread.
	ValueBps    *float64 `json:"value_bps,omitempty"`
	Change1DBps *float64 `json:"change_1d_bps,omitempty"`
	Change1WBps *float64 `json:"change_1w_bps,omitempty"`
	Change1MBps *float64 `json:"change_1m_bps,omitempty"`
}

type Alert struct {
	ID     string             `json:"id"`
	Level  string             `json:"level"` // LOW / MEDIUM / HIGH
	Series string             `json:"series,omitempty"`
	Detail map[string]float64 `json:"detail,omitempty"`
}

// Driver is a named attention score (0-100) with the raw values that
// produced it.
type Driver struct {
	Name    string             `json:"name"`
	Score   float64            `json:"score"`
	Payload map[string]float64 `json:"payload,omitempty"`
}

type MesoSummary struct {
	Timestamp     time.Time               `json:"timestamp"`
	StalenessDays map[string]int          `json:"staleness_days"`
	Daily         map[string]DailySummary `json:"daily"`
	Drivers       []Driver                `json:"drivers"`
	Alerts        []Alert                 `json:"alerts"`
}
