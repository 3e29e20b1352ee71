// Package macro assembles a point-in-time snapshot of macroeconomic
// conditions from FRED series (plus a secondary price source for series
// FRED lacks) and analyzes it into staleness maps, daily change summaries,
// alerts and attention drivers.
package macro

import "strings"

// SeriesDef names one tracked macro series. FredID is the primary source;
// Tickers are secondary price-source symbols tried in order when the
// primary lacks the series or returns nothing.
type SeriesDef struct {
	Name    string
	FredID  string
	Tickers []string
}

// TrackedSeries is the full set of indicators the snapshot builder fetches
// each cycle.
var TrackedSeries = []SeriesDef{
	// Inflation
	{Name: "CPI", FredID: "CPIAUCSL"},
	{Name: "CORE_CPI", FredID: "CPILFESL"},
	{Name: "PCE", FredID: "PCEPI"},
	{Name: "CORE_PCE", FredID: "PCEPILFE"},
	{Name: "PPI", FredID: "PPIACO"},

	// Growth
	{Name: "GDP", FredID: "GDP"},
	{Name: "REAL_GDP", FredID: "GDPC1"},
	{Name: "GDP_GROWTH", FredID: "A191RL1Q225SBEA"},

	// Employment
	{Name: "UNEMPLOYMENT", FredID: "UNRATE"},
	{Name: "NFP", FredID: "PAYEMS"},
	{Name: "INITIAL_CLAIMS", FredID: "ICSA"},

	// Interest rates
	{Name: "FED_FUNDS", FredID: "FEDFUNDS"},
	{Name: "TREASURY_3M", FredID: "TB3MS"},
	{Name: "TREASURY_2Y", FredID: "DGS2"},
	{Name: "TREASURY_10Y", FredID: "DGS10"},
	{Name: "TREASURY_30Y", FredID: "DGS30"},

	// Yield curves
	{Name: "YIELD_CURVE_10Y2Y", FredID: "T10Y2Y"},
	{Name: "YIELD_CURVE_10Y3M", FredID: "T10Y3M"},

	// Credit
	{Name: "BAA_SPREAD", FredID: "BAAFFM"},
	{Name: "AAA_SPREAD", FredID: "AAAFF"},
	{Name: "HY_SPREAD", FredID: "BAMLH0A0HYM2"},

	// Money supply and financial conditions
	{Name: "M2", FredID: "M2SL"},
	{Name: "M2_VELOCITY", FredID: "M2V"},
	{Name: "FINANCIAL_STRESS_INDEX", FredID: "STLFSI4"},
	{Name: "NFCI", FredID: "NFCI"},
	{Name: "ANFCI", FredID: "ANFCI"},

	// Housing
	{Name: "HOUSING_STARTS", FredID: "HOUST"},
	{Name: "EXISTING_HOME_SALES", FredID: "EXHOSLUSM495S"},

	// Consumer
	{Name: "CONSUMER_SENTIMENT", FredID: "UMCSENT"},
	{Name: "RETAIL_SALES", FredID: "RSAFS"},

	// Manufacturing
	{Name: "ISM_PMI", FredID: "MANEMP"},
	{Name: "INDUSTRIAL_PRODUCTION", FredID: "INDPRO"},
	{Name: "CAPACITY_UTILIZATION", FredID: "TCU"},

	// Dollar
	{Name: "DOLLAR_INDEX", FredID: "DTWEXBGS"},

	// Markets and commodities. VIX and GOLD fall back to the secondary
	// price source; GOLD has no FRED series at all.
	{Name: "VIX", FredID: "VIXCLS", Tickers: []string{"^VIX"}},
	{Name: "SP500", FredID: "SP500"},
	{Name: "WTI_OIL", FredID: "DCOILWTICO"},
	{Name: "COPPER", FredID: "PCOPPUSDM"},
	{Name: "GOLD", Tickers: []string{"GC=F", "GLD"}},
}

// stalenessThresholds maps a native reporting frequency to the number of
// calendar days after which the latest observation counts as stale.
var stalenessThresholds = map[string]int{
	"D": 7,
	"W": 21,
	"M": 60,
	"Q": 150,
	"A": 450,
}

const defaultStalenessDays = 60

func stalenessThreshold(frequency string) int {
	if t, ok := stalenessThresholds[frequency]; ok {
		return t
	}
	return defaultStalenessDays
}

var domainSubstrings = []struct {
	domain string
	tokens []string
}{
	{"inflation", []string{"CPI", "PCE", "PPI"}},
	{"labor", []string{"UNEMPLOYMENT", "NFP", "CLAIMS", "PAYROLL"}},
	{"growth", []string{"GDP", "RETAIL", "INDUSTRIAL", "CAPACITY", "ISM", "HOUSING", "HOME", "SENTIMENT"}},
	{"rates", []string{"TREASURY", "FED_FUNDS", "YIELD_CURVE"}},
	{"credit", []string{"SPREAD"}},
	{"liquidity", []string{"M2", "NFCI", "STRESS"}},
	{"fx", []string{"DOLLAR"}},
	{"commodities", []string{"OIL", "COPPER", "GOLD", "WTI"}},
	{"markets", []string{"SP500", "VIX", "NASDAQ"}},
}

// DomainFor classifies a series name into an economic domain by
// case-insensitive substring matching; unmatched names land in "other".
func DomainFor(name string) string {
	upper := strings.ToUpper(name)
	for _, d := range domainSubstrings {
		for _, token := range d.tokens {
			if strings.Contains(upper, token) {
				return d.domain
			}
		}
	}
	return "other"
}

// zscoreAliases is the subset of series that get trailing 2-year
// percentile/z-score stats, keyed to the lowercase alias used in derived
// and flat keys.
var zscoreAliases = map[string]string{
	"VIX":                    "vix",
	"HY_SPREAD":              "credit_spread",
	"YIELD_CURVE_10Y2Y":      "yield_curve",
	"DOLLAR_INDEX":           "dollar_index",
	"FINANCIAL_STRESS_INDEX": "financial_stress",
	"NFCI":                   "nfci",
}

// NormalizeHYSpreadBps expresses a high-yield spread in basis points.
// Values below 50 are percentage points and multiply by 100; values at or
// above 50 are already basis points.
func NormalizeHYSpreadBps(v float64) float64 {
	if v < 50 {
		return v * 100.0
	}
	return v
}
