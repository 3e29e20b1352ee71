// Package regime classifies macro conditions into discrete market-regime
// and scenario labels with rule-based scoring. State is explicit: callers
// pass the previous state in and persist the returned one between cycles.
package regime

import (
	"math"

	"go.uber.org/zap"
)

// Regime labels.
const (
	RiskOn      = "RISK_ON"
	RiskOff     = "RISK_OFF"
	Transition  = "TRANSITION"
	Stress      = "STRESS"
	Uncertain   = "UNCERTAIN"
	minWinScore = 60
)

// State is the carried-forward regime state. DurationDays increments only
// while the label is unchanged; any change resets it to 1 and records the
// prior label.
type State struct {
	Regime       string  `json:"regime"`
	Confidence   float64 `json:"confidence"`
	Previous     string  `json:"previous,omitempty"`
	DurationDays int     `json:"duration_days"`
}

// NewState is the fresh starting state.
func NewState() State {
	return State{Regime: Uncertain, Confidence: 50}
}

type Detector struct {
	log *zap.SugaredLogger
}

func NewDetector(log *zap.SugaredLogger) *Detector {
	return &Detector{log: log}
}

// Detect scores RISK_ON, RISK_OFF and STRESS against the snapshot's flat
// indicator map and advances the state. Raw scores are compared unclamped
// so a stress reading above 100 outranks a saturated risk-off score; a
// best score under 60 becomes TRANSITION (or UNCERTAIN when nothing was
// established yet). An empty input leaves the state untouched.
func (d *Detector) Detect(prev State, flat map[string]float64) State {
	if len(flat) == 0 {
		return prev
	}

	scores := map[string]float64{
		RiskOn:  scoreRiskOn(flat),
		RiskOff: scoreRiskOff(flat),
		Stress:  scoreStress(flat),
	}

	best, bestScore := RiskOn, scores[RiskOn]
	for _, regime := range []string{RiskOff, Stress} {
		if scores[regime] > bestScore {
			best, bestScore = regime, scores[regime]
		}
	}

	if bestScore < minWinScore {
		if prev.Regime != Uncertain {
			best = Transition
		} else {
			best = Uncertain
		}
	}

	confidence := math.Min(100, bestScore)
	if best == prev.Regime {
		next := prev
		next.Confidence = confidence
		next.DurationDays++
		return next
	}

	d.log.Infof("regime change %s -> %s (confidence %.0f)", prev.Regime, best, confidence)
	return State{
		Regime:       best,
		Confidence:   confidence,
		Previous:     prev.Regime,
		DurationDays: 1,
	}
}

func scoreRiskOn(flat map[string]float64) float64 {
	score := 50.0

	vix := lookup(flat, 20, "VIX", "vix")
	if vix < 15 {
		score += 20
	} else if vix < 20 {
		score += 10
	}

	if lookup(flat, 0, "YIELD_CURVE_10Y2Y", "yield_curve") > 0 {
		score += 15
	}

	if spread, ok := creditSpreadBps(flat); ok && spread < 350 {
		score += 15
	}

	return math.Min(100, score)
}

func scoreRiskOff(flat map[string]float64) float64 {
	score := 50.0

	vix := lookup(flat, 20, "VIX", "vix")
	if vix > 25 {
		score += 20
	} else if vix > 20 {
		score += 10
	}

	if lookup(flat, 0, "YIELD_CURVE_10Y2Y", "yield_curve") < 0 {
		score += 15
	}

	if spread, ok := creditSpreadBps(flat); ok && spread > 500 {
		score += 15
	}

	return math.Min(100, score)
}

// scoreStress is returned unclamped. When extreme VIX and a distressed
// credit spread fire together the combined score exceeds 100, which is
// what lets STRESS outrank a saturated RISK_OFF reading.
func scoreStress(flat map[string]float64) float64 {
	score := 0.0

	vix := lookup(flat, 20, "VIX", "vix")
	vixExtreme := vix >= 35
	if vixExtreme {
		score += 45
	} else if vix > 30 {
		score += 20
	}

	spread, ok := creditSpreadBps(flat)
	spreadDistressed := ok && spread >= 500
	if spreadDistressed {
		score += 35
	}

	if vixExtreme && spreadDistressed {
		score += 25
	}

	return score
}

// lookup returns the first present key, else the fallback.
func lookup(flat map[string]float64, fallback float64, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := flat[k]; ok {
			return v
		}
	}
	return fallback
}

// creditSpreadBps prefers the basis-point alias and normalizes the raw
// high-yield value otherwise.
func creditSpreadBps(flat map[string]float64) (float64, bool) {
	if v, ok := flat["credit_spread"]; ok {
		return v, true
	}
	if v, ok := flat["HY_SPREAD"]; ok {
		if v < 50 {
			return v * 100, true
		}
		return v, true
	}
	return 0, false
}
