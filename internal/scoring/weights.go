// Package scoring combines feature groups into a 0-100 asset score with a
// direction estimate and a confidence label, weighted by the current
// market regime.
package scoring

// baseWeights are the component weights before regime adjustment.
var baseWeights = map[string]float64{
	"macro_alignment":     0.15,
	"trend_quality":       0.15,
	"momentum":            0.10,
	"volatility":          0.10,
	"flow_positioning":    0.10,
	"technical_structure": 0.10,
	"fractal_smc":         0.10,
	"cross_asset":         0.05,
	"timing_seasonal":     0.05,
	"risk_reward":         0.10,
}

// regimeAdjustments multiply the base weights per regime before
// renormalization.
var regimeAdjustments = map[string]map[string]float64{
	"RISK_ON": {
		"trend_quality": 1.2,
		"momentum":      1.3,
		"volatility":    0.8,
	},
	"RISK_OFF": {
		"trend_quality":   0.8,
		"momentum":        0.7,
		"volatility":      1.3,
		"macro_alignment": 1.2,
	},
	"TRANSITION": {
		"volatility":       1.2,
		"flow_positioning": 1.2,
	},
	"STRESS": {
		"volatility":       1.5,
		"macro_alignment":  1.3,
		"flow_positioning": 1.3,
	},
}

// AdjustedWeights returns the base weights scaled by the regime's
// multipliers and renormalized to sum to 1. Unknown regimes get the base
// weights.
func AdjustedWeights(regime string) map[string]float64 {
	weights := make(map[string]float64, len(baseWeights))
	for k, v := range baseWeights {
		weights[k] = v
	}
	for component, multiplier := range regimeAdjustments[regime] {
		if _, ok := weights[component]; ok {
			weights[component] *= multiplier
		}
	}

	total := 0.0
	for _, v := range weights {
		total += v
	}
	for k := range weights {
		weights[k] /= total
	}
	return weights
}
