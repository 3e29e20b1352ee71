package scoring

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"alphapulse/internal/domain"
)

// Calculator scores feature sets against regime-adjusted weights. An empty
// feature set (insufficient history) yields the zero/LOW fallback rather
// than a mid-range score.
type Calculator struct {
	log     *zap.SugaredLogger
	regime  string
	weights map[string]float64
}

func NewCalculator(log *zap.SugaredLogger, regime string) *Calculator {
	return &Calculator{
		log:     log,
		regime:  regime,
		weights: AdjustedWeights(regime),
	}
}

// SetRegime switches the regime and recomputes the adjusted weights.
func (c *Calculator) SetRegime(regime string) {
	c.regime = regime
	c.weights = AdjustedWeights(regime)
}

func (c *Calculator) Regime() string {
	return c.regime
}

func (c *Calculator) Calculate(features domain.FeatureSet) domain.AssetScore {
	if features.Empty() {
		c.log.Warnf("no features for %s, scoring zero", features.Symbol)
		return domain.AssetScore{
			Symbol:     features.Symbol,
			Total:      0,
			Direction:  0,
			Confidence: domain.ConfidenceLow,
			Components: map[string]float64{},
			TopDrivers: []string{},
		}
	}

	components := map[string]float64{
		"macro_alignment":     scoreMacro(features.Macro),
		"trend_quality":       scoreTrend(features.Trend),
		"momentum":            scoreMomentum(features.Momentum),
		"volatility":          scoreVolatility(features.Volatility),
		"flow_positioning":    scoreFlow(features.Flow),
		"technical_structure": scoreTechnical(features.Trend, features.Momentum),
		"fractal_smc":         scoreFractal(features.Fractal),
		"cross_asset":         50, // needs correlation data
		"timing_seasonal":     50, // needs calendar data
		"risk_reward":         scoreRiskReward(features),
	}

	total := 0.0
	for name, score := range components {
		weight, ok := c.weights[name]
		if !ok {
			weight = 0.1
		}
		total += score * weight
	}

	return domain.AssetScore{
		Symbol:     features.Symbol,
		Total:      math.Min(100, math.Max(0, total)),
		Direction:  direction(features),
		Confidence: confidenceFor(total),
		Components: components,
		TopDrivers: topDrivers(components, 3),
	}
}

// CalculateBatch scores a symbol-keyed map of feature sets.
func (c *Calculator) CalculateBatch(features map[string]domain.FeatureSet) map[string]domain.AssetScore {
	scores := make(map[string]domain.AssetScore, len(features))
	for symbol, f := range features {
		scores[symbol] = c.Calculate(f)
	}
	return scores
}

func scoreMacro(macro map[string]float64) float64 {
	if len(macro) == 0 {
		return 50
	}
	sum := 0.0
	for _, v := range macro {
		sum += v
	}
	return sum / float64(len(macro))
}

func scoreTrend(trend *domain.TrendFeatures) float64 {
	if trend == nil {
		return 50
	}
	return trend.MAAlignment*0.30 + trend.ADX*0.25 + trend.TrendDirection*0.25 + trend.LRSlope*0.20
}

func scoreMomentum(momentum *domain.MomentumFeatures) float64 {
	if momentum == nil {
		return 50
	}
	return momentum.Composite
}

// scoreVolatility prefers mid-range ATR percentile: entry conditions are
// best when volatility is neither compressed nor blown out.
func scoreVolatility(volatility *domain.VolatilityFeatures) float64 {
	if volatility == nil {
		return 50
	}
	switch pctl := volatility.ATRPercentile; {
	case pctl >= 30 && pctl <= 70:
		return 80
	case pctl < 30:
		return 60
	default:
		return 40
	}
}

func scoreFlow(flow *domain.FlowFeatures) float64 {
	if flow == nil {
		return 50
	}
	return flow.MFI*0.5 + flow.VolumeTrend*0.5
}

func scoreTechnical(trend *domain.TrendFeatures, momentum *domain.MomentumFeatures) float64 {
	scores := []float64{}
	if trend != nil {
		scores = append(scores, trend.MAAlignment, trend.DonchianPosition)
	}
	if momentum != nil {
		scores = append(scores, momentum.RSI14, momentum.MACDSignal)
	}
	if len(scores) == 0 {
		return 50
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

func scoreFractal(fractal *domain.FractalFeatures) float64 {
	if fractal == nil {
		return 50
	}
	return fractal.HurstNormalized*0.3 + fractal.SMCScore*0.4 + fractal.StructureBias*0.3
}

// scoreRiskReward favors a strong trend with moderate volatility.
func scoreRiskReward(features domain.FeatureSet) float64 {
	atrPct := 0.0
	if features.Volatility != nil {
		atrPct = features.Volatility.ATRPct
	}
	adx := 25.0
	if features.Trend != nil {
		adx = features.Trend.ADX
	}

	switch {
	case adx > 25 && atrPct < 3:
		return 80
	case adx > 20:
		return 60
	default:
		return 40
	}
}

// direction averages up to four directional votes; no vote means flat.
func direction(features domain.FeatureSet) float64 {
	votes := []float64{}
	vote := func(value, up, down float64) {
		if value > up {
			votes = append(votes, 1)
		} else if value < down {
			votes = append(votes, -1)
		}
	}

	if features.Trend != nil {
		vote(features.Trend.TrendDirection, 60, 40)
		vote(features.Trend.MAAlignment, 75, 25)
	}
	if features.Momentum != nil {
		vote(features.Momentum.RSI14, 60, 40)
	}
	if features.Fractal != nil {
		vote(features.Fractal.StructureBias, 60, 40)
	}

	if len(votes) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range votes {
		sum += v
	}
	return sum / float64(len(votes))
}

func confidenceFor(total float64) string {
	switch {
	case total >= 80:
		return domain.ConfidenceInstitutional
	case total >= 70:
		return domain.ConfidenceHigh
	case total >= 55:
		return domain.ConfidenceModerate
	default:
		return domain.ConfidenceLow
	}
}

// topDrivers formats the n highest-scoring components.
func topDrivers(components map[string]float64, n int) []string {
	type kv struct {
		name  string
		score float64
	}
	sorted := make([]kv, 0, len(components))
	for k, v := range components {
		sorted = append(sorted, kv{k, v})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].score != sorted[j].score {
			return sorted[i].score > sorted[j].score
		}
		return sorted[i].name < sorted[j].name
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]string, len(sorted))
	for i, c := range sorted {
		out[i] = fmt.Sprintf("%s: %.0f/100", c.name, c.score)
	}
	return out
}
