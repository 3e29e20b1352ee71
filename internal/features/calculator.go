package features

import (
	"time"

	"go.uber.org/zap"

	"alphapulse/internal/domain"
)

// minBars is the minimum history needed before any features are computed.
// Below it the asset gets an empty FeatureSet and a diagnostic.
const minBars = 50

// Calculator runs every feature group for an asset. Group failures degrade
// to the group's neutral defaults and are recorded on Diagnostics.
type Calculator struct {
	log *zap.SugaredLogger
}

func NewCalculator(log *zap.SugaredLogger) *Calculator {
	return &Calculator{log: log}
}

func (c *Calculator) Calculate(symbol string, bars domain.OHLCV, macro map[string]float64) domain.FeatureSet {
	if len(bars) < minBars {
		c.log.Warnf("insufficient data for %s: %d bars", symbol, len(bars))
		return domain.FeatureSet{
			Symbol:    symbol,
			Timestamp: time.Now(),
			Diagnostics: []domain.Diagnostic{{
				Component: "features",
				Symbol:    symbol,
				Reason:    "insufficient data",
			}},
		}
	}

	set := domain.FeatureSet{
		Symbol:    symbol,
		Timestamp: bars[len(bars)-1].Timestamp,
	}

	degrade := func(group string, err error) {
		c.log.Warnf("%s features degraded for %s: %v", group, symbol, err)
		set.Diagnostics = append(set.Diagnostics, domain.Diagnostic{
			Component: "features." + group,
			Symbol:    symbol,
			Reason:    err.Error(),
		})
	}

	if trend, err := Trend(bars); err != nil {
		set.Trend = domain.NeutralTrend()
		degrade("trend", err)
	} else {
		set.Trend = trend
	}

	if momentum, err := Momentum(bars); err != nil {
		set.Momentum = domain.NeutralMomentum()
		degrade("momentum", err)
	} else {
		set.Momentum = momentum
	}

	if volatility, err := Volatility(bars); err != nil {
		set.Volatility = domain.NeutralVolatility()
		degrade("volatility", err)
	} else {
		set.Volatility = volatility
	}

	if fractal, err := Fractal(bars); err != nil {
		set.Fractal = domain.NeutralFractal()
		degrade("fractal", err)
	} else {
		set.Fractal = fractal
	}

	if flow, err := Flow(bars); err != nil {
		set.Flow = domain.NeutralFlow()
		degrade("flow", err)
	} else {
		set.Flow = flow
	}

	if macro != nil {
		set.Macro = normalizeMacro(macro)
	}

	return set
}

// CalculateBatch runs Calculate over a symbol-keyed map of OHLCV history.
func (c *Calculator) CalculateBatch(data map[string]domain.OHLCV, macro map[string]float64) map[string]domain.FeatureSet {
	results := make(map[string]domain.FeatureSet, len(data))
	for symbol, bars := range data {
		results[symbol] = c.Calculate(symbol, bars, macro)
	}
	c.log.Infof("calculated features for %d assets", len(results))
	return results
}

func normalizeMacro(macro map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(macro))
	for k, v := range macro {
		out[k] = clamp(v, 0, 100)
	}
	return out
}
