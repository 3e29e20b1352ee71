package features

import (
	"fmt"
	"math"

	"alphapulse/internal/domain"
)

// Fractal computes the Hurst and smart-money-structure group. The caller
// substitutes NeutralFractal on error.
func Fractal(bars domain.OHLCV) (*domain.FractalFeatures, error) {
	if len(bars) < 50 {
		return nil, fmt.Errorf("need at least 50 bars, have %d", len(bars))
	}
	closes := bars.Closes()
	highs := bars.Highs()
	lows := bars.Lows()
	price := closes[len(closes)-1]

	f := &domain.FractalFeatures{}
	hurstFeatures(closes, f)

	bullOB, bearOB := findOrderBlocks(highs, lows, closes, 50)
	f.OrderBlockBull = normalizeLevelDistance(price, bullOB)
	f.OrderBlockBear = normalizeLevelDistance(price, bearOB)
	f.OBProximity = orderBlockProximity(price, bullOB, bearOB)

	fvgUp, fvgDown := findFVGs(highs, lows, 30)
	f.FVGUp = normalizeLevelDistance(price, fvgUp)
	f.FVGDown = normalizeLevelDistance(price, fvgDown)
	switch {
	case fvgUp != nil && *fvgUp < price:
		f.FVGBias = 100
	case fvgDown != nil && *fvgDown > price:
		f.FVGBias = 0
	default:
		f.FVGBias = 50
	}

	f.BOSBullish = breakOfStructure(highs, lows, true, 20)
	f.BOSBearish = breakOfStructure(highs, lows, false, 20)
	f.StructureBias = f.BOSBullish*0.5 + (100-f.BOSBearish)*0.5

	f.LiquidityAbove = liquidityScore(highs, price, true, 50)
	f.LiquidityBelow = liquidityScore(lows, price, false, 50)

	f.SMCScore = f.OBProximity*0.25 +
		f.FVGBias*0.25 +
		f.StructureBias*0.30 +
		(f.LiquidityAbove+f.LiquidityBelow)/2*0.20

	return f, nil
}

// findOrderBlocks scans the last lookback bars, excluding the most recent
// three, for a candle followed within two bars by a >1% directional move.
// The last match wins.
func findOrderBlocks(highs, lows, closes []float64, lookback int) (bull, bear *float64) {
	n := len(closes)
	for i := n - lookback; i <= n-4; i++ {
		if i < 0 || i+2 >= n {
			continue
		}
		if closes[i+2] > highs[i]*1.01 {
			v := lows[i]
			bull = &v
		}
		if closes[i+2] < lows[i]*0.99 {
			v := highs[i]
			bear = &v
		}
	}
	return bull, bear
}

// findFVGs scans the last lookback bars for three-candle imbalances and
// records the gap midpoint. The last match wins.
func findFVGs(highs, lows []float64, lookback int) (up, down *float64) {
	n := len(highs)
	for i := n - lookback; i <= n-3; i++ {
		if i < 0 || i+2 >= n {
			continue
		}
		if lows[i+2] > highs[i] {
			v := (lows[i+2] + highs[i]) / 2
			up = &v
		}
		if highs[i+2] < lows[i] {
			v := (highs[i+2] + lows[i]) / 2
			down = &v
		}
	}
	return up, down
}

// breakOfStructure scores the last two swing highs/lows over a 20-bar
// window: 100 when both confirm the direction, 75 when only the relevant
// extreme does, 25 otherwise.
func breakOfStructure(highs, lows []float64, bullish bool, lookback int) float64 {
	recentHighs := highs[len(highs)-lookback:]
	recentLows := lows[len(lows)-lookback:]

	swingHighs := swingPoints(recentHighs, true, 5)
	swingLows := swingPoints(recentLows, false, 5)

	if len(swingHighs) < 2 || len(swingLows) < 2 {
		return 25
	}

	lastHighUp := swingHighs[len(swingHighs)-1] > swingHighs[len(swingHighs)-2]
	lastLowUp := swingLows[len(swingLows)-1] > swingLows[len(swingLows)-2]

	if bullish {
		if lastHighUp && lastLowUp {
			return 100
		}
		if lastHighUp {
			return 75
		}
		return 25
	}
	if !lastLowUp && !lastHighUp {
		return 100
	}
	if !lastLowUp {
		return 75
	}
	return 25
}

// swingPoints extracts local extrema that dominate a symmetric window.
func swingPoints(arr []float64, high bool, window int) []float64 {
	swings := []float64{}
	for i := window; i < len(arr)-window; i++ {
		neighborhood := arr[i-window : i+window+1]
		if high && arr[i] == maxOf(neighborhood) {
			swings = append(swings, arr[i])
		}
		if !high && arr[i] == minOf(neighborhood) {
			swings = append(swings, arr[i])
		}
	}
	return swings
}

// liquidityScore finds price clusters with at least three touches within
// 0.1 stdev and scores proximity of the nearest cluster on the requested
// side of price.
func liquidityScore(arr []float64, price float64, above bool, lookback int) float64 {
	recent := arr
	if len(recent) > lookback {
		recent = recent[len(recent)-lookback:]
	}
	sd, err := populationStdev(recent)
	if err != nil {
		return 50
	}
	tolerance := sd * 0.1

	clusters := []float64{}
	for _, p := range recent {
		touches := 0
		for _, q := range recent {
			if math.Abs(q-p) < tolerance {
				touches++
			}
		}
		if touches >= 3 {
			clusters = append(clusters, p)
		}
	}
	if len(clusters) == 0 || price == 0 {
		return 50
	}

	if above {
		nearest := math.Inf(1)
		for _, p := range clusters {
			if p > price && p < nearest {
				nearest = p
			}
		}
		if !math.IsInf(nearest, 1) {
			distancePct := (nearest - price) / price * 100
			return math.Max(0, 100-distancePct*20)
		}
	} else {
		nearest := math.Inf(-1)
		for _, p := range clusters {
			if p < price && p > nearest {
				nearest = p
			}
		}
		if !math.IsInf(nearest, -1) {
			distancePct := (price - nearest) / price * 100
			return math.Max(0, 100-distancePct*20)
		}
	}
	return 50
}

// normalizeLevelDistance maps the percent distance to a level, ±5%, onto
// 0-100. A missing level is neutral.
func normalizeLevelDistance(price float64, level *float64) float64 {
	if level == nil || price == 0 {
		return 50
	}
	pctDiff := (*level - price) / price * 100
	return clamp((pctDiff+5)*10, 0, 100)
}

// orderBlockProximity scores distance to the nearer of the two order
// blocks; closer blocks score higher.
func orderBlockProximity(price float64, bull, bear *float64) float64 {
	if bull == nil && bear == nil {
		return 50
	}
	bullDist, bearDist := 100.0, 100.0
	if bull != nil {
		bullDist = math.Abs(price-*bull) / price * 100
	}
	if bear != nil {
		bearDist = math.Abs(price-*bear) / price * 100
	}
	if bullDist < bearDist {
		return math.Max(0, 100-bullDist*10)
	}
	return math.Max(0, 100-bearDist*10)
}
