package features

import (
	"fmt"

	"alphapulse/internal/domain"
)

// Trend computes the moving-average and trend-strength group. The caller
// substitutes NeutralTrend on error.
func Trend(bars domain.OHLCV) (*domain.TrendFeatures, error) {
	closes := bars.Closes()
	highs := bars.Highs()
	lows := bars.Lows()
	if len(closes) < 20 {
		return nil, fmt.Errorf("need at least 20 bars, have %d", len(closes))
	}
	price := closes[len(closes)-1]

	sma20, _ := sma(closes, 20)
	sma50, ok := sma(closes, 50)
	if !ok {
		return nil, fmt.Errorf("need at least 50 bars for sma50, have %d", len(closes))
	}
	sma200Period := 200
	if len(closes) < 200 {
		sma200Period = len(closes)
	}
	sma200, _ := sma(closes, sma200Period)

	ema9, _ := emaLast(closes, 9)
	ema21, _ := emaLast(closes, 21)

	f := &domain.TrendFeatures{
		PriceVsSMA20:  normalizeMADistance(price, sma20),
		PriceVsSMA50:  normalizeMADistance(price, sma50),
		PriceVsSMA200: normalizeMADistance(price, sma200),
	}

	// 25 points per satisfied alignment condition.
	alignment := 0.0
	if price > ema9 {
		alignment += 25
	}
	if ema9 > ema21 {
		alignment += 25
	}
	if price > sma50 {
		alignment += 25
	}
	if sma50 > sma200 {
		alignment += 25
	}
	f.MAAlignment = alignment

	f.ADX = adx(bars, 14)
	f.TrendDirection = trendDirection(closes, 20)
	f.LRSlope = lrSlopeScore(closes, 20)

	dcHigh := maxOf(highs[len(highs)-20:])
	dcLow := minOf(lows[len(lows)-20:])
	if dcRange := dcHigh - dcLow; dcRange > 0 {
		f.DonchianPosition = (price - dcLow) / dcRange * 100
	} else {
		f.DonchianPosition = 50
	}

	return f, nil
}

// normalizeMADistance maps the percent distance from a moving average,
// clamped to ±10%, onto 0-100.
func normalizeMADistance(price, ma float64) float64 {
	if ma == 0 {
		return 50
	}
	pctDiff := (price - ma) / ma * 100
	return clamp((pctDiff+10)*5, 0, 100)
}

// adx is the standard 14-period directional-movement trend strength,
// defaulting to 25 when not enough history exists.
func adx(bars domain.OHLCV, period int) float64 {
	if len(bars) < 2 {
		return 25
	}
	tr := trueRanges(bars)
	plusDM := make([]float64, len(bars)-1)
	minusDM := make([]float64, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		upMove := bars[i].High - bars[i-1].High
		downMove := bars[i-1].Low - bars[i].Low
		if upMove > downMove && upMove > 0 {
			plusDM[i-1] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i-1] = downMove
		}
	}

	atr := rollingMeanSeries(tr, period)
	plusAvg := rollingMeanSeries(plusDM, period)
	minusAvg := rollingMeanSeries(minusDM, period)
	if len(atr) == 0 {
		return 25
	}

	dx := make([]float64, 0, len(atr))
	for i := range atr {
		if atr[i] == 0 {
			continue
		}
		plusDI := 100 * plusAvg[i] / atr[i]
		minusDI := 100 * minusAvg[i] / atr[i]
		if sum := plusDI + minusDI; sum > 0 {
			diff := plusDI - minusDI
			if diff < 0 {
				diff = -diff
			}
			dx = append(dx, 100*diff/sum)
		}
	}
	if len(dx) < period {
		return 25
	}
	v, _ := sma(dx, period)
	return v
}

// trendDirection classifies the last 20 bars via rolling 5-bar extrema:
// higher highs and higher lows score 100, lower both score 0, mixed 50.
func trendDirection(closes []float64, lookback int) float64 {
	recent := closes
	if len(recent) > lookback {
		recent = recent[len(recent)-lookback:]
	}

	const window = 5
	if len(recent) < window {
		return 50
	}
	n := len(recent) - window + 1
	rollMax := make([]float64, n)
	rollMin := make([]float64, n)
	for i := 0; i < n; i++ {
		rollMax[i] = maxOf(recent[i : i+window])
		rollMin[i] = minOf(recent[i : i+window])
	}
	// Needs 10 extrema observations to compare against 9 slots back.
	if n < 10 {
		return 50
	}

	higherHighs := rollMax[n-1] > rollMax[n-10]
	higherLows := rollMin[n-1] > rollMin[n-10]
	switch {
	case higherHighs && higherLows:
		return 100
	case !higherHighs && !higherLows:
		return 0
	default:
		return 50
	}
}

// lrSlopeScore normalizes the 20-bar regression slope relative to price
// onto 0-100.
func lrSlopeScore(closes []float64, period int) float64 {
	window := closes
	if len(window) > period {
		window = window[len(window)-period:]
	}
	slope, ok := lrSlope(window)
	if !ok {
		return 50
	}
	price := closes[len(closes)-1]
	if price == 0 {
		return 50
	}
	pctSlope := slope / price * 100
	return clamp((pctSlope+1)*50, 0, 100)
}
