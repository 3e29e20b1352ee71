package features

import (
	"fmt"
	"math"

	"alphapulse/internal/domain"
)

// Volatility computes the ATR/Bollinger/Keltner group. The caller
// substitutes NeutralVolatility on error.
func Volatility(bars domain.OHLCV) (*domain.VolatilityFeatures, error) {
	closes := bars.Closes()
	if len(bars) < 21 {
		return nil, fmt.Errorf("need at least 21 bars, have %d", len(bars))
	}
	price := closes[len(closes)-1]

	atrSeries := rollingMeanSeries(trueRanges(bars), 14)
	if len(atrSeries) == 0 {
		return nil, fmt.Errorf("not enough bars for atr")
	}
	atr := atrSeries[len(atrSeries)-1]

	f := &domain.VolatilityFeatures{ATR: atr}
	if price > 0 {
		f.ATRPct = atr / price * 100
	}
	f.ATRPercentile = percentileBelow(atrSeries, atr, 100)

	f.BBPosition, f.BBWidth = bollinger(closes, 20, 2.0)

	f.HistVol20 = historicalVol(closes, 20)
	f.HistVol60 = historicalVol(closes, 60)
	if f.HistVol60 > 0 {
		f.VolRatio = f.HistVol20 / f.HistVol60 * 50
	} else {
		f.VolRatio = 50
	}

	f.KeltnerPosition = keltner(bars, 20, 2.0)

	if len(atrSeries) < 20 {
		return nil, fmt.Errorf("not enough atr history for expansion flag")
	}
	if atrSeries[len(atrSeries)-1] > atrSeries[len(atrSeries)-20] {
		f.ATRExpansion = 100
	}

	return f, nil
}

// percentileBelow is the percent of the trailing window strictly below v.
func percentileBelow(series []float64, v float64, lookback int) float64 {
	recent := series
	if len(recent) > lookback {
		recent = recent[len(recent)-lookback:]
	}
	if len(recent) == 0 {
		return 50
	}
	below := 0
	for _, s := range recent {
		if s < v {
			below++
		}
	}
	return float64(below) / float64(len(recent)) * 100
}

// bollinger returns the position within the 2-sigma band (0 lower, 100
// upper) and the bandwidth normalized so 10% of price saturates at 100.
func bollinger(closes []float64, period int, stdDev float64) (position, width float64) {
	if len(closes) < period {
		return 50, 50
	}
	window := closes[len(closes)-period:]
	mean, _ := sma(window, period)
	sd, err := sampleStdev(window)
	if err != nil {
		return 50, 50
	}

	upper := mean + stdDev*sd
	lower := mean - stdDev*sd
	bandRange := upper - lower

	position = 50
	if bandRange > 0 {
		position = (closes[len(closes)-1] - lower) / bandRange * 100
	}
	width = 0
	if mean > 0 {
		width = math.Min(100, bandRange/mean*100*10)
	}
	return position, width
}

// historicalVol is the annualized standard deviation of returns over the
// trailing period, in percent. Too little history yields 0.
func historicalVol(closes []float64, period int) float64 {
	if len(closes) < 3 {
		return 0
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	if len(returns) > period {
		returns = returns[len(returns)-period:]
	}
	sd, err := sampleStdev(returns)
	if err != nil {
		return 0
	}
	return sd * math.Sqrt(252) * 100
}

func keltner(bars domain.OHLCV, period int, mult float64) float64 {
	closes := bars.Closes()
	atrSeries := rollingMeanSeries(trueRanges(bars), period)
	if len(atrSeries) == 0 {
		return 50
	}
	atr := atrSeries[len(atrSeries)-1]
	ema, ok := emaLast(closes, period)
	if !ok {
		return 50
	}

	upper := ema + mult*atr
	lower := ema - mult*atr
	channelRange := upper - lower
	if channelRange <= 0 {
		return 50
	}
	return (closes[len(closes)-1] - lower) / channelRange * 100
}
