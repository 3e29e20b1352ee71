// Package features turns OHLCV history into normalized 0-100 feature
// groups (trend, momentum, volatility, fractal, flow). Every group
// degrades to neutral defaults instead of failing; the calculator records
// degradations on the feature set's diagnostics.
package features

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"alphapulse/internal/domain"
)

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// sma averages the last period values. Reports false when fewer values
// exist.
func sma(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	window := values[len(values)-period:]
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	return sum / float64(period), true
}

// emaSeries is the recursive exponential moving average with
// alpha = 2/(span+1), seeded from the first value.
func emaSeries(values []float64, span int) []float64 {
	if len(values) == 0 {
		return nil
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

func emaLast(values []float64, span int) (float64, bool) {
	s := emaSeries(values, span)
	if len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1], true
}

// trueRanges computes the true range per bar from the second bar onward.
func trueRanges(bars domain.OHLCV) []float64 {
	if len(bars) < 2 {
		return nil
	}
	out := make([]float64, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		hl := bars[i].High - bars[i].Low
		hc := math.Abs(bars[i].High - bars[i-1].Close)
		lc := math.Abs(bars[i].Low - bars[i-1].Close)
		out[i-1] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

// rollingMeanSeries returns the rolling mean with the given period; the
// first period-1 slots are dropped so the result aligns to the last input.
func rollingMeanSeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	out := make([]float64, 0, len(values)-period+1)
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}

// lrSlope fits y against 0..n-1 by least squares and returns the slope.
func lrSlope(y []float64) (float64, bool) {
	n := float64(len(y))
	if len(y) < 2 {
		return 0, false
	}
	xMean := (n - 1) / 2
	yMean := 0.0
	for _, v := range y {
		yMean += v
	}
	yMean /= n

	num, den := 0.0, 0.0
	for i, v := range y {
		dx := float64(i) - xMean
		num += dx * (v - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

func sampleStdev(values []float64) (float64, error) {
	if len(values) < 2 {
		return 0, fmt.Errorf("need at least 2 values, have %d", len(values))
	}
	return stats.StandardDeviationSample(values)
}

func populationStdev(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("empty sample")
	}
	return stats.StandardDeviationPopulation(values)
}

// typicalPrices is (high+low+close)/3 per bar.
func typicalPrices(bars domain.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = (b.High + b.Low + b.Close) / 3
	}
	return out
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
