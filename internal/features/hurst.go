package features

import (
	"math"

	"alphapulse/internal/domain"
)

const hurstMinPeriods = 20

// hurstExponent estimates long-range dependence via rescaled-range (R/S)
// analysis: average R/S per lag length, then the slope of log(lag) vs
// log(mean R/S). Defaults to 0.5 (random walk) on insufficient data.
func hurstExponent(values []float64) float64 {
	n := len(values)
	if n < hurstMinPeriods*2 {
		return 0.5
	}

	maxK := n / 2
	if maxK > 100 {
		maxK = 100
	}

	logLags := []float64{}
	logRS := []float64{}
	for lag := hurstMinPeriods; lag < maxK; lag++ {
		windows := n / lag
		if windows < 2 {
			continue
		}

		sum, count := 0.0, 0
		for w := 0; w < windows; w++ {
			rs, ok := rescaledRange(values[w*lag : (w+1)*lag])
			if ok {
				sum += rs
				count++
			}
		}
		if count == 0 {
			continue
		}
		logLags = append(logLags, math.Log(float64(lag)))
		logRS = append(logRS, math.Log(sum/float64(count)))
	}

	if len(logRS) < 3 {
		return 0.5
	}
	slope, ok := slopeOf(logLags, logRS)
	if !ok {
		return 0.5
	}
	return clamp(slope, 0, 1)
}

// rescaledRange is R/S for one window: range of cumulative mean deviations
// over the sample standard deviation.
func rescaledRange(window []float64) (float64, bool) {
	mean, _ := sma(window, len(window))

	cum, cumMin, cumMax := 0.0, 0.0, 0.0
	for _, v := range window {
		cum += v - mean
		if cum < cumMin {
			cumMin = cum
		}
		if cum > cumMax {
			cumMax = cum
		}
	}

	sd, err := sampleStdev(window)
	if err != nil || sd <= 0 {
		return 0, false
	}
	return (cumMax - cumMin) / sd, true
}

func slopeOf(x, y []float64) (float64, bool) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, false
	}
	xMean, yMean := 0.0, 0.0
	for i := range x {
		xMean += x[i]
		yMean += y[i]
	}
	xMean /= float64(len(x))
	yMean /= float64(len(y))

	num, den := 0.0, 0.0
	for i := range x {
		num += (x[i] - xMean) * (y[i] - yMean)
		den += (x[i] - xMean) * (x[i] - xMean)
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

// hurstFeatures fills the Hurst-derived half of the fractal group.
func hurstFeatures(closes []float64, f *domain.FractalFeatures) {
	h := hurstExponent(closes)
	f.HurstExponent = h
	f.HurstNormalized = clamp((h-0.3)*250, 0, 100)

	switch {
	case h > 0.55:
		f.MarketType = 100 // trending
	case h < 0.45:
		f.MarketType = 0 // mean-reverting
	default:
		f.MarketType = 50
	}

	f.FractalDimension = 2 - h
	f.FractalDimensionNorm = (f.FractalDimension - 1) * 100

	f.RSConfidence = math.Min(100, float64(len(closes))/5)
}
