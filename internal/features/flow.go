package features

import (
	"fmt"

	"alphapulse/internal/domain"
)

// Flow computes the volume and money-flow group. The caller substitutes
// NeutralFlow on error.
func Flow(bars domain.OHLCV) (*domain.FlowFeatures, error) {
	if len(bars) < 21 {
		return nil, fmt.Errorf("need at least 21 bars, have %d", len(bars))
	}
	closes := bars.Closes()
	volumes := bars.Volumes()
	n := len(volumes)

	f := &domain.FlowFeatures{VolumeRatio: 1.0}
	if avg, ok := sma(volumes, 20); ok && avg > 0 {
		f.VolumeRatio = volumes[n-1] / avg
	}

	recent5, _ := sma(volumes, 5)
	prior15, ok := sma(volumes[:n-5], 15)
	if ok && recent5 > prior15 {
		f.VolumeTrend = 100
	}

	f.OBVTrend = obvTrend(closes, volumes)
	f.MFI = moneyFlowIndex(bars, 14)

	return f, nil
}

// obvTrend compares on-balance volume now against 19 bars prior.
func obvTrend(closes, volumes []float64) float64 {
	obv := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		obv[i] = obv[i-1]
		switch {
		case closes[i] > closes[i-1]:
			obv[i] += volumes[i]
		case closes[i] < closes[i-1]:
			obv[i] -= volumes[i]
		}
	}
	n := len(obv)
	if n < 20 {
		return 50
	}
	if obv[n-1] > obv[n-20] {
		return 100
	}
	return 0
}

// moneyFlowIndex is MFI(period) with the zero-denominator guard shared
// with RSI: a zero negative flow is replaced by 1.
func moneyFlowIndex(bars domain.OHLCV, period int) float64 {
	tp := typicalPrices(bars)
	volumes := bars.Volumes()
	n := len(tp)
	if n < period+1 {
		return 50
	}

	positive, negative := 0.0, 0.0
	for i := n - period; i < n; i++ {
		mf := tp[i] * volumes[i]
		if tp[i] > tp[i-1] {
			positive += mf
		} else if tp[i] < tp[i-1] {
			negative += mf
		}
	}
	if negative == 0 {
		negative = 1
	}
	return 100 - 100/(1+positive/negative)
}
