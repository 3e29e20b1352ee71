package features

import (
	"fmt"
	"math"

	"alphapulse/internal/domain"
)

// Momentum computes the oscillator group. The caller substitutes
// NeutralMomentum on error.
func Momentum(bars domain.OHLCV) (*domain.MomentumFeatures, error) {
	closes := bars.Closes()
	highs := bars.Highs()
	lows := bars.Lows()
	if len(closes) < 27 {
		return nil, fmt.Errorf("need at least 27 bars, have %d", len(closes))
	}
	price := closes[len(closes)-1]

	f := &domain.MomentumFeatures{
		RSI14: rsi(closes, 14),
		RSI7:  rsi(closes, 7),
	}

	macdLine, signalLine := macd(closes)
	f.MACDHistogram = normalizeMACD(macdLine-signalLine, price)
	if macdLine > signalLine {
		f.MACDSignal = 100
	}

	f.StochK, f.StochD = stochastic(highs, lows, closes, 14, 3)
	f.ROC10 = roc(closes, 10)
	f.ROC20 = roc(closes, 20)
	f.WilliamsR = williamsR(highs, lows, closes, 14)
	f.CCI = cciScore(bars, 20)

	f.Composite = f.RSI14*0.3 + f.StochK*0.2 + f.MACDHistogram*0.3 + f.ROC10*0.2

	return f, nil
}

// rsi is the simple-average RSI. A zero average loss is replaced by 1
// instead of dividing by zero.
func rsi(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 50
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	gain /= float64(period)
	loss /= float64(period)
	if loss == 0 {
		loss = 1
	}
	rs := gain / loss
	return 100 - 100/(1+rs)
}

func macd(closes []float64) (line, signal float64) {
	ema12 := emaSeries(closes, 12)
	ema26 := emaSeries(closes, 26)
	macdLine := make([]float64, len(closes))
	for i := range closes {
		macdLine[i] = ema12[i] - ema26[i]
	}
	signalSeries := emaSeries(macdLine, 9)
	return macdLine[len(macdLine)-1], signalSeries[len(signalSeries)-1]
}

// normalizeMACD maps the histogram as a percent of price, ±2%, onto 0-100.
func normalizeMACD(histogram, price float64) float64 {
	if price == 0 {
		return 50
	}
	pct := histogram / price * 100
	return clamp((pct+2)*25, 0, 100)
}

func stochastic(highs, lows, closes []float64, kPeriod, dPeriod int) (k, d float64) {
	kAt := func(end int) float64 {
		hh := maxOf(highs[end-kPeriod : end])
		ll := minOf(lows[end-kPeriod : end])
		if hh == ll {
			return math.NaN()
		}
		return 100 * (closes[end-1] - ll) / (hh - ll)
	}

	n := len(closes)
	last := kAt(n)
	if math.IsNaN(last) {
		return 50, 50
	}

	sum, count := 0.0, 0
	for end := n - dPeriod + 1; end <= n; end++ {
		if end < kPeriod {
			continue
		}
		v := kAt(end)
		if math.IsNaN(v) {
			return last, 50
		}
		sum += v
		count++
	}
	if count == 0 {
		return last, 50
	}
	return last, sum / float64(count)
}

// roc normalizes the percent change over a period, ±10%, onto 0-100.
func roc(closes []float64, period int) float64 {
	n := len(closes)
	if n < period || closes[n-period] == 0 {
		return 50
	}
	change := (closes[n-1]/closes[n-period] - 1) * 100
	return clamp((change+10)*5, 0, 100)
}

// williamsR is Williams %R shifted from -100..0 onto 0-100.
func williamsR(highs, lows, closes []float64, period int) float64 {
	n := len(closes)
	if n < period {
		return 50
	}
	hh := maxOf(highs[n-period:])
	ll := minOf(lows[n-period:])
	if hh == ll {
		return 50
	}
	wr := -100 * (hh - closes[n-1]) / (hh - ll)
	return wr + 100
}

// cciScore is CCI(20) mapped from ±200 onto 0-100.
func cciScore(bars domain.OHLCV, period int) float64 {
	tp := typicalPrices(bars)
	if len(tp) < period {
		return 50
	}
	window := tp[len(tp)-period:]
	mean, _ := sma(window, period)

	mad := 0.0
	for _, v := range window {
		mad += math.Abs(v - mean)
	}
	mad /= float64(period)
	if mad == 0 {
		return 50
	}

	cci := (tp[len(tp)-1] - mean) / (0.015 * mad)
	return clamp((cci+200)/4, 0, 100)
}
