package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alphapulse/internal/domain"
)

// risingBars builds n daily bars climbing linearly from start to end with
// a small deterministic wiggle.
func risingBars(n int, start, end float64) domain.OHLCV {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	step := (end - start) / float64(n-1)
	bars := make(domain.OHLCV, n)
	for i := 0; i < n; i++ {
		price := start + step*float64(i) + 0.3*math.Sin(float64(i))
		bars[i] = domain.Bar{
			Timestamp: t0.AddDate(0, 0, i),
			Open:      price - 0.1,
			High:      price + 0.5,
			Low:       price - 0.5,
			Close:     price,
			Volume:    1000 + float64(i),
		}
	}
	return bars
}

func flatBars(n int, price float64) domain.OHLCV {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make(domain.OHLCV, n)
	for i := 0; i < n; i++ {
		wiggle := 0.2 * math.Sin(float64(i)*1.7)
		bars[i] = domain.Bar{
			Timestamp: t0.AddDate(0, 0, i),
			Open:      price + wiggle,
			High:      price + wiggle + 0.5,
			Low:       price + wiggle - 0.5,
			Close:     price + wiggle,
			Volume:    1000,
		}
	}
	return bars
}

func TestCalculateRisingSeries(t *testing.T) {
	calc := NewCalculator(zap.NewNop().Sugar())
	bars := risingBars(300, 100, 160)

	set := calc.Calculate("TEST", bars, nil)

	require.False(t, set.Empty())
	require.Empty(t, set.Diagnostics)
	require.Equal(t, bars[len(bars)-1].Timestamp, set.Timestamp)

	t.Run("bullish trend features", func(t *testing.T) {
		require.Equal(t, 100.0, set.Trend.TrendDirection)
		require.Equal(t, 100.0, set.Trend.MAAlignment)
		require.Greater(t, set.Trend.LRSlope, 50.0)
		require.Greater(t, set.Trend.DonchianPosition, 50.0)
	})

	t.Run("momentum leans up", func(t *testing.T) {
		require.Greater(t, set.Momentum.RSI14, 50.0)
		require.Greater(t, set.Momentum.Composite, 50.0)
		require.GreaterOrEqual(t, set.Momentum.StochK, 0.0)
		require.LessOrEqual(t, set.Momentum.StochK, 100.0)
	})

	t.Run("volatility sane", func(t *testing.T) {
		require.Greater(t, set.Volatility.ATR, 0.0)
		require.Greater(t, set.Volatility.ATRPct, 0.0)
		require.GreaterOrEqual(t, set.Volatility.BBPosition, 0.0)
	})

	t.Run("fractal persistent", func(t *testing.T) {
		require.Greater(t, set.Fractal.HurstExponent, 0.55)
		require.Equal(t, 100.0, set.Fractal.MarketType)
		require.InDelta(t, 2-set.Fractal.HurstExponent, set.Fractal.FractalDimension, 1e-12)
	})

	t.Run("flow computed", func(t *testing.T) {
		require.Greater(t, set.Flow.VolumeRatio, 0.0)
		require.GreaterOrEqual(t, set.Flow.MFI, 0.0)
		require.LessOrEqual(t, set.Flow.MFI, 100.0)
	})
}

func TestCalculateInsufficientData(t *testing.T) {
	calc := NewCalculator(zap.NewNop().Sugar())

	set := calc.Calculate("THIN", risingBars(40, 100, 110), nil)

	require.True(t, set.Empty())
	require.Nil(t, set.Trend)
	require.Nil(t, set.Flow)
	require.Len(t, set.Diagnostics, 1)
	require.Equal(t, "insufficient data", set.Diagnostics[0].Reason)
}

func TestCalculateMacroInjection(t *testing.T) {
	calc := NewCalculator(zap.NewNop().Sugar())
	macro := map[string]float64{"macro_risk_on": 62.5, "macro_stress": 140, "macro_usd_strength": -3}

	set := calc.Calculate("TEST", risingBars(120, 100, 120), macro)

	require.Equal(t, 62.5, set.Macro["macro_risk_on"])
	require.Equal(t, 100.0, set.Macro["macro_stress"])
	require.Equal(t, 0.0, set.Macro["macro_usd_strength"])
}

func TestCalculateBatch(t *testing.T) {
	calc := NewCalculator(zap.NewNop().Sugar())

	results := calc.CalculateBatch(map[string]domain.OHLCV{
		"AAA": risingBars(300, 100, 160),
		"BBB": risingBars(40, 100, 110),
	}, nil)

	require.Len(t, results, 2)
	require.False(t, results["AAA"].Empty())
	require.True(t, results["BBB"].Empty())
}

func TestRSI(t *testing.T) {
	t.Run("all gains substitutes 1 for zero loss", func(t *testing.T) {
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 100 + 10*float64(i)
		}
		// average gain 10, zero loss replaced by 1: rs=10
		require.InDelta(t, 100-100.0/11.0, rsi(closes, 14), 1e-9)
	})

	t.Run("all losses", func(t *testing.T) {
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 200 - float64(i)
		}
		require.Equal(t, 0.0, rsi(closes, 14))
	})

	t.Run("too short", func(t *testing.T) {
		require.Equal(t, 50.0, rsi([]float64{1, 2, 3}, 14))
	})
}

func TestNormalizers(t *testing.T) {
	t.Run("ma distance", func(t *testing.T) {
		require.Equal(t, 50.0, normalizeMADistance(100, 100))
		require.Equal(t, 100.0, normalizeMADistance(115, 100))
		require.Equal(t, 0.0, normalizeMADistance(85, 100))
		require.Equal(t, 50.0, normalizeMADistance(100, 0))
	})

	t.Run("macd histogram", func(t *testing.T) {
		require.Equal(t, 50.0, normalizeMACD(0, 100))
		require.Equal(t, 100.0, normalizeMACD(2.5, 100))
		require.Equal(t, 0.0, normalizeMACD(-2.5, 100))
		require.Equal(t, 50.0, normalizeMACD(1, 0))
	})

	t.Run("roc", func(t *testing.T) {
		closes := make([]float64, 20)
		for i := range closes {
			closes[i] = 100
		}
		require.Equal(t, 50.0, roc(closes, 10))
	})
}

func TestTrendDirectionBearish(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 200 - float64(i)*2
	}
	require.Equal(t, 0.0, trendDirection(closes, 20))
}

func TestVolatilityRegimes(t *testing.T) {
	t.Run("flat series has low vol", func(t *testing.T) {
		v, err := Volatility(flatBars(120, 100))
		require.NoError(t, err)
		require.Less(t, v.ATRPct, 2.0)
		require.GreaterOrEqual(t, v.ATRPercentile, 0.0)
	})

	t.Run("too few bars errors", func(t *testing.T) {
		_, err := Volatility(flatBars(10, 100))
		require.Error(t, err)
	})
}
