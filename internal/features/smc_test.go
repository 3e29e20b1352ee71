package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindOrderBlocks(t *testing.T) {
	n := 60
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i], lows[i], closes[i] = 100.5, 99.5, 100
	}

	t.Run("bullish breakout records candle low", func(t *testing.T) {
		h := append([]float64(nil), highs...)
		l := append([]float64(nil), lows...)
		c := append([]float64(nil), closes...)
		// candle at 40, breakout two bars later (>1% above its high)
		l[40] = 99.0
		c[42] = 102.0

		bull, bear := findOrderBlocks(h, l, c, 50)
		require.NotNil(t, bull)
		require.Equal(t, 99.0, *bull)
		require.Nil(t, bear)
	})

	t.Run("last match wins", func(t *testing.T) {
		h := append([]float64(nil), highs...)
		l := append([]float64(nil), lows...)
		c := append([]float64(nil), closes...)
		l[20], c[22] = 98.0, 102.0
		l[45], c[47] = 97.0, 102.0

		bull, _ := findOrderBlocks(h, l, c, 50)
		require.NotNil(t, bull)
		require.Equal(t, 97.0, *bull)
	})

	t.Run("recent three bars excluded", func(t *testing.T) {
		h := append([]float64(nil), highs...)
		l := append([]float64(nil), lows...)
		c := append([]float64(nil), closes...)
		// candle at n-3 would need close at n-1; the scan stops before it
		l[n-3], c[n-1] = 98.0, 102.0

		bull, _ := findOrderBlocks(h, l, c, 50)
		require.Nil(t, bull)
	})
}

func TestFindFVGs(t *testing.T) {
	n := 40
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i], lows[i] = 100.5, 99.5
	}
	// sustained gap up from bar 32: its low clears bar 30's high
	for i := 32; i < n; i++ {
		highs[i], lows[i] = 102.5, 101.5
	}

	up, down := findFVGs(highs, lows, 30)
	require.NotNil(t, up)
	require.Equal(t, (101.5+100.5)/2, *up)
	require.Nil(t, down)
}

func TestBreakOfStructure(t *testing.T) {
	t.Run("higher highs and higher lows", func(t *testing.T) {
		highs := []float64{10, 11, 12, 13, 14, 15, 20, 15, 14, 13, 12, 13, 14, 15, 22, 15, 14, 13, 12, 11}
		lows := []float64{5, 5, 5, 5, 5, 1, 5, 5, 5, 5, 5, 5, 5, 2, 5, 5, 5, 5, 5, 5}

		require.Equal(t, 100.0, breakOfStructure(highs, lows, true, 20))
		require.Equal(t, 25.0, breakOfStructure(highs, lows, false, 20))
	})

	t.Run("too few swings", func(t *testing.T) {
		highs := make([]float64, 20)
		lows := make([]float64, 20)
		for i := range highs {
			highs[i] = 100 + float64(i)
			lows[i] = 99 + float64(i)
		}
		// strictly monotonic arrays have no interior extrema
		require.Equal(t, 25.0, breakOfStructure(highs, lows, true, 20))
	})
}

func TestLiquidityScore(t *testing.T) {
	t.Run("cluster above scores by distance", func(t *testing.T) {
		arr := make([]float64, 50)
		for i := range arr {
			arr[i] = 100 + 5*math.Sin(float64(i)*0.9)
		}
		// three touches just above price
		arr[10], arr[20], arr[30] = 101.0, 101.0, 101.0

		score := liquidityScore(arr, 100, true, 50)
		require.Greater(t, score, 50.0)
		require.LessOrEqual(t, score, 100.0)
	})

	t.Run("no cluster on the requested side is neutral", func(t *testing.T) {
		arr := make([]float64, 50)
		for i := range arr {
			arr[i] = 100 + 5*math.Sin(float64(i)*0.9)
		}
		require.Equal(t, 50.0, liquidityScore(arr, 1000, true, 50))
	})
}

func TestNormalizeLevelDistance(t *testing.T) {
	require.Equal(t, 50.0, normalizeLevelDistance(100, nil))
	level := 100.0
	require.Equal(t, 50.0, normalizeLevelDistance(100, &level))
	above := 105.0
	require.Equal(t, 100.0, normalizeLevelDistance(100, &above))
	below := 95.0
	require.Equal(t, 0.0, normalizeLevelDistance(100, &below))
}

func TestHurstExponent(t *testing.T) {
	t.Run("insufficient data defaults to half", func(t *testing.T) {
		require.Equal(t, 0.5, hurstExponent(make([]float64, 39)))
	})

	t.Run("trending series is persistent", func(t *testing.T) {
		values := make([]float64, 300)
		for i := range values {
			values[i] = float64(i) + 0.5*math.Sin(float64(i))
		}
		h := hurstExponent(values)
		require.Greater(t, h, 0.7)
		require.LessOrEqual(t, h, 1.0)
	})

	t.Run("oscillating series is anti-persistent", func(t *testing.T) {
		values := make([]float64, 300)
		for i := range values {
			if i%2 == 0 {
				values[i] = 100
			} else {
				values[i] = 101
			}
		}
		require.Less(t, hurstExponent(values), 0.45)
	})
}
