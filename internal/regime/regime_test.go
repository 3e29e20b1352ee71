package regime

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func calmFlat() map[string]float64 {
	return map[string]float64{
		"vix":           13,
		"yield_curve":   0.5,
		"credit_spread": 300,
	}
}

func TestDetectRiskOn(t *testing.T) {
	d := NewDetector(zap.NewNop().Sugar())

	state := d.Detect(NewState(), calmFlat())

	require.Equal(t, RiskOn, state.Regime)
	require.Equal(t, 100.0, state.Confidence) // 50+20+15+15
	require.Equal(t, Uncertain, state.Previous)
	require.Equal(t, 1, state.DurationDays)
}

func TestDetectStressBeatsRiskOff(t *testing.T) {
	// extreme VIX plus distressed credit saturates risk-off at 100, but
	// the combined stress reading outranks it
	d := NewDetector(zap.NewNop().Sugar())
	flat := map[string]float64{
		"vix":           35,
		"credit_spread": 550,
		"yield_curve":   -0.2,
	}

	state := d.Detect(NewState(), flat)

	require.Equal(t, Stress, state.Regime)
	require.Equal(t, 100.0, state.Confidence)
}

func TestDetectDuration(t *testing.T) {
	d := NewDetector(zap.NewNop().Sugar())
	state := NewState()

	for i := 1; i <= 5; i++ {
		state = d.Detect(state, calmFlat())
		require.Equal(t, RiskOn, state.Regime)
		require.Equal(t, i, state.DurationDays)
	}

	// regime flip resets duration and records the prior label
	state = d.Detect(state, map[string]float64{
		"vix":           28,
		"yield_curve":   -0.1,
		"credit_spread": 520,
	})
	require.Equal(t, RiskOff, state.Regime)
	require.Equal(t, 1, state.DurationDays)
	require.Equal(t, RiskOn, state.Previous)
}

func TestDetectWeakSignal(t *testing.T) {
	d := NewDetector(zap.NewNop().Sugar())

	state := d.Detect(NewState(), map[string]float64{
		"vix":           20.0,
		"yield_curve":   0.0,
		"credit_spread": 400,
	})
	require.Equal(t, Uncertain, state.Regime)

	established := State{Regime: RiskOn, Confidence: 80, DurationDays: 3}
	state = d.Detect(established, map[string]float64{
		"vix":           20.0,
		"yield_curve":   0.0,
		"credit_spread": 400,
	})
	require.Equal(t, Transition, state.Regime)
	require.Equal(t, RiskOn, state.Previous)
	require.Equal(t, 1, state.DurationDays)
}

func TestDetectEmptyInputKeepsState(t *testing.T) {
	d := NewDetector(zap.NewNop().Sugar())
	prev := State{Regime: RiskOff, Confidence: 85, DurationDays: 4}

	require.Equal(t, prev, d.Detect(prev, nil))
}

func TestCreditSpreadNormalization(t *testing.T) {
	// raw percent value converts to bps; bps passes through
	spread, ok := creditSpreadBps(map[string]float64{"HY_SPREAD": 5.5})
	require.True(t, ok)
	require.Equal(t, 550.0, spread)

	spread, ok = creditSpreadBps(map[string]float64{"HY_SPREAD": 550})
	require.True(t, ok)
	require.Equal(t, 550.0, spread)

	_, ok = creditSpreadBps(map[string]float64{})
	require.False(t, ok)
}
