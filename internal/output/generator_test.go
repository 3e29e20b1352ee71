package output

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alphapulse/internal/domain"
)

func testGenerator() *Generator {
	g := NewGenerator(zap.NewNop().Sugar(), 100_000, 0.02)
	g.Now = func() time.Time {
		return time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)
	}
	return g
}

func scoreFor(symbol string, total, direction float64) domain.AssetScore {
	return domain.AssetScore{
		Symbol:     symbol,
		Total:      total,
		Direction:  direction,
		Confidence: domain.ConfidenceHigh,
		Components: map[string]float64{
			"trend_quality": 88,
			"momentum":      72,
			"volatility":    40,
		},
		TopDrivers: []string{"trend_quality: 88/100", "momentum: 72/100", "volatility: 40/100"},
	}
}

func calmStates() domain.SnapshotStates {
	return domain.SnapshotStates{
		Regime:              "RISK_ON",
		RegimeConfidence:    85,
		Scenario:            "GOLDILOCKS",
		ScenarioProbability: 80,
	}
}

func TestGenerateFiltersAndRanks(t *testing.T) {
	g := testGenerator()
	scores := map[string]domain.AssetScore{
		"AAPL": scoreFor("AAPL", 72, 1),
		"MSFT": scoreFor("MSFT", 61, 1),
		"KO":   scoreFor("KO", 40, 1),  // below threshold
		"GS":   scoreFor("GS", 80, -1), // no price, skipped
	}
	prices := map[string]float64{"AAPL": 230, "MSFT": 500, "KO": 60}

	out := g.Generate(scores, nil, prices, calmStates(), "test thesis", 55)

	require.Len(t, out.Signals, 2)
	require.Equal(t, "AAPL", out.Signals[0].Symbol)
	require.Equal(t, "MSFT", out.Signals[1].Symbol)
	require.Len(t, out.OneLiners, 2)
	require.Equal(t, "test thesis", out.Thesis)
	require.Equal(t, out.Timestamp.Add(12*time.Hour), out.ValidUntil)
}

func TestSignalSizing(t *testing.T) {
	g := testGenerator()
	sig := g.createSignal(scoreFor("SPY", 80, 1), domain.FeatureSet{}, 100, "RISK_ON")

	// fallback 2% ATR: stop 4% away, targets at 6% and 10%
	require.True(t, sig.StopLoss.Equal(decimal.NewFromInt(96)), sig.StopLoss.String())
	require.True(t, sig.TakeProfit1.Equal(decimal.NewFromInt(106)), sig.TakeProfit1.String())
	require.True(t, sig.TakeProfit2.Equal(decimal.NewFromInt(110)), sig.TakeProfit2.String())

	// 2000 risk budget over a 4-point stop, scaled by score/100
	require.True(t, sig.PositionSize.Equal(decimal.NewFromInt(400)), sig.PositionSize.String())
	require.Equal(t, 0.02, sig.RiskR)
	require.Equal(t, 24, sig.ValidHours)
}

func TestSignalUsesAssetATR(t *testing.T) {
	g := testGenerator()
	vol := domain.NeutralVolatility()
	vol.ATRPct = 1.0

	sig := g.createSignal(scoreFor("SPY", 80, 1), domain.FeatureSet{Volatility: vol}, 100, "RISK_ON")

	require.True(t, sig.StopLoss.Equal(decimal.NewFromInt(98)), sig.StopLoss.String())
	require.True(t, sig.TakeProfit1.Equal(decimal.NewFromInt(103)), sig.TakeProfit1.String())
}

func TestStressRegimeWidensStops(t *testing.T) {
	g := testGenerator()
	sig := g.createSignal(scoreFor("SPY", 80, 1), domain.FeatureSet{}, 100, "STRESS")

	// 2% ATR scaled 1.5x under stress
	require.True(t, sig.StopLoss.Equal(decimal.NewFromInt(94)), sig.StopLoss.String())
	require.True(t, sig.TakeProfit1.Equal(decimal.NewFromInt(109)), sig.TakeProfit1.String())
	require.True(t, sig.TakeProfit2.Equal(decimal.NewFromInt(115)), sig.TakeProfit2.String())
}

func TestShortSignalLevels(t *testing.T) {
	g := testGenerator()
	sig := g.createSignal(scoreFor("GS", 70, -1), domain.FeatureSet{}, 100, "RISK_OFF")

	require.Equal(t, "SHORT", sig.Direction)
	require.True(t, sig.StopLoss.Equal(decimal.NewFromInt(104)), sig.StopLoss.String())
	require.True(t, sig.TakeProfit1.Equal(decimal.NewFromInt(94)), sig.TakeProfit1.String())
	require.True(t, sig.TakeProfit2.Equal(decimal.NewFromInt(90)), sig.TakeProfit2.String())
}

func TestRationaleNamesStrongComponents(t *testing.T) {
	sig := testGenerator().createSignal(scoreFor("AAPL", 72, 1), domain.FeatureSet{}, 230, "RISK_ON")

	require.Equal(t, "LONG AAPL: Trend Quality strong, Momentum strong", sig.Rationale)
	require.Equal(t, []string{"trend_quality: 88/100", "momentum: 72/100", "volatility: 40/100"}, sig.KeyDrivers)
}

func TestExecutiveSummary(t *testing.T) {
	t.Run("no signals", func(t *testing.T) {
		require.Equal(t,
			"No qualified opportunities. Regime: RISK_OFF. Stand aside.",
			summarize(nil, "RISK_OFF", "STAGFLATION"))
	})

	t.Run("mixed book", func(t *testing.T) {
		signals := []domain.TradeSignal{
			{Direction: "LONG", Score: 70},
			{Direction: "LONG", Score: 60},
			{Direction: "SHORT", Score: 65},
		}
		require.Equal(t,
			"3 opportunities identified (2 long, 1 short). Avg score: 65. Regime: RISK_ON. Scenario: GOLDILOCKS.",
			summarize(signals, "RISK_ON", "GOLDILOCKS"))
	})
}

func TestOneLinerFormat(t *testing.T) {
	g := testGenerator()
	sig := g.createSignal(scoreFor("SPY", 80, 1), domain.FeatureSet{}, 100, "RISK_ON")

	require.Equal(t,
		"SPY: LON 100.0000->106.0000/110.0000 | SL 96.0000 | 400.00L | S:80 | 24h",
		oneLiner(sig))
}

func TestGenerateCapsAtTwenty(t *testing.T) {
	g := testGenerator()
	scores := map[string]domain.AssetScore{}
	prices := map[string]float64{}
	for i := 0; i < 25; i++ {
		symbol := string(rune('A'+i)) + "X"
		scores[symbol] = scoreFor(symbol, 60+float64(i), 1)
		prices[symbol] = 100
	}

	out := g.Generate(scores, nil, prices, calmStates(), "", 55)
	require.Len(t, out.Signals, 20)
	// highest score first
	require.Equal(t, 84.0, out.Signals[0].Score)
}

func TestSaveRoundTrips(t *testing.T) {
	g := testGenerator()
	out := g.Generate(
		map[string]domain.AssetScore{"AAPL": scoreFor("AAPL", 72, 1)},
		nil,
		map[string]float64{"AAPL": 230},
		calmStates(), "thesis", 55,
	)

	dir := t.TempDir()
	path, err := Save(out, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded domain.SystemOutput
	require.NoError(t, json.Unmarshal(data, &loaded))
	require.Equal(t, out.RunID, loaded.RunID)
	require.Equal(t, "RISK_ON", loaded.Regime)
	require.Len(t, loaded.Signals, 1)
	require.True(t, loaded.Signals[0].EntryPrice.Equal(decimal.NewFromInt(230)))
}

func TestToTextContainsSections(t *testing.T) {
	g := testGenerator()
	out := g.Generate(
		map[string]domain.AssetScore{"AAPL": scoreFor("AAPL", 72, 1)},
		nil,
		map[string]float64{"AAPL": 230},
		calmStates(), "thesis text", 55,
	)

	text := ToText(out)
	require.Contains(t, text, "REGIME: RISK_ON (85%)")
	require.Contains(t, text, "SCENARIO: GOLDILOCKS (80%)")
	require.Contains(t, text, "thesis text")
	require.Contains(t, text, "AAPL LONG | Score: 72 | HIGH")
}
