// Package output turns ranked asset scores into sized trade signals and
// renders the complete cycle result as JSON and operator-readable text.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"alphapulse/internal/domain"
)

const (
	maxSignals        = 20
	signalValidHours  = 24
	outputValidHours  = 12
	fallbackATRPct    = 0.02
	stressATRMultiple = 1.5
)

// Generator sizes and formats trade signals from asset scores.
type Generator struct {
	log          *zap.SugaredLogger
	capital      float64
	riskPerTrade float64

	// Now is swappable in tests.
	Now func() time.Time
}

func NewGenerator(log *zap.SugaredLogger, capital, riskPerTrade float64) *Generator {
	return &Generator{
		log:          log,
		capital:      capital,
		riskPerTrade: riskPerTrade,
		Now:          time.Now,
	}
}

// Generate filters scores by the minimum threshold, sizes the top twenty as
// trade signals and assembles the cycle output. Symbols without a positive
// price are skipped. Stops are ATR-based, falling back to a 2 percent
// assumption when the asset's ATR is unavailable, and widened under a
// stress regime.
func (g *Generator) Generate(
	scores map[string]domain.AssetScore,
	features map[string]domain.FeatureSet,
	prices map[string]float64,
	states domain.SnapshotStates,
	thesis string,
	minScore float64,
) domain.SystemOutput {
	now := g.Now()

	qualified := []domain.AssetScore{}
	for _, score := range scores {
		if score.Total >= minScore {
			qualified = append(qualified, score)
		}
	}
	sort.Slice(qualified, func(i, j int) bool {
		if qualified[i].Total != qualified[j].Total {
			return qualified[i].Total > qualified[j].Total
		}
		return qualified[i].Symbol < qualified[j].Symbol
	})
	if len(qualified) > maxSignals {
		qualified = qualified[:maxSignals]
	}

	signals := []domain.TradeSignal{}
	for _, score := range qualified {
		price, ok := prices[score.Symbol]
		if !ok || price <= 0 {
			g.log.Debugf("no price for %s, skipping signal", score.Symbol)
			continue
		}
		signals = append(signals, g.createSignal(score, features[score.Symbol], price, states.Regime))
	}

	oneLiners := make([]string, len(signals))
	for i, s := range signals {
		oneLiners[i] = oneLiner(s)
	}

	return domain.SystemOutput{
		RunID:               uuid.New(),
		Timestamp:           now,
		ValidUntil:          now.Add(outputValidHours * time.Hour),
		Regime:              states.Regime,
		RegimeConfidence:    states.RegimeConfidence,
		Scenario:            states.Scenario,
		ScenarioProbability: states.ScenarioProbability,
		Thesis:              thesis,
		Signals:             signals,
		ExecutiveSummary:    summarize(signals, states.Regime, states.Scenario),
		OneLiners:           oneLiners,
	}
}

func (g *Generator) createSignal(score domain.AssetScore, features domain.FeatureSet, price float64, regime string) domain.TradeSignal {
	direction := "LONG"
	if score.Direction <= 0 {
		direction = "SHORT"
	}

	atrPct := fallbackATRPct
	if features.Volatility != nil && features.Volatility.ATRPct > 0 {
		atrPct = features.Volatility.ATRPct / 100
	}
	if regime == "STRESS" {
		atrPct *= stressATRMultiple
	}

	entry := decimal.NewFromFloat(price)
	var stop, tp1, tp2 decimal.Decimal
	if direction == "LONG" {
		stop = entry.Mul(decimal.NewFromFloat(1 - atrPct*2)).Round(5)
		tp1 = entry.Mul(decimal.NewFromFloat(1 + atrPct*3)).Round(5)
		tp2 = entry.Mul(decimal.NewFromFloat(1 + atrPct*5)).Round(5)
	} else {
		stop = entry.Mul(decimal.NewFromFloat(1 + atrPct*2)).Round(5)
		tp1 = entry.Mul(decimal.NewFromFloat(1 - atrPct*3)).Round(5)
		tp2 = entry.Mul(decimal.NewFromFloat(1 - atrPct*5)).Round(5)
	}

	size := decimal.Zero
	if stopDistance := entry.Sub(stop).Abs(); stopDistance.IsPositive() {
		riskAmount := decimal.NewFromFloat(g.capital * g.riskPerTrade)
		size = riskAmount.Div(stopDistance).
			Mul(decimal.NewFromFloat(score.Total / 100)).
			Round(2)
	}

	return domain.TradeSignal{
		Symbol:       score.Symbol,
		Direction:    direction,
		Score:        score.Total,
		Confidence:   score.Confidence,
		EntryPrice:   entry,
		StopLoss:     stop,
		TakeProfit1:  tp1,
		TakeProfit2:  tp2,
		PositionSize: size,
		RiskR:        g.riskPerTrade,
		Rationale:    rationale(direction, score),
		KeyDrivers:   score.TopDrivers,
		ValidHours:   signalValidHours,
	}
}

// rationale names the two strongest components, keeping only those above 60.
func rationale(direction string, score domain.AssetScore) string {
	type comp struct {
		name  string
		value float64
	}
	comps := []comp{}
	for name, value := range score.Components {
		comps = append(comps, comp{name, value})
	}
	sort.Slice(comps, func(i, j int) bool {
		if comps[i].value != comps[j].value {
			return comps[i].value > comps[j].value
		}
		return comps[i].name < comps[j].name
	})
	if len(comps) > 2 {
		comps = comps[:2]
	}

	parts := []string{}
	for _, c := range comps {
		if c.value > 60 {
			parts = append(parts, titleWords(c.name)+" strong")
		}
	}
	return fmt.Sprintf("%s %s: %s", direction, score.Symbol, strings.Join(parts, ", "))
}

func titleWords(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func summarize(signals []domain.TradeSignal, regime, scenario string) string {
	if len(signals) == 0 {
		return fmt.Sprintf("No qualified opportunities. Regime: %s. Stand aside.", regime)
	}

	longs := 0
	total := 0.0
	for _, s := range signals {
		if s.Direction == "LONG" {
			longs++
		}
		total += s.Score
	}
	avg := total / float64(len(signals))

	return fmt.Sprintf("%d opportunities identified (%d long, %d short). Avg score: %.0f. Regime: %s. Scenario: %s.",
		len(signals), longs, len(signals)-longs, avg, regime, scenario)
}

func oneLiner(s domain.TradeSignal) string {
	return fmt.Sprintf("%s: %s %s->%s/%s | SL %s | %sL | S:%.0f | %dh",
		s.Symbol, s.Direction[:3],
		s.EntryPrice.StringFixed(4), s.TakeProfit1.StringFixed(4), s.TakeProfit2.StringFixed(4),
		s.StopLoss.StringFixed(4), s.PositionSize.StringFixed(2),
		s.Score, s.ValidHours)
}

// ToJSON renders the output for persistence and the API.
func ToJSON(out domain.SystemOutput) ([]byte, error) {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output: %w", err)
	}
	return data, nil
}

// ToText renders the output as the operator-facing terminal report.
func ToText(out domain.SystemOutput) string {
	rule := strings.Repeat("=", 70)
	thin := strings.Repeat("-", 70)

	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "ALPHAPULSE MULTI-ASSET SIGNAL ENGINE - OUTPUT")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Timestamp: %s\n", out.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "Valid until: %s\n", out.ValidUntil.Format(time.RFC3339))
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "REGIME: %s (%.0f%%)\n", out.Regime, out.RegimeConfidence)
	fmt.Fprintf(&b, "SCENARIO: %s (%.0f%%)\n", out.Scenario, out.ScenarioProbability)
	fmt.Fprintln(&b, thin)
	fmt.Fprintln(&b, "THESIS:")
	fmt.Fprintf(&b, "  %s\n", out.Thesis)
	fmt.Fprintln(&b, thin)
	fmt.Fprintln(&b, "OPPORTUNITIES:")

	for _, s := range out.Signals {
		fmt.Fprintf(&b, "  %s %s | Score: %.0f | %s\n", s.Symbol, s.Direction, s.Score, s.Confidence)
		fmt.Fprintf(&b, "    Entry: %s\n", s.EntryPrice.StringFixed(5))
		fmt.Fprintf(&b, "    SL: %s | TP1: %s | TP2: %s\n",
			s.StopLoss.StringFixed(5), s.TakeProfit1.StringFixed(5), s.TakeProfit2.StringFixed(5))
		fmt.Fprintf(&b, "    Size: %s | Rationale: %s\n", s.PositionSize.StringFixed(2), s.Rationale)
	}

	fmt.Fprintln(&b, thin)
	fmt.Fprintln(&b, "ONE-LINERS:")
	for _, ol := range out.OneLiners {
		fmt.Fprintf(&b, "  %s\n", ol)
	}
	fmt.Fprintln(&b, rule)

	return b.String()
}

// Save writes the JSON rendering to a timestamped file under dir and
// returns the path.
func Save(out domain.SystemOutput, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create outputs dir: %w", err)
	}

	data, err := ToJSON(out)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("output_%s.json", out.Timestamp.Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return path, nil
}
