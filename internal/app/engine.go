// Package app wires the fetchers, macro snapshot, classifiers, feature and
// score calculators and the output generator into the analysis cycle.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"alphapulse/internal/config"
	"alphapulse/internal/domain"
	"alphapulse/internal/features"
	"alphapulse/internal/macro"
	"alphapulse/internal/output"
	"alphapulse/internal/regime"
	"alphapulse/internal/scoring"
	"alphapulse/pkg/binance"
	"alphapulse/pkg/fred"
	"alphapulse/pkg/thesis"
	"alphapulse/pkg/yahoo"
)

// Per-cycle fetch caps by asset class.
const (
	maxStocks = 20
	maxETFs   = 10
	maxCrypto = 5
)

type Engine struct {
	log      *zap.SugaredLogger
	settings config.Settings
	universe []config.Asset

	stockFetcher  domain.PriceProvider
	cryptoFetcher domain.PriceProvider

	macroBuilder   *macro.Builder
	mesoAnalyzer   *macro.MesoAnalyzer
	featureCalc    *features.Calculator
	scoreCalc      *scoring.Calculator
	regimeDetector *regime.Detector
	scenarioEngine *regime.ScenarioEngine
	thesisProvider *thesis.Provider
	outputGen      *output.Generator

	// runMu serializes cycles: the ticker loop and the API's scan
	// endpoint can both trigger one.
	runMu sync.Mutex

	mu            sync.Mutex
	regimeState   regime.State
	scenarioState regime.ScenarioState
	lastOutput    *domain.SystemOutput
	lastSnapshot  *domain.MacroSnapshot
}

func NewEngine(log *zap.SugaredLogger, settings config.Settings) *Engine {
	stockFetcher := yahoo.NewClient(log)
	fredClient := fred.NewClient(settings.FredAPIKey)
	if !fredClient.Available() {
		log.Warn("FRED_API_KEY not set, macro snapshot will be price-sourced only")
	}

	return &Engine{
		log:            log,
		settings:       settings,
		universe:       config.DefaultUniverse,
		stockFetcher:   stockFetcher,
		cryptoFetcher:  binance.NewClient(log),
		macroBuilder:   macro.NewBuilder(log, fredClient, stockFetcher),
		mesoAnalyzer:   macro.NewMesoAnalyzer(),
		featureCalc:    features.NewCalculator(log),
		scoreCalc:      scoring.NewCalculator(log, regime.Uncertain),
		regimeDetector: regime.NewDetector(log),
		scenarioEngine: regime.NewScenarioEngine(log),
		thesisProvider: thesis.NewProvider(log, settings.ChatGPTAPIKey),
		outputGen:      output.NewGenerator(log, settings.InitialCapital, settings.MaxRiskPerTrade),
		regimeState:    regime.NewState(),
		scenarioState:  regime.NewScenarioState(),
	}
}

// SetUniverse replaces the default scan universe.
func (e *Engine) SetUniverse(universe []config.Asset) {
	e.universe = universe
}

// fetchMarketData pulls daily history for the capped universe. Failed
// symbols are logged and skipped; the crypto leg is skipped entirely when
// the exchange is unreachable.
func (e *Engine) fetchMarketData(ctx context.Context) map[string]domain.OHLCV {
	e.log.Info("fetching market data")
	data := map[string]domain.OHLCV{}

	symbols := append(
		capped(config.Symbols(e.universe, "stocks"), maxStocks),
		capped(config.Symbols(e.universe, "etfs"), maxETFs)...,
	)
	for _, symbol := range symbols {
		bars, err := e.stockFetcher.Fetch(ctx, symbol, "D", nil, nil)
		if err != nil {
			e.log.Debugf("skip %s: %v", symbol, err)
			continue
		}
		if len(bars) > 0 {
			data[symbol] = bars
		}
	}

	if e.cryptoFetcher.Available() {
		for _, symbol := range capped(config.Symbols(e.universe, "crypto"), maxCrypto) {
			bars, err := e.cryptoFetcher.Fetch(ctx, symbol, "D", nil, nil)
			if err != nil {
				e.log.Debugf("skip %s: %v", symbol, err)
				continue
			}
			if len(bars) > 0 {
				data[symbol] = bars
			}
		}
	}

	e.log.Infof("fetched data for %d assets", len(data))
	return data
}

// RunCycle executes one complete analysis pass and persists the output.
func (e *Engine) RunCycle(ctx context.Context) (domain.SystemOutput, error) {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	e.log.Infof("starting cycle at %s", time.Now().Format(time.RFC3339))

	marketData := e.fetchMarketData(ctx)
	if len(marketData) == 0 {
		return domain.SystemOutput{}, fmt.Errorf("no market data available")
	}

	snap := e.macroBuilder.Build(ctx)

	e.mu.Lock()
	e.regimeState = e.regimeDetector.Detect(e.regimeState, snap.Flat)
	e.scenarioState = e.scenarioEngine.Determine(e.scenarioState, snap.Flat, snap.InflationTrend)
	regimeState, scenarioState := e.regimeState, e.scenarioState
	e.mu.Unlock()

	states := domain.SnapshotStates{
		Regime:              regimeState.Regime,
		RegimeConfidence:    regimeState.Confidence,
		Scenario:            scenarioState.Scenario,
		ScenarioProbability: scenarioState.Probability,
	}
	snap.States = &states
	meso := e.mesoAnalyzer.Analyze(snap)
	snap.Meso = &meso

	e.log.Infof("regime: %s | scenario: %s", regimeState.Regime, scenarioState.Scenario)

	e.scoreCalc.SetRegime(regimeState.Regime)
	featureSets := e.featureCalc.CalculateBatch(marketData, snap.Features.AsMap())
	scores := e.scoreCalc.CalculateBatch(featureSets)

	prices := map[string]float64{}
	for symbol, bars := range marketData {
		prices[symbol] = bars.LastClose()
	}

	thesisText := e.thesisProvider.For(ctx, regimeState.Regime, scenarioState.Scenario)
	out := e.outputGen.Generate(scores, featureSets, prices, states, thesisText, e.settings.MinScore)

	if path, err := output.Save(out, e.settings.OutputsDir); err != nil {
		e.log.Warnf("failed to save output: %v", err)
	} else {
		e.log.Infof("output saved to %s", path)
	}

	e.mu.Lock()
	e.lastOutput = &out
	e.lastSnapshot = &snap
	e.mu.Unlock()

	e.log.Infof("cycle complete: %d opportunities found", len(out.Signals))
	return out, nil
}

// RunContinuous runs a cycle immediately and then on every interval tick
// until the context is cancelled. Cycle failures are logged, not fatal.
func (e *Engine) RunContinuous(ctx context.Context, interval time.Duration) error {
	e.log.Infof("starting continuous mode (%s intervals)", interval)

	if _, err := e.RunCycle(ctx); err != nil {
		e.log.Errorf("cycle failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := e.RunCycle(ctx); err != nil {
				e.log.Errorf("cycle failed: %v", err)
			}
		}
	}
}

// LatestOutput returns the most recent cycle output, if any cycle has run.
func (e *Engine) LatestOutput() (domain.SystemOutput, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastOutput == nil {
		return domain.SystemOutput{}, false
	}
	return *e.lastOutput, true
}

// LatestSnapshot returns the most recent macro snapshot, if any cycle has run.
func (e *Engine) LatestSnapshot() (domain.MacroSnapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastSnapshot == nil {
		return domain.MacroSnapshot{}, false
	}
	return *e.lastSnapshot, true
}

func capped(symbols []string, n int) []string {
	if len(symbols) > n {
		return symbols[:n]
	}
	return symbols
}
