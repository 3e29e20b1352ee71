package regime

import (
	"math"

	"go.uber.org/zap"
)

// Scenario labels.
const (
	Disinflation    = "DISINFLATION"
	Reacceleration  = "REACCELERATION"
	Goldilocks      = "GOLDILOCKS"
	Stagflation     = "STAGFLATION"
	ScenarioRiskOff = "RISK_OFF"
	Recovery        = "RECOVERY"

	maxSequence = 10
)

// scenarioOrder fixes the tie-break: earlier entries win equal scores.
var scenarioOrder = []string{Disinflation, Reacceleration, Goldilocks, Stagflation, ScenarioRiskOff}

// nextScenario is the static successor table.
var nextScenario = map[string]string{
	Disinflation:    Goldilocks,
	Reacceleration:  Disinflation,
	Goldilocks:      Goldilocks,
	Stagflation:     ScenarioRiskOff,
	ScenarioRiskOff: Recovery,
	Recovery:        Goldilocks,
}

// ScenarioState is the carried-forward scenario state. Sequence holds the
// last ten distinct labels in order of transition.
type ScenarioState struct {
	Scenario       string   `json:"scenario"`
	Probability    float64  `json:"probability"`
	Sequence       []string `json:"sequence"`
	NextPrediction string   `json:"next_prediction"`
}

func NewScenarioState() ScenarioState {
	return ScenarioState{
		Scenario:       Uncertain,
		Probability:    50,
		NextPrediction: Uncertain,
	}
}

type ScenarioEngine struct {
	log *zap.SugaredLogger
}

func NewScenarioEngine(log *zap.SugaredLogger) *ScenarioEngine {
	return &ScenarioEngine{log: log}
}

// Determine scores the five scenarios against the flat indicator map and
// the CPI trend label, appends to the transition sequence only when the
// winning label changes, and predicts the successor from the static
// table. An empty input leaves the state untouched.
func (e *ScenarioEngine) Determine(prev ScenarioState, flat map[string]float64, inflationTrend string) ScenarioState {
	if len(flat) == 0 {
		return prev
	}

	scores := map[string]float64{
		Disinflation:    scoreDisinflation(flat, inflationTrend),
		Reacceleration:  scoreReacceleration(flat),
		Goldilocks:      scoreGoldilocks(flat),
		Stagflation:     scoreStagflation(flat),
		ScenarioRiskOff: scoreScenarioRiskOff(flat),
	}

	best, bestScore := scenarioOrder[0], scores[scenarioOrder[0]]
	for _, s := range scenarioOrder[1:] {
		if scores[s] > bestScore {
			best, bestScore = s, scores[s]
		}
	}

	sequence := append([]string{}, prev.Sequence...)
	if len(sequence) == 0 || sequence[len(sequence)-1] != best {
		sequence = append(sequence, best)
		if len(sequence) > maxSequence {
			sequence = sequence[len(sequence)-maxSequence:]
		}
		if prev.Scenario != best {
			e.log.Infof("scenario change %s -> %s (probability %.0f)", prev.Scenario, best, bestScore)
		}
	}

	next, ok := nextScenario[best]
	if !ok {
		next = Uncertain
	}

	return ScenarioState{
		Scenario:       best,
		Probability:    bestScore,
		Sequence:       sequence,
		NextPrediction: next,
	}
}

func scoreDisinflation(flat map[string]float64, inflationTrend string) float64 {
	score := 50.0
	if inflationTrend == "FALLING" {
		score += 25
	}
	if lookup(flat, 2, "gdp_growth") > 1 {
		score += 15
	}
	return math.Min(100, score)
}

func scoreReacceleration(flat map[string]float64) float64 {
	score := 40.0
	gdp := lookup(flat, 2, "gdp_growth")
	if gdp > 2.5 {
		score += 30
	} else if gdp > 2 {
		score += 15
	}
	return math.Min(100, score)
}

func scoreGoldilocks(flat map[string]float64) float64 {
	score := 40.0
	inflation := lookup(flat, 3, "core_inflation")
	gdp := lookup(flat, 2, "gdp_growth")

	if inflation > 1.5 && inflation < 2.5 && gdp > 2 {
		score += 40
	} else if inflation < 3 && gdp > 1.5 {
		score += 20
	}
	return math.Min(100, score)
}

func scoreStagflation(flat map[string]float64) float64 {
	score := 30.0
	inflation := lookup(flat, 3, "core_inflation")
	gdp := lookup(flat, 2, "gdp_growth")

	if inflation > 4 && gdp < 1 {
		score += 50
	} else if inflation > 3 && gdp < 1.5 {
		score += 25
	}
	return math.Min(100, score)
}

func scoreScenarioRiskOff(flat map[string]float64) float64 {
	score := 30.0
	if spread, ok := creditSpreadBps(flat); ok && spread > 500 {
		score += 30
	}
	return math.Min(100, score)
}
