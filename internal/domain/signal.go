package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeSignal is one ranked, sized trade idea.
type TradeSignal struct {
	Symbol       string          `json:"symbol"`
	Direction    string          `json:"direction"` // LONG or SHORT
	Score        float64         `json:"score"`
	Confidence   string          `json:"confidence"`
	EntryPrice   decimal.Decimal `json:"entry_price"`
	StopLoss     decimal.Decimal `json:"stop_loss"`
	TakeProfit1  decimal.Decimal `json:"take_profit_1"`
	TakeProfit2  decimal.Decimal `json:"take_profit_2"`
	PositionSize decimal.Decimal `json:"position_size"`
	RiskR        float64         `json:"risk_r"`
	Rationale    string          `json:"rationale"`
	KeyDrivers   []string        `json:"key_drivers"`
	ValidHours   int             `json:"valid_hours"`
}

// SystemOutput is the complete result of one analysis cycle.
type SystemOutput struct {
	RunID      uuid.UUID `json:"run_id"`
	Timestamp  time.Time `json:"timestamp"`
	ValidUntil time.Time `json:"valid_until"`

	Regime              string  `json:"regime"`
	RegimeConfidence    float64 `json:"regime_confidence"`
	Scenario            string  `json:"scenario"`
	ScenarioProbability float64 `json:"scenario_probability"`

	Thesis string `json:"thesis"`

	Signals []TradeSignal `json:"signals"`

	ExecutiveSummary string   `json:"executive_summary"`
	OneLiners        []string `json:"one_liners"`
}
