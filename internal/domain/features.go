package domain

import "time"

// TrendFeatures are the moving-average and trend-strength indicators,
// all normalized to 0-100 unless noted.
type TrendFeatures struct {
	PriceVsSMA20     float64 `json:"price_vs_sma20"`
	PriceVsSMA50     float64 `json:"price_vs_sma50"`
	PriceVsSMA200    float64 `json:"price_vs_sma200"`
	MAAlignment      float64 `json:"ma_alignment"`
	ADX              float64 `json:"adx"`
	TrendDirection   float64 `json:"trend_direction"`
	LRSlope          float64 `json:"lr_slope"`
	DonchianPosition float64 `json:"donchian_position"`
}

func NeutralTrend() *TrendFeatures {
	return &TrendFeatures{
		PriceVsSMA20: 50, PriceVsSMA50: 50, PriceVsSMA200: 50,
		MAAlignment: 50, ADX: 25, TrendDirection: 50,
		LRSlope: 50, DonchianPosition: 50,
	}
}

type MomentumFeatures struct {
	RSI14         float64 `json:"rsi_14"`
	RSI7          float64 `json:"rsi_7"`
	MACDHistogram float64 `json:"macd_histogram"`
	MACDSignal    float64 `json:"macd_signal"`
	StochK        float64 `json:"stoch_k"`
	StochD        float64 `json:"stoch_d"`
	ROC10         float64 `json:"roc_10"`
	ROC20         float64 `json:"roc_20"`
	WilliamsR     float64 `json:"williams_r"`
	CCI           float64 `json:"cci"`
	Composite     float64 `json:"momentum_composite"`
}

func NeutralMomentum() *MomentumFeatures {
	return &MomentumFeatures{
		RSI14: 50, RSI7: 50, MACDHistogram: 50, MACDSignal: 50,
		StochK: 50, StochD: 50, ROC10: 50, ROC20: 50,
		WilliamsR: 50, CCI: 50, Composite: 50,
	}
}

// VolatilityFeatures. ATR and the historical vols are raw values, the rest
// are 0-100.
type VolatilityFeatures struct {
	ATR             float64 `json:"atr"`
	ATRPct          float64 `json:"atr_pct"`
	ATRPercentile   float64 `json:"atr_percentile"`
	BBPosition      float64 `json:"bb_position"`
	BBWidth         float64 `json:"bb_width"`
	HistVol20       float64 `json:"hist_vol_20"`
	HistVol60       float64 `json:"hist_vol_60"`
	VolRatio        float64 `json:"vol_ratio"`
	KeltnerPosition float64 `json:"keltner_position"`
	ATRExpansion    float64 `json:"atr_expansion"`
}

func NeutralVolatility() *VolatilityFeatures {
	return &VolatilityFeatures{
		ATR: 0, ATRPct: 0, ATRPercentile: 50,
		BBPosition: 50, BBWidth: 50,
		HistVol20: 0, HistVol60: 0, VolRatio: 50,
		KeltnerPosition: 50, ATRExpansion: 50,
	}
}

// FractalFeatures combine the Hurst/R-S outputs with the smart-money
// structure scores.
type FractalFeatures struct {
	HurstExponent        float64 `json:"hurst_exponent"`
	HurstNormalized      float64 `json:"hurst_normalized"`
	MarketType           float64 `json:"market_type"`
	FractalDimension     float64 `json:"fractal_dimension"`
	FractalDimensionNorm float64 `json:"fractal_dimension_normalized"`
	RSConfidence         float64 `json:"rs_confidence"`

	OrderBlockBull float64 `json:"order_block_bull"`
	OrderBlockBear float64 `json:"order_block_bear"`
	OBProximity    float64 `json:"ob_proximity"`
	FVGUp          float64 `json:"fvg_up"`
	FVGDown        float64 `json:"fvg_down"`
	FVGBias        float64 `json:"fvg_bias"`
	BOSBullish     float64 `json:"bos_bullish"`
	BOSBearish     float64 `json:"bos_bearish"`
	StructureBias  float64 `json:"structure_bias"`
	LiquidityAbove float64 `json:"liquidity_above"`
	LiquidityBelow float64 `json:"liquidity_below"`
	SMCScore       float64 `json:"smc_score"`
}

func NeutralFractal() *FractalFeatures {
	return &FractalFeatures{
		HurstExponent: 0.5, HurstNormalized: 50, MarketType: 50,
		FractalDimension: 1.5, FractalDimensionNorm: 50, RSConfidence: 50,
		OrderBlockBull: 50, OrderBlockBear: 50, OBProximity: 50,
		FVGUp: 50, FVGDown: 50, FVGBias: 50,
		BOSBullish: 50, BOSBearish: 50, StructureBias: 50,
		LiquidityAbove: 50, LiquidityBelow: 50, SMCScore: 50,
	}
}

type FlowFeatures struct {
	VolumeRatio float64 `json:"volume_ratio"`
	VolumeTrend float64 `json:"volume_trend"`
	OBVTrend    float64 `json:"obv_trend"`
	MFI         float64 `json:"mfi"`
}

func NeutralFlow() *FlowFeatures {
	return &FlowFeatures{VolumeRatio: 1.0, VolumeTrend: 50, OBVTrend: 50, MFI: 50}
}

// FeatureSet is the per-symbol, per-cycle feature record. Nil groups mean
// the asset had insufficient data; a group that failed to compute is set to
// its neutral default and the failure recorded on Diagnostics.
type FeatureSet struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`

	Trend      *TrendFeatures      `json:"trend,omitempty"`
	Momentum   *MomentumFeatures   `json:"momentum,omitempty"`
	Volatility *VolatilityFeatures `json:"volatility,omitempty"`
	Fractal    *FractalFeatures    `json:"fractal,omitempty"`
	Flow       *FlowFeatures       `json:"flow,omitempty"`

	// Macro features are injected from the snapshot, already 0-100.
	Macro map[string]float64 `json:"macro,omitempty"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Empty reports whether no feature group was computed.
func (f FeatureSet) Empty() bool {
	return f.Trend == nil && f.Momentum == nil && f.Volatility == nil &&
		f.Fractal == nil && f.Flow == nil
}
