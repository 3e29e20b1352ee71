// Package config loads runtime settings from the environment and holds the
// fixed asset universe the engine scans.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Settings struct {
	FredAPIKey string

	InitialCapital   float64
	MaxRiskPerTrade  float64
	MaxPortfolioRisk float64

	RunInterval time.Duration
	MinScore    float64

	OutputsDir string

	// ChatGPTAPIKey enables LLM-written theses when set; the static
	// thesis table is used otherwise.
	ChatGPTAPIKey string
}

// Load reads settings from the environment, with a best-effort .env load
// first. Missing values fall back to the documented defaults.
func Load() Settings {
	// .env is optional; ignore the error when it isn't present.
	_ = godotenv.Load()

	return Settings{
		FredAPIKey:       os.Getenv("FRED_API_KEY"),
		InitialCapital:   envFloat("INITIAL_CAPITAL", 100_000),
		MaxRiskPerTrade:  envFloat("MAX_RISK_PER_TRADE", 0.02),
		MaxPortfolioRisk: envFloat("MAX_PORTFOLIO_RISK", 0.10),
		RunInterval:      time.Duration(envInt("RUN_INTERVAL_MINUTES", 15)) * time.Minute,
		MinScore:         envFloat("MIN_SCORE", 55),
		OutputsDir:       envString("OUTPUTS_DIR", "outputs"),
		ChatGPTAPIKey:    os.Getenv("CHATGPT_API_KEY"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
