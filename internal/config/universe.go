package config

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// Asset is one scannable instrument.
type Asset struct {
	Symbol string `csv:"symbol"`
	Class  string `csv:"class"` // stocks, etfs, indices, crypto, ...
}

// DefaultUniverse is the built-in scan universe. The engine caps how many
// of each class it actually fetches per cycle.
var DefaultUniverse = []Asset{
	// Large-cap stocks
	{Symbol: "AAPL", Class: "stocks"}, {Symbol: "MSFT", Class: "stocks"},
	{Symbol: "GOOGL", Class: "stocks"}, {Symbol: "AMZN", Class: "stocks"},
	{Symbol: "META", Class: "stocks"}, {Symbol: "NVDA", Class: "stocks"},
	{Symbol: "TSLA", Class: "stocks"}, {Symbol: "AMD", Class: "stocks"},
	{Symbol: "JPM", Class: "stocks"}, {Symbol: "BAC", Class: "stocks"},
	{Symbol: "GS", Class: "stocks"}, {Symbol: "JNJ", Class: "stocks"},
	{Symbol: "UNH", Class: "stocks"}, {Symbol: "LLY", Class: "stocks"},
	{Symbol: "PG", Class: "stocks"}, {Symbol: "KO", Class: "stocks"},
	{Symbol: "WMT", Class: "stocks"}, {Symbol: "HD", Class: "stocks"},
	{Symbol: "XOM", Class: "stocks"}, {Symbol: "CVX", Class: "stocks"},
	{Symbol: "CAT", Class: "stocks"}, {Symbol: "BA", Class: "stocks"},
	{Symbol: "NFLX", Class: "stocks"}, {Symbol: "DIS", Class: "stocks"},

	// ETFs
	{Symbol: "SPY", Class: "etfs"}, {Symbol: "QQQ", Class: "etfs"},
	{Symbol: "IWM", Class: "etfs"}, {Symbol: "DIA", Class: "etfs"},
	{Symbol: "TLT", Class: "etfs"}, {Symbol: "HYG", Class: "etfs"},
	{Symbol: "GLD", Class: "etfs"}, {Symbol: "SLV", Class: "etfs"},
	{Symbol: "USO", Class: "etfs"}, {Symbol: "XLF", Class: "etfs"},
	{Symbol: "XLK", Class: "etfs"}, {Symbol: "XLE", Class: "etfs"},

	// Indices
	{Symbol: "^GSPC", Class: "indices"}, {Symbol: "^IXIC", Class: "indices"},
	{Symbol: "^DJI", Class: "indices"}, {Symbol: "^RUT", Class: "indices"},
	{Symbol: "^VIX", Class: "indices"},

	// Crypto
	{Symbol: "BTCUSDT", Class: "crypto"}, {Symbol: "ETHUSDT", Class: "crypto"},
	{Symbol: "BNBUSDT", Class: "crypto"}, {Symbol: "SOLUSDT", Class: "crypto"},
	{Symbol: "XRPUSDT", Class: "crypto"},
}

// LoadUniverseCSV reads a custom universe from a CSV file with
// symbol,class columns.
func LoadUniverseCSV(path string) ([]Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open universe file: %w", err)
	}
	defer f.Close()

	assets := []Asset{}
	if err := gocsv.UnmarshalFile(f, &assets); err != nil {
		return nil, fmt.Errorf("failed to parse universe file: %w", err)
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("universe file %s contains no assets", path)
	}
	return assets, nil
}

// Symbols filters the universe down to one class.
func Symbols(universe []Asset, class string) []string {
	out := []string{}
	for _, a := range universe {
		if a.Class == class {
			out = append(out, a.Symbol)
		}
	}
	return out
}
