package domain

// Confidence labels for an asset score.
const (
	ConfidenceLow           = "LOW"
	ConfidenceModerate      = "MODERATE"
	ConfidenceHigh          = "HIGH"
	ConfidenceInstitutional = "INSTITUTIONAL"
)

// AssetScore is the scored result for one symbol: a 0-100 weighted total,
// a -1..+1 direction estimate, and the component breakdown that produced it.
type AssetScore struct {
	Symbol     string             `json:"symbol"`
	Total      float64            `json:"total"`
	Direction  float64            `json:"direction"`
	Confidence string             `json:"confidence"`
	Components map[string]float64 `json:"components"`
	TopDrivers []string           `json:"top_drivers"`
}
