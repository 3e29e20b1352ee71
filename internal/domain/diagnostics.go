package domain

// Diagnostic records a component that degraded to its neutral default
// during a cycle. The degrade-to-neutral policy means failures never show
// up in scores, so this is the channel tests and operators inspect instead
// of log lines.
type Diagnostic struct {
	Component string `json:"component"`
	Symbol    string `json:"symbol,omitempty"`
	Reason    string `json:"reason"`
}
