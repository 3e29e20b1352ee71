// Package thesis produces the market-thesis line for the cycle output. A
// static (regime, scenario) table is the default; when an API key is
// configured the table entry is rewritten by ChatGPT.
package thesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/ayush6624/go-chatgpt"
	"go.uber.org/zap"
)

type pair struct {
	regime   string
	scenario string
}

var staticTheses = map[pair]string{
	{"RISK_ON", "GOLDILOCKS"}:   "Goldilocks environment: Low inflation with solid growth. Risk assets favored. Overweight equities, reduce bonds.",
	{"RISK_ON", "DISINFLATION"}: "Disinflation supporting risk assets. Fed likely done hiking. Favor growth over value.",
	{"RISK_OFF", "STAGFLATION"}: "Stagflation risk rising. Defensive positioning recommended. Favor commodities, short growth.",
	{"STRESS", "RISK_OFF"}:      "Market stress detected. Reduce exposure. Cash and high-quality bonds recommended.",
}

const prompt = `
You are a macro strategist writing the one-paragraph thesis line for a daily multi-asset signal report. Rewrite the draft thesis below in two to three sentences, keeping the same stance and the concrete positioning advice. Do not add disclaimers or caveats.

Regime: %s
Scenario: %s
Draft: %s
`

type Provider struct {
	log *zap.SugaredLogger
	gpt *chatgpt.Client
}

// NewProvider builds the thesis provider. An empty API key, or a client
// construction failure, leaves the static table in charge.
func NewProvider(log *zap.SugaredLogger, apiKey string) *Provider {
	p := &Provider{log: log}
	if apiKey == "" {
		return p
	}

	client, err := chatgpt.NewClient(apiKey)
	if err != nil {
		log.Warnf("failed to construct gpt client, using static theses: %v", err)
		return p
	}
	p.gpt = client
	return p
}

// For returns the thesis for the regime/scenario combination.
func (p *Provider) For(ctx context.Context, regime, scenario string) string {
	base, ok := staticTheses[pair{regime, scenario}]
	if !ok {
		base = fmt.Sprintf("Regime: %s. Scenario: %s. Exercise appropriate caution.", regime, scenario)
	}

	if p.gpt == nil {
		return base
	}

	resp, err := p.gpt.SimpleSend(ctx, fmt.Sprintf(prompt, regime, scenario, base))
	if err != nil {
		p.log.Warnf("gpt thesis failed, using static: %v", err)
		return base
	}
	if len(resp.Choices) == 0 {
		return base
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return base
	}
	return text
}
