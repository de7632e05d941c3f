// Package promptbuilder formats portfolio state, market data and protocol
// metrics into compact prompts for the advisor LLM.
package promptbuilder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vaultguardian/guardian/internal/domain"
)

const satoshisPerBTC = 100_000_000

// PortfolioContext is the full advisor input serialized into the prompt.
type PortfolioContext struct {
	BalanceSats int64
	RiskProfile domain.RiskProfile
	Quote       domain.PriceQuote
	Protocols   map[string]domain.ProtocolMetrics
	Allocation  map[string]float64
}

// BalanceBTC converts the satoshi balance to BTC.
func (c PortfolioContext) BalanceBTC() decimal.Decimal {
	return decimal.New(c.BalanceSats, 0).Div(decimal.NewFromInt(satoshisPerBTC))
}

// PromptBuilder renders PortfolioContext into the user prompt.
type PromptBuilder struct{}

// NewPromptBuilder creates a prompt builder.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildUserPrompt renders the analysis request. Protocol entries are sorted
// by key so identical context produces an identical prompt.
func (b *PromptBuilder) BuildUserPrompt(ctx PortfolioContext) string {
	var sb strings.Builder

	balanceBTC := ctx.BalanceBTC()
	usdValue := balanceBTC.Mul(ctx.Quote.USD)

	sb.WriteString("Analyze this DeFi Bitcoin vault position.\n\n")
	sb.WriteString("Portfolio:\n")
	fmt.Fprintf(&sb, "- Balance: %s BTC (about $%s)\n", balanceBTC.StringFixed(8), usdValue.StringFixed(2))
	fmt.Fprintf(&sb, "- Risk profile: %s\n", ctx.RiskProfile)
	fmt.Fprintf(&sb, "- BTC price: $%s\n", ctx.Quote.USD.StringFixed(2))
	fmt.Fprintf(&sb, "- 24h change: %+.2f%%\n", ctx.Quote.Change24h)
	if ctx.Quote.Fallback {
		sb.WriteString("- Note: price is a fallback value, oracle unreachable\n")
	}

	sb.WriteString("\nAvailable protocols:\n")
	for _, key := range sortedKeys(ctx.Protocols) {
		p := ctx.Protocols[key]
		fmt.Fprintf(&sb, "- %s (%s): %.2f%% APY, $%sM TVL, %s risk, health %s\n",
			p.Name, p.Category, p.APY,
			p.TVL.Div(decimal.NewFromInt(1_000_000)).StringFixed(1),
			p.RiskLevel, p.Health)
	}

	if len(ctx.Allocation) > 0 {
		fmt.Fprintf(&sb, "\nTarget allocation for %s profile:\n", ctx.RiskProfile)
		keys := make([]string, 0, len(ctx.Allocation))
		for key := range ctx.Allocation {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(&sb, "- %s: %.0f%%\n", key, ctx.Allocation[key]*100)
		}
	}

	sb.WriteString("\nProvide the analysis in the required JSON format.")

	return sb.String()
}

func sortedKeys(m map[string]domain.ProtocolMetrics) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
