// Package advisor produces the portfolio risk/insight analysis. Strategies
// are tried in priority order: one hosted model provider when configured,
// then the deterministic rule engine, which cannot fail.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vaultguardian/guardian/internal/cache"
	"github.com/vaultguardian/guardian/internal/clients"
	"github.com/vaultguardian/guardian/internal/domain"
	"github.com/vaultguardian/guardian/internal/services/promptbuilder"
)

const analysisTTL = 5 * time.Minute

// strategy is one interchangeable analysis backend. attempt either returns
// a complete analysis or an error that sends the coordinator to the next
// entry; the final entry is guaranteed non-failing.
type strategy interface {
	name() string
	attempt(ctx context.Context, pctx promptbuilder.PortfolioContext) (*domain.Analysis, error)
}

// Service coordinates the strategy chain and memoizes results.
type Service struct {
	strategies []strategy
	hosted     clients.LLMClient
	hostedName string
	cache      cache.Cache
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures the service.
type Option func(*config)

type config struct {
	openAI    clients.LLMClient
	anthropic clients.LLMClient
}

// WithOpenAI wires the primary hosted-model provider.
func WithOpenAI(client clients.LLMClient) Option {
	return func(c *config) {
		c.openAI = client
	}
}

// WithAnthropic wires the secondary hosted-model provider, used only when
// the primary is unconfigured.
func WithAnthropic(client clients.LLMClient) Option {
	return func(c *config) {
		c.anthropic = client
	}
}

// NewService builds the strategy chain. At most one hosted strategy is
// active; any of its failures falls straight through to the rule engine.
func NewService(c cache.Cache, logger *zap.Logger, opts ...Option) *Service {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	svc := &Service{
		cache:  c,
		logger: logger,
		now:    time.Now,
	}

	switch {
	case cfg.openAI != nil:
		svc.hosted, svc.hostedName = cfg.openAI, "openai"
		svc.strategies = append(svc.strategies, newHostedStrategy("openai", cfg.openAI, openAIConfidence, logger))
	case cfg.anthropic != nil:
		svc.hosted, svc.hostedName = cfg.anthropic, "anthropic"
		svc.strategies = append(svc.strategies, newHostedStrategy("anthropic", cfg.anthropic, anthropicConfidence, logger))
	}
	svc.strategies = append(svc.strategies, newRuleStrategy())

	return svc
}

// Available reports whether a hosted model provider is configured.
func (s *Service) Available() bool {
	return len(s.strategies) > 1
}

// Providers lists the active strategy names in priority order.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.strategies))
	for _, st := range s.strategies {
		names = append(names, st.name())
	}
	return names
}

// Analyze runs the strategy chain over the portfolio context. Identical
// inputs within the cache window return the prior output verbatim. The
// cache key buckets price to the nearest $1000 so ordinary tick noise does
// not defeat memoization.
func (s *Service) Analyze(ctx context.Context, pctx promptbuilder.PortfolioContext) *domain.Analysis {
	key := s.cacheKey(pctx)

	if cached, ok := s.cache.Get(key); ok {
		if analysis, ok := cached.(*domain.Analysis); ok {
			return analysis
		}
	}

	var analysis *domain.Analysis
	for _, st := range s.strategies {
		result, err := st.attempt(ctx, pctx)
		if err != nil {
			s.logger.Warn("analysis strategy failed, falling through",
				zap.String("strategy", st.name()), zap.Error(err))
			continue
		}
		analysis = result
		break
	}

	analysis.ID = uuid.New().String()
	analysis.Timestamp = s.now()

	s.cache.Set(key, analysis, analysisTTL)
	s.logger.Info("portfolio analysis complete",
		zap.String("provider", analysis.Provider),
		zap.Int("risk_score", analysis.RiskScore),
		zap.String("outlook", string(analysis.MarketOutlook)))

	return analysis
}

const (
	insightSystemPrompt = "You are a helpful DeFi assistant. Provide clear, concise answers about the user's portfolio."

	insightUnconfigured = "AI assistant not configured. Please add your API key to enable smart insights."
	insightUnavailable  = "Unable to generate insight at this time."
)

// Insight is a free-form answer to a question about the portfolio.
type Insight struct {
	Answer    string    `json:"answer"`
	Provider  string    `json:"provider"`
	Timestamp time.Time `json:"timestamp"`
}

// Insight sends the question plus the serialized portfolio context to the
// hosted provider. Without a configured provider, or when the provider
// fails, a canned answer comes back instead of an error.
func (s *Service) Insight(ctx context.Context, query string, pctx promptbuilder.PortfolioContext) *Insight {
	insight := &Insight{Timestamp: s.now()}

	if s.hosted == nil {
		insight.Answer = insightUnconfigured
		insight.Provider = "fallback"
		return insight
	}

	contextJSON, err := json.Marshal(pctx)
	if err != nil {
		contextJSON = []byte("{}")
	}
	userPrompt := fmt.Sprintf("Context: %s\n\nQuestion: %s", contextJSON, query)

	answer, err := s.hosted.Chat(ctx, insightSystemPrompt, userPrompt)
	if err != nil {
		s.logger.Warn("insight generation failed",
			zap.String("provider", s.hostedName), zap.Error(err))
		insight.Answer = insightUnavailable
		insight.Provider = "error"
		return insight
	}

	insight.Answer = answer
	insight.Provider = s.hostedName
	return insight
}

func (s *Service) cacheKey(pctx promptbuilder.PortfolioContext) string {
	priceBucket := pctx.Quote.USD.Div(decimal1000).Floor().String()
	return cache.Key("advisor",
		string(pctx.RiskProfile),
		fmt.Sprintf("%d", pctx.BalanceSats),
		priceBucket)
}
