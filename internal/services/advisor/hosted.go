package advisor

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vaultguardian/guardian/internal/clients"
	"github.com/vaultguardian/guardian/internal/domain"
	"github.com/vaultguardian/guardian/internal/services/promptbuilder"
)

const (
	openAIConfidence    = 0.92
	anthropicConfidence = 0.90
)

// hostedStrategy delegates the analysis to a hosted language model and
// parses its JSON-shaped completion. The provider is untrusted: any
// transport, auth or parse failure is an error the coordinator recovers
// from, never a fatal condition.
type hostedStrategy struct {
	provider   string
	client     clients.LLMClient
	confidence float64
	builder    *promptbuilder.PromptBuilder
	logger     *zap.Logger
}

func newHostedStrategy(provider string, client clients.LLMClient, confidence float64, logger *zap.Logger) *hostedStrategy {
	return &hostedStrategy{
		provider:   provider,
		client:     client,
		confidence: confidence,
		builder:    promptbuilder.NewPromptBuilder(),
		logger:     logger,
	}
}

func (s *hostedStrategy) name() string {
	return s.provider
}

func (s *hostedStrategy) attempt(ctx context.Context, pctx promptbuilder.PortfolioContext) (*domain.Analysis, error) {
	userPrompt := s.builder.BuildUserPrompt(pctx)

	raw, err := s.client.Chat(ctx, promptbuilder.SystemPrompt, userPrompt)
	if err != nil {
		return nil, errors.Wrapf(err, "%s completion failed", s.provider)
	}

	analysis, err := domain.ParseAnalysis(raw)
	if err != nil {
		s.logger.Warn("model returned malformed analysis",
			zap.String("provider", s.provider), zap.String("response", raw))
		return nil, errors.Wrapf(err, "%s returned malformed analysis", s.provider)
	}

	analysis.Provider = s.provider
	analysis.Model = s.client.Model()
	analysis.Confidence = s.confidence

	return analysis, nil
}
