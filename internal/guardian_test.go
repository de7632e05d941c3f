package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vaultguardian/guardian/config"
)

func TestNewGuardian_RuleOnlyWithoutKeys(t *testing.T) {
	guardian, err := NewGuardian(config.Default(), Keys{}, zap.NewNop())
	require.NoError(t, err)
	defer guardian.Close()

	require.False(t, guardian.Advisor.Available())
	require.Equal(t, []string{"rule-based"}, guardian.Advisor.Providers())
}

func TestNewGuardian_OpenAIRequiresURL(t *testing.T) {
	// a key without a configured endpoint must not enable the provider
	cfg := config.Default()
	cfg.LLMAPIURL = ""

	guardian, err := NewGuardian(cfg, Keys{OpenAI: "sk-test"}, zap.NewNop())
	require.NoError(t, err)
	defer guardian.Close()

	require.False(t, guardian.Advisor.Available())
}

func TestNewGuardian_HostedProviders(t *testing.T) {
	cfg := config.Default()
	cfg.LLMAPIURL = "http://localhost:9000/v1/chat/completions"

	guardian, err := NewGuardian(cfg, Keys{OpenAI: "sk-test", Anthropic: "sk-ant"}, zap.NewNop())
	require.NoError(t, err)
	defer guardian.Close()

	require.Equal(t, []string{"openai", "rule-based"}, guardian.Advisor.Providers())

	anthOnly, err := NewGuardian(cfg, Keys{Anthropic: "sk-ant"}, zap.NewNop())
	require.NoError(t, err)
	defer anthOnly.Close()

	require.Equal(t, []string{"anthropic", "rule-based"}, anthOnly.Advisor.Providers())
}
