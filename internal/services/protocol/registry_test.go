package protocol

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vaultguardian/guardian/internal/domain"
)

type fakeCache struct {
	entries map[string]any
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]any)}
}

func (c *fakeCache) Get(key string) (any, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *fakeCache) Set(key string, value any, _ time.Duration) {
	c.entries[key] = value
	c.sets++
}

func newTestRegistry() (*Registry, *fakeCache) {
	c := newFakeCache()
	return NewRegistry(c, zap.NewNop(), rand.New(rand.NewSource(7))), c
}

func TestRegistryKeys_StableOrder(t *testing.T) {
	registry, _ := newTestRegistry()
	require.Equal(t, []string{"stackswap", "velar", "zest"}, registry.Keys())
}

func TestDescriptor_Known(t *testing.T) {
	registry, _ := newTestRegistry()

	desc, err := registry.Descriptor("zest")
	require.NoError(t, err)
	require.Equal(t, "Zest Protocol", desc.Name)
	require.Equal(t, domain.CategoryLending, desc.Category)
	require.InDelta(t, 7.5, desc.BaseAPY, 1e-9)
	require.Equal(t, domain.RiskLow, desc.RiskLevel)
}

func TestDescriptor_Unknown(t *testing.T) {
	registry, _ := newTestRegistry()

	_, err := registry.Descriptor("compound")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownProtocol))
}

func TestAllProtocols_SynthesizedWithinBounds(t *testing.T) {
	registry, _ := newTestRegistry()

	metrics := registry.AllProtocols()
	require.Len(t, metrics, 3)

	bases := map[string]struct {
		apy  float64
		tvl  float64
		risk int
	}{
		"zest":      {7.5, 2_500_000, 25},
		"velar":     {9.2, 1_800_000, 45},
		"stackswap": {11.8, 1_200_000, 65},
	}

	for key, base := range bases {
		m, ok := metrics[key]
		require.True(t, ok, "missing %s", key)

		require.LessOrEqual(t, math.Abs(m.APY-base.apy), 1.0, "%s APY variance", key)
		require.InDelta(t, base.apy, m.BaseAPY, 1e-9)

		tvl, _ := m.TVL.Float64()
		require.LessOrEqual(t, math.Abs(tvl-base.tvl), 100_000.0, "%s TVL variance", key)

		require.GreaterOrEqual(t, m.RiskScore, base.risk-5, "%s risk floor", key)
		require.LessOrEqual(t, m.RiskScore, base.risk+5, "%s risk ceiling", key)

		require.GreaterOrEqual(t, m.Utilization, 60.0)
		require.LessOrEqual(t, m.Utilization, 90.0)
		require.GreaterOrEqual(t, m.Users, 100)
		require.LessOrEqual(t, m.Users, 500)
	}
}

func TestAllProtocols_HealthTracksAPYDeviation(t *testing.T) {
	registry, _ := newTestRegistry()

	for key, m := range registry.AllProtocols() {
		deviation := math.Abs(m.APY - m.BaseAPY)
		var expected domain.ProtocolHealth
		switch {
		case deviation < 1:
			expected = domain.HealthExcellent
		case deviation < 2:
			expected = domain.HealthGood
		case deviation < 3:
			expected = domain.HealthFair
		default:
			expected = domain.HealthWarning
		}
		require.Equal(t, expected, m.Health, "protocol %s", key)
	}
}

func TestAllProtocols_SecondCallServedFromCache(t *testing.T) {
	registry, c := newTestRegistry()

	first := registry.AllProtocols()
	second := registry.AllProtocols()

	require.Equal(t, 1, c.sets)
	// same synthesized batch, not a re-roll
	require.Equal(t, first, second)
}

func TestProtocolData_AgreesWithCachedBatch(t *testing.T) {
	registry, _ := newTestRegistry()

	batch := registry.AllProtocols()

	m, err := registry.ProtocolData("velar")
	require.NoError(t, err)
	require.Equal(t, batch["velar"], m)
}

func TestProtocolData_UnknownKey(t *testing.T) {
	registry, _ := newTestRegistry()

	_, err := registry.ProtocolData("aave")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownProtocol))
}
