package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRiskProfile(t *testing.T) {
	tests := []struct {
		input    string
		expected RiskProfile
		ok       bool
	}{
		{"conservative", ProfileConservative, true},
		{"moderate", ProfileModerate, true},
		{"aggressive", ProfileAggressive, true},
		{"AGGRESSIVE", ProfileAggressive, true},
		{"  Moderate ", ProfileModerate, true},
		{"degen", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		profile, ok := ParseRiskProfile(tc.input)
		require.Equal(t, tc.ok, ok, "input %q", tc.input)
		require.Equal(t, tc.expected, profile, "input %q", tc.input)
	}
}

func TestRiskProfileOrModerate_UnknownDefaultsToModerate(t *testing.T) {
	require.Equal(t, ProfileModerate, RiskProfileOrModerate("yolo"))
	require.Equal(t, ProfileModerate, RiskProfileOrModerate(""))
	require.Equal(t, ProfileAggressive, RiskProfileOrModerate("aggressive"))
}

func TestRiskProfileValid(t *testing.T) {
	require.True(t, ProfileConservative.Valid())
	require.True(t, RiskProfile("MODERATE").Valid())
	require.False(t, RiskProfile("unknown").Valid())
	require.False(t, RiskProfile("").Valid())
}
