package domain

import "strings"

// RiskProfile selects both an allocation split and a baseline risk score.
type RiskProfile string

const (
	ProfileConservative RiskProfile = "conservative"
	ProfileModerate     RiskProfile = "moderate"
	ProfileAggressive   RiskProfile = "aggressive"
)

// ParseRiskProfile parses a profile name case-insensitively.
// The second return value reports whether the input named a known profile.
func ParseRiskProfile(s string) (RiskProfile, bool) {
	switch RiskProfile(strings.ToLower(strings.TrimSpace(s))) {
	case ProfileConservative:
		return ProfileConservative, true
	case ProfileModerate:
		return ProfileModerate, true
	case ProfileAggressive:
		return ProfileAggressive, true
	default:
		return "", false
	}
}

// RiskProfileOrModerate resolves a caller-supplied profile name, silently
// defaulting to moderate when the name is unknown. Unknown profiles are a
// product decision, not an error: the upstream contract treats them as
// "use the balanced split".
func RiskProfileOrModerate(s string) RiskProfile {
	if p, ok := ParseRiskProfile(s); ok {
		return p
	}
	return ProfileModerate
}

func (p RiskProfile) String() string {
	return string(p)
}

// Valid reports whether the profile is one of the three known values.
func (p RiskProfile) Valid() bool {
	_, ok := ParseRiskProfile(string(p))
	return ok
}
