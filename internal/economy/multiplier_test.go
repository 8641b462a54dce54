package economy

import (
	"testing"

	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitsWith(rule, mode string) config.XPMultiplierLimits {
	return config.XPMultiplierLimits{
		MaxTotalMultiplier: 3.5,
		MaxRoleMultiplier:  2.5,
		MaxForumMultiplier: 2.0,
		StackingRule:       rule,
		EnforcementMode:    mode,
	}
}

func TestStackingRules(t *testing.T) {
	cases := []struct {
		rule string
		want float64
	}{
		{config.StackingAdditive, 1.8},
		{config.StackingMultiplicative, 1.95},
		{config.StackingBestOf, 1.5},
		{config.StackingWeightedAverage, 1.42},
	}
	for _, tc := range cases {
		t.Run(tc.rule, func(t *testing.T) {
			s, err := NewMultiplierSanitizer(limitsWith(tc.rule, config.EnforcementStrict))
			require.NoError(t, err)
			result := s.Sanitize(1.5, 1.3, SanitizeContext{})
			assert.InDelta(t, tc.want, result.FinalMultiplier, 1e-9)
			assert.False(t, result.WasCapped)
			assert.Empty(t, result.Violations)
		})
	}
}

func TestSanitizeCapsBothSourcesAndCombined(t *testing.T) {
	s, err := NewMultiplierSanitizer(limitsWith(config.StackingAdditive, config.EnforcementStrict))
	require.NoError(t, err)

	// role 3.0 -> 2.5, forum 2.5 -> 2.0, combined (2.5-1)+(2.0-1)+1 = 3.5.
	result := s.Sanitize(3.0, 2.5, SanitizeContext{UserID: "u1", Action: "daily_post"})
	assert.InDelta(t, 3.5, result.FinalMultiplier, 1e-9)
	assert.True(t, result.WasCapped)
	assert.Len(t, result.Violations, 2)
}

func TestSanitizeTotalCap(t *testing.T) {
	s, err := NewMultiplierSanitizer(limitsWith(config.StackingMultiplicative, config.EnforcementStrict))
	require.NoError(t, err)

	// 2.5 * 2.0 = 5.0, clamped to the 3.5 total cap.
	result := s.Sanitize(2.5, 2.0, SanitizeContext{})
	assert.InDelta(t, 3.5, result.FinalMultiplier, 1e-9)
	assert.InDelta(t, 5.0, result.OriginalMultiplier, 1e-9)
	assert.True(t, result.WasCapped)
	assert.Len(t, result.Violations, 1)
}

func TestSanitizeBoundedUnderStrict(t *testing.T) {
	s, err := NewMultiplierSanitizer(limitsWith(config.StackingMultiplicative, config.EnforcementStrict))
	require.NoError(t, err)

	inputs := []float64{-5, 0, 0.5, 1, 1.7, 2.5, 3, 10, 1000}
	for _, role := range inputs {
		for _, forum := range inputs {
			result := s.Sanitize(role, forum, SanitizeContext{})
			require.GreaterOrEqual(t, result.FinalMultiplier, 1.0,
				"role=%v forum=%v", role, forum)
			require.LessOrEqual(t, result.FinalMultiplier, 3.5,
				"role=%v forum=%v", role, forum)
		}
	}
}

func TestSanitizeFloorsSubUnityInputs(t *testing.T) {
	s, err := NewMultiplierSanitizer(limitsWith(config.StackingAdditive, config.EnforcementStrict))
	require.NoError(t, err)

	result := s.Sanitize(0.2, -3, SanitizeContext{})
	assert.Equal(t, 1.0, result.FinalMultiplier)
	assert.False(t, result.WasCapped)
}

// Warn and log_only observe violations but hand back the uncapped value;
// only strict substitutes the cap. Leaving warn on in production silently
// disables every ceiling, which is why the constructor logs about it.
func TestSanitizeWarnModeReturnsUncapped(t *testing.T) {
	for _, mode := range []string{config.EnforcementWarn, config.EnforcementLogOnly} {
		t.Run(mode, func(t *testing.T) {
			s, err := NewMultiplierSanitizer(limitsWith(config.StackingMultiplicative, mode))
			require.NoError(t, err)

			result := s.Sanitize(2.5, 2.0, SanitizeContext{})
			assert.InDelta(t, 5.0, result.FinalMultiplier, 1e-9)
			assert.InDelta(t, 5.0, result.OriginalMultiplier, 1e-9)
			assert.True(t, result.WasCapped)
			assert.NotEmpty(t, result.Violations)
		})
	}
}

// Warn mode bypasses only the total cap; the per-source caps still shape the
// value it hands back.
func TestSanitizeWarnModeStillClampsSources(t *testing.T) {
	s, err := NewMultiplierSanitizer(limitsWith(config.StackingMultiplicative, config.EnforcementWarn))
	require.NoError(t, err)

	result := s.Sanitize(5.0, 1.0, SanitizeContext{})
	assert.InDelta(t, 2.5, result.FinalMultiplier, 1e-9)
	assert.True(t, result.WasCapped)
	assert.Len(t, result.Violations, 1)
}

func TestNewMultiplierSanitizerRejectsUnknownConfig(t *testing.T) {
	_, err := NewMultiplierSanitizer(limitsWith("geometric", config.EnforcementStrict))
	assert.Error(t, err)

	_, err = NewMultiplierSanitizer(limitsWith(config.StackingAdditive, "audit"))
	assert.Error(t, err)
}
