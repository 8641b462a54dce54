package economy

import (
	"fmt"

	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/config"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/pkg/logger"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/pkg/metrics"
)

// SanitizeContext carries diagnostic identifiers only; it never changes the
// arithmetic.
type SanitizeContext struct {
	UserID  string
	ForumID string
	Action  string
}

// SanitizeResult reports what the sanitizer did. OriginalMultiplier is the
// combined value before the total cap was applied.
type SanitizeResult struct {
	FinalMultiplier    float64
	OriginalMultiplier float64
	WasCapped          bool
	Violations         []string
}

type stackFunc func(role, forum float64) float64

func stackingFunc(rule string) (stackFunc, error) {
	switch rule {
	case config.StackingAdditive:
		return func(role, forum float64) float64 { return (role - 1) + (forum - 1) + 1 }, nil
	case config.StackingMultiplicative:
		return func(role, forum float64) float64 { return role * forum }, nil
	case config.StackingBestOf:
		return func(role, forum float64) float64 {
			if role >= forum {
				return role
			}
			return forum
		}, nil
	case config.StackingWeightedAverage:
		return func(role, forum float64) float64 { return role*0.6 + forum*0.4 }, nil
	default:
		return nil, fmt.Errorf("unknown stacking rule %q", rule)
	}
}

// enforcementPolicy decides what a detected violation does to the returned
// multiplier. Only strict substitutes the capped value; warn and log_only
// observe and hand back the uncapped one. That asymmetry is the audit-before-
// enforce rollout switch: do not collapse the modes.
//
// "Uncapped" means the stacked combination of the per-source-clamped inputs:
// warn and log_only bypass the total cap only, never the role or forum caps.
type enforcementPolicy interface {
	mode() string
	onViolation(ctx SanitizeContext, violations []string, capped, uncapped float64) float64
}

type strictPolicy struct{}

func (strictPolicy) mode() string { return config.EnforcementStrict }

func (strictPolicy) onViolation(ctx SanitizeContext, violations []string, capped, uncapped float64) float64 {
	return capped
}

type warnPolicy struct{}

func (warnPolicy) mode() string { return config.EnforcementWarn }

func (warnPolicy) onViolation(ctx SanitizeContext, violations []string, capped, uncapped float64) float64 {
	logger.Warn("xp multiplier exceeded caps",
		"user_id", ctx.UserID, "forum_id", ctx.ForumID, "action", ctx.Action,
		"violations", violations, "uncapped", uncapped, "capped", capped)
	return uncapped
}

type logOnlyPolicy struct{}

func (logOnlyPolicy) mode() string { return config.EnforcementLogOnly }

func (logOnlyPolicy) onViolation(ctx SanitizeContext, violations []string, capped, uncapped float64) float64 {
	logger.Info("xp multiplier exceeded caps",
		"user_id", ctx.UserID, "forum_id", ctx.ForumID, "action", ctx.Action,
		"violations", violations, "uncapped", uncapped, "capped", capped)
	return uncapped
}

func enforcementFor(mode string) (enforcementPolicy, error) {
	switch mode {
	case config.EnforcementStrict:
		return strictPolicy{}, nil
	case config.EnforcementWarn:
		return warnPolicy{}, nil
	case config.EnforcementLogOnly:
		return logOnlyPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown enforcement mode %q", mode)
	}
}

// MultiplierSanitizer bounds role and forum XP bonuses under the configured
// stacking rule. The rule and enforcement mode are resolved once at
// construction, not re-dispatched per call.
type MultiplierSanitizer struct {
	limits config.XPMultiplierLimits
	stack  stackFunc
	policy enforcementPolicy
}

func NewMultiplierSanitizer(limits config.XPMultiplierLimits) (*MultiplierSanitizer, error) {
	stack, err := stackingFunc(limits.StackingRule)
	if err != nil {
		return nil, err
	}
	policy, err := enforcementFor(limits.EnforcementMode)
	if err != nil {
		return nil, err
	}
	if limits.EnforcementMode != config.EnforcementStrict {
		// In warn/log_only the caps are observed, never applied: abusive
		// multipliers pass through untouched. Loud on purpose.
		logger.Warn("multiplier enforcement is not strict; caps are NOT applied",
			"mode", limits.EnforcementMode)
	}
	return &MultiplierSanitizer{limits: limits, stack: stack, policy: policy}, nil
}

// Sanitize floors, caps, and combines the two bonus sources. The returned
// FinalMultiplier is always the value to apply downstream, whatever the
// enforcement mode decided.
func (s *MultiplierSanitizer) Sanitize(role, forum float64, ctx SanitizeContext) SanitizeResult {
	var violations []string

	if role < 1.0 {
		role = 1.0
	}
	if forum < 1.0 {
		forum = 1.0
	}

	if role > s.limits.MaxRoleMultiplier {
		violations = append(violations, fmt.Sprintf("role multiplier %.2f exceeds cap %.2f", role, s.limits.MaxRoleMultiplier))
		metrics.MultiplierViolations.WithLabelValues("role_cap", s.policy.mode()).Inc()
		role = s.limits.MaxRoleMultiplier
	}
	if forum > s.limits.MaxForumMultiplier {
		violations = append(violations, fmt.Sprintf("forum multiplier %.2f exceeds cap %.2f", forum, s.limits.MaxForumMultiplier))
		metrics.MultiplierViolations.WithLabelValues("forum_cap", s.policy.mode()).Inc()
		forum = s.limits.MaxForumMultiplier
	}

	combined := s.stack(role, forum)
	capped := combined
	if capped > s.limits.MaxTotalMultiplier {
		violations = append(violations, fmt.Sprintf("combined multiplier %.2f exceeds total cap %.2f", capped, s.limits.MaxTotalMultiplier))
		metrics.MultiplierViolations.WithLabelValues("total_cap", s.policy.mode()).Inc()
		capped = s.limits.MaxTotalMultiplier
	}
	if capped < 1.0 {
		capped = 1.0
	}

	final := capped
	if len(violations) > 0 {
		final = s.policy.onViolation(ctx, violations, capped, combined)
	}

	return SanitizeResult{
		FinalMultiplier:    final,
		OriginalMultiplier: combined,
		WasCapped:          len(violations) > 0,
		Violations:         violations,
	}
}
