package economy

import (
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/config"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/pkg/metrics"
	"github.com/shopspring/decimal"
)

// Action names recognized by the XP calculator. Anything else earns 0.
const (
	ActionFirstPost        = "first_post"
	ActionDailyPost        = "daily_post"
	ActionReactionReceived = "reaction_received"
	ActionFaucetClaim      = "faucet_claim"
	ActionReferralSignup   = "referral_signup"
	ActionReferralLevelup  = "referral_levelup"
	ActionTipped           = "tipped"
)

// CappedByDailyCeiling reports whether action's XP counts against the general
// daily ceiling. One-time and cooldown-gated actions are exempt.
func CappedByDailyCeiling(action string) bool {
	switch action {
	case ActionDailyPost, ActionReactionReceived:
		return true
	}
	return false
}

// ApplyDailyCap clamps incoming XP against what remains of a daily ceiling.
// Pure: the caller owns the earned-today counter.
func ApplyDailyCap(earnedToday, incoming, ceiling int) int {
	if incoming <= 0 {
		return 0
	}
	remaining := ceiling - earnedToday
	if remaining <= 0 {
		return 0
	}
	if incoming > remaining {
		return remaining
	}
	return incoming
}

// ActionXPCalculator maps discrete user actions to XP grants, applying the
// general daily ceiling where the action is subject to it. Tips run against
// their own narrower ceiling, tracked separately from the general one.
type ActionXPCalculator struct {
	cfg config.EconomyConfig
}

func NewActionXPCalculator(cfg config.EconomyConfig) *ActionXPCalculator {
	return &ActionXPCalculator{cfg: cfg}
}

// XPForAction returns the XP to grant for action given the user's counters so
// far today. Unknown actions earn 0 rather than failing: an unrecognized bonus
// must never block the primary operation that triggered it.
func (c *ActionXPCalculator) XPForAction(action string, earnedToday int) int {
	switch action {
	case ActionFirstPost:
		// One-time reward, exempt from the daily ceiling.
		return c.cfg.FirstPostXP
	case ActionDailyPost:
		return c.capped(earnedToday, c.cfg.DailyPostXP)
	case ActionReactionReceived:
		return c.capped(earnedToday, c.cfg.ReactionReceivedXP)
	case ActionFaucetClaim:
		// Faucet has its own cooldown; not subject to the daily ceiling.
		return c.cfg.FaucetRewardXP
	case ActionReferralSignup:
		return c.cfg.ReferralRewards.Referrer.XP
	case ActionReferralLevelup:
		return c.cfg.ReferralRewards.Referee.XP
	default:
		return 0
	}
}

// XPForTip converts a tipped DGT amount to XP and clamps it against the
// tip-specific daily ceiling. The general ceiling is not consulted.
func (c *ActionXPCalculator) XPForTip(amount decimal.Decimal, tipXPToday int) int {
	if amount.Sign() <= 0 {
		return 0
	}
	raw := int(amount.Mul(decimal.NewFromInt(int64(c.cfg.XPPerDGT))).IntPart())
	granted := ApplyDailyCap(tipXPToday, raw, c.cfg.MaxTipXPPerDay)
	if granted < raw {
		metrics.DailyCapClamps.WithLabelValues("tip").Inc()
	}
	return granted
}

func (c *ActionXPCalculator) capped(earnedToday, raw int) int {
	granted := ApplyDailyCap(earnedToday, raw, c.cfg.MaxXPPerDay)
	if granted < raw {
		metrics.DailyCapClamps.WithLabelValues("general").Inc()
	}
	return granted
}
