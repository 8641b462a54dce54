package economy

import (
	"testing"

	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testEconomyConfig() config.EconomyConfig {
	return config.EconomyConfig{
		XPPerDGT:           10,
		MaxXPPerDay:        500,
		MaxTipXPPerDay:     200,
		FirstPostXP:        50,
		DailyPostXP:        10,
		ReactionReceivedXP: 2,
		FaucetRewardXP:     10,
		ReferralRewards: config.ReferralRewards{
			Referee:  config.RewardPair{XP: 25},
			Referrer: config.RewardPair{XP: 50},
		},
	}
}

func TestApplyDailyCap(t *testing.T) {
	// At the ceiling, nothing more comes through.
	assert.Equal(t, 0, ApplyDailyCap(500, 501, 500))
	assert.Equal(t, 0, ApplyDailyCap(500, 1, 500))
	// Fresh day: grant passes through up to the ceiling.
	assert.Equal(t, 10, ApplyDailyCap(0, 10, 500))
	assert.Equal(t, 500, ApplyDailyCap(0, 9999, 500))
	// Partial budget left: exactly the remainder.
	assert.Equal(t, 3, ApplyDailyCap(497, 10, 500))
	// Counter past the ceiling must still clamp to zero, never negative.
	assert.Equal(t, 0, ApplyDailyCap(600, 10, 500))
	assert.Equal(t, 0, ApplyDailyCap(0, 0, 500))
	assert.Equal(t, 0, ApplyDailyCap(0, -5, 500))
}

func TestXPForAction(t *testing.T) {
	calc := NewActionXPCalculator(testEconomyConfig())

	// First post is one-time and exempt from the ceiling.
	assert.Equal(t, 50, calc.XPForAction(ActionFirstPost, 500))

	assert.Equal(t, 10, calc.XPForAction(ActionDailyPost, 0))
	assert.Equal(t, 0, calc.XPForAction(ActionDailyPost, 500))
	assert.Equal(t, 4, calc.XPForAction(ActionDailyPost, 496))

	assert.Equal(t, 2, calc.XPForAction(ActionReactionReceived, 0))

	// Cooldown-gated actions bypass the daily ceiling.
	assert.Equal(t, 10, calc.XPForAction(ActionFaucetClaim, 500))
	assert.Equal(t, 50, calc.XPForAction(ActionReferralSignup, 500))
	assert.Equal(t, 25, calc.XPForAction(ActionReferralLevelup, 500))
}

func TestXPForActionUnknown(t *testing.T) {
	calc := NewActionXPCalculator(testEconomyConfig())
	// Fail-safe: an unrecognized bonus earns nothing and raises no error.
	assert.Equal(t, 0, calc.XPForAction("mystery_bonus", 0))
	assert.Equal(t, 0, calc.XPForAction("", 0))
}

func TestXPForTip(t *testing.T) {
	calc := NewActionXPCalculator(testEconomyConfig())

	assert.Equal(t, 50, calc.XPForTip(decimal.NewFromInt(5), 0))
	assert.Equal(t, 0, calc.XPForTip(decimal.Zero, 0))
	assert.Equal(t, 0, calc.XPForTip(decimal.NewFromInt(-3), 0))

	// Clamped by the tip-specific ceiling, not the general one.
	assert.Equal(t, 200, calc.XPForTip(decimal.NewFromInt(100), 0))
	assert.Equal(t, 40, calc.XPForTip(decimal.NewFromInt(100), 160))
	assert.Equal(t, 0, calc.XPForTip(decimal.NewFromInt(100), 200))
}

// The general and tip ceilings are independent budgets: exhausting one
// leaves the other untouched.
func TestDailyCeilingsIndependent(t *testing.T) {
	calc := NewActionXPCalculator(testEconomyConfig())

	// General budget exhausted, tip budget untouched.
	assert.Equal(t, 0, calc.XPForAction(ActionDailyPost, 500))
	assert.Equal(t, 50, calc.XPForTip(decimal.NewFromInt(5), 0))

	// Tip budget exhausted, general budget untouched.
	assert.Equal(t, 0, calc.XPForTip(decimal.NewFromInt(5), 200))
	assert.Equal(t, 10, calc.XPForAction(ActionDailyPost, 0))
}
