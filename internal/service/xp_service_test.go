package service

import (
	"context"
	"testing"

	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/economy"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestXP(t *testing.T, usage economy.UsageStore, users ...*model.User) (*XPService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo(users...)
	xp, err := NewXPService(testServiceConfig().Economy, usage, repo)
	require.NoError(t, err)
	return xp, repo
}

// Actions exempt from the general daily ceiling stay exempt when a bonus
// multiplier is in play: a >=1.0 bonus must never grant less than the flat
// base, even with the day's budget spent.
func TestAwardActionBonusNeverUndercutsExemptBase(t *testing.T) {
	usage := economy.NewMemoryUsageStore()
	u := user("alice", 0)
	xp, repo := newTestXP(t, usage, u)
	ctx := context.Background()
	require.NoError(t, usage.AddDailyXP(ctx, "alice", 500, 0))

	grant, _, err := xp.AwardActionWithBonus(ctx, u, economy.ActionFirstPost, 1.5, 1.0, "")
	require.NoError(t, err)
	assert.Equal(t, 75, grant)

	got, err := repo.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 75, got.XP)
}

func TestAwardActionWithBonusRespectsDailyCeiling(t *testing.T) {
	usage := economy.NewMemoryUsageStore()
	u := user("alice", 0)
	xp, _ := newTestXP(t, usage, u)
	ctx := context.Background()
	require.NoError(t, usage.AddDailyXP(ctx, "alice", 497, 0))

	// Base is the 3 XP left of the budget; boosted 1.5x to 4, re-clamped to 3.
	grant, _, err := xp.AwardActionWithBonus(ctx, u, economy.ActionDailyPost, 1.5, 1.0, "")
	require.NoError(t, err)
	assert.Equal(t, 3, grant)
}

func TestAwardActionWithBonusCapsMultiplier(t *testing.T) {
	usage := economy.NewMemoryUsageStore()
	u := user("alice", 0)
	xp, _ := newTestXP(t, usage, u)

	// Role 5.0 clamps to 2.5 under strict enforcement: 50 * 2.5 = 125.
	grant, _, err := xp.AwardActionWithBonus(context.Background(), u, economy.ActionFirstPost, 5.0, 1.0, "forum-1")
	require.NoError(t, err)
	assert.Equal(t, 125, grant)
}

func TestAwardActionDetectsLevelUp(t *testing.T) {
	usage := economy.NewMemoryUsageStore()
	u := user("alice", 0)
	u.XP = 95
	xp, _ := newTestXP(t, usage, u)

	grant, newLevel, err := xp.AwardAction(context.Background(), u, economy.ActionDailyPost)
	require.NoError(t, err)
	assert.Equal(t, 10, grant)
	assert.Equal(t, 2, newLevel, "95+10 crosses the level-2 threshold at 100")
}

func TestAwardActionUnknownGrantsNothing(t *testing.T) {
	usage := economy.NewMemoryUsageStore()
	u := user("alice", 0)
	xp, repo := newTestXP(t, usage, u)

	grant, level, err := xp.AwardAction(context.Background(), u, "mystery_bonus")
	require.NoError(t, err)
	assert.Equal(t, 0, grant)
	assert.Equal(t, 1, level)

	got, err := repo.GetByID(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, got.XP)
}
