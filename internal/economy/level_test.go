package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testThresholds() map[int]int {
	return map[int]int{
		2: 100, 3: 350, 4: 750, 5: 1300,
		6: 2000, 7: 2850, 8: 3850, 9: 5000, 10: 6300,
	}
}

func TestXPForLevel(t *testing.T) {
	lm := NewLevelModel(testThresholds())

	assert.Equal(t, 0, lm.XPForLevel(0))
	assert.Equal(t, 0, lm.XPForLevel(1))
	assert.Equal(t, 100, lm.XPForLevel(2))
	assert.Equal(t, 6300, lm.XPForLevel(10))
	// Curve takes over above the table: level^2*250-250.
	assert.Equal(t, 11*11*250-250, lm.XPForLevel(11))
	assert.Equal(t, 20*20*250-250, lm.XPForLevel(20))
}

func TestLevelForXP(t *testing.T) {
	lm := NewLevelModel(testThresholds())

	assert.Equal(t, 1, lm.LevelForXP(0))
	assert.Equal(t, 1, lm.LevelForXP(99))
	assert.Equal(t, 2, lm.LevelForXP(100))
	assert.Equal(t, 2, lm.LevelForXP(349))
	assert.Equal(t, 10, lm.LevelForXP(6300))
	assert.Equal(t, 10, lm.LevelForXP(lm.XPForLevel(11)-1))
	assert.Equal(t, 11, lm.LevelForXP(lm.XPForLevel(11)))
	assert.Equal(t, 15, lm.LevelForXP(lm.XPForLevel(16)-1))
}

func TestLevelForXPMonotonic(t *testing.T) {
	lm := NewLevelModel(testThresholds())

	prev := 0
	for xp := 0; xp <= 100000; xp += 37 {
		level := lm.LevelForXP(xp)
		require.GreaterOrEqual(t, level, prev, "level dropped at xp=%d", xp)
		prev = level
	}
}

func TestCurveExceedsTableBoundary(t *testing.T) {
	lm := NewLevelModel(testThresholds())
	assert.Greater(t, lm.XPForLevel(11), lm.XPForLevel(10),
		"curve must continue strictly above the table")
}

func TestProgressWithinLevel(t *testing.T) {
	lm := NewLevelModel(testThresholds())

	p := lm.ProgressWithinLevel(0)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 0.0, p.Progress)
	assert.Equal(t, 100, p.NextLevelXP)

	p = lm.ProgressWithinLevel(50)
	assert.Equal(t, 1, p.Level)
	assert.InDelta(t, 0.5, p.Progress, 1e-9)

	// Exactly on a threshold: progress resets to the floor of the new level.
	p = lm.ProgressWithinLevel(100)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 0.0, p.Progress)
	assert.Equal(t, 350, p.NextLevelXP)

	for xp := 0; xp < 40000; xp += 123 {
		p := lm.ProgressWithinLevel(xp)
		require.GreaterOrEqual(t, p.Progress, 0.0)
		require.Less(t, p.Progress, 1.0)
	}
}
