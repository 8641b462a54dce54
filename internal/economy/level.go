package economy

// LevelModel maps cumulative XP to forum levels. Levels 2..10 come from the
// configured threshold table; everything above follows the quadratic curve
// level^2*250-250. The table is validated at config load, so thresholds are
// strictly increasing by the time a model exists.
type LevelModel struct {
	thresholds map[int]int
}

const curveTopLevel = 10

func NewLevelModel(thresholds map[int]int) *LevelModel {
	m := make(map[int]int, len(thresholds))
	for lvl, xp := range thresholds {
		m[lvl] = xp
	}
	return &LevelModel{thresholds: m}
}

// XPForLevel returns the cumulative XP required to reach level.
func (lm *LevelModel) XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	if level <= curveTopLevel {
		return lm.thresholds[level]
	}
	return level*level*250 - 250
}

// LevelForXP returns the level reached at totalXP. Totals below the level-2
// threshold are level 1.
func (lm *LevelModel) LevelForXP(totalXP int) int {
	if totalXP < 0 {
		return 1
	}
	level := 1
	for lvl := 2; lvl <= curveTopLevel; lvl++ {
		if totalXP >= lm.thresholds[lvl] {
			level = lvl
		}
	}
	if level < curveTopLevel {
		return level
	}
	// Above the table the curve is strictly increasing, so this terminates.
	for totalXP >= lm.XPForLevel(level+1) {
		level++
	}
	return level
}

// Progress describes where a total sits within its level.
type Progress struct {
	Level       int     `json:"level"`
	Progress    float64 `json:"progress"`
	NextLevelXP int     `json:"nextLevelXp"`
}

// ProgressWithinLevel returns the current level, the fraction [0,1) of the way
// to the next one, and the next level's cumulative threshold.
func (lm *LevelModel) ProgressWithinLevel(totalXP int) Progress {
	if totalXP < 0 {
		totalXP = 0
	}
	level := lm.LevelForXP(totalXP)
	floor := lm.XPForLevel(level)
	next := lm.XPForLevel(level + 1)
	return Progress{
		Level:       level,
		Progress:    float64(totalXP-floor) / float64(next-floor),
		NextLevelXP: next,
	}
}
