package xp

import (
	"math"
	"sort"
)

// MaxLevel is the hard cap for every skill.
const MaxLevel = 99

// thresholds[L] is the minimum experience required to hold level L.
// Built once at init from the cumulative point formula; external
// displays depend on these exact integer values.
var thresholds = buildThresholds(MaxLevel)

func buildThresholds(maxLevel int) []int64 {
	t := make([]int64, maxLevel+1)
	t[1] = 0
	var points int64
	for lvl := 1; lvl < maxLevel; lvl++ {
		points += int64(math.Floor(float64(lvl) + 300*math.Pow(2, float64(lvl)/7.0)))
		t[lvl+1] = points / 4
	}
	return t
}

// LevelToXP returns the minimum experience required to hold level.
// Out-of-range levels clamp to [1, MaxLevel].
func LevelToXP(level int) int64 {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return thresholds[level]
}

// XPToLevel returns the highest level whose threshold is <= experience,
// clamped to [1, MaxLevel]. Non-positive experience is level 1.
func XPToLevel(experience int64) int {
	if experience <= 0 {
		return 1
	}
	// First level whose threshold exceeds experience; the level below it
	// is the highest one reached. Index i maps to level i+1.
	idx := sort.Search(MaxLevel, func(i int) bool {
		return thresholds[i+1] > experience
	})
	if idx < 1 {
		return 1
	}
	return idx
}
