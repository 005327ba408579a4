package xp

import "math"

// CombatLevels carries the six combat skill levels that feed the
// aggregate combat rating.
type CombatLevels struct {
	Attack     int
	Strength   int
	Defense    int
	Vitality   int
	Magic      int
	Projectile int
}

// Blending constants for the combat rating. These are a balance
// decision, kept in one place so tuning stays a one-line change.
const (
	combatBaseWeight  = 0.25
	combatStyleWeight = 0.325
	castingStyleBoost = 1.5
)

// CombatLevel rates a character by its strongest combat style (melee,
// magic, or projectile) on top of a defense/vitality base.
func CombatLevel(l CombatLevels) int {
	base := combatBaseWeight * (float64(l.Defense) + float64(l.Vitality)/2)
	melee := combatStyleWeight * float64(l.Attack+l.Strength)
	magic := combatStyleWeight * math.Floor(castingStyleBoost*float64(l.Magic))
	projectile := combatStyleWeight * math.Floor(castingStyleBoost*float64(l.Projectile))

	style := melee
	if magic > style {
		style = magic
	}
	if projectile > style {
		style = projectile
	}
	return int(base + style)
}

// TotalLevel sums every skill level.
func TotalLevel(levels []int) int {
	total := 0
	for _, l := range levels {
		total += l
	}
	return total
}
