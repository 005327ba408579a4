package xp

import "testing"

func TestCombatLevelFreshCharacter(t *testing.T) {
	got := CombatLevel(CombatLevels{Attack: 1, Strength: 1, Defense: 1, Vitality: 1, Magic: 1, Projectile: 1})
	// base 0.25*(1+0.5)=0.375, melee 0.325*2=0.65 -> floor(1.025)=1
	if got != 1 {
		t.Fatalf("CombatLevel(fresh) = %d, want 1", got)
	}
}

func TestCombatLevelPicksStrongestStyle(t *testing.T) {
	meleeHeavy := CombatLevel(CombatLevels{Attack: 60, Strength: 60, Defense: 40, Vitality: 50, Magic: 1, Projectile: 1})
	magicHeavy := CombatLevel(CombatLevels{Attack: 1, Strength: 1, Defense: 40, Vitality: 50, Magic: 80, Projectile: 1})

	// melee: 0.25*(40+25) + 0.325*120 = 16.25 + 39 = 55
	if meleeHeavy != 55 {
		t.Fatalf("melee-heavy combat level = %d, want 55", meleeHeavy)
	}
	// magic: 0.25*(40+25) + 0.325*floor(120) = 16.25 + 39 = 55
	if magicHeavy != 55 {
		t.Fatalf("magic-heavy combat level = %d, want 55", magicHeavy)
	}

	mixed := CombatLevel(CombatLevels{Attack: 60, Strength: 60, Defense: 40, Vitality: 50, Magic: 80, Projectile: 99})
	// projectile style: 0.325*floor(148.5) = 48.1 -> floor(64.35) = 64
	if mixed != 64 {
		t.Fatalf("mixed combat level = %d, want 64", mixed)
	}
}

func TestTotalLevel(t *testing.T) {
	if got := TotalLevel([]int{1, 1, 1}); got != 3 {
		t.Fatalf("TotalLevel = %d, want 3", got)
	}
	levels := make([]int, 17)
	for i := range levels {
		levels[i] = 99
	}
	if got := TotalLevel(levels); got != 17*99 {
		t.Fatalf("TotalLevel(max) = %d, want %d", got, 17*99)
	}
}
