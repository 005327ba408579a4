package xp

import "testing"

func TestComputeProgressBounds(t *testing.T) {
	for xp := int64(0); xp < 15_000_000; xp += 104729 {
		p := ComputeProgress(xp)
		if p.ProgressPct < 0 || p.ProgressPct > 100 {
			t.Fatalf("progressPct out of bounds at xp=%d: %f", xp, p.ProgressPct)
		}
		if p.Experience < p.XPForCurrentLevel {
			t.Fatalf("experience %d below current threshold %d", p.Experience, p.XPForCurrentLevel)
		}
	}
}

func TestComputeProgressAtThreshold(t *testing.T) {
	p := ComputeProgress(LevelToXP(10))
	if p.Level != 10 {
		t.Fatalf("level = %d, want 10", p.Level)
	}
	if p.ProgressPct != 0 {
		t.Fatalf("progressPct at exact threshold = %f, want 0", p.ProgressPct)
	}
	if p.XPForNextLevel != LevelToXP(11) {
		t.Fatalf("xpForNextLevel = %d, want %d", p.XPForNextLevel, LevelToXP(11))
	}
}

func TestComputeProgressMaxLevelPinned(t *testing.T) {
	p := ComputeProgress(LevelToXP(99) + 500_000)
	if p.Level != 99 {
		t.Fatalf("level = %d, want 99", p.Level)
	}
	if p.ProgressPct != 100 {
		t.Fatalf("progressPct at max level = %f, want 100", p.ProgressPct)
	}
	if p.XPForNextLevel != LevelToXP(99) {
		t.Fatalf("xpForNextLevel at max = %d, want %d", p.XPForNextLevel, LevelToXP(99))
	}
}

func TestComputeProgressNegativeExperience(t *testing.T) {
	p := ComputeProgress(-100)
	if p.Level != 1 || p.Experience != 0 || p.ProgressPct != 0 {
		t.Fatalf("unexpected progress for negative xp: %+v", p)
	}
}
