package xp

import "testing"

func TestLevelToXPKnownThresholds(t *testing.T) {
	cases := []struct {
		level int
		xp    int64
	}{
		{1, 0},
		{2, 83},
		{3, 174},
		{4, 276},
		{5, 388},
		{10, 1154},
		{20, 4470},
		{50, 101333},
		{99, 13034431},
	}
	for _, c := range cases {
		if got := LevelToXP(c.level); got != c.xp {
			t.Fatalf("LevelToXP(%d) = %d, want %d", c.level, got, c.xp)
		}
	}
}

func TestXPToLevelRoundTrip(t *testing.T) {
	for lvl := 1; lvl <= MaxLevel; lvl++ {
		if got := XPToLevel(LevelToXP(lvl)); got != lvl {
			t.Fatalf("XPToLevel(LevelToXP(%d)) = %d", lvl, got)
		}
	}
}

func TestXPToLevelJustBelowThreshold(t *testing.T) {
	for lvl := 2; lvl <= MaxLevel; lvl++ {
		if got := XPToLevel(LevelToXP(lvl) - 1); got != lvl-1 {
			t.Fatalf("XPToLevel(threshold(%d)-1) = %d, want %d", lvl, got, lvl-1)
		}
	}
}

func TestXPToLevelMonotonic(t *testing.T) {
	prev := 1
	for xp := int64(0); xp < 200000; xp += 37 {
		lvl := XPToLevel(xp)
		if lvl < prev {
			t.Fatalf("XPToLevel not monotonic at xp=%d: %d < %d", xp, lvl, prev)
		}
		prev = lvl
	}
}

func TestXPToLevelFloorAndCeiling(t *testing.T) {
	if got := XPToLevel(0); got != 1 {
		t.Fatalf("XPToLevel(0) = %d, want 1", got)
	}
	if got := XPToLevel(-5); got != 1 {
		t.Fatalf("XPToLevel(-5) = %d, want 1", got)
	}
	if got := XPToLevel(LevelToXP(99) + 10_000_000); got != 99 {
		t.Fatalf("XPToLevel(max+10M) = %d, want 99", got)
	}
}

func TestLevelToXPClamps(t *testing.T) {
	if got := LevelToXP(0); got != 0 {
		t.Fatalf("LevelToXP(0) = %d, want 0", got)
	}
	if got := LevelToXP(150); got != LevelToXP(99) {
		t.Fatalf("LevelToXP(150) = %d, want max threshold %d", got, LevelToXP(99))
	}
}
