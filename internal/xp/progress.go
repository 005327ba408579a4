package xp

// Progress is UI-ready leveling state derived from raw experience.
type Progress struct {
	Level             int     `json:"level"`
	Experience        int64   `json:"experience"`
	XPForCurrentLevel int64   `json:"xpForCurrentLevel"`
	XPForNextLevel    int64   `json:"xpForNextLevel"`
	ProgressPct       float64 `json:"progressPct"`
}

// ComputeProgress derives level, level bounds, and fractional progress
// toward the next level. At MaxLevel the percentage pins to 100.
func ComputeProgress(experience int64) Progress {
	if experience < 0 {
		experience = 0
	}
	level := XPToLevel(experience)
	cur := LevelToXP(level)

	if level >= MaxLevel {
		return Progress{
			Level:             MaxLevel,
			Experience:        experience,
			XPForCurrentLevel: cur,
			XPForNextLevel:    LevelToXP(MaxLevel),
			ProgressPct:       100,
		}
	}

	next := LevelToXP(level + 1)
	span := next - cur
	if span < 1 {
		span = 1
	}
	pct := float64(experience-cur) / float64(span) * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return Progress{
		Level:             level,
		Experience:        experience,
		XPForCurrentLevel: cur,
		XPForNextLevel:    next,
		ProgressPct:       pct,
	}
}
