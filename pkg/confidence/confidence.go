package confidence

// Level is the categorical confidence derived from an average cell score.
type Level string

const (
	Certain   Level = "certain"
	High      Level = "high"
	Medium    Level = "medium"
	Low       Level = "low"
	Uncertain Level = "uncertain"
)

// Categorize maps a 0-100 score onto a Level. Lower bounds are inclusive.
func Categorize(score float64) Level {
	switch {
	case score >= 90:
		return Certain
	case score >= 75:
		return High
	case score >= 60:
		return Medium
	case score >= 45:
		return Low
	default:
		return Uncertain
	}
}

// Levels lists every level from most to least confident.
func Levels() []Level {
	return []Level{Certain, High, Medium, Low, Uncertain}
}

func (l Level) String() string {
	return string(l)
}
