package metrics

// Band is the presentational performance label for a finished attempt.
type Band string

const (
	BandExceptional      Band = "exceptional"
	BandStrong           Band = "strong"
	BandCompetent        Band = "competent"
	BandNeedsImprovement Band = "needs_improvement"
)

// Percent converts a score over total questions into a percentage.
func Percent(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(score) / float64(total)
}

// BandFor labels a percentage score.
func BandFor(percent float64) Band {
	switch {
	case percent >= 90:
		return BandExceptional
	case percent >= 75:
		return BandStrong
	case percent >= 60:
		return BandCompetent
	default:
		return BandNeedsImprovement
	}
}
