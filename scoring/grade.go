// Package scoring turns the measurements of a finished run into a graded safety result
package scoring

// Grade is the tier of a scored run
type Grade string

const (
	GradeExcellent    Grade = "excellent"
	GradeGood         Grade = "good"
	GradeFair         Grade = "fair"
	GradeCaution      Grade = "caution"
	GradeDanger       Grade = "danger"
	GradeDisqualified Grade = "disqualified"
)

// Score thresholds for re-deriving the grade after adjustments
const (
	thresholdExcellent = 95
	thresholdGood      = 80
	thresholdFair      = 60
)

// GradeForScore maps a final score onto a tier
func GradeForScore(score int) Grade {
	switch {
	case score >= thresholdExcellent:
		return GradeExcellent
	case score >= thresholdGood:
		return GradeGood
	case score >= thresholdFair:
		return GradeFair
	default:
		return GradeCaution
	}
}

// Failed reports tiers that short-circuit scoring
func (g Grade) Failed() bool {
	return g == GradeDanger || g == GradeDisqualified
}

func (g Grade) String() string {
	return string(g)
}
