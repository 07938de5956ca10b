package domain

// Grade is the letter classification of a scored session.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeFail  Grade = "FAIL"
)

// gradeThresholds are lower bounds, inclusive, checked in order.
var gradeThresholds = []struct {
	min   int
	grade Grade
}{
	{97, GradeAPlus},
	{92, GradeA},
	{85, GradeB},
	{75, GradeC},
}

// ClassifyGrade maps a score percentage to a letter grade.
// An auto-fail always yields FAIL regardless of the percentage.
func ClassifyGrade(scorePct int, hasAutoFail bool) Grade {
	if hasAutoFail {
		return GradeFail
	}
	for _, t := range gradeThresholds {
		if scorePct >= t.min {
			return t.grade
		}
	}
	return GradeD
}

// Percent returns round-half-up(100 * part / whole) clamped to [0, 100].
// A non-positive whole yields 0.
func Percent(part, whole int) int {
	if whole <= 0 || part <= 0 {
		return 0
	}
	if part >= whole {
		return 100
	}
	return (200*part + whole) / (2 * whole)
}
