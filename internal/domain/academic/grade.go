package academic

// Grade is a recorded letter grade. "No grade yet" is represented by a nil
// *Grade on the enrollment, not by a grade value.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
	GradeP Grade = "P"
	GradeW Grade = "W"
)

// Valid reports whether g is one of the recordable grades.
func (g Grade) Valid() bool {
	switch g {
	case GradeA, GradeB, GradeC, GradeD, GradeF, GradeP, GradeW:
		return true
	}
	return false
}

// Points returns the grade-point value for GPA purposes. P and W carry no
// grade points; the second return is false for those.
func (g Grade) Points() (float64, bool) {
	switch g {
	case GradeA:
		return 4.0, true
	case GradeB:
		return 3.0, true
	case GradeC:
		return 2.0, true
	case GradeD:
		return 1.0, true
	case GradeF:
		return 0.0, true
	}
	return 0, false
}

// Passing reports whether g earns course credit.
func (g Grade) Passing() bool {
	switch g {
	case GradeA, GradeB, GradeC, GradeD, GradeP:
		return true
	}
	return false
}

func gradePtr(g Grade) *Grade { return &g }
