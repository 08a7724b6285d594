package academic

// Lifecycle transitions for a single enrollment. These are pure: they mutate
// the struct and report the seat-counter delta the caller must apply to the
// offering inside the same transaction.

// RecordGrade records a final grade. A/B/C/D/P complete the enrollment and
// keep the seat; F fails it and releases the seat. W is reserved for
// Withdraw and is rejected here.
func (e *Enrollment) RecordGrade(g Grade) (seatDelta int, err error) {
	if !g.Valid() || g == GradeW {
		return 0, ErrInvalidGrade
	}

	switch e.Status {
	case StatusCompleted:
		return 0, &GradeLockError{EnrollmentID: e.EnrollmentID, Grade: *e.Grade}
	case StatusWithdrawn, StatusFailed:
		return 0, &TransitionError{EnrollmentID: e.EnrollmentID, From: e.Status, Op: "grade"}
	}

	e.Grade = gradePtr(g)
	if g == GradeF {
		e.Status = StatusFailed
		return -1, nil
	}
	e.Status = StatusCompleted
	return 0, nil
}

// Withdraw releases the seat and records a W grade. Only an Enrolled
// enrollment may withdraw.
func (e *Enrollment) Withdraw() (seatDelta int, err error) {
	if e.Status.Terminal() {
		return 0, &TransitionError{EnrollmentID: e.EnrollmentID, From: e.Status, Op: "withdraw"}
	}
	e.Status = StatusWithdrawn
	e.Grade = gradePtr(GradeW)
	return -1, nil
}

// SeatDeltaOnDelete is the counter adjustment when this enrollment row is
// removed by a cascading student deletion.
func (e *Enrollment) SeatDeltaOnDelete() int {
	if e.Status.OccupiesSeat() {
		return -1
	}
	return 0
}
