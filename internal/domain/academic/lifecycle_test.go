package academic

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func newEnrolled() *Enrollment {
	return &Enrollment{
		EnrollmentID: uuid.New(),
		StudentID:    uuid.New(),
		OfferingID:   uuid.New(),
		Status:       StatusEnrolled,
	}
}

func TestRecordGrade_PassingGradeCompletesAndKeepsSeat(t *testing.T) {
	for _, grade := range []Grade{GradeA, GradeB, GradeC, GradeD, GradeP} {
		e := newEnrolled()

		delta, err := e.RecordGrade(grade)
		if err != nil {
			t.Fatalf("Expected no error for grade %s, got %v", grade, err)
		}
		if delta != 0 {
			t.Errorf("Expected seat delta 0 for grade %s, got %d", grade, delta)
		}
		if e.Status != StatusCompleted {
			t.Errorf("Expected status Completed for grade %s, got %s", grade, e.Status)
		}
		if e.Grade == nil || *e.Grade != grade {
			t.Errorf("Expected recorded grade %s, got %v", grade, e.Grade)
		}
	}
}

func TestRecordGrade_FailingGradeReleasesSeat(t *testing.T) {
	e := newEnrolled()

	delta, err := e.RecordGrade(GradeF)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if delta != -1 {
		t.Errorf("Expected seat delta -1, got %d", delta)
	}
	if e.Status != StatusFailed {
		t.Errorf("Expected status Failed, got %s", e.Status)
	}
}

func TestRecordGrade_WIsNotRecordable(t *testing.T) {
	e := newEnrolled()

	if _, err := e.RecordGrade(GradeW); !errors.Is(err, ErrInvalidGrade) {
		t.Errorf("Expected ErrInvalidGrade for W, got %v", err)
	}
	if _, err := e.RecordGrade(Grade("X")); !errors.Is(err, ErrInvalidGrade) {
		t.Errorf("Expected ErrInvalidGrade for X, got %v", err)
	}
	if e.Status != StatusEnrolled {
		t.Errorf("Expected status unchanged, got %s", e.Status)
	}
}

func TestRecordGrade_CompletedIsLocked(t *testing.T) {
	e := newEnrolled()
	if _, err := e.RecordGrade(GradeB); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err := e.RecordGrade(GradeA)
	if !errors.Is(err, ErrGradeLocked) {
		t.Fatalf("Expected ErrGradeLocked, got %v", err)
	}

	var lockErr *GradeLockError
	if !errors.As(err, &lockErr) {
		t.Fatal("Expected a *GradeLockError")
	}
	if lockErr.Grade != GradeB {
		t.Errorf("Expected locked grade B, got %s", lockErr.Grade)
	}
	if *e.Grade != GradeB {
		t.Errorf("Expected grade to stay B, got %s", *e.Grade)
	}
}

func TestRecordGrade_TerminalStatesRejectGrading(t *testing.T) {
	withdrawn := newEnrolled()
	if _, err := withdrawn.Withdraw(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := withdrawn.RecordGrade(GradeA); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition after withdrawal, got %v", err)
	}

	failed := newEnrolled()
	if _, err := failed.RecordGrade(GradeF); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := failed.RecordGrade(GradeA); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition after failure, got %v", err)
	}
}

func TestWithdraw_ReleasesSeatAndRecordsW(t *testing.T) {
	e := newEnrolled()

	delta, err := e.Withdraw()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if delta != -1 {
		t.Errorf("Expected seat delta -1, got %d", delta)
	}
	if e.Status != StatusWithdrawn {
		t.Errorf("Expected status Withdrawn, got %s", e.Status)
	}
	if e.Grade == nil || *e.Grade != GradeW {
		t.Errorf("Expected grade W, got %v", e.Grade)
	}
}

func TestWithdraw_TwiceFails(t *testing.T) {
	e := newEnrolled()
	if _, err := e.Withdraw(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := e.Withdraw(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition on second withdrawal, got %v", err)
	}
}

func TestWithdraw_CompletedFails(t *testing.T) {
	e := newEnrolled()
	if _, err := e.RecordGrade(GradeA); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := e.Withdraw(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition for completed enrollment, got %v", err)
	}
}

func TestSeatDeltaOnDelete(t *testing.T) {
	cases := []struct {
		status EnrollmentStatus
		want   int
	}{
		{StatusEnrolled, -1},
		{StatusCompleted, -1},
		{StatusWithdrawn, 0},
		{StatusFailed, 0},
	}

	for _, tc := range cases {
		e := newEnrolled()
		e.Status = tc.status
		if got := e.SeatDeltaOnDelete(); got != tc.want {
			t.Errorf("Status %s: expected delta %d, got %d", tc.status, tc.want, got)
		}
	}
}

func TestGradePoints(t *testing.T) {
	cases := []struct {
		grade    Grade
		points   float64
		gradable bool
	}{
		{GradeA, 4.0, true},
		{GradeB, 3.0, true},
		{GradeC, 2.0, true},
		{GradeD, 1.0, true},
		{GradeF, 0.0, true},
		{GradeP, 0, false},
		{GradeW, 0, false},
	}

	for _, tc := range cases {
		points, gradable := tc.grade.Points()
		if gradable != tc.gradable {
			t.Errorf("Grade %s: expected gradable %v, got %v", tc.grade, tc.gradable, gradable)
		}
		if gradable && points != tc.points {
			t.Errorf("Grade %s: expected %.1f points, got %.1f", tc.grade, tc.points, points)
		}
	}
}

func TestGradePassing(t *testing.T) {
	passing := map[Grade]bool{
		GradeA: true, GradeB: true, GradeC: true, GradeD: true, GradeP: true,
		GradeF: false, GradeW: false,
	}
	for grade, want := range passing {
		if got := grade.Passing(); got != want {
			t.Errorf("Grade %s: expected passing %v, got %v", grade, want, got)
		}
	}
}

func TestOfferingAvailability(t *testing.T) {
	cases := []struct {
		enrolled int
		max      int
		want     AvailabilityStatus
	}{
		{0, 30, OfferingAvailable},
		{26, 30, OfferingAvailable},
		{27, 30, OfferingAlmostFull},
		{29, 30, OfferingAlmostFull},
		{30, 30, OfferingFull},
		{9, 10, OfferingAlmostFull},
		{1, 1, OfferingFull},
	}

	for _, tc := range cases {
		o := &CourseOffering{MaxStudents: tc.max, CurrentEnrollment: tc.enrolled}
		if got := o.Availability(); got != tc.want {
			t.Errorf("%d/%d: expected %s, got %s", tc.enrolled, tc.max, tc.want, got)
		}
		if remaining := o.SeatsRemaining(); remaining != tc.max-tc.enrolled {
			t.Errorf("%d/%d: expected %d seats remaining, got %d", tc.enrolled, tc.max, tc.max-tc.enrolled, remaining)
		}
	}
}

func TestSemesterOrder(t *testing.T) {
	if !(Spring.Order() < Summer.Order() && Summer.Order() < Fall.Order()) {
		t.Error("Expected Spring < Summer < Fall ordering")
	}
	if Semester("Winter").Valid() {
		t.Error("Expected Winter to be invalid")
	}
}
