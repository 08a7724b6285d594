package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domain "academic-registrar/internal/domain/academic"
	"academic-registrar/internal/infrastructure/repository"

	"github.com/google/uuid"
)

type testWorld struct {
	mock        *repository.MockAcademicRepository
	idempotency *repository.MockIdempotencyRepository
	enrollment  *EnrollmentService
	programID   uuid.UUID
	offeringID  uuid.UUID
}

// newTestWorld seeds one department tree with a single offering of the
// given capacity and returns a wired enrollment service.
func newTestWorld(t *testing.T, capacity int) *testWorld {
	t.Helper()

	mock := repository.NewMockAcademicRepository()

	departmentID := uuid.New()
	mock.AddDepartment(&domain.Department{DepartmentID: departmentID, Name: "Computer Science"})

	programID := uuid.New()
	mock.AddProgram(&domain.Program{
		ProgramID:    programID,
		Name:         "BSc Computer Science",
		Code:         "BSCS",
		DepartmentID: departmentID,
	})

	courseID := uuid.New()
	mock.AddCourse(&domain.Course{
		CourseID:     courseID,
		Code:         "CS101",
		Name:         "Introduction to Programming",
		Credits:      10,
		DepartmentID: departmentID,
	})

	instructorID := uuid.New()
	mock.AddInstructor(&domain.Instructor{
		InstructorID: instructorID,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		DepartmentID: departmentID,
	})

	offeringID := uuid.New()
	mock.AddOffering(&domain.CourseOffering{
		OfferingID:   offeringID,
		CourseID:     courseID,
		InstructorID: instructorID,
		Semester:     domain.Fall,
		Year:         2025,
		MaxStudents:  capacity,
	})

	idempotency := repository.NewMockIdempotencyRepository()
	enrollment := NewEnrollmentService(
		mock.Students(),
		mock.Offerings(),
		mock.Enrollments(),
		idempotency,
		repository.NewNoopCacheService(),
	)

	return &testWorld{
		mock:        mock,
		idempotency: idempotency,
		enrollment:  enrollment,
		programID:   programID,
		offeringID:  offeringID,
	}
}

func (w *testWorld) addStudent() uuid.UUID {
	studentID := uuid.New()
	w.mock.AddStudent(&domain.Student{
		StudentID:      studentID,
		FirstName:      "Test",
		LastName:       "Student",
		Email:          studentID.String() + "@example.edu",
		DateOfBirth:    time.Date(2004, 1, 1, 0, 0, 0, 0, time.UTC),
		EnrollmentDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		ProgramID:      w.programID,
		Status:         domain.StudentActive,
	})
	return studentID
}

func (w *testWorld) offering(t *testing.T) *domain.CourseOffering {
	t.Helper()
	offering, err := w.mock.Offerings().GetByID(context.Background(), w.offeringID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return offering
}

func TestEnrollmentService_Enroll(t *testing.T) {
	w := newTestWorld(t, 30)
	studentID := w.addStudent()

	resp, err := w.enrollment.Enroll(context.Background(), &EnrollRequest{
		StudentID:  studentID,
		OfferingID: w.offeringID,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if resp.Status != string(domain.StatusEnrolled) {
		t.Errorf("Expected status Enrolled, got %s", resp.Status)
	}
	if resp.StudentID != studentID {
		t.Errorf("Expected student %s, got %s", studentID, resp.StudentID)
	}

	if got := w.offering(t).CurrentEnrollment; got != 1 {
		t.Errorf("Expected seat counter 1, got %d", got)
	}
}

func TestEnrollmentService_Enroll_UnknownStudent(t *testing.T) {
	w := newTestWorld(t, 30)

	_, err := w.enrollment.Enroll(context.Background(), &EnrollRequest{
		StudentID:  uuid.New(),
		OfferingID: w.offeringID,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestEnrollmentService_Enroll_InactiveStudent(t *testing.T) {
	w := newTestWorld(t, 30)
	studentID := uuid.New()
	w.mock.AddStudent(&domain.Student{
		StudentID: studentID,
		ProgramID: w.programID,
		Status:    domain.StudentSuspended,
	})

	_, err := w.enrollment.Enroll(context.Background(), &EnrollRequest{
		StudentID:  studentID,
		OfferingID: w.offeringID,
	})
	if err == nil {
		t.Fatal("Expected an error for suspended student")
	}
}

func TestEnrollmentService_Enroll_Duplicate(t *testing.T) {
	w := newTestWorld(t, 30)
	studentID := w.addStudent()
	req := &EnrollRequest{StudentID: studentID, OfferingID: w.offeringID}

	if _, err := w.enrollment.Enroll(context.Background(), req); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err := w.enrollment.Enroll(context.Background(), req)
	if !errors.Is(err, domain.ErrDuplicateEnrollment) {
		t.Fatalf("Expected ErrDuplicateEnrollment, got %v", err)
	}

	if got := w.offering(t).CurrentEnrollment; got != 1 {
		t.Errorf("Expected seat counter to stay 1, got %d", got)
	}
}

func TestEnrollmentService_Enroll_CapacityExceeded(t *testing.T) {
	w := newTestWorld(t, 2)

	for i := 0; i < 2; i++ {
		studentID := w.addStudent()
		if _, err := w.enrollment.Enroll(context.Background(), &EnrollRequest{
			StudentID:  studentID,
			OfferingID: w.offeringID,
		}); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	_, err := w.enrollment.Enroll(context.Background(), &EnrollRequest{
		StudentID:  w.addStudent(),
		OfferingID: w.offeringID,
	})
	if !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("Expected ErrCapacityExceeded, got %v", err)
	}

	if got := w.offering(t).CurrentEnrollment; got != 2 {
		t.Errorf("Expected seat counter to stay at capacity 2, got %d", got)
	}
}

func TestEnrollmentService_Enroll_ConcurrentNeverOversells(t *testing.T) {
	const capacity = 30
	const contenders = 100

	w := newTestWorld(t, capacity)

	students := make([]uuid.UUID, contenders)
	for i := range students {
		students[i] = w.addStudent()
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	enrolled, rejected, unexpected := 0, 0, 0

	for _, studentID := range students {
		wg.Add(1)
		go func(studentID uuid.UUID) {
			defer wg.Done()
			_, err := w.enrollment.Enroll(context.Background(), &EnrollRequest{
				StudentID:  studentID,
				OfferingID: w.offeringID,
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				enrolled++
			case errors.Is(err, domain.ErrCapacityExceeded):
				rejected++
			default:
				unexpected++
			}
		}(studentID)
	}
	wg.Wait()

	if enrolled != capacity {
		t.Errorf("Expected exactly %d enrollments, got %d", capacity, enrolled)
	}
	if rejected != contenders-capacity {
		t.Errorf("Expected %d capacity rejections, got %d", contenders-capacity, rejected)
	}
	if unexpected != 0 {
		t.Errorf("Expected no unexpected errors, got %d", unexpected)
	}

	if got := w.offering(t).CurrentEnrollment; got != capacity {
		t.Errorf("Expected seat counter %d, got %d", capacity, got)
	}
}

func TestEnrollmentService_Enroll_IdempotentRetry(t *testing.T) {
	w := newTestWorld(t, 30)
	studentID := w.addStudent()
	req := &EnrollRequest{
		StudentID:      studentID,
		OfferingID:     w.offeringID,
		IdempotencyKey: "retry-key-1",
	}

	first, err := w.enrollment.Enroll(context.Background(), req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	second, err := w.enrollment.Enroll(context.Background(), req)
	if err != nil {
		t.Fatalf("Expected stored response on retry, got %v", err)
	}

	if first.EnrollmentID != second.EnrollmentID {
		t.Errorf("Expected the same enrollment on retry, got %s and %s",
			first.EnrollmentID, second.EnrollmentID)
	}
	if got := w.offering(t).CurrentEnrollment; got != 1 {
		t.Errorf("Expected one seat taken after retry, got %d", got)
	}
}

func TestEnrollmentService_SetGrade_LocksFinalGrade(t *testing.T) {
	w := newTestWorld(t, 30)
	studentID := w.addStudent()

	resp, err := w.enrollment.Enroll(context.Background(), &EnrollRequest{
		StudentID:  studentID,
		OfferingID: w.offeringID,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	graded, err := w.enrollment.SetGrade(context.Background(), resp.EnrollmentID, domain.GradeA)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if graded.Status != domain.StatusCompleted {
		t.Errorf("Expected status Completed, got %s", graded.Status)
	}

	// A completed enrollment still occupies its seat.
	if got := w.offering(t).CurrentEnrollment; got != 1 {
		t.Errorf("Expected seat counter to stay 1, got %d", got)
	}

	_, err = w.enrollment.SetGrade(context.Background(), resp.EnrollmentID, domain.GradeB)
	if !errors.Is(err, domain.ErrGradeLocked) {
		t.Errorf("Expected ErrGradeLocked on regrade, got %v", err)
	}
}

func TestEnrollmentService_SetGrade_FailingGradeReleasesSeat(t *testing.T) {
	w := newTestWorld(t, 30)
	studentID := w.addStudent()

	resp, err := w.enrollment.Enroll(context.Background(), &EnrollRequest{
		StudentID:  studentID,
		OfferingID: w.offeringID,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	graded, err := w.enrollment.SetGrade(context.Background(), resp.EnrollmentID, domain.GradeF)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if graded.Status != domain.StatusFailed {
		t.Errorf("Expected status Failed, got %s", graded.Status)
	}

	if got := w.offering(t).CurrentEnrollment; got != 0 {
		t.Errorf("Expected seat released, counter is %d", got)
	}
}

func TestEnrollmentService_Withdraw(t *testing.T) {
	w := newTestWorld(t, 30)
	studentID := w.addStudent()

	resp, err := w.enrollment.Enroll(context.Background(), &EnrollRequest{
		StudentID:  studentID,
		OfferingID: w.offeringID,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	withdrawn, err := w.enrollment.Withdraw(context.Background(), resp.EnrollmentID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if withdrawn.Status != domain.StatusWithdrawn {
		t.Errorf("Expected status Withdrawn, got %s", withdrawn.Status)
	}
	if withdrawn.Grade == nil || *withdrawn.Grade != domain.GradeW {
		t.Errorf("Expected grade W, got %v", withdrawn.Grade)
	}
	if got := w.offering(t).CurrentEnrollment; got != 0 {
		t.Errorf("Expected seat released, counter is %d", got)
	}

	if _, err := w.enrollment.Withdraw(context.Background(), resp.EnrollmentID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition on second withdrawal, got %v", err)
	}
}

func TestEnrollmentService_ReenrollAfterWithdrawal(t *testing.T) {
	w := newTestWorld(t, 30)
	studentID := w.addStudent()
	req := &EnrollRequest{StudentID: studentID, OfferingID: w.offeringID}

	first, err := w.enrollment.Enroll(context.Background(), req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := w.enrollment.Withdraw(context.Background(), first.EnrollmentID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	second, err := w.enrollment.Enroll(context.Background(), req)
	if err != nil {
		t.Fatalf("Expected re-enrollment after withdrawal, got %v", err)
	}
	if second.EnrollmentID == first.EnrollmentID {
		t.Error("Expected a new enrollment row, got the withdrawn one")
	}

	enrollments, err := w.enrollment.GetStudentEnrollments(context.Background(), studentID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(enrollments) != 2 {
		t.Errorf("Expected 2 enrollment rows (history kept), got %d", len(enrollments))
	}
}
