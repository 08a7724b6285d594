package service

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "academic-registrar/internal/domain/academic"
	"academic-registrar/internal/infrastructure/repository"

	"github.com/google/uuid"
)

func newRegistrarService(mock *repository.MockAcademicRepository) *RegistrarService {
	return NewRegistrarService(
		mock.Departments(),
		mock.Programs(),
		mock.Students(),
		mock.Courses(),
		mock.Instructors(),
		mock.Offerings(),
		repository.NewNoopCacheService(),
	)
}

func TestRegistrarService_AddStudent(t *testing.T) {
	w := newTestWorld(t, 30)
	registrar := newRegistrarService(w.mock)

	student, err := registrar.AddStudent(context.Background(), &domain.Student{
		FirstName:      "New",
		LastName:       "Admit",
		Email:          "new.admit@example.edu",
		DateOfBirth:    time.Date(2005, 3, 14, 0, 0, 0, 0, time.UTC),
		EnrollmentDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		ProgramID:      w.programID,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if student.StudentID == uuid.Nil {
		t.Error("Expected a generated student ID")
	}
	if student.Status != domain.StudentActive {
		t.Errorf("Expected default status Active, got %s", student.Status)
	}
}

func TestRegistrarService_AddStudent_EnrollmentBeforeBirth(t *testing.T) {
	w := newTestWorld(t, 30)
	registrar := newRegistrarService(w.mock)

	_, err := registrar.AddStudent(context.Background(), &domain.Student{
		FirstName:      "Time",
		LastName:       "Traveler",
		Email:          "paradox@example.edu",
		DateOfBirth:    time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
		EnrollmentDate: time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC),
		ProgramID:      w.programID,
	})
	if err == nil {
		t.Fatal("Expected an error for enrollment before birth")
	}
}

func TestRegistrarService_AddStudent_UnknownProgram(t *testing.T) {
	w := newTestWorld(t, 30)
	registrar := newRegistrarService(w.mock)

	_, err := registrar.AddStudent(context.Background(), &domain.Student{
		FirstName:      "No",
		LastName:       "Program",
		Email:          "lost@example.edu",
		DateOfBirth:    time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC),
		EnrollmentDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		ProgramID:      uuid.New(),
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRegistrarService_DeleteStudent_CascadesAndReleasesSeats(t *testing.T) {
	w := newTestWorld(t, 30)
	registrar := newRegistrarService(w.mock)
	studentID := w.addStudent()

	resp, err := w.enrollment.Enroll(context.Background(), &EnrollRequest{
		StudentID:  studentID,
		OfferingID: w.offeringID,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := w.offering(t).CurrentEnrollment; got != 1 {
		t.Fatalf("Expected seat counter 1, got %d", got)
	}

	if err := registrar.DeleteStudent(context.Background(), studentID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if got := w.offering(t).CurrentEnrollment; got != 0 {
		t.Errorf("Expected seat released on cascade, counter is %d", got)
	}

	enrollment, err := w.mock.Enrollments().GetByID(context.Background(), resp.EnrollmentID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if enrollment != nil {
		t.Error("Expected enrollment row to be deleted with the student")
	}
}

func TestRegistrarService_DeleteStudent_WithdrawnSeatsNotDoubleReleased(t *testing.T) {
	w := newTestWorld(t, 30)
	registrar := newRegistrarService(w.mock)
	studentID := w.addStudent()

	resp, err := w.enrollment.Enroll(context.Background(), &EnrollRequest{
		StudentID:  studentID,
		OfferingID: w.offeringID,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := w.enrollment.Withdraw(context.Background(), resp.EnrollmentID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := registrar.DeleteStudent(context.Background(), studentID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// The withdrawal already released the seat; deletion must not drive
	// the counter negative.
	if got := w.offering(t).CurrentEnrollment; got != 0 {
		t.Errorf("Expected seat counter 0, got %d", got)
	}
}

func TestRegistrarService_DeleteStudent_NotFound(t *testing.T) {
	w := newTestWorld(t, 30)
	registrar := newRegistrarService(w.mock)

	if err := registrar.DeleteStudent(context.Background(), uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRegistrarService_CreateOffering(t *testing.T) {
	w := newTestWorld(t, 30)
	registrar := newRegistrarService(w.mock)
	existing := w.offering(t)

	offering, err := registrar.CreateOffering(context.Background(), &domain.CourseOffering{
		CourseID:     existing.CourseID,
		InstructorID: existing.InstructorID,
		Semester:     domain.Spring,
		Year:         2026,
		Room:         "TH-201",
		MaxStudents:  25,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if offering.CurrentEnrollment != 0 {
		t.Errorf("Expected new offering to start empty, got %d", offering.CurrentEnrollment)
	}
	if offering.OfferingID == uuid.Nil {
		t.Error("Expected a generated offering ID")
	}
}

func TestRegistrarService_CreateOffering_Validation(t *testing.T) {
	w := newTestWorld(t, 30)
	registrar := newRegistrarService(w.mock)
	existing := w.offering(t)

	cases := []struct {
		name     string
		offering domain.CourseOffering
	}{
		{"bad semester", domain.CourseOffering{
			CourseID: existing.CourseID, InstructorID: existing.InstructorID,
			Semester: "Winter", Year: 2026, MaxStudents: 25,
		}},
		{"zero capacity", domain.CourseOffering{
			CourseID: existing.CourseID, InstructorID: existing.InstructorID,
			Semester: domain.Spring, Year: 2026, MaxStudents: 0,
		}},
		{"unknown course", domain.CourseOffering{
			CourseID: uuid.New(), InstructorID: existing.InstructorID,
			Semester: domain.Spring, Year: 2026, MaxStudents: 25,
		}},
		{"unknown instructor", domain.CourseOffering{
			CourseID: existing.CourseID, InstructorID: uuid.New(),
			Semester: domain.Spring, Year: 2026, MaxStudents: 25,
		}},
	}

	for _, tc := range cases {
		offering := tc.offering
		if _, err := registrar.CreateOffering(context.Background(), &offering); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
	}
}

func TestRegistrarService_RestrictedDeletes(t *testing.T) {
	w := newTestWorld(t, 30)
	registrar := newRegistrarService(w.mock)
	existing := w.offering(t)

	// The course has an offering, the program has students (after one is
	// added), and the instructor teaches the offering.
	w.addStudent()

	if err := registrar.DeleteCourse(context.Background(), existing.CourseID); !errors.Is(err, domain.ErrReferentialViolation) {
		t.Errorf("Expected ErrReferentialViolation deleting course with offerings, got %v", err)
	}
	if err := registrar.DeleteInstructor(context.Background(), existing.InstructorID); !errors.Is(err, domain.ErrReferentialViolation) {
		t.Errorf("Expected ErrReferentialViolation deleting teaching instructor, got %v", err)
	}
	if err := registrar.DeleteProgram(context.Background(), w.programID); !errors.Is(err, domain.ErrReferentialViolation) {
		t.Errorf("Expected ErrReferentialViolation deleting program with students, got %v", err)
	}
}
