package service

import (
	domain "academic-registrar/internal/domain/academic"
	"context"
	"time"

	"github.com/google/uuid"
)

// Request/Response types for the Enrollment Service

type EnrollRequest struct {
	StudentID      uuid.UUID `json:"student_id" validate:"required"`
	OfferingID     uuid.UUID `json:"offering_id" validate:"required"`
	IdempotencyKey string    `json:"-"`
}

type EnrollResponse struct {
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	StudentID    uuid.UUID `json:"student_id"`
	OfferingID   uuid.UUID `json:"offering_id"`
	Status       string    `json:"status"`
	EnrolledAt   time.Time `json:"enrolled_at"`
}

// TranscriptEntry is one line of a student transcript, ordered by year,
// then semester (Spring < Summer < Fall), then course code.
type TranscriptEntry struct {
	CourseCode  string        `json:"course_code"`
	CourseName  string        `json:"course_name"`
	Credits     int           `json:"credits"`
	Term        string        `json:"term"`
	Instructor  string        `json:"instructor"`
	Grade       *domain.Grade `json:"grade"`
	GradePoints *float64      `json:"grade_points"`
}

// RankEntry is one row of a program ranking. Students with equal GPAs share
// a rank; the next distinct GPA takes the rank after the tied block.
type RankEntry struct {
	StudentID   uuid.UUID `json:"student_id"`
	StudentName string    `json:"student_name"`
	GPA         float64   `json:"gpa"`
	Rank        int       `json:"rank"`
}

// AvailabilityView is the seat availability snapshot for one offering.
type AvailabilityView struct {
	OfferingID     uuid.UUID                 `json:"offering_id"`
	MaxStudents    int                       `json:"max_students"`
	Enrolled       int                       `json:"enrolled"`
	SeatsRemaining int                       `json:"seats_remaining"`
	Status         domain.AvailabilityStatus `json:"status"`
}

// OfferingListing is one row of the term course listing.
type OfferingListing struct {
	OfferingID     uuid.UUID                 `json:"offering_id"`
	CourseCode     string                    `json:"course_code"`
	CourseName     string                    `json:"course_name"`
	Credits        int                       `json:"credits"`
	Level          domain.ProgramLevel       `json:"level"`
	Instructor     string                    `json:"instructor"`
	Room           string                    `json:"room"`
	MaxStudents    int                       `json:"max_students"`
	Enrolled       int                       `json:"enrolled"`
	SeatsRemaining int                       `json:"seats_remaining"`
	Status         domain.AvailabilityStatus `json:"status"`
}

// EnrollmentService is the write side of the enrollment engine.
type EnrollmentService interface {
	Enroll(ctx context.Context, req *EnrollRequest) (*EnrollResponse, error)
	SetGrade(ctx context.Context, enrollmentID uuid.UUID, grade domain.Grade) (*domain.Enrollment, error)
	Withdraw(ctx context.Context, enrollmentID uuid.UUID) (*domain.Enrollment, error)
	GetStudentEnrollments(ctx context.Context, studentID uuid.UUID) ([]*domain.Enrollment, error)
}

// MetricsService is the read side: pure functions over settled state.
type MetricsService interface {
	GPA(ctx context.Context, studentID uuid.UUID) (*float64, error)
	Transcript(ctx context.Context, studentID uuid.UUID) ([]TranscriptEntry, error)
	ProgramRank(ctx context.Context, programID uuid.UUID) ([]RankEntry, error)
	CreditsCompleted(ctx context.Context, studentID uuid.UUID) (int, error)
	Availability(ctx context.Context, offeringID uuid.UUID) (*AvailabilityView, error)
	AvailableCourses(ctx context.Context, semester domain.Semester, year int) ([]OfferingListing, error)
}

// RegistrarService manages the reference entities around the enrollment core.
type RegistrarService interface {
	AddStudent(ctx context.Context, student *domain.Student) (*domain.Student, error)
	GetStudent(ctx context.Context, studentID uuid.UUID) (*domain.Student, error)
	DeleteStudent(ctx context.Context, studentID uuid.UUID) error
	CreateOffering(ctx context.Context, offering *domain.CourseOffering) (*domain.CourseOffering, error)
	DeleteDepartment(ctx context.Context, departmentID uuid.UUID) error
	DeleteCourse(ctx context.Context, courseID uuid.UUID) error
	DeleteInstructor(ctx context.Context, instructorID uuid.UUID) error
	DeleteProgram(ctx context.Context, programID uuid.UUID) error
}
