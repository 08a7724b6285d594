package interfaces

import (
	domain "academic-registrar/internal/domain/academic"
	"context"
	"time"

	"github.com/google/uuid"
)

type DepartmentRepository interface {
	Create(ctx context.Context, department *domain.Department) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error)
	GetByName(ctx context.Context, name string) (*domain.Department, error)
	List(ctx context.Context) ([]*domain.Department, error)
	// Delete is rejected with a ReferentialError while dependents exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProgramRepository interface {
	Create(ctx context.Context, program *domain.Program) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Program, error)
	GetByCode(ctx context.Context, code string) (*domain.Program, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type StudentRepository interface {
	Create(ctx context.Context, student *domain.Student) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error)
	GetByEmail(ctx context.Context, email string) (*domain.Student, error)
	ListByProgram(ctx context.Context, programID uuid.UUID) ([]*domain.Student, error)
	// Delete cascades to the student's enrollments and adjusts each
	// referenced offering's seat counter inside one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
}

type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error)
	GetByCode(ctx context.Context, code string) (*domain.Course, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type InstructorRepository interface {
	Create(ctx context.Context, instructor *domain.Instructor) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Instructor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type OfferingRepository interface {
	Create(ctx context.Context, offering *domain.CourseOffering) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CourseOffering, error)
	GetByTerm(ctx context.Context, semester domain.Semester, year int) ([]*domain.CourseOffering, error)
	GetByCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.CourseOffering, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// EnrollmentRepository is the capacity and integrity enforcer. Each mutating
// method runs the row mutation and the offering counter adjustment inside a
// single serializable transaction; no intermediate state is observable.
type EnrollmentRepository interface {
	// Enroll inserts an Enrolled row and increments the offering counter.
	// Fails with a CapacityError when the offering is full and with a
	// DuplicateEnrollmentError when a seat-occupying row for the pair
	// already exists.
	Enroll(ctx context.Context, studentID, offeringID uuid.UUID) (*domain.Enrollment, error)
	// RecordGrade applies the grade lifecycle transition under a row lock.
	RecordGrade(ctx context.Context, enrollmentID uuid.UUID, grade domain.Grade) (*domain.Enrollment, error)
	// Withdraw releases the seat and records a W grade.
	Withdraw(ctx context.Context, enrollmentID uuid.UUID) (*domain.Enrollment, error)

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error)
	GetByStudent(ctx context.Context, studentID uuid.UUID) ([]*domain.Enrollment, error)
	GetByOffering(ctx context.Context, offeringID uuid.UUID) ([]*domain.Enrollment, error)
}

// ReportingRepository serves the aggregate reports that are cheaper to
// compute in SQL than over hydrated rows.
type ReportingRepository interface {
	DepartmentSummary(ctx context.Context) ([]*domain.DepartmentSummaryRow, error)
	SemesterReport(ctx context.Context, semester domain.Semester, year int) (*domain.SemesterReportRow, error)
	StudentsAtRisk(ctx context.Context, gpaThreshold float64) ([]*domain.AtRiskRow, error)
	CourseEnrollmentStats(ctx context.Context, courseID uuid.UUID) ([]*domain.CourseTermStatsRow, error)
}

type IdempotencyRepository interface {
	Create(ctx context.Context, key *domain.IdempotencyKey) error
	GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error)
	Delete(ctx context.Context, key string) error
	DeleteExpired(ctx context.Context) error
}

// CacheService is the read-side cache. It never participates in the write
// path of the (enrollment row, seat counter) pair.
type CacheService interface {
	GetAvailability(ctx context.Context, offeringID uuid.UUID) (interface{}, error)
	SetAvailability(ctx context.Context, offeringID uuid.UUID, view interface{}, ttl time.Duration) error
	InvalidateAvailability(ctx context.Context, offeringID uuid.UUID) error

	GetStudentMetrics(ctx context.Context, studentID uuid.UUID, kind string) (interface{}, error)
	SetStudentMetrics(ctx context.Context, studentID uuid.UUID, kind string, data interface{}, ttl time.Duration) error
	InvalidateStudentMetrics(ctx context.Context, studentID uuid.UUID) error

	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	Health(ctx context.Context) error
	Close() error
}
