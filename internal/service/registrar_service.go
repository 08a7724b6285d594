package service

import (
	"context"
	"fmt"
	"time"

	domain "academic-registrar/internal/domain/academic"
	interfaces "academic-registrar/internal/interfaces/infrastructure"
	serviceInterfaces "academic-registrar/internal/interfaces/service"
	"academic-registrar/pkg/logger"

	"github.com/google/uuid"
)

var _ serviceInterfaces.RegistrarService = (*RegistrarService)(nil)

// RegistrarService manages the reference entities around the enrollment
// core: students, offerings and the restricted deletes.
type RegistrarService struct {
	departmentRepo interfaces.DepartmentRepository
	programRepo    interfaces.ProgramRepository
	studentRepo    interfaces.StudentRepository
	courseRepo     interfaces.CourseRepository
	instructorRepo interfaces.InstructorRepository
	offeringRepo   interfaces.OfferingRepository
	cacheService   interfaces.CacheService
}

func NewRegistrarService(
	departmentRepo interfaces.DepartmentRepository,
	programRepo interfaces.ProgramRepository,
	studentRepo interfaces.StudentRepository,
	courseRepo interfaces.CourseRepository,
	instructorRepo interfaces.InstructorRepository,
	offeringRepo interfaces.OfferingRepository,
	cacheService interfaces.CacheService,
) *RegistrarService {
	return &RegistrarService{
		departmentRepo: departmentRepo,
		programRepo:    programRepo,
		studentRepo:    studentRepo,
		courseRepo:     courseRepo,
		instructorRepo: instructorRepo,
		offeringRepo:   offeringRepo,
		cacheService:   cacheService,
	}
}

func (s *RegistrarService) AddStudent(ctx context.Context, student *domain.Student) (*domain.Student, error) {
	if student.EnrollmentDate.Before(student.DateOfBirth) {
		return nil, fmt.Errorf("enrollment date %s precedes date of birth %s",
			student.EnrollmentDate.Format("2006-01-02"), student.DateOfBirth.Format("2006-01-02"))
	}

	program, err := s.programRepo.GetByID(ctx, student.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up program: %w", err)
	}
	if program == nil {
		return nil, &domain.NotFoundError{Entity: "program", ID: student.ProgramID}
	}

	if student.StudentID == uuid.Nil {
		student.StudentID = uuid.New()
	}
	if student.Status == "" {
		student.Status = domain.StudentActive
	}
	if student.EnrollmentDate.IsZero() {
		student.EnrollmentDate = time.Now()
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to add student: %w", err)
	}

	logger.Info("Added student %s (%s) to program %s", student.StudentID, student.Email, program.Code)
	return student, nil
}

func (s *RegistrarService) GetStudent(ctx context.Context, studentID uuid.UUID) (*domain.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, &domain.NotFoundError{Entity: "student", ID: studentID}
	}
	return student, nil
}

// DeleteStudent removes the student and cascades to their enrollments,
// releasing every occupied seat in the same transaction.
func (s *RegistrarService) DeleteStudent(ctx context.Context, studentID uuid.UUID) error {
	if err := s.studentRepo.Delete(ctx, studentID); err != nil {
		return err
	}

	if err := s.cacheService.InvalidateStudentMetrics(ctx, studentID); err != nil {
		logger.Warn("Failed to invalidate metrics cache for deleted student %s: %v", studentID, err)
	}

	logger.Info("Deleted student %s with cascading enrollments", studentID)
	return nil
}

func (s *RegistrarService) CreateOffering(ctx context.Context, offering *domain.CourseOffering) (*domain.CourseOffering, error) {
	if !offering.Semester.Valid() {
		return nil, fmt.Errorf("invalid semester %q", offering.Semester)
	}
	if offering.MaxStudents <= 0 {
		return nil, fmt.Errorf("max students must be positive, got %d", offering.MaxStudents)
	}

	course, err := s.courseRepo.GetByID(ctx, offering.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up course: %w", err)
	}
	if course == nil {
		return nil, &domain.NotFoundError{Entity: "course", ID: offering.CourseID}
	}

	instructor, err := s.instructorRepo.GetByID(ctx, offering.InstructorID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up instructor: %w", err)
	}
	if instructor == nil {
		return nil, &domain.NotFoundError{Entity: "instructor", ID: offering.InstructorID}
	}

	if offering.OfferingID == uuid.Nil {
		offering.OfferingID = uuid.New()
	}
	offering.CurrentEnrollment = 0
	offering.Version = 1

	if err := s.offeringRepo.Create(ctx, offering); err != nil {
		return nil, fmt.Errorf("failed to create offering: %w", err)
	}

	logger.Info("Created offering %s for course %s, %s %d", offering.OfferingID, course.Code, offering.Semester, offering.Year)
	return offering, nil
}

func (s *RegistrarService) DeleteDepartment(ctx context.Context, departmentID uuid.UUID) error {
	return s.departmentRepo.Delete(ctx, departmentID)
}

func (s *RegistrarService) DeleteCourse(ctx context.Context, courseID uuid.UUID) error {
	return s.courseRepo.Delete(ctx, courseID)
}

func (s *RegistrarService) DeleteInstructor(ctx context.Context, instructorID uuid.UUID) error {
	return s.instructorRepo.Delete(ctx, instructorID)
}

func (s *RegistrarService) DeleteProgram(ctx context.Context, programID uuid.UUID) error {
	return s.programRepo.Delete(ctx, programID)
}
