package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domain "academic-registrar/internal/domain/academic"
	interfaces "academic-registrar/internal/interfaces/infrastructure"

	"github.com/google/uuid"
)

// MockAcademicRepository is an in-memory stand-in for the Postgres
// repositories. A single mutex serializes every mutating operation, which
// is the same per-offering serialization guarantee the real implementation
// gets from its conditional updates, so the concurrency semantics of the
// enrollment engine hold here too.
type MockAcademicRepository struct {
	mu          sync.Mutex
	departments map[uuid.UUID]*domain.Department
	programs    map[uuid.UUID]*domain.Program
	students    map[uuid.UUID]*domain.Student
	courses     map[uuid.UUID]*domain.Course
	instructors map[uuid.UUID]*domain.Instructor
	offerings   map[uuid.UUID]*domain.CourseOffering
	enrollments map[uuid.UUID]*domain.Enrollment
}

func NewMockAcademicRepository() *MockAcademicRepository {
	return &MockAcademicRepository{
		departments: make(map[uuid.UUID]*domain.Department),
		programs:    make(map[uuid.UUID]*domain.Program),
		students:    make(map[uuid.UUID]*domain.Student),
		courses:     make(map[uuid.UUID]*domain.Course),
		instructors: make(map[uuid.UUID]*domain.Instructor),
		offerings:   make(map[uuid.UUID]*domain.CourseOffering),
		enrollments: make(map[uuid.UUID]*domain.Enrollment),
	}
}

// Seed helpers

func (m *MockAcademicRepository) AddDepartment(d *domain.Department) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.departments[d.DepartmentID] = d
}

func (m *MockAcademicRepository) AddProgram(p *domain.Program) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.programs[p.ProgramID] = p
}

func (m *MockAcademicRepository) AddCourse(c *domain.Course) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[c.CourseID] = c
}

func (m *MockAcademicRepository) AddInstructor(i *domain.Instructor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instructors[i.InstructorID] = i
}

func (m *MockAcademicRepository) AddOffering(o *domain.CourseOffering) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offerings[o.OfferingID] = o
}

func (m *MockAcademicRepository) AddStudent(s *domain.Student) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students[s.StudentID] = s
}

// Students implements interfaces.StudentRepository backed by the mock.
func (m *MockAcademicRepository) Students() interfaces.StudentRepository {
	return (*mockStudentRepo)(m)
}

// Departments implements interfaces.DepartmentRepository backed by the mock.
func (m *MockAcademicRepository) Departments() interfaces.DepartmentRepository {
	return (*mockDepartmentRepo)(m)
}

// Programs implements interfaces.ProgramRepository backed by the mock.
func (m *MockAcademicRepository) Programs() interfaces.ProgramRepository {
	return (*mockProgramRepo)(m)
}

// Courses implements interfaces.CourseRepository backed by the mock.
func (m *MockAcademicRepository) Courses() interfaces.CourseRepository {
	return (*mockCourseRepo)(m)
}

// Instructors implements interfaces.InstructorRepository backed by the mock.
func (m *MockAcademicRepository) Instructors() interfaces.InstructorRepository {
	return (*mockInstructorRepo)(m)
}

// Offerings implements interfaces.OfferingRepository backed by the mock.
func (m *MockAcademicRepository) Offerings() interfaces.OfferingRepository {
	return (*mockOfferingRepo)(m)
}

// Enrollments implements interfaces.EnrollmentRepository backed by the mock.
func (m *MockAcademicRepository) Enrollments() interfaces.EnrollmentRepository {
	return (*mockEnrollmentRepo)(m)
}

type mockDepartmentRepo MockAcademicRepository

func (m *mockDepartmentRepo) Create(ctx context.Context, department *domain.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.departments[department.DepartmentID] = department
	return nil
}

func (m *mockDepartmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.departments[id], nil
}

func (m *mockDepartmentRepo) GetByName(ctx context.Context, name string) (*domain.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.departments {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, nil
}

func (m *mockDepartmentRepo) List(ctx context.Context) ([]*domain.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var departments []*domain.Department
	for _, d := range m.departments {
		departments = append(departments, d)
	}
	return departments, nil
}

func (m *mockDepartmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.programs {
		if p.DepartmentID == id {
			return &domain.ReferentialError{Entity: "department", ID: id,
				Cause: errors.New("programs reference this department")}
		}
	}
	for _, c := range m.courses {
		if c.DepartmentID == id {
			return &domain.ReferentialError{Entity: "department", ID: id,
				Cause: errors.New("courses reference this department")}
		}
	}
	for _, i := range m.instructors {
		if i.DepartmentID == id {
			return &domain.ReferentialError{Entity: "department", ID: id,
				Cause: errors.New("instructors reference this department")}
		}
	}
	if _, ok := m.departments[id]; !ok {
		return &domain.NotFoundError{Entity: "department", ID: id}
	}
	delete(m.departments, id)
	return nil
}

type mockProgramRepo MockAcademicRepository

func (m *mockProgramRepo) Create(ctx context.Context, program *domain.Program) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.programs[program.ProgramID] = program
	return nil
}

func (m *mockProgramRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.programs[id], nil
}

func (m *mockProgramRepo) GetByCode(ctx context.Context, code string) (*domain.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.programs {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockProgramRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.students {
		if s.ProgramID == id {
			return &domain.ReferentialError{Entity: "program", ID: id,
				Cause: errors.New("students reference this program")}
		}
	}
	if _, ok := m.programs[id]; !ok {
		return &domain.NotFoundError{Entity: "program", ID: id}
	}
	delete(m.programs, id)
	return nil
}

type mockCourseRepo MockAcademicRepository

func (m *mockCourseRepo) Create(ctx context.Context, course *domain.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.courses[id], nil
}

func (m *mockCourseRepo) GetByCode(ctx context.Context, code string) (*domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.courses {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.offerings {
		if o.CourseID == id {
			return &domain.ReferentialError{Entity: "course", ID: id,
				Cause: errors.New("offerings reference this course")}
		}
	}
	if _, ok := m.courses[id]; !ok {
		return &domain.NotFoundError{Entity: "course", ID: id}
	}
	delete(m.courses, id)
	return nil
}

type mockInstructorRepo MockAcademicRepository

func (m *mockInstructorRepo) Create(ctx context.Context, instructor *domain.Instructor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instructors[instructor.InstructorID] = instructor
	return nil
}

func (m *mockInstructorRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Instructor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.instructors[id], nil
}

func (m *mockInstructorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.offerings {
		if o.InstructorID == id {
			return &domain.ReferentialError{Entity: "instructor", ID: id,
				Cause: errors.New("offerings reference this instructor")}
		}
	}
	if _, ok := m.instructors[id]; !ok {
		return &domain.NotFoundError{Entity: "instructor", ID: id}
	}
	delete(m.instructors, id)
	return nil
}

type mockStudentRepo MockAcademicRepository

func (m *mockStudentRepo) Create(ctx context.Context, student *domain.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.students {
		if s.Email == student.Email {
			return fmt.Errorf("duplicate key: email %s already exists", student.Email)
		}
	}
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.students[id], nil
}

func (m *mockStudentRepo) GetByEmail(ctx context.Context, email string) (*domain.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.students {
		if s.Email == email {
			return s, nil
		}
	}
	return nil, nil
}

func (m *mockStudentRepo) ListByProgram(ctx context.Context, programID uuid.UUID) ([]*domain.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var students []*domain.Student
	for _, s := range m.students {
		if s.ProgramID == programID {
			students = append(students, s)
		}
	}
	return students, nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[id]; !ok {
		return &domain.NotFoundError{Entity: "student", ID: id}
	}

	for enrollmentID, e := range m.enrollments {
		if e.StudentID != id {
			continue
		}
		if delta := e.SeatDeltaOnDelete(); delta != 0 {
			if offering, ok := m.offerings[e.OfferingID]; ok {
				offering.CurrentEnrollment += delta
			}
		}
		delete(m.enrollments, enrollmentID)
	}

	delete(m.students, id)
	return nil
}

type mockOfferingRepo MockAcademicRepository

func (m *mockOfferingRepo) Create(ctx context.Context, offering *domain.CourseOffering) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offerings[offering.OfferingID] = offering
	return nil
}

func (m *mockOfferingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.CourseOffering, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	offering, ok := m.offerings[id]
	if !ok {
		return nil, nil
	}
	copied := *offering
	m.hydrateOffering(&copied)
	return &copied, nil
}

func (m *mockOfferingRepo) GetByTerm(ctx context.Context, semester domain.Semester, year int) ([]*domain.CourseOffering, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var offerings []*domain.CourseOffering
	for _, o := range m.offerings {
		if o.Semester == semester && o.Year == year {
			copied := *o
			m.hydrateOffering(&copied)
			offerings = append(offerings, &copied)
		}
	}
	return offerings, nil
}

func (m *mockOfferingRepo) GetByCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.CourseOffering, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var offerings []*domain.CourseOffering
	for _, o := range m.offerings {
		if o.CourseID == courseID {
			copied := *o
			m.hydrateOffering(&copied)
			offerings = append(offerings, &copied)
		}
	}
	return offerings, nil
}

func (m *mockOfferingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.enrollments {
		if e.OfferingID == id {
			return &domain.ReferentialError{Entity: "offering", ID: id,
				Cause: errors.New("enrollments reference this offering")}
		}
	}
	if _, ok := m.offerings[id]; !ok {
		return &domain.NotFoundError{Entity: "offering", ID: id}
	}
	delete(m.offerings, id)
	return nil
}

func (m *mockOfferingRepo) hydrateOffering(o *domain.CourseOffering) {
	if course, ok := m.courses[o.CourseID]; ok {
		o.Course = *course
	}
	if instructor, ok := m.instructors[o.InstructorID]; ok {
		o.Instructor = *instructor
	}
}

type mockEnrollmentRepo MockAcademicRepository

func (m *mockEnrollmentRepo) Enroll(ctx context.Context, studentID, offeringID uuid.UUID) (*domain.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.OfferingID == offeringID && e.Status.OccupiesSeat() {
			return nil, &domain.DuplicateEnrollmentError{
				StudentID:  studentID,
				OfferingID: offeringID,
				Status:     e.Status,
			}
		}
	}

	offering, ok := m.offerings[offeringID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "offering", ID: offeringID}
	}
	if offering.CurrentEnrollment >= offering.MaxStudents {
		return nil, &domain.CapacityError{OfferingID: offeringID, MaxStudents: offering.MaxStudents}
	}

	offering.CurrentEnrollment++
	offering.Version++

	enrollment := &domain.Enrollment{
		EnrollmentID:   uuid.New(),
		StudentID:      studentID,
		OfferingID:     offeringID,
		EnrollmentDate: time.Now(),
		Status:         domain.StatusEnrolled,
		Version:        1,
	}
	m.enrollments[enrollment.EnrollmentID] = enrollment

	copied := *enrollment
	return &copied, nil
}

func (m *mockEnrollmentRepo) RecordGrade(ctx context.Context, enrollmentID uuid.UUID, grade domain.Grade) (*domain.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	enrollment, ok := m.enrollments[enrollmentID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "enrollment", ID: enrollmentID}
	}

	delta, err := enrollment.RecordGrade(grade)
	if err != nil {
		return nil, err
	}
	enrollment.Version++

	if delta != 0 {
		if offering, ok := m.offerings[enrollment.OfferingID]; ok {
			offering.CurrentEnrollment += delta
			offering.Version++
		}
	}

	copied := *enrollment
	return &copied, nil
}

func (m *mockEnrollmentRepo) Withdraw(ctx context.Context, enrollmentID uuid.UUID) (*domain.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	enrollment, ok := m.enrollments[enrollmentID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "enrollment", ID: enrollmentID}
	}

	delta, err := enrollment.Withdraw()
	if err != nil {
		return nil, err
	}
	enrollment.Version++

	if offering, ok := m.offerings[enrollment.OfferingID]; ok {
		offering.CurrentEnrollment += delta
		offering.Version++
	}

	copied := *enrollment
	return &copied, nil
}

func (m *mockEnrollmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	enrollment, ok := m.enrollments[id]
	if !ok {
		return nil, nil
	}
	copied := *enrollment
	m.hydrateEnrollment(&copied)
	return &copied, nil
}

func (m *mockEnrollmentRepo) GetByStudent(ctx context.Context, studentID uuid.UUID) ([]*domain.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var enrollments []*domain.Enrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			copied := *e
			m.hydrateEnrollment(&copied)
			enrollments = append(enrollments, &copied)
		}
	}
	return enrollments, nil
}

func (m *mockEnrollmentRepo) GetByOffering(ctx context.Context, offeringID uuid.UUID) ([]*domain.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var enrollments []*domain.Enrollment
	for _, e := range m.enrollments {
		if e.OfferingID == offeringID {
			copied := *e
			m.hydrateEnrollment(&copied)
			enrollments = append(enrollments, &copied)
		}
	}
	return enrollments, nil
}

func (m *mockEnrollmentRepo) hydrateEnrollment(e *domain.Enrollment) {
	if offering, ok := m.offerings[e.OfferingID]; ok {
		copied := *offering
		(*mockOfferingRepo)(m).hydrateOffering(&copied)
		e.Offering = copied
	}
	if student, ok := m.students[e.StudentID]; ok {
		e.Student = *student
	}
}

// MockIdempotencyRepository is an in-memory idempotency store for tests.
type MockIdempotencyRepository struct {
	mu   sync.Mutex
	keys map[string]*domain.IdempotencyKey
}

var _ interfaces.IdempotencyRepository = (*MockIdempotencyRepository)(nil)

func NewMockIdempotencyRepository() *MockIdempotencyRepository {
	return &MockIdempotencyRepository{keys: make(map[string]*domain.IdempotencyKey)}
}

func (m *MockIdempotencyRepository) Create(ctx context.Context, key *domain.IdempotencyKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key.Key] = key
	return nil
}

func (m *MockIdempotencyRepository) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[key]
	if !ok || k.IsExpired() {
		return nil, errors.New("idempotency key not found")
	}
	return k, nil
}

func (m *MockIdempotencyRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

func (m *MockIdempotencyRepository) DeleteExpired(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.keys {
		if v.IsExpired() {
			delete(m.keys, k)
		}
	}
	return nil
}

// NoopCacheService satisfies the cache interface with misses everywhere,
// for tests and for running without Redis.
type NoopCacheService struct{}

var _ interfaces.CacheService = (*NoopCacheService)(nil)

func NewNoopCacheService() *NoopCacheService { return &NoopCacheService{} }

func (n *NoopCacheService) GetAvailability(ctx context.Context, offeringID uuid.UUID) (interface{}, error) {
	return nil, errors.New("cache miss")
}

func (n *NoopCacheService) SetAvailability(ctx context.Context, offeringID uuid.UUID, view interface{}, ttl time.Duration) error {
	return nil
}

func (n *NoopCacheService) InvalidateAvailability(ctx context.Context, offeringID uuid.UUID) error {
	return nil
}

func (n *NoopCacheService) GetStudentMetrics(ctx context.Context, studentID uuid.UUID, kind string) (interface{}, error) {
	return nil, errors.New("cache miss")
}

func (n *NoopCacheService) SetStudentMetrics(ctx context.Context, studentID uuid.UUID, kind string, data interface{}, ttl time.Duration) error {
	return nil
}

func (n *NoopCacheService) InvalidateStudentMetrics(ctx context.Context, studentID uuid.UUID) error {
	return nil
}

func (n *NoopCacheService) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("cache miss")
}

func (n *NoopCacheService) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return nil
}

func (n *NoopCacheService) Delete(ctx context.Context, key string) error { return nil }

func (n *NoopCacheService) Health(ctx context.Context) error { return nil }

func (n *NoopCacheService) Close() error { return nil }
