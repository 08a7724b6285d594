package service

import (
	"context"
	"math"
	"testing"

	domain "academic-registrar/internal/domain/academic"
	"academic-registrar/internal/infrastructure/repository"

	"github.com/google/uuid"
)

type metricsWorld struct {
	mock      *repository.MockAcademicRepository
	metrics   *MetricsService
	programID uuid.UUID

	departmentID uuid.UUID
	instructorID uuid.UUID
}

func newMetricsWorld(t *testing.T) *metricsWorld {
	t.Helper()

	mock := repository.NewMockAcademicRepository()

	departmentID := uuid.New()
	mock.AddDepartment(&domain.Department{DepartmentID: departmentID, Name: "Mathematics"})

	programID := uuid.New()
	mock.AddProgram(&domain.Program{
		ProgramID:    programID,
		Name:         "BSc Mathematics",
		Code:         "BSM",
		DepartmentID: departmentID,
	})

	instructorID := uuid.New()
	mock.AddInstructor(&domain.Instructor{
		InstructorID: instructorID,
		FirstName:    "Emmy",
		LastName:     "Noether",
		DepartmentID: departmentID,
	})

	metrics := NewMetricsService(
		mock.Students(),
		mock.Offerings(),
		mock.Enrollments(),
		repository.NewNoopCacheService(),
	)

	return &metricsWorld{
		mock:         mock,
		metrics:      metrics,
		programID:    programID,
		departmentID: departmentID,
		instructorID: instructorID,
	}
}

func (w *metricsWorld) addStudent(firstName, lastName string) uuid.UUID {
	studentID := uuid.New()
	w.mock.AddStudent(&domain.Student{
		StudentID: studentID,
		FirstName: firstName,
		LastName:  lastName,
		Email:     studentID.String() + "@example.edu",
		ProgramID: w.programID,
		Status:    domain.StudentActive,
	})
	return studentID
}

// addCompletedCourse seeds a course, an offering in the given term and a
// graded enrollment for the student, bypassing the enrollment engine.
func (w *metricsWorld) addCompletedCourse(studentID uuid.UUID, code string, credits int, semester domain.Semester, year int, grade domain.Grade) {
	courseID := uuid.New()
	w.mock.AddCourse(&domain.Course{
		CourseID:     courseID,
		Code:         code,
		Name:         "Course " + code,
		Credits:      credits,
		DepartmentID: w.departmentID,
	})

	offeringID := uuid.New()
	w.mock.AddOffering(&domain.CourseOffering{
		OfferingID:   offeringID,
		CourseID:     courseID,
		InstructorID: w.instructorID,
		Semester:     semester,
		Year:         year,
		MaxStudents:  30,
	})

	// Settle the enrollment through the same transitions production uses.
	created, err := w.mock.Enrollments().Enroll(context.Background(), studentID, offeringID)
	if err != nil {
		panic(err)
	}
	if grade == domain.GradeW {
		_, err = w.mock.Enrollments().Withdraw(context.Background(), created.EnrollmentID)
	} else {
		_, err = w.mock.Enrollments().RecordGrade(context.Background(), created.EnrollmentID, grade)
	}
	if err != nil {
		panic(err)
	}
}

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMetricsService_GPA(t *testing.T) {
	w := newMetricsWorld(t)
	studentID := w.addStudent("Alice", "Ng")

	w.addCompletedCourse(studentID, "MA101", 10, domain.Spring, 2024, domain.GradeA)
	w.addCompletedCourse(studentID, "MA102", 10, domain.Spring, 2024, domain.GradeB)
	w.addCompletedCourse(studentID, "MA201", 10, domain.Fall, 2024, domain.GradeA)
	w.addCompletedCourse(studentID, "MA202", 10, domain.Fall, 2024, domain.GradeF)

	gpa, err := w.metrics.GPA(context.Background(), studentID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gpa == nil {
		t.Fatal("Expected a GPA, got nil")
	}
	// (4.0 + 3.0 + 4.0 + 0.0) / 4
	if !floatEquals(*gpa, 2.75) {
		t.Errorf("Expected GPA 2.75, got %v", *gpa)
	}
}

func TestMetricsService_GPA_ExcludesPassAndWithdrawal(t *testing.T) {
	w := newMetricsWorld(t)
	studentID := w.addStudent("Bob", "Osei")

	w.addCompletedCourse(studentID, "MA101", 10, domain.Spring, 2024, domain.GradeA)
	w.addCompletedCourse(studentID, "MA102", 10, domain.Spring, 2024, domain.GradeC)
	w.addCompletedCourse(studentID, "MA103", 10, domain.Summer, 2024, domain.GradeP)
	w.addCompletedCourse(studentID, "MA104", 10, domain.Summer, 2024, domain.GradeW)

	gpa, err := w.metrics.GPA(context.Background(), studentID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gpa == nil {
		t.Fatal("Expected a GPA, got nil")
	}
	// Only A and C are gradable: (4.0 + 2.0) / 2
	if !floatEquals(*gpa, 3.0) {
		t.Errorf("Expected GPA 3.0, got %v", *gpa)
	}
}

func TestMetricsService_GPA_NoGradableEnrollments(t *testing.T) {
	w := newMetricsWorld(t)
	studentID := w.addStudent("Carol", "Dube")

	gpa, err := w.metrics.GPA(context.Background(), studentID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gpa != nil {
		t.Errorf("Expected nil GPA for no enrollments, got %v", *gpa)
	}

	w.addCompletedCourse(studentID, "MA103", 10, domain.Summer, 2024, domain.GradeP)

	gpa, err = w.metrics.GPA(context.Background(), studentID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gpa != nil {
		t.Errorf("Expected nil GPA with only a P grade, got %v", *gpa)
	}
}

func TestMetricsService_CreditsCompleted(t *testing.T) {
	w := newMetricsWorld(t)
	studentID := w.addStudent("Dan", "Ito")

	w.addCompletedCourse(studentID, "MA101", 10, domain.Spring, 2024, domain.GradeA)
	w.addCompletedCourse(studentID, "MA102", 15, domain.Spring, 2024, domain.GradeD)
	w.addCompletedCourse(studentID, "MA103", 20, domain.Summer, 2024, domain.GradeP)
	w.addCompletedCourse(studentID, "MA104", 10, domain.Fall, 2024, domain.GradeF)
	w.addCompletedCourse(studentID, "MA105", 10, domain.Fall, 2024, domain.GradeW)

	credits, err := w.metrics.CreditsCompleted(context.Background(), studentID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	// A(10) + D(15) + P(20); F and W earn nothing.
	if credits != 45 {
		t.Errorf("Expected 45 credits, got %d", credits)
	}
}

func TestMetricsService_Transcript_Ordering(t *testing.T) {
	w := newMetricsWorld(t)
	studentID := w.addStudent("Eve", "Aku")

	// Inserted out of order on purpose.
	w.addCompletedCourse(studentID, "MA301", 10, domain.Fall, 2025, domain.GradeA)
	w.addCompletedCourse(studentID, "MA102", 10, domain.Fall, 2024, domain.GradeB)
	w.addCompletedCourse(studentID, "MA101", 10, domain.Fall, 2024, domain.GradeA)
	w.addCompletedCourse(studentID, "MA201", 10, domain.Spring, 2025, domain.GradeC)
	w.addCompletedCourse(studentID, "MA250", 10, domain.Summer, 2025, domain.GradeP)

	transcript, err := w.metrics.Transcript(context.Background(), studentID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	wantOrder := []string{"MA101", "MA102", "MA201", "MA250", "MA301"}
	if len(transcript) != len(wantOrder) {
		t.Fatalf("Expected %d entries, got %d", len(wantOrder), len(transcript))
	}
	for i, code := range wantOrder {
		if transcript[i].CourseCode != code {
			t.Errorf("Entry %d: expected %s, got %s", i, code, transcript[i].CourseCode)
		}
	}

	if transcript[0].Term != "Fall 2024" {
		t.Errorf("Expected term 'Fall 2024', got %q", transcript[0].Term)
	}
	if transcript[0].Instructor != "Emmy Noether" {
		t.Errorf("Expected instructor 'Emmy Noether', got %q", transcript[0].Instructor)
	}
	if transcript[0].GradePoints == nil || *transcript[0].GradePoints != 4.0 {
		t.Errorf("Expected 4.0 grade points for A, got %v", transcript[0].GradePoints)
	}
	// P carries no grade points.
	if transcript[3].GradePoints != nil {
		t.Errorf("Expected nil grade points for P, got %v", *transcript[3].GradePoints)
	}
}

func TestMetricsService_ProgramRank_CompetitionRanking(t *testing.T) {
	w := newMetricsWorld(t)

	top := w.addStudent("Ana", "Top")
	tiedA := w.addStudent("Ben", "Tied")
	tiedB := w.addStudent("Cy", "Tied")
	last := w.addStudent("Dee", "Last")
	ungraded := w.addStudent("Eli", "NoGrades")

	w.addCompletedCourse(top, "MA101", 10, domain.Spring, 2024, domain.GradeA)
	w.addCompletedCourse(tiedA, "MA102", 10, domain.Spring, 2024, domain.GradeB)
	w.addCompletedCourse(tiedB, "MA103", 10, domain.Spring, 2024, domain.GradeB)
	w.addCompletedCourse(last, "MA104", 10, domain.Spring, 2024, domain.GradeC)
	w.addCompletedCourse(ungraded, "MA105", 10, domain.Spring, 2024, domain.GradeP)

	ranking, err := w.metrics.ProgramRank(context.Background(), w.programID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Eli has no gradable enrollments and is omitted.
	if len(ranking) != 4 {
		t.Fatalf("Expected 4 ranked students, got %d", len(ranking))
	}

	if ranking[0].StudentID != top || ranking[0].Rank != 1 {
		t.Errorf("Expected Ana ranked 1, got %s at rank %d", ranking[0].StudentName, ranking[0].Rank)
	}
	if ranking[1].Rank != 2 || ranking[2].Rank != 2 {
		t.Errorf("Expected tied ranks 2 and 2, got %d and %d", ranking[1].Rank, ranking[2].Rank)
	}
	if !floatEquals(ranking[1].GPA, 3.0) || !floatEquals(ranking[2].GPA, 3.0) {
		t.Errorf("Expected tied GPAs 3.0, got %v and %v", ranking[1].GPA, ranking[2].GPA)
	}
	// After a two-way tie at rank 2, the next rank is 4, not 3.
	if ranking[3].StudentID != last || ranking[3].Rank != 4 {
		t.Errorf("Expected Dee ranked 4, got %s at rank %d", ranking[3].StudentName, ranking[3].Rank)
	}
}

func TestMetricsService_Availability(t *testing.T) {
	w := newMetricsWorld(t)

	courseID := uuid.New()
	w.mock.AddCourse(&domain.Course{
		CourseID:     courseID,
		Code:         "MA400",
		Name:         "Topology",
		Credits:      10,
		DepartmentID: w.departmentID,
	})
	offeringID := uuid.New()
	w.mock.AddOffering(&domain.CourseOffering{
		OfferingID:        offeringID,
		CourseID:          courseID,
		InstructorID:      w.instructorID,
		Semester:          domain.Fall,
		Year:              2025,
		MaxStudents:       10,
		CurrentEnrollment: 9,
	})

	view, err := w.metrics.Availability(context.Background(), offeringID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if view.SeatsRemaining != 1 {
		t.Errorf("Expected 1 seat remaining, got %d", view.SeatsRemaining)
	}
	if view.Status != domain.OfferingAlmostFull {
		t.Errorf("Expected Almost Full, got %s", view.Status)
	}

	if _, err := w.metrics.Availability(context.Background(), uuid.New()); err == nil {
		t.Error("Expected an error for unknown offering")
	}
}

func TestMetricsService_AvailableCourses(t *testing.T) {
	w := newMetricsWorld(t)

	for i, code := range []string{"MA502", "MA501"} {
		courseID := uuid.New()
		w.mock.AddCourse(&domain.Course{
			CourseID:     courseID,
			Code:         code,
			Name:         "Course " + code,
			Credits:      10,
			DepartmentID: w.departmentID,
		})
		w.mock.AddOffering(&domain.CourseOffering{
			OfferingID:        uuid.New(),
			CourseID:          courseID,
			InstructorID:      w.instructorID,
			Semester:          domain.Fall,
			Year:              2025,
			Room:              "B-10",
			MaxStudents:       30,
			CurrentEnrollment: i,
		})
	}

	listings, err := w.metrics.AvailableCourses(context.Background(), domain.Fall, 2025)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("Expected 2 listings, got %d", len(listings))
	}
	if listings[0].CourseCode != "MA501" || listings[1].CourseCode != "MA502" {
		t.Errorf("Expected listings ordered by course code, got %s then %s",
			listings[0].CourseCode, listings[1].CourseCode)
	}

	other, err := w.metrics.AvailableCourses(context.Background(), domain.Spring, 2025)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(other) != 0 {
		t.Errorf("Expected no listings for an empty term, got %d", len(other))
	}
}
