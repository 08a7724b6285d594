package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	domain "academic-registrar/internal/domain/academic"
	interfaces "academic-registrar/internal/interfaces/infrastructure"
	serviceInterfaces "academic-registrar/internal/interfaces/service"
	"academic-registrar/pkg/logger"

	"github.com/google/uuid"
)

var _ serviceInterfaces.MetricsService = (*MetricsService)(nil)

type TranscriptEntry = serviceInterfaces.TranscriptEntry
type RankEntry = serviceInterfaces.RankEntry
type AvailabilityView = serviceInterfaces.AvailabilityView
type OfferingListing = serviceInterfaces.OfferingListing

// MetricsService is the derived-metrics engine: pure reads over settled
// enrollment state, recomputed per call with a short-TTL cache in front.
type MetricsService struct {
	studentRepo    interfaces.StudentRepository
	offeringRepo   interfaces.OfferingRepository
	enrollmentRepo interfaces.EnrollmentRepository
	cacheService   interfaces.CacheService
}

func NewMetricsService(
	studentRepo interfaces.StudentRepository,
	offeringRepo interfaces.OfferingRepository,
	enrollmentRepo interfaces.EnrollmentRepository,
	cacheService interfaces.CacheService,
) *MetricsService {
	return &MetricsService{
		studentRepo:    studentRepo,
		offeringRepo:   offeringRepo,
		enrollmentRepo: enrollmentRepo,
		cacheService:   cacheService,
	}
}

// GPA averages the grade points of gradable enrollments (A-F). P and W
// carry no grade points and are excluded. Returns nil when no gradable
// enrollment exists.
func (s *MetricsService) GPA(ctx context.Context, studentID uuid.UUID) (*float64, error) {
	if cached, err := s.cacheService.GetStudentMetrics(ctx, studentID, "gpa"); err == nil {
		if rawJSON, ok := cached.(json.RawMessage); ok {
			var gpa *float64
			if err := json.Unmarshal(rawJSON, &gpa); err == nil {
				return gpa, nil
			}
		}
	}

	enrollments, err := s.enrollmentRepo.GetByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollments for GPA: %w", err)
	}

	gpa := computeGPA(enrollments)

	if err := s.cacheService.SetStudentMetrics(ctx, studentID, "gpa", gpa, StudentMetricsTTL); err != nil {
		logger.Warn("Failed to cache GPA for student %s: %v", studentID, err)
	}

	return gpa, nil
}

func computeGPA(enrollments []*domain.Enrollment) *float64 {
	var sum float64
	var count int
	for _, e := range enrollments {
		if e.Grade == nil {
			continue
		}
		if points, ok := e.Grade.Points(); ok {
			sum += points
			count++
		}
	}
	if count == 0 {
		return nil
	}
	gpa := sum / float64(count)
	return &gpa
}

// Transcript returns the student's full course history ordered by year,
// then semester (Spring < Summer < Fall), then course code. Recomputed
// from current state on every call.
func (s *MetricsService) Transcript(ctx context.Context, studentID uuid.UUID) ([]TranscriptEntry, error) {
	enrollments, err := s.enrollmentRepo.GetByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollments for transcript: %w", err)
	}

	sort.Slice(enrollments, func(i, j int) bool {
		oi, oj := enrollments[i].Offering, enrollments[j].Offering
		if oi.Year != oj.Year {
			return oi.Year < oj.Year
		}
		if oi.Semester.Order() != oj.Semester.Order() {
			return oi.Semester.Order() < oj.Semester.Order()
		}
		return oi.Course.Code < oj.Course.Code
	})

	entries := make([]TranscriptEntry, 0, len(enrollments))
	for _, e := range enrollments {
		entry := TranscriptEntry{
			CourseCode: e.Offering.Course.Code,
			CourseName: e.Offering.Course.Name,
			Credits:    e.Offering.Course.Credits,
			Term:       fmt.Sprintf("%s %d", e.Offering.Semester, e.Offering.Year),
			Instructor: e.Offering.Instructor.FirstName + " " + e.Offering.Instructor.LastName,
			Grade:      e.Grade,
		}
		if e.Grade != nil {
			if points, ok := e.Grade.Points(); ok {
				entry.GradePoints = &points
			}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// ProgramRank orders a program's students by GPA descending with standard
// competition ranking: tied GPAs share a rank and the next distinct GPA
// takes the rank after the tied block. Students with no gradable
// enrollments are omitted.
func (s *MetricsService) ProgramRank(ctx context.Context, programID uuid.UUID) ([]RankEntry, error) {
	students, err := s.studentRepo.ListByProgram(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to list program students: %w", err)
	}

	entries := make([]RankEntry, 0, len(students))
	for _, student := range students {
		enrollments, err := s.enrollmentRepo.GetByStudent(ctx, student.StudentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get enrollments for student %s: %w", student.StudentID, err)
		}
		gpa := computeGPA(enrollments)
		if gpa == nil {
			continue
		}
		entries = append(entries, RankEntry{
			StudentID:   student.StudentID,
			StudentName: student.FirstName + " " + student.LastName,
			GPA:         *gpa,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].GPA != entries[j].GPA {
			return entries[i].GPA > entries[j].GPA
		}
		return entries[i].StudentName < entries[j].StudentName
	})

	for i := range entries {
		if i > 0 && entries[i].GPA == entries[i-1].GPA {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}

	return entries, nil
}

// CreditsCompleted sums course credits over completed enrollments with a
// passing grade (A, B, C, D or P).
func (s *MetricsService) CreditsCompleted(ctx context.Context, studentID uuid.UUID) (int, error) {
	enrollments, err := s.enrollmentRepo.GetByStudent(ctx, studentID)
	if err != nil {
		return 0, fmt.Errorf("failed to get enrollments for credits: %w", err)
	}

	var credits int
	for _, e := range enrollments {
		if e.Status != domain.StatusCompleted || e.Grade == nil {
			continue
		}
		if e.Grade.Passing() {
			credits += e.Offering.Course.Credits
		}
	}

	return credits, nil
}

// Availability reports remaining seats and the Full / Almost Full /
// Available classification for one offering.
func (s *MetricsService) Availability(ctx context.Context, offeringID uuid.UUID) (*AvailabilityView, error) {
	if cached, err := s.cacheService.GetAvailability(ctx, offeringID); err == nil {
		if rawJSON, ok := cached.(json.RawMessage); ok {
			var view AvailabilityView
			if err := json.Unmarshal(rawJSON, &view); err == nil {
				return &view, nil
			}
		}
	}

	offering, err := s.offeringRepo.GetByID(ctx, offeringID)
	if err != nil {
		return nil, fmt.Errorf("failed to get offering: %w", err)
	}
	if offering == nil {
		return nil, &domain.NotFoundError{Entity: "offering", ID: offeringID}
	}

	view := &AvailabilityView{
		OfferingID:     offering.OfferingID,
		MaxStudents:    offering.MaxStudents,
		Enrolled:       offering.CurrentEnrollment,
		SeatsRemaining: offering.SeatsRemaining(),
		Status:         offering.Availability(),
	}

	if err := s.cacheService.SetAvailability(ctx, offeringID, view, AvailabilityTTL); err != nil {
		logger.Warn("Failed to cache availability for offering %s: %v", offeringID, err)
	}

	return view, nil
}

// AvailableCourses lists a term's offerings with seat availability, ordered
// by course code.
func (s *MetricsService) AvailableCourses(ctx context.Context, semester domain.Semester, year int) ([]OfferingListing, error) {
	offerings, err := s.offeringRepo.GetByTerm(ctx, semester, year)
	if err != nil {
		return nil, fmt.Errorf("failed to get offerings for term: %w", err)
	}

	listings := make([]OfferingListing, 0, len(offerings))
	for _, o := range offerings {
		listings = append(listings, OfferingListing{
			OfferingID:     o.OfferingID,
			CourseCode:     o.Course.Code,
			CourseName:     o.Course.Name,
			Credits:        o.Course.Credits,
			Level:          o.Course.Level,
			Instructor:     o.Instructor.FirstName + " " + o.Instructor.LastName,
			Room:           o.Room,
			MaxStudents:    o.MaxStudents,
			Enrolled:       o.CurrentEnrollment,
			SeatsRemaining: o.SeatsRemaining(),
			Status:         o.Availability(),
		})
	}

	sort.Slice(listings, func(i, j int) bool {
		return listings[i].CourseCode < listings[j].CourseCode
	})

	return listings, nil
}
