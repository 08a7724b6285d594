package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	domain "academic-registrar/internal/domain/academic"
	interfaces "academic-registrar/internal/interfaces/infrastructure"
	serviceInterfaces "academic-registrar/internal/interfaces/service"
	"academic-registrar/pkg/logger"

	"github.com/google/uuid"
)

const (
	AvailabilityTTL       = 30 * time.Second
	StudentMetricsTTL     = 5 * time.Minute
	DefaultIdempotencyTTL = 24 * time.Hour
)

var _ serviceInterfaces.EnrollmentService = (*EnrollmentService)(nil)

type EnrollRequest = serviceInterfaces.EnrollRequest
type EnrollResponse = serviceInterfaces.EnrollResponse

// EnrollmentService orchestrates the write side of the enrollment engine.
// Validation and orchestration happen here; atomicity of the (row, counter)
// pair is the repository's contract.
type EnrollmentService struct {
	studentRepo     interfaces.StudentRepository
	offeringRepo    interfaces.OfferingRepository
	enrollmentRepo  interfaces.EnrollmentRepository
	idempotencyRepo interfaces.IdempotencyRepository
	cacheService    interfaces.CacheService
}

func NewEnrollmentService(
	studentRepo interfaces.StudentRepository,
	offeringRepo interfaces.OfferingRepository,
	enrollmentRepo interfaces.EnrollmentRepository,
	idempotencyRepo interfaces.IdempotencyRepository,
	cacheService interfaces.CacheService,
) *EnrollmentService {
	return &EnrollmentService{
		studentRepo:     studentRepo,
		offeringRepo:    offeringRepo,
		enrollmentRepo:  enrollmentRepo,
		idempotencyRepo: idempotencyRepo,
		cacheService:    cacheService,
	}
}

// Enroll registers a student into an offering. A ContentionTimeout from the
// store is surfaced to the caller unretried; a caller retrying with the same
// idempotency key gets the stored response instead of a second seat.
func (s *EnrollmentService) Enroll(ctx context.Context, req *EnrollRequest) (*EnrollResponse, error) {
	logger.Info("Processing enrollment for student %s into offering %s", req.StudentID, req.OfferingID)

	if req.IdempotencyKey != "" {
		existing, isDuplicate, err := s.checkIdempotency(ctx, req.IdempotencyKey, req.StudentID, req)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if isDuplicate {
			var cached EnrollResponse
			if err := json.Unmarshal([]byte(existing.ResponseData), &cached); err == nil {
				logger.Info("Returning stored response for idempotency key %s", req.IdempotencyKey)
				return &cached, nil
			}
		}
	}

	student, err := s.studentRepo.GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up student: %w", err)
	}
	if student == nil {
		return nil, &domain.NotFoundError{Entity: "student", ID: req.StudentID}
	}
	if student.Status != domain.StudentActive {
		return nil, fmt.Errorf("student %s is not active (status %s)", student.StudentID, student.Status)
	}

	enrollment, err := s.enrollmentRepo.Enroll(ctx, req.StudentID, req.OfferingID)
	if err != nil {
		return nil, err
	}

	logger.Info("Enrolled student %s into offering %s as enrollment %s",
		req.StudentID, req.OfferingID, enrollment.EnrollmentID)

	s.invalidateReadCaches(ctx, req.StudentID, req.OfferingID)

	response := &EnrollResponse{
		EnrollmentID: enrollment.EnrollmentID,
		StudentID:    enrollment.StudentID,
		OfferingID:   enrollment.OfferingID,
		Status:       string(enrollment.Status),
		EnrolledAt:   enrollment.EnrollmentDate,
	}

	if req.IdempotencyKey != "" {
		if err := s.storeIdempotencyResult(ctx, req.IdempotencyKey, req.StudentID, req, response, 200); err != nil {
			logger.Warn("Failed to store idempotency result: %v", err)
		}
	}

	return response, nil
}

// SetGrade records a final grade. The repository rejects regrades of
// completed enrollments with a GradeLockError.
func (s *EnrollmentService) SetGrade(ctx context.Context, enrollmentID uuid.UUID, grade domain.Grade) (*domain.Enrollment, error) {
	logger.Info("Recording grade %s for enrollment %s", grade, enrollmentID)

	enrollment, err := s.enrollmentRepo.RecordGrade(ctx, enrollmentID, grade)
	if err != nil {
		return nil, err
	}

	s.invalidateReadCaches(ctx, enrollment.StudentID, enrollment.OfferingID)
	return enrollment, nil
}

// Withdraw drops the student from the offering, releasing the seat.
func (s *EnrollmentService) Withdraw(ctx context.Context, enrollmentID uuid.UUID) (*domain.Enrollment, error) {
	logger.Info("Processing withdrawal for enrollment %s", enrollmentID)

	enrollment, err := s.enrollmentRepo.Withdraw(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	logger.Info("Withdrew enrollment %s, seat released on offering %s",
		enrollment.EnrollmentID, enrollment.OfferingID)

	s.invalidateReadCaches(ctx, enrollment.StudentID, enrollment.OfferingID)
	return enrollment, nil
}

func (s *EnrollmentService) GetStudentEnrollments(ctx context.Context, studentID uuid.UUID) ([]*domain.Enrollment, error) {
	enrollments, err := s.enrollmentRepo.GetByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student enrollments: %w", err)
	}
	return enrollments, nil
}

// invalidateReadCaches drops the stale read-side snapshots after a write.
// Failures only log; the cache self-corrects on the next miss.
func (s *EnrollmentService) invalidateReadCaches(ctx context.Context, studentID, offeringID uuid.UUID) {
	if err := s.cacheService.InvalidateAvailability(ctx, offeringID); err != nil {
		logger.Warn("Failed to invalidate availability cache for offering %s: %v", offeringID, err)
	}
	if err := s.cacheService.InvalidateStudentMetrics(ctx, studentID); err != nil {
		logger.Warn("Failed to invalidate metrics cache for student %s: %v", studentID, err)
	}
}

func (s *EnrollmentService) checkIdempotency(ctx context.Context, key string, studentID uuid.UUID, requestData interface{}) (*domain.IdempotencyKey, bool, error) {
	existingKey, err := s.idempotencyRepo.GetByKey(ctx, key)
	if err != nil {
		if err.Error() == "idempotency key not found" {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	if existingKey != nil {
		if existingKey.IsExpired() {
			if err := s.idempotencyRepo.Delete(ctx, key); err != nil {
				logger.Warn("Failed to delete expired idempotency key %s: %v", key, err)
			}
			return nil, false, nil
		}

		requestHash := generateRequestHash(studentID, requestData)
		if existingKey.RequestHash == requestHash {
			return existingKey, true, nil
		}
		return nil, false, fmt.Errorf("idempotency key already used with different request data")
	}

	return nil, false, nil
}

func (s *EnrollmentService) storeIdempotencyResult(ctx context.Context, key string, studentID uuid.UUID, requestData interface{}, responseData interface{}, statusCode int) error {
	responseJSON, err := json.Marshal(responseData)
	if err != nil {
		return fmt.Errorf("failed to marshal response data: %w", err)
	}

	idempotencyKey := &domain.IdempotencyKey{
		Key:          key,
		StudentID:    studentID,
		RequestHash:  generateRequestHash(studentID, requestData),
		ResponseData: string(responseJSON),
		StatusCode:   statusCode,
		ProcessedAt:  time.Now(),
		ExpiresAt:    time.Now().Add(DefaultIdempotencyTTL),
		CreatedAt:    time.Now(),
	}

	return s.idempotencyRepo.Create(ctx, idempotencyKey)
}

func generateRequestHash(studentID uuid.UUID, requestData interface{}) string {
	data := map[string]any{
		"student_id":   studentID.String(),
		"request_data": requestData,
	}

	jsonData, _ := json.Marshal(data)
	hash := sha256.Sum256(jsonData)
	return hex.EncodeToString(hash[:])
}
