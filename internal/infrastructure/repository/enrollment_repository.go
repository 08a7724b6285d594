package repository

import (
	"context"
	"errors"
	"time"

	domain "academic-registrar/internal/domain/academic"
	interfaces "academic-registrar/internal/interfaces/infrastructure"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ interfaces.EnrollmentRepository = (*EnrollmentRepository)(nil)

// EnrollmentRepository enforces capacity and grade-lifecycle rules at the
// storage layer. Every mutation couples the enrollment row change with the
// offering's seat counter in one serializable transaction, so readers never
// observe one without the other.
type EnrollmentRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db, lockTimeout: DefaultLockTimeout}
}

// seatOccupying are the statuses that hold a seat and define row liveness
// for the duplicate check. A student may re-enroll after a withdrawal or a
// fail; those rows stay behind as history.
var seatOccupying = []domain.EnrollmentStatus{domain.StatusEnrolled, domain.StatusCompleted}

// Enroll performs the check-and-increment and the row insert as one atomic
// unit. The conditional update on the offering row serializes concurrent
// enrolls per offering: at the last open seat exactly one transaction's
// guard matches.
func (r *EnrollmentRepository) Enroll(ctx context.Context, studentID, offeringID uuid.UUID) (*domain.Enrollment, error) {
	var enrollment *domain.Enrollment

	err := serializable(ctx, r.db, r.lockTimeout, "enroll", func(tx *gorm.DB) error {
		var existing domain.Enrollment
		err := tx.Where("student_id = ? AND offering_id = ? AND status IN ?", studentID, offeringID, seatOccupying).
			First(&existing).Error
		if err == nil {
			return &domain.DuplicateEnrollmentError{
				StudentID:  studentID,
				OfferingID: offeringID,
				Status:     existing.Status,
			}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		res := tx.Model(&domain.CourseOffering{}).
			Where("offering_id = ? AND current_enrollment < max_students", offeringID).
			Updates(map[string]interface{}{
				"current_enrollment": gorm.Expr("current_enrollment + 1"),
				"version":            gorm.Expr("version + 1"),
				"updated_at":         time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var offering domain.CourseOffering
			if err := tx.First(&offering, "offering_id = ?", offeringID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &domain.NotFoundError{Entity: "offering", ID: offeringID}
				}
				return err
			}
			return &domain.CapacityError{OfferingID: offeringID, MaxStudents: offering.MaxStudents}
		}

		enrollment = &domain.Enrollment{
			EnrollmentID:   uuid.New(),
			StudentID:      studentID,
			OfferingID:     offeringID,
			EnrollmentDate: time.Now(),
			Status:         domain.StatusEnrolled,
			Version:        1,
		}
		return tx.Create(enrollment).Error
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

// RecordGrade loads the row under a lock, applies the lifecycle transition
// and persists the row plus any seat release together.
func (r *EnrollmentRepository) RecordGrade(ctx context.Context, enrollmentID uuid.UUID, grade domain.Grade) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment

	err := serializable(ctx, r.db, r.lockTimeout, "record grade", func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&enrollment, "enrollment_id = ?", enrollmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.NotFoundError{Entity: "enrollment", ID: enrollmentID}
			}
			return err
		}

		delta, err := enrollment.RecordGrade(grade)
		if err != nil {
			return err
		}

		enrollment.Version++
		enrollment.UpdatedAt = time.Now()
		if err := tx.Model(&domain.Enrollment{}).
			Where("enrollment_id = ?", enrollmentID).
			Updates(map[string]interface{}{
				"grade":      enrollment.Grade,
				"status":     enrollment.Status,
				"version":    enrollment.Version,
				"updated_at": enrollment.UpdatedAt,
			}).Error; err != nil {
			return err
		}

		if delta != 0 {
			return adjustSeats(tx, enrollment.OfferingID, delta)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Withdraw releases the seat and records a W grade atomically.
func (r *EnrollmentRepository) Withdraw(ctx context.Context, enrollmentID uuid.UUID) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment

	err := serializable(ctx, r.db, r.lockTimeout, "withdraw", func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&enrollment, "enrollment_id = ?", enrollmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.NotFoundError{Entity: "enrollment", ID: enrollmentID}
			}
			return err
		}

		delta, err := enrollment.Withdraw()
		if err != nil {
			return err
		}

		enrollment.Version++
		enrollment.UpdatedAt = time.Now()
		if err := tx.Model(&domain.Enrollment{}).
			Where("enrollment_id = ?", enrollmentID).
			Updates(map[string]interface{}{
				"grade":      enrollment.Grade,
				"status":     enrollment.Status,
				"version":    enrollment.Version,
				"updated_at": enrollment.UpdatedAt,
			}).Error; err != nil {
			return err
		}

		return adjustSeats(tx, enrollment.OfferingID, delta)
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Offering").
		Preload("Offering.Course").
		Preload("Offering.Instructor").
		First(&enrollment, "enrollment_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) GetByStudent(ctx context.Context, studentID uuid.UUID) ([]*domain.Enrollment, error) {
	var enrollments []*domain.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Offering").
		Preload("Offering.Course").
		Preload("Offering.Instructor").
		Where("student_id = ?", studentID).
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *EnrollmentRepository) GetByOffering(ctx context.Context, offeringID uuid.UUID) ([]*domain.Enrollment, error) {
	var enrollments []*domain.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("offering_id = ?", offeringID).
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}
