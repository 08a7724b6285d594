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

var _ interfaces.StudentRepository = (*StudentRepository)(nil)

type StudentRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{db: db, lockTimeout: DefaultLockTimeout}
}

func (r *StudentRepository) Create(ctx context.Context, student *domain.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *StudentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	var student domain.Student
	err := r.db.WithContext(ctx).
		Preload("Program").
		Preload("Program.Department").
		First(&student, "student_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*domain.Student, error) {
	var student domain.Student
	err := r.db.WithContext(ctx).Preload("Program").First(&student, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) ListByProgram(ctx context.Context, programID uuid.UUID) ([]*domain.Student, error) {
	var students []*domain.Student
	err := r.db.WithContext(ctx).Where("program_id = ?", programID).Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

// Delete cascades to the student's enrollments. Seat-occupying rows release
// their seats before the rows go, all in one transaction, so offering
// counters stay consistent with the surviving enrollment set. The schema's
// ON DELETE CASCADE is the backstop, not the mechanism.
func (r *StudentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return serializable(ctx, r.db, r.lockTimeout, "delete student", func(tx *gorm.DB) error {
		var enrollments []domain.Enrollment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("student_id = ?", id).
			Find(&enrollments).Error; err != nil {
			return err
		}

		for _, e := range enrollments {
			if delta := e.SeatDeltaOnDelete(); delta != 0 {
				if err := adjustSeats(tx, e.OfferingID, delta); err != nil {
					return err
				}
			}
		}

		if err := tx.Where("student_id = ?", id).Delete(&domain.Enrollment{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&domain.Student{}, "student_id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &domain.NotFoundError{Entity: "student", ID: id}
		}
		return nil
	})
}
