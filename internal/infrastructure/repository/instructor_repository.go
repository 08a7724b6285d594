package repository

import (
	"context"
	"errors"

	domain "academic-registrar/internal/domain/academic"
	interfaces "academic-registrar/internal/interfaces/infrastructure"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var _ interfaces.InstructorRepository = (*InstructorRepository)(nil)

type InstructorRepository struct {
	db *gorm.DB
}

func NewInstructorRepository(db *gorm.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

func (r *InstructorRepository) Create(ctx context.Context, instructor *domain.Instructor) error {
	err := r.db.WithContext(ctx).Create(instructor).Error
	if isFKViolation(err) {
		return &domain.ReferentialError{Entity: "instructor", ID: instructor.InstructorID, Cause: err}
	}
	return err
}

func (r *InstructorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Instructor, error) {
	var instructor domain.Instructor
	err := r.db.WithContext(ctx).Preload("Department").First(&instructor, "instructor_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &instructor, nil
}

func (r *InstructorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var offerings int64
	if err := r.db.WithContext(ctx).Model(&domain.CourseOffering{}).
		Where("instructor_id = ?", id).Count(&offerings).Error; err != nil {
		return err
	}
	if offerings > 0 {
		return &domain.ReferentialError{Entity: "instructor", ID: id,
			Cause: errors.New("offerings reference this instructor")}
	}

	res := r.db.WithContext(ctx).Delete(&domain.Instructor{}, "instructor_id = ?", id)
	if isFKViolation(res.Error) {
		return &domain.ReferentialError{Entity: "instructor", ID: id, Cause: res.Error}
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &domain.NotFoundError{Entity: "instructor", ID: id}
	}
	return nil
}
