package repository

import (
	"context"
	"errors"

	domain "academic-registrar/internal/domain/academic"
	interfaces "academic-registrar/internal/interfaces/infrastructure"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var _ interfaces.CourseRepository = (*CourseRepository)(nil)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, course *domain.Course) error {
	err := r.db.WithContext(ctx).Create(course).Error
	if isFKViolation(err) {
		return &domain.ReferentialError{Entity: "course", ID: course.CourseID, Cause: err}
	}
	return err
}

func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	var course domain.Course
	err := r.db.WithContext(ctx).Preload("Department").First(&course, "course_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) GetByCode(ctx context.Context, code string) (*domain.Course, error) {
	var course domain.Course
	err := r.db.WithContext(ctx).Preload("Department").First(&course, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var offerings int64
	if err := r.db.WithContext(ctx).Model(&domain.CourseOffering{}).
		Where("course_id = ?", id).Count(&offerings).Error; err != nil {
		return err
	}
	if offerings > 0 {
		return &domain.ReferentialError{Entity: "course", ID: id,
			Cause: errors.New("offerings reference this course")}
	}

	res := r.db.WithContext(ctx).Delete(&domain.Course{}, "course_id = ?", id)
	if isFKViolation(res.Error) {
		return &domain.ReferentialError{Entity: "course", ID: id, Cause: res.Error}
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &domain.NotFoundError{Entity: "course", ID: id}
	}
	return nil
}
