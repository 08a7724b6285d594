package repository

import (
	"context"
	"errors"

	domain "academic-registrar/internal/domain/academic"
	interfaces "academic-registrar/internal/interfaces/infrastructure"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var _ interfaces.OfferingRepository = (*OfferingRepository)(nil)

type OfferingRepository struct {
	db *gorm.DB
}

func NewOfferingRepository(db *gorm.DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

func (r *OfferingRepository) Create(ctx context.Context, offering *domain.CourseOffering) error {
	err := r.db.WithContext(ctx).Create(offering).Error
	if isFKViolation(err) {
		return &domain.ReferentialError{Entity: "offering", ID: offering.OfferingID, Cause: err}
	}
	return err
}

func (r *OfferingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CourseOffering, error) {
	var offering domain.CourseOffering
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Instructor").
		First(&offering, "offering_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offering, nil
}

func (r *OfferingRepository) GetByTerm(ctx context.Context, semester domain.Semester, year int) ([]*domain.CourseOffering, error) {
	var offerings []*domain.CourseOffering
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Instructor").
		Joins("JOIN courses ON courses.course_id = course_offerings.course_id").
		Where("course_offerings.semester = ? AND course_offerings.year = ?", semester, year).
		Order("courses.code").
		Find(&offerings).Error
	if err != nil {
		return nil, err
	}
	return offerings, nil
}

func (r *OfferingRepository) GetByCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.CourseOffering, error) {
	var offerings []*domain.CourseOffering
	err := r.db.WithContext(ctx).
		Preload("Instructor").
		Where("course_id = ?", courseID).
		Order("year DESC, semester").
		Find(&offerings).Error
	if err != nil {
		return nil, err
	}
	return offerings, nil
}

func (r *OfferingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var dependents int64
	if err := r.db.WithContext(ctx).Model(&domain.Enrollment{}).
		Where("offering_id = ?", id).Count(&dependents).Error; err != nil {
		return err
	}
	if dependents > 0 {
		return &domain.ReferentialError{Entity: "offering", ID: id,
			Cause: errors.New("enrollments reference this offering")}
	}

	res := r.db.WithContext(ctx).Delete(&domain.CourseOffering{}, "offering_id = ?", id)
	if isFKViolation(res.Error) {
		return &domain.ReferentialError{Entity: "offering", ID: id, Cause: res.Error}
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &domain.NotFoundError{Entity: "offering", ID: id}
	}
	return nil
}
