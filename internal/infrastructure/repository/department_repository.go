package repository

import (
	"context"
	"errors"

	domain "academic-registrar/internal/domain/academic"
	interfaces "academic-registrar/internal/interfaces/infrastructure"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var _ interfaces.DepartmentRepository = (*DepartmentRepository)(nil)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) Create(ctx context.Context, department *domain.Department) error {
	return r.db.WithContext(ctx).Create(department).Error
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error) {
	var department domain.Department
	err := r.db.WithContext(ctx).First(&department, "department_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &department, nil
}

func (r *DepartmentRepository) GetByName(ctx context.Context, name string) (*domain.Department, error) {
	var department domain.Department
	err := r.db.WithContext(ctx).First(&department, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &department, nil
}

func (r *DepartmentRepository) List(ctx context.Context) ([]*domain.Department, error) {
	var departments []*domain.Department
	err := r.db.WithContext(ctx).Order("name").Find(&departments).Error
	if err != nil {
		return nil, err
	}
	return departments, nil
}

// Delete refuses while programs, courses or instructors still reference the
// department. The schema's RESTRICT foreign keys back this up.
func (r *DepartmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	for _, dep := range []struct {
		model interface{}
		what  string
	}{
		{&domain.Program{}, "programs"},
		{&domain.Course{}, "courses"},
		{&domain.Instructor{}, "instructors"},
	} {
		var count int64
		if err := r.db.WithContext(ctx).Model(dep.model).
			Where("department_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &domain.ReferentialError{Entity: "department", ID: id,
				Cause: errors.New(dep.what + " reference this department")}
		}
	}

	res := r.db.WithContext(ctx).Delete(&domain.Department{}, "department_id = ?", id)
	if isFKViolation(res.Error) {
		return &domain.ReferentialError{Entity: "department", ID: id, Cause: res.Error}
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &domain.NotFoundError{Entity: "department", ID: id}
	}
	return nil
}
