package repository

import (
	"context"
	"errors"

	domain "academic-registrar/internal/domain/academic"
	interfaces "academic-registrar/internal/interfaces/infrastructure"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var _ interfaces.ProgramRepository = (*ProgramRepository)(nil)

type ProgramRepository struct {
	db *gorm.DB
}

func NewProgramRepository(db *gorm.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

func (r *ProgramRepository) Create(ctx context.Context, program *domain.Program) error {
	err := r.db.WithContext(ctx).Create(program).Error
	if isFKViolation(err) {
		return &domain.ReferentialError{Entity: "program", ID: program.ProgramID, Cause: err}
	}
	return err
}

func (r *ProgramRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Program, error) {
	var program domain.Program
	err := r.db.WithContext(ctx).Preload("Department").First(&program, "program_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &program, nil
}

func (r *ProgramRepository) GetByCode(ctx context.Context, code string) (*domain.Program, error) {
	var program domain.Program
	err := r.db.WithContext(ctx).Preload("Department").First(&program, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &program, nil
}

func (r *ProgramRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var students int64
	if err := r.db.WithContext(ctx).Model(&domain.Student{}).
		Where("program_id = ?", id).Count(&students).Error; err != nil {
		return err
	}
	if students > 0 {
		return &domain.ReferentialError{Entity: "program", ID: id,
			Cause: errors.New("students reference this program")}
	}

	res := r.db.WithContext(ctx).Delete(&domain.Program{}, "program_id = ?", id)
	if isFKViolation(res.Error) {
		return &domain.ReferentialError{Entity: "program", ID: id, Cause: res.Error}
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &domain.NotFoundError{Entity: "program", ID: id}
	}
	return nil
}
