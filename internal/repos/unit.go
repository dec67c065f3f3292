package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courseforge/courseforge-backend/internal/logger"
	"github.com/courseforge/courseforge-backend/internal/types"
)

type UnitRepo interface {
	Create(ctx context.Context, tx *gorm.DB, units []*types.Unit) ([]*types.Unit, error)
	GetByID(ctx context.Context, tx *gorm.DB, unitID uuid.UUID) (*types.Unit, error)
	GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Unit, error)
}

type unitRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUnitRepo(db *gorm.DB, baseLog *logger.Logger) UnitRepo {
	repoLog := baseLog.With("repo", "UnitRepo")
	return &unitRepo{db: db, log: repoLog}
}

func (ur *unitRepo) Create(ctx context.Context, tx *gorm.DB, units []*types.Unit) ([]*types.Unit, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	if len(units) == 0 {
		return []*types.Unit{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

func (ur *unitRepo) GetByID(ctx context.Context, tx *gorm.DB, unitID uuid.UUID) (*types.Unit, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var result types.Unit
	if err := transaction.WithContext(ctx).
		Where("id = ?", unitID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (ur *unitRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Unit, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var results []*types.Unit
	if err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
