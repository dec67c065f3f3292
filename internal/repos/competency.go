package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courseforge/courseforge-backend/internal/logger"
	"github.com/courseforge/courseforge-backend/internal/types"
)

type CompetencyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, competencies []*types.Competency) ([]*types.Competency, error)
	GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Competency, error)
}

type competencyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompetencyRepo(db *gorm.DB, baseLog *logger.Logger) CompetencyRepo {
	repoLog := baseLog.With("repo", "CompetencyRepo")
	return &competencyRepo{db: db, log: repoLog}
}

func (cr *competencyRepo) Create(ctx context.Context, tx *gorm.DB, competencies []*types.Competency) ([]*types.Competency, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if len(competencies) == 0 {
		return []*types.Competency{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&competencies).Error; err != nil {
		return nil, err
	}
	return competencies, nil
}

func (cr *competencyRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Competency, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Competency
	if err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("code ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
