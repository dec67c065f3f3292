package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courseforge/courseforge-backend/internal/logger"
	"github.com/courseforge/courseforge-backend/internal/types"
)

// GeneratedDocumentRepo has no update method. Generated documents are
// immutable once written: regenerate and delete, never mutate.
type GeneratedDocumentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, docs []*types.GeneratedDocument) ([]*types.GeneratedDocument, error)
	GetByID(ctx context.Context, tx *gorm.DB, docID uuid.UUID) (*types.GeneratedDocument, error)
	GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.GeneratedDocument, error)
	Delete(ctx context.Context, tx *gorm.DB, docID uuid.UUID) error
}

type generatedDocumentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGeneratedDocumentRepo(db *gorm.DB, baseLog *logger.Logger) GeneratedDocumentRepo {
	repoLog := baseLog.With("repo", "GeneratedDocumentRepo")
	return &generatedDocumentRepo{db: db, log: repoLog}
}

func (gr *generatedDocumentRepo) Create(ctx context.Context, tx *gorm.DB, docs []*types.GeneratedDocument) ([]*types.GeneratedDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	if len(docs) == 0 {
		return []*types.GeneratedDocument{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (gr *generatedDocumentRepo) GetByID(ctx context.Context, tx *gorm.DB, docID uuid.UUID) (*types.GeneratedDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	var result types.GeneratedDocument
	if err := transaction.WithContext(ctx).
		Where("id = ?", docID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (gr *generatedDocumentRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.GeneratedDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	var results []*types.GeneratedDocument
	if err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("generated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (gr *generatedDocumentRepo) Delete(ctx context.Context, tx *gorm.DB, docID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", docID).
		Delete(&types.GeneratedDocument{}).Error
}
