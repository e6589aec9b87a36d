package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

type RubricRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rubrics []*types.EvaluationRubric) ([]*types.EvaluationRubric, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, rubricIDs []uuid.UUID) ([]*types.EvaluationRubric, error)
	ListByTeacherID(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) ([]*types.EvaluationRubric, error)
	Save(ctx context.Context, tx *gorm.DB, rubric *types.EvaluationRubric) error
	Delete(ctx context.Context, tx *gorm.DB, rubricID uuid.UUID) error
}

type rubricRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRubricRepo(db *gorm.DB, baseLog *logger.Logger) RubricRepo {
	repoLog := baseLog.With("repo", "RubricRepo")
	return &rubricRepo{db: db, log: repoLog}
}

func (r *rubricRepo) Create(ctx context.Context, tx *gorm.DB, rubrics []*types.EvaluationRubric) ([]*types.EvaluationRubric, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rubrics) == 0 {
		return []*types.EvaluationRubric{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rubrics).Error; err != nil {
		return nil, err
	}
	return rubrics, nil
}

func (r *rubricRepo) GetByIDs(ctx context.Context, tx *gorm.DB, rubricIDs []uuid.UUID) ([]*types.EvaluationRubric, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.EvaluationRubric
	if len(rubricIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", rubricIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *rubricRepo) ListByTeacherID(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) ([]*types.EvaluationRubric, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.EvaluationRubric
	if err := transaction.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *rubricRepo) Save(ctx context.Context, tx *gorm.DB, rubric *types.EvaluationRubric) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(rubric).Error
}

func (r *rubricRepo) Delete(ctx context.Context, tx *gorm.DB, rubricID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", rubricID).
		Delete(&types.EvaluationRubric{}).Error
}
