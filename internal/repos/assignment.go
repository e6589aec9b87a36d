package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

type AssignmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, assignments []*types.Assignment) ([]*types.Assignment, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, assignmentIDs []uuid.UUID) ([]*types.Assignment, error)
	ListBySectionID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, activeOnly bool) ([]*types.Assignment, error)
	// ListAvailableForSections returns published, active assignments whose
	// window contains now (nil bounds are open-ended).
	ListAvailableForSections(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID, now time.Time) ([]*types.Assignment, error)
	Save(ctx context.Context, tx *gorm.DB, assignment *types.Assignment) error
	CountActiveBySectionID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (int64, error)
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	repoLog := baseLog.With("repo", "AssignmentRepo")
	return &assignmentRepo{db: db, log: repoLog}
}

func (r *assignmentRepo) Create(ctx context.Context, tx *gorm.DB, assignments []*types.Assignment) ([]*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(assignments) == 0 {
		return []*types.Assignment{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, assignmentIDs []uuid.UUID) ([]*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Assignment
	if len(assignmentIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", assignmentIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assignmentRepo) ListBySectionID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, activeOnly bool) ([]*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Where("section_id = ?", sectionID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var results []*types.Assignment
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assignmentRepo) ListAvailableForSections(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID, now time.Time) ([]*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Assignment
	if len(sectionIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("section_id IN ?", sectionIDs).
		Where("is_published = ? AND is_active = ?", true, true).
		Where("available_from IS NULL OR available_from <= ?", now).
		Where("due_date IS NULL OR due_date >= ?", now).
		Order("due_date ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assignmentRepo) Save(ctx context.Context, tx *gorm.DB, assignment *types.Assignment) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(assignment).Error
}

func (r *assignmentRepo) CountActiveBySectionID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Assignment{}).
		Where("section_id = ? AND is_active = ?", sectionID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
