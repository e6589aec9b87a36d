package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

type AssignmentClientRepo interface {
	Create(ctx context.Context, tx *gorm.DB, acs []*types.AssignmentClient) ([]*types.AssignmentClient, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, acIDs []uuid.UUID) ([]*types.AssignmentClient, error)
	// GetByAssignmentAndClient returns the row regardless of IsActive so
	// callers can reactivate on re-attach. nil when no row exists.
	GetByAssignmentAndClient(ctx context.Context, tx *gorm.DB, assignmentID, clientProfileID uuid.UUID) (*types.AssignmentClient, error)
	ListByAssignmentID(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID, activeOnly bool) ([]*types.AssignmentClient, error)
	Save(ctx context.Context, tx *gorm.DB, ac *types.AssignmentClient) error
	CountActiveByClientProfileID(ctx context.Context, tx *gorm.DB, clientProfileID uuid.UUID) (int64, error)
	CountActiveByRubricID(ctx context.Context, tx *gorm.DB, rubricID uuid.UUID) (int64, error)
}

type assignmentClientRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentClientRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentClientRepo {
	repoLog := baseLog.With("repo", "AssignmentClientRepo")
	return &assignmentClientRepo{db: db, log: repoLog}
}

func (r *assignmentClientRepo) Create(ctx context.Context, tx *gorm.DB, acs []*types.AssignmentClient) ([]*types.AssignmentClient, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(acs) == 0 {
		return []*types.AssignmentClient{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&acs).Error; err != nil {
		return nil, err
	}
	return acs, nil
}

func (r *assignmentClientRepo) GetByIDs(ctx context.Context, tx *gorm.DB, acIDs []uuid.UUID) ([]*types.AssignmentClient, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.AssignmentClient
	if len(acIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", acIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assignmentClientRepo) GetByAssignmentAndClient(ctx context.Context, tx *gorm.DB, assignmentID, clientProfileID uuid.UUID) (*types.AssignmentClient, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.AssignmentClient
	err := transaction.WithContext(ctx).
		Where("assignment_id = ? AND client_profile_id = ?", assignmentID, clientProfileID).
		First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *assignmentClientRepo) ListByAssignmentID(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID, activeOnly bool) ([]*types.AssignmentClient, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Where("assignment_id = ?", assignmentID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var results []*types.AssignmentClient
	if err := q.Order("display_order ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assignmentClientRepo) Save(ctx context.Context, tx *gorm.DB, ac *types.AssignmentClient) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(ac).Error
}

func (r *assignmentClientRepo) CountActiveByClientProfileID(ctx context.Context, tx *gorm.DB, clientProfileID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.AssignmentClient{}).
		Where("client_profile_id = ? AND is_active = ?", clientProfileID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *assignmentClientRepo) CountActiveByRubricID(ctx context.Context, tx *gorm.DB, rubricID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.AssignmentClient{}).
		Where("rubric_id = ? AND is_active = ?", rubricID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
