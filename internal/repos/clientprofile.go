package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

type ClientProfileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, profiles []*types.ClientProfile) ([]*types.ClientProfile, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, profileIDs []uuid.UUID) ([]*types.ClientProfile, error)
	ListByTeacherID(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) ([]*types.ClientProfile, error)
	Save(ctx context.Context, tx *gorm.DB, profile *types.ClientProfile) error
	Delete(ctx context.Context, tx *gorm.DB, profileID uuid.UUID) error
}

type clientProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClientProfileRepo(db *gorm.DB, baseLog *logger.Logger) ClientProfileRepo {
	repoLog := baseLog.With("repo", "ClientProfileRepo")
	return &clientProfileRepo{db: db, log: repoLog}
}

func (r *clientProfileRepo) Create(ctx context.Context, tx *gorm.DB, profiles []*types.ClientProfile) ([]*types.ClientProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(profiles) == 0 {
		return []*types.ClientProfile{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *clientProfileRepo) GetByIDs(ctx context.Context, tx *gorm.DB, profileIDs []uuid.UUID) ([]*types.ClientProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ClientProfile
	if len(profileIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", profileIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *clientProfileRepo) ListByTeacherID(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) ([]*types.ClientProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ClientProfile
	if err := transaction.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *clientProfileRepo) Save(ctx context.Context, tx *gorm.DB, profile *types.ClientProfile) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(profile).Error
}

func (r *clientProfileRepo) Delete(ctx context.Context, tx *gorm.DB, profileID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", profileID).
		Delete(&types.ClientProfile{}).Error
}
