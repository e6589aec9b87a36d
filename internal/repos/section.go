package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

type SectionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sections []*types.CourseSection) ([]*types.CourseSection, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) ([]*types.CourseSection, error)
	ListByTeacherID(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) ([]*types.CourseSection, error)
	Save(ctx context.Context, tx *gorm.DB, section *types.CourseSection) error
	Delete(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) error
}

type sectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	repoLog := baseLog.With("repo", "SectionRepo")
	return &sectionRepo{db: db, log: repoLog}
}

func (r *sectionRepo) Create(ctx context.Context, tx *gorm.DB, sections []*types.CourseSection) ([]*types.CourseSection, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(sections) == 0 {
		return []*types.CourseSection{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

func (r *sectionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) ([]*types.CourseSection, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CourseSection
	if len(sectionIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", sectionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sectionRepo) ListByTeacherID(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) ([]*types.CourseSection, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CourseSection
	if err := transaction.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sectionRepo) Save(ctx context.Context, tx *gorm.DB, section *types.CourseSection) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(section).Error
}

func (r *sectionRepo) Delete(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", sectionID).
		Delete(&types.CourseSection{}).Error
}
