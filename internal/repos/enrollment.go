package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

type EnrollmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, enrollments []*types.SectionEnrollment) ([]*types.SectionEnrollment, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, enrollmentIDs []uuid.UUID) ([]*types.SectionEnrollment, error)
	// GetBySectionAndStudent returns the row regardless of IsActive so callers
	// can reactivate on re-enroll. nil when no row exists.
	GetBySectionAndStudent(ctx context.Context, tx *gorm.DB, sectionID, studentID uuid.UUID) (*types.SectionEnrollment, error)
	ListBySectionID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, activeOnly bool) ([]*types.SectionEnrollment, error)
	ListByStudentID(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, activeOnly bool) ([]*types.SectionEnrollment, error)
	Save(ctx context.Context, tx *gorm.DB, enrollment *types.SectionEnrollment) error
	CountActiveBySectionID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (int64, error)
	ActiveExists(ctx context.Context, tx *gorm.DB, sectionID, studentID uuid.UUID) (bool, error)
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	repoLog := baseLog.With("repo", "EnrollmentRepo")
	return &enrollmentRepo{db: db, log: repoLog}
}

func (r *enrollmentRepo) Create(ctx context.Context, tx *gorm.DB, enrollments []*types.SectionEnrollment) ([]*types.SectionEnrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(enrollments) == 0 {
		return []*types.SectionEnrollment{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, enrollmentIDs []uuid.UUID) ([]*types.SectionEnrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SectionEnrollment
	if len(enrollmentIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", enrollmentIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *enrollmentRepo) GetBySectionAndStudent(ctx context.Context, tx *gorm.DB, sectionID, studentID uuid.UUID) (*types.SectionEnrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.SectionEnrollment
	err := transaction.WithContext(ctx).
		Where("section_id = ? AND student_id = ?", sectionID, studentID).
		First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *enrollmentRepo) ListBySectionID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, activeOnly bool) ([]*types.SectionEnrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Where("section_id = ?", sectionID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var results []*types.SectionEnrollment
	if err := q.Order("enrolled_at ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *enrollmentRepo) ListByStudentID(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, activeOnly bool) ([]*types.SectionEnrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Where("student_id = ?", studentID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var results []*types.SectionEnrollment
	if err := q.Order("enrolled_at ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *enrollmentRepo) Save(ctx context.Context, tx *gorm.DB, enrollment *types.SectionEnrollment) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(enrollment).Error
}

func (r *enrollmentRepo) CountActiveBySectionID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.SectionEnrollment{}).
		Where("section_id = ? AND is_active = ?", sectionID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *enrollmentRepo) ActiveExists(ctx context.Context, tx *gorm.DB, sectionID, studentID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.SectionEnrollment{}).
		Where("section_id = ? AND student_id = ? AND is_active = ?", sectionID, studentID, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
