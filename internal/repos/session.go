package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

type SessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sessions []*types.Session) ([]*types.Session, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) ([]*types.Session, error)
	ListByStudentID(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.Session, error)
	ListByAssignmentClientIDs(ctx context.Context, tx *gorm.DB, acIDs []uuid.UUID) ([]*types.Session, error)
	Save(ctx context.Context, tx *gorm.DB, session *types.Session) error
	// ClaimNextSeq atomically increments next_seq and returns the claimed
	// value. Must run inside a transaction when paired with a message insert.
	ClaimNextSeq(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (int64, error)
	AccumulateUsage(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, tokens int, cost float64) error
	MarkCompleted(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, completedAt time.Time) error
	CountByClientProfileID(ctx context.Context, tx *gorm.DB, clientProfileID uuid.UUID) (int64, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	repoLog := baseLog.With("repo", "SessionRepo")
	return &sessionRepo{db: db, log: repoLog}
}

func (r *sessionRepo) Create(ctx context.Context, tx *gorm.DB, sessions []*types.Session) ([]*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(sessions) == 0 {
		return []*types.Session{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) ([]*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Session
	if len(sessionIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", sessionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sessionRepo) ListByStudentID(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Session
	if err := transaction.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("started_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sessionRepo) ListByAssignmentClientIDs(ctx context.Context, tx *gorm.DB, acIDs []uuid.UUID) ([]*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Session
	if len(acIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("assignment_client_id IN ?", acIDs).
		Order("started_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sessionRepo) Save(ctx context.Context, tx *gorm.DB, session *types.Session) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(session).Error
}

func (r *sessionRepo) ClaimNextSeq(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Session{}).
		Where("id = ?", sessionID).
		UpdateColumn("next_seq", gorm.Expr("next_seq + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	var session types.Session
	if err := transaction.WithContext(ctx).
		Select("next_seq").
		Where("id = ?", sessionID).
		First(&session).Error; err != nil {
		return 0, err
	}
	return session.NextSeq - 1, nil
}

func (r *sessionRepo) AccumulateUsage(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, tokens int, cost float64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Session{}).
		Where("id = ?", sessionID).
		UpdateColumns(map[string]interface{}{
			"total_tokens":   gorm.Expr("total_tokens + ?", tokens),
			"estimated_cost": gorm.Expr("estimated_cost + ?", cost),
		}).Error
}

func (r *sessionRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, completedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Session{}).
		Where("id = ? AND status = ?", sessionID, types.SessionStatusActive).
		UpdateColumns(map[string]interface{}{
			"status":       types.SessionStatusCompleted,
			"completed_at": completedAt,
		}).Error
}

func (r *sessionRepo) CountByClientProfileID(ctx context.Context, tx *gorm.DB, clientProfileID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Session{}).
		Where("client_profile_id = ?", clientProfileID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
