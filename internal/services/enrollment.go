package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/virtual-client-backend/internal/apierr"
	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/repos"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

type EnrollmentService interface {
	ListRoster(ctx context.Context, sectionID uuid.UUID) ([]*types.SectionEnrollment, error)
	Enroll(ctx context.Context, sectionID uuid.UUID, studentEmail string) (*types.SectionEnrollment, error)
	Unenroll(ctx context.Context, sectionID, studentID uuid.UUID) error
}

type enrollmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	sectionService SectionService
	enrollmentRepo repos.EnrollmentRepo
	userRepo       repos.UserRepo
}

func NewEnrollmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sectionService SectionService,
	enrollmentRepo repos.EnrollmentRepo,
	userRepo repos.UserRepo,
) EnrollmentService {
	serviceLog := baseLog.With("service", "EnrollmentService")
	return &enrollmentService{
		db:             db,
		log:            serviceLog,
		sectionService: sectionService,
		enrollmentRepo: enrollmentRepo,
		userRepo:       userRepo,
	}
}

func (s *enrollmentService) ListRoster(ctx context.Context, sectionID uuid.UUID) ([]*types.SectionEnrollment, error) {
	if _, err := s.sectionService.Get(ctx, sectionID); err != nil {
		return nil, err
	}
	return s.enrollmentRepo.ListBySectionID(ctx, nil, sectionID, true)
}

func (s *enrollmentService) Enroll(ctx context.Context, sectionID uuid.UUID, studentEmail string) (*types.SectionEnrollment, error) {
	if _, err := s.sectionService.Get(ctx, sectionID); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(studentEmail))
	users, uErr := s.userRepo.GetByEmails(ctx, nil, []string{email})
	if uErr != nil {
		return nil, fmt.Errorf("failed to look up student: %w", uErr)
	}
	if len(users) == 0 {
		return nil, apierr.Newf(http.StatusNotFound, "student_not_found", "no user with email %s", email)
	}
	student := users[0]
	if student.Role != types.RoleStudent {
		return nil, apierr.Newf(http.StatusBadRequest, "not_a_student", "user %s is not a student", email)
	}

	var enrollment *types.SectionEnrollment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, gErr := s.enrollmentRepo.GetBySectionAndStudent(ctx, tx, sectionID, student.ID)
		if gErr != nil {
			return fmt.Errorf("failed to check existing enrollment: %w", gErr)
		}
		if existing != nil {
			if existing.IsActive {
				return apierr.Newf(http.StatusConflict, "already_enrolled", "student is already enrolled in this section")
			}
			// Inactive row: reactivate instead of duplicating.
			existing.IsActive = true
			existing.EnrolledAt = time.Now()
			if sErr := s.enrollmentRepo.Save(ctx, tx, existing); sErr != nil {
				return fmt.Errorf("failed to reactivate enrollment: %w", sErr)
			}
			enrollment = existing
			return nil
		}
		created := &types.SectionEnrollment{
			ID:        uuid.New(),
			SectionID: sectionID,
			StudentID: student.ID,
			Role:      types.RoleStudent,
			IsActive:  true,
		}
		if _, cErr := s.enrollmentRepo.Create(ctx, tx, []*types.SectionEnrollment{created}); cErr != nil {
			return fmt.Errorf("failed to create enrollment: %w", cErr)
		}
		enrollment = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *enrollmentService) Unenroll(ctx context.Context, sectionID, studentID uuid.UUID) error {
	if _, err := s.sectionService.Get(ctx, sectionID); err != nil {
		return err
	}
	existing, gErr := s.enrollmentRepo.GetBySectionAndStudent(ctx, nil, sectionID, studentID)
	if gErr != nil {
		return fmt.Errorf("failed to look up enrollment: %w", gErr)
	}
	if existing == nil || !existing.IsActive {
		return apierr.Newf(http.StatusNotFound, "enrollment_not_found", "no active enrollment for that student")
	}
	existing.IsActive = false
	if sErr := s.enrollmentRepo.Save(ctx, nil, existing); sErr != nil {
		return fmt.Errorf("failed to deactivate enrollment: %w", sErr)
	}
	return nil
}
