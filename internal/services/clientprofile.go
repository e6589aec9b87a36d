package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/virtual-client-backend/internal/apierr"
	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/repos"
	"github.com/yungbote/virtual-client-backend/internal/requestdata"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

type ClientProfileService interface {
	List(ctx context.Context) ([]*types.ClientProfile, error)
	Get(ctx context.Context, profileID uuid.UUID) (*types.ClientProfile, error)
	Create(ctx context.Context, profile *types.ClientProfile) (*types.ClientProfile, error)
	Update(ctx context.Context, profileID uuid.UUID, updates *types.ClientProfile) (*types.ClientProfile, error)
	Delete(ctx context.Context, profileID uuid.UUID) error
}

type clientProfileService struct {
	db                   *gorm.DB
	log                  *logger.Logger
	clientProfileRepo    repos.ClientProfileRepo
	assignmentClientRepo repos.AssignmentClientRepo
	sessionRepo          repos.SessionRepo
}

func NewClientProfileService(
	db *gorm.DB,
	baseLog *logger.Logger,
	clientProfileRepo repos.ClientProfileRepo,
	assignmentClientRepo repos.AssignmentClientRepo,
	sessionRepo repos.SessionRepo,
) ClientProfileService {
	serviceLog := baseLog.With("service", "ClientProfileService")
	return &clientProfileService{
		db:                   db,
		log:                  serviceLog,
		clientProfileRepo:    clientProfileRepo,
		assignmentClientRepo: assignmentClientRepo,
		sessionRepo:          sessionRepo,
	}
}

func requireTeacher(ctx context.Context) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, apierr.Newf(http.StatusUnauthorized, "unauthenticated", "no authenticated user in context")
	}
	if rd.Role != types.RoleTeacher {
		return uuid.Nil, apierr.Newf(http.StatusForbidden, "teacher_only", "teacher role required")
	}
	return rd.UserID, nil
}

func requireStudent(ctx context.Context) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, apierr.Newf(http.StatusUnauthorized, "unauthenticated", "no authenticated user in context")
	}
	if rd.Role != types.RoleStudent {
		return uuid.Nil, apierr.Newf(http.StatusForbidden, "student_only", "student role required")
	}
	return rd.UserID, nil
}

func validateClientProfile(profile *types.ClientProfile) error {
	if profile.Name == "" {
		return apierr.Newf(http.StatusBadRequest, "name_required", "client profile name is required")
	}
	if profile.Age != 0 && (profile.Age < 1 || profile.Age > 120) {
		return apierr.Newf(http.StatusBadRequest, "invalid_age", "age must be between 1 and 120")
	}
	return nil
}

func (s *clientProfileService) List(ctx context.Context) ([]*types.ClientProfile, error) {
	teacherID, err := requireTeacher(ctx)
	if err != nil {
		return nil, err
	}
	return s.clientProfileRepo.ListByTeacherID(ctx, nil, teacherID)
}

func (s *clientProfileService) Get(ctx context.Context, profileID uuid.UUID) (*types.ClientProfile, error) {
	teacherID, err := requireTeacher(ctx)
	if err != nil {
		return nil, err
	}
	profiles, gErr := s.clientProfileRepo.GetByIDs(ctx, nil, []uuid.UUID{profileID})
	if gErr != nil {
		return nil, fmt.Errorf("failed to load client profile: %w", gErr)
	}
	if len(profiles) == 0 {
		return nil, apierr.Newf(http.StatusNotFound, "client_profile_not_found", "client profile not found")
	}
	profile := profiles[0]
	if profile.TeacherID != teacherID {
		return nil, apierr.Newf(http.StatusForbidden, "not_owner", "client profile belongs to another teacher")
	}
	return profile, nil
}

func (s *clientProfileService) Create(ctx context.Context, profile *types.ClientProfile) (*types.ClientProfile, error) {
	teacherID, err := requireTeacher(ctx)
	if err != nil {
		return nil, err
	}
	if vErr := validateClientProfile(profile); vErr != nil {
		return nil, vErr
	}
	profile.ID = uuid.New()
	profile.TeacherID = teacherID
	if _, cErr := s.clientProfileRepo.Create(ctx, nil, []*types.ClientProfile{profile}); cErr != nil {
		return nil, fmt.Errorf("failed to create client profile: %w", cErr)
	}
	return profile, nil
}

func (s *clientProfileService) Update(ctx context.Context, profileID uuid.UUID, updates *types.ClientProfile) (*types.ClientProfile, error) {
	existing, err := s.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if vErr := validateClientProfile(updates); vErr != nil {
		return nil, vErr
	}
	existing.Name = updates.Name
	existing.Age = updates.Age
	existing.Race = updates.Race
	existing.Gender = updates.Gender
	existing.SocioeconomicStatus = updates.SocioeconomicStatus
	existing.Issues = updates.Issues
	existing.BackgroundStory = updates.BackgroundStory
	existing.PersonalityTraits = updates.PersonalityTraits
	existing.CommunicationStyle = updates.CommunicationStyle
	if sErr := s.clientProfileRepo.Save(ctx, nil, existing); sErr != nil {
		return nil, fmt.Errorf("failed to update client profile: %w", sErr)
	}
	return existing, nil
}

func (s *clientProfileService) Delete(ctx context.Context, profileID uuid.UUID) error {
	if _, err := s.Get(ctx, profileID); err != nil {
		return err
	}
	refs, rErr := s.assignmentClientRepo.CountActiveByClientProfileID(ctx, nil, profileID)
	if rErr != nil {
		return fmt.Errorf("failed to count assignment references: %w", rErr)
	}
	if refs > 0 {
		return apierr.Newf(http.StatusConflict, "client_profile_in_use", "client profile is attached to %d active assignment(s)", refs)
	}
	sessions, sErr := s.sessionRepo.CountByClientProfileID(ctx, nil, profileID)
	if sErr != nil {
		return fmt.Errorf("failed to count sessions: %w", sErr)
	}
	if sessions > 0 {
		return apierr.Newf(http.StatusConflict, "client_profile_has_sessions", "client profile has %d recorded session(s)", sessions)
	}
	return s.clientProfileRepo.Delete(ctx, nil, profileID)
}
