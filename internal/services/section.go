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
	"github.com/yungbote/virtual-client-backend/internal/types"
)

type SectionService interface {
	List(ctx context.Context) ([]*types.CourseSection, error)
	Get(ctx context.Context, sectionID uuid.UUID) (*types.CourseSection, error)
	Create(ctx context.Context, section *types.CourseSection) (*types.CourseSection, error)
	Update(ctx context.Context, sectionID uuid.UUID, updates *types.CourseSection) (*types.CourseSection, error)
	Delete(ctx context.Context, sectionID uuid.UUID) error
}

type sectionService struct {
	db             *gorm.DB
	log            *logger.Logger
	sectionRepo    repos.SectionRepo
	enrollmentRepo repos.EnrollmentRepo
	assignmentRepo repos.AssignmentRepo
}

func NewSectionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sectionRepo repos.SectionRepo,
	enrollmentRepo repos.EnrollmentRepo,
	assignmentRepo repos.AssignmentRepo,
) SectionService {
	serviceLog := baseLog.With("service", "SectionService")
	return &sectionService{
		db:             db,
		log:            serviceLog,
		sectionRepo:    sectionRepo,
		enrollmentRepo: enrollmentRepo,
		assignmentRepo: assignmentRepo,
	}
}

func (s *sectionService) List(ctx context.Context) ([]*types.CourseSection, error) {
	teacherID, err := requireTeacher(ctx)
	if err != nil {
		return nil, err
	}
	return s.sectionRepo.ListByTeacherID(ctx, nil, teacherID)
}

func (s *sectionService) Get(ctx context.Context, sectionID uuid.UUID) (*types.CourseSection, error) {
	teacherID, err := requireTeacher(ctx)
	if err != nil {
		return nil, err
	}
	sections, gErr := s.sectionRepo.GetByIDs(ctx, nil, []uuid.UUID{sectionID})
	if gErr != nil {
		return nil, fmt.Errorf("failed to load section: %w", gErr)
	}
	if len(sections) == 0 {
		return nil, apierr.Newf(http.StatusNotFound, "section_not_found", "section not found")
	}
	section := sections[0]
	if section.TeacherID != teacherID {
		return nil, apierr.Newf(http.StatusForbidden, "not_owner", "section belongs to another teacher")
	}
	return section, nil
}

func (s *sectionService) Create(ctx context.Context, section *types.CourseSection) (*types.CourseSection, error) {
	teacherID, err := requireTeacher(ctx)
	if err != nil {
		return nil, err
	}
	if section.Name == "" {
		return nil, apierr.Newf(http.StatusBadRequest, "name_required", "section name is required")
	}
	section.ID = uuid.New()
	section.TeacherID = teacherID
	if _, cErr := s.sectionRepo.Create(ctx, nil, []*types.CourseSection{section}); cErr != nil {
		return nil, fmt.Errorf("failed to create section: %w", cErr)
	}
	return section, nil
}

func (s *sectionService) Update(ctx context.Context, sectionID uuid.UUID, updates *types.CourseSection) (*types.CourseSection, error) {
	existing, err := s.Get(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if updates.Name == "" {
		return nil, apierr.Newf(http.StatusBadRequest, "name_required", "section name is required")
	}
	existing.Name = updates.Name
	existing.Description = updates.Description
	existing.Term = updates.Term
	if sErr := s.sectionRepo.Save(ctx, nil, existing); sErr != nil {
		return nil, fmt.Errorf("failed to update section: %w", sErr)
	}
	return existing, nil
}

func (s *sectionService) Delete(ctx context.Context, sectionID uuid.UUID) error {
	if _, err := s.Get(ctx, sectionID); err != nil {
		return err
	}
	enrollments, eErr := s.enrollmentRepo.CountActiveBySectionID(ctx, nil, sectionID)
	if eErr != nil {
		return fmt.Errorf("failed to count enrollments: %w", eErr)
	}
	if enrollments > 0 {
		return apierr.Newf(http.StatusConflict, "section_has_enrollments", "section has %d active enrollment(s)", enrollments)
	}
	assignments, aErr := s.assignmentRepo.CountActiveBySectionID(ctx, nil, sectionID)
	if aErr != nil {
		return fmt.Errorf("failed to count assignments: %w", aErr)
	}
	if assignments > 0 {
		return apierr.Newf(http.StatusConflict, "section_has_assignments", "section has %d active assignment(s)", assignments)
	}
	return s.sectionRepo.Delete(ctx, nil, sectionID)
}
