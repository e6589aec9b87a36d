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

type AssignmentService interface {
	List(ctx context.Context, sectionID uuid.UUID) ([]*types.Assignment, error)
	Get(ctx context.Context, assignmentID uuid.UUID) (*types.Assignment, error)
	Create(ctx context.Context, assignment *types.Assignment) (*types.Assignment, error)
	Update(ctx context.Context, assignmentID uuid.UUID, updates *types.Assignment) (*types.Assignment, error)
	Delete(ctx context.Context, assignmentID uuid.UUID) error
	Publish(ctx context.Context, assignmentID uuid.UUID) (*types.Assignment, error)
	Unpublish(ctx context.Context, assignmentID uuid.UUID) (*types.Assignment, error)

	AttachClient(ctx context.Context, assignmentID, clientProfileID, rubricID uuid.UUID, displayOrder int) (*types.AssignmentClient, error)
	ListClients(ctx context.Context, assignmentID uuid.UUID) ([]*types.AssignmentClient, error)
	RemoveClient(ctx context.Context, assignmentID, assignmentClientID uuid.UUID) error
}

type assignmentService struct {
	db                   *gorm.DB
	log                  *logger.Logger
	sectionService       SectionService
	assignmentRepo       repos.AssignmentRepo
	assignmentClientRepo repos.AssignmentClientRepo
	clientProfileRepo    repos.ClientProfileRepo
	rubricRepo           repos.RubricRepo
}

func NewAssignmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sectionService SectionService,
	assignmentRepo repos.AssignmentRepo,
	assignmentClientRepo repos.AssignmentClientRepo,
	clientProfileRepo repos.ClientProfileRepo,
	rubricRepo repos.RubricRepo,
) AssignmentService {
	serviceLog := baseLog.With("service", "AssignmentService")
	return &assignmentService{
		db:                   db,
		log:                  serviceLog,
		sectionService:       sectionService,
		assignmentRepo:       assignmentRepo,
		assignmentClientRepo: assignmentClientRepo,
		clientProfileRepo:    clientProfileRepo,
		rubricRepo:           rubricRepo,
	}
}

func validateAssignment(assignment *types.Assignment) error {
	if assignment.Title == "" {
		return apierr.Newf(http.StatusBadRequest, "title_required", "assignment title is required")
	}
	if assignment.AvailableFrom != nil && assignment.DueDate != nil &&
		assignment.DueDate.Before(*assignment.AvailableFrom) {
		return apierr.Newf(http.StatusBadRequest, "invalid_date_window", "due date precedes availability date")
	}
	return nil
}

func (s *assignmentService) List(ctx context.Context, sectionID uuid.UUID) ([]*types.Assignment, error) {
	if _, err := s.sectionService.Get(ctx, sectionID); err != nil {
		return nil, err
	}
	return s.assignmentRepo.ListBySectionID(ctx, nil, sectionID, true)
}

func (s *assignmentService) Get(ctx context.Context, assignmentID uuid.UUID) (*types.Assignment, error) {
	assignments, gErr := s.assignmentRepo.GetByIDs(ctx, nil, []uuid.UUID{assignmentID})
	if gErr != nil {
		return nil, fmt.Errorf("failed to load assignment: %w", gErr)
	}
	if len(assignments) == 0 || !assignments[0].IsActive {
		return nil, apierr.Newf(http.StatusNotFound, "assignment_not_found", "assignment not found")
	}
	assignment := assignments[0]
	// Ownership flows through the section.
	if _, err := s.sectionService.Get(ctx, assignment.SectionID); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *assignmentService) Create(ctx context.Context, assignment *types.Assignment) (*types.Assignment, error) {
	if _, err := s.sectionService.Get(ctx, assignment.SectionID); err != nil {
		return nil, err
	}
	if vErr := validateAssignment(assignment); vErr != nil {
		return nil, vErr
	}
	assignment.ID = uuid.New()
	assignment.IsPublished = false
	assignment.IsActive = true
	if assignment.AssignmentType == "" {
		assignment.AssignmentType = "practice"
	}
	if _, cErr := s.assignmentRepo.Create(ctx, nil, []*types.Assignment{assignment}); cErr != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", cErr)
	}
	return assignment, nil
}

func (s *assignmentService) Update(ctx context.Context, assignmentID uuid.UUID, updates *types.Assignment) (*types.Assignment, error) {
	existing, err := s.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if existing.IsPublished {
		return nil, apierr.Newf(http.StatusBadRequest, "assignment_published", "unpublish the assignment before editing it")
	}
	if vErr := validateAssignment(updates); vErr != nil {
		return nil, vErr
	}
	existing.Title = updates.Title
	existing.Description = updates.Description
	existing.AssignmentType = updates.AssignmentType
	existing.AvailableFrom = updates.AvailableFrom
	existing.DueDate = updates.DueDate
	if sErr := s.assignmentRepo.Save(ctx, nil, existing); sErr != nil {
		return nil, fmt.Errorf("failed to update assignment: %w", sErr)
	}
	return existing, nil
}

func (s *assignmentService) Delete(ctx context.Context, assignmentID uuid.UUID) error {
	existing, err := s.Get(ctx, assignmentID)
	if err != nil {
		return err
	}
	existing.IsActive = false
	existing.IsPublished = false
	if sErr := s.assignmentRepo.Save(ctx, nil, existing); sErr != nil {
		return fmt.Errorf("failed to deactivate assignment: %w", sErr)
	}
	return nil
}

func (s *assignmentService) Publish(ctx context.Context, assignmentID uuid.UUID) (*types.Assignment, error) {
	existing, err := s.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	clients, cErr := s.assignmentClientRepo.ListByAssignmentID(ctx, nil, assignmentID, true)
	if cErr != nil {
		return nil, fmt.Errorf("failed to load assignment clients: %w", cErr)
	}
	if len(clients) == 0 {
		return nil, apierr.Newf(http.StatusBadRequest, "no_clients_attached", "attach at least one client before publishing")
	}
	existing.IsPublished = true
	if sErr := s.assignmentRepo.Save(ctx, nil, existing); sErr != nil {
		return nil, fmt.Errorf("failed to publish assignment: %w", sErr)
	}
	return existing, nil
}

func (s *assignmentService) Unpublish(ctx context.Context, assignmentID uuid.UUID) (*types.Assignment, error) {
	existing, err := s.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	existing.IsPublished = false
	if sErr := s.assignmentRepo.Save(ctx, nil, existing); sErr != nil {
		return nil, fmt.Errorf("failed to unpublish assignment: %w", sErr)
	}
	return existing, nil
}

func (s *assignmentService) AttachClient(ctx context.Context, assignmentID, clientProfileID, rubricID uuid.UUID, displayOrder int) (*types.AssignmentClient, error) {
	teacherID, err := requireTeacher(ctx)
	if err != nil {
		return nil, err
	}
	if _, gErr := s.Get(ctx, assignmentID); gErr != nil {
		return nil, gErr
	}

	profiles, pErr := s.clientProfileRepo.GetByIDs(ctx, nil, []uuid.UUID{clientProfileID})
	if pErr != nil {
		return nil, fmt.Errorf("failed to load client profile: %w", pErr)
	}
	if len(profiles) == 0 {
		return nil, apierr.Newf(http.StatusNotFound, "client_profile_not_found", "client profile not found")
	}
	if profiles[0].TeacherID != teacherID {
		return nil, apierr.Newf(http.StatusForbidden, "not_owner", "client profile belongs to another teacher")
	}

	rubrics, rErr := s.rubricRepo.GetByIDs(ctx, nil, []uuid.UUID{rubricID})
	if rErr != nil {
		return nil, fmt.Errorf("failed to load rubric: %w", rErr)
	}
	if len(rubrics) == 0 {
		return nil, apierr.Newf(http.StatusNotFound, "rubric_not_found", "rubric not found")
	}
	if rubrics[0].TeacherID != teacherID {
		return nil, apierr.Newf(http.StatusForbidden, "not_owner", "rubric belongs to another teacher")
	}

	var result *types.AssignmentClient
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, gErr := s.assignmentClientRepo.GetByAssignmentAndClient(ctx, tx, assignmentID, clientProfileID)
		if gErr != nil {
			return fmt.Errorf("failed to check existing attachment: %w", gErr)
		}
		if existing != nil {
			if existing.IsActive {
				return apierr.Newf(http.StatusConflict, "client_already_attached", "client is already attached to this assignment")
			}
			existing.IsActive = true
			existing.RubricID = rubricID
			existing.DisplayOrder = displayOrder
			if sErr := s.assignmentClientRepo.Save(ctx, tx, existing); sErr != nil {
				return fmt.Errorf("failed to reactivate attachment: %w", sErr)
			}
			result = existing
			return nil
		}
		created := &types.AssignmentClient{
			ID:              uuid.New(),
			AssignmentID:    assignmentID,
			ClientProfileID: clientProfileID,
			RubricID:        rubricID,
			IsActive:        true,
			DisplayOrder:    displayOrder,
		}
		if _, cErr := s.assignmentClientRepo.Create(ctx, tx, []*types.AssignmentClient{created}); cErr != nil {
			return fmt.Errorf("failed to attach client: %w", cErr)
		}
		result = created
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return result, nil
}

func (s *assignmentService) ListClients(ctx context.Context, assignmentID uuid.UUID) ([]*types.AssignmentClient, error) {
	if _, err := s.Get(ctx, assignmentID); err != nil {
		return nil, err
	}
	return s.assignmentClientRepo.ListByAssignmentID(ctx, nil, assignmentID, true)
}

func (s *assignmentService) RemoveClient(ctx context.Context, assignmentID, assignmentClientID uuid.UUID) error {
	if _, err := s.Get(ctx, assignmentID); err != nil {
		return err
	}
	acs, gErr := s.assignmentClientRepo.GetByIDs(ctx, nil, []uuid.UUID{assignmentClientID})
	if gErr != nil {
		return fmt.Errorf("failed to load assignment client: %w", gErr)
	}
	if len(acs) == 0 || acs[0].AssignmentID != assignmentID || !acs[0].IsActive {
		return apierr.Newf(http.StatusNotFound, "assignment_client_not_found", "client attachment not found")
	}
	ac := acs[0]
	ac.IsActive = false
	if sErr := s.assignmentClientRepo.Save(ctx, nil, ac); sErr != nil {
		return fmt.Errorf("failed to detach client: %w", sErr)
	}
	return nil
}
