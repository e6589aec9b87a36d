package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/virtual-client-backend/internal/apierr"
	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/repos"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

// weightTolerance absorbs float accumulation error when checking that
// criterion weights sum to 1.0.
const weightTolerance = 0.001

type RubricService interface {
	List(ctx context.Context) ([]*types.EvaluationRubric, error)
	Get(ctx context.Context, rubricID uuid.UUID) (*types.EvaluationRubric, error)
	Create(ctx context.Context, rubric *types.EvaluationRubric) (*types.EvaluationRubric, error)
	Update(ctx context.Context, rubricID uuid.UUID, updates *types.EvaluationRubric) (*types.EvaluationRubric, error)
	Delete(ctx context.Context, rubricID uuid.UUID) error
}

type rubricService struct {
	db                   *gorm.DB
	log                  *logger.Logger
	rubricRepo           repos.RubricRepo
	assignmentClientRepo repos.AssignmentClientRepo
}

func NewRubricService(
	db *gorm.DB,
	baseLog *logger.Logger,
	rubricRepo repos.RubricRepo,
	assignmentClientRepo repos.AssignmentClientRepo,
) RubricService {
	serviceLog := baseLog.With("service", "RubricService")
	return &rubricService{
		db:                   db,
		log:                  serviceLog,
		rubricRepo:           rubricRepo,
		assignmentClientRepo: assignmentClientRepo,
	}
}

func validateRubric(rubric *types.EvaluationRubric) error {
	if rubric.Name == "" {
		return apierr.Newf(http.StatusBadRequest, "name_required", "rubric name is required")
	}
	var criteria []types.RubricCriterion
	if len(rubric.Criteria) > 0 {
		if err := json.Unmarshal(rubric.Criteria, &criteria); err != nil {
			return apierr.Newf(http.StatusBadRequest, "invalid_criteria", "criteria must be a JSON array of rubric criteria")
		}
	}
	if len(criteria) == 0 {
		return apierr.Newf(http.StatusBadRequest, "criteria_required", "at least one criterion is required")
	}
	seen := make(map[string]bool, len(criteria))
	var sum float64
	for _, c := range criteria {
		if c.Name == "" {
			return apierr.Newf(http.StatusBadRequest, "criterion_name_required", "every criterion needs a name")
		}
		if seen[c.Name] {
			return apierr.Newf(http.StatusBadRequest, "duplicate_criterion", "criterion name %q appears more than once", c.Name)
		}
		seen[c.Name] = true
		if c.Weight <= 0 || c.Weight > 1 {
			return apierr.Newf(http.StatusBadRequest, "invalid_weight", "criterion %q weight must be in (0, 1]", c.Name)
		}
		sum += c.Weight
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return apierr.Newf(http.StatusBadRequest, "weights_must_sum_to_one", "criterion weights sum to %.3f, expected 1.0", sum)
	}
	return nil
}

func (s *rubricService) List(ctx context.Context) ([]*types.EvaluationRubric, error) {
	teacherID, err := requireTeacher(ctx)
	if err != nil {
		return nil, err
	}
	return s.rubricRepo.ListByTeacherID(ctx, nil, teacherID)
}

func (s *rubricService) Get(ctx context.Context, rubricID uuid.UUID) (*types.EvaluationRubric, error) {
	teacherID, err := requireTeacher(ctx)
	if err != nil {
		return nil, err
	}
	rubrics, gErr := s.rubricRepo.GetByIDs(ctx, nil, []uuid.UUID{rubricID})
	if gErr != nil {
		return nil, fmt.Errorf("failed to load rubric: %w", gErr)
	}
	if len(rubrics) == 0 {
		return nil, apierr.Newf(http.StatusNotFound, "rubric_not_found", "rubric not found")
	}
	rubric := rubrics[0]
	if rubric.TeacherID != teacherID {
		return nil, apierr.Newf(http.StatusForbidden, "not_owner", "rubric belongs to another teacher")
	}
	return rubric, nil
}

func (s *rubricService) Create(ctx context.Context, rubric *types.EvaluationRubric) (*types.EvaluationRubric, error) {
	teacherID, err := requireTeacher(ctx)
	if err != nil {
		return nil, err
	}
	if vErr := validateRubric(rubric); vErr != nil {
		return nil, vErr
	}
	rubric.ID = uuid.New()
	rubric.TeacherID = teacherID
	if _, cErr := s.rubricRepo.Create(ctx, nil, []*types.EvaluationRubric{rubric}); cErr != nil {
		return nil, fmt.Errorf("failed to create rubric: %w", cErr)
	}
	return rubric, nil
}

func (s *rubricService) Update(ctx context.Context, rubricID uuid.UUID, updates *types.EvaluationRubric) (*types.EvaluationRubric, error) {
	existing, err := s.Get(ctx, rubricID)
	if err != nil {
		return nil, err
	}
	if vErr := validateRubric(updates); vErr != nil {
		return nil, vErr
	}
	existing.Name = updates.Name
	existing.Description = updates.Description
	existing.Criteria = updates.Criteria
	if sErr := s.rubricRepo.Save(ctx, nil, existing); sErr != nil {
		return nil, fmt.Errorf("failed to update rubric: %w", sErr)
	}
	return existing, nil
}

func (s *rubricService) Delete(ctx context.Context, rubricID uuid.UUID) error {
	if _, err := s.Get(ctx, rubricID); err != nil {
		return err
	}
	refs, rErr := s.assignmentClientRepo.CountActiveByRubricID(ctx, nil, rubricID)
	if rErr != nil {
		return fmt.Errorf("failed to count assignment references: %w", rErr)
	}
	if refs > 0 {
		return apierr.Newf(http.StatusConflict, "rubric_in_use", "rubric is attached to %d active assignment(s)", refs)
	}
	return s.rubricRepo.Delete(ctx, nil, rubricID)
}
