package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/virtual-client-backend/internal/apierr"
	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/repos"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

// StudentService is the student-side browse surface: enrolled sections and
// the assignments currently open to them.
type StudentService interface {
	ListSections(ctx context.Context) ([]*types.CourseSection, error)
	ListAvailableAssignments(ctx context.Context) ([]*types.Assignment, error)
	ListAssignmentClients(ctx context.Context, assignmentID uuid.UUID) ([]*types.AssignmentClient, error)
}

type studentService struct {
	db  *gorm.DB
	log *logger.Logger

	enrollmentRepo       repos.EnrollmentRepo
	sectionRepo          repos.SectionRepo
	assignmentRepo       repos.AssignmentRepo
	assignmentClientRepo repos.AssignmentClientRepo
}

func NewStudentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	enrollmentRepo repos.EnrollmentRepo,
	sectionRepo repos.SectionRepo,
	assignmentRepo repos.AssignmentRepo,
	assignmentClientRepo repos.AssignmentClientRepo,
) StudentService {
	serviceLog := baseLog.With("service", "StudentService")
	return &studentService{
		db:                   db,
		log:                  serviceLog,
		enrollmentRepo:       enrollmentRepo,
		sectionRepo:          sectionRepo,
		assignmentRepo:       assignmentRepo,
		assignmentClientRepo: assignmentClientRepo,
	}
}

func (s *studentService) enrolledSectionIDs(ctx context.Context, studentID uuid.UUID) ([]uuid.UUID, error) {
	enrollments, err := s.enrollmentRepo.ListByStudentID(ctx, nil, studentID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollments: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.SectionID)
	}
	return ids, nil
}

func (s *studentService) ListSections(ctx context.Context) ([]*types.CourseSection, error) {
	studentID, err := requireStudent(ctx)
	if err != nil {
		return nil, err
	}
	sectionIDs, sErr := s.enrolledSectionIDs(ctx, studentID)
	if sErr != nil {
		return nil, sErr
	}
	return s.sectionRepo.GetByIDs(ctx, nil, sectionIDs)
}

func (s *studentService) ListAvailableAssignments(ctx context.Context) ([]*types.Assignment, error) {
	studentID, err := requireStudent(ctx)
	if err != nil {
		return nil, err
	}
	sectionIDs, sErr := s.enrolledSectionIDs(ctx, studentID)
	if sErr != nil {
		return nil, sErr
	}
	return s.assignmentRepo.ListAvailableForSections(ctx, nil, sectionIDs, time.Now())
}

func (s *studentService) ListAssignmentClients(ctx context.Context, assignmentID uuid.UUID) ([]*types.AssignmentClient, error) {
	studentID, err := requireStudent(ctx)
	if err != nil {
		return nil, err
	}
	assignments, aErr := s.assignmentRepo.GetByIDs(ctx, nil, []uuid.UUID{assignmentID})
	if aErr != nil {
		return nil, fmt.Errorf("failed to load assignment: %w", aErr)
	}
	if len(assignments) == 0 || !assignments[0].IsActive || !assignments[0].IsPublished {
		return nil, apierr.Newf(http.StatusNotFound, "assignment_not_available", "assignment is not available")
	}
	enrolled, eErr := s.enrollmentRepo.ActiveExists(ctx, nil, assignments[0].SectionID, studentID)
	if eErr != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", eErr)
	}
	if !enrolled {
		return nil, apierr.Newf(http.StatusForbidden, "not_enrolled", "you are not enrolled in this assignment's section")
	}
	return s.assignmentClientRepo.ListByAssignmentID(ctx, nil, assignmentID, true)
}
