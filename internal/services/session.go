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

// SessionService is the read side of conversations: students browse their own
// sessions, teachers review sessions bound to their assignments.
type SessionService interface {
	ListOwn(ctx context.Context) ([]*types.Session, error)
	GetTranscript(ctx context.Context, sessionID uuid.UUID) (*types.Session, []*types.Message, error)
	ListForAssignment(ctx context.Context, assignmentID uuid.UUID) ([]*types.Session, error)
}

type sessionService struct {
	db  *gorm.DB
	log *logger.Logger

	sessionRepo          repos.SessionRepo
	messageRepo          repos.MessageRepo
	assignmentClientRepo repos.AssignmentClientRepo
	assignmentRepo       repos.AssignmentRepo
	sectionRepo          repos.SectionRepo
}

func NewSessionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sessionRepo repos.SessionRepo,
	messageRepo repos.MessageRepo,
	assignmentClientRepo repos.AssignmentClientRepo,
	assignmentRepo repos.AssignmentRepo,
	sectionRepo repos.SectionRepo,
) SessionService {
	serviceLog := baseLog.With("service", "SessionService")
	return &sessionService{
		db:                   db,
		log:                  serviceLog,
		sessionRepo:          sessionRepo,
		messageRepo:          messageRepo,
		assignmentClientRepo: assignmentClientRepo,
		assignmentRepo:       assignmentRepo,
		sectionRepo:          sectionRepo,
	}
}

func (s *sessionService) ListOwn(ctx context.Context) ([]*types.Session, error) {
	studentID, err := requireStudent(ctx)
	if err != nil {
		return nil, err
	}
	return s.sessionRepo.ListByStudentID(ctx, nil, studentID)
}

// teacherOwnsSession reports whether the session is bound to an assignment in
// one of the teacher's sections. Practice sessions have no binding and stay
// private to the student.
func (s *sessionService) teacherOwnsSession(ctx context.Context, teacherID uuid.UUID, session *types.Session) (bool, error) {
	if session.AssignmentClientID == nil {
		return false, nil
	}
	acs, err := s.assignmentClientRepo.GetByIDs(ctx, nil, []uuid.UUID{*session.AssignmentClientID})
	if err != nil || len(acs) == 0 {
		return false, err
	}
	assignments, aErr := s.assignmentRepo.GetByIDs(ctx, nil, []uuid.UUID{acs[0].AssignmentID})
	if aErr != nil || len(assignments) == 0 {
		return false, aErr
	}
	sections, sErr := s.sectionRepo.GetByIDs(ctx, nil, []uuid.UUID{assignments[0].SectionID})
	if sErr != nil || len(sections) == 0 {
		return false, sErr
	}
	return sections[0].TeacherID == teacherID, nil
}

func (s *sessionService) GetTranscript(ctx context.Context, sessionID uuid.UUID) (*types.Session, []*types.Message, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, nil, apierr.Newf(http.StatusUnauthorized, "unauthenticated", "no authenticated user in context")
	}

	sessions, gErr := s.sessionRepo.GetByIDs(ctx, nil, []uuid.UUID{sessionID})
	if gErr != nil {
		return nil, nil, fmt.Errorf("failed to load session: %w", gErr)
	}
	if len(sessions) == 0 {
		return nil, nil, apierr.Newf(http.StatusNotFound, "session_not_found", "session not found")
	}
	session := sessions[0]

	switch rd.Role {
	case types.RoleStudent:
		if session.StudentID != rd.UserID {
			return nil, nil, apierr.Newf(http.StatusForbidden, "not_owner", "session belongs to another student")
		}
	case types.RoleTeacher:
		owns, oErr := s.teacherOwnsSession(ctx, rd.UserID, session)
		if oErr != nil {
			return nil, nil, fmt.Errorf("failed to check session ownership: %w", oErr)
		}
		if !owns {
			return nil, nil, apierr.Newf(http.StatusForbidden, "not_owner", "session is not bound to one of your assignments")
		}
	default:
		return nil, nil, apierr.Newf(http.StatusForbidden, "invalid_role", "unrecognized role")
	}

	messages, mErr := s.messageRepo.ListBySessionID(ctx, nil, sessionID)
	if mErr != nil {
		return nil, nil, fmt.Errorf("failed to load transcript: %w", mErr)
	}
	return session, messages, nil
}

func (s *sessionService) ListForAssignment(ctx context.Context, assignmentID uuid.UUID) ([]*types.Session, error) {
	teacherID, err := requireTeacher(ctx)
	if err != nil {
		return nil, err
	}
	assignments, aErr := s.assignmentRepo.GetByIDs(ctx, nil, []uuid.UUID{assignmentID})
	if aErr != nil {
		return nil, fmt.Errorf("failed to load assignment: %w", aErr)
	}
	if len(assignments) == 0 {
		return nil, apierr.Newf(http.StatusNotFound, "assignment_not_found", "assignment not found")
	}
	sections, sErr := s.sectionRepo.GetByIDs(ctx, nil, []uuid.UUID{assignments[0].SectionID})
	if sErr != nil {
		return nil, fmt.Errorf("failed to load section: %w", sErr)
	}
	if len(sections) == 0 || sections[0].TeacherID != teacherID {
		return nil, apierr.Newf(http.StatusForbidden, "not_owner", "assignment belongs to another teacher")
	}

	acs, cErr := s.assignmentClientRepo.ListByAssignmentID(ctx, nil, assignmentID, false)
	if cErr != nil {
		return nil, fmt.Errorf("failed to load assignment clients: %w", cErr)
	}
	acIDs := make([]uuid.UUID, 0, len(acs))
	for _, ac := range acs {
		acIDs = append(acIDs, ac.ID)
	}
	return s.sessionRepo.ListByAssignmentClientIDs(ctx, nil, acIDs)
}
