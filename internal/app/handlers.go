package app

import (
	"github.com/yungbote/virtual-client-backend/internal/handlers"
	"github.com/yungbote/virtual-client-backend/internal/logger"
)

type Handlers struct {
	Auth          *handlers.AuthHandler
	ClientProfile *handlers.ClientProfileHandler
	Rubric        *handlers.RubricHandler
	Section       *handlers.SectionHandler
	Assignment    *handlers.AssignmentHandler
	Student       *handlers.StudentHandler
	Conversation  *handlers.ConversationHandler
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:          handlers.NewAuthHandler(log, s.Auth),
		ClientProfile: handlers.NewClientProfileHandler(log, s.ClientProfile),
		Rubric:        handlers.NewRubricHandler(log, s.Rubric),
		Section:       handlers.NewSectionHandler(log, s.Section, s.Enrollment),
		Assignment:    handlers.NewAssignmentHandler(log, s.Assignment, s.Session),
		Student:       handlers.NewStudentHandler(log, s.Student),
		Conversation:  handlers.NewConversationHandler(log, s.Conversation, s.Session),
	}
}
