package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/server"
)

func wireRouter(log *logger.Logger, h Handlers, m Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Log:                  log,
		AuthHandler:          h.Auth,
		AuthMiddleware:       m.Auth,
		ClientProfileHandler: h.ClientProfile,
		RubricHandler:        h.Rubric,
		SectionHandler:       h.Section,
		AssignmentHandler:    h.Assignment,
		StudentHandler:       h.Student,
		ConversationHandler:  h.Conversation,
	})
}
