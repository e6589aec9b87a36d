package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/virtual-client-backend/internal/handlers"
	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/middleware"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

type RouterConfig struct {
	Log                  *logger.Logger
	AuthHandler          *handlers.AuthHandler
	AuthMiddleware       *middleware.AuthMiddleware
	ClientProfileHandler *handlers.ClientProfileHandler
	RubricHandler        *handlers.RubricHandler
	SectionHandler       *handlers.SectionHandler
	AssignmentHandler    *handlers.AssignmentHandler
	StudentHandler       *handlers.StudentHandler
	ConversationHandler  *handlers.ConversationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Log))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
		api.POST("/refresh", cfg.AuthHandler.Refresh)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	protected.POST("/logout", cfg.AuthHandler.Logout)

	// Conversation transcripts are readable by both roles: the owning student
	// and the teacher whose assignment the session is bound to.
	protected.GET("/sessions/:id/transcript", cfg.ConversationHandler.GetTranscript)

	// Teacher surface
	teacher := protected.Group("/teacher")
	teacher.Use(cfg.AuthMiddleware.RequireRole(types.RoleTeacher))
	{
		teacher.GET("/clients", cfg.ClientProfileHandler.List)
		teacher.POST("/clients", cfg.ClientProfileHandler.Create)
		teacher.GET("/clients/:id", cfg.ClientProfileHandler.Get)
		teacher.PUT("/clients/:id", cfg.ClientProfileHandler.Update)
		teacher.DELETE("/clients/:id", cfg.ClientProfileHandler.Delete)

		teacher.GET("/rubrics", cfg.RubricHandler.List)
		teacher.POST("/rubrics", cfg.RubricHandler.Create)
		teacher.GET("/rubrics/:id", cfg.RubricHandler.Get)
		teacher.PUT("/rubrics/:id", cfg.RubricHandler.Update)
		teacher.DELETE("/rubrics/:id", cfg.RubricHandler.Delete)

		teacher.GET("/sections", cfg.SectionHandler.List)
		teacher.POST("/sections", cfg.SectionHandler.Create)
		teacher.GET("/sections/:id", cfg.SectionHandler.Get)
		teacher.PUT("/sections/:id", cfg.SectionHandler.Update)
		teacher.DELETE("/sections/:id", cfg.SectionHandler.Delete)
		teacher.GET("/sections/:id/enrollments", cfg.SectionHandler.ListRoster)
		teacher.POST("/sections/:id/enrollments", cfg.SectionHandler.Enroll)
		teacher.DELETE("/sections/:id/enrollments/:studentId", cfg.SectionHandler.Unenroll)

		teacher.GET("/assignments", cfg.AssignmentHandler.List)
		teacher.POST("/assignments", cfg.AssignmentHandler.Create)
		teacher.GET("/assignments/:id", cfg.AssignmentHandler.Get)
		teacher.PUT("/assignments/:id", cfg.AssignmentHandler.Update)
		teacher.DELETE("/assignments/:id", cfg.AssignmentHandler.Delete)
		teacher.POST("/assignments/:id/publish", cfg.AssignmentHandler.Publish)
		teacher.POST("/assignments/:id/unpublish", cfg.AssignmentHandler.Unpublish)
		teacher.GET("/assignments/:id/clients", cfg.AssignmentHandler.ListClients)
		teacher.POST("/assignments/:id/clients", cfg.AssignmentHandler.AttachClient)
		teacher.DELETE("/assignments/:id/clients/:clientId", cfg.AssignmentHandler.RemoveClient)
		teacher.GET("/assignments/:id/sessions", cfg.AssignmentHandler.ListSessions)
	}

	// Student surface
	student := protected.Group("/student")
	student.Use(cfg.AuthMiddleware.RequireRole(types.RoleStudent))
	{
		student.GET("/sections", cfg.StudentHandler.ListSections)
		student.GET("/assignments", cfg.StudentHandler.ListAssignments)
		student.GET("/assignments/:id/clients", cfg.StudentHandler.ListAssignmentClients)

		student.POST("/conversations", cfg.ConversationHandler.Start)
		student.GET("/conversations", cfg.ConversationHandler.ListOwn)
		student.POST("/conversations/:id/messages", cfg.ConversationHandler.SendMessage)
		student.POST("/conversations/:id/end", cfg.ConversationHandler.End)
	}

	return router
}
