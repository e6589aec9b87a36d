package app

import (
	"fmt"

	"gorm.io/gorm"

	redisclient "github.com/yungbote/virtual-client-backend/internal/clients/redis"
	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/services"
)

type Services struct {
	Auth          services.AuthService
	ClientProfile services.ClientProfileService
	Rubric        services.RubricService
	Section       services.SectionService
	Enrollment    services.EnrollmentService
	Assignment    services.AssignmentService
	Student       services.StudentService
	Prompt        services.PromptService
	AIClient      services.AIClient
	Breaker       services.CircuitBreaker
	RateLimiter   services.RateLimiter
	TokenCost     services.TokenCostService
	Conversation  services.ConversationService
	Session       services.SessionService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) (Services, error) {
	log.Info("Wiring services...")

	authService := services.NewAuthService(db, log, r.User, r.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	clientProfileService := services.NewClientProfileService(db, log, r.ClientProfile, r.AssignmentClient, r.Session)
	rubricService := services.NewRubricService(db, log, r.Rubric, r.AssignmentClient)
	sectionService := services.NewSectionService(db, log, r.Section, r.Enrollment, r.Assignment)
	enrollmentService := services.NewEnrollmentService(db, log, sectionService, r.Enrollment, r.User)
	assignmentService := services.NewAssignmentService(db, log, sectionService, r.Assignment, r.AssignmentClient, r.ClientProfile, r.Rubric)
	studentService := services.NewStudentService(db, log, r.Enrollment, r.Section, r.Assignment, r.AssignmentClient)
	promptService := services.NewPromptService(log)
	tokenCostService := services.NewTokenCostService(log)

	aiClient, err := services.NewAnthropicClient(log)
	if err != nil {
		return Services{}, fmt.Errorf("init anthropic client: %w", err)
	}

	breaker := services.NewCircuitBreaker(log, cfg.BreakerFailureThreshold, cfg.BreakerCoolDown)

	// Redis is optional: when unconfigured or unreachable the limiter runs on
	// the in-process store instead.
	var store services.RateLimitStore
	redisCli, rErr := redisclient.NewClient(log)
	if rErr != nil {
		log.Warn("Redis unavailable, using in-memory rate limit store", "error", rErr)
	}
	if redisCli != nil {
		store = services.NewRedisRateLimitStore(redisCli)
	} else {
		store = services.NewMemoryRateLimitStore()
	}
	rateLimiter := services.NewRateLimiter(log, store, cfg.RateLimit)

	conversationService := services.NewConversationService(
		db,
		log,
		r.Session,
		r.Message,
		r.ClientProfile,
		r.AssignmentClient,
		r.Assignment,
		r.Enrollment,
		r.Section,
		r.AICallLog,
		promptService,
		aiClient,
		breaker,
		rateLimiter,
		tokenCostService,
	)
	sessionService := services.NewSessionService(db, log, r.Session, r.Message, r.AssignmentClient, r.Assignment, r.Section)

	return Services{
		Auth:          authService,
		ClientProfile: clientProfileService,
		Rubric:        rubricService,
		Section:       sectionService,
		Enrollment:    enrollmentService,
		Assignment:    assignmentService,
		Student:       studentService,
		Prompt:        promptService,
		AIClient:      aiClient,
		Breaker:       breaker,
		RateLimiter:   rateLimiter,
		TokenCost:     tokenCostService,
		Conversation:  conversationService,
		Session:       sessionService,
	}, nil
}
