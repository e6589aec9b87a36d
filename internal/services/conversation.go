package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/virtual-client-backend/internal/apierr"
	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/repos"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

// fallbackReply is stored as the assistant turn when the provider is
// unavailable. Kept in-character so a student mid-session sees a plausible
// client response rather than an error.
const fallbackReply = "I'm sorry, I need a moment to collect myself. Could we pick this up again in a few minutes?"

const fallbackGreeting = "Hi... sorry, I'm feeling a bit scattered today. Give me a moment and I'll be ready to talk."

type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter.Round(time.Second))
}

type StartConversationInput struct {
	AssignmentClientID *uuid.UUID
	ClientProfileID    *uuid.UUID
}

type ConversationService interface {
	Start(ctx context.Context, input StartConversationInput) (*types.Session, *types.Message, error)
	SendMessage(ctx context.Context, sessionID uuid.UUID, content string) (*types.Message, *types.Message, error)
	End(ctx context.Context, sessionID uuid.UUID) (*types.Session, error)
}

type conversationService struct {
	db  *gorm.DB
	log *logger.Logger

	sessionRepo          repos.SessionRepo
	messageRepo          repos.MessageRepo
	clientProfileRepo    repos.ClientProfileRepo
	assignmentClientRepo repos.AssignmentClientRepo
	assignmentRepo       repos.AssignmentRepo
	enrollmentRepo       repos.EnrollmentRepo
	sectionRepo          repos.SectionRepo
	aiCallLogRepo        repos.AICallLogRepo

	promptService PromptService
	aiClient      AIClient
	breaker       CircuitBreaker
	rateLimiter   RateLimiter
	tokenCost     TokenCostService
}

func NewConversationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sessionRepo repos.SessionRepo,
	messageRepo repos.MessageRepo,
	clientProfileRepo repos.ClientProfileRepo,
	assignmentClientRepo repos.AssignmentClientRepo,
	assignmentRepo repos.AssignmentRepo,
	enrollmentRepo repos.EnrollmentRepo,
	sectionRepo repos.SectionRepo,
	aiCallLogRepo repos.AICallLogRepo,
	promptService PromptService,
	aiClient AIClient,
	breaker CircuitBreaker,
	rateLimiter RateLimiter,
	tokenCost TokenCostService,
) ConversationService {
	serviceLog := baseLog.With("service", "ConversationService")
	return &conversationService{
		db:                   db,
		log:                  serviceLog,
		sessionRepo:          sessionRepo,
		messageRepo:          messageRepo,
		clientProfileRepo:    clientProfileRepo,
		assignmentClientRepo: assignmentClientRepo,
		assignmentRepo:       assignmentRepo,
		enrollmentRepo:       enrollmentRepo,
		sectionRepo:          sectionRepo,
		aiCallLogRepo:        aiCallLogRepo,
		promptService:        promptService,
		aiClient:             aiClient,
		breaker:              breaker,
		rateLimiter:          rateLimiter,
		tokenCost:            tokenCost,
	}
}

func fallbackMetadata() datatypes.JSON {
	return datatypes.JSON([]byte(`{"fallback":true}`))
}

// resolveStartTarget verifies the student may talk to the requested client and
// returns the profile plus the assignment-client binding when present.
func (s *conversationService) resolveStartTarget(ctx context.Context, studentID uuid.UUID, input StartConversationInput) (*types.ClientProfile, *uuid.UUID, error) {
	switch {
	case input.AssignmentClientID != nil:
		acs, err := s.assignmentClientRepo.GetByIDs(ctx, nil, []uuid.UUID{*input.AssignmentClientID})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load assignment client: %w", err)
		}
		if len(acs) == 0 || !acs[0].IsActive {
			return nil, nil, apierr.Newf(http.StatusNotFound, "assignment_client_not_found", "assignment client not found")
		}
		ac := acs[0]

		assignments, aErr := s.assignmentRepo.GetByIDs(ctx, nil, []uuid.UUID{ac.AssignmentID})
		if aErr != nil {
			return nil, nil, fmt.Errorf("failed to load assignment: %w", aErr)
		}
		if len(assignments) == 0 || !assignments[0].IsActive || !assignments[0].IsPublished {
			return nil, nil, apierr.Newf(http.StatusNotFound, "assignment_not_available", "assignment is not available")
		}
		assignment := assignments[0]
		now := time.Now()
		if assignment.AvailableFrom != nil && assignment.AvailableFrom.After(now) {
			return nil, nil, apierr.Newf(http.StatusNotFound, "assignment_not_available", "assignment is not yet available")
		}

		enrolled, eErr := s.enrollmentRepo.ActiveExists(ctx, nil, assignment.SectionID, studentID)
		if eErr != nil {
			return nil, nil, fmt.Errorf("failed to check enrollment: %w", eErr)
		}
		if !enrolled {
			return nil, nil, apierr.Newf(http.StatusForbidden, "not_enrolled", "you are not enrolled in this assignment's section")
		}

		profiles, pErr := s.clientProfileRepo.GetByIDs(ctx, nil, []uuid.UUID{ac.ClientProfileID})
		if pErr != nil {
			return nil, nil, fmt.Errorf("failed to load client profile: %w", pErr)
		}
		if len(profiles) == 0 {
			return nil, nil, apierr.Newf(http.StatusNotFound, "client_profile_not_found", "client profile not found")
		}
		acID := ac.ID
		return profiles[0], &acID, nil

	case input.ClientProfileID != nil:
		// Practice mode: allowed when the profile's teacher runs a section the
		// student is actively enrolled in.
		profiles, pErr := s.clientProfileRepo.GetByIDs(ctx, nil, []uuid.UUID{*input.ClientProfileID})
		if pErr != nil {
			return nil, nil, fmt.Errorf("failed to load client profile: %w", pErr)
		}
		if len(profiles) == 0 {
			return nil, nil, apierr.Newf(http.StatusNotFound, "client_profile_not_found", "client profile not found")
		}
		profile := profiles[0]

		enrollments, eErr := s.enrollmentRepo.ListByStudentID(ctx, nil, studentID, true)
		if eErr != nil {
			return nil, nil, fmt.Errorf("failed to load enrollments: %w", eErr)
		}
		sectionIDs := make([]uuid.UUID, 0, len(enrollments))
		for _, e := range enrollments {
			sectionIDs = append(sectionIDs, e.SectionID)
		}
		sections, sErr := s.sectionRepo.GetByIDs(ctx, nil, sectionIDs)
		if sErr != nil {
			return nil, nil, fmt.Errorf("failed to load sections: %w", sErr)
		}
		for _, section := range sections {
			if section.TeacherID == profile.TeacherID {
				return profile, nil, nil
			}
		}
		return nil, nil, apierr.Newf(http.StatusForbidden, "not_permitted", "no enrollment grants access to this client profile")

	default:
		return nil, nil, apierr.Newf(http.StatusBadRequest, "target_required", "assignment_client_id or client_profile_id is required")
	}
}

func (s *conversationService) Start(ctx context.Context, input StartConversationInput) (*types.Session, *types.Message, error) {
	studentID, err := requireStudent(ctx)
	if err != nil {
		return nil, nil, err
	}
	profile, acID, rErr := s.resolveStartTarget(ctx, studentID, input)
	if rErr != nil {
		return nil, nil, rErr
	}

	session := &types.Session{
		ID:                 uuid.New(),
		StudentID:          studentID,
		ClientProfileID:    profile.ID,
		AssignmentClientID: acID,
		Status:             types.SessionStatusActive,
	}
	if _, cErr := s.sessionRepo.Create(ctx, nil, []*types.Session{session}); cErr != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", cErr)
	}

	greeting := s.generateGreeting(ctx, session, profile)
	return session, greeting, nil
}

// generateGreeting produces the opening assistant message. Provider problems
// never fail the start; the canned greeting takes over.
func (s *conversationService) generateGreeting(ctx context.Context, session *types.Session, profile *types.ClientProfile) *types.Message {
	system := s.promptService.BuildClientSystemPrompt(profile)
	turns := []ChatTurn{{Role: types.MessageRoleUser, Content: s.promptService.GreetingInstruction()}}

	if !s.breaker.Allow() {
		return s.storeFallback(ctx, session, fallbackGreeting)
	}

	start := time.Now()
	result, err := s.aiClient.Chat(ctx, system, turns)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		category := CategorizeAIError(err)
		s.recordProviderFailure(ctx, session, "greeting", category, err, latency)
		return s.storeFallback(ctx, session, fallbackGreeting)
	}

	s.breaker.RecordSuccess()
	msg, sErr := s.storeAssistantReply(ctx, session, result, system, "greeting", latency)
	if sErr != nil {
		s.log.Error("Failed to store greeting", "session_id", session.ID, "error", sErr)
		return s.storeFallback(ctx, session, fallbackGreeting)
	}
	return msg
}

func (s *conversationService) SendMessage(ctx context.Context, sessionID uuid.UUID, content string) (*types.Message, *types.Message, error) {
	studentID, err := requireStudent(ctx)
	if err != nil {
		return nil, nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, apierr.Newf(http.StatusBadRequest, "content_required", "message content is required")
	}

	sessions, gErr := s.sessionRepo.GetByIDs(ctx, nil, []uuid.UUID{sessionID})
	if gErr != nil {
		return nil, nil, fmt.Errorf("failed to load session: %w", gErr)
	}
	if len(sessions) == 0 {
		return nil, nil, apierr.Newf(http.StatusNotFound, "session_not_found", "session not found")
	}
	session := sessions[0]
	if session.StudentID != studentID {
		return nil, nil, apierr.Newf(http.StatusForbidden, "not_owner", "session belongs to another student")
	}
	if session.Status != types.SessionStatusActive {
		return nil, nil, apierr.Newf(http.StatusBadRequest, "session_completed", "cannot send messages to a completed session")
	}

	retryAfter, rlErr := s.rateLimiter.Check(ctx, studentID)
	if rlErr != nil {
		return nil, nil, fmt.Errorf("rate limiter error: %w", rlErr)
	}
	if retryAfter > 0 {
		return nil, nil, apierr.New(http.StatusTooManyRequests, "rate_limited", &RateLimitedError{RetryAfter: retryAfter})
	}

	profiles, pErr := s.clientProfileRepo.GetByIDs(ctx, nil, []uuid.UUID{session.ClientProfileID})
	if pErr != nil {
		return nil, nil, fmt.Errorf("failed to load client profile: %w", pErr)
	}
	if len(profiles) == 0 {
		return nil, nil, apierr.Newf(http.StatusNotFound, "client_profile_not_found", "client profile no longer exists")
	}
	profile := profiles[0]

	var userMsg *types.Message
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, cErr := s.sessionRepo.ClaimNextSeq(ctx, tx, session.ID)
		if cErr != nil {
			return fmt.Errorf("failed to claim message seq: %w", cErr)
		}
		userMsg = &types.Message{
			ID:         uuid.New(),
			SessionID:  session.ID,
			Seq:        seq,
			Role:       types.MessageRoleUser,
			Content:    content,
			TokenCount: s.tokenCost.EstimateTokens(content),
		}
		if _, mErr := s.messageRepo.Create(ctx, tx, []*types.Message{userMsg}); mErr != nil {
			return fmt.Errorf("failed to store user message: %w", mErr)
		}
		return nil
	})
	if txErr != nil {
		return nil, nil, txErr
	}

	system := s.promptService.BuildClientSystemPrompt(profile)
	turns, tErr := s.buildTurns(ctx, session.ID)
	if tErr != nil {
		return nil, nil, tErr
	}

	if !s.breaker.Allow() {
		reply := s.storeFallback(ctx, session, fallbackReply)
		return userMsg, reply, nil
	}

	start := time.Now()
	result, aiErr := s.aiClient.Chat(ctx, system, turns)
	latency := time.Since(start).Milliseconds()

	if aiErr != nil {
		category := CategorizeAIError(aiErr)
		s.recordProviderFailure(ctx, session, "chat", category, aiErr, latency)
		if category == AIErrCategoryAuth || category == AIErrCategoryInvalidRequest {
			// Misconfiguration, not load: surface it instead of masking with a
			// canned reply.
			return nil, nil, apierr.Newf(http.StatusBadGateway, "provider_error", "language model call failed: %s", category)
		}
		reply := s.storeFallback(ctx, session, fallbackReply)
		return userMsg, reply, nil
	}

	s.breaker.RecordSuccess()
	reply, sErr := s.storeAssistantReply(ctx, session, result, system, "chat", latency)
	if sErr != nil {
		return nil, nil, sErr
	}
	return userMsg, reply, nil
}

// buildTurns renders the stored transcript as alternating provider turns. The
// greeting instruction is re-prepended as the opening user turn so the list
// starts with a user role the way the messages API requires.
func (s *conversationService) buildTurns(ctx context.Context, sessionID uuid.UUID) ([]ChatTurn, error) {
	messages, err := s.messageRepo.ListBySessionID(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	turns := make([]ChatTurn, 0, len(messages)+1)
	turns = append(turns, ChatTurn{Role: types.MessageRoleUser, Content: s.promptService.GreetingInstruction()})
	for _, m := range messages {
		if m.Role != types.MessageRoleUser && m.Role != types.MessageRoleAssistant {
			continue
		}
		turns = append(turns, ChatTurn{Role: m.Role, Content: m.Content})
	}
	return turns, nil
}

func (s *conversationService) storeAssistantReply(ctx context.Context, session *types.Session, result *ChatResult, system string, callType string, latencyMS int64) (*types.Message, error) {
	inputTokens := result.InputTokens
	if inputTokens == 0 {
		inputTokens = s.tokenCost.EstimateTokens(system)
	}
	outputTokens := result.OutputTokens
	if outputTokens == 0 {
		outputTokens = s.tokenCost.EstimateTokens(result.Text)
	}
	cost := s.tokenCost.EstimateCost(result.Model, inputTokens, outputTokens)

	var msg *types.Message
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, cErr := s.sessionRepo.ClaimNextSeq(ctx, tx, session.ID)
		if cErr != nil {
			return fmt.Errorf("failed to claim message seq: %w", cErr)
		}
		msg = &types.Message{
			ID:         uuid.New(),
			SessionID:  session.ID,
			Seq:        seq,
			Role:       types.MessageRoleAssistant,
			Content:    result.Text,
			TokenCount: outputTokens,
			Model:      result.Model,
		}
		if _, mErr := s.messageRepo.Create(ctx, tx, []*types.Message{msg}); mErr != nil {
			return fmt.Errorf("failed to store assistant message: %w", mErr)
		}
		if uErr := s.sessionRepo.AccumulateUsage(ctx, tx, session.ID, inputTokens+outputTokens, cost); uErr != nil {
			return fmt.Errorf("failed to accumulate session usage: %w", uErr)
		}

		usage, _ := json.Marshal(map[string]interface{}{
			"input_tokens":  result.InputTokens,
			"output_tokens": result.OutputTokens,
			"stop_reason":   result.StopReason,
		})
		logRow := &types.AICallLog{
			ID:            uuid.New(),
			UserID:        &session.StudentID,
			SessionID:     &session.ID,
			CallType:      callType,
			Model:         result.Model,
			Success:       true,
			InputTokens:   inputTokens,
			OutputTokens:  outputTokens,
			EstimatedCost: cost,
			LatencyMS:     latencyMS,
			Usage:         datatypes.JSON(usage),
		}
		if _, lErr := s.aiCallLogRepo.Create(ctx, tx, []*types.AICallLog{logRow}); lErr != nil {
			return fmt.Errorf("failed to write call log: %w", lErr)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return msg, nil
}

// storeFallback persists the canned assistant reply with the fallback flag.
// Errors are logged, not returned: losing the flagged reply row is better
// than failing the whole request after the provider already let us down.
func (s *conversationService) storeFallback(ctx context.Context, session *types.Session, content string) *types.Message {
	var msg *types.Message
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, cErr := s.sessionRepo.ClaimNextSeq(ctx, tx, session.ID)
		if cErr != nil {
			return cErr
		}
		msg = &types.Message{
			ID:         uuid.New(),
			SessionID:  session.ID,
			Seq:        seq,
			Role:       types.MessageRoleAssistant,
			Content:    content,
			TokenCount: s.tokenCost.EstimateTokens(content),
			Metadata:   fallbackMetadata(),
		}
		_, mErr := s.messageRepo.Create(ctx, tx, []*types.Message{msg})
		return mErr
	})
	if txErr != nil {
		s.log.Error("Failed to store fallback message", "session_id", session.ID, "error", txErr)
		return &types.Message{
			SessionID: session.ID,
			Role:      types.MessageRoleAssistant,
			Content:   content,
			Metadata:  fallbackMetadata(),
		}
	}
	return msg
}

func (s *conversationService) recordProviderFailure(ctx context.Context, session *types.Session, callType, category string, err error, latencyMS int64) {
	// Auth and invalid-request failures surface to the caller instead of being
	// masked by a fallback, so they must not trip the breaker either.
	if category != AIErrCategoryAuth && category != AIErrCategoryInvalidRequest {
		s.breaker.RecordFailure()
	}
	logRow := &types.AICallLog{
		ID:            uuid.New(),
		UserID:        &session.StudentID,
		SessionID:     &session.ID,
		CallType:      callType,
		Model:         s.aiClient.Model(),
		Success:       false,
		Error:         err.Error(),
		ErrorCategory: category,
		LatencyMS:     latencyMS,
	}
	if _, lErr := s.aiCallLogRepo.Create(ctx, nil, []*types.AICallLog{logRow}); lErr != nil {
		s.log.Error("Failed to write failure call log", "session_id", session.ID, "error", lErr)
	}
	s.log.Warn("Provider call failed",
		"session_id", session.ID,
		"call_type", callType,
		"category", category,
		"error", err.Error(),
	)
}

func (s *conversationService) End(ctx context.Context, sessionID uuid.UUID) (*types.Session, error) {
	studentID, err := requireStudent(ctx)
	if err != nil {
		return nil, err
	}
	sessions, gErr := s.sessionRepo.GetByIDs(ctx, nil, []uuid.UUID{sessionID})
	if gErr != nil {
		return nil, fmt.Errorf("failed to load session: %w", gErr)
	}
	if len(sessions) == 0 {
		return nil, apierr.Newf(http.StatusNotFound, "session_not_found", "session not found")
	}
	session := sessions[0]
	if session.StudentID != studentID {
		return nil, apierr.Newf(http.StatusForbidden, "not_owner", "session belongs to another student")
	}
	// Idempotent: ending a completed session is a no-op.
	if session.Status == types.SessionStatusCompleted {
		return session, nil
	}
	now := time.Now()
	if mErr := s.sessionRepo.MarkCompleted(ctx, nil, session.ID, now); mErr != nil {
		return nil, fmt.Errorf("failed to complete session: %w", mErr)
	}
	session.Status = types.SessionStatusCompleted
	session.CompletedAt = &now
	return session, nil
}
