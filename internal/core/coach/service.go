package coach

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type coachService struct {
	completer Completer
	repo      Repository
	logger    *slog.Logger
	now       func() time.Time
}

// NewCoachService creates the coach. completer may be nil, in which case only
// built-in skills are answered.
func NewCoachService(completer Completer, repo Repository, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &coachService{
		completer: completer,
		repo:      repo,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *coachService) Advise(ctx context.Context, req AdviceRequest) (*Advice, error) {
	if req.UserID == "" {
		return nil, ErrUnauthorized
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	var advice *Advice
	if skill, text, ok := builtinAdvice(req.Skills); ok {
		advice = &Advice{
			Text:      text,
			Source:    SourceBuiltin,
			Skill:     skill,
			CreatedAt: s.now().UTC(),
		}
	} else {
		if s.completer == nil {
			return nil, ErrUnavailable
		}
		completion, err := s.completer.Complete(ctx, req)
		if err != nil {
			s.logger.Error("coach completion failed",
				"user_id", req.UserID,
				"action", req.Action,
				"model", req.Model,
				"error", err)
			return nil, err
		}
		advice = &Advice{
			Text:       completion.Text,
			Source:     SourceProxy,
			Model:      completion.Model,
			TokensUsed: completion.TokensUsed,
			CreatedAt:  s.now().UTC(),
		}
	}

	if req.RaceSessionID != "" {
		s.store(ctx, req, advice)
	}
	return advice, nil
}

// store saves the answer; a failed save is logged and the advice still returned
func (s *coachService) store(ctx context.Context, req AdviceRequest, advice *Advice) {
	analysis := &Analysis{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		RaceSessionID: req.RaceSessionID,
		Action:        req.Action,
		Source:        advice.Source,
		Model:         advice.Model,
		Prompt:        lastUserMessage(req.Messages),
		Response:      advice.Text,
		CreatedAt:     advice.CreatedAt,
	}
	if err := s.repo.Create(ctx, analysis); err != nil {
		s.logger.Error("failed to store coach analysis",
			"user_id", req.UserID,
			"race_session_id", req.RaceSessionID,
			"error", err)
		return
	}
	advice.AnalysisID = analysis.ID
}

func (s *coachService) ListAnalyses(ctx context.Context, userID, raceSessionID string) ([]*Analysis, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if _, err := uuid.Parse(raceSessionID); err != nil {
		return nil, NewValidationError("raceSessionId", "must be a valid id")
	}
	return s.repo.ListBySession(ctx, userID, raceSessionID)
}

func validateRequest(req *AdviceRequest) error {
	req.Action = strings.TrimSpace(req.Action)
	if req.Action == "" {
		req.Action = ActionAdvise
	}
	if !validActions[req.Action] {
		return NewValidationError("action", "must be one of: advise, analyze, chat")
	}

	if req.MaxTokens < 0 || req.MaxTokens > maxMaxTokens {
		return NewValidationError("max_tokens", fmt.Sprintf("must be between 1 and %d", maxMaxTokens))
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = defaultMaxTokens
	}

	if req.RaceSessionID != "" {
		if _, err := uuid.Parse(req.RaceSessionID); err != nil {
			return NewValidationError("raceSessionId", "must be a valid id")
		}
	}

	// Built-in skills need no conversation
	if _, _, ok := builtinAdvice(req.Skills); ok {
		return nil
	}

	if len(req.Messages) == 0 {
		return NewValidationError("messages", "at least one message is required")
	}
	if len(req.Messages) > maxMessages {
		return NewValidationError("messages", fmt.Sprintf("at most %d messages", maxMessages))
	}
	for i, m := range req.Messages {
		switch m.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return NewValidationError("messages", fmt.Sprintf("message %d has unknown role %q", i, m.Role))
		}
		if strings.TrimSpace(m.Content) == "" {
			return NewValidationError("messages", fmt.Sprintf("message %d is empty", i))
		}
		if utf8.RuneCountInString(m.Content) > maxMessageLength {
			return NewValidationError("messages", fmt.Sprintf("message %d exceeds %d characters", i, maxMessageLength))
		}
	}
	return nil
}

func lastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
