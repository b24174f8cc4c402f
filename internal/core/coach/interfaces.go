package coach

import "context"

// Service answers coaching requests
type Service interface {
	// Advise answers from a built-in skill when one is requested, otherwise asks the proxy
	Advise(ctx context.Context, req AdviceRequest) (*Advice, error)

	// ListAnalyses returns the stored answers for one of the user's race sessions, newest first
	ListAnalyses(ctx context.Context, userID, raceSessionID string) ([]*Analysis, error)
}

// Completer sends a chat to the advice proxy
type Completer interface {
	Complete(ctx context.Context, req AdviceRequest) (*Completion, error)
}

// Repository stores coach answers in ai_coach_analysis
type Repository interface {
	Create(ctx context.Context, a *Analysis) error
	ListBySession(ctx context.Context, userID, raceSessionID string) ([]*Analysis, error)
}
