package onboarding

import "context"

// Service runs the post-wizard write sequence
type Service interface {
	// Complete runs every step and returns the finished run. Step failures are
	// recorded in the run, not returned; only invalid input returns an error.
	Complete(ctx context.Context, userID string, in Input) (*Run, error)

	GetRun(ctx context.Context, userID, runID string) (*Run, error)

	// ContinueAnyway dismisses a failed run without retrying its writes
	ContinueAnyway(ctx context.Context, userID, runID string) (*Run, error)
}

// Repository performs the individual onboarding writes. Each write is an upsert
// or returns ErrAlreadyExists, so a rerun never duplicates rows.
type Repository interface {
	CreateBoat(ctx context.Context, userID, boatClassID, name string) error
	AddClubMember(ctx context.Context, clubID, userID string) error
	AddFleetMember(ctx context.Context, fleetID, userID string) error
	SetExperienceLevel(ctx context.Context, userID, level string) error
	SeedSampleData(ctx context.Context, userID string) error
	MarkOnboardingCompleted(ctx context.Context, userID string) error
}
