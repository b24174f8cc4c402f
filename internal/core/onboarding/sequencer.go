package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

const runStoreSize = 4096

// step is one idempotent write. A step returns skip=true when its input is absent.
type step struct {
	run  func(ctx context.Context, userID string, in Input) (skip bool, err error)
	name string
}

type sequencer struct {
	repo   Repository
	runs   *runStore
	logger *slog.Logger
	now    func() time.Time
	steps  []step
}

// NewSequencer creates the onboarding service
func NewSequencer(repo Repository, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &sequencer{
		repo:   repo,
		runs:   newRunStore(runStoreSize),
		logger: logger,
		now:    time.Now,
	}
	s.steps = []step{
		{name: StepCreateBoat, run: s.createBoat},
		{name: StepJoinClub, run: s.joinClub},
		{name: StepJoinFleet, run: s.joinFleet},
		{name: StepSetExperience, run: s.setExperience},
		{name: StepSeedSampleData, run: s.seedSampleData},
	}
	return s
}

// Complete runs each step in order. A failing step is logged and recorded and
// the next one still runs. complete_onboarding always runs last; the run ends in
// Error only if that final step fails.
func (s *sequencer) Complete(ctx context.Context, userID string, in Input) (*Run, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	run := &Run{
		ID:        uuid.NewString(),
		UserID:    userID,
		State:     RunProcessing,
		StartedAt: s.now().UTC(),
		Steps:     make([]StepResult, 0, len(s.steps)+1),
	}
	s.runs.put(run)

	for _, st := range s.steps {
		result := s.runStep(ctx, run, st, in)
		run.Steps = append(run.Steps, result)
		s.runs.put(run)
	}

	final := s.runStep(ctx, run, step{name: StepCompleteOnboarding, run: s.completeOnboarding}, in)
	run.Steps = append(run.Steps, final)

	finished := s.now().UTC()
	run.FinishedAt = &finished
	if final.Status == StatusFailed {
		run.State = RunError
	} else {
		run.State = RunSuccess
	}
	s.runs.put(run)

	s.logger.Info("onboarding finished",
		"run_id", run.ID,
		"user_id", userID,
		"state", run.State,
		"failed_steps", len(run.Failed()))
	return run.clone(), nil
}

func (s *sequencer) runStep(ctx context.Context, run *Run, st step, in Input) StepResult {
	skip, err := st.run(ctx, run.UserID, in)
	switch {
	case skip:
		return StepResult{Step: st.name, Status: StatusSkipped}
	case err == nil, errors.Is(err, ErrAlreadyExists):
		return StepResult{Step: st.name, Status: StatusOK}
	default:
		s.logger.Warn("onboarding step failed",
			"run_id", run.ID,
			"user_id", run.UserID,
			"step", st.name,
			"error", err)
		return StepResult{Step: st.name, Status: StatusFailed, Error: err.Error()}
	}
}

func (s *sequencer) GetRun(ctx context.Context, userID, runID string) (*Run, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	run, ok := s.runs.get(userID, runID)
	if !ok {
		return nil, ErrRunNotFound
	}
	return run, nil
}

// ContinueAnyway moves an Error run to Dismissed. Dismissing twice is a no-op.
func (s *sequencer) ContinueAnyway(ctx context.Context, userID, runID string) (*Run, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.runs.update(userID, runID, func(run *Run) error {
		switch run.State {
		case RunError:
			run.State = RunDismissed
			s.logger.Info("onboarding error dismissed", "run_id", run.ID, "user_id", userID)
			return nil
		case RunDismissed:
			return nil
		default:
			return ErrInvalidTransition
		}
	})
}

func (s *sequencer) createBoat(ctx context.Context, userID string, in Input) (bool, error) {
	if in.BoatClassID == "" {
		return true, nil
	}
	name := in.BoatName
	if name == "" {
		name = defaultBoatName
	}
	return false, s.repo.CreateBoat(ctx, userID, in.BoatClassID, name)
}

func (s *sequencer) joinClub(ctx context.Context, userID string, in Input) (bool, error) {
	if in.ClubID == "" {
		return true, nil
	}
	return false, s.repo.AddClubMember(ctx, in.ClubID, userID)
}

func (s *sequencer) joinFleet(ctx context.Context, userID string, in Input) (bool, error) {
	if in.FleetID == "" {
		return true, nil
	}
	return false, s.repo.AddFleetMember(ctx, in.FleetID, userID)
}

func (s *sequencer) setExperience(ctx context.Context, userID string, in Input) (bool, error) {
	if in.ExperienceLevel == "" {
		return true, nil
	}
	return false, s.repo.SetExperienceLevel(ctx, userID, in.ExperienceLevel)
}

func (s *sequencer) seedSampleData(ctx context.Context, userID string, in Input) (bool, error) {
	if !in.SeedSampleData {
		return true, nil
	}
	return false, s.repo.SeedSampleData(ctx, userID)
}

func (s *sequencer) completeOnboarding(ctx context.Context, userID string, in Input) (bool, error) {
	return false, s.repo.MarkOnboardingCompleted(ctx, userID)
}

// validateInput rejects malformed input before any write
func validateInput(in *Input) error {
	in.BoatName = strings.TrimSpace(in.BoatName)
	in.ExperienceLevel = strings.ToLower(strings.TrimSpace(in.ExperienceLevel))

	for _, f := range []struct {
		field string
		value string
	}{
		{"boatClassId", in.BoatClassID},
		{"clubId", in.ClubID},
		{"fleetId", in.FleetID},
	} {
		if f.value == "" {
			continue
		}
		if _, err := uuid.Parse(f.value); err != nil {
			return NewValidationError(f.field, "must be a valid id")
		}
	}

	if in.BoatName != "" && in.BoatClassID == "" {
		return NewValidationError("boatClassId", "a boat class is required to name a boat")
	}
	if len(in.BoatName) > 100 {
		return NewValidationError("boatName", fmt.Sprintf("must not exceed %d characters", 100))
	}
	if in.ExperienceLevel != "" && !validExperienceLevels[in.ExperienceLevel] {
		return NewValidationError("experienceLevel", "must be one of: beginner, intermediate, advanced, expert")
	}
	return nil
}
