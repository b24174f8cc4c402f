package onboarding

import "time"

// Step names, in execution order
const (
	StepCreateBoat         = "create_boat"
	StepJoinClub           = "join_club"
	StepJoinFleet          = "join_fleet"
	StepSetExperience      = "set_experience"
	StepSeedSampleData     = "seed_sample_data"
	StepCompleteOnboarding = "complete_onboarding"
)

// Step outcomes
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Run states. Processing moves to Success or Error; Error may be dismissed.
const (
	RunProcessing = "processing"
	RunSuccess    = "success"
	RunError      = "error"
	RunDismissed  = "dismissed"
)

// Experience levels
const (
	ExperienceBeginner     = "beginner"
	ExperienceIntermediate = "intermediate"
	ExperienceAdvanced     = "advanced"
	ExperienceExpert       = "expert"
)

var validExperienceLevels = map[string]bool{
	ExperienceBeginner:     true,
	ExperienceIntermediate: true,
	ExperienceAdvanced:     true,
	ExperienceExpert:       true,
}

const defaultBoatName = "My Boat"

// Input is what the onboarding wizard collected. Empty fields skip their step.
type Input struct {
	BoatClassID     string `json:"boatClassId,omitempty"`
	BoatName        string `json:"boatName,omitempty"`
	ClubID          string `json:"clubId,omitempty"`
	FleetID         string `json:"fleetId,omitempty"`
	ExperienceLevel string `json:"experienceLevel,omitempty"`
	SeedSampleData  bool   `json:"seedSampleData"`
}

// StepResult records how one step ended
type StepResult struct {
	Step   string `json:"step"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Run is one execution of the completion sequence
type Run struct {
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt *time.Time   `json:"finishedAt,omitempty"`
	ID         string       `json:"id"`
	UserID     string       `json:"userId"`
	State      string       `json:"state"`
	Steps      []StepResult `json:"steps"`
}

func (r *Run) clone() *Run {
	out := *r
	out.Steps = append([]StepResult(nil), r.Steps...)
	if r.FinishedAt != nil {
		t := *r.FinishedAt
		out.FinishedAt = &t
	}
	return &out
}

// Failed returns the steps that did not succeed
func (r *Run) Failed() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			failed = append(failed, s)
		}
	}
	return failed
}
