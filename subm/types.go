package subm

import (
	"time"

	"github.com/codedaily-app/backend/execsrvc"
	"github.com/codedaily-app/backend/scoring"
	"github.com/google/uuid"
)

const (
	StatusSubmitted = "submitted" // persisted, execution bookkeeping pending
	StatusPassed    = "passed"    // every test passed
	StatusFailed    = "failed"
)

// Submission is one participant's single attempt at one challenge.
// The (UserUUID, ChallengeUUID) pair is unique; a second attempt is
// rejected, never overwritten.
type Submission struct {
	UUID          uuid.UUID `json:"uuid"`
	UserUUID      uuid.UUID `json:"user_uuid"`
	ChallengeUUID uuid.UUID `json:"challenge_uuid"`

	Artifact    string                `json:"artifact"`
	TestResults []execsrvc.TestResult `json:"test_results"`

	Score                 scoring.Result `json:"score"`
	CompletionTimeSeconds int            `json:"completion_time_seconds"`
	Status                string         `json:"status"`

	// Rank and PrizeEligible are derived by the ranking engine and
	// recomputable from Score.Total and CompletionTimeSeconds.
	Rank          *int `json:"rank"`
	PrizeEligible bool `json:"prize_eligible"`

	CreatedAt time.Time `json:"created_at"`
}

// RankAssignment is one row of a full rank rewrite for a challenge.
type RankAssignment struct {
	SubmissionUUID uuid.UUID
	Rank           int
	PrizeEligible  bool
}
