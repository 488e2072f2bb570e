package challenge

import (
	"time"

	"github.com/google/uuid"
)

// TestCase is one input/expected-output pair a solution is executed
// against. Weight is carried through to the execution report untouched.
type TestCase struct {
	Input          string  `json:"input"`
	ExpectedOutput string  `json:"expected_output"`
	Weight         float64 `json:"weight"`
}

// Prize describes what the holder of a given rank receives.
type Prize struct {
	Rank        int    `json:"rank"`
	Description string `json:"description"`
}

const (
	PrizeStatusPending   = "pending"
	PrizeStatusDelivered = "delivered"
)

// Winner is a snapshot of a top-3 submission taken at announcement
// time. Reranks after announcement do not rewrite history.
type Winner struct {
	UserUUID              uuid.UUID `json:"user_uuid"`
	ScoreTotal            int       `json:"score_total"`
	CompletionTimeSeconds int       `json:"completion_time_seconds"`
	PrizeStatus           string    `json:"prize_status"`
}

type Challenge struct {
	UUID  uuid.UUID `json:"uuid"`
	Date  time.Time `json:"date"` // calendar date, UTC midnight
	Title string    `json:"title"`

	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`

	Tests           []TestCase         `json:"tests"`
	ScoringCriteria map[string]float64 `json:"scoring_criteria"`
	MaxPoints       int                `json:"max_points"`

	Prizes  []Prize  `json:"prizes"`
	Winners []Winner `json:"winners"` // at most 3, set by winner announcement

	CreatedAt time.Time `json:"created_at"`
}

// NormalizeDate truncates t to its calendar date in UTC. All date
// comparisons in the catalog go through this.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
