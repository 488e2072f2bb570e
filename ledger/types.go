package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Award reasons. Together with (user, source ref) a reason forms the
// idempotency key: at most one entry exists per combination.
const (
	ReasonParticipation = "participation"
	ReasonRank1         = "rank_1"
	ReasonRank2         = "rank_2"
	ReasonRank3         = "rank_3"
	ReasonPerfectScore  = "perfect_score"
	ReasonStreak7d      = "streak_7d"
	ReasonStreak14d     = "streak_14d"
	ReasonStreak30d     = "streak_30d"
)

// Entry is an immutable, append-only grant of points. A user's total
// is the sum of their entries; any cached total must reconcile to it.
type Entry struct {
	UUID     uuid.UUID `json:"uuid"`
	UserUUID uuid.UUID `json:"user_uuid"`

	// SourceRef identifies what the points were granted for: a
	// submission uuid, or a synthetic streak reference.
	SourceRef string `json:"source_ref"`

	Points    int       `json:"points"` // >= 0
	Reason    string    `json:"reason"`
	AwardedAt time.Time `json:"awarded_at"`
}
