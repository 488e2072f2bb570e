package subm

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrDuplicate is returned by Store when a submission for the same
// (user, challenge) pair already exists. The uniqueness check lives
// in the repo so that two concurrent submits cannot both pass it.
var ErrDuplicate = errors.New("submission already exists for user and challenge")

type SubmRepo interface {
	// Store persists a new submission, rejecting duplicates with
	// ErrDuplicate atomically.
	Store(ctx context.Context, subm Submission) error
	// Get returns nil without error when not found.
	Get(ctx context.Context, id uuid.UUID) (*Submission, error)
	// GetByUserChallenge returns nil without error when not found.
	GetByUserChallenge(ctx context.Context, userUUID, challengeUUID uuid.UUID) (*Submission, error)
	// ListByChallenge returns all submissions of a challenge,
	// newest first.
	ListByChallenge(ctx context.Context, challengeUUID uuid.UUID) ([]Submission, error)
	// ListPassedByChallenge returns passed submissions ordered by
	// score total descending, completion time ascending.
	ListPassedByChallenge(ctx context.Context, challengeUUID uuid.UUID) ([]Submission, error)
	// ReplaceRanks clears all ranks of a challenge and applies the
	// given assignments in one atomic rewrite.
	ReplaceRanks(ctx context.Context, challengeUUID uuid.UUID, ranks []RankAssignment) error
	// CountByStatus returns submission counts keyed by status.
	CountByStatus(ctx context.Context) (map[string]int, error)
	// Recent returns the latest submissions across all challenges.
	Recent(ctx context.Context, limit int) ([]Submission, error)
}
