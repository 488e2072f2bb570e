package challenge

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDateOccupied is returned by Store when the challenge's date is
// already taken. The catalog treats it as a signal to keep scanning,
// so it is a sentinel rather than a srvcerror.
var ErrDateOccupied = errors.New("challenge date already occupied")

type ChallengeRepo interface {
	// Store persists a new challenge. Returns ErrDateOccupied when
	// another challenge already holds the same calendar date.
	Store(ctx context.Context, ch Challenge) error
	// Get returns nil without error when no challenge has the id.
	Get(ctx context.Context, id uuid.UUID) (*Challenge, error)
	// GetByDate returns nil without error when the date is free.
	GetByDate(ctx context.Context, date time.Time) (*Challenge, error)
	// List returns challenges with from <= date < to, ordered by date.
	List(ctx context.Context, from time.Time, to time.Time) ([]Challenge, error)
	// SetWinners replaces the winners list of a challenge.
	SetWinners(ctx context.Context, id uuid.UUID, winners []Winner) error
}
