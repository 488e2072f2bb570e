package challenge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultHorizonDays bounds the forward scan for a free date.
const DefaultHorizonDays = 30

// CatalogSrvc owns the one-challenge-per-date invariant. It never
// mutates the test content of an already stored challenge; winners
// are written on behalf of the ranking engine only.
type CatalogSrvc struct {
	logger  *slog.Logger
	repo    ChallengeRepo
	horizon int // days scanned forward on a date conflict
}

func NewCatalogSrvc(repo ChallengeRepo) *CatalogSrvc {
	return &CatalogSrvc{
		logger:  slog.Default().With("module", "challenge"),
		repo:    repo,
		horizon: DefaultHorizonDays,
	}
}

type ScheduleParams struct {
	Title           string
	Difficulty      string
	Category        string
	Tests           []TestCase
	ScoringCriteria map[string]float64
	MaxPoints       int
	Prizes          []Prize
}

// Schedule places a new challenge on requestedDate, or on the first
// free date within the horizon when the requested one is occupied.
// When the whole horizon is occupied it returns the requested date's
// occupant unchanged together with ErrSchedulingConflict.
func (s *CatalogSrvc) Schedule(ctx context.Context, params ScheduleParams, requestedDate time.Time) (*Challenge, error) {
	if len(params.Tests) == 0 {
		return nil, ErrInvalidChallenge("a challenge needs at least one test case")
	}
	if params.MaxPoints <= 0 {
		return nil, ErrInvalidChallenge("max points must be positive")
	}

	ch := Challenge{
		UUID:            uuid.New(),
		Title:           params.Title,
		Difficulty:      params.Difficulty,
		Category:        params.Category,
		Tests:           params.Tests,
		ScoringCriteria: params.ScoringCriteria,
		MaxPoints:       params.MaxPoints,
		Prizes:          params.Prizes,
		Winners:         []Winner{},
		CreatedAt:       time.Now(),
	}

	requestedDate = NormalizeDate(requestedDate)
	for i := 0; i < s.horizon; i++ {
		date := requestedDate.AddDate(0, 0, i)
		occupant, err := s.repo.GetByDate(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("failed to check date %s: %w", date.Format(time.DateOnly), err)
		}
		if occupant != nil {
			continue
		}
		ch.Date = date
		err = s.repo.Store(ctx, ch)
		if errors.Is(err, ErrDateOccupied) {
			// lost a race for this date, keep scanning
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to store challenge: %w", err)
		}
		if i > 0 {
			s.logger.Info("challenge moved to next free date",
				"requested", requestedDate.Format(time.DateOnly),
				"assigned", date.Format(time.DateOnly))
		}
		return &ch, nil
	}

	occupant, err := s.repo.GetByDate(ctx, requestedDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch occupant: %w", err)
	}
	s.logger.Warn("scheduling horizon exhausted",
		"requested", requestedDate.Format(time.DateOnly),
		"horizon_days", s.horizon)
	return occupant, ErrSchedulingConflict()
}

// Lookup returns the challenge scheduled on the given calendar date.
func (s *CatalogSrvc) Lookup(ctx context.Context, date time.Time) (*Challenge, error) {
	ch, err := s.repo.GetByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup challenge: %w", err)
	}
	if ch == nil {
		return nil, ErrChallengeNotFound()
	}
	return ch, nil
}

// Get returns the challenge with the given id.
func (s *CatalogSrvc) Get(ctx context.Context, id uuid.UUID) (*Challenge, error) {
	ch, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	if ch == nil {
		return nil, ErrChallengeNotFound()
	}
	return ch, nil
}

// List returns challenges with from <= date < to ordered by date.
func (s *CatalogSrvc) List(ctx context.Context, from, to time.Time) ([]Challenge, error) {
	return s.repo.List(ctx, from, to)
}

// SetWinners replaces the winners list. Callers outside the ranking
// engine have no business invoking this.
func (s *CatalogSrvc) SetWinners(ctx context.Context, id uuid.UUID, winners []Winner) error {
	if len(winners) > 3 {
		return fmt.Errorf("winners list may hold at most 3 entries, got %d", len(winners))
	}
	return s.repo.SetWinners(ctx, id, winners)
}
