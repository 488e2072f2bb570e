package challenge

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type inMemRepo struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]Challenge
	byDate map[time.Time]uuid.UUID
}

func NewInMemRepo() *inMemRepo {
	return &inMemRepo{
		byID:   make(map[uuid.UUID]Challenge),
		byDate: make(map[time.Time]uuid.UUID),
	}
}

// Store implements ChallengeRepo
func (r *inMemRepo) Store(ctx context.Context, ch Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	date := NormalizeDate(ch.Date)
	if _, ok := r.byDate[date]; ok {
		return ErrDateOccupied
	}
	ch.Date = date
	r.byID[ch.UUID] = ch
	r.byDate[date] = ch.UUID
	return nil
}

// Get implements ChallengeRepo
func (r *inMemRepo) Get(ctx context.Context, id uuid.UUID) (*Challenge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ch, ok := r.byID[id]; ok {
		return &ch, nil
	}
	return nil, nil
}

// GetByDate implements ChallengeRepo
func (r *inMemRepo) GetByDate(ctx context.Context, date time.Time) (*Challenge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.byDate[NormalizeDate(date)]; ok {
		ch := r.byID[id]
		return &ch, nil
	}
	return nil, nil
}

// List implements ChallengeRepo
func (r *inMemRepo) List(ctx context.Context, from time.Time, to time.Time) ([]Challenge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	from, to = NormalizeDate(from), NormalizeDate(to)
	var res []Challenge
	for _, ch := range r.byID {
		if !ch.Date.Before(from) && ch.Date.Before(to) {
			res = append(res, ch)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Date.Before(res[j].Date)
	})
	return res, nil
}

// SetWinners implements ChallengeRepo
func (r *inMemRepo) SetWinners(ctx context.Context, id uuid.UUID, winners []Winner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.byID[id]
	if !ok {
		return ErrChallengeNotFound()
	}
	ch.Winners = winners
	r.byID[id] = ch
	return nil
}
