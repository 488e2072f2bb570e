package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type awardKey struct {
	user      uuid.UUID
	sourceRef string
	reason    string
}

type inMemRepo struct {
	mu      sync.Mutex
	entries map[awardKey]Entry
	totals  map[uuid.UUID]int
}

func NewInMemRepo() *inMemRepo {
	return &inMemRepo{
		entries: make(map[awardKey]Entry),
		totals:  make(map[uuid.UUID]int),
	}
}

// InsertIfAbsent implements LedgerRepo. One lock spans the existence
// check, the append and the total increment, making the award a
// compare-and-set.
func (r *inMemRepo) InsertIfAbsent(ctx context.Context, entry Entry) (Entry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := awardKey{entry.UserUUID, entry.SourceRef, entry.Reason}
	if existing, ok := r.entries[key]; ok {
		return existing, false, nil
	}
	r.entries[key] = entry
	r.totals[entry.UserUUID] += entry.Points
	return entry, true, nil
}

// TotalPoints implements LedgerRepo
func (r *inMemRepo) TotalPoints(ctx context.Context, userUUID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totals[userUUID], nil
}

// SumPoints implements LedgerRepo
func (r *inMemRepo) SumPoints(ctx context.Context, userUUID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := 0
	for _, e := range r.entries {
		if e.UserUUID == userUUID {
			sum += e.Points
		}
	}
	return sum, nil
}

// ListByUser implements LedgerRepo
func (r *inMemRepo) ListByUser(ctx context.Context, userUUID uuid.UUID) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []Entry
	for _, e := range r.entries {
		if e.UserUUID == userUUID {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].AwardedAt.After(res[j].AwardedAt)
	})
	return res, nil
}

// ActivityDates implements LedgerRepo
func (r *inMemRepo) ActivityDates(ctx context.Context, userUUID uuid.UUID, reason string, since time.Time) ([]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[time.Time]bool)
	for _, e := range r.entries {
		if e.UserUUID != userUUID || e.Reason != reason {
			continue
		}
		day := truncateToDay(e.AwardedAt)
		if day.Before(truncateToDay(since)) {
			continue
		}
		seen[day] = true
	}
	dates := make([]time.Time, 0, len(seen))
	for day := range seen {
		dates = append(dates, day)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
