package subm

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type userChallengeKey struct {
	user      uuid.UUID
	challenge uuid.UUID
}

type inMemRepo struct {
	mu     sync.RWMutex
	subms  map[uuid.UUID]Submission
	byPair map[userChallengeKey]uuid.UUID
}

func NewInMemRepo() *inMemRepo {
	return &inMemRepo{
		subms:  make(map[uuid.UUID]Submission),
		byPair: make(map[userChallengeKey]uuid.UUID),
	}
}

// Store implements SubmRepo. The duplicate check and the insert
// happen under one lock, mirroring the database unique constraint.
func (r *inMemRepo) Store(ctx context.Context, subm Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := userChallengeKey{subm.UserUUID, subm.ChallengeUUID}
	if _, ok := r.byPair[key]; ok {
		return ErrDuplicate
	}
	r.subms[subm.UUID] = subm
	r.byPair[key] = subm.UUID
	return nil
}

// Get implements SubmRepo
func (r *inMemRepo) Get(ctx context.Context, id uuid.UUID) (*Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if subm, ok := r.subms[id]; ok {
		return &subm, nil
	}
	return nil, nil
}

// GetByUserChallenge implements SubmRepo
func (r *inMemRepo) GetByUserChallenge(ctx context.Context, userUUID, challengeUUID uuid.UUID) (*Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.byPair[userChallengeKey{userUUID, challengeUUID}]; ok {
		subm := r.subms[id]
		return &subm, nil
	}
	return nil, nil
}

// ListByChallenge implements SubmRepo
func (r *inMemRepo) ListByChallenge(ctx context.Context, challengeUUID uuid.UUID) ([]Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var res []Submission
	for _, subm := range r.subms {
		if subm.ChallengeUUID == challengeUUID {
			res = append(res, subm)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

// ListPassedByChallenge implements SubmRepo
func (r *inMemRepo) ListPassedByChallenge(ctx context.Context, challengeUUID uuid.UUID) ([]Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var res []Submission
	for _, subm := range r.subms {
		if subm.ChallengeUUID == challengeUUID && subm.Status == StatusPassed {
			res = append(res, subm)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Score.Total != res[j].Score.Total {
			return res[i].Score.Total > res[j].Score.Total
		}
		return res[i].CompletionTimeSeconds < res[j].CompletionTimeSeconds
	})
	return res, nil
}

// ReplaceRanks implements SubmRepo
func (r *inMemRepo) ReplaceRanks(ctx context.Context, challengeUUID uuid.UUID, ranks []RankAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, subm := range r.subms {
		if subm.ChallengeUUID != challengeUUID {
			continue
		}
		subm.Rank = nil
		subm.PrizeEligible = false
		r.subms[id] = subm
	}
	for _, ra := range ranks {
		subm, ok := r.subms[ra.SubmissionUUID]
		if !ok {
			continue
		}
		rank := ra.Rank
		subm.Rank = &rank
		subm.PrizeEligible = ra.PrizeEligible
		r.subms[subm.UUID] = subm
	}
	return nil
}

// CountByStatus implements SubmRepo
func (r *inMemRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int)
	for _, subm := range r.subms {
		counts[subm.Status]++
	}
	return counts, nil
}

// Recent implements SubmRepo
func (r *inMemRepo) Recent(ctx context.Context, limit int) ([]Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]Submission, 0, len(r.subms))
	for _, subm := range r.subms {
		res = append(res, subm)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}
