package ranking

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codedaily-app/backend/challenge"
	"github.com/codedaily-app/backend/notify"
	"github.com/codedaily-app/backend/scoring"
	"github.com/codedaily-app/backend/subm"
)

type rankAward struct {
	userUUID uuid.UUID
	rank     int
}

type stubAwarder struct {
	mu     sync.Mutex
	awards []rankAward
}

func (s *stubAwarder) AwardRank(ctx context.Context, userUUID uuid.UUID, submissionUUID uuid.UUID, rank int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.awards = append(s.awards, rankAward{userUUID: userUUID, rank: rank})
}

type nopNotifier struct{}

func (nopNotifier) Notify(ctx context.Context, event notify.Event) {}

type fixture struct {
	srvc    *RankSrvc
	subms   *challengeBoard
	catalog *challenge.CatalogSrvc
	awarder *stubAwarder
	ch      *challenge.Challenge
}

// challengeBoard wraps the in-memory submission repo with direct
// seeding helpers for ranking tests.
type challengeBoard struct {
	subm.SubmRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalog := challenge.NewCatalogSrvc(challenge.NewInMemRepo())
	ch, err := catalog.Schedule(context.Background(), challenge.ScheduleParams{
		Title:      "Shortest Path",
		Difficulty: "hard",
		Category:   "graphs",
		Tests:      []challenge.TestCase{{Input: "g", ExpectedOutput: "p", Weight: 1}},
		MaxPoints:  100,
	}, time.Now())
	require.Nil(t, err)

	board := &challengeBoard{SubmRepo: subm.NewInMemRepo()}
	awarder := &stubAwarder{}
	srvc := NewRankSrvc(board, catalog, awarder, nopNotifier{})
	return &fixture{srvc: srvc, subms: board, catalog: catalog, awarder: awarder, ch: ch}
}

func (f *fixture) seed(t *testing.T, score, completionSeconds int, status string) subm.Submission {
	t.Helper()
	id, err := uuid.NewV7()
	require.Nil(t, err)
	sub := subm.Submission{
		UUID:                  id,
		UserUUID:              uuid.New(),
		ChallengeUUID:         f.ch.UUID,
		Artifact:              "solution",
		Score:                 scoring.Result{Total: score, Rating: scoring.RatingFor(score)},
		CompletionTimeSeconds: completionSeconds,
		Status:                status,
		CreatedAt:             time.Now(),
	}
	require.Nil(t, f.subms.Store(context.Background(), sub))
	return sub
}

func rankOf(t *testing.T, f *fixture, id uuid.UUID) int {
	t.Helper()
	stored, err := f.subms.Get(context.Background(), id)
	require.Nil(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.Rank, "submission %s has no rank", id)
	return *stored.Rank
}

// TestRerank_ScoreThenTime covers the canonical ordering: equal scores
// are broken by completion time, lower score follows.
func TestRerank_ScoreThenTime(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	first := f.seed(t, 90, 100, subm.StatusPassed)
	second := f.seed(t, 90, 120, subm.StatusPassed)
	third := f.seed(t, 70, 200, subm.StatusPassed)

	require.Nil(t, f.srvc.Rerank(context.Background(), f.ch.UUID))

	assert.Equal(t, 1, rankOf(t, f, first.UUID))
	assert.Equal(t, 2, rankOf(t, f, second.UUID))
	assert.Equal(t, 3, rankOf(t, f, third.UUID))
}

// TestRerank_FailedExcluded verifies failed submissions never receive
// a rank.
func TestRerank_FailedExcluded(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	passed := f.seed(t, 80, 100, subm.StatusPassed)
	failed := f.seed(t, 95, 50, subm.StatusFailed)

	require.Nil(t, f.srvc.Rerank(context.Background(), f.ch.UUID))

	assert.Equal(t, 1, rankOf(t, f, passed.UUID))
	stored, err := f.subms.Get(context.Background(), failed.UUID)
	require.Nil(t, err)
	assert.Nil(t, stored.Rank)
	assert.False(t, stored.PrizeEligible)
}

// TestRerank_DenseContiguousRanks seeds a random board and requires
// ranks to be exactly 1..N over the passing set.
func TestRerank_DenseContiguousRanks(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	const n = 20
	ids := make([]uuid.UUID, n)
	for i := 0; i < n; i++ {
		ids[i] = f.seed(t, rand.Intn(101), rand.Intn(600)+1, subm.StatusPassed).UUID
	}

	require.Nil(t, f.srvc.Rerank(context.Background(), f.ch.UUID))

	seen := make(map[int]bool)
	for _, id := range ids {
		r := rankOf(t, f, id)
		assert.False(t, seen[r], "rank %d assigned twice", r)
		seen[r] = true
	}
	for r := 1; r <= n; r++ {
		assert.True(t, seen[r], "rank %d missing", r)
	}
}

// TestRerank_Idempotent reranks twice and requires identical ranks.
func TestRerank_Idempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	a := f.seed(t, 85, 90, subm.StatusPassed)
	b := f.seed(t, 60, 30, subm.StatusPassed)

	require.Nil(t, f.srvc.Rerank(context.Background(), f.ch.UUID))
	firstA, firstB := rankOf(t, f, a.UUID), rankOf(t, f, b.UUID)

	require.Nil(t, f.srvc.Rerank(context.Background(), f.ch.UUID))
	assert.Equal(t, firstA, rankOf(t, f, a.UUID))
	assert.Equal(t, firstB, rankOf(t, f, b.UUID))
}

// TestTrigger_EventuallyRanks verifies the fire-and-forget trigger
// path reaches a consistent ranking, however many triggers coalesce.
func TestTrigger_EventuallyRanks(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	sub := f.seed(t, 77, 45, subm.StatusPassed)
	for i := 0; i < 25; i++ {
		f.srvc.Trigger(f.ch.UUID)
	}

	require.Eventually(t, func() bool {
		stored, err := f.subms.Get(context.Background(), sub.UUID)
		return err == nil && stored.Rank != nil && *stored.Rank == 1
	}, 3*time.Second, 10*time.Millisecond)
}

// TestAnnounceWinners_TopThree verifies the winner snapshot, the prize
// eligibility flags and the rank-based awards.
func TestAnnounceWinners_TopThree(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	subs := []subm.Submission{
		f.seed(t, 95, 80, subm.StatusPassed),
		f.seed(t, 88, 100, subm.StatusPassed),
		f.seed(t, 82, 110, subm.StatusPassed),
		f.seed(t, 75, 90, subm.StatusPassed),
	}

	winners, err := f.srvc.AnnounceWinners(ctx, f.ch.UUID)
	require.Nil(t, err)
	require.Len(t, winners, 3)

	for i, w := range winners {
		assert.Equal(t, subs[i].UserUUID, w.UserUUID)
		assert.Equal(t, subs[i].Score.Total, w.ScoreTotal)
		assert.Equal(t, challenge.PrizeStatusPending, w.PrizeStatus)
		assert.True(t, i < 3)
	}

	// the snapshot is persisted on the challenge
	stored, err := f.catalog.Get(ctx, f.ch.UUID)
	require.Nil(t, err)
	require.Len(t, stored.Winners, 3)

	// prize eligibility follows the final ranking
	for i, sub := range subs {
		got, err := f.subms.Get(ctx, sub.UUID)
		require.Nil(t, err)
		assert.Equal(t, i < 3, got.PrizeEligible)
	}

	f.awarder.mu.Lock()
	defer f.awarder.mu.Unlock()
	require.Len(t, f.awarder.awards, 3)
	for i, award := range f.awarder.awards {
		assert.Equal(t, subs[i].UserUUID, award.userUUID)
		assert.Equal(t, i+1, award.rank)
	}
}

// TestAnnounceWinners_FewerThanThree announces with a single passing
// submission.
func TestAnnounceWinners_FewerThanThree(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	only := f.seed(t, 66, 55, subm.StatusPassed)
	winners, err := f.srvc.AnnounceWinners(context.Background(), f.ch.UUID)
	require.Nil(t, err)
	require.Len(t, winners, 1)
	assert.Equal(t, only.UserUUID, winners[0].UserUUID)
}

// TestRerank_ConcurrentWithSubmissions races reranks against fresh
// submissions and requires the final state to be dense and ordered.
func TestRerank_ConcurrentWithSubmissions(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var ids []uuid.UUID
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sub := f.seed(t, 50+i, 100+i, subm.StatusPassed)
			mu.Lock()
			ids = append(ids, sub.UUID)
			mu.Unlock()
			f.srvc.Trigger(f.ch.UUID)
		}(i)
	}
	wg.Wait()

	// a final synchronous rerank settles whatever the background
	// workers interleaved
	require.Nil(t, f.srvc.Rerank(ctx, f.ch.UUID))

	seen := make(map[int]bool)
	for _, id := range ids {
		r := rankOf(t, f, id)
		require.False(t, seen[r])
		seen[r] = true
	}
	for r := 1; r <= len(ids); r++ {
		require.True(t, seen[r], "rank %d missing", r)
	}
}
