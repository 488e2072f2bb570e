package subm

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/peterldowns/pgtestdb"
	"github.com/peterldowns/pgtestdb/migrators/golangmigrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codedaily-app/backend/execsrvc"
	"github.com/codedaily-app/backend/scoring"
)

// newDB returns a connection pool to a unique and isolated test
// database, fully migrated and ready for testing.
func newDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()
	conf := pgtestdb.Config{
		DriverName: "pgx",
		User:       "codedaily", // local dev pg user
		Password:   "codedaily", // local dev pg password
		Host:       "localhost",
		Port:       "5433",
		Options:    "sslmode=disable",
	}
	gm := golangmigrator.New("../migrate")
	config := pgtestdb.Custom(t, conf, gm)

	pool, err := pgxpool.New(ctx, config.URL())
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// newSampleDB seeds one challenge row that submissions can reference.
func newSampleDB(t *testing.T) (*pgxpool.Pool, uuid.UUID) {
	t.Helper()
	db := newDB(t)
	challengeUUID := uuid.New()
	_, err := db.Exec(context.Background(), `
		INSERT INTO challenges (
			uuid, date, title, difficulty, category,
			tests, scoring_criteria, max_points, prizes, winners, created_at
		) VALUES (
			$1, $2, 'Sample Challenge', 'medium', 'arrays',
			'[{"input":"1","expected_output":"1","weight":1}]', '{}', 100, '[]', '[]', NOW()
		)
	`, challengeUUID, time.Now().Format(time.DateOnly))
	if err != nil {
		t.Fatalf("Failed to seed challenge: %v", err)
	}
	return db, challengeUUID
}

func sampleSubmission(challengeUUID uuid.UUID) Submission {
	id, _ := uuid.NewV7()
	errMsg := "wrong answer"
	return Submission{
		UUID:          id,
		UserUUID:      uuid.New(),
		ChallengeUUID: challengeUUID,
		Artifact:      "def solve(): pass",
		TestResults: []execsrvc.TestResult{
			{TestCaseIndex: 0, Input: "1", ExpectedOutput: "1", ActualOutput: "1", Passed: true, ExecutionTimeMs: 120, MemoryUsageMB: 14},
			{TestCaseIndex: 1, Input: "2", ExpectedOutput: "4", ActualOutput: "5", Passed: false, ExecutionTimeMs: 90, MemoryUsageMB: 11, Error: &errMsg},
		},
		Score:                 scoring.Result{Total: 55, Rating: scoring.RatingFor(55)},
		CompletionTimeSeconds: 240,
		Status:                StatusFailed,
		CreatedAt:             time.Now(),
	}
}

func TestPgSubmRepo_StoreAndGet(t *testing.T) {
	t.Parallel()
	db, challengeUUID := newSampleDB(t)
	repo := NewPgSubmRepo(db)
	ctx := context.Background()

	sub := sampleSubmission(challengeUUID)
	require.Nil(t, repo.Store(ctx, sub))

	stored, err := repo.Get(ctx, sub.UUID)
	require.Nil(t, err)
	require.NotNil(t, stored)

	require.WithinDuration(t, sub.CreatedAt, stored.CreatedAt, time.Millisecond)
	sub.CreatedAt = time.Time{}
	stored.CreatedAt = time.Time{}
	require.Equal(t, sub, *stored)
}

func TestPgSubmRepo_Get_Missing(t *testing.T) {
	t.Parallel()
	db, _ := newSampleDB(t)
	repo := NewPgSubmRepo(db)

	stored, err := repo.Get(context.Background(), uuid.New())
	require.Nil(t, err)
	assert.Nil(t, stored)
}

// TestPgSubmRepo_DuplicatePair verifies the unique constraint on
// (user_uuid, challenge_uuid) surfaces as ErrDuplicate.
func TestPgSubmRepo_DuplicatePair(t *testing.T) {
	t.Parallel()
	db, challengeUUID := newSampleDB(t)
	repo := NewPgSubmRepo(db)
	ctx := context.Background()

	first := sampleSubmission(challengeUUID)
	require.Nil(t, repo.Store(ctx, first))

	second := sampleSubmission(challengeUUID)
	second.UserUUID = first.UserUUID
	err := repo.Store(ctx, second)
	require.ErrorIs(t, err, ErrDuplicate)

	// the original row is untouched
	stored, err := repo.GetByUserChallenge(ctx, first.UserUUID, challengeUUID)
	require.Nil(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, first.UUID, stored.UUID)
}

func TestPgSubmRepo_ListPassedOrdering(t *testing.T) {
	t.Parallel()
	db, challengeUUID := newSampleDB(t)
	repo := NewPgSubmRepo(db)
	ctx := context.Background()

	seed := func(score, seconds int, status string) Submission {
		sub := sampleSubmission(challengeUUID)
		sub.Score = scoring.Result{Total: score, Rating: scoring.RatingFor(score)}
		sub.CompletionTimeSeconds = seconds
		sub.Status = status
		require.Nil(t, repo.Store(ctx, sub))
		return sub
	}

	second := seed(90, 150, StatusPassed)
	first := seed(90, 100, StatusPassed)
	third := seed(70, 50, StatusPassed)
	seed(99, 10, StatusFailed) // excluded

	passed, err := repo.ListPassedByChallenge(ctx, challengeUUID)
	require.Nil(t, err)
	require.Len(t, passed, 3)
	assert.Equal(t, first.UUID, passed[0].UUID)
	assert.Equal(t, second.UUID, passed[1].UUID)
	assert.Equal(t, third.UUID, passed[2].UUID)
}

func TestPgSubmRepo_ReplaceRanks(t *testing.T) {
	t.Parallel()
	db, challengeUUID := newSampleDB(t)
	repo := NewPgSubmRepo(db)
	ctx := context.Background()

	a := sampleSubmission(challengeUUID)
	a.Status = StatusPassed
	b := sampleSubmission(challengeUUID)
	b.Status = StatusPassed
	require.Nil(t, repo.Store(ctx, a))
	require.Nil(t, repo.Store(ctx, b))

	err := repo.ReplaceRanks(ctx, challengeUUID, []RankAssignment{
		{SubmissionUUID: a.UUID, Rank: 1, PrizeEligible: true},
		{SubmissionUUID: b.UUID, Rank: 2, PrizeEligible: true},
	})
	require.Nil(t, err)

	stored, err := repo.Get(ctx, a.UUID)
	require.Nil(t, err)
	require.NotNil(t, stored.Rank)
	assert.Equal(t, 1, *stored.Rank)
	assert.True(t, stored.PrizeEligible)

	// a second rewrite clears what it does not reassign
	err = repo.ReplaceRanks(ctx, challengeUUID, []RankAssignment{
		{SubmissionUUID: b.UUID, Rank: 1, PrizeEligible: true},
	})
	require.Nil(t, err)

	stored, err = repo.Get(ctx, a.UUID)
	require.Nil(t, err)
	assert.Nil(t, stored.Rank)
	assert.False(t, stored.PrizeEligible)
}

func TestPgSubmRepo_CountByStatus(t *testing.T) {
	t.Parallel()
	db, challengeUUID := newSampleDB(t)
	repo := NewPgSubmRepo(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		sub := sampleSubmission(challengeUUID)
		sub.Status = StatusPassed
		require.Nil(t, repo.Store(ctx, sub))
	}
	sub := sampleSubmission(challengeUUID)
	require.Nil(t, repo.Store(ctx, sub))

	counts, err := repo.CountByStatus(ctx)
	require.Nil(t, err)
	assert.Equal(t, 3, counts[StatusPassed])
	assert.Equal(t, 1, counts[StatusFailed])
}
