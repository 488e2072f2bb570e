package challenge

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

func sampleChallenge(date time.Time) Challenge {
	return Challenge{
		UUID:       uuid.New(),
		Date:       NormalizeDate(date),
		Title:      "Binary Search",
		Difficulty: "easy",
		Category:   "search",
		Tests: []TestCase{
			{Input: "5 in [1,3,5]", ExpectedOutput: "true", Weight: 1},
		},
		ScoringCriteria: map[string]float64{"correctness": 0.7, "speed": 0.2, "efficiency": 0.1},
		MaxPoints:       100,
		Prizes:          []Prize{{Rank: 1, Description: "t-shirt"}},
		Winners:         []Winner{},
		CreatedAt:       time.Now(),
	}
}

func TestPgChallengeRepo_StoreAndGet(t *testing.T) {
	t.Parallel()
	repo := NewPgChallengeRepo(newDB(t))
	ctx := context.Background()

	ch := sampleChallenge(time.Now())
	require.Nil(t, repo.Store(ctx, ch))

	stored, err := repo.Get(ctx, ch.UUID)
	require.Nil(t, err)
	require.NotNil(t, stored)

	require.WithinDuration(t, ch.CreatedAt, stored.CreatedAt, time.Millisecond)
	ch.CreatedAt = time.Time{}
	stored.CreatedAt = time.Time{}
	require.Equal(t, ch, *stored)
}

// TestPgChallengeRepo_DateUnique verifies the unique index on date
// surfaces as ErrDateOccupied.
func TestPgChallengeRepo_DateUnique(t *testing.T) {
	t.Parallel()
	repo := NewPgChallengeRepo(newDB(t))
	ctx := context.Background()

	date := time.Now().AddDate(0, 0, 7)
	require.Nil(t, repo.Store(ctx, sampleChallenge(date)))

	err := repo.Store(ctx, sampleChallenge(date))
	require.ErrorIs(t, err, ErrDateOccupied)
}

func TestPgChallengeRepo_GetByDate(t *testing.T) {
	t.Parallel()
	repo := NewPgChallengeRepo(newDB(t))
	ctx := context.Background()

	ch := sampleChallenge(time.Now())
	require.Nil(t, repo.Store(ctx, ch))

	stored, err := repo.GetByDate(ctx, ch.Date.Add(13*time.Hour))
	require.Nil(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, ch.UUID, stored.UUID)

	missing, err := repo.GetByDate(ctx, ch.Date.AddDate(0, 0, 1))
	require.Nil(t, err)
	assert.Nil(t, missing)
}

func TestPgChallengeRepo_List(t *testing.T) {
	t.Parallel()
	repo := NewPgChallengeRepo(newDB(t))
	ctx := context.Background()

	base := NormalizeDate(time.Now())
	for _, offset := range []int{2, 0, 1} {
		require.Nil(t, repo.Store(ctx, sampleChallenge(base.AddDate(0, 0, offset))))
	}

	challenges, err := repo.List(ctx, base, base.AddDate(0, 0, 2))
	require.Nil(t, err)
	require.Len(t, challenges, 2)
	assert.True(t, challenges[0].Date.Before(challenges[1].Date))
}

func TestPgChallengeRepo_SetWinners(t *testing.T) {
	t.Parallel()
	repo := NewPgChallengeRepo(newDB(t))
	ctx := context.Background()

	ch := sampleChallenge(time.Now())
	require.Nil(t, repo.Store(ctx, ch))

	winners := []Winner{
		{UserUUID: uuid.New(), ScoreTotal: 92, CompletionTimeSeconds: 80, PrizeStatus: PrizeStatusPending},
	}
	require.Nil(t, repo.SetWinners(ctx, ch.UUID, winners))

	stored, err := repo.Get(ctx, ch.UUID)
	require.Nil(t, err)
	assert.Equal(t, winners, stored.Winners)

	err = repo.SetWinners(ctx, uuid.New(), winners)
	require.NotNil(t, err)
}
