package subm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgSubmRepo struct {
	pool *pgxpool.Pool
}

func NewPgSubmRepo(pool *pgxpool.Pool) *pgSubmRepo {
	return &pgSubmRepo{pool: pool}
}

const submColumns = `
	uuid, user_uuid, challenge_uuid, artifact, test_results,
	score_total, score, completion_time_seconds, status,
	rank, prize_eligible, created_at
`

// Store inserts a new submission. The unique constraint on
// (user_uuid, challenge_uuid) makes the duplicate rejection race-free:
// the losing insert of two concurrent submits gets ErrDuplicate.
func (r *pgSubmRepo) Store(ctx context.Context, subm Submission) error {
	testResults, err := json.Marshal(subm.TestResults)
	if err != nil {
		return fmt.Errorf("failed to marshal test results: %w", err)
	}
	score, err := json.Marshal(subm.Score)
	if err != nil {
		return fmt.Errorf("failed to marshal score: %w", err)
	}

	insertQuery := `
		INSERT INTO submissions (` + submColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.pool.Exec(ctx, insertQuery,
		subm.UUID,
		subm.UserUUID,
		subm.ChallengeUUID,
		subm.Artifact,
		testResults,
		subm.Score.Total,
		score,
		subm.CompletionTimeSeconds,
		subm.Status,
		subm.Rank,
		subm.PrizeEligible,
		subm.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

func (r *pgSubmRepo) Get(ctx context.Context, id uuid.UUID) (*Submission, error) {
	query := `SELECT ` + submColumns + ` FROM submissions WHERE uuid = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *pgSubmRepo) GetByUserChallenge(ctx context.Context, userUUID, challengeUUID uuid.UUID) (*Submission, error) {
	query := `
		SELECT ` + submColumns + `
		FROM submissions
		WHERE user_uuid = $1 AND challenge_uuid = $2
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, userUUID, challengeUUID))
}

func (r *pgSubmRepo) scanOne(row pgx.Row) (*Submission, error) {
	subm, err := scanSubm(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query submission: %w", err)
	}
	return subm, nil
}

func scanSubm(row pgx.Row) (*Submission, error) {
	var subm Submission
	var testResults, score []byte
	var scoreTotal int
	err := row.Scan(
		&subm.UUID,
		&subm.UserUUID,
		&subm.ChallengeUUID,
		&subm.Artifact,
		&testResults,
		&scoreTotal,
		&score,
		&subm.CompletionTimeSeconds,
		&subm.Status,
		&subm.Rank,
		&subm.PrizeEligible,
		&subm.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(testResults, &subm.TestResults); err != nil {
		return nil, fmt.Errorf("failed to unmarshal test results: %w", err)
	}
	if err := json.Unmarshal(score, &subm.Score); err != nil {
		return nil, fmt.Errorf("failed to unmarshal score: %w", err)
	}
	return &subm, nil
}

func (r *pgSubmRepo) queryMany(ctx context.Context, query string, args ...any) ([]Submission, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var subms []Submission
	for rows.Next() {
		subm, err := scanSubm(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subms = append(subms, *subm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}
	return subms, nil
}

func (r *pgSubmRepo) ListByChallenge(ctx context.Context, challengeUUID uuid.UUID) ([]Submission, error) {
	query := `
		SELECT ` + submColumns + `
		FROM submissions
		WHERE challenge_uuid = $1
		ORDER BY created_at DESC
	`
	return r.queryMany(ctx, query, challengeUUID)
}

// ListPassedByChallenge relies on the partial index over
// (challenge_uuid, status, score_total DESC, completion_time_seconds).
func (r *pgSubmRepo) ListPassedByChallenge(ctx context.Context, challengeUUID uuid.UUID) ([]Submission, error) {
	query := `
		SELECT ` + submColumns + `
		FROM submissions
		WHERE challenge_uuid = $1 AND status = 'passed'
		ORDER BY score_total DESC, completion_time_seconds ASC
	`
	return r.queryMany(ctx, query, challengeUUID)
}

// ReplaceRanks rewrites the full ranking of one challenge in a single
// transaction so readers never observe a half-applied ranking.
func (r *pgSubmRepo) ReplaceRanks(ctx context.Context, challengeUUID uuid.UUID, ranks []RankAssignment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin rank transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE submissions
		SET rank = NULL, prize_eligible = FALSE
		WHERE challenge_uuid = $1
	`, challengeUUID)
	if err != nil {
		return fmt.Errorf("failed to clear ranks: %w", err)
	}

	for _, ra := range ranks {
		_, err = tx.Exec(ctx, `
			UPDATE submissions
			SET rank = $1, prize_eligible = $2
			WHERE uuid = $3
		`, ra.Rank, ra.PrizeEligible, ra.SubmissionUUID)
		if err != nil {
			return fmt.Errorf("failed to assign rank: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *pgSubmRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM submissions GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *pgSubmRepo) Recent(ctx context.Context, limit int) ([]Submission, error) {
	query := `
		SELECT ` + submColumns + `
		FROM submissions
		ORDER BY created_at DESC
		LIMIT $1
	`
	return r.queryMany(ctx, query, limit)
}
