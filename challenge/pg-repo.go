package challenge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgChallengeRepo struct {
	pool *pgxpool.Pool
}

func NewPgChallengeRepo(pool *pgxpool.Pool) *pgChallengeRepo {
	return &pgChallengeRepo{pool: pool}
}

const challengeColumns = `
	uuid, date, title, difficulty, category,
	tests, scoring_criteria, max_points, prizes, winners, created_at
`

// Store inserts a new challenge. The unique index on date turns a
// concurrent insert for the same date into ErrDateOccupied.
func (r *pgChallengeRepo) Store(ctx context.Context, ch Challenge) error {
	tests, err := json.Marshal(ch.Tests)
	if err != nil {
		return fmt.Errorf("failed to marshal tests: %w", err)
	}
	criteria, err := json.Marshal(ch.ScoringCriteria)
	if err != nil {
		return fmt.Errorf("failed to marshal scoring criteria: %w", err)
	}
	prizes, err := json.Marshal(ch.Prizes)
	if err != nil {
		return fmt.Errorf("failed to marshal prizes: %w", err)
	}
	winners, err := json.Marshal(ch.Winners)
	if err != nil {
		return fmt.Errorf("failed to marshal winners: %w", err)
	}

	insertQuery := `
		INSERT INTO challenges (` + challengeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.pool.Exec(ctx, insertQuery,
		ch.UUID,
		NormalizeDate(ch.Date),
		ch.Title,
		ch.Difficulty,
		ch.Category,
		tests,
		criteria,
		ch.MaxPoints,
		prizes,
		winners,
		ch.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDateOccupied
		}
		return fmt.Errorf("failed to insert challenge: %w", err)
	}
	return nil
}

func (r *pgChallengeRepo) Get(ctx context.Context, id uuid.UUID) (*Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE uuid = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *pgChallengeRepo) GetByDate(ctx context.Context, date time.Time) (*Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE date = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, NormalizeDate(date)))
}

func (r *pgChallengeRepo) scanOne(row pgx.Row) (*Challenge, error) {
	var ch Challenge
	var tests, criteria, prizes, winners []byte
	err := row.Scan(
		&ch.UUID,
		&ch.Date,
		&ch.Title,
		&ch.Difficulty,
		&ch.Category,
		&tests,
		&criteria,
		&ch.MaxPoints,
		&prizes,
		&winners,
		&ch.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query challenge: %w", err)
	}
	if err := unmarshalChallengeJson(&ch, tests, criteria, prizes, winners); err != nil {
		return nil, err
	}
	ch.Date = NormalizeDate(ch.Date)
	return &ch, nil
}

func unmarshalChallengeJson(ch *Challenge, tests, criteria, prizes, winners []byte) error {
	if err := json.Unmarshal(tests, &ch.Tests); err != nil {
		return fmt.Errorf("failed to unmarshal tests: %w", err)
	}
	if err := json.Unmarshal(criteria, &ch.ScoringCriteria); err != nil {
		return fmt.Errorf("failed to unmarshal scoring criteria: %w", err)
	}
	if err := json.Unmarshal(prizes, &ch.Prizes); err != nil {
		return fmt.Errorf("failed to unmarshal prizes: %w", err)
	}
	if err := json.Unmarshal(winners, &ch.Winners); err != nil {
		return fmt.Errorf("failed to unmarshal winners: %w", err)
	}
	return nil
}

func (r *pgChallengeRepo) List(ctx context.Context, from time.Time, to time.Time) ([]Challenge, error) {
	query := `
		SELECT ` + challengeColumns + `
		FROM challenges
		WHERE date >= $1 AND date < $2
		ORDER BY date
	`
	rows, err := r.pool.Query(ctx, query, NormalizeDate(from), NormalizeDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query challenges: %w", err)
	}
	defer rows.Close()

	var challenges []Challenge
	for rows.Next() {
		var ch Challenge
		var tests, criteria, prizes, winners []byte
		err := rows.Scan(
			&ch.UUID,
			&ch.Date,
			&ch.Title,
			&ch.Difficulty,
			&ch.Category,
			&tests,
			&criteria,
			&ch.MaxPoints,
			&prizes,
			&winners,
			&ch.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		if err := unmarshalChallengeJson(&ch, tests, criteria, prizes, winners); err != nil {
			return nil, err
		}
		ch.Date = NormalizeDate(ch.Date)
		challenges = append(challenges, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating challenges: %w", err)
	}
	return challenges, nil
}

func (r *pgChallengeRepo) SetWinners(ctx context.Context, id uuid.UUID, winners []Winner) error {
	data, err := json.Marshal(winners)
	if err != nil {
		return fmt.Errorf("failed to marshal winners: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `UPDATE challenges SET winners = $1 WHERE uuid = $2`, data, id)
	if err != nil {
		return fmt.Errorf("failed to update winners: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrChallengeNotFound()
	}
	return nil
}
