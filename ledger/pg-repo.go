package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgLedgerRepo struct {
	pool *pgxpool.Pool
}

func NewPgLedgerRepo(pool *pgxpool.Pool) *pgLedgerRepo {
	return &pgLedgerRepo{pool: pool}
}

// InsertIfAbsent implements LedgerRepo. The unique constraint on
// (user_uuid, source_ref, reason) plus ON CONFLICT DO NOTHING makes
// the award an atomic insert-if-absent; two concurrent callers cannot
// both insert. The cached total in user_points moves in the same
// transaction as the entry.
func (r *pgLedgerRepo) InsertIfAbsent(ctx context.Context, entry Entry) (Entry, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to begin award transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO ledger_entries (uuid, user_uuid, source_ref, points, reason, awarded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_uuid, source_ref, reason) DO NOTHING
	`, entry.UUID, entry.UserUUID, entry.SourceRef, entry.Points, entry.Reason, entry.AwardedAt)
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// lost the insert race or a re-attempt: hand back the
		// surviving entry without touching totals
		var existing Entry
		err := tx.QueryRow(ctx, `
			SELECT uuid, user_uuid, source_ref, points, reason, awarded_at
			FROM ledger_entries
			WHERE user_uuid = $1 AND source_ref = $2 AND reason = $3
		`, entry.UserUUID, entry.SourceRef, entry.Reason).Scan(
			&existing.UUID, &existing.UserUUID, &existing.SourceRef,
			&existing.Points, &existing.Reason, &existing.AwardedAt,
		)
		if err != nil {
			return Entry{}, false, fmt.Errorf("failed to fetch existing entry: %w", err)
		}
		return existing, false, tx.Commit(ctx)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO user_points (user_uuid, total)
		VALUES ($1, $2)
		ON CONFLICT (user_uuid) DO UPDATE SET total = user_points.total + $2
	`, entry.UserUUID, entry.Points)
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to update cached total: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Entry{}, false, fmt.Errorf("failed to commit award: %w", err)
	}
	return entry, true, nil
}

func (r *pgLedgerRepo) TotalPoints(ctx context.Context, userUUID uuid.UUID) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT total FROM user_points WHERE user_uuid = $1`, userUUID).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to query cached total: %w", err)
	}
	return total, nil
}

func (r *pgLedgerRepo) SumPoints(ctx context.Context, userUUID uuid.UUID) (int, error) {
	var sum int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(points), 0) FROM ledger_entries WHERE user_uuid = $1`,
		userUUID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum ledger entries: %w", err)
	}
	return sum, nil
}

func (r *pgLedgerRepo) ListByUser(ctx context.Context, userUUID uuid.UUID) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT uuid, user_uuid, source_ref, points, reason, awarded_at
		FROM ledger_entries
		WHERE user_uuid = $1
		ORDER BY awarded_at DESC
	`, userUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(&e.UUID, &e.UserUUID, &e.SourceRef, &e.Points, &e.Reason, &e.AwardedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *pgLedgerRepo) ActivityDates(ctx context.Context, userUUID uuid.UUID, reason string, since time.Time) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT (awarded_at AT TIME ZONE 'UTC')::date AS day
		FROM ledger_entries
		WHERE user_uuid = $1 AND reason = $2 AND awarded_at >= $3
		ORDER BY day
	`, userUUID, reason, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan activity date: %w", err)
		}
		dates = append(dates, truncateToDay(day))
	}
	return dates, rows.Err()
}
