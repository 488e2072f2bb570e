package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type LedgerRepo interface {
	// InsertIfAbsent appends the entry unless one already exists for
	// (user, source ref, reason). It returns the surviving entry and
	// whether the given one was inserted. The check and the insert
	// are one atomic operation, not read-then-write.
	InsertIfAbsent(ctx context.Context, entry Entry) (Entry, bool, error)
	// TotalPoints returns the user's cached running total.
	TotalPoints(ctx context.Context, userUUID uuid.UUID) (int, error)
	// SumPoints recomputes the total from the entries themselves.
	SumPoints(ctx context.Context, userUUID uuid.UUID) (int, error)
	// ListByUser returns the user's entries, newest first.
	ListByUser(ctx context.Context, userUUID uuid.UUID) ([]Entry, error)
	// ActivityDates returns the distinct calendar dates (UTC) on
	// which the user earned an entry with the given reason, at or
	// after since, in ascending order.
	ActivityDates(ctx context.Context, userUUID uuid.UUID, reason string, since time.Time) ([]time.Time, error)
}
