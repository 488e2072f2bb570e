package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/codedaily-app/backend/subm"
	"github.com/google/uuid"
)

// LedgerSrvc grants reward points exactly once per (user, source,
// reason) and detects streak bonuses. Award bookkeeping is decoupled
// from submission success: a failed grant goes to the retry queue and
// is re-attempted, which is safe because awards are idempotent.
type LedgerSrvc struct {
	logger *slog.Logger
	repo   LedgerRepo
	table  RewardTable

	retryCh    chan awardReq
	retryDelay time.Duration
	wg         sync.WaitGroup
}

type awardReq struct {
	userUUID  uuid.UUID
	sourceRef string
	points    int
	reason    string
	attempts  int
}

const maxAwardAttempts = 5

func NewLedgerSrvc(repo LedgerRepo, table RewardTable) *LedgerSrvc {
	return newLedgerSrvc(repo, table, 5*time.Second)
}

// newLedgerSrvc takes the retry delay so tests can shrink it.
func newLedgerSrvc(repo LedgerRepo, table RewardTable, retryDelay time.Duration) *LedgerSrvc {
	s := &LedgerSrvc{
		logger:     slog.Default().With("module", "ledger"),
		repo:       repo,
		table:      table,
		retryCh:    make(chan awardReq, 256),
		retryDelay: retryDelay,
	}
	s.wg.Add(1)
	go s.reconcile()
	return s
}

// Close drains the retry queue and stops the reconciler.
func (s *LedgerSrvc) Close() {
	close(s.retryCh)
	s.wg.Wait()
}

// Award grants points once for (user, sourceRef, reason). When an
// entry already exists it is returned with alreadyAwarded true and
// the user's total is not incremented; this is a no-op, not an error.
func (s *LedgerSrvc) Award(ctx context.Context, userUUID uuid.UUID, sourceRef string, points int, reason string) (Entry, bool, error) {
	if points < 0 {
		return Entry{}, false, fmt.Errorf("points must be non-negative, got %d", points)
	}
	entry := Entry{
		UUID:      uuid.New(),
		UserUUID:  userUUID,
		SourceRef: sourceRef,
		Points:    points,
		Reason:    reason,
		AwardedAt: time.Now(),
	}
	stored, inserted, err := s.repo.InsertIfAbsent(ctx, entry)
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to persist award: %w", err)
	}
	return stored, !inserted, nil
}

// AwardSubmission implements subm.Awarder: participation points for
// every recorded submission, a flat bonus for a perfect score, then a
// streak check. Failures are deferred to reconciliation, never
// surfaced to the submission path.
func (s *LedgerSrvc) AwardSubmission(ctx context.Context, sub subm.Submission, challengeMaxPoints int) {
	s.tryAward(ctx, sub.UserUUID, sub.UUID.String(), s.table.Participation, ReasonParticipation)
	if sub.Score.Total == challengeMaxPoints {
		s.tryAward(ctx, sub.UserUUID, sub.UUID.String(), s.table.PerfectScore, ReasonPerfectScore)
	}
	s.checkStreaks(ctx, sub.UserUUID)
}

// AwardRank implements ranking.WinnerAwarder.
func (s *LedgerSrvc) AwardRank(ctx context.Context, userUUID uuid.UUID, submissionUUID uuid.UUID, rank int) {
	points, reason := s.table.ForRank(rank)
	if reason == "" {
		return
	}
	s.tryAward(ctx, userUUID, submissionUUID.String(), points, reason)
	s.checkStreaks(ctx, userUUID)
}

// tryAward is the best-effort award path: on persistence failure the
// request is queued for reconciliation.
func (s *LedgerSrvc) tryAward(ctx context.Context, userUUID uuid.UUID, sourceRef string, points int, reason string) {
	_, already, err := s.Award(ctx, userUUID, sourceRef, points, reason)
	if err != nil {
		s.logger.Error("award persistence failure, deferring to reconciliation",
			"user_uuid", userUUID, "source_ref", sourceRef, "reason", reason, "error", err)
		s.enqueueRetry(awardReq{userUUID: userUUID, sourceRef: sourceRef, points: points, reason: reason})
		return
	}
	if already {
		s.logger.Debug("award already granted",
			"user_uuid", userUUID, "source_ref", sourceRef, "reason", reason)
	}
}

func (s *LedgerSrvc) enqueueRetry(req awardReq) {
	select {
	case s.retryCh <- req:
	default:
		s.logger.Error("award retry queue full, dropping award",
			"user_uuid", req.userUUID, "source_ref", req.sourceRef, "reason", req.reason)
	}
}

// reconcile re-attempts queued awards until they stick or the attempt
// budget runs out. The delay sits between failed attempts only, so a
// queue of grantable awards drains without waiting and Close returns
// promptly.
func (s *LedgerSrvc) reconcile() {
	defer s.wg.Done()
	for req := range s.retryCh {
		for {
			_, _, err := s.Award(context.Background(), req.userUUID, req.sourceRef, req.points, req.reason)
			if err == nil {
				break
			}
			req.attempts++
			if req.attempts >= maxAwardAttempts {
				s.logger.Error("dropping award after repeated failures",
					"user_uuid", req.userUUID, "source_ref", req.sourceRef,
					"reason", req.reason, "error", err)
				break
			}
			time.Sleep(s.retryDelay)
		}
	}
}

// streakTiers in ascending order of required consecutive days.
var streakTiers = []struct {
	days   int
	reason string
}{
	{7, ReasonStreak7d},
	{14, ReasonStreak14d},
	{30, ReasonStreak30d},
}

func (s *LedgerSrvc) streakPoints(reason string) int {
	switch reason {
	case ReasonStreak7d:
		return s.table.Streak7d
	case ReasonStreak14d:
		return s.table.Streak14d
	case ReasonStreak30d:
		return s.table.Streak30d
	default:
		return 0
	}
}

// checkStreaks awards a one-time bonus when the user's run of
// consecutive participation days reaches a tier threshold. The run's
// start date is folded into the source ref, so each calendar run can
// earn each tier exactly once no matter how often the check fires.
func (s *LedgerSrvc) checkStreaks(ctx context.Context, userUUID uuid.UUID) {
	today := truncateToDay(time.Now())
	since := today.AddDate(0, 0, -35)
	dates, err := s.repo.ActivityDates(ctx, userUUID, ReasonParticipation, since)
	if err != nil {
		s.logger.Error("streak check failed", "user_uuid", userUUID, "error", err)
		return
	}

	runLen := consecutiveRunEnding(dates, today)
	if runLen == 0 {
		return
	}
	runStart := today.AddDate(0, 0, -(runLen - 1))
	sourceRef := fmt.Sprintf("streak:%s", runStart.Format(time.DateOnly))

	for _, tier := range streakTiers {
		// the run passes through each threshold exactly once; a
		// longer run already earned the tier when it crossed
		if runLen == tier.days {
			s.tryAward(ctx, userUUID, sourceRef, s.streakPoints(tier.reason), tier.reason)
		}
	}
}

// consecutiveRunEnding counts the consecutive daily activity run that
// ends on the given day. Dates are ascending distinct UTC days.
func consecutiveRunEnding(dates []time.Time, end time.Time) int {
	run := 0
	expected := end
	for i := len(dates) - 1; i >= 0; i-- {
		if !dates[i].Equal(expected) {
			break
		}
		run++
		expected = expected.AddDate(0, 0, -1)
	}
	return run
}

// UserPoints returns the cached total and the full entry history.
func (s *LedgerSrvc) UserPoints(ctx context.Context, userUUID uuid.UUID) (int, []Entry, error) {
	total, err := s.repo.TotalPoints(ctx, userUUID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to fetch total: %w", err)
	}
	entries, err := s.repo.ListByUser(ctx, userUUID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return total, entries, nil
}

// VerifyTotal recomputes the user's total from the entries and
// reports whether the cached value reconciles to it.
func (s *LedgerSrvc) VerifyTotal(ctx context.Context, userUUID uuid.UUID) (cached int, sum int, err error) {
	cached, err = s.repo.TotalPoints(ctx, userUUID)
	if err != nil {
		return 0, 0, err
	}
	sum, err = s.repo.SumPoints(ctx, userUUID)
	if err != nil {
		return 0, 0, err
	}
	if cached != sum {
		s.logger.Warn("cached total out of sync with ledger",
			"user_uuid", userUUID, "cached", cached, "sum", sum)
	}
	return cached, sum, nil
}
