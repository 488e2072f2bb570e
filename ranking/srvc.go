package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/codedaily-app/backend/challenge"
	"github.com/codedaily-app/backend/notify"
	"github.com/codedaily-app/backend/subm"
	"github.com/google/uuid"
)

const rerankTimeout = 30 * time.Second

// RankStore is the slice of the submission repository the ranking
// engine needs: read the passing set, rewrite the ranking.
type RankStore interface {
	ListPassedByChallenge(ctx context.Context, challengeUUID uuid.UUID) ([]subm.Submission, error)
	ReplaceRanks(ctx context.Context, challengeUUID uuid.UUID, ranks []subm.RankAssignment) error
}

// WinnerAwarder grants rank-based reward points at announcement time.
// Grants are idempotent downstream, so announcing twice is safe.
type WinnerAwarder interface {
	AwardRank(ctx context.Context, userUUID uuid.UUID, submissionUUID uuid.UUID, rank int)
}

// RankSrvc recomputes the full ordering of a challenge's passing
// submissions. Rerank is idempotent but must not run concurrently for
// one challenge, so executions are serialized per challenge and
// pending triggers are coalesced: a trigger arriving while a rerank
// is in flight schedules exactly one trailing run.
type RankSrvc struct {
	logger *slog.Logger

	subms    RankStore
	catalog  *challenge.CatalogSrvc
	awarder  WinnerAwarder
	notifier notify.Notifier

	workers workerMap
}

func NewRankSrvc(subms RankStore, catalog *challenge.CatalogSrvc, awarder WinnerAwarder, notifier notify.Notifier) *RankSrvc {
	s := &RankSrvc{
		logger:   slog.Default().With("module", "ranking"),
		subms:    subms,
		catalog:  catalog,
		awarder:  awarder,
		notifier: notifier,
	}
	s.workers.init(func(challengeUUID uuid.UUID) {
		ctx, cancel := context.WithTimeout(context.Background(), rerankTimeout)
		defer cancel()
		if err := s.rerank(ctx, challengeUUID); err != nil {
			// the next submission or announcement reranks again
			s.logger.Error("background rerank failed",
				"challenge_uuid", challengeUUID, "error", err)
		}
	})
	return s
}

// Trigger implements subm.RerankTrigger. Fire-and-forget.
func (s *RankSrvc) Trigger(challengeUUID uuid.UUID) {
	s.workers.trigger(challengeUUID)
}

// Rerank recomputes the ranking synchronously, serialized against any
// in-flight background rerank of the same challenge.
func (s *RankSrvc) Rerank(ctx context.Context, challengeUUID uuid.UUID) error {
	unlock := s.workers.lock(challengeUUID)
	defer unlock()
	return s.rerank(ctx, challengeUUID)
}

// rerank is the full recompute. Callers hold the challenge's lock.
func (s *RankSrvc) rerank(ctx context.Context, challengeUUID uuid.UUID) error {
	passed, err := s.subms.ListPassedByChallenge(ctx, challengeUUID)
	if err != nil {
		return fmt.Errorf("failed to list passing submissions: %w", err)
	}

	sortForRanking(passed)

	ranks := make([]subm.RankAssignment, len(passed))
	for i, sub := range passed {
		ranks[i] = subm.RankAssignment{
			SubmissionUUID: sub.UUID,
			Rank:           i + 1,
			PrizeEligible:  i+1 <= 3,
		}
	}

	if err := s.subms.ReplaceRanks(ctx, challengeUUID, ranks); err != nil {
		return fmt.Errorf("failed to replace ranks: %w", err)
	}
	s.logger.Debug("reranked challenge",
		"challenge_uuid", challengeUUID, "passing", len(passed))
	return nil
}

// sortForRanking orders by score total descending, ties broken by
// completion time ascending.
func sortForRanking(subms []subm.Submission) {
	sort.SliceStable(subms, func(i, j int) bool {
		if subms[i].Score.Total != subms[j].Score.Total {
			return subms[i].Score.Total > subms[j].Score.Total
		}
		return subms[i].CompletionTimeSeconds < subms[j].CompletionTimeSeconds
	})
}

// AnnounceWinners copies the top 3 ranked submissions into the
// challenge's winners list with prize status pending, and grants
// their rank-based reward points. Explicitly triggered (admin or
// end-of-window), distinct from the continuous rerank.
func (s *RankSrvc) AnnounceWinners(ctx context.Context, challengeUUID uuid.UUID) ([]challenge.Winner, error) {
	unlock := s.workers.lock(challengeUUID)
	defer unlock()

	// rank off the latest state before reading the top 3
	if err := s.rerank(ctx, challengeUUID); err != nil {
		return nil, err
	}

	passed, err := s.subms.ListPassedByChallenge(ctx, challengeUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list passing submissions: %w", err)
	}
	sortForRanking(passed)

	winners := make([]challenge.Winner, 0, 3)
	for i, sub := range passed {
		if i == 3 {
			break
		}
		winners = append(winners, challenge.Winner{
			UserUUID:              sub.UserUUID,
			ScoreTotal:            sub.Score.Total,
			CompletionTimeSeconds: sub.CompletionTimeSeconds,
			PrizeStatus:           challenge.PrizeStatusPending,
		})
	}

	if err := s.catalog.SetWinners(ctx, challengeUUID, winners); err != nil {
		return nil, fmt.Errorf("failed to store winners: %w", err)
	}

	for i, sub := range passed {
		if i == 3 {
			break
		}
		s.awarder.AwardRank(ctx, sub.UserUUID, sub.UUID, i+1)
	}

	go s.notifier.Notify(context.WithoutCancel(ctx), notify.Event{
		Type:          notify.EventWinnersAnnounced,
		ChallengeUUID: challengeUUID,
		Detail:        fmt.Sprintf("%d winners announced", len(winners)),
	})

	s.logger.Info("winners announced",
		"challenge_uuid", challengeUUID, "winners", len(winners))
	return winners, nil
}
