package subm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codedaily-app/backend/challenge"
	"github.com/codedaily-app/backend/execsrvc"
	"github.com/codedaily-app/backend/logger"
	"github.com/codedaily-app/backend/notify"
	"github.com/codedaily-app/backend/scoring"
	"github.com/google/uuid"
)

const maxArtifactLengthKB = 64

// DefaultExecTimeout bounds the external test-execution call. On
// expiry the missing test results are degraded to failed instead of
// blocking the submission.
const DefaultExecTimeout = 30 * time.Second

// RerankTrigger requests a rank recomputation for a challenge.
// Implementations coalesce and serialize per challenge; triggering is
// fire-and-forget.
type RerankTrigger interface {
	Trigger(challengeUUID uuid.UUID)
}

// Awarder grants reward points for a scored submission. Calls are
// best-effort: award bookkeeping failures never fail the submission.
type Awarder interface {
	AwardSubmission(ctx context.Context, subm Submission, challengeMaxPoints int)
}

// ArtifactMirror archives raw solution artifacts outside the
// database. Mirroring is best-effort.
type ArtifactMirror interface {
	Upload(ctx context.Context, submissionUUID uuid.UUID, content []byte) error
}

// SubmSrvc is the submission intake: it validates eligibility,
// enforces at-most-one-submission-per-user-per-challenge, runs the
// external execution, scores the results and kicks off the
// downstream ranking and reward bookkeeping.
type SubmSrvc struct {
	logger *slog.Logger

	repo    SubmRepo
	catalog *challenge.CatalogSrvc
	runner  execsrvc.TestRunner

	ranker   RerankTrigger
	awarder  Awarder
	notifier notify.Notifier
	mirror   ArtifactMirror // optional

	execTimeout time.Duration
}

// WithArtifactMirror enables best-effort archival of raw artifacts.
func (s *SubmSrvc) WithArtifactMirror(mirror ArtifactMirror) *SubmSrvc {
	s.mirror = mirror
	return s
}

func NewSubmSrvc(
	repo SubmRepo,
	catalog *challenge.CatalogSrvc,
	runner execsrvc.TestRunner,
	ranker RerankTrigger,
	awarder Awarder,
	notifier notify.Notifier,
) *SubmSrvc {
	return &SubmSrvc{
		logger:      slog.Default().With("module", "subm"),
		repo:        repo,
		catalog:     catalog,
		runner:      runner,
		ranker:      ranker,
		awarder:     awarder,
		notifier:    notifier,
		execTimeout: DefaultExecTimeout,
	}
}

type SubmitParams struct {
	UserUUID              uuid.UUID
	ChallengeUUID         uuid.UUID
	Artifact              string
	CompletionTimeSeconds int
}

// Submit records one participant's attempt at a challenge. It returns
// either the persisted, scored submission or one specific rejection
// reason; a duplicate or an unknown challenge is never silently
// dropped.
func (s *SubmSrvc) Submit(ctx context.Context, params SubmitParams) (*Submission, error) {
	if len(params.Artifact) > maxArtifactLengthKB*1024 {
		return nil, ErrSubmissionTooLong(maxArtifactLengthKB)
	}

	// 1. the challenge must exist
	ch, err := s.catalog.Get(ctx, params.ChallengeUUID)
	if err != nil {
		return nil, err
	}

	// 2. fast-path duplicate check; the Store below repeats it
	// atomically so a concurrent submit cannot slip through
	prior, err := s.repo.GetByUserChallenge(ctx, params.UserUUID, params.ChallengeUUID)
	if err != nil {
		return nil, ErrInternalSE().SetDebug(err)
	}
	if prior != nil {
		return nil, ErrDuplicateSubmission()
	}

	// 3. execute against the external test-execution service
	execCtx, cancel := context.WithTimeout(logger.WithChallenge(ctx, ch.UUID.String()), s.execTimeout)
	defer cancel()
	results, err := s.runner.Run(execCtx, params.Artifact, ch.Tests)
	if err != nil {
		return nil, ErrInternalSE().SetDebug(fmt.Errorf("test execution failed: %w", err))
	}

	status := StatusFailed
	if execsrvc.AllPassed(results) {
		status = StatusPassed
	}

	submUuid, err := uuid.NewV7()
	if err != nil {
		return nil, ErrInternalSE().SetDebug(err)
	}
	subm := Submission{
		UUID:                  submUuid,
		UserUUID:              params.UserUUID,
		ChallengeUUID:         params.ChallengeUUID,
		Artifact:              params.Artifact,
		TestResults:           results,
		Score:                 scoring.Score(results, ch.ScoringCriteria),
		CompletionTimeSeconds: params.CompletionTimeSeconds,
		Status:                status,
		CreatedAt:             time.Now(),
	}

	err = s.repo.Store(ctx, subm)
	if errors.Is(err, ErrDuplicate) {
		return nil, ErrDuplicateSubmission()
	}
	if err != nil {
		return nil, ErrInternalSE().SetDebug(err)
	}

	s.logger.Info("submission recorded",
		"subm_uuid", subm.UUID,
		"challenge_uuid", subm.ChallengeUUID,
		"status", subm.Status,
		"score", subm.Score.Total)

	// downstream bookkeeping is eventually consistent and must not
	// affect the submission's outcome
	if s.mirror != nil {
		go func(id uuid.UUID, content []byte) {
			if err := s.mirror.Upload(context.Background(), id, content); err != nil {
				s.logger.Error("artifact mirror failed", "subm_uuid", id, "error", err)
			}
		}(subm.UUID, []byte(subm.Artifact))
	}
	s.ranker.Trigger(subm.ChallengeUUID)
	go s.awarder.AwardSubmission(context.WithoutCancel(ctx), subm, ch.MaxPoints)
	go s.notifier.Notify(context.WithoutCancel(ctx), notify.Event{
		Type:          notify.EventSubmissionReceived,
		UserUUID:      subm.UserUUID,
		ChallengeUUID: subm.ChallengeUUID,
		Detail:        fmt.Sprintf("scored %d (%s)", subm.Score.Total, subm.Score.Rating),
	})

	return &subm, nil
}

// GetSubm returns a single submission by id.
func (s *SubmSrvc) GetSubm(ctx context.Context, id uuid.UUID) (*Submission, error) {
	subm, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, ErrInternalSE().SetDebug(err)
	}
	if subm == nil {
		return nil, ErrSubmissionNotFound()
	}
	return subm, nil
}

// ListSubms returns all submissions of a challenge, newest first.
func (s *SubmSrvc) ListSubms(ctx context.Context, challengeUUID uuid.UUID) ([]Submission, error) {
	return s.repo.ListByChallenge(ctx, challengeUUID)
}

// Leaderboard returns the passing submissions of a challenge in rank
// order.
func (s *SubmSrvc) Leaderboard(ctx context.Context, challengeUUID uuid.UUID) ([]Submission, error) {
	return s.repo.ListPassedByChallenge(ctx, challengeUUID)
}

// ActivityStats are read-only projections for the admin surface.
type ActivityStats struct {
	ByStatus map[string]int `json:"by_status"`
	Recent   []Submission   `json:"recent"`
}

func (s *SubmSrvc) Stats(ctx context.Context) (*ActivityStats, error) {
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	recent, err := s.repo.Recent(ctx, 20)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent submissions: %w", err)
	}
	return &ActivityStats{ByStatus: byStatus, Recent: recent}, nil
}
