package notify

import (
	"context"

	"github.com/google/uuid"
)

type EventType string

const (
	EventSubmissionReceived EventType = "submission_received"
	EventWinnersAnnounced   EventType = "winners_announced"
)

type Event struct {
	Type          EventType `json:"type"`
	UserUUID      uuid.UUID `json:"user_uuid,omitempty"`
	ChallengeUUID uuid.UUID `json:"challenge_uuid"`
	Detail        string    `json:"detail,omitempty"`
}

// Notifier is a fire-and-forget sink. Implementations swallow and
// log delivery failures; they must never surface them to callers,
// since notification delivery may not affect the pipeline's outcome.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}
