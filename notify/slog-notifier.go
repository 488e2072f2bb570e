package notify

import (
	"context"
	"log/slog"
)

// SlogNotifier writes events to the log. Default sink for local
// development and tests.
type SlogNotifier struct {
	logger *slog.Logger
}

func NewSlogNotifier() *SlogNotifier {
	return &SlogNotifier{logger: slog.Default().With("module", "notify")}
}

func (n *SlogNotifier) Notify(ctx context.Context, event Event) {
	n.logger.Info("notification",
		"type", event.Type,
		"user_uuid", event.UserUUID,
		"challenge_uuid", event.ChallengeUUID,
		"detail", event.Detail)
}
