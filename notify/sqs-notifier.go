package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SqsNotifier publishes events to an SQS queue consumed by the
// delivery workers (email, push, web feed) outside this backend.
type SqsNotifier struct {
	logger    *slog.Logger
	sqsClient *sqs.Client
	queueUrl  string
}

func NewSqsNotifier(queueUrl string) (*SqsNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return &SqsNotifier{
		logger:    slog.Default().With("module", "notify"),
		sqsClient: sqs.NewFromConfig(cfg),
		queueUrl:  queueUrl,
	}, nil
}

func (n *SqsNotifier) Notify(ctx context.Context, event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("failed to marshal notification", "error", err)
		return
	}
	_, err = n.sqsClient.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(n.queueUrl),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		// delivery failure never affects the pipeline's outcome
		n.logger.Error("failed to publish notification",
			"error", err, "type", event.Type)
	}
}
