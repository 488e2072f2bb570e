package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Store mirrors raw solution artifacts to S3, keyed by submission
// uuid. The database keeps the inline copy; this is the durable
// archive the moderation and plagiarism tooling reads from, so an
// upload failure is logged but never fails a submission.
type Store struct {
	logger *slog.Logger
	client *s3.Client
	bucket string
}

func NewStore(bucket string) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return &Store{
		logger: slog.Default().With("module", "artifact"),
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

func key(submissionUUID uuid.UUID) string {
	return fmt.Sprintf("submissions/%s", submissionUUID)
}

// Upload stores the artifact under the submission's key.
func (s *Store) Upload(ctx context.Context, submissionUUID uuid.UUID, content []byte) error {
	k := key(submissionUUID)
	contentType := "text/plain"
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &k,
		Body:        bytes.NewReader(content),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload artifact: %w", err)
	}
	return nil
}

// Download retrieves a previously mirrored artifact.
func (s *Store) Download(ctx context.Context, submissionUUID uuid.UUID) ([]byte, error) {
	k := key(submissionUUID)
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &k,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download artifact: %w", err)
	}
	defer output.Body.Close()
	return io.ReadAll(output.Body)
}

// Exists reports whether an artifact has been mirrored.
func (s *Store) Exists(ctx context.Context, submissionUUID uuid.UUID) (bool, error) {
	k := key(submissionUUID)
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &s.bucket,
		Key:    &k,
	})
	if err != nil {
		var responseError *awshttp.ResponseError
		if errors.As(err, &responseError) && responseError.ResponseError.HTTPStatusCode() == 404 {
			return false, nil
		}
		return false, fmt.Errorf("failed to check artifact existence: %w", err)
	}
	return true, nil
}
