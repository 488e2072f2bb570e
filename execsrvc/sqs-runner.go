package execsrvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/codedaily-app/backend/challenge"
	"github.com/codedaily-app/backend/logger"
	"github.com/google/uuid"
)

// SqsRunner talks to the external test-execution cluster over two SQS
// queues: requests go out on submQ, per-test results come back on
// respQ. Results for one execution may arrive interleaved with other
// executions' results and out of order; they are reassembled here.
type SqsRunner struct {
	logger *slog.Logger

	sqsClient *sqs.Client
	submQ     string // execution request queue url
	respQ     string // execution result queue url

	mu      sync.Mutex
	pending map[uuid.UUID]*pendingExec

	listenCancel context.CancelFunc
	listenWait   sync.WaitGroup
}

type pendingExec struct {
	tests    []challenge.TestCase
	results  []*TestResult
	received int
	done     chan []TestResult
}

// NewSqsRunner creates a runner using AWS configuration from the
// environment and starts the result listener.
func NewSqsRunner(submQ string, respQ string) (*SqsRunner, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return NewCustomSqsRunner(slog.Default().With("module", "exec"),
		sqs.NewFromConfig(cfg), submQ, respQ), nil
}

// NewCustomSqsRunner creates a runner with provided dependencies.
func NewCustomSqsRunner(logger *slog.Logger, client *sqs.Client, submQ string, respQ string) *SqsRunner {
	r := &SqsRunner{
		logger:    logger,
		sqsClient: client,
		submQ:     submQ,
		respQ:     respQ,
		pending:   make(map[uuid.UUID]*pendingExec),
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.listenCancel = cancel
	r.listenWait.Add(1)
	go func() {
		defer r.listenWait.Done()
		err := r.receiveResults(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("sqs result listener stopped", "error", err)
		}
	}()

	return r
}

// Close stops the result listener and waits for it to drain.
func (r *SqsRunner) Close() {
	r.listenCancel()
	r.listenWait.Wait()
}

type execRequestTest struct {
	Index          int     `json:"index"`
	Input          string  `json:"input"`
	ExpectedOutput string  `json:"expected_output"`
	Weight         float64 `json:"weight"`
}

type execRequestMsg struct {
	ExecUuid string            `json:"exec_uuid"`
	Artifact string            `json:"artifact"`
	Tests    []execRequestTest `json:"tests"`
}

const (
	msgTypeTestResult = "test_result"
	msgTypeFinished   = "finished"
)

type execResultMsg struct {
	ExecUuid string      `json:"exec_uuid"`
	MsgType  string      `json:"msg_type"`
	Test     *TestResult `json:"test,omitempty"`
}

// Run implements TestRunner. On ctx expiry the results received so
// far are returned with the missing ones degraded to failed.
func (r *SqsRunner) Run(ctx context.Context, artifact string, tests []challenge.TestCase) ([]TestResult, error) {
	execUuid, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate exec UUID: %w", err)
	}

	pend := &pendingExec{
		tests:   tests,
		results: make([]*TestResult, len(tests)),
		done:    make(chan []TestResult, 1),
	}
	r.mu.Lock()
	r.pending[execUuid] = pend
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.pending, execUuid)
		r.mu.Unlock()
	}()

	req := execRequestMsg{
		ExecUuid: execUuid.String(),
		Artifact: artifact,
		Tests:    make([]execRequestTest, len(tests)),
	}
	for i, tc := range tests {
		req.Tests[i] = execRequestTest{
			Index:          i,
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			Weight:         tc.Weight,
		}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal execution request: %w", err)
	}
	_, err = r.sqsClient.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(r.submQ),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue execution request: %w", err)
	}

	return r.awaitResults(ctx, execUuid, pend), nil
}

// awaitResults blocks until the execution finishes or ctx expires.
// Completed results delivered on pend.done win over the timeout even
// when both are ready at once, otherwise a finished execution could
// be reported as all-timed-out.
func (r *SqsRunner) awaitResults(ctx context.Context, execUuid uuid.UUID, pend *pendingExec) []TestResult {
	select {
	case results := <-pend.done:
		return results
	case <-ctx.Done():
		select {
		case results := <-pend.done:
			return results
		default:
		}
		results := r.degrade(execUuid)
		logger.FromContext(ctx).Warn("execution timed out", "exec_uuid", execUuid)
		return results
	}
}

// degrade snapshots whatever arrived and fills the holes with
// timeout failures, preserving test order.
func (r *SqsRunner) degrade(execUuid uuid.UUID) []TestResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	pend, ok := r.pending[execUuid]
	if !ok {
		return nil
	}
	results := make([]TestResult, len(pend.tests))
	for i := range pend.tests {
		if pend.results[i] != nil {
			results[i] = *pend.results[i]
		} else {
			results[i] = FailedResult(i, pend.tests[i], ExecErrTimeout)
		}
	}
	return results
}

// receiveResults polls the response queue until ctx is cancelled and
// routes each message to its pending execution.
func (r *SqsRunner) receiveResults(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			output, err := r.sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
				QueueUrl:            aws.String(r.respQ),
				MaxNumberOfMessages: 10,
				WaitTimeSeconds:     1,
			})
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				r.logger.Error("failed to receive messages", "error", err)
				continue
			}

			for _, msg := range output.Messages {
				if msg.Body == nil || msg.ReceiptHandle == nil {
					r.logger.Error("received malformed sqs message")
					continue
				}
				var res execResultMsg
				if err := json.Unmarshal([]byte(*msg.Body), &res); err != nil {
					r.logger.Error("failed to unmarshal result message", "error", err)
					continue
				}
				if err := r.handleResultMsg(res); err != nil {
					r.logger.Error("failed to handle result message", "error", err)
				}
				_, err = r.sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
					QueueUrl:      aws.String(r.respQ),
					ReceiptHandle: msg.ReceiptHandle,
				})
				if err != nil {
					r.logger.Error("failed to delete message", "error", err)
				}
			}
		}
	}
}

func (r *SqsRunner) handleResultMsg(msg execResultMsg) error {
	execUuid, err := uuid.Parse(msg.ExecUuid)
	if err != nil {
		return fmt.Errorf("failed to parse exec_uuid: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	pend, ok := r.pending[execUuid]
	if !ok {
		// late result for an abandoned execution
		return nil
	}

	switch msg.MsgType {
	case msgTypeTestResult:
		if msg.Test == nil {
			return fmt.Errorf("test_result message without test body")
		}
		i := msg.Test.TestCaseIndex
		if i < 0 || i >= len(pend.results) {
			return fmt.Errorf("test index %d out of range", i)
		}
		if pend.results[i] == nil {
			pend.received++
		}
		pend.results[i] = msg.Test
		if pend.received == len(pend.results) {
			r.finish(execUuid, pend)
		}
	case msgTypeFinished:
		// the cluster is done; degrade anything it never reported
		r.finish(execUuid, pend)
	default:
		return fmt.Errorf("unknown msg_type %q", msg.MsgType)
	}
	return nil
}

// finish delivers results in test order. Caller holds r.mu.
func (r *SqsRunner) finish(execUuid uuid.UUID, pend *pendingExec) {
	results := make([]TestResult, len(pend.tests))
	for i := range pend.tests {
		if pend.results[i] != nil {
			results[i] = *pend.results[i]
		} else {
			results[i] = FailedResult(i, pend.tests[i], ExecErrNoReply)
		}
	}
	select {
	case pend.done <- results:
	default:
	}
	delete(r.pending, execUuid)
}
