package execsrvc

import (
	"context"

	"github.com/codedaily-app/backend/challenge"
)

// TestRunner executes a solution artifact against the challenge's
// test cases and returns one result per test case, order-preserving.
// Implementations must honor ctx cancellation; on timeout they return
// the results gathered so far with the missing ones degraded to
// failed (see FailedResult) rather than an error.
type TestRunner interface {
	Run(ctx context.Context, artifact string, tests []challenge.TestCase) ([]TestResult, error)
}

// StubRunner backs TestRunner with a plain function. Used in tests
// and local development where no execution cluster is available.
type StubRunner struct {
	RunFunc func(ctx context.Context, artifact string, tests []challenge.TestCase) ([]TestResult, error)
}

func (s StubRunner) Run(ctx context.Context, artifact string, tests []challenge.TestCase) ([]TestResult, error) {
	return s.RunFunc(ctx, artifact, tests)
}
