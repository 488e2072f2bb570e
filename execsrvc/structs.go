package execsrvc

import (
	"github.com/codedaily-app/backend/challenge"
)

// TestResult is one per-test outcome reported by the external
// test-execution service. The slice a runner returns is
// order-preserving: index i corresponds to test case i.
type TestResult struct {
	TestCaseIndex   int     `json:"test_case_index"`
	Input           string  `json:"input"`
	ExpectedOutput  string  `json:"expected_output"`
	ActualOutput    string  `json:"actual_output"`
	Passed          bool    `json:"passed"`
	ExecutionTimeMs float64 `json:"execution_time_ms"`
	MemoryUsageMB   float64 `json:"memory_usage_mb"`
	Error           *string `json:"error"`
}

const (
	ExecErrTimeout = "execution timed out"
	ExecErrNoReply = "no result received from execution service"
)

// FailedResult degrades a test case to a failed outcome with an
// explicit error marker instead of blocking the submission.
func FailedResult(index int, tc challenge.TestCase, errMsg string) TestResult {
	msg := errMsg
	return TestResult{
		TestCaseIndex:  index,
		Input:          tc.Input,
		ExpectedOutput: tc.ExpectedOutput,
		Passed:         false,
		Error:          &msg,
	}
}

// AllPassed reports whether every test in the slice passed.
// An empty slice counts as not passed.
func AllPassed(results []TestResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
