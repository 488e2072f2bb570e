package execsrvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codedaily-app/backend/challenge"
)

func TestAllPassed(t *testing.T) {
	t.Parallel()

	assert.False(t, AllPassed(nil), "no results is not a pass")
	assert.False(t, AllPassed([]TestResult{}))

	assert.True(t, AllPassed([]TestResult{{Passed: true}, {Passed: true}}))
	assert.False(t, AllPassed([]TestResult{{Passed: true}, {Passed: false}}))
}

func TestFailedResult(t *testing.T) {
	t.Parallel()

	tc := challenge.TestCase{Input: "in", ExpectedOutput: "out", Weight: 1}
	r := FailedResult(4, tc, ExecErrTimeout)

	assert.Equal(t, 4, r.TestCaseIndex)
	assert.Equal(t, "in", r.Input)
	assert.Equal(t, "out", r.ExpectedOutput)
	assert.False(t, r.Passed)
	require.NotNil(t, r.Error)
	assert.Equal(t, ExecErrTimeout, *r.Error)
	assert.Zero(t, r.ExecutionTimeMs)
}
