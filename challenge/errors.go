package challenge

import (
	"net/http"

	"github.com/codedaily-app/backend/srvcerror"
)

const ErrCodeChallengeNotFound = "challenge_not_found"

func ErrChallengeNotFound() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeChallengeNotFound,
		"the requested challenge was not found",
	).SetHttpStatusCode(http.StatusNotFound)
}

const ErrCodeSchedulingConflict = "scheduling_conflict"

// ErrSchedulingConflict is returned together with the existing
// occupant when no free date exists within the scheduling horizon.
func ErrSchedulingConflict() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeSchedulingConflict,
		"no free date within the scheduling horizon",
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeInvalidChallenge = "invalid_challenge"

func ErrInvalidChallenge(reason string) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidChallenge,
		reason,
	).SetHttpStatusCode(http.StatusBadRequest)
}
