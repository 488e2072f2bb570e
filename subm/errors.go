package subm

import (
	"fmt"
	"net/http"

	"github.com/codedaily-app/backend/srvcerror"
)

const ErrCodeDuplicateSubmission = "duplicate_submission"

func ErrDuplicateSubmission() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeDuplicateSubmission,
		"a solution for this challenge has already been submitted",
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeSubmissionNotFound = "submission_not_found"

func ErrSubmissionNotFound() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeSubmissionNotFound,
		"the requested submission was not found",
	).SetHttpStatusCode(http.StatusNotFound)
}

const ErrCodeSubmissionTooLong = "submission_too_long"

func ErrSubmissionTooLong(maxSubmLengthKB int) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeSubmissionTooLong,
		fmt.Sprintf("the solution is too long, the maximum length is %d KB", maxSubmLengthKB),
	).SetHttpStatusCode(http.StatusBadRequest)
}

func ErrInternalSE() *srvcerror.Error {
	return srvcerror.ErrInternalSE()
}
