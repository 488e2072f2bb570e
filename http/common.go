package http

import (
	"net/http"

	"github.com/codedaily-app/backend/auth"
	"github.com/codedaily-app/backend/srvcerror"
	"github.com/google/uuid"
)

const ErrCodeUnauthorized = "unauthorized_access"

func errJwtTokenMissing() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeUnauthorized,
		"authentication is required",
	).SetHttpStatusCode(http.StatusUnauthorized)
}

const ErrCodeForbidden = "forbidden"

func errAdminRequired() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeForbidden,
		"administrator privileges are required",
	).SetHttpStatusCode(http.StatusForbidden)
}

const ErrCodeInvalidRequest = "invalid_request"

func errInvalidRequest(msg string) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidRequest,
		msg,
	).SetHttpStatusCode(http.StatusBadRequest)
}

// requireUser extracts the authenticated user's uuid from the JWT
// claims placed in the context by the auth middleware.
func requireUser(r *http.Request) (uuid.UUID, error) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		return uuid.Nil, errJwtTokenMissing()
	}
	userUUID, err := uuid.Parse(claims.UUID)
	if err != nil {
		return uuid.Nil, errJwtTokenMissing().SetDebug(err)
	}
	return userUUID, nil
}

func requireAdmin(r *http.Request) error {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		return errJwtTokenMissing()
	}
	if !claims.IsAdmin() {
		return errAdminRequired()
	}
	return nil
}
