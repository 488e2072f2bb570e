package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("test-signing-key")

func TestGenerateAndValidateJWT(t *testing.T) {
	t.Parallel()

	userUUID := uuid.New()
	token, err := GenerateJWT("alice", userUUID, []string{"admin"}, testKey)
	require.Nil(t, err)

	claims, err := ValidateJWT(token, testKey)
	require.Nil(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, userUUID.String(), claims.UUID)
	assert.True(t, claims.IsAdmin())
}

func TestValidateJWT_WrongKey(t *testing.T) {
	t.Parallel()

	token, err := GenerateJWT("bob", uuid.New(), nil, testKey)
	require.Nil(t, err)

	_, err = ValidateJWT(token, []byte("a different key"))
	require.NotNil(t, err)
}

func TestIsAdmin(t *testing.T) {
	t.Parallel()

	assert.False(t, (&JwtClaims{}).IsAdmin())
	assert.False(t, (&JwtClaims{Scopes: []string{"user"}}).IsAdmin())
	assert.True(t, (&JwtClaims{Scopes: []string{"user", "admin"}}).IsAdmin())
}

// TestMiddleware_AnonymousPassthrough verifies requests without a
// token reach the handler with nil claims instead of being rejected.
func TestMiddleware_AnonymousPassthrough(t *testing.T) {
	t.Parallel()

	var seen *JwtClaims
	handler := GetJwtAuthMiddleware(testKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, seen)
}

func TestMiddleware_ValidToken(t *testing.T) {
	t.Parallel()

	token, err := GenerateJWT("carol", uuid.New(), []string{"user"}, testKey)
	require.Nil(t, err)

	var seen *JwtClaims
	handler := GetJwtAuthMiddleware(testKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClaimsFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	assert.Equal(t, "carol", seen.Username)
}

func TestMiddleware_InvalidToken(t *testing.T) {
	t.Parallel()

	handler := GetJwtAuthMiddleware(testKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
