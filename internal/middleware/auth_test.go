package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connectro/backend/internal/models"
)

const testSecret = "test-secret"

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(GetUserID(r.Context()) + "|" + GetUserEmail(r.Context())))
	})
}

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	return resp.Message
}

func TestJWTAuth_ValidToken(t *testing.T) {
	token, err := IssueToken("u1", testSecret, time.Hour)
	require.NoError(t, err)

	rec := serve(JWTAuth(testSecret)(echoUser()), "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1|", rec.Body.String())
}

func TestJWTAuth_Rejects(t *testing.T) {
	expired, err := IssueToken("u1", testSecret, -time.Minute)
	require.NoError(t, err)
	otherKey, err := IssueToken("u1", "other-secret", time.Hour)
	require.NoError(t, err)
	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		msg    string
	}{
		{"missing header", "", "Authorization header required"},
		{"wrong scheme", "Basic abc", "Invalid authorization header format"},
		{"expired", "Bearer " + expired, "Invalid or expired token"},
		{"wrong key", "Bearer " + otherKey, "Invalid or expired token"},
		{"garbage", "Bearer not.a.jwt", "Invalid or expired token"},
		{"no user claim", "Bearer " + noUser, "Invalid user ID in token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(JWTAuth(testSecret)(echoUser()), tt.header)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.msg, errorMessage(t, rec))
		})
	}
}

func TestGetUserID_Empty(t *testing.T) {
	assert.Empty(t, GetUserID(context.Background()))
	assert.Equal(t, "u9", GetUserID(WithUserID(context.Background(), "u9")))
}

type fakeVerifier struct {
	token *fbauth.Token
	err   error
}

func (f *fakeVerifier) VerifyIDToken(context.Context, string) (*fbauth.Token, error) {
	return f.token, f.err
}

func TestFirebaseAuth(t *testing.T) {
	ok := &fakeVerifier{token: &fbauth.Token{UID: "fb-uid", Claims: map[string]interface{}{"email": "ann@example.com"}}}
	rec := serve(FirebaseAuth(ok)(echoUser()), "Bearer id-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fb-uid|ann@example.com", rec.Body.String())

	bad := &fakeVerifier{err: errors.New("expired")}
	rec = serve(FirebaseAuth(bad)(echoUser()), "Bearer id-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(FirebaseAuth(ok)(echoUser()), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(FirebaseAuth(nil)(echoUser()), "Bearer id-token")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNewFirebaseAuthClient_RequiresProject(t *testing.T) {
	_, err := NewFirebaseAuthClient(context.Background(), FirebaseAuthConfig{})
	assert.Error(t, err)
}
