package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/connectro/backend/internal/config"
	"github.com/connectro/backend/internal/middleware"
	"github.com/connectro/backend/internal/services"
	"github.com/connectro/backend/internal/storage"
)

const testSecret = "handler-test-secret"

type fakeCaptcha struct {
	ok     bool
	reason string
	err    error
	tokens []string
}

func (f *fakeCaptcha) Verify(_ context.Context, token, _ string) (bool, string, error) {
	f.tokens = append(f.tokens, token)
	return f.ok, f.reason, f.err
}

type failingStore struct{}

func (failingStore) Put(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", errors.New("AccessDenied: bucket policy forbids this")
}

func (failingStore) Delete(context.Context, string) error {
	return errors.New("AccessDenied: bucket policy forbids this")
}

type testApp struct {
	t       *testing.T
	handler http.Handler
	users   *services.MemoryUserStore
	hasher  *services.BcryptHasher
	uploads string
}

type appOption func(*appDeps)

type appDeps struct {
	objects     services.ObjectStore
	captcha     services.CaptchaVerifier
	requireAuth func(http.Handler) http.Handler
	provision   bool
}

// withFirebaseIdentity swaps JWT auth for Firebase ID tokens checked by v and
// provisions first-time users, as the server does with AUTH_PROVIDER=firebase.
func withFirebaseIdentity(v middleware.IDTokenVerifier) appOption {
	return func(d *appDeps) {
		d.requireAuth = middleware.FirebaseAuth(v)
		d.provision = true
	}
}

func withObjectStore(s services.ObjectStore) appOption {
	return func(d *appDeps) { d.objects = s }
}

func withCaptcha(c services.CaptchaVerifier) appOption {
	return func(d *appDeps) { d.captcha = c }
}

func newTestApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()

	uploads := filepath.Join(t.TempDir(), "uploads")
	disk, err := storage.NewDiskClient(config.DiskConfig{UploadDir: uploads, PublicBaseURL: "http://localhost:8080/uploads"})
	require.NoError(t, err)
	require.NoError(t, disk.EnsureBucket(context.Background()))

	deps := &appDeps{objects: storage.NewStorage(disk), requireAuth: middleware.JWTAuth(testSecret)}
	for _, o := range opts {
		o(deps)
	}

	users := services.NewMemoryUserStore()
	hasher := services.NewBcryptHasher(bcrypt.MinCost)
	media := services.NewMediaService(deps.objects, nil)
	profiles := services.NewProfileService(users, media, hasher, nil)

	userSvc := services.NewUserService(users, hasher)
	cfg := RouterConfig{
		Auth:           NewAuthHandler(userSvc, deps.captcha, testSecret, time.Hour, nil),
		Profile:        NewProfileHandler(profiles, 1, nil),
		Account:        NewAccountHandler(services.NewAccountService(users, media, nil), nil),
		RequireAuth:    deps.requireAuth,
		AllowedOrigins: []string{"*"},
		UploadsDir:     uploads,
	}
	if deps.provision {
		cfg.Provision = ProvisionUser(userSvc, nil)
	}
	h := NewRouter(cfg)

	return &testApp{t: t, handler: h, users: users, hasher: hasher, uploads: uploads}
}

func (a *testApp) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	a.t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	// Responses never carry a bcrypt hash.
	assert.NotContains(a.t, rec.Body.String(), "$2a$")

	var out map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

// register creates an account through the API and returns its id and token.
func (a *testApp) register(username, email, password string) (string, string) {
	a.t.Helper()
	rec, out := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "email": email, "password": password,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	data := out["data"].(map[string]interface{})
	user := data["user"].(map[string]interface{})
	return user["id"].(string), data["token"].(string)
}

func dataOf(t *testing.T, out map[string]interface{}) map[string]interface{} {
	t.Helper()
	assert.Equal(t, true, out["success"])
	data, ok := out["data"].(map[string]interface{})
	require.True(t, ok, "missing data in %v", out)
	return data
}
