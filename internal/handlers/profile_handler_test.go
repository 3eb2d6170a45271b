package handlers

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connectro/backend/internal/middleware"
)

func TestGetProfile(t *testing.T) {
	app := newTestApp(t)
	id, token := app.register("ann", "ann@example.com", "hunter22")

	rec, out := app.do(http.MethodGet, "/api/user/profile", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	data := dataOf(t, out)
	assert.Equal(t, id, data["id"])
	assert.Equal(t, "ann", data["username"])
	assert.NotContains(t, data, "imageUrl")
}

func TestGetProfile_UnknownIdentity(t *testing.T) {
	app := newTestApp(t)
	token, err := middleware.IssueToken("deleted-user", testSecret, time.Hour)
	require.NoError(t, err)

	rec, out := app.do(http.MethodGet, "/api/user/profile", token, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", out["message"])
}

func TestProfile_RequiresToken(t *testing.T) {
	app := newTestApp(t)

	rec, _ := app.do(http.MethodGet, "/api/user/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = app.do(http.MethodPut, "/api/user/profile", "", map[string]string{"username": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateProfile_PartialFields(t *testing.T) {
	app := newTestApp(t)
	_, token := app.register("ann", "ann@example.com", "hunter22")
	app.do(http.MethodPut, "/api/user/profile", token, map[string]string{"imageUrl": "https://cdn.example/a.png"})

	rec, out := app.do(http.MethodPut, "/api/user/profile", token, map[string]string{"username": "annie"})

	require.Equal(t, http.StatusOK, rec.Code)
	data := dataOf(t, out)
	assert.Equal(t, "annie", data["username"])
	assert.Equal(t, "ann@example.com", data["email"])
	assert.Equal(t, "https://cdn.example/a.png", data["imageUrl"])
}

func TestUpdateProfile_PasswordRotation(t *testing.T) {
	app := newTestApp(t)
	_, token := app.register("ann", "ann@example.com", "hunter22")

	rec, out := app.do(http.MethodPut, "/api/user/profile", token, map[string]string{
		"currentPassword": "wrong-pass",
		"newPassword":     "hunter33",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Current password is incorrect", out["message"])

	rec, _ = app.do(http.MethodPut, "/api/user/profile", token, map[string]string{
		"currentPassword": "hunter22",
		"newPassword":     "hunter33",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = app.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@example.com", "password": "hunter22"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = app.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@example.com", "password": "hunter33"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateProfile_InlineImage(t *testing.T) {
	app := newTestApp(t)
	id, token := app.register("ann", "ann@example.com", "hunter22")
	raw := []byte("\x89PNG\r\n\x1a\nfake")

	rec, out := app.do(http.MethodPut, "/api/user/profile", token, map[string]string{
		"imageUrl": "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw),
	})

	require.Equal(t, http.StatusOK, rec.Code)
	data := dataOf(t, out)
	assert.Equal(t, "http://localhost:8080/uploads/profile_images/"+id+".png", data["imageUrl"])

	stored, err := os.ReadFile(filepath.Join(app.uploads, "profile_images", id+".png"))
	require.NoError(t, err)
	assert.Equal(t, raw, stored)

	rec, _ = app.do(http.MethodGet, "/uploads/profile_images/"+id+".png", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, raw, rec.Body.Bytes())
}

func TestUpdateProfile_UploadFailure(t *testing.T) {
	app := newTestApp(t, withObjectStore(failingStore{}))
	id, token := app.register("ann", "ann@example.com", "hunter22")

	rec, out := app.do(http.MethodPut, "/api/user/profile", token, map[string]string{
		"username": "annie",
		"imageUrl": "data:image/png;base64,AAAA",
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to upload image", out["message"])
	assert.NotContains(t, rec.Body.String(), "AccessDenied")

	u, err := app.users.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ann", u.Username)
}

func TestUpdateProfile_BadRequests(t *testing.T) {
	app := newTestApp(t)
	_, token := app.register("ann", "ann@example.com", "hunter22")

	rec, out := app.do(http.MethodPut, "/api/user/profile", token, "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", out["message"])

	rec, out = app.do(http.MethodPut, "/api/user/profile", token, map[string]string{"imageUrl": "data:image/bmp;base64,AAAA"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid image data", out["message"])

	rec, out = app.do(http.MethodPut, "/api/user/profile", token, map[string]string{"username": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["errors"], "username")

}

func TestUpdateProfile_BodyTooLarge(t *testing.T) {
	app := newTestApp(t)
	_, token := app.register("ann", "ann@example.com", "hunter22")

	huge := `{"imageUrl":"data:image/png;base64,` + strings.Repeat("A", 2*1024*1024) + `"}`
	rec, out := app.do(http.MethodPut, "/api/user/profile", token, huge)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Request body exceeds 1048576 bytes", out["message"])
}

func TestUpdateProfile_NewPasswordWithoutCurrentIsIgnored(t *testing.T) {
	app := newTestApp(t)
	_, token := app.register("ann", "ann@example.com", "hunter22")

	rec, out := app.do(http.MethodPut, "/api/user/profile", token, map[string]string{
		"username":    "annie",
		"newPassword": "abc",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "annie", dataOf(t, out)["username"])

	rec, _ = app.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@example.com", "password": "hunter22"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateProfile_EmailConflict(t *testing.T) {
	app := newTestApp(t)
	app.register("bob", "bob@example.com", "hunter22")
	_, token := app.register("ann", "ann@example.com", "hunter22")

	rec, out := app.do(http.MethodPut, "/api/user/profile", token, map[string]string{"email": "BOB@example.com"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already registered", out["message"])
}

func TestDeleteAccount(t *testing.T) {
	app := newTestApp(t)
	id, token := app.register("ann", "ann@example.com", "hunter22")
	app.do(http.MethodPut, "/api/user/profile", token, map[string]string{
		"imageUrl": "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png")),
	})

	rec, out := app.do(http.MethodDelete, "/api/user/profile", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Account deleted", out["message"])
	_, err := os.Stat(filepath.Join(app.uploads, "profile_images", id+".png"))
	assert.True(t, os.IsNotExist(err))

	rec, _ = app.do(http.MethodGet, "/api/user/profile", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The email is free again.
	app.register("ann", "ann@example.com", "hunter22")
}
