package auth

import (
	"bytes"
	"context"
	"letterdesk-admin-svc/src/internal/config"
	"letterdesk-admin-svc/src/internal/identity"
	"letterdesk-admin-svc/src/internal/middleware"
	"letterdesk-admin-svc/src/internal/models"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	cookie     string
	session    *models.AdminSession
	issueErr   error
	terminated []string
}

func (f *fakeSessions) Issue(_ context.Context, userID, email string, _ models.RequestMeta) (string, *models.AdminSession, error) {
	if f.issueErr != nil {
		return "", nil, f.issueErr
	}
	now := time.Now()
	f.session = &models.AdminSession{
		SessionID:    "sess-1",
		UserID:       userID,
		Email:        email,
		LastActivity: now,
		ExpiresAt:    now.Add(24 * time.Hour),
	}
	return f.cookie, f.session, nil
}

func (f *fakeSessions) Validate(_ context.Context, _ string, _ models.RequestMeta) (*models.AdminSession, string, error) {
	return nil, "", models.ErrSessionNotFound
}

func (f *fakeSessions) Terminate(_ context.Context, cookie string, _ models.RequestMeta) {
	f.terminated = append(f.terminated, cookie)
}

type fakeVerifier struct {
	verified *identity.Verified
	err      error
}

func (f *fakeVerifier) Verify(_ context.Context, _, _, _ string) (*identity.Verified, error) {
	return f.verified, f.err
}

func (f *fakeVerifier) ResolveRole(_ context.Context, _ string) (*identity.AdminUser, error) {
	return nil, models.ErrUserNotFound
}

type fakeLockout struct {
	locked   bool
	failures int
	cleared  int
}

func (f *fakeLockout) IsLockedOut(_ context.Context, _, _ string) (bool, error) {
	return f.locked, nil
}

func (f *fakeLockout) RegisterFailedLogin(_ context.Context, _, _ string) error {
	f.failures++
	return nil
}

func (f *fakeLockout) ClearFailedLogins(_ context.Context, _, _ string) error {
	f.cleared++
	return nil
}

func testConfig() *config.Configuration {
	return &config.Configuration{
		App: config.Application{Timeout: 5},
		Session: config.SessionSettings{
			CookieName:             "admin_session",
			IdleTimeoutSeconds:     1800,
			AbsoluteTimeoutSeconds: 86400,
		},
		Server: config.ServerSettings{Mode: "debug"},
	}
}

func setupHandler(sessions *fakeSessions, verifier *fakeVerifier, lockout *fakeLockout) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	guard := middleware.NewAuthMiddleware(sessions, verifier, cfg)
	h := NewHandler(cfg, sessions, verifier, lockout, guard)

	router := gin.New()
	router.POST("/api/v1/admin/login", h.Login)
	router.POST("/api/v1/admin/logout", h.Logout)
	return router
}

const loginBody = `{"username":"alice","password":"correct horse","portalKey":"portal-key"}`

func postLogin(router *gin.Engine, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginSuccessSetsSessionCookie(t *testing.T) {
	sessions := &fakeSessions{cookie: "rawtoken.signature"}
	verifier := &fakeVerifier{verified: &identity.Verified{
		UserID:  "user-1",
		Email:   "alice@letterdesk.io",
		Role:    identity.RoleAdmin,
		SubRole: identity.SubRoleSuperAdmin,
	}}
	lockout := &fakeLockout{}
	router := setupHandler(sessions, verifier, lockout)

	rec := postLogin(router, loginBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice@letterdesk.io")
	assert.Equal(t, 1, lockout.cleared)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "admin_session", cookies[0].Name)
	assert.Equal(t, "rawtoken.signature", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLoginMissingFields(t *testing.T) {
	router := setupHandler(&fakeSessions{}, &fakeVerifier{}, &fakeLockout{})

	rec := postLogin(router, `{"username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginRejectedCredentialsRegisterFailure(t *testing.T) {
	verifier := &fakeVerifier{err: models.ErrInvalidCredentials}
	lockout := &fakeLockout{}
	router := setupHandler(&fakeSessions{}, verifier, lockout)

	rec := postLogin(router, loginBody)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 1, lockout.failures)
	assert.Empty(t, rec.Result().Cookies(), "no cookie on rejected login")
}

func TestLoginLockedOut(t *testing.T) {
	lockout := &fakeLockout{locked: true}
	router := setupHandler(&fakeSessions{}, &fakeVerifier{}, lockout)

	rec := postLogin(router, loginBody)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Zero(t, lockout.failures)
}

func TestLoginIssueFailure(t *testing.T) {
	sessions := &fakeSessions{issueErr: models.ErrDatabaseInsert}
	verifier := &fakeVerifier{verified: &identity.Verified{UserID: "user-1", Email: "alice@letterdesk.io"}}
	router := setupHandler(sessions, verifier, &fakeLockout{})

	rec := postLogin(router, loginBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogoutClearsCookieEvenWithoutSession(t *testing.T) {
	sessions := &fakeSessions{}
	router := setupHandler(sessions, &fakeVerifier{}, &fakeLockout{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/logout", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sessions.terminated)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestLogoutTerminatesExistingSession(t *testing.T) {
	sessions := &fakeSessions{}
	router := setupHandler(sessions, &fakeVerifier{}, &fakeLockout{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/logout", nil)
	req.AddCookie(&http.Cookie{Name: "admin_session", Value: "rawtoken.signature"})
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sessions.terminated, 1)
	assert.Equal(t, "rawtoken.signature", sessions.terminated[0])
}
