package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superherotang/clip/internal/domain"
	"github.com/superherotang/clip/internal/middleware"
	"github.com/superherotang/clip/internal/service"
)

// fakeVerifier accepts exactly one token.
type fakeVerifier struct {
	token string
	sess  *domain.Session
}

func (f *fakeVerifier) VerifySession(token string) *domain.Session {
	if token == f.token {
		return f.sess
	}
	return nil
}

// fakeValidator accepts exactly one API key.
type fakeValidator struct {
	key  string
	sess *domain.Session
}

func (f *fakeValidator) ValidateAPIKey(_ context.Context, key string) (*domain.Session, error) {
	if key == f.key {
		return f.sess, nil
	}
	return nil, service.ErrAuthenticationFailed
}

func newTestRouter(handler gin.HandlerFunc, mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", mw, handler)
	return router
}

func echoSession(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session missing after auth"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": sess.UserID, "username": sess.Username})
}

func TestSessionAuth_ValidCookie(t *testing.T) {
	verifier := &fakeVerifier{
		token: "good-token",
		sess:  &domain.Session{UserID: 42, Username: "alice"},
	}
	router := newTestRouter(echoSession, middleware.SessionAuth(verifier))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "good-token"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":42`)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)
}

func TestSessionAuth_MissingCookie(t *testing.T) {
	verifier := &fakeVerifier{token: "good-token", sess: &domain.Session{UserID: 42}}
	router := newTestRouter(echoSession, middleware.SessionAuth(verifier))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Not authenticated")
}

func TestSessionAuth_GarbageToken(t *testing.T) {
	verifier := &fakeVerifier{token: "good-token", sess: &domain.Session{UserID: 42}}
	router := newTestRouter(echoSession, middleware.SessionAuth(verifier))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "forged"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIKeyAuth_ValidBearer(t *testing.T) {
	validator := &fakeValidator{
		key:  "k-123",
		sess: &domain.Session{UserID: 9, Username: "bob"},
	}
	router := newTestRouter(echoSession, middleware.APIKeyAuth(validator))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer k-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"bob"`)
}

func TestAPIKeyAuth_MissingHeader(t *testing.T) {
	validator := &fakeValidator{key: "k-123", sess: &domain.Session{UserID: 9}}
	router := newTestRouter(echoSession, middleware.APIKeyAuth(validator))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or missing API key")
}

func TestAPIKeyAuth_WrongScheme(t *testing.T) {
	validator := &fakeValidator{key: "k-123", sess: &domain.Session{UserID: 9}}
	router := newTestRouter(echoSession, middleware.APIKeyAuth(validator))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic a2stMTIz")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIKeyAuth_UnknownKey(t *testing.T) {
	validator := &fakeValidator{key: "k-123", sess: &domain.Session{UserID: 9}}
	router := newTestRouter(echoSession, middleware.APIKeyAuth(validator))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
