package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/superherotang/clip/internal/middleware"
	"github.com/superherotang/clip/internal/service"
)

// AuthHandler serves signup, login, logout and API key management.
type AuthHandler struct {
	authService  *service.AuthService
	cookieMaxAge int
	cookieSecure bool
}

// NewAuthHandler creates an AuthHandler. cookieMaxAge is the session
// cookie lifetime in seconds; cookieSecure should be true behind TLS.
func NewAuthHandler(authService *service.AuthService, cookieMaxAge int, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieMaxAge: cookieMaxAge,
		cookieSecure: cookieSecure,
	}
}

type SignupRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// Signup registers a new account, issues its first API key and signs
// the caller in by setting the session cookie.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Username (min 3 chars) and password (min 6 chars) are required")
		return
	}
	logCtx := logrus.WithField("username", req.Username)

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		logCtx.WithError(err).Warn("Handler.Signup: registration failed")
		HandleServiceError(c, err)
		return
	}

	token, err := h.authService.IssueSession(user)
	if err != nil {
		logCtx.WithError(err).Error("Handler.Signup: failed to issue session")
		HandleServiceError(c, err)
		return
	}
	h.setSessionCookie(c, token)

	apiKey := ""
	if user.APIKey != nil {
		apiKey = *user.APIKey
	}
	SuccessResponse(c, http.StatusOK, gin.H{
		"user":    UserResponse{ID: user.ID, Username: user.Username},
		"apiKey":  apiKey,
		"message": "User created successfully",
	})
}

// Login verifies credentials and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Username and password are required")
		return
	}
	logCtx := logrus.WithField("username", req.Username)

	user, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		logCtx.WithError(err).Warn("Handler.Login: authentication failed")
		HandleServiceError(c, err)
		return
	}

	token, err := h.authService.IssueSession(user)
	if err != nil {
		logCtx.WithError(err).Error("Handler.Login: failed to issue session")
		HandleServiceError(c, err)
		return
	}
	h.setSessionCookie(c, token)

	SuccessResponse(c, http.StatusOK, gin.H{
		"user":    UserResponse{ID: user.ID, Username: user.Username},
		"message": "Logged in successfully",
	})
}

// Logout clears the session cookie. The token itself stays valid until
// expiry; forgetting it is all a stateless session supports.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("session", "", -1, "/", "", h.cookieSecure, true)
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the identity behind the current session.
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{
		"user": UserResponse{ID: sess.UserID, Username: sess.Username},
	})
}

// GetAPIKey returns the caller's current API key.
func (h *AuthHandler) GetAPIKey(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	key, err := h.authService.GetAPIKey(c.Request.Context(), sess.UserID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"apiKey": key})
}

// RegenerateAPIKey replaces the caller's API key with a fresh one.
func (h *AuthHandler) RegenerateAPIKey(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	key, err := h.authService.RegenerateAPIKey(c.Request.Context(), sess.UserID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{
		"apiKey":  key,
		"message": "API key regenerated successfully",
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("session", token, h.cookieMaxAge, "/", "", h.cookieSecure, true)
}
