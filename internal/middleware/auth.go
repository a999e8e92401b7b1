package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/superherotang/clip/internal/domain"
)

// sessionKey is the gin context key the auth middlewares store the
// resolved identity under.
const sessionKey = "session"

// SessionVerifier checks a session token and returns the identity it
// carries, or nil if the token is missing, expired or forged.
type SessionVerifier interface {
	VerifySession(token string) *domain.Session
}

// APIKeyValidator resolves an API key to the user that owns it.
type APIKeyValidator interface {
	ValidateAPIKey(ctx context.Context, key string) (*domain.Session, error)
}

// SessionAuth authenticates browser requests via the session cookie.
// Unauthenticated requests get a 401 and never reach the handler.
func SessionAuth(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("session")
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		sess := verifier.VerifySession(token)
		if sess == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// APIKeyAuth authenticates external API requests via an Authorization
// bearer token. It produces the same identity shape as SessionAuth so
// downstream authorization does not care how the caller signed in.
func APIKeyAuth(validator APIKeyValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing API key"})
			return
		}
		key := strings.TrimPrefix(header, "Bearer ")
		sess, err := validator.ValidateAPIKey(c.Request.Context(), key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing API key"})
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// CurrentSession returns the identity set by one of the auth
// middlewares. The second result is false on routes that skipped auth.
func CurrentSession(c *gin.Context) (*domain.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*domain.Session)
	return sess, ok
}
