package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wastewise/api/internal/audit"
	"wastewise/api/internal/config"
	"wastewise/api/internal/models"
	"wastewise/api/internal/security"
)

// AuthCookie carries the session token. HttpOnly, so the CSRF guard's
// second, non-ambient secret is what keeps cross-site writes out.
const AuthCookie = "authToken"

// currentUserKey is only ever written by this package; handlers read it
// through CurrentUser. Role never comes from a client-supplied header.
const currentUserKey = "auth.current_user"

// UserLoader re-fetches the live record behind verified claims, so a
// token for a deleted account is rejected even before its expiry.
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (models.User, error)
}

// CurrentUser returns the identity attached by Authenticate.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(currentUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}

// Authenticate identifies the caller (cookie first, bearer header as
// fallback), verifies the token, hydrates the live user record, and
// attaches it to the request context. Every failure short-circuits.
func Authenticate(cfg *config.AppConfig, users UserLoader, recorder audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access denied. No token provided."})
			return
		}

		claims, err := security.ParseSessionToken(tokenStr, cfg.Security.JWTSecret)
		if err != nil {
			recorder.Record(c.Request.Context(), audit.Event{
				Kind:   audit.EventTokenRejected,
				IP:     c.ClientIP(),
				Detail: err.Error(),
			})
			status := http.StatusForbidden
			if errors.Is(err, security.ErrTokenExpired) {
				status = http.StatusUnauthorized
			}
			c.AbortWithStatusJSON(status, gin.H{"error": "Invalid token."})
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token. User not found."})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// OptionalAuthenticate attaches an identity when a valid token is
// present and otherwise lets the request through anonymously.
func OptionalAuthenticate(cfg *config.AppConfig, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			c.Next()
			return
		}

		claims, err := security.ParseSessionToken(tokenStr, cfg.Security.JWTSecret)
		if err != nil {
			c.Next()
			return
		}

		if user, err := users.GetByID(c.Request.Context(), claims.UserID); err == nil {
			c.Set(currentUserKey, user)
		}
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(AuthCookie); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
