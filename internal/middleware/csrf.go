package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wastewise/api/internal/audit"
	"wastewise/api/internal/config"
	"wastewise/api/internal/security"
)

// CSRFCookie holds the per-session secret the double-submit token is
// bound to. A client obtains it (and a token) from GET /user/csrf-token.
const CSRFCookie = "csrfSecret"

// Header variants accepted for compatibility with older clients.
var csrfHeaders = []string{"CSRF-Token", "X-CSRF-Token", "X-XSRF-Token"}

// CSRF rejects any state-changing request that does not present a token
// matching the caller's session secret. Failure is hard: the server
// never retries on the client's behalf, it only answers 403 with a code
// the client can use to re-fetch a token exactly once.
func CSRF(cfg *config.AppConfig, recorder audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		secret, err := c.Cookie(CSRFCookie)
		if err != nil || secret == "" {
			recorder.Record(c.Request.Context(), audit.Event{
				Kind:   audit.EventCSRFRejected,
				IP:     c.ClientIP(),
				Detail: "missing session cookie",
			})
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "CSRF session missing",
				"code":  "csrf_session_missing",
			})
			return
		}

		token := csrfTokenFromRequest(c)
		if !security.VerifyCSRFToken(cfg.Security.CSRFKey, secret, token) {
			recorder.Record(c.Request.Context(), audit.Event{
				Kind:   audit.EventCSRFRejected,
				IP:     c.ClientIP(),
				Detail: "token mismatch",
			})
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Invalid CSRF token",
				"code":  "invalid_csrf_token",
			})
			return
		}

		c.Next()
	}
}

func csrfTokenFromRequest(c *gin.Context) string {
	for _, header := range csrfHeaders {
		if v := c.GetHeader(header); v != "" {
			return v
		}
	}
	return ""
}
