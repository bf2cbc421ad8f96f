package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wastewise/api/internal/audit"
)

// Limiter is a fixed-window counter keyed by caller. The redis-backed
// implementation lives in internal/cache.
type Limiter interface {
	Allow(ctx context.Context, key string) (ok bool, retryAfter time.Duration, err error)
}

// RateLimit guards the credential endpoints against brute force. A
// limiter failure fails open: losing redis must not take logins down.
func RateLimit(limiter Limiter, recorder audit.Recorder, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter, err := limiter.Allow(c.Request.Context(), "auth:"+c.ClientIP())
		if err != nil {
			log.Warn().Err(err).Str("client_ip", c.ClientIP()).Msg("rate limiter unavailable")
			c.Next()
			return
		}

		if !ok {
			recorder.Record(c.Request.Context(), audit.Event{
				Kind: audit.EventRateLimited,
				IP:   c.ClientIP(),
			})
			c.Header("Retry-After", retryAfter.Round(time.Second).String())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many attempts from this IP, please try again later.",
			})
			return
		}

		c.Next()
	}
}
