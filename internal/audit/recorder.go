package audit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Security-relevant failures (bad logins, invalid tokens, CSRF
// rejections, rate-limit hits) are appended to a side channel. Recording
// must never block or fail the primary response.

const (
	EventLoginFailed    = "login_failed"
	EventLoginUnknown   = "login_unknown_user"
	EventTokenRejected  = "token_rejected"
	EventCSRFRejected   = "csrf_rejected"
	EventRateLimited    = "rate_limited"
	EventDuplicateEmail = "duplicate_email"
)

type Event struct {
	Kind   string
	Email  string
	IP     string
	Detail string
}

type Recorder interface {
	Record(ctx context.Context, e Event)
}

// StreamRecorder appends events to a capped redis stream.
type StreamRecorder struct {
	client *redis.Client
	stream string
	maxLen int64
	log    zerolog.Logger
}

func NewStreamRecorder(client *redis.Client, log zerolog.Logger) *StreamRecorder {
	return &StreamRecorder{
		client: client,
		stream: "security:events",
		maxLen: 100000,
		log:    log,
	}
}

func (r *StreamRecorder) Record(ctx context.Context, e Event) {
	if r.client == nil {
		return
	}

	err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: r.maxLen,
		Approx: true,
		Values: map[string]any{
			"kind":   e.Kind,
			"email":  e.Email,
			"ip":     e.IP,
			"detail": e.Detail,
			"at":     time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		r.log.Warn().Err(err).Str("kind", e.Kind).Msg("security event not recorded")
	}
}

// Nop discards events; used in tests and when redis is unavailable.
type Nop struct{}

func (Nop) Record(context.Context, Event) {}
