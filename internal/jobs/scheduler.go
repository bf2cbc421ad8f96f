package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// VerificationPurger drops verification tokens that were never used.
// Implemented by repository.UserRepository.
type VerificationPurger interface {
	PurgeStaleVerificationTokens(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Scheduler runs background maintenance: capping the security event
// stream and expiring stale email-verification tokens.
type Scheduler struct {
	cron  *cron.Cron
	redis *redis.Client
	users VerificationPurger
	log   zerolog.Logger
}

func NewScheduler(redisClient *redis.Client, users VerificationPurger, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithSeconds()),
		redis: redisClient,
		users: users,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 3 * * *", s.trimSecurityEvents); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 * * * *", s.purgeVerificationTokens); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits up to five seconds for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) trimSecurityEvents() {
	if s.redis == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.redis.XTrimMaxLenApprox(ctx, "security:events", 100000, 0).Err(); err != nil {
		s.log.Error().Err(err).Msg("trim security events failed")
	}
}

func (s *Scheduler) purgeVerificationTokens() {
	if s.users == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := s.users.PurgeStaleVerificationTokens(ctx, 48*time.Hour)
	if err != nil {
		s.log.Error().Err(err).Msg("purge verification tokens failed")
		return
	}
	if purged > 0 {
		s.log.Info().Int64("purged", purged).Msg("stale verification tokens dropped")
	}
}
