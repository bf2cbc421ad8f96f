package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Mailer is the trigger contract for outbound account mail. Delivery
// mechanics live behind this interface; callers only fire the trigger
// and tolerate failure.
type Mailer interface {
	SendVerification(ctx context.Context, to string, token string) error
}

// LogMailer writes the verification link to the log instead of sending
// anything. It stands in for a real transport in development.
type LogMailer struct {
	log         zerolog.Logger
	frontendURL string
}

func NewLogMailer(log zerolog.Logger, frontendURL string) *LogMailer {
	return &LogMailer{log: log, frontendURL: frontendURL}
}

func (m *LogMailer) SendVerification(_ context.Context, to string, token string) error {
	url := fmt.Sprintf("%s/verify-email?token=%s", m.frontendURL, token)
	m.log.Info().Str("to", to).Str("url", url).Msg("verification mail")
	return nil
}
