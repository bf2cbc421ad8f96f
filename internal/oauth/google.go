package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"wastewise/api/internal/config"
)

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v3/userinfo"

// Profile is the verified external identity returned by the provider.
type Profile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Provider exchanges an authorization code for a verified profile.
// Implemented by GoogleProvider; faked in tests.
type Provider interface {
	AuthURL(state string) string
	ExchangeProfile(ctx context.Context, code string) (Profile, error)
}

type GoogleProvider struct {
	conf *oauth2.Config
}

func NewGoogleProvider(cfg config.OAuthConfig) *GoogleProvider {
	return &GoogleProvider{
		conf: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (p *GoogleProvider) AuthURL(state string) string {
	return p.conf.AuthCodeURL(state)
}

func (p *GoogleProvider) ExchangeProfile(ctx context.Context, code string) (Profile, error) {
	token, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("oauth exchange: %w", err)
	}

	resp, err := p.conf.Client(ctx, token).Get(userinfoEndpoint)
	if err != nil {
		return Profile{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Profile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if profile.Subject == "" || profile.Email == "" {
		return Profile{}, fmt.Errorf("userinfo missing subject or email")
	}
	return profile, nil
}
