package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wastewise/api/internal/audit"
	"wastewise/api/internal/config"
	"wastewise/api/internal/ids"
	"wastewise/api/internal/mail"
	"wastewise/api/internal/models"
	"wastewise/api/internal/oauth"
	"wastewise/api/internal/repository"
	"wastewise/api/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotRegistered      = errors.New("not registered")
	ErrPasswordMismatch   = errors.New("current password is incorrect")
	ErrFederatedAccount   = errors.New("federated account has no local password")
	ErrUnverifiedEmail    = errors.New("provider email is not verified")
)

// UserStore abstracts the credential store. *repository.UserRepository
// is the production implementation.
type UserStore interface {
	Create(ctx context.Context, user models.User) (int64, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (models.User, error)
	LinkGoogle(ctx context.Context, id int64, googleID string, avatarURL string) error
	UpdateProfile(ctx context.Context, user models.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash []byte) error
	MarkVerified(ctx context.Context, token string) error
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	CountByRole(ctx context.Context, role models.Role) (int64, error)
}

type AuthService struct {
	users  UserStore
	cfg    *config.AppConfig
	audit  audit.Recorder
	mailer mail.Mailer
	log    zerolog.Logger
}

func NewAuthService(
	users UserStore,
	cfg *config.AppConfig,
	recorder audit.Recorder,
	mailer mail.Mailer,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		cfg:    cfg,
		audit:  recorder,
		mailer: mailer,
		log:    log,
	}
}

type RegisterInput struct {
	Name     string
	Address  string
	Email    string
	Contact  string
	Password string
	Role     string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	if err := validateRegistration(input); err != nil {
		return err
	}

	role, _ := models.ParseRole(input.Role)
	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return err
	}

	token := ids.New()
	user := models.User{
		Name:              strings.TrimSpace(input.Name),
		Address:           strings.TrimSpace(input.Address),
		Email:             strings.TrimSpace(strings.ToLower(input.Email)),
		Contact:           strings.TrimSpace(input.Contact),
		PasswordHash:      passwordHash,
		Role:              role,
		VerificationToken: &token,
	}

	id, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.audit.Record(ctx, audit.Event{Kind: audit.EventDuplicateEmail, Email: user.Email})
		}
		return err
	}

	// Fire-and-forget: verification mail must not delay or fail the
	// registration response.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.mailer.SendVerification(ctx, user.Email, token); err != nil {
			s.log.Warn().Err(err).Int64("user_id", id).Msg("verification mail failed")
		}
	}()

	return nil
}

type LoginInput struct {
	Email    string
	Password string
	IP       string
}

type LoginResult struct {
	Token string
	User  models.User
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.audit.Record(ctx, audit.Event{Kind: audit.EventLoginUnknown, Email: email, IP: input.IP})
			return LoginResult{}, ErrNotRegistered
		}
		return LoginResult{}, err
	}

	if user.Federated() || len(user.PasswordHash) == 0 {
		s.audit.Record(ctx, audit.Event{Kind: audit.EventLoginFailed, Email: email, IP: input.IP, Detail: "federated account"})
		return LoginResult{}, ErrInvalidCredentials
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return LoginResult{}, err
	}
	if !ok {
		s.audit.Record(ctx, audit.Event{Kind: audit.EventLoginFailed, Email: email, IP: input.IP})
		return LoginResult{}, ErrInvalidCredentials
	}

	return s.issueSession(user)
}

func (s *AuthService) issueSession(user models.User) (LoginResult, error) {
	token, err := security.IssueSessionToken(s.cfg.Security.JWTSecret, user, s.cfg.Security.JWTTTL)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, User: user}, nil
}

type UpdateProfileInput struct {
	UserID  int64
	Name    string
	Address string
	Email   string
	Contact string
}

// UpdateProfile patches the given fields; empty inputs keep the stored
// value. The record is re-read within the request so the write never
// acts on data older than the request itself.
func (s *AuthService) UpdateProfile(ctx context.Context, input UpdateProfileInput) error {
	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}

	if v := strings.TrimSpace(input.Name); v != "" {
		user.Name = v
	}
	if v := strings.TrimSpace(input.Address); v != "" {
		user.Address = v
	}
	if v := strings.TrimSpace(input.Contact); v != "" {
		user.Contact = v
	}
	if v := strings.TrimSpace(strings.ToLower(input.Email)); v != "" {
		user.Email = v
	}

	return s.users.UpdateProfile(ctx, user)
}

type UpdatePasswordInput struct {
	UserID          int64
	CurrentPassword string
	NewPassword     string
}

// UpdatePassword verifies the current password against a fresh read of
// the record, then writes the new hash, all within one request.
func (s *AuthService) UpdatePassword(ctx context.Context, input UpdatePasswordInput) error {
	if fields := validatePassword(input.NewPassword); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if user.Federated() || len(user.PasswordHash) == 0 {
		return ErrFederatedAccount
	}

	ok, err := security.VerifyPassword(input.CurrentPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPasswordMismatch
	}

	newHash, err := security.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, newHash)
}

// CompleteOAuth links a verified external identity to a local record:
// match by provider subject, else by verified email, else create a
// federated account. Either way the caller gets a session identical to
// local login.
func (s *AuthService) CompleteOAuth(ctx context.Context, profile oauth.Profile) (LoginResult, error) {
	user, err := s.users.FindByGoogleID(ctx, profile.Subject)
	if err == nil {
		return s.issueSession(user)
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return LoginResult{}, err
	}

	// Past this point the provider email is the only thing tying the
	// external identity to a local record. An unverified email must not
	// match or claim an account: the provider has not proven the caller
	// controls that address.
	if !profile.EmailVerified {
		s.audit.Record(ctx, audit.Event{
			Kind:   audit.EventLoginFailed,
			Email:  profile.Email,
			Detail: "oauth email not verified",
		})
		return LoginResult{}, ErrUnverifiedEmail
	}

	email := strings.TrimSpace(strings.ToLower(profile.Email))
	user, err = s.users.FindByEmail(ctx, email)
	if err == nil {
		if err := s.users.LinkGoogle(ctx, user.ID, profile.Subject, profile.Picture); err != nil {
			return LoginResult{}, err
		}
		return s.issueSession(user)
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return LoginResult{}, err
	}

	googleID := profile.Subject
	avatar := profile.Picture
	newUser := models.User{
		Name:        profile.Name,
		Email:       email,
		Role:        models.RoleResident,
		GoogleID:    &googleID,
		AvatarURL:   &avatar,
		IsOAuthUser: true,
		IsVerified:  profile.EmailVerified,
	}

	id, err := s.users.Create(ctx, newUser)
	if err != nil {
		return LoginResult{}, err
	}
	newUser.ID = id

	return s.issueSession(newUser)
}

// VerifyEmail completes the email-confirmation flow for the opaque
// token mailed at registration.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return repository.ErrUserNotFound
	}
	return s.users.MarkVerified(ctx, token)
}

func (s *AuthService) UserByID(ctx context.Context, id int64) (models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) UsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	return s.users.ListByRole(ctx, role)
}

func (s *AuthService) CollectorCount(ctx context.Context) (int64, error) {
	return s.users.CountByRole(ctx, models.RoleCollector)
}
