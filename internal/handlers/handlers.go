package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"wastewise/api/internal/audit"
	"wastewise/api/internal/cache"
	"wastewise/api/internal/config"
	"wastewise/api/internal/mail"
	"wastewise/api/internal/middleware"
	"wastewise/api/internal/models"
	"wastewise/api/internal/oauth"
	"wastewise/api/internal/repository"
	"wastewise/api/internal/security"
	"wastewise/api/internal/service"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	auth     *service.AuthService
	provider oauth.Provider
	loader   middleware.UserLoader
	limiter  middleware.Limiter
	recorder audit.Recorder
	users    *repository.UserRepository
	db       *pgxpool.Pool
	redis    *redis.Client
}

// Users exposes the credential store for background jobs.
func (h HandlerSet) Users() *repository.UserRepository { return h.users }

// Recorder exposes the security event sink for the server middleware.
func (h HandlerSet) Recorder() audit.Recorder { return h.recorder }

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, redisClient *redis.Client, cfg *config.AppConfig) (HandlerSet, error) {
	cipher, err := security.NewFieldCipher(cfg.Security.ContactCipherKey)
	if err != nil {
		return HandlerSet{}, err
	}

	userRepo := repository.NewUserRepository(db, cipher)
	recorder := audit.NewStreamRecorder(redisClient, log)
	mailer := mail.NewLogMailer(log, cfg.FrontendURL)
	authService := service.NewAuthService(userRepo, cfg, recorder, mailer, log)

	return HandlerSet{
		log:      log,
		cfg:      cfg,
		auth:     authService,
		provider: oauth.NewGoogleProvider(cfg.OAuth),
		loader:   userRepo,
		limiter:  cache.NewWindowLimiter(redisClient, cfg.Security.AuthRateLimit, cfg.Security.AuthRateWindow),
		recorder: recorder,
		users:    userRepo,
		db:       db,
		redis:    redisClient,
	}, nil
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	user := router.Group("/user")
	{
		user.GET("/csrf-token", h.CSRFToken)
		user.GET("/verify-email", h.VerifyEmail)

		limited := user.Group("")
		limited.Use(middleware.RateLimit(h.limiter, h.recorder, h.log))
		limited.POST("/login", h.Login)
		limited.POST("/register", h.RegisterUser)

		protected := user.Group("")
		protected.Use(middleware.Authenticate(h.cfg, h.loader, h.recorder))
		protected.GET("/profile", h.Profile)
		protected.POST("/logout", h.Logout)
		protected.POST("/collector/updateProfile", h.UpdateProfile)
		protected.POST("/collector/updatePassword", h.UpdatePassword)
		protected.GET("/collector/:id",
			middleware.RequireRoles(models.RoleAdmin, models.RoleCollector), h.GetUserByID)

		admin := user.Group("")
		admin.Use(
			middleware.Authenticate(h.cfg, h.loader, h.recorder),
			middleware.RequireRoles(models.RoleAdmin),
		)
		admin.GET("/collectors/count", h.CollectorsCount)
		admin.GET("/roles/:role", h.UsersByRole)
	}

	oauthGroup := router.Group("/auth")
	{
		oauthGroup.GET("/google", h.GoogleRedirect)
		oauthGroup.GET("/google/callback", h.GoogleCallback)
		oauthGroup.POST("/logout", middleware.OptionalAuthenticate(h.cfg, h.loader), h.OAuthLogout)
	}
}
