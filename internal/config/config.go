package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SecurityConfig struct {
	// JWTSecret signs session tokens. Required in production; startup
	// fails closed when it is missing rather than defaulting.
	JWTSecret string
	JWTTTL    time.Duration

	// CSRFKey is the server-side HMAC key the CSRF guard mixes with the
	// per-session secret. Required in production.
	CSRFKey string

	// ContactCipherKey encrypts the contact field at rest. Optional:
	// when absent, contact values are stored and returned as-is.
	ContactCipherKey string

	AuthRateLimit  int
	AuthRateWindow time.Duration
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	RedirectURL        string
}

type AppConfig struct {
	Environment      string
	FrontendURL      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Security         SecurityConfig
	OAuth            OAuthConfig
	AllowCORSOrigins []string
}

func (c *AppConfig) Production() bool {
	return c.Environment == "production"
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("WASTEWISE")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *AppConfig) error {
	if cfg.Production() {
		if cfg.Security.JWTSecret == "" {
			return fmt.Errorf("security.jwtsecret is required in production")
		}
		if cfg.Security.CSRFKey == "" {
			return fmt.Errorf("security.csrfkey is required in production")
		}
		return nil
	}

	// Development fallbacks only. Production fails closed above.
	if cfg.Security.JWTSecret == "" {
		cfg.Security.JWTSecret = "insecure-dev-jwt-secret"
	}
	if cfg.Security.CSRFKey == "" {
		cfg.Security.CSRFKey = "insecure-dev-csrf-key"
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("frontendurl", "http://localhost:3000")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8070)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	// Development-only fallbacks; validate() rejects them in production.
	v.SetDefault("security.jwtsecret", "")
	v.SetDefault("security.csrfkey", "")
	v.SetDefault("security.jwtttl", "168h") // 7 days
	v.SetDefault("security.authratelimit", 10)
	v.SetDefault("security.authratewindow", "15m")

	v.SetDefault("oauth.redirecturl", "http://localhost:8070/auth/google/callback")
}
