// Package config loads server configuration from the environment via viper,
// with defaults suitable for local development.
package config

import (
	"errors"

	"github.com/spf13/viper"
)

// Config holds everything the server needs at startup. It is read once in
// main and passed down explicitly — no package reads the environment on its
// own.
type Config struct {
	Port   int
	DBPath string

	JWTSecret string

	Auth0Domain       string
	Auth0ClientID     string
	Auth0ClientSecret string
	Auth0CallbackURL  string

	CORSOrigins []string

	// Rate limiting per client IP: RateLimit requests per RateLimitWindow
	// minutes.
	RateLimit       int
	RateLimitWindow int // minutes
}

// Load reads configuration from environment variables, applying defaults.
// JWT_SECRET has no default: auth cannot run with a guessable secret.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_PATH", "data/spearo.db")
	v.SetDefault("AUTH0_CALLBACK_URL", "http://localhost:8080/auth/callback")
	v.SetDefault("CORS_ORIGINS", []string{"http://localhost:3000"})
	v.SetDefault("RATE_LIMIT", 100)
	v.SetDefault("RATE_LIMIT_WINDOW_MINUTES", 15)
	v.AutomaticEnv()

	cfg := Config{
		Port:              v.GetInt("PORT"),
		DBPath:            v.GetString("DB_PATH"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		Auth0Domain:       v.GetString("AUTH0_DOMAIN"),
		Auth0ClientID:     v.GetString("AUTH0_CLIENT_ID"),
		Auth0ClientSecret: v.GetString("AUTH0_CLIENT_SECRET"),
		Auth0CallbackURL:  v.GetString("AUTH0_CALLBACK_URL"),
		CORSOrigins:       v.GetStringSlice("CORS_ORIGINS"),
		RateLimit:         v.GetInt("RATE_LIMIT"),
		RateLimitWindow:   v.GetInt("RATE_LIMIT_WINDOW_MINUTES"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("config: JWT_SECRET must be set")
	}

	return cfg, nil
}
