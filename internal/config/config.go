package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the sync layer and its HTTP companion.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	LogLevel        string
	SupabaseURL     string
	SupabaseAnonKey string
	DatabaseURL     string
	RedisURL        string
	NATSURL         string
	JWTSecret       string
	EventChannel    string
	SessionTTL      time.Duration
	RemoteCascade   bool
	CORSOrigins     string
	AccessLog       bool
}

// IsConfigured reports whether a remote backend is available at all. Both the project
// URL and the anonymous key must be present; otherwise the process runs in demo mode.
func (c Config) IsConfigured() bool {
	return strings.TrimSpace(c.SupabaseURL) != "" && strings.TrimSpace(c.SupabaseAnonKey) != ""
}

// TokenSecret returns the secret used to verify session access tokens.
func (c Config) TokenSecret() string {
	if secret := strings.TrimSpace(c.JWTSecret); secret != "" {
		return secret
	}
	return strings.TrimSpace(c.SupabaseAnonKey)
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
// Missing backend credentials are not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SKILLPATH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "skillpath")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("events.channel", "skillpath")
	v.SetDefault("session.ttl", "168h")
	v.SetDefault("remote_cascade", true)
	v.SetDefault("cors.origins", "*")
	v.SetDefault("http.access_log", false)

	ttlString := v.GetString("session.ttl")
	if ttlString == "" {
		ttlString = "168h"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		LogLevel:        strings.ToLower(v.GetString("log.level")),
		SupabaseURL:     strings.TrimSpace(v.GetString("supabase.url")),
		SupabaseAnonKey: strings.TrimSpace(v.GetString("supabase.anon_key")),
		DatabaseURL:     strings.TrimSpace(v.GetString("database.url")),
		RedisURL:        strings.TrimSpace(v.GetString("redis.url")),
		NATSURL:         strings.TrimSpace(v.GetString("nats.url")),
		JWTSecret:       v.GetString("jwt.secret"),
		EventChannel:    strings.TrimSpace(v.GetString("events.channel")),
		SessionTTL:      ttl,
		RemoteCascade:   v.GetBool("remote_cascade"),
		CORSOrigins:     strings.TrimSpace(v.GetString("cors.origins")),
		AccessLog:       v.GetBool("http.access_log"),
	}

	if cfg.IsConfigured() && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided when the backend is configured")
	}

	return cfg, nil
}
