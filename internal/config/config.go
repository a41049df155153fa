package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	AuthModeStatic = "static"
	AuthModeJWT    = "jwt"
)

type Config struct {
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBApplySchema     bool
	DBStatsInterval   time.Duration

	Port string

	AuthMode      string
	JWTSecret     string
	AuthAccountID int64
	AuthUserID    int64

	AllowedOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{
		DBHost:     envString("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  envString("DB_SSLMODE", "disable"),

		DBMaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		DBApplySchema:     envBool("DB_APPLY_SCHEMA", false),
		DBStatsInterval:   envDuration("DB_STATS_INTERVAL", 0),

		Port: envString("PORT", "8080"),

		AuthMode:      strings.ToLower(envString("AUTH_MODE", AuthModeStatic)),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AuthAccountID: int64(envInt("AUTH_ACCOUNT_ID", 1)),
		AuthUserID:    int64(envInt("AUTH_USER_ID", 1)),

		AllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	switch cfg.AuthMode {
	case AuthModeStatic:
	case AuthModeJWT:
		if cfg.JWTSecret == "" {
			return cfg, fmt.Errorf("JWT_SECRET is required when AUTH_MODE=%s", AuthModeJWT)
		}
	default:
		return cfg, fmt.Errorf("unknown AUTH_MODE %q", cfg.AuthMode)
	}

	return cfg, nil
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func envList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
