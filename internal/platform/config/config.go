// Package config lee la configuración del proceso desde variables de entorno, una sola vez al arrancar.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"clinic-records/internal/domain/lookup"
)

type Config struct {
	Port string

	// PublicBaseURL es la base con la que se arma el payload del QR. Nunca sale de headers del request.
	PublicBaseURL string

	DBDSN    string
	RedisURL string

	JWTSigningKey     string
	JWTIssuer         string
	StaffTokenTTL     time.Duration
	StaffUsername     string
	StaffPasswordHash string

	LogLevel  string
	LogFormat string
	AppName   string

	ShutdownTimeout time.Duration
}

const (
	defaultPort          = "8080"
	defaultBaseURL       = "http://localhost:8080"
	defaultIssuer        = "clinic-records"
	defaultTokenTTL      = 12 * time.Hour
	defaultShutdownAfter = 10 * time.Second
)

// FromEnv usa os.Getenv.
func FromEnv() (Config, error) {
	return Load(os.Getenv)
}

// Load arma la config con getenv (inyectable en tests).
func Load(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	base, err := lookup.NormalizeBaseURL(get("PUBLIC_BASE_URL", defaultBaseURL))
	if err != nil {
		return Config{}, fmt.Errorf("PUBLIC_BASE_URL: %w", err)
	}

	ttl, err := duration(get("STAFF_TOKEN_TTL", ""), defaultTokenTTL)
	if err != nil {
		return Config{}, fmt.Errorf("STAFF_TOKEN_TTL: %w", err)
	}
	shutdown, err := duration(get("SHUTDOWN_TIMEOUT", ""), defaultShutdownAfter)
	if err != nil {
		return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	port := get("PORT", defaultPort)
	if _, err := strconv.Atoi(port); err != nil {
		return Config{}, fmt.Errorf("PORT: invalid value %q", port)
	}

	return Config{
		Port:              port,
		PublicBaseURL:     base,
		DBDSN:             get("DB_DSN", ""),
		RedisURL:          get("REDIS_URL", ""),
		JWTSigningKey:     get("JWT_SIGNING_KEY", ""),
		JWTIssuer:         get("JWT_ISSUER", defaultIssuer),
		StaffTokenTTL:     ttl,
		StaffUsername:     get("STAFF_USERNAME", ""),
		StaffPasswordHash: get("STAFF_PASSWORD_HASH", ""),
		LogLevel:          get("LOG_LEVEL", "info"),
		LogFormat:         get("LOG_FORMAT", "json"),
		AppName:           get("APP_NAME", "clinic-records"),
		ShutdownTimeout:   shutdown,
	}, nil
}

// DevAuth indica que no hay clave JWT: el staff se identifica con X-Debug-User-ID.
func (c Config) DevAuth() bool {
	return c.JWTSigningKey == ""
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func duration(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", raw)
	}
	return d, nil
}
