// Package config загружает настройки сервера и клиента из окружения.
//
// Перед разбором переменных подгружается необязательный .env файл,
// затем значения читаются через envconfig.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ServerConfig настройки cmd/server
type ServerConfig struct {
	Address         string        `envconfig:"CLINICSYNC_ADDRESS" default:":8080"`
	DBPath          string        `envconfig:"CLINICSYNC_DB_PATH" default:"clinicsync.db"`
	JWTSecret       string        `envconfig:"CLINICSYNC_JWT_SECRET" required:"true"`
	RelayURL        string        `envconfig:"CLINICSYNC_RELAY_URL"`
	LogLevel        string        `envconfig:"CLINICSYNC_LOG_LEVEL" default:"info"`
	AccessTokenTTL  time.Duration `envconfig:"CLINICSYNC_ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTokenTTL time.Duration `envconfig:"CLINICSYNC_REFRESH_TOKEN_TTL" default:"720h"`
	RelayTimeout    time.Duration `envconfig:"CLINICSYNC_RELAY_TIMEOUT" default:"10s"`
	RelayDelay      time.Duration `envconfig:"CLINICSYNC_RELAY_RETRY_DELAY" default:"500ms"`
	ShutdownTimeout time.Duration `envconfig:"CLINICSYNC_SHUTDOWN_TIMEOUT" default:"10s"`
	CleanupInterval time.Duration `envconfig:"CLINICSYNC_TOKEN_CLEANUP_INTERVAL" default:"1h"`
	RelayAttempts   uint          `envconfig:"CLINICSYNC_RELAY_ATTEMPTS" default:"3"`
	RelayPerSecond  uint          `envconfig:"CLINICSYNC_RELAY_PER_SECOND" default:"5"`
	RateLimit       int           `envconfig:"CLINICSYNC_AUTH_RATE_LIMIT" default:"5"`
	RateWindow      time.Duration `envconfig:"CLINICSYNC_AUTH_RATE_WINDOW" default:"1m"`
}

// ClientConfig значения по умолчанию для флагов cmd/client
type ClientConfig struct {
	ServerURL    string        `envconfig:"CLINICSYNC_CLIENT_SERVER" default:"http://localhost:8080"`
	DBPath       string        `envconfig:"CLINICSYNC_CLIENT_DB" default:"clinicsync-client.db"`
	LogLevel     string        `envconfig:"CLINICSYNC_CLIENT_LOG_LEVEL" default:"warn"`
	SiteURL      string        `envconfig:"CLINICSYNC_CLIENT_SITE_URL" default:"https://ortho.life"`
	DoctorName   string        `envconfig:"CLINICSYNC_CLIENT_DOCTOR"`
	Language     string        `envconfig:"CLINICSYNC_CLIENT_LANGUAGE" default:"en"`
	SyncInterval time.Duration `envconfig:"CLINICSYNC_CLIENT_SYNC_INTERVAL" default:"10s"`
	SyncJitter   time.Duration `envconfig:"CLINICSYNC_CLIENT_SYNC_JITTER" default:"2s"`
	OnlineCheck  time.Duration `envconfig:"CLINICSYNC_CLIENT_ONLINE_CHECK" default:"3s"`
	HTTPTimeout  time.Duration `envconfig:"CLINICSYNC_CLIENT_HTTP_TIMEOUT" default:"30s"`
}

// LoadServer читает конфигурацию сервера. envFiles по умолчанию: .env
func LoadServer(envFiles ...string) (*ServerConfig, error) {
	loadDotEnv(envFiles)

	var cfg ServerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process server config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadClient читает конфигурацию клиента. envFiles по умолчанию: .env
func LoadClient(envFiles ...string) (*ClientConfig, error) {
	loadDotEnv(envFiles)

	var cfg ClientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process client config: %w", err)
	}
	if cfg.SyncInterval <= 0 {
		return nil, errors.New("sync interval must be positive")
	}
	if cfg.SyncJitter < 0 {
		return nil, errors.New("sync jitter must not be negative")
	}
	if cfg.OnlineCheck <= 0 {
		return nil, errors.New("online check interval must be positive")
	}
	return &cfg, nil
}

// Validate проверяет связанные значения
func (c *ServerConfig) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("jwt secret must be at least 32 characters")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	if c.RelayAttempts == 0 {
		return errors.New("relay attempts must be at least 1")
	}
	if c.RateLimit <= 0 || c.RateWindow <= 0 {
		return errors.New("auth rate limit must be positive")
	}
	return nil
}

// ParseLevel переводит строковый уровень логирования в slog.Level.
// Неизвестные значения дают info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadDotEnv(files []string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	// отсутствие .env не ошибка: значения берутся из окружения
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}
