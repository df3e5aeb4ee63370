package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment and the meetings file.
// It is built once at startup and passed to components explicitly.
type Config struct {
	Server   ServerConfig
	Zoom     ZoomConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	Metrics  MetricsConfig
	Meetings Meetings
	Columns  ColumnsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
	WebhookPath  string
}

// ZoomConfig holds the approval API settings.
type ZoomConfig struct {
	BaseURL     string
	APIKey      string
	APISecret   string
	TimeoutSecs int
}

// StoreConfig selects and locates the record store.
type StoreConfig struct {
	Backend         string // sheets, postgres, redis or memory
	CredentialsFile string
	SheetKey        string
	WorksheetName   string
	RecordsFile     string // CSV seed for the memory backend
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LogConfig holds log sink settings.
type LogConfig struct {
	File  string // written alongside stdout; empty disables
	Level string
}

// MetricsConfig toggles the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool
}

// Store backends.
const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

var ErrInvalidConfig = errors.New("invalid config")

// Load reads configuration from environment, with optional .env file, then the meetings file.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "5000"),
			ReadTimeout:  getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout: getEnvInt("WRITE_TIMEOUT_SEC", 30),
			WebhookPath:  getEnv("WEBHOOK_PATH", "/zoom/registrations"),
		},
		Zoom: ZoomConfig{
			BaseURL:     getEnv("ZOOM_API_BASE_URL", "https://api.zoom.us/v2"),
			APIKey:      getEnv("ZOOM_API_KEY", ""),
			APISecret:   getEnv("ZOOM_API_SECRET", ""),
			TimeoutSecs: getEnvInt("ZOOM_HTTP_TIMEOUT_SEC", 30),
		},
		Store: StoreConfig{
			Backend:         strings.ToLower(getEnv("RECORD_STORE", BackendSheets)),
			CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "config/service-account.json"),
			SheetKey:        getEnv("GOOGLE_SHEET_KEY", ""),
			WorksheetName:   getEnv("GOOGLE_WORKSHEET_NAME", ""),
			RecordsFile:     getEnv("RECORDS_FILE", "config/records.csv"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", "postgres://localhost:5432/keygate?sslmode=disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Log: LogConfig{
			File:  getEnv("LOG_FILE", "app.log"),
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
		},
	}

	meetings, columns, err := LoadMeetingsFile(getEnv("MEETINGS_FILE", "config/meetings.yaml"))
	if err != nil {
		return nil, err
	}
	cfg.Meetings = meetings
	cfg.Columns = columns

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings every backend needs.
func (c *Config) Validate() error {
	if c.Zoom.APIKey == "" || c.Zoom.APISecret == "" {
		return fmt.Errorf("%w: ZOOM_API_KEY and ZOOM_API_SECRET are required", ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.Server.WebhookPath, "/") {
		return fmt.Errorf("%w: WEBHOOK_PATH must start with /", ErrInvalidConfig)
	}
	if len(c.Meetings) == 0 {
		return fmt.Errorf("%w: no meetings configured", ErrInvalidConfig)
	}
	switch c.Store.Backend {
	case BackendSheets:
		if c.Store.SheetKey == "" || c.Store.WorksheetName == "" {
			return fmt.Errorf("%w: GOOGLE_SHEET_KEY and GOOGLE_WORKSHEET_NAME are required for the sheets store", ErrInvalidConfig)
		}
	case BackendPostgres, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("%w: unknown RECORD_STORE %q", ErrInvalidConfig, c.Store.Backend)
	}
	return nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
