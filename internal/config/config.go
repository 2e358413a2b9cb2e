package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config represents runtime configuration derived from environment variables.
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Database  DatabaseConfig
	Instagram InstagramConfig
	OpenAI    OpenAIConfig
	Geocoding GeocodingConfig
	Media     MediaConfig
	Importer  ImporterConfig
}

// ServerConfig holds HTTP server runtime parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

// DatabaseConfig holds the PostgreSQL connection string.
type DatabaseConfig struct {
	URL string
}

// InstagramConfig holds scraper API credentials.
type InstagramConfig struct {
	RapidAPIKey string
}

// OpenAIConfig holds extraction model credentials and tuning.
type OpenAIConfig struct {
	APIKey              string
	Model               string
	ConfidenceThreshold float64
}

// GeocodingConfig holds the Google Maps Geocoding API key.
type GeocodingConfig struct {
	APIKey string
}

// MediaConfig holds blob storage settings for event images.
type MediaConfig struct {
	Dir     string
	BaseURL string
}

// ImporterConfig holds import pipeline tuning.
type ImporterConfig struct {
	Hashtag       string
	FetchLimit    int
	SweepInterval time.Duration
}

const (
	defaultPort            = "8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second

	defaultLogFormat = "json"

	defaultHashtag       = "popmap"
	defaultFetchLimit    = 20
	defaultSweepInterval = 6 * time.Hour

	defaultMediaDir     = "./media"
	defaultMediaBaseURL = "/media"
)

// Load reads configuration from environment variables, applying defaults when
// values are not provided or invalid.
func Load() (Config, error) {
	// Cloud Run sets PORT, but allow SERVER_PORT override for local dev
	port := getEnv("PORT", "")
	if port == "" {
		port = getEnv("SERVER_PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Instagram: InstagramConfig{
			RapidAPIKey: os.Getenv("RAPIDAPI_KEY"),
		},
		OpenAI: OpenAIConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  os.Getenv("OPENAI_MODEL"),
		},
		Geocoding: GeocodingConfig{
			APIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		},
		Media: MediaConfig{
			Dir:     getEnv("MEDIA_DIR", defaultMediaDir),
			BaseURL: getEnv("MEDIA_BASE_URL", defaultMediaBaseURL),
		},
		Importer: ImporterConfig{
			Hashtag:       getEnv("IMPORT_HASHTAG", defaultHashtag),
			FetchLimit:    defaultFetchLimit,
			SweepInterval: defaultSweepInterval,
		},
	}

	if v := os.Getenv("SERVER_READ_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_READ_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ReadTimeout = d
	}

	if v := os.Getenv("SERVER_WRITE_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.WriteTimeout = d
	}

	if v := os.Getenv("SERVER_SHUTDOWN_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Logging.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case "json", "text":
			cfg.Logging.Format = v
		default:
			return Config{}, fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
		}
	}

	if v := os.Getenv("IMPORT_CONFIDENCE_THRESHOLD"); v != "" {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil || threshold < 0 || threshold > 1 {
			return Config{}, fmt.Errorf("invalid IMPORT_CONFIDENCE_THRESHOLD: must be a number in [0,1]")
		}
		cfg.OpenAI.ConfidenceThreshold = threshold
	}

	if v := os.Getenv("IMPORT_FETCH_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return Config{}, fmt.Errorf("invalid IMPORT_FETCH_LIMIT: must be a positive integer")
		}
		cfg.Importer.FetchLimit = limit
	}

	if v := os.Getenv("IMPORT_SWEEP_INTERVAL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return Config{}, fmt.Errorf("invalid IMPORT_SWEEP_INTERVAL_MINUTES: must be a positive integer")
		}
		cfg.Importer.SweepInterval = time.Duration(minutes) * time.Minute
	}

	return cfg, nil
}

func parseSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return time.Duration(seconds) * time.Second, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
