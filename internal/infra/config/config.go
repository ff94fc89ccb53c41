package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"homework_status_bot/internal/domain/homework"

	"github.com/joho/godotenv"
)

const (
	DefaultEndpoint     = "https://practicum.yandex.ru/api/user_api/homework_statuses/"
	DefaultPollInterval = 600 * time.Second
	DefaultHTTPTimeout  = 10 * time.Second
	DefaultCycleTimeout = 2 * time.Minute
	DefaultTelegramRate = 1.0
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	PracticumToken     string
	TelegramToken      string
	TelegramChatID     int64
	Endpoint           string
	PollInterval       time.Duration
	PollLookback       time.Duration // How far back the first fetch starts; zero means "now"
	HTTPTimeout        time.Duration
	CycleTimeout       time.Duration
	TelegramRatePerSec float64
	BotCommandsEnabled bool
	JournalDriver      string // "", "postgres" or "sqlite"
	DatabaseURL        string
	LogLevel           string
	Environment        string
}

// Load reads configuration from environment variables and .env file (if present).
// Missing credentials are reported together as a single configuration_missing error.
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.PracticumToken = strings.TrimSpace(os.Getenv("PRACTICUM_TOKEN"))
	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN"))
	chatIDStr := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID"))

	var missing []string
	if cfg.PracticumToken == "" {
		missing = append(missing, "PRACTICUM_TOKEN")
	}
	if cfg.TelegramToken == "" {
		missing = append(missing, "TELEGRAM_TOKEN")
	}
	if chatIDStr == "" {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}
	if len(missing) > 0 {
		return nil, homework.NewError(homework.KindConfigurationMissing,
			"required environment variables are not set: %s", strings.Join(missing, ", "))
	}

	cfg.TelegramChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return nil, homework.WrapError(homework.KindConfigurationMissing, err, "invalid TELEGRAM_CHAT_ID")
	}

	cfg.Endpoint = os.Getenv("ENDPOINT")
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}

	if cfg.PollInterval, err = durationFromEnv("POLL_INTERVAL", DefaultPollInterval); err != nil {
		return nil, err
	}
	if cfg.PollLookback, err = durationFromEnv("POLL_LOOKBACK", 0); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = durationFromEnv("HTTP_TIMEOUT", DefaultHTTPTimeout); err != nil {
		return nil, err
	}
	if cfg.CycleTimeout, err = durationFromEnv("CYCLE_TIMEOUT", DefaultCycleTimeout); err != nil {
		return nil, err
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL must be positive, got %s", cfg.PollInterval)
	}

	cfg.TelegramRatePerSec = DefaultTelegramRate
	if raw := os.Getenv("TELEGRAM_RATE_PER_SEC"); raw != "" {
		cfg.TelegramRatePerSec, err = strconv.ParseFloat(raw, 64)
		if err != nil || cfg.TelegramRatePerSec <= 0 {
			return nil, fmt.Errorf("invalid TELEGRAM_RATE_PER_SEC %q", raw)
		}
	}

	cfg.BotCommandsEnabled = true
	if raw := os.Getenv("BOT_COMMANDS_ENABLED"); raw != "" {
		cfg.BotCommandsEnabled, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid BOT_COMMANDS_ENABLED: %w", err)
		}
	}

	cfg.JournalDriver = strings.ToLower(strings.TrimSpace(os.Getenv("JOURNAL_DRIVER")))
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	switch cfg.JournalDriver {
	case "":
	case "postgres", "sqlite":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set (required by JOURNAL_DRIVER=%s)", cfg.JournalDriver)
		}
	default:
		return nil, fmt.Errorf("unsupported JOURNAL_DRIVER %q", cfg.JournalDriver)
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}

// durationFromEnv accepts Go durations ("10m") or bare seconds ("600").
func durationFromEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
