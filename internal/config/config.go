package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

var ErrMissingRequiredValue = errors.New("missing required value")
var ErrInvalidValue = errors.New("invalid value")

const DEFAULT_API_BASE_URL = "https://scoresaber.com/api"
const DEFAULT_DATABASE_PATH = "saberwatch.db"
const DEFAULT_POLL_INTERVAL = 600 * time.Second

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

type Config struct {
	playerIDs    []string
	apiBaseURL   string
	webhookURL   string
	pollInterval time.Duration
	databasePath string
	databaseURL  string
	sentryDSN    string
	otlpEndpoint string
	env          environment
}

// PlayerIDs returns the players to poll, in polling order
func (c *Config) PlayerIDs() []string {
	ids := make([]string, len(c.playerIDs))
	copy(ids, c.playerIDs)
	return ids
}

func (c *Config) APIBaseURL() string {
	return c.apiBaseURL
}

// WebhookURL is empty when WEBHOOK_URL is not set
func (c *Config) WebhookURL() string {
	return c.webhookURL
}

func (c *Config) PollInterval() time.Duration {
	return c.pollInterval
}

func (c *Config) DatabasePath() string {
	return c.databasePath
}

// DatabaseURL is a postgres connection string. When set it takes precedence over DatabasePath.
func (c *Config) DatabaseURL() string {
	return c.databaseURL
}

func (c *Config) UsePostgres() bool {
	return c.databaseURL != ""
}

func (c *Config) SentryDSN() string {
	return c.sentryDSN
}

func (c *Config) OTLPEndpoint() string {
	return c.otlpEndpoint
}

func (c *Config) TelemetryEnabled() bool {
	return c.otlpEndpoint != ""
}

func (c *Config) IsProduction() bool {
	return c.env == production
}

func (c *Config) IsStaging() bool {
	return c.env == staging
}

func (c *Config) IsDevelopment() bool {
	return c.env == development
}

// Return a string representation suitable for logging etc
func (c *Config) NonSensitiveString() string {
	store := "sqlite"
	if c.UsePostgres() {
		store = "postgres"
	}
	return fmt.Sprintf(
		"Config{env: %s, players: %d, apiBaseURL: %s, pollInterval: %s, store: %s, webhook: %t, telemetry: %t, ...}",
		string(c.env),
		len(c.playerIDs),
		c.apiBaseURL,
		c.pollInterval.String(),
		store,
		c.webhookURL != "",
		c.TelemetryEnabled(),
	)
}

func parsePlayerIDs(raw string) []string {
	seen := make(map[string]bool)
	ids := []string{}
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func parseBaseURL(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	return strings.TrimRight(raw, "/"), nil
}

func ConfigFromEnv() (Config, error) {
	missingKey := func(key string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequiredValue, key)
	}

	var env environment
	rawEnv, ok := os.LookupEnv("SABERWATCH_ENVIRONMENT")
	if !ok {
		return missingKey("SABERWATCH_ENVIRONMENT")
	}
	switch rawEnv {
	case "production":
		env = production
	case "staging":
		env = staging
	case "development":
		env = development
	default:
		return Config{}, fmt.Errorf("%w: SABERWATCH_ENVIRONMENT (%s)", ErrInvalidValue, rawEnv)
	}
	if string(env) == "" {
		panic("logic error: env is empty")
	}

	playerIDs := parsePlayerIDs(os.Getenv("PLAYER_IDS"))
	if len(playerIDs) == 0 {
		return missingKey("PLAYER_IDS")
	}

	apiBaseURL := DEFAULT_API_BASE_URL
	if rawAPIBaseURL := os.Getenv("SCORESABER_API_URL"); rawAPIBaseURL != "" {
		parsed, err := parseBaseURL(rawAPIBaseURL)
		if err != nil {
			return Config{}, fmt.Errorf("%w: SCORESABER_API_URL (%s): %w", ErrInvalidValue, rawAPIBaseURL, err)
		}
		apiBaseURL = parsed
	}

	pollInterval := DEFAULT_POLL_INTERVAL
	if rawPollInterval := os.Getenv("POLL_INTERVAL"); rawPollInterval != "" {
		parsed, err := time.ParseDuration(rawPollInterval)
		if err != nil {
			return Config{}, fmt.Errorf("%w: POLL_INTERVAL (%s): %w", ErrInvalidValue, rawPollInterval, err)
		}
		if parsed <= 0 {
			return Config{}, fmt.Errorf("%w: POLL_INTERVAL (%s) must be positive", ErrInvalidValue, rawPollInterval)
		}
		pollInterval = parsed
	}

	databasePath := os.Getenv("DATABASE_PATH")
	if databasePath == "" {
		databasePath = DEFAULT_DATABASE_PATH
	}

	webhookURL := os.Getenv("WEBHOOK_URL")
	databaseURL := os.Getenv("DATABASE_URL")
	sentryDSN := os.Getenv("SENTRY_DSN")
	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

	if env == production || env == staging {
		if sentryDSN == "" {
			return missingKey("SENTRY_DSN")
		}
	}

	return Config{
		playerIDs:    playerIDs,
		apiBaseURL:   apiBaseURL,
		webhookURL:   webhookURL,
		pollInterval: pollInterval,
		databasePath: databasePath,
		databaseURL:  databaseURL,
		sentryDSN:    sentryDSN,
		otlpEndpoint: otlpEndpoint,
		env:          env,
	}, nil
}
