package config

import (
	"errors"
	"net/url"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/climate-catalog-etl/internal/source"
)

// Config holds all generator settings, populated from environment variables.
// Every field has a default, so the tool runs with no environment at all.
type Config struct {
	SourceBaseURL string
	SourceDir     string
	OutputPath    string
	FetchTimeout  time.Duration

	LogLevel        string
	LogFormat       string
	MetricsTextfile string

	// Optional Kafka sink; disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string

	// serve mode.
	HTTPAddr        string
	StaticDir       string
	RefreshInterval time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parseNonNegativeDuration("CATALOG_FETCH_TIMEOUT", "0s")
	if err != nil {
		return nil, err
	}

	refreshInterval, err := parseNonNegativeDuration("CATALOG_REFRESH_INTERVAL", "0s")
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		SourceBaseURL:   sharedcfg.EnvOrDefault("CATALOG_SOURCE_BASE_URL", source.DefaultBaseURL),
		SourceDir:       os.Getenv("CATALOG_SOURCE_DIR"),
		OutputPath:      sharedcfg.EnvOrDefault("CATALOG_OUTPUT_PATH", "docs/catalog.json"),
		FetchTimeout:    fetchTimeout,
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
		KafkaBrokers:    brokers,
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_CATALOG_TOPIC", "climate-catalog"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		StaticDir:       os.Getenv("CATALOG_STATIC_DIR"),
		RefreshInterval: refreshInterval,
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.SourceDir == "" {
		u, err := url.Parse(cfg.SourceBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, errors.New("CATALOG_SOURCE_BASE_URL must be an absolute http(s) URL")
		}
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, errors.New("LOG_FORMAT must be json or text")
	}

	return cfg, nil
}

// KafkaEnabled reports whether the Kafka sink is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parseNonNegativeDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}
