package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	FeedParserRegex  = "regex"
	FeedParserGofeed = "gofeed"

	LanguageDetectorStopwords = "stopwords"
	LanguageDetectorLingua    = "lingua"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	CatalogFile      string        `envconfig:"QSD_CATALOG_FILE" default:""`
	FeedTimeout      time.Duration `envconfig:"QSD_FEED_TIMEOUT" default:"12s"`
	FeedParser       string        `envconfig:"QSD_FEED_PARSER" default:"regex"`
	LanguageDetector string        `envconfig:"QSD_LANGUAGE_DETECTOR" default:"stopwords"`
	ExcludeGovHosts  bool          `envconfig:"QSD_EXCLUDE_GOV_HOSTS" default:"true"`

	ResolveTimeout   time.Duration `envconfig:"QSD_RESOLVE_TIMEOUT" default:"8s"`
	ResolveBatchSize int           `envconfig:"QSD_RESOLVE_BATCH_SIZE" default:"10"`
	ResolveRateLimit float64       `envconfig:"QSD_RESOLVE_RATE_LIMIT" default:"20"`

	CORSAllowedOrigins string `envconfig:"QSD_CORS_ALLOWED_ORIGINS" default:"*"`
	PublicBaseURL      string `envconfig:"QSD_PUBLIC_BASE_URL" default:""`
	LogoFile           string `envconfig:"QSD_LOGO_FILE" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.FeedTimeout <= 0 {
		return fmt.Errorf("QSD_FEED_TIMEOUT must be > 0")
	}
	if c.ResolveTimeout <= 0 {
		return fmt.Errorf("QSD_RESOLVE_TIMEOUT must be > 0")
	}
	if c.ResolveBatchSize < 1 {
		return fmt.Errorf("QSD_RESOLVE_BATCH_SIZE must be >= 1")
	}
	if c.ResolveRateLimit < 0 {
		return fmt.Errorf("QSD_RESOLVE_RATE_LIMIT must be >= 0")
	}

	c.FeedParser = strings.ToLower(strings.TrimSpace(c.FeedParser))
	switch c.FeedParser {
	case FeedParserRegex, FeedParserGofeed:
	default:
		return fmt.Errorf("QSD_FEED_PARSER must be %q or %q, got %q", FeedParserRegex, FeedParserGofeed, c.FeedParser)
	}

	c.LanguageDetector = strings.ToLower(strings.TrimSpace(c.LanguageDetector))
	switch c.LanguageDetector {
	case LanguageDetectorStopwords, LanguageDetectorLingua:
	default:
		return fmt.Errorf("QSD_LANGUAGE_DETECTOR must be %q or %q, got %q", LanguageDetectorStopwords, LanguageDetectorLingua, c.LanguageDetector)
	}

	if base := strings.TrimSpace(c.PublicBaseURL); base != "" {
		if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
			return fmt.Errorf("QSD_PUBLIC_BASE_URL must start with http:// or https://")
		}
		c.PublicBaseURL = strings.TrimRight(base, "/")
	}
	return nil
}

// CORSAllowedOriginsList splits the comma separated origin list. An empty
// setting allows every origin.
func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return []string{"*"}
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
