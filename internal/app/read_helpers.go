package app

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/gonzacha/qsd/internal/catalog"
	"github.com/gonzacha/qsd/internal/cli"
	"github.com/gonzacha/qsd/internal/config"
	"github.com/gonzacha/qsd/internal/ingest"
	"github.com/gonzacha/qsd/internal/langdetect"
	"github.com/gonzacha/qsd/internal/logging"
	"github.com/gonzacha/qsd/internal/pipeline"
	"github.com/gonzacha/qsd/internal/rss"
)

const (
	outputFormatTable = "table"
	outputFormatJSON  = "json"
	outputFormatJSONL = "jsonl"
)

// runtimeDeps is everything a command needs to fetch and rank feeds.
type runtimeDeps struct {
	cfg      *config.Config
	logger   zerolog.Logger
	catalog  *catalog.Catalog
	fetcher  *ingest.Service
	pipeline *pipeline.Service
}

func loadRuntime(envLoader *cli.EnvLoader) (*runtimeDeps, error) {
	envFile := ""
	if envLoader != nil {
		loaded, err := envLoader.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		envFile = loaded
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed catalog: %w", err)
	}

	fetcher := ingest.NewService(ingest.Options{
		Parser:  rss.NewParser(cfg.FeedParser),
		Timeout: cfg.FeedTimeout,
	}, logger)

	opts := pipeline.Options{ExcludeGovHosts: cfg.ExcludeGovHosts}
	if cfg.LanguageDetector == config.LanguageDetectorLingua {
		opts.Language = langdetect.Detector{}
	}

	logger.Debug().
		Str("env_file", envFile).
		Str("feed_parser", cfg.FeedParser).
		Str("language_detector", cfg.LanguageDetector).
		Int("categories", len(cat.Categories)).
		Int("rank_sources", len(cat.RankSources)).
		Msg("runtime initialized")

	return &runtimeDeps{
		cfg:      cfg,
		logger:   logger,
		catalog:  cat,
		fetcher:  fetcher,
		pipeline: pipeline.NewService(fetcher, cat, opts, logger),
	}, nil
}

func parseOutputFormat(raw, defaultFormat string, allowed ...string) (string, error) {
	format := strings.TrimSpace(strings.ToLower(raw))
	if format == "" {
		format = strings.TrimSpace(strings.ToLower(defaultFormat))
	}
	for _, candidate := range allowed {
		if format == candidate {
			return format, nil
		}
	}
	return "", fmt.Errorf("--format must be one of %s", strings.Join(allowed, ", "))
}

func truncateForTable(value string, maxLen int) string {
	trimmed := strings.TrimSpace(value)
	if maxLen <= 0 {
		return trimmed
	}
	if utf8.RuneCountInString(trimmed) <= maxLen {
		return trimmed
	}

	runes := []rune(trimmed)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

func pointerStringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func writeTable(headers []string, rows [][]string) error {
	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintln(writer, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(writer, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return writer.Flush()
}
