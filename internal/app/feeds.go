package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gonzacha/qsd/internal/catalog"
	"github.com/gonzacha/qsd/internal/cli"
	"github.com/gonzacha/qsd/internal/pipeline"
)

func runFeeds(args []string) int {
	fs := flag.NewFlagSet("feeds", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	category := fs.String("cat", pipeline.DefaultListingCategory, "Category key")
	format := fs.String("format", outputFormatTable, "Output format: table or json")
	timeout := fs.Duration("timeout", 60*time.Second, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable, outputFormatTable, outputFormatJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
		return 2
	}

	rt, err := loadRuntime(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	listing, err := rt.pipeline.Feed(ctx, strings.TrimSpace(*category))
	if errors.Is(err, catalog.ErrUnknownCategory) {
		fmt.Fprintf(os.Stderr, "Unknown category %q (known: %s)\n", *category, strings.Join(rt.catalog.Keys(), ", "))
		return 2
	}
	if err != nil {
		rt.logger.Error().Err(err).Str("category", *category).Msg("feeds command failed")
		fmt.Fprintf(os.Stderr, "Feed listing failed: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(listing); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(listing.Items))
	for _, item := range listing.Items {
		rows = append(rows, []string{
			pointerStringOrEmpty(item.PubDate),
			truncateForTable(item.Source, 24),
			item.Edition,
			truncateForTable(item.Title, 80),
		})
	}
	if err := writeTable([]string{"published", "source", "edition", "title"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render listing table: %v\n", err)
		return 1
	}

	words := make([]string, 0, len(listing.Trending))
	for _, word := range listing.Trending {
		words = append(words, fmt.Sprintf("%s(%d)", word.Word, word.Count))
	}
	fmt.Printf("\ncategory=%s items=%d trending=%s\n", listing.Category, listing.Total, strings.Join(words, " "))
	return 0
}
