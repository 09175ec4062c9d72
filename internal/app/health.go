package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gonzacha/qsd/internal/cli"
	"github.com/gonzacha/qsd/internal/ingest"
)

type feedHealth struct {
	URL      string `json:"url"`
	Category string `json:"category"`
	Status   int    `json:"status"`
	Items    int    `json:"items"`
	Error    string `json:"error,omitempty"`
}

type healthReport struct {
	Feeds   []feedHealth `json:"feeds"`
	Healthy int          `json:"healthy"`
	Failed  int          `json:"failed"`
}

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Overall fetch timeout")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

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

	report := summarizeHealth(rt.fetcher.FetchAll(ctx, rt.catalog.AllSources()))
	rt.logger.Info().
		Int("feeds", len(report.Feeds)).
		Int("healthy", report.Healthy).
		Int("failed", report.Failed).
		Msg("feed health check finished")

	if outputFormat == outputFormatJSON {
		if err := printJSON(report); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
	} else {
		rows := make([][]string, 0, len(report.Feeds))
		for _, feed := range report.Feeds {
			rows = append(rows, []string{
				feed.Category,
				strconv.Itoa(feed.Status),
				strconv.Itoa(feed.Items),
				truncateForTable(feed.URL, 70),
				truncateForTable(feed.Error, 60),
			})
		}
		if err := writeTable([]string{"category", "status", "items", "url", "error"}, rows); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render health table: %v\n", err)
			return 1
		}
	}

	if report.Healthy == 0 {
		fmt.Fprintln(os.Stderr, "Health check failed: no feed answered")
		return 1
	}
	return 0
}

// summarizeHealth counts a feed as healthy when it answered without error,
// even if it carried no items.
func summarizeHealth(results []ingest.Result) healthReport {
	report := healthReport{Feeds: make([]feedHealth, 0, len(results))}
	for _, result := range results {
		feed := feedHealth{
			URL:      result.Source.URL,
			Category: result.Source.Category,
			Status:   result.Status,
			Items:    len(result.Items),
		}
		if result.Err != nil {
			feed.Error = result.Err.Error()
			report.Failed++
		} else {
			report.Healthy++
		}
		report.Feeds = append(report.Feeds, feed)
	}
	return report
}
