package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gonzacha/qsd/internal/cli"
	"github.com/gonzacha/qsd/internal/globaltime"
	"github.com/gonzacha/qsd/internal/pipeline"
)

type rankOutput struct {
	GeneratedAt string                `json:"generatedAt"`
	Items       []pipeline.RankedItem `json:"items"`
}

func runRank(args []string) int {
	fs := flag.NewFlagSet("rank", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	category := fs.String("cat", "", "Restrict the rank pool to one category key")
	limit := fs.Int("limit", pipeline.DefaultRankLimit, "Maximum ranked items")
	minScore := fs.Float64("min", 0, "Minimum factos_final score (0 disables the filter)")
	format := fs.String("format", outputFormatJSON, "Output format: json or jsonl")
	timeout := fs.Duration("timeout", 60*time.Second, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *limit <= 0 {
		fmt.Fprintln(os.Stderr, "--limit must be > 0")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatJSON, outputFormatJSON, outputFormatJSONL)
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

	result, err := rt.pipeline.Rank(ctx, pipeline.RankQuery{
		Category: strings.TrimSpace(*category),
		Limit:    *limit,
		MinScore: *minScore,
	})
	if err != nil {
		rt.logger.Error().Err(err).Msg("rank command failed")
		fmt.Fprintf(os.Stderr, "Rank failed: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSONL {
		for _, item := range result.Items {
			line, err := json.Marshal(item)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to encode item: %v\n", err)
				return 1
			}
			fmt.Println(string(line))
		}
		return 0
	}

	items := result.Items
	if items == nil {
		items = []pipeline.RankedItem{}
	}
	if err := printJSON(rankOutput{GeneratedAt: globaltime.ISO(result.GeneratedAt), Items: items}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}
	return 0
}
