package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gonzacha/qsd/internal/catalog"
)

type catalogSummary struct {
	Categories  int
	Feeds       int
	RankSources int
}

func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	file := fs.String("file", "", "Feed catalog YAML file (empty checks the embedded catalog)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "validate does not accept positional arguments")
		return 2
	}

	path := strings.TrimSpace(*file)
	name := path
	if name == "" {
		name = "embedded"
	}

	summary, err := validateCatalog(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "INVALID %s: %v\n", name, err)
		return 1
	}

	fmt.Printf(
		"validate catalog=%s categories=%d feeds=%d rank_sources=%d\n",
		name,
		summary.Categories,
		summary.Feeds,
		summary.RankSources,
	)
	return 0
}

func validateCatalog(path string) (catalogSummary, error) {
	cat, err := catalog.Load(path)
	if err != nil {
		return catalogSummary{}, err
	}

	summary := catalogSummary{
		Categories:  len(cat.Categories),
		RankSources: len(cat.RankSources),
	}
	for _, category := range cat.Categories {
		summary.Feeds += len(category.Feeds)
	}
	return summary, nil
}
