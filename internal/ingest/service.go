package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"

	"github.com/gonzacha/qsd/internal/catalog"
	"github.com/gonzacha/qsd/internal/rss"
)

const (
	DefaultTimeout = 12 * time.Second

	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	acceptFeeds     = "application/rss+xml, application/xml, text/xml, */*"
	maxFeedBytes    = 8 << 20
	maxErrorMessage = 400
)

// Result is the settled outcome of one feed fetch. A failed fetch has no
// items and a non-nil Err; it never fails the batch.
type Result struct {
	Source catalog.Source
	Items  []rss.Item
	Status int
	Err    error
}

type Service struct {
	client  *http.Client
	parser  rss.Parser
	timeout time.Duration
	logger  zerolog.Logger
}

type Options struct {
	Client  *http.Client
	Parser  rss.Parser
	Timeout time.Duration
}

func NewService(opts Options, logger zerolog.Logger) *Service {
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	parser := opts.Parser
	if parser == nil {
		parser = rss.NewRegexParser(nil)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		client:  client,
		parser:  parser,
		timeout: timeout,
		logger:  logger,
	}
}

// FetchAll fetches every source in parallel and waits for all of them.
// Results are index-aligned with sources.
func (s *Service) FetchAll(ctx context.Context, sources []catalog.Source) []Result {
	results := make([]Result, len(sources))
	var group errgroup.Group
	for i, source := range sources {
		group.Go(func() error {
			results[i] = s.FetchOne(ctx, source)
			return nil
		})
	}
	_ = group.Wait()
	return results
}

// FetchOne fetches and parses a single feed under its own timeout.
func (s *Service) FetchOne(ctx context.Context, source catalog.Source) Result {
	result := Result{Source: source}
	if s == nil || s.client == nil {
		result.Err = fmt.Errorf("ingest service is not initialized")
		return result
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	status, raw, err := s.get(fetchCtx, source.URL)
	result.Status = status
	if err != nil {
		result.Err = err
		s.logFailure(source, status, err)
		return result
	}

	items, err := s.parser.Parse(raw, source.Category)
	if err != nil {
		result.Err = fmt.Errorf("parse feed: %w", err)
		s.logFailure(source, status, result.Err)
		return result
	}
	result.Items = items

	s.logger.Debug().
		Str("feed_url", source.URL).
		Str("category", source.Category).
		Int("items", len(items)).
		Msg("feed fetched")
	return result
}

func (s *Service) get(ctx context.Context, feedURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptFeeds)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorMessage))
		return resp.StatusCode, nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxFeedBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("decode charset: %w", err)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read feed body: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func (s *Service) logFailure(source catalog.Source, status int, err error) {
	s.logger.Warn().
		Err(err).
		Str("feed_url", source.URL).
		Str("category", source.Category).
		Int("status", status).
		Msg("feed fetch failed")
}

// Items flattens results in source order.
func Items(results []Result) []rss.Item {
	total := 0
	for _, result := range results {
		total += len(result.Items)
	}
	out := make([]rss.Item, 0, total)
	for _, result := range results {
		out = append(out, result.Items...)
	}
	return out
}
