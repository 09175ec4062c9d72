package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTimeout        = 8 * time.Second
	DefaultBatchSize      = 10
	DefaultAggregatorHost = "news.google.com"

	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	maxPageBytes = 2 << 20
)

// ErrInvalidURL is returned for anything other than an absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid url")

// Result is the outcome of resolving one aggregator link. On failure
// Resolved is the input URL and Error carries the reason.
type Result struct {
	Resolved string `json:"resolved"`
	Source   string `json:"source"`
	Error    string `json:"error,omitempty"`
}

type Options struct {
	Client    *http.Client
	Timeout   time.Duration
	BatchSize int
	// AggregatorHost marks URLs that still need resolving.
	AggregatorHost string
}

type Resolver struct {
	client         *http.Client
	timeout        time.Duration
	batchSize      int
	aggregatorHost string
	logger         zerolog.Logger
}

func New(opts Options, logger zerolog.Logger) *Resolver {
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	host := strings.TrimSpace(opts.AggregatorHost)
	if host == "" {
		host = DefaultAggregatorHost
	}
	return &Resolver{
		client:         client,
		timeout:        timeout,
		batchSize:      batchSize,
		aggregatorHost: host,
		logger:         logger,
	}
}

// ValidateHTTPURL parses raw and requires an absolute http(s) URL.
func ValidateHTTPURL(raw string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return parsed, nil
}

// Resolve follows the redirects of rawURL. A HEAD request is tried first;
// when it still ends on the aggregator a GET follows and its page is
// searched for a canonical link.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) Result {
	final, err := r.followHead(ctx, rawURL)
	if err != nil {
		return r.failed(rawURL, err)
	}
	if final != "" && !r.onAggregator(final) {
		return Result{Resolved: final, Source: SourceOf(final)}
	}

	final, canonical, err := r.followAndInspect(ctx, rawURL)
	if err != nil {
		return r.failed(rawURL, err)
	}
	if final != "" && !r.onAggregator(final) {
		return Result{Resolved: final, Source: SourceOf(final)}
	}
	if canonical != "" {
		return Result{Resolved: canonical, Source: SourceOf(canonical)}
	}
	return Result{Resolved: rawURL, Source: r.aggregatorHost}
}

// FinalURL is the redirect target used by the tracking endpoint. Unlike
// Resolve it accepts the final GET URL even when it stays on the
// aggregator, and it never fails: errors fall back to rawURL.
func (r *Resolver) FinalURL(ctx context.Context, rawURL string) string {
	final, err := r.followHead(ctx, rawURL)
	if err == nil && final != "" && !r.onAggregator(final) {
		return final
	}

	final, canonical, err := r.followAndInspect(ctx, rawURL)
	if err != nil {
		r.logger.Debug().Err(err).Str("url", rawURL).Msg("redirect resolution failed")
		return rawURL
	}
	if r.onAggregator(final) && canonical != "" {
		return canonical
	}
	if final != "" {
		return final
	}
	return rawURL
}

// ResolveBatch resolves urls in sequential chunks; the members of a chunk
// run in parallel. Results keep the input order.
func (r *Resolver) ResolveBatch(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))
	for start := 0; start < len(urls); start += r.batchSize {
		end := min(start+r.batchSize, len(urls))
		var group errgroup.Group
		for i := start; i < end; i++ {
			group.Go(func() error {
				results[i] = r.Resolve(ctx, urls[i])
				return nil
			})
		}
		_ = group.Wait()
	}
	return results
}

func (r *Resolver) failed(rawURL string, err error) Result {
	r.logger.Debug().Err(err).Str("url", rawURL).Msg("resolve failed")
	return Result{Resolved: rawURL, Source: r.aggregatorHost, Error: err.Error()}
}

func (r *Resolver) followHead(ctx context.Context, rawURL string) (string, error) {
	resp, err := r.do(ctx, rawURL, true)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPageBytes))
	return resp.Request.URL.String(), nil
}

func (r *Resolver) followAndInspect(ctx context.Context, rawURL string) (string, string, error) {
	resp, err := r.do(ctx, rawURL, false)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	final := resp.Request.URL.String()
	if !r.onAggregator(final) {
		return final, "", nil
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return final, "", nil
	}
	return final, r.canonicalFrom(doc, resp.Request.URL), nil
}

func (r *Resolver) do(ctx context.Context, rawURL string, head bool) (*http.Response, error) {
	if _, err := ValidateHTTPURL(rawURL); err != nil {
		return nil, err
	}
	method := http.MethodGet
	if head {
		method = http.MethodHead
	}

	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	req, err := http.NewRequestWithContext(reqCtx, method, rawURL, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// canonicalFrom looks for the publisher URL an aggregator interstitial page
// points at: a canonical link, an og:url or a meta refresh target.
func (r *Resolver) canonicalFrom(doc *goquery.Document, base *url.URL) string {
	candidates := make([]string, 0, 3)
	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
		candidates = append(candidates, href)
	}
	if content, ok := doc.Find(`meta[property="og:url"]`).First().Attr("content"); ok {
		candidates = append(candidates, content)
	}
	doc.Find("meta[http-equiv]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.EqualFold(s.AttrOr("http-equiv", ""), "refresh") {
			return true
		}
		if target := refreshTarget(s.AttrOr("content", "")); target != "" {
			candidates = append(candidates, target)
		}
		return false
	})

	for _, candidate := range candidates {
		ref, err := url.Parse(strings.TrimSpace(candidate))
		if err != nil {
			continue
		}
		absolute := base.ResolveReference(ref).String()
		if _, err := ValidateHTTPURL(absolute); err != nil {
			continue
		}
		if !r.onAggregator(absolute) {
			return absolute
		}
	}
	return ""
}

// refreshTarget extracts the URL of a "0;url=..." meta refresh value.
func refreshTarget(content string) string {
	_, after, found := strings.Cut(content, ";")
	if !found {
		return ""
	}
	after = strings.TrimSpace(after)
	if len(after) < 4 || !strings.EqualFold(after[:4], "url=") {
		return ""
	}
	return strings.Trim(strings.TrimSpace(after[4:]), `'"`)
}

func (r *Resolver) onAggregator(rawURL string) bool {
	return strings.Contains(rawURL, r.aggregatorHost)
}

// SourceOf returns the hostname of rawURL without "www.", or "".
func SourceOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
