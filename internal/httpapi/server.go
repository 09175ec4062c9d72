package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/gonzacha/qsd/internal/globaltime"
	"github.com/gonzacha/qsd/internal/logging"
	"github.com/gonzacha/qsd/internal/pipeline"
	"github.com/gonzacha/qsd/internal/reader"
	"github.com/gonzacha/qsd/internal/render"
	"github.com/gonzacha/qsd/internal/resolve"
)

// NewsPipeline is the rank and listing engine behind /api/rank and /api/feeds.
type NewsPipeline interface {
	Rank(ctx context.Context, query pipeline.RankQuery) (pipeline.RankResult, error)
	Feed(ctx context.Context, key string) (pipeline.FeedListing, error)
	CategoryRefs() []pipeline.CategoryRef
}

// LinkResolver turns aggregator links into publisher URLs.
type LinkResolver interface {
	Resolve(ctx context.Context, rawURL string) resolve.Result
	ResolveBatch(ctx context.Context, urls []string) []resolve.Result
	FinalURL(ctx context.Context, rawURL string) string
}

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	CORSAllowedOrigins []string
	// PublicBaseURL overrides the origin derived from the request when
	// building share and card links.
	PublicBaseURL string
	// ResolveRateLimit is requests per second per client on the routes that
	// fetch third-party pages. Zero disables limiting.
	ResolveRateLimit float64
	// Logo is served by /api/og?format=png when set.
	Logo []byte
	// Reader tunes article fetches for /api/preview.
	Reader reader.FetchOptions
}

type Deps struct {
	Pipeline NewsPipeline
	Resolver LinkResolver
	Renderer *render.Renderer
}

type Server struct {
	pipeline NewsPipeline
	resolver LinkResolver
	renderer *render.Renderer
	logger   zerolog.Logger
	opts     Options
}

func NewServer(deps Deps, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8090
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	origins := opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	opts.Host = host
	opts.Port = port
	opts.ReadTimeout = readTimeout
	opts.WriteTimeout = writeTimeout
	opts.ShutdownTimeout = shutdownTimeout
	opts.CORSAllowedOrigins = origins
	opts.PublicBaseURL = strings.TrimRight(strings.TrimSpace(opts.PublicBaseURL), "/")

	return &Server{
		pipeline: deps.Pipeline,
		resolver: deps.Resolver,
		renderer: deps.Renderer,
		logger:   logger,
		opts:     opts,
	}
}

// Handler builds the echo instance with every route and middleware.
func (s *Server) Handler() (*echo.Echo, error) {
	if s == nil || s.pipeline == nil || s.resolver == nil || s.renderer == nil {
		return nil, fmt.Errorf("server is not initialized")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	// Answers every OPTIONS request with 204 before it reaches a route.
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.opts.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	outbound := s.outboundLimiter()

	e.GET("/r", s.handleRedirect, outbound...)

	api := e.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/rank", s.handleRank)
	api.GET("/feeds", s.handleFeeds)
	api.Any("/resolve", s.handleResolve, outbound...)
	api.GET("/share", s.handleShare)
	api.GET("/og", s.handleOG)
	api.GET("/thumb", s.handleThumb)
	api.GET("/preview", s.handlePreview, outbound...)

	return e, nil
}

func (s *Server) Start(ctx context.Context) error {
	e, err := s.Handler()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("qsd web server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("qsd web server stopped")
	return nil
}

// outboundLimiter throttles, per client IP, the routes that make this
// process fetch third-party pages.
func (s *Server) outboundLimiter() []echo.MiddlewareFunc {
	if s.opts.ResolveRateLimit <= 0 {
		return nil
	}
	burst := int(s.opts.ResolveRateLimit)
	if burst < 1 {
		burst = 1
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(s.opts.ResolveRateLimit),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return []echo.MiddlewareFunc{middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, errorBody{Error: "Could not identify client"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, errorBody{Error: "Too many requests"})
		},
	})}
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	isAPI := strings.HasPrefix(c.Request().URL.Path, "/api/")
	if isAPI {
		if status >= 500 {
			s.logger.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("unhandled api error")
			_ = c.JSON(status, errorBody{Error: "Internal server error"})
			return
		}
		_ = c.JSON(status, errorBody{Error: message})
		return
	}

	_ = c.String(status, message)
}

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, map[string]any{
		"service": logging.ServiceName,
		"time":    globaltime.UTC(),
	})
}

// origin is the scheme and host links back to this service use.
func (s *Server) origin(c echo.Context) string {
	if s.opts.PublicBaseURL != "" {
		return s.opts.PublicBaseURL
	}
	return c.Scheme() + "://" + c.Request().Host
}

func parsePositiveInt(raw string, defaultValue, minValue, maxValue int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if value < minValue || value > maxValue {
		return 0, fmt.Errorf("must be between %d and %d", minValue, maxValue)
	}
	return value, nil
}
