package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gonzacha/qsd/internal/resolve"
	payloadschema "github.com/gonzacha/qsd/schema"
)

const (
	resolveCacheControl = "public, max-age=86400, s-maxage=86400"
	maxResolveBodyBytes = 256 * 1024
)

type resolveBatchResponse struct {
	Results []resolve.Result `json:"results"`
}

func (s *Server) handleResolve(c echo.Context) error {
	switch c.Request().Method {
	case http.MethodGet:
		return s.handleResolveOne(c)
	case http.MethodPost:
		return s.handleResolveBatch(c)
	default:
		return c.String(http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleResolveOne(c echo.Context) error {
	rawURL := strings.TrimSpace(c.QueryParam("url"))
	if rawURL == "" {
		return failJSON(c, http.StatusBadRequest, "Missing url parameter")
	}

	result := s.resolver.Resolve(c.Request().Context(), rawURL)
	c.Response().Header().Set(echo.HeaderCacheControl, resolveCacheControl)
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleResolveBatch(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxResolveBodyBytes+1))
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if len(payload) > maxResolveBodyBytes {
		return failJSON(c, http.StatusRequestEntityTooLarge, "Request body too large")
	}

	req, err := payloadschema.ValidateResolveRequest(payload)
	if errors.Is(err, payloadschema.ErrMalformedJSON) {
		return failJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "Expected { urls: [...] }")
	}

	results := s.resolver.ResolveBatch(c.Request().Context(), req.URLs)
	if results == nil {
		results = []resolve.Result{}
	}
	c.Response().Header().Set(echo.HeaderCacheControl, resolveCacheControl)
	return c.JSON(http.StatusOK, resolveBatchResponse{Results: results})
}

// handleRedirect sends the reader to the publisher page of an aggregator
// link. It never caches because the target depends on the aggregator.
func (s *Server) handleRedirect(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")

	target, err := resolve.ValidateHTTPURL(c.QueryParam("u"))
	if err != nil {
		return c.String(http.StatusBadRequest, "Bad Request")
	}

	final := s.resolver.FinalURL(c.Request().Context(), target.String())
	if _, err := resolve.ValidateHTTPURL(final); err != nil {
		s.logger.Warn().Str("url", target.String()).Str("final", final).Msg("redirect target rejected")
		final = target.String()
	}
	s.logger.Debug().Str("url", target.String()).Str("source", resolve.SourceOf(final)).Msg("redirect")
	return c.Redirect(http.StatusFound, final)
}
