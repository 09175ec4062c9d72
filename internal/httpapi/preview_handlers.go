package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gonzacha/qsd/internal/reader"
	"github.com/gonzacha/qsd/internal/resolve"
)

func (s *Server) handlePreview(c echo.Context) error {
	target, err := resolve.ValidateHTTPURL(c.QueryParam("url"))
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "Missing or invalid url parameter")
	}

	maxChars, err := parsePositiveInt(c.QueryParam("max_chars"), reader.DefaultMaxChars, reader.MinMaxChars, reader.MaxMaxChars)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid max_chars", Message: "max_chars " + err.Error()})
	}

	ctx := c.Request().Context()
	original := target.String()
	resolved := s.resolver.FinalURL(ctx, original)
	if _, err := resolve.ValidateHTTPURL(resolved); err != nil {
		resolved = original
	}

	preview := reader.BuildPreview(ctx, original, resolved, strings.TrimSpace(c.QueryParam("title")), maxChars, s.opts.Reader)
	if preview.PreviewError != nil {
		s.logger.Debug().Str("url", resolved).Str("err", *preview.PreviewError).Msg("preview fell back to title")
	}
	return c.JSON(http.StatusOK, preview)
}
