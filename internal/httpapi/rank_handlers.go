package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gonzacha/qsd/internal/globaltime"
	"github.com/gonzacha/qsd/internal/pipeline"
)

const (
	cdnCacheControl = "s-maxage=60, stale-while-revalidate=300, stale-if-error=86400"
	mimeNDJSON      = "application/x-ndjson"
)

type rankResponse struct {
	GeneratedAt string                `json:"generatedAt"`
	Items       []pipeline.RankedItem `json:"items"`
}

func (s *Server) handleRank(c echo.Context) error {
	category := strings.TrimSpace(c.QueryParam("cat"))
	if category == "" {
		category = strings.TrimSpace(c.QueryParam("category"))
	}
	query := pipeline.RankQuery{
		Category: category,
		Limit:    parseRankLimit(c.QueryParam("limit")),
		MinScore: parseMinScore(c.QueryParam("min")),
	}

	result, err := s.pipeline.Rank(c.Request().Context(), query)
	if err != nil {
		s.logger.Error().Err(err).Str("category", category).Msg("rank pipeline failed")
		return internalError(c, "Rank pipeline error", err)
	}

	items := result.Items
	if items == nil {
		items = []pipeline.RankedItem{}
	}

	header := c.Response().Header()
	header.Set(echo.HeaderCacheControl, "no-store")
	header.Set("CDN-Cache-Control", cdnCacheControl)

	if strings.EqualFold(strings.TrimSpace(c.QueryParam("format")), "jsonl") {
		lines := make([][]byte, 0, len(items))
		for _, item := range items {
			line, err := json.Marshal(item)
			if err != nil {
				return internalError(c, "Rank pipeline error", err)
			}
			lines = append(lines, line)
		}
		return c.Blob(http.StatusOK, mimeNDJSON, bytes.Join(lines, []byte("\n")))
	}

	return c.JSON(http.StatusOK, rankResponse{
		GeneratedAt: globaltime.ISO(result.GeneratedAt),
		Items:       items,
	})
}

// parseRankLimit falls back to the default for anything that is not an
// integer and never goes below one.
func parseRankLimit(raw string) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return pipeline.DefaultRankLimit
	}
	limit, err := strconv.Atoi(trimmed)
	if err != nil {
		return pipeline.DefaultRankLimit
	}
	return max(limit, 1)
}

func parseMinScore(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return value
}
