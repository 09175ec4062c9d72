package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gonzacha/qsd/internal/catalog"
	"github.com/gonzacha/qsd/internal/globaltime"
	"github.com/gonzacha/qsd/internal/pipeline"
	"github.com/gonzacha/qsd/internal/rss"
)

type feedsResponse struct {
	Category   string                  `json:"category"`
	Label      string                  `json:"label"`
	Items      []rss.Item              `json:"items"`
	Trending   []pipeline.TrendingWord `json:"trending"`
	Total      int                     `json:"total"`
	Timestamp  string                  `json:"timestamp"`
	Categories []pipeline.CategoryRef  `json:"categories"`
}

func (s *Server) handleFeeds(c echo.Context) error {
	key := strings.TrimSpace(c.QueryParam("cat"))
	if key == "" {
		key = pipeline.DefaultListingCategory
	}

	listing, err := s.pipeline.Feed(c.Request().Context(), key)
	if errors.Is(err, catalog.ErrUnknownCategory) {
		refs := s.pipeline.CategoryRefs()
		keys := make([]string, 0, len(refs))
		for _, ref := range refs {
			keys = append(keys, ref.Key)
		}
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Categoría inválida", Categories: keys})
	}
	if err != nil {
		s.logger.Error().Err(err).Str("category", key).Msg("feed listing failed")
		return internalError(c, "Error al obtener noticias", err)
	}

	resp := feedsResponse{
		Category:   listing.Category,
		Label:      listing.Label,
		Items:      listing.Items,
		Trending:   listing.Trending,
		Total:      listing.Total,
		Timestamp:  globaltime.ISO(listing.Timestamp),
		Categories: listing.Categories,
	}
	if resp.Items == nil {
		resp.Items = []rss.Item{}
	}
	if resp.Trending == nil {
		resp.Trending = []pipeline.TrendingWord{}
	}
	if resp.Categories == nil {
		resp.Categories = []pipeline.CategoryRef{}
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.JSON(http.StatusOK, resp)
}
