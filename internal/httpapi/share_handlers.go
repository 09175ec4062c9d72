package httpapi

import (
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/blake2b"

	"github.com/gonzacha/qsd/internal/render"
)

const (
	shareCacheControl = "public, max-age=3600, s-maxage=3600"
	ogCacheControl    = "public, max-age=86400, s-maxage=86400, stale-while-revalidate=3600"
	thumbCacheControl = "public, max-age=86400"

	mimeSVG = "image/svg+xml; charset=utf-8"
	mimePNG = "image/png"
)

func (s *Server) handleShare(c echo.Context) error {
	page, err := s.renderer.Share(render.ShareParams{
		Title:       c.QueryParam("title"),
		Source:      c.QueryParam("source"),
		Category:    c.QueryParam("cat"),
		Description: c.QueryParam("desc"),
		URL:         c.QueryParam("url"),
		Origin:      s.origin(c),
	})
	if err != nil {
		return internalError(c, "Share page error", err)
	}
	return writeCached(c, echo.MIMETextHTMLCharsetUTF8, shareCacheControl, page)
}

func (s *Server) handleOG(c echo.Context) error {
	if strings.EqualFold(c.QueryParam("format"), "png") && len(s.opts.Logo) > 0 {
		return writeCached(c, mimePNG, ogCacheControl, s.opts.Logo)
	}

	card, err := s.renderer.OG(render.OGParams{
		Title:       c.QueryParam("title"),
		Source:      c.QueryParam("source"),
		Category:    c.QueryParam("cat"),
		Description: c.QueryParam("desc"),
		Host:        s.publicHost(c),
	})
	if err != nil {
		return internalError(c, "OG image error", err)
	}
	return writeCached(c, mimeSVG, ogCacheControl, card)
}

func (s *Server) handleThumb(c echo.Context) error {
	category := c.QueryParam("category")
	if category == "" {
		category = c.QueryParam("cat")
	}
	thumb, err := s.renderer.Thumb(render.ThumbParams{
		Edition:  c.QueryParam("edition"),
		Category: category,
		Date:     c.QueryParam("date"),
	})
	if err != nil {
		return internalError(c, "Thumbnail error", err)
	}
	return writeCached(c, mimeSVG, thumbCacheControl, thumb)
}

// publicHost is the bare host printed on social cards.
func (s *Server) publicHost(c echo.Context) string {
	if parsed, err := url.Parse(s.origin(c)); err == nil && parsed.Host != "" {
		return parsed.Hostname()
	}
	return c.Request().Host
}

// writeCached serves body with a strong ETag and answers a matching
// If-None-Match with 304.
func writeCached(c echo.Context, contentType, cacheControl string, body []byte) error {
	sum := blake2b.Sum256(body)
	tag := `"` + hex.EncodeToString(sum[:]) + `"`

	header := c.Response().Header()
	header.Set(echo.HeaderCacheControl, cacheControl)
	header.Set("ETag", tag)

	if etagMatches(c.Request().Header.Get("If-None-Match"), tag) {
		return c.NoContent(http.StatusNotModified)
	}
	return c.Blob(http.StatusOK, contentType, body)
}

func etagMatches(ifNoneMatch, tag string) bool {
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == tag {
			return true
		}
	}
	return false
}
