package handler

import (
	"errors"
	"net/http"
	"strings"

	"copytrader/internal/cache"

	"github.com/gin-gonic/gin"
)

// GetNews godoc
// @Summary      Forex news headlines
// @Description  Cached headlines; stale entries are served when the upstream feed is down
// @Tags         news
// @Produce      json
// @Param        refresh   query  bool    false  "Bypass the cache"
// @Param        breaking  query  bool    false  "High-impact articles from the last two hours only"
// @Param        currency  query  string  false  "Filter by currency code (e.g., EUR)"
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/news [get]
func (h *Handler) GetNews(c *gin.Context) {
	if h.newsService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "news service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-news")
	defer span.End()

	var (
		articles any
		err      error
	)
	switch {
	case strings.EqualFold(c.Query("breaking"), "true"):
		articles, err = h.newsService.BreakingNews(ctx)
	case strings.TrimSpace(c.Query("currency")) != "":
		articles, err = h.newsService.NewsForCurrency(ctx, c.Query("currency"))
	default:
		articles, err = h.newsService.GetNews(ctx, strings.EqualFold(c.Query("refresh"), "true"))
	}
	if err != nil {
		if errors.Is(err, cache.ErrNoOfflineData) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

// GetBreakingNews godoc
// @Summary      High-impact headlines from the last two hours
// @Tags         news
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/news/breaking [get]
func (h *Handler) GetBreakingNews(c *gin.Context) {
	if h.newsService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "news service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-breaking-news")
	defer span.End()

	articles, err := h.newsService.BreakingNews(ctx)
	if err != nil {
		if errors.Is(err, cache.ErrNoOfflineData) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"articles": articles})
}
