package handler

import (
	"net/http"

	"copytrader/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer      trace.Tracer
	copyService *service.CopyService
	newsService *service.NewsService
	tradeStream *TradeStream
}

func New(
	tracer trace.Tracer,
	copyService *service.CopyService,
	newsService *service.NewsService,
	tradeStream *TradeStream,
) *Handler {
	return &Handler{
		tracer:      tracer,
		copyService: copyService,
		newsService: newsService,
		tradeStream: tradeStream,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/signals", h.GetSignals)
	r.POST("/api/signals", h.IngestSignals)
	r.GET("/api/signals/:id", h.GetSignal)
	r.POST("/api/signals/:id/copy", h.CopySignal)
	r.GET("/api/trades", h.GetTrades)
	r.POST("/api/trades/:id/close", h.CloseTrade)
	r.GET("/api/trades/:id/projection", h.GetTradeProjection)
	r.GET("/api/news", h.GetNews)
	r.GET("/api/news/breaking", h.GetBreakingNews)
	if h.tradeStream != nil {
		r.GET("/ws/trades", h.tradeStream.Serve)
	}
}

// Health godoc
// @Summary      Liveness probe
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
