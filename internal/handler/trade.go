package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"copytrader/internal/domain"

	"github.com/gin-gonic/gin"
)

// GetTrades godoc
// @Summary      List copied trades
// @Tags         trades
// @Produce      json
// @Param        account_id  query  string  false  "Trading account ID"
// @Param        status      query  string  false  "Trade status (pending, open, closed)"
// @Param        limit       query  int     false  "Number of trades (default 50, max 200)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/trades [get]
func (h *Handler) GetTrades(c *gin.Context) {
	if h.copyService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "copy service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-trades")
	defer span.End()

	filter := domain.TradeFilter{
		AccountID: strings.TrimSpace(c.Query("account_id")),
		Status:    domain.TradeStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
	}

	limit := 50
	if rawLimit := strings.TrimSpace(c.Query("limit")); rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n <= 0 || n > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		limit = n
	}
	filter.Limit = limit

	trades, err := h.copyService.ListTrades(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

type closeTradeRequest struct {
	ClosePrice float64 `json:"close_price" binding:"required"`
	Currency   string  `json:"currency"`
}

// CloseTrade godoc
// @Summary      Close an open trade
// @Description  Settles the trade at the given market price and records the realized profit and pips
// @Tags         trades
// @Accept       json
// @Produce      json
// @Param        id       path  string             true  "Trade ID"
// @Param        request  body  closeTradeRequest  true  "Close price and optional account currency"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/trades/{id}/close [post]
func (h *Handler) CloseTrade(c *gin.Context) {
	if h.copyService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "copy service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.close-trade")
	defer span.End()

	var req closeTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trade, err := h.copyService.CloseTrade(ctx, strings.TrimSpace(c.Param("id")), req.ClosePrice, strings.ToUpper(strings.TrimSpace(req.Currency)))
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "not found"):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case strings.Contains(err.Error(), "is not open") || errors.Is(err, domain.ErrInvalidPrice):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

// GetTradeProjection godoc
// @Summary      Potential profit and loss for a trade
// @Description  Projects the outcome of the trade at its recorded stop-loss and take-profit
// @Tags         trades
// @Produce      json
// @Param        id        path   string  true   "Trade ID"
// @Param        currency  query  string  false  "Account currency (default USD)"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/trades/{id}/projection [get]
func (h *Handler) GetTradeProjection(c *gin.Context) {
	if h.copyService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "copy service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-trade-projection")
	defer span.End()

	currency := strings.ToUpper(strings.TrimSpace(c.Query("currency")))
	if currency == "" {
		currency = "USD"
	}

	projection, err := h.copyService.ProjectProfit(ctx, strings.TrimSpace(c.Param("id")), currency)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projection": projection})
}
