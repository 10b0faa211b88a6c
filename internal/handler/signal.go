package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"copytrader/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetSignals godoc
// @Summary      List trading signals
// @Description  Returns recent signals, optionally filtered by pair, status, and type
// @Tags         signals
// @Produce      json
// @Param        pair    query  string  false  "Currency pair (e.g., EUR/USD)"
// @Param        status  query  string  false  "Signal status (active, closed, cancelled)"
// @Param        type    query  string  false  "Signal type (BUY, SELL)"
// @Param        limit   query  int     false  "Number of signals (default 50, max 200)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/signals [get]
func (h *Handler) GetSignals(c *gin.Context) {
	if h.copyService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "copy service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-signals")
	defer span.End()

	filter := domain.SignalFilter{
		Pair:   strings.ToUpper(strings.TrimSpace(c.Query("pair"))),
		Status: domain.SignalStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
	}
	if filter.Pair != "" {
		span.SetAttributes(attribute.String("pair", filter.Pair))
	}

	if rawType := strings.ToUpper(strings.TrimSpace(c.Query("type"))); rawType != "" {
		signalType := domain.SignalType(rawType)
		if !signalType.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type must be BUY or SELL"})
			return
		}
		filter.Type = signalType
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

	signals, err := h.copyService.ListSignals(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"signals": signals})
}

// GetSignal godoc
// @Summary      Get one signal
// @Tags         signals
// @Produce      json
// @Param        id  path  string  true  "Signal ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/signals/{id} [get]
func (h *Handler) GetSignal(c *gin.Context) {
	if h.copyService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "copy service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-signal")
	defer span.End()

	signal, err := h.copyService.GetSignal(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if signal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "signal not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"signal": signal})
}

// IngestSignals godoc
// @Summary      Ingest provider signals
// @Description  Validates and upserts a batch of signals; the whole batch is rejected on the first invalid entry
// @Tags         signals
// @Accept       json
// @Produce      json
// @Param        signals  body  []domain.Signal  true  "Signals to store"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/signals [post]
func (h *Handler) IngestSignals(c *gin.Context) {
	if h.copyService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "copy service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.ingest-signals")
	defer span.End()

	var signals []domain.Signal
	if err := c.ShouldBindJSON(&signals); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := h.copyService.IngestSignals(ctx, signals)
	if err != nil {
		if strings.Contains(err.Error(), "store signals") {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ingested": count})
}

type copySignalRequest struct {
	AccountID string               `json:"account_id" binding:"required"`
	Settings  *domain.CopySettings `json:"settings"`
}

// CopySignal godoc
// @Summary      Copy a signal into a brokerage account
// @Description  Sizes the position from the account's risk settings and submits the order
// @Tags         signals
// @Accept       json
// @Produce      json
// @Param        id       path  string             true  "Signal ID"
// @Param        request  body  copySignalRequest  true  "Account and optional risk overrides"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/signals/{id}/copy [post]
func (h *Handler) CopySignal(c *gin.Context) {
	if h.copyService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "copy service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.copy-signal")
	defer span.End()

	var req copySignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account_id is required"})
		return
	}

	signalID := strings.TrimSpace(c.Param("id"))
	span.SetAttributes(
		attribute.String("signal_id", signalID),
		attribute.String("account_id", req.AccountID),
	)

	trade, err := h.copyService.CopySignal(ctx, signalID, req.AccountID, req.Settings)
	if err != nil {
		c.JSON(copyErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	if h.tradeStream != nil {
		h.tradeStream.Broadcast(trade)
	}
	c.JSON(http.StatusCreated, gin.H{"trade": trade})
}

// copyErrorStatus maps engine validation failures to 422 and everything else
// to 500; unknown ids read as 404.
func copyErrorStatus(err error) int {
	switch {
	case strings.Contains(err.Error(), "not found"):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSignalNotActive),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInconsistentLevels),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrMissingCredentials):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
