package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/mikey/antispam-admin/internal/core"
	"go.uber.org/zap"
)

const (
	classifyTextMinLen = 5
	classifyTextMaxLen = 2000
)

type handlers struct {
	analytics      *core.AnalyticsService
	senders        *core.SenderService
	classification *core.ClassificationService
	logger         *zap.Logger
}

func newHandlers(
	analytics *core.AnalyticsService,
	senders *core.SenderService,
	classification *core.ClassificationService,
	logger *zap.Logger,
) *handlers {
	return &handlers{
		analytics:      analytics,
		senders:        senders,
		classification: classification,
		logger:         logger,
	}
}

// Health reports liveness (GET /health)
func (h *handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListSms returns messages with stats and categories (GET /api/sms)
func (h *handlers) ListSms(c *gin.Context) {
	start, end, ok := h.parseWindow(c)
	if !ok {
		return
	}
	response, err := h.analytics.ListMessages(c.Request.Context(), start, end)
	if err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// ListCalls returns calls with stats and categories (GET /api/calls)
func (h *handlers) ListCalls(c *gin.Context) {
	start, end, ok := h.parseWindow(c)
	if !ok {
		return
	}
	response, err := h.analytics.ListCalls(c.Request.Context(), start, end)
	if err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// DashboardSummary returns the combined cross-entity report (GET /api/summary)
func (h *handlers) DashboardSummary(c *gin.Context) {
	start, end, ok := h.parseWindow(c)
	if !ok {
		return
	}
	summary, err := h.analytics.DashboardSummary(c.Request.Context(), start, end)
	if err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListSenders returns all known senders (GET /api/senders)
func (h *handlers) ListSenders(c *gin.Context) {
	senders, err := h.senders.ListSenders(c.Request.Context())
	if err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, senders)
}

// BlockSender marks a sender as blocked (POST /api/senders/:id/block)
func (h *handlers) BlockSender(c *gin.Context) {
	h.setSenderBlocked(c, true)
}

// UnblockSender clears a sender's blocked flag (POST /api/senders/:id/unblock)
func (h *handlers) UnblockSender(c *gin.Context) {
	h.setSenderBlocked(c, false)
}

func (h *handlers) setSenderBlocked(c *gin.Context, blocked bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sender id"})
		return
	}

	var sender *core.Sender
	if blocked {
		sender, err = h.senders.BlockSender(c.Request.Context(), id)
	} else {
		sender, err = h.senders.UnblockSender(c.Request.Context(), id)
	}
	if err != nil {
		if errors.Is(err, core.ErrSenderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sender not found"})
			return
		}
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, sender)
}

type classifyRequest struct {
	Text string `json:"text" binding:"required"`
}

// ClassifyText proxies a text to the LLM classifier (POST /api/classification)
func (h *handlers) ClassifyText(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Field 'text' is required"})
		return
	}
	if n := utf8.RuneCountInString(req.Text); n < classifyTextMinLen || n > classifyTextMaxLen {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Field 'text' must be between 5 and 2000 characters",
		})
		return
	}

	result, err := h.classification.ClassifyText(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "LLM classification unavailable: ensure provider credentials are valid.",
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// parseWindow reads optional start_date/end_date query parameters. Accepted
// formats are RFC3339 and plain dates (2006-01-02). On a malformed value it
// writes a 400 response and reports ok=false.
func (h *handlers) parseWindow(c *gin.Context) (start, end *time.Time, ok bool) {
	parse := func(name string) (*time.Time, bool) {
		raw := c.Query(name)
		if raw == "" {
			return nil, true
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if ts, err := time.Parse(layout, raw); err == nil {
				return &ts, true
			}
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name + ": expected an ISO timestamp or date",
		})
		return nil, false
	}

	if start, ok = parse("start_date"); !ok {
		return nil, nil, false
	}
	if end, ok = parse("end_date"); !ok {
		return nil, nil, false
	}
	return start, end, true
}

func (h *handlers) storageError(c *gin.Context, err error) {
	h.logger.Error("Storage operation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
