package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/autovolt/lakehouse/internal/services/notification"
)

// History lists recent runs
type History interface {
	Recent(ctx context.Context, limit int) ([]notification.RunEvent, error)
}

// HistoryHandler serves the run history
type HistoryHandler struct {
	history History
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(history History) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List returns the most recent runs, newest first
func (h *HistoryHandler) List(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > notification.HistorySize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	runs, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read run history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}
