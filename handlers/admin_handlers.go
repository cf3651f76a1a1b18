// api/handlers/admin_handlers.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stallpoint/api/store"
)

type AdminHandlers struct {
	Logs   *store.AdminLogStore
	logger *zap.SugaredLogger
}

func NewAdminHandlers(logs *store.AdminLogStore, logger *zap.SugaredLogger) *AdminHandlers {
	return &AdminHandlers{Logs: logs, logger: logger}
}

// ListLogs serves one page of the audit trail, newest first.
func (h *AdminHandlers) ListLogs(c *gin.Context) {
	page := 1
	if pageParam := c.Query("page"); pageParam != "" {
		parsed, err := strconv.Atoi(pageParam)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'page' parameter. Must be a positive integer."})
			return
		}
		page = parsed
	}

	limit := 0
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
			return
		}
		limit = parsed
	}

	logsPage, err := h.Logs.ListPage(c.Request.Context(), page, limit)
	if err != nil {
		h.logger.Errorw("failed to list admin logs", "page", page, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list admin logs"})
		return
	}

	c.JSON(http.StatusOK, logsPage)
}
