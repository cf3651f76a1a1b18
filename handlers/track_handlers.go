// api/handlers/track_handlers.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stallpoint/api/analytics"
	"stallpoint/api/models"
)

// TrackHandlers is the ingestion surface: it records page-view events into
// the append-only visit log.
type TrackHandlers struct {
	Analytics *analytics.Service
	logger    *zap.SugaredLogger
}

func NewTrackHandlers(service *analytics.Service, logger *zap.SugaredLogger) *TrackHandlers {
	return &TrackHandlers{Analytics: service, logger: logger}
}

func (h *TrackHandlers) TrackVisit(c *gin.Context) {
	var req models.TrackVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	event, err := h.Analytics.RecordVisit(ctx, req.Path, req.SessionDuration, req.DeviceType)
	if err != nil {
		if errors.Is(err, analytics.ErrEmptyPath) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
			return
		}
		h.logger.Errorw("failed to record visit", "path", req.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record visit"})
		return
	}

	c.JSON(http.StatusCreated, event)
}
