// api/handlers/analytics_handlers.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stallpoint/api/analytics"
	"stallpoint/api/store"
)

const rangeDateFormat = "2006-01-02"

// AnalyticsHandlers is the admin-facing query surface over the visit log.
type AnalyticsHandlers struct {
	Analytics *analytics.Service
	Snapshots *store.SnapshotStore
	logger    *zap.SugaredLogger
}

func NewAnalyticsHandlers(service *analytics.Service, snapshots *store.SnapshotStore, logger *zap.SugaredLogger) *AnalyticsHandlers {
	return &AnalyticsHandlers{Analytics: service, Snapshots: snapshots, logger: logger}
}

// GetSummary serves the dashboard report. The days parameter defaults to
// 30 when absent; a present but non-positive or non-integer value is a
// caller error, never silently corrected.
func (h *AnalyticsHandlers) GetSummary(c *gin.Context) {
	days := analytics.DefaultLookbackDays
	if daysParam := c.Query("days"); daysParam != "" {
		parsed, err := strconv.Atoi(daysParam)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'days' parameter. Must be a positive integer."})
			return
		}
		days = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	summary, err := h.Analytics.Summary(ctx, days)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidLookback) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'days' parameter. Must be a positive integer."})
			return
		}
		h.logger.Errorw("failed to compute summary", "days", days, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve analytics summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetPopularPages serves the all-time top pages, independent of any window.
func (h *AnalyticsHandlers) GetPopularPages(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	pages, err := h.Analytics.PopularPages(ctx)
	if err != nil {
		h.logger.Errorw("failed to rank pages", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve popular pages"})
		return
	}

	c.JSON(http.StatusOK, pages)
}

// GetVisitsByRange serves the daily visit series for an explicit date
// range, both ends inclusive. An inverted range yields an empty series.
func (h *AnalyticsHandlers) GetVisitsByRange(c *gin.Context) {
	startParam := c.Query("start")
	endParam := c.Query("end")
	if startParam == "" || endParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end query parameters are required (YYYY-MM-DD)"})
		return
	}

	startDate, err := time.ParseInLocation(rangeDateFormat, startParam, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'start' date format. Use YYYY-MM-DD."})
		return
	}
	endDate, err := time.ParseInLocation(rangeDateFormat, endParam, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'end' date format. Use YYYY-MM-DD."})
		return
	}

	// The end date is inclusive, so stretch it to the last instant of
	// that day.
	end := endDate.Add(24*time.Hour - time.Nanosecond)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	days, err := h.Analytics.VisitsByRange(ctx, startDate, end)
	if err != nil {
		h.logger.Errorw("failed to compute visits by range", "start", startParam, "end", endParam, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve visit statistics"})
		return
	}

	c.JSON(http.StatusOK, days)
}

// GetVisitsCount serves the all-time visit count.
func (h *AnalyticsHandlers) GetVisitsCount(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	count, err := h.Analytics.TotalCount(ctx)
	if err != nil {
		h.logger.Errorw("failed to count visits", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve visit count"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"totalVisits": count})
}

// GetVisitsCountByPage serves the all-time visit count for one path.
func (h *AnalyticsHandlers) GetVisitsCountByPage(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path query parameter is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	count, err := h.Analytics.CountByPage(ctx, path)
	if err != nil {
		h.logger.Errorw("failed to count visits by page", "path", path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve visit count"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": path, "visits": count})
}

// GetSnapshots lists the recent daily rollups written by the snapshot job.
func (h *AnalyticsHandlers) GetSnapshots(c *gin.Context) {
	limit := 30
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	snapshots, err := h.Snapshots.ListRecent(ctx, limit)
	if err != nil {
		h.logger.Errorw("failed to list snapshots", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve snapshots"})
		return
	}

	c.JSON(http.StatusOK, snapshots)
}
