package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saajpatel/TTC-Subway-Delay-Predictor/services"
)

type HistoryHandler struct {
	history *services.HistoryService
	cache   *services.CacheService
}

func NewHistoryHandler(history *services.HistoryService, cache *services.CacheService) *HistoryHandler {
	return &HistoryHandler{history: history, cache: cache}
}

// GetPredictions handles GET /predictions: served predictions newest
// first, cursor-paginated on timestamp.
func (h *HistoryHandler) GetPredictions(c *gin.Context) {
	if !h.history.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "prediction history is not enabled"})
		return
	}

	p := ParsePagination(c)
	station := c.Query("station")

	beforeStr := ""
	if p.Before != nil {
		beforeStr = p.Before.Format(time.RFC3339Nano)
	}
	cacheKey := fmt.Sprintf("history:%s:%d:%s", station, p.Limit, beforeStr)

	var cached CursorResponse
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && cached.Data != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	rows, err := h.history.Recent(c.Request.Context(), p.Limit+1, p.Before, station)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	hasMore := len(rows) > p.Limit
	if hasMore {
		rows = rows[:p.Limit]
	}

	var nextCursor string
	if hasMore && len(rows) > 0 {
		nextCursor = rows[len(rows)-1].TS.Format(time.RFC3339Nano)
	}

	resp := CursorResponse{Data: rows, NextCursor: nextCursor, HasMore: hasMore}
	go h.cache.Set(context.Background(), cacheKey, resp, 30*time.Second)

	c.JSON(http.StatusOK, resp)
}
