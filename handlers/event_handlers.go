package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pageperf/api/models"
)

type EventWriter interface {
	InsertEvents(ctx context.Context, events []models.RawEvent) error
}

type EventHandlers struct {
	Events  EventWriter
	Reports ReportInvalidator
}

func NewEventHandlers(events EventWriter, reports ReportInvalidator) *EventHandlers {
	return &EventHandlers{Events: events, Reports: reports}
}

// TrackEvents records a batch of performance_timing events.
func (h *EventHandlers) TrackEvents(c *gin.Context) {
	var incoming []models.RawEvent
	if err := c.ShouldBindJSON(&incoming); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if len(incoming) == 0 {
		c.Status(http.StatusOK)
		return
	}

	events := make([]models.RawEvent, 0, len(incoming))
	for i, e := range incoming {
		if e.PageURL == "" || e.EventDate.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "pageUrl and eventDate are required", "index": i})
			return
		}
		if e.PageLoadTimeMs < 0 || e.ServerResponseTimeMs < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "timings must not be negative", "index": i})
			return
		}
		e.EventID = uuid.New().String()
		if e.EventTimestamp.IsZero() {
			e.EventTimestamp = e.EventDate
		}
		events = append(events, e)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.Events.InsertEvents(ctx, events); err != nil {
		slog.Error("failed to insert performance events", "count", len(events), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record events"})
		return
	}

	invalidate(c.Request.Context(), h.Reports)
	c.JSON(http.StatusAccepted, gin.H{"accepted": len(events)})
}
