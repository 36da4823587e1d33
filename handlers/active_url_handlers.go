package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pageperf/api/ingest"
	"pageperf/api/models"
)

type ActiveURLRepository interface {
	ListActiveURLs(ctx context.Context) ([]string, error)
	ReplaceActiveURLs(ctx context.Context, urls []string) (int, error)
}

type ActiveURLHandlers struct {
	URLs    ActiveURLRepository
	Reports ReportInvalidator
}

func NewActiveURLHandlers(urls ActiveURLRepository, reports ReportInvalidator) *ActiveURLHandlers {
	return &ActiveURLHandlers{URLs: urls, Reports: reports}
}

func (h *ActiveURLHandlers) List(c *gin.Context) {
	urls, err := h.URLs.ListActiveURLs(c.Request.Context())
	if err != nil {
		slog.Error("failed to list active urls", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list active URLs"})
		return
	}
	if urls == nil {
		urls = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(urls), "urls": urls})
}

// Replace swaps the allow-list for the JSON body's urls.
func (h *ActiveURLHandlers) Replace(c *gin.Context) {
	var req models.ActiveURLsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	h.replace(c, req.URLs)
}

// Upload swaps the allow-list for the URLs column of an uploaded CSV file.
func (h *ActiveURLHandlers) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file form field is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload"})
		return
	}
	defer f.Close()

	urls, err := ingest.ReadActiveURLs(f)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	h.replace(c, urls)
}

func (h *ActiveURLHandlers) replace(c *gin.Context, urls []string) {
	n, err := h.URLs.ReplaceActiveURLs(c.Request.Context(), urls)
	if err != nil {
		slog.Error("failed to replace active urls", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store active URLs"})
		return
	}
	invalidate(c.Request.Context(), h.Reports)
	c.JSON(http.StatusOK, gin.H{"count": n})
}
