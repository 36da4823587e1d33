package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pageperf/api/calculator"
	"pageperf/api/models"
	"pageperf/api/service"
	"pageperf/api/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportGenerator interface {
	Generate(ctx context.Context, params calculator.Params) (*models.Report, error)
	Workbook(ctx context.Context, params calculator.Params, w io.Writer) error
	Publish(ctx context.Context, params calculator.Params) (string, error)
	RecentRuns(ctx context.Context, limit int) ([]models.ReportRun, error)
}

type ReportHandlers struct {
	Reports    ReportGenerator
	WindowDays int
}

func NewReportHandlers(reports ReportGenerator, windowDays int) *ReportHandlers {
	return &ReportHandlers{Reports: reports, WindowDays: windowDays}
}

// params reads previous, current and window from the query string.
func (h *ReportHandlers) params(c *gin.Context) (calculator.Params, bool) {
	p := calculator.Params{
		PreviousStart: c.Query("previous"),
		CurrentStart:  c.Query("current"),
		WindowDays:    h.WindowDays,
	}
	if p.PreviousStart == "" || p.CurrentStart == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "previous and current query parameters are required (yyyymmdd)"})
		return p, false
	}
	if w := c.Query("window"); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "window must be a non-negative number of days"})
			return p, false
		}
		p.WindowDays = n
	}
	return p, true
}

func (h *ReportHandlers) fail(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(msg, "error", err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *ReportHandlers) Performance(c *gin.Context) {
	p, ok := h.params(c)
	if !ok {
		return
	}
	report, err := h.Reports.Generate(c.Request.Context(), p)
	if err != nil {
		h.fail(c, "Failed to generate report", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandlers) Workbook(c *gin.Context) {
	p, ok := h.params(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.Reports.Workbook(c.Request.Context(), p, &buf); err != nil {
		h.fail(c, "Failed to render workbook", err)
		return
	}
	name := fmt.Sprintf("page_performance_%s-%s.xlsx", p.PreviousStart, p.CurrentStart)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ReportHandlers) Publish(c *gin.Context) {
	p, ok := h.params(c)
	if !ok {
		return
	}
	key, err := h.Reports.Publish(c.Request.Context(), p)
	if err != nil {
		if errors.Is(err, service.ErrPublishDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		h.fail(c, "Failed to publish workbook", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"key": key})
}

func (h *ReportHandlers) Runs(c *gin.Context) {
	limit, ok := utils.PositiveInt(c.Query("limit"), 20)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	runs, err := h.Reports.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, "Failed to list report runs", err)
		return
	}
	if runs == nil {
		runs = []models.ReportRun{}
	}
	c.JSON(http.StatusOK, runs)
}
