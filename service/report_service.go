// Package service assembles performance reports from the configured sources.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pageperf/api/calculator"
	"pageperf/api/config"
	"pageperf/api/models"
	"pageperf/api/render"
	"pageperf/api/store"
)

// ErrPublishDisabled is returned by Publish when no bucket is configured.
var ErrPublishDisabled = errors.New("workbook publishing is not configured")

type ReportCache interface {
	GetReport(ctx context.Context, key string) (*models.Report, error)
	PutReport(ctx context.Context, key string, r *models.Report) error
	Invalidate(ctx context.Context) error
}

type RunRecorder interface {
	InsertRun(ctx context.Context, run models.ReportRun) error
	ListRuns(ctx context.Context, limit int) ([]models.ReportRun, error)
}

type WorkbookUploader interface {
	PutWorkbook(ctx context.Context, key string, r io.Reader, size int64) error
}

// ReportService runs the comparison pipeline. Cache, Runs and Uploads are optional.
type ReportService struct {
	Events  EventSource
	Active  ActiveURLSource
	Cache   ReportCache
	Runs    RunRecorder
	Uploads WorkbookUploader
	Config  config.Report

	now func() time.Time
}

func NewReportService(events EventSource, active ActiveURLSource, cfg config.Report) *ReportService {
	return &ReportService{Events: events, Active: active, Config: cfg, now: time.Now}
}

func (s *ReportService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *ReportService) options() calculator.Options {
	return calculator.Options{BaseDomain: s.Config.BaseDomain}
}

// Extract loads both periods from the sources and cleans and aggregates them.
func (s *ReportService) Extract(ctx context.Context, params calculator.Params) (*calculator.Extracts, error) {
	prevWin, curWin, err := params.Windows()
	if err != nil {
		return nil, err
	}

	source := s.Events
	if snap, ok := source.(Snapshotter); ok {
		if source, err = snap.Snapshot(ctx); err != nil {
			return nil, fmt.Errorf("failed to load events: %w", err)
		}
	}

	var raw []models.RawEvent
	for _, r := range loadRanges(prevWin, curWin) {
		events, err := source.LoadEvents(ctx, r[0], r[1])
		if err != nil {
			return nil, fmt.Errorf("failed to load events: %w", err)
		}
		raw = append(raw, events...)
	}

	urls, err := s.Active.ListActiveURLs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active urls: %w", err)
	}
	active := calculator.NewActiveURLSet(urls)
	slog.Info("report inputs loaded", "events", len(raw), "active_urls", active.Len())

	return calculator.Extract(raw, active, params, s.options())
}

// Generate returns the report for params, from the cache when possible.
func (s *ReportService) Generate(ctx context.Context, params calculator.Params) (*models.Report, error) {
	prevWin, curWin, err := params.Windows()
	if err != nil {
		return nil, err
	}
	key := store.ReportKey(dateKey(prevWin.Start), dateKey(curWin.Start), params.WindowDays)

	if s.Cache != nil {
		r, err := s.Cache.GetReport(ctx, key)
		switch {
		case err == nil:
			slog.Info("report served from cache", "key", key)
			return r, nil
		case !errors.Is(err, store.ErrCacheMiss):
			slog.Warn("report cache unavailable", "key", key, "error", err)
		}
	}

	start := s.clock()
	x, err := s.Extract(ctx, params)
	if err != nil {
		return nil, err
	}
	report := calculator.Build(x, s.topChanges())
	for _, w := range report.Warnings {
		slog.Warn("report warning", "warning", w)
	}
	slog.Info("report generated",
		"previous", dateKey(prevWin.Start), "current", dateKey(curWin.Start),
		"urls", len(report.GroupedByPageURL), "duration", s.clock().Sub(start))

	if s.Cache != nil {
		if err := s.Cache.PutReport(ctx, key, report); err != nil {
			slog.Warn("failed to cache report", "key", key, "error", err)
		}
	}
	if s.Runs != nil {
		run := models.ReportRun{
			ID:             uuid.New().String(),
			PreviousStart:  prevWin.Start,
			CurrentStart:   curWin.Start,
			WindowDays:     params.WindowDays,
			PreviousEvents: report.Previous.Events,
			CurrentEvents:  report.Current.Events,
			URLCount:       report.Current.URLs,
			CreatedAt:      report.GeneratedAt,
		}
		if err := s.Runs.InsertRun(ctx, run); err != nil {
			slog.Warn("failed to record report run", "id", run.ID, "error", err)
		}
	}
	return report, nil
}

// InvalidateReports drops cached reports after their inputs changed.
func (s *ReportService) InvalidateReports(ctx context.Context) error {
	if s.Cache == nil {
		return nil
	}
	return s.Cache.Invalidate(ctx)
}

func (s *ReportService) topChanges() int {
	if s.Config.TopChangeCount > 0 {
		return s.Config.TopChangeCount
	}
	return calculator.DefaultTopChangeCount
}

// Workbook writes the report for params to w as an .xlsx workbook.
func (s *ReportService) Workbook(ctx context.Context, params calculator.Params, w io.Writer) error {
	report, err := s.Generate(ctx, params)
	if err != nil {
		return err
	}
	return render.WriteReport(w, report)
}

// Publish renders the workbook and uploads it, returning the object key.
func (s *ReportService) Publish(ctx context.Context, params calculator.Params) (string, error) {
	if s.Uploads == nil {
		return "", ErrPublishDisabled
	}
	var buf bytes.Buffer
	if err := s.Workbook(ctx, params, &buf); err != nil {
		return "", err
	}
	key := UploadKey(params.PreviousStart, params.CurrentStart, s.clock())
	if err := s.Uploads.PutWorkbook(ctx, key, &buf, int64(buf.Len())); err != nil {
		return "", err
	}
	return key, nil
}

func (s *ReportService) RecentRuns(ctx context.Context, limit int) ([]models.ReportRun, error) {
	if s.Runs == nil {
		return []models.ReportRun{}, nil
	}
	return s.Runs.ListRuns(ctx, limit)
}

// UploadKey names a published workbook after its start dates and the upload time.
func UploadKey(previous, current string, at time.Time) string {
	return fmt.Sprintf("results_%s-%s-%s.xlsx", previous, current, at.Format("150405"))
}

func dateKey(t time.Time) string { return t.Format("20060102") }

// loadRanges returns the date ranges to fetch so that no event is loaded twice
// when the windows overlap.
func loadRanges(a, b calculator.Window) [][2]time.Time {
	if b.Start.Before(a.Start) {
		a, b = b, a
	}
	aEnd, bEnd := a.End(), b.End()
	if !b.Start.After(aEnd.AddDate(0, 0, 1)) {
		end := aEnd
		if bEnd.After(end) {
			end = bEnd
		}
		return [][2]time.Time{{a.Start, end}}
	}
	return [][2]time.Time{{a.Start, aEnd}, {b.Start, bEnd}}
}
