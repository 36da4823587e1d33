package service

import (
	"bytes"
	"context"
	"io"
	"time"

	"pageperf/api/calculator"
	"pageperf/api/models"
	"pageperf/api/store"
)

type fakeEvents struct {
	events []models.RawEvent
	ranges [][2]time.Time
	err    error
}

func (f *fakeEvents) LoadEvents(_ context.Context, from, to time.Time) ([]models.RawEvent, error) {
	f.ranges = append(f.ranges, [2]time.Time{from, to})
	if f.err != nil {
		return nil, f.err
	}
	var out []models.RawEvent
	for _, e := range f.events {
		if !e.EventDate.Before(from) && !e.EventDate.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeActive struct{ urls []string }

func (f *fakeActive) ListActiveURLs(context.Context) ([]string, error) { return f.urls, nil }

type fakeCache map[string]*models.Report

func (f fakeCache) GetReport(_ context.Context, key string) (*models.Report, error) {
	if r, ok := f[key]; ok {
		return r, nil
	}
	return nil, store.ErrCacheMiss
}

func (f fakeCache) PutReport(_ context.Context, key string, r *models.Report) error {
	f[key] = r
	return nil
}

func (f fakeCache) Invalidate(context.Context) error {
	for k := range f {
		delete(f, k)
	}
	return nil
}

type fakeRuns struct{ runs []models.ReportRun }

func (f *fakeRuns) InsertRun(_ context.Context, run models.ReportRun) error {
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeRuns) ListRuns(_ context.Context, limit int) ([]models.ReportRun, error) {
	if limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

type fakeUploads struct {
	key  string
	body []byte
	size int64
}

func (f *fakeUploads) PutWorkbook(_ context.Context, key string, r io.Reader, size int64) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	f.key, f.body, f.size = key, buf.Bytes(), size
	return nil
}

func event(date, path string, pltMs, srtMs int64) models.RawEvent {
	d, err := calculator.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return models.RawEvent{
		EventDate:            d,
		EventTimestamp:       d.Add(time.Hour),
		PageURL:              calculator.DefaultBaseDomain + path,
		PageLoadTimeMs:       pltMs,
		ServerResponseTimeMs: srtMs,
	}
}
