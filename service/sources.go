package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"pageperf/api/ingest"
	"pageperf/api/models"
)

// Bucket keys of the exported datasets.
const (
	EventsObjectKey     = "page_performance_results.csv"
	ActiveURLsObjectKey = "eclkc_urls_200_status_code.csv"
)

// EventSource yields raw events whose event date falls within [from, to].
type EventSource interface {
	LoadEvents(ctx context.Context, from, to time.Time) ([]models.RawEvent, error)
}

type ActiveURLSource interface {
	ListActiveURLs(ctx context.Context) ([]string, error)
}

// Opener is satisfied by store.ObjectStore.
type Opener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Snapshotter is implemented by sources that can read their whole input once and
// serve every range of a single report from that copy.
type Snapshotter interface {
	Snapshot(ctx context.Context) (EventSource, error)
}

// eventSnapshot is an in-memory copy of one read of an export.
type eventSnapshot []models.RawEvent

func (s eventSnapshot) LoadEvents(_ context.Context, from, to time.Time) ([]models.RawEvent, error) {
	var out []models.RawEvent
	for _, e := range s {
		if d := calendarDay(e.EventDate); !d.Before(from) && !d.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

// csvEvents parses a CSV export on every read so that a refreshed export is picked up.
type csvEvents struct {
	open func(ctx context.Context) (io.ReadCloser, error)
	name string
}

func (s *csvEvents) Snapshot(ctx context.Context) (EventSource, error) {
	rc, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	events, err := ingest.ReadRawEvents(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	return eventSnapshot(events), nil
}

func (s *csvEvents) LoadEvents(ctx context.Context, from, to time.Time) ([]models.RawEvent, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.LoadEvents(ctx, from, to)
}

// NewFileEvents reads events from a local CSV export.
func NewFileEvents(path string) EventSource {
	return &csvEvents{name: path, open: func(context.Context) (io.ReadCloser, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open event file: %w", err)
		}
		return f, nil
	}}
}

// NewBucketEvents reads events from a CSV export stored under key.
func NewBucketEvents(objects Opener, key string) EventSource {
	return &csvEvents{name: key, open: func(ctx context.Context) (io.ReadCloser, error) {
		return objects.Open(ctx, key)
	}}
}

type csvActiveURLs struct {
	open func(ctx context.Context) (io.ReadCloser, error)
	name string
}

func (s *csvActiveURLs) ListActiveURLs(ctx context.Context) ([]string, error) {
	rc, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	urls, err := ingest.ReadActiveURLs(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	return urls, nil
}

func NewFileActiveURLs(path string) ActiveURLSource {
	return &csvActiveURLs{name: path, open: func(context.Context) (io.ReadCloser, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open active url file: %w", err)
		}
		return f, nil
	}}
}

func NewBucketActiveURLs(objects Opener, key string) ActiveURLSource {
	return &csvActiveURLs{name: key, open: func(ctx context.Context) (io.ReadCloser, error) {
		return objects.Open(ctx, key)
	}}
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
