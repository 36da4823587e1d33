// api/store/event_store.go
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pageperf/api/database"
	"pageperf/api/models"
)

const createEventsTable = `
	CREATE TABLE IF NOT EXISTS page_performance_events (
		event_id String,
		event_date Date,
		event_timestamp DateTime64(6, 'UTC'),
		country LowCardinality(String),
		region String,
		city String,
		metro String,
		category LowCardinality(String),
		mobile_brand_name String,
		mobile_model_name String,
		os_system LowCardinality(String),
		os_system_version String,
		language String,
		web_info_browser LowCardinality(String),
		web_info_browser_version String,
		page_url String,
		page_load_time_ms Int64,
		server_response_time_ms Int64
	) ENGINE = MergeTree
	PARTITION BY toYYYYMM(event_date)
	ORDER BY (event_date, page_url)
`

// EventStore keeps raw performance_timing events in ClickHouse.
type EventStore struct {
	DB *database.ClickHouseClient
}

func NewEventStore(chClient *database.ClickHouseClient) *EventStore {
	return &EventStore{
		DB: chClient,
	}
}

func (s *EventStore) EnsureSchema(ctx context.Context) error {
	if err := s.DB.Conn.Exec(ctx, createEventsTable); err != nil {
		return fmt.Errorf("failed to create page_performance_events: %w", err)
	}
	return nil
}

func (s *EventStore) InsertEvents(ctx context.Context, events []models.RawEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO page_performance_events (
			event_id, event_date, event_timestamp, country, region, city, metro,
			category, mobile_brand_name, mobile_model_name, os_system, os_system_version,
			language, web_info_browser, web_info_browser_version,
			page_url, page_load_time_ms, server_response_time_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, e := range events {
		err := batch.Append(
			e.EventID,
			e.EventDate,
			e.EventTimestamp,
			e.Country,
			e.Region,
			e.City,
			e.Metro,
			e.Category,
			e.MobileBrandName,
			e.MobileModelName,
			e.OSSystem,
			e.OSSystemVersion,
			e.Language,
			e.WebInfoBrowser,
			e.WebInfoBrowserVersion,
			e.PageURL,
			e.PageLoadTimeMs,
			e.ServerResponseTimeMs,
		)
		if err != nil {
			batch.Abort()
			return fmt.Errorf("failed to append event %s: %w", e.EventID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	slog.Info("inserted performance events", "count", len(events))
	return nil
}

// LoadEvents returns every event dated within [from, to], both inclusive.
func (s *EventStore) LoadEvents(ctx context.Context, from, to time.Time) ([]models.RawEvent, error) {
	rows, err := s.DB.Conn.Query(ctx, `
		SELECT
			event_id, event_date, event_timestamp, country, region, city, metro,
			category, mobile_brand_name, mobile_model_name, os_system, os_system_version,
			language, web_info_browser, web_info_browser_version,
			page_url, page_load_time_ms, server_response_time_ms
		FROM page_performance_events
		WHERE event_date >= ? AND event_date <= ?
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance events: %w", err)
	}
	defer rows.Close()

	var events []models.RawEvent
	for rows.Next() {
		var e models.RawEvent
		if err := rows.Scan(
			&e.EventID,
			&e.EventDate,
			&e.EventTimestamp,
			&e.Country,
			&e.Region,
			&e.City,
			&e.Metro,
			&e.Category,
			&e.MobileBrandName,
			&e.MobileModelName,
			&e.OSSystem,
			&e.OSSystemVersion,
			&e.Language,
			&e.WebInfoBrowser,
			&e.WebInfoBrowserVersion,
			&e.PageURL,
			&e.PageLoadTimeMs,
			&e.ServerResponseTimeMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan performance event: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during performance event query: %w", err)
	}

	return events, nil
}
