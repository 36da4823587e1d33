// Package ingest reads the exported performance dataset and the active URL list.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"pageperf/api/calculator"
	"pageperf/api/models"
)

// ActiveURLColumn is the header of the single-column active URL list.
const ActiveURLColumn = "URLs"

// latin1 wraps r so that Latin-1 exports decode to UTF-8.
func latin1(r io.Reader) io.Reader {
	return charmap.ISO8859_1.NewDecoder().Reader(r)
}

// ReadRawEvents parses a CSV export of performance_timing events. The header must
// carry every calculator.RequiredColumns entry; geo and device columns are optional.
// Rows with a blank timing value are skipped.
func ReadRawEvents(r io.Reader) ([]models.RawEvent, error) {
	cr := csv.NewReader(latin1(r))
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &calculator.SchemaError{Column: calculator.RequiredColumns[0]}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := calculator.RequireColumns(header); err != nil {
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}

	var events []models.RawEvent
	skipped := 0
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		plt, srt := field("page_load_time_ms"), field("server_response_time_ms")
		if plt == "" || srt == "" {
			skipped++
			continue
		}
		ev, err := parseEvent(field, plt, srt)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if skipped > 0 {
		slog.Warn("skipped events without timing values", "rows", skipped)
	}
	return events, nil
}

func parseEvent(field func(string) string, plt, srt string) (models.RawEvent, error) {
	date, err := time.Parse("20060102", field("event_date"))
	if err != nil {
		return models.RawEvent{}, fmt.Errorf("event_date: %w", err)
	}
	ts, err := ParseEventTimestamp(field("event_timestamp"))
	if err != nil {
		return models.RawEvent{}, err
	}
	pltMs, err := parseMs(plt)
	if err != nil {
		return models.RawEvent{}, fmt.Errorf("page_load_time_ms: %w", err)
	}
	srtMs, err := parseMs(srt)
	if err != nil {
		return models.RawEvent{}, fmt.Errorf("server_response_time_ms: %w", err)
	}
	return models.RawEvent{
		EventDate:             date,
		EventTimestamp:        ts,
		Country:               field("country"),
		Region:                field("region"),
		City:                  field("city"),
		Metro:                 field("metro"),
		Category:              field("category"),
		MobileBrandName:       field("mobile_brand_name"),
		MobileModelName:       field("mobile_model_name"),
		OSSystem:              field("os_system"),
		OSSystemVersion:       field("os_system_version"),
		Language:              field("language"),
		WebInfoBrowser:        field("web_info_browser"),
		WebInfoBrowserVersion: field("web_info_browser_version"),
		PageURL:               field("page_url"),
		PageLoadTimeMs:        pltMs,
		ServerResponseTimeMs:  srtMs,
	}, nil
}

// ParseEventTimestamp reads epoch microseconds, the warehouse's event_timestamp unit.
// A blank value yields the zero time.
func ParseEventTimestamp(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	us, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("event_timestamp: %w", err)
	}
	return time.UnixMicro(us).UTC(), nil
}

// parseMs accepts integers and integral floats such as "1234.0".
func parseMs(v string) (int64, error) {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// ReadActiveURLs reads the URLs column of the active URL list.
func ReadActiveURLs(r io.Reader) ([]string, error) {
	cr := csv.NewReader(latin1(r))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &calculator.SchemaError{Column: ActiveURLColumn}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := -1
	for i, h := range header {
		if strings.TrimSpace(h) == ActiveURLColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, &calculator.SchemaError{Column: ActiveURLColumn}
	}

	var urls []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read active urls: %w", err)
		}
		if col < len(rec) {
			if u := strings.TrimSpace(rec[col]); u != "" {
				urls = append(urls, u)
			}
		}
	}
	return urls, nil
}
