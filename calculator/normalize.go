package calculator

import (
	"strings"

	"pageperf/api/models"
)

const (
	// DefaultBaseDomain is stripped from every page URL before grouping.
	DefaultBaseDomain = "https://eclkc.ohs.acf.hhs.gov"
	// MaxTimingMs caps load and response times before conversion to seconds.
	MaxTimingMs = 90000
)

// RequiredColumns are the raw input columns the pipeline cannot run without.
var RequiredColumns = []string{
	"event_date",
	"event_timestamp",
	"page_url",
	"page_load_time_ms",
	"server_response_time_ms",
}

// Options tune normalization. The zero value uses the defaults.
type Options struct {
	BaseDomain string
}

func (o Options) baseDomain() string {
	if o.BaseDomain == "" {
		return DefaultBaseDomain
	}
	return o.BaseDomain
}

// RequireColumns checks a tabular header for every required column.
func RequireColumns(header []string) error {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = struct{}{}
	}
	for _, col := range RequiredColumns {
		if _, ok := present[col]; !ok {
			return &SchemaError{Column: col}
		}
	}
	return nil
}

// CleanURL strips the base domain and the query string.
func CleanURL(pageURL, baseDomain string) string {
	cleaned := strings.ReplaceAll(pageURL, baseDomain, "")
	if i := strings.IndexByte(cleaned, '?'); i >= 0 {
		cleaned = cleaned[:i]
	}
	return cleaned
}

// PathOne returns "/" followed by the first segment of a cleaned URL.
func PathOne(cleanedURL string) string {
	parts := strings.SplitN(cleanedURL, "/", 3)
	if len(parts) < 2 {
		return "/"
	}
	return "/" + parts[1]
}

func capSeconds(ms int64) float64 {
	if ms > MaxTimingMs {
		ms = MaxTimingMs
	}
	if ms < 0 {
		ms = 0
	}
	return float64(ms) / 1000
}

// Normalize cleans the page URL and converts both timings to capped seconds.
func Normalize(raw models.RawEvent, opts Options) models.CleanedEvent {
	cleaned := CleanURL(raw.PageURL, opts.baseDomain())
	return models.CleanedEvent{
		RawEvent:       raw,
		PageURLCleaned: cleaned,
		PagePathOne:    PathOne(cleaned),
		PLTSec:         capSeconds(raw.PageLoadTimeMs),
		SRTSec:         capSeconds(raw.ServerResponseTimeMs),
	}
}
