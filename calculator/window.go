package calculator

import (
	"sort"
	"strings"
	"time"

	"pageperf/api/models"
)

// DefaultWindowDays makes a 14-day window inclusive of its start date.
const DefaultWindowDays = 13

var dateLayouts = []string{"20060102", time.DateOnly}

// Window is an inclusive calendar-date range [Start, Start+Days].
type Window struct {
	Start time.Time
	Days  int
}

// ParseDate accepts yyyymmdd or yyyy-mm-dd.
func ParseDate(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &InvalidDateError{Value: value, Reason: "expected yyyymmdd or yyyy-mm-dd"}
}

// NewWindow parses start and rejects a negative number of days.
func NewWindow(start string, days int) (Window, error) {
	t, err := ParseDate(start)
	if err != nil {
		return Window{}, err
	}
	if days < 0 {
		return Window{}, &InvalidDateError{Value: start, Reason: "window must not be negative"}
	}
	return Window{Start: t, Days: days}, nil
}

func (w Window) End() time.Time { return w.Start.AddDate(0, 0, w.Days) }

// Contains compares calendar dates only; any time of day is ignored.
func (w Window) Contains(date time.Time) bool {
	d := truncateDay(date)
	return !d.Before(w.Start) && !d.After(w.End())
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ExtractWindow selects the raw events dated inside w, normalizes them, drops
// inactive pages and orders the result by event date, newest first.
func ExtractWindow(raw []models.RawEvent, w Window, set ActiveURLSet, opts Options) []models.CleanedEvent {
	var out []models.CleanedEvent
	for _, r := range raw {
		if !w.Contains(r.EventDate) {
			continue
		}
		cleaned := Normalize(r, opts)
		if !set.Contains(cleaned.PageURLCleaned) {
			continue
		}
		out = append(out, cleaned)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EventDate.After(out[j].EventDate)
	})
	return out
}
