package calculator

import (
	"strings"

	"pageperf/api/models"
)

// ActiveURLSet is the read-only allow-list of pages that returned a healthy status.
type ActiveURLSet struct {
	urls map[string]struct{}
}

func NewActiveURLSet(urls []string) ActiveURLSet {
	set := ActiveURLSet{urls: make(map[string]struct{}, len(urls))}
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		set.urls[u] = struct{}{}
	}
	return set
}

func (s ActiveURLSet) Contains(url string) bool {
	_, ok := s.urls[url]
	return ok
}

func (s ActiveURLSet) Len() int { return len(s.urls) }

// FilterActive returns the events whose cleaned URL is in the set, preserving order.
func FilterActive(events []models.CleanedEvent, set ActiveURLSet) []models.CleanedEvent {
	out := make([]models.CleanedEvent, 0, len(events))
	for _, e := range events {
		if set.Contains(e.PageURLCleaned) {
			out = append(out, e)
		}
	}
	return out
}
