package calculator

import (
	"sort"

	"pageperf/api/models"
)

type keyFunc func(models.CleanedEvent) string

func byURL(e models.CleanedEvent) string  { return e.PageURLCleaned }
func byPath(e models.CleanedEvent) string { return e.PagePathOne }

// GroupByURL aggregates events per cleaned page URL.
func GroupByURL(events []models.CleanedEvent) []models.AggregatedStats {
	return group(events, byURL, false)
}

// GroupByPath aggregates events per first path segment and counts distinct URLs.
func GroupByPath(events []models.CleanedEvent) []models.AggregatedStats {
	return group(events, byPath, true)
}

func group(events []models.CleanedEvent, key keyFunc, countPages bool) []models.AggregatedStats {
	idx := make(map[string]int)
	var out []models.AggregatedStats
	pages := make(map[string]map[string]struct{})

	for _, e := range events {
		k := key(e)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, models.AggregatedStats{Key: k})
		}
		s := &out[i]
		s.PV++
		s.PLTSum += e.PLTSec
		s.SRTSum += e.SRTSec

		if countPages {
			if pages[k] == nil {
				pages[k] = make(map[string]struct{})
			}
			pages[k][e.PageURLCleaned] = struct{}{}
		}
	}

	for i := range out {
		s := &out[i]
		s.PLTAvg = s.PLTSum / float64(s.PV)
		s.SRTAvg = s.SRTSum / float64(s.PV)
		if countPages {
			s.Pages = len(pages[s.Key])
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
	return out
}

// index maps each key to its row for joins.
func index(stats []models.AggregatedStats) map[string]models.AggregatedStats {
	m := make(map[string]models.AggregatedStats, len(stats))
	for _, s := range stats {
		m[s.Key] = s
	}
	return m
}

func totalPV(stats []models.AggregatedStats) int {
	total := 0
	for _, s := range stats {
		total += s.PV
	}
	return total
}
