package calculator

import (
	"sort"

	"pageperf/api/models"
)

// DefaultTopChangeCount is how many of the largest and of the smallest changes are kept.
const DefaultTopChangeCount = 25

// TopPageviewChanges returns the n largest pageview changes followed by the n smallest.
// Rows without a baseline are not ranked. A row that is in both halves appears once.
func TopPageviewChanges(merged []models.MergedStats, n int) []models.PageviewChangeRow {
	if n <= 0 {
		n = DefaultTopChangeCount
	}
	ranked := make([]int, 0, len(merged))
	for i, m := range merged {
		if m.PVPercentChange.Valid {
			ranked = append(ranked, i)
		}
	}

	desc := append([]int(nil), ranked...)
	sort.SliceStable(desc, func(a, b int) bool {
		return merged[desc[a]].PVPercentChange.Value > merged[desc[b]].PVPercentChange.Value
	})
	asc := append([]int(nil), ranked...)
	sort.SliceStable(asc, func(a, b int) bool {
		return merged[asc[a]].PVPercentChange.Value < merged[asc[b]].PVPercentChange.Value
	})

	seen := make(map[int]struct{})
	rows := make([]models.PageviewChangeRow, 0, 2*n)
	add := func(idx []int) {
		for _, i := range idx[:min(n, len(idx))] {
			if _, dup := seen[i]; dup {
				continue
			}
			seen[i] = struct{}{}
			m := merged[i]
			rows = append(rows, models.PageviewChangeRow{
				PageURLCleaned:   m.Key,
				PVCurrent:        m.Current.PV,
				PVPercentOfTotal: m.PVPercentOfTotal,
				PVPercentChange:  m.PVPercentChange,
			})
		}
	}
	add(desc)
	add(asc)
	return rows
}
