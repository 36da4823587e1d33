package calculator

import (
	"sort"

	"pageperf/api/models"
)

// MergeByKey joins previous onto current by key. Current decides which rows exist:
// previous-only keys are dropped and current-only keys get no previous row.
func MergeByKey(previous, current []models.AggregatedStats) []models.MergedStats {
	prev := index(previous)
	total := float64(totalPV(current))

	out := make([]models.MergedStats, 0, len(current))
	for _, cur := range current {
		m := models.MergedStats{
			Key:              cur.Key,
			Current:          cur,
			PVPercentChange:  models.NoBaseline(),
			PLTPercentChange: models.NoBaseline(),
			SRTPercentChange: models.NoBaseline(),
		}
		if p, ok := prev[cur.Key]; ok {
			m.Previous = &p
			m.PVPercentChange = PercentDiff(float64(p.PV), float64(cur.PV))
			m.PLTPercentChange = PercentDiff(p.PLTAvg, cur.PLTAvg)
			m.SRTPercentChange = PercentDiff(p.SRTAvg, cur.SRTAvg)
		}
		if total > 0 {
			m.PVPercentOfTotal = float64(cur.PV) / total
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Current.PV > out[j].Current.PV
	})
	return out
}
