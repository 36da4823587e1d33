package calculator

import (
	"sort"

	"pageperf/api/models"
)

// BuildPagePathTable compares per-path aggregates. Timing changes are computed on
// the summed seconds, so they move with traffic as well as with speed.
func BuildPagePathTable(prevByPath, curByPath []models.AggregatedStats) []models.PagePathRow {
	prev := index(prevByPath)
	total := float64(totalPV(curByPath))

	rows := make([]models.PagePathRow, 0, len(curByPath))
	for _, cur := range curByPath {
		row := models.PagePathRow{
			PagePathOne:      cur.Key,
			Pages:            cur.Pages,
			PV:               cur.PV,
			PVPercentChange:  models.NoBaseline(),
			PLTAvg:           cur.PLTAvg,
			PLTPercentChange: models.NoBaseline(),
			SRTAvg:           cur.SRTAvg,
			SRTPercentChange: models.NoBaseline(),
		}
		if total > 0 {
			row.PVPercentOfTotal = float64(cur.PV) / total
		}
		if p, ok := prev[cur.Key]; ok {
			row.PVPercentChange = PercentDiff(float64(p.PV), float64(cur.PV))
			row.PLTPercentChange = PercentDiff(p.PLTSum, cur.PLTSum)
			row.SRTPercentChange = PercentDiff(p.SRTSum, cur.SRTSum)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].PV > rows[j].PV })
	return rows
}
