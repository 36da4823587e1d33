package calculator

import (
	"fmt"

	"pageperf/api/models"
)

var topLevelMetrics = [7]string{
	"Total (Pageviews) / Average (Timing):",
	"Min:",
	"25th:",
	"50th:",
	"75th:",
	"Max:",
	"Threshold:",
}

// periodStats holds the seven summary values of one period, in topLevelMetrics order.
type periodStats struct {
	pv  [7]float64 // threshold entry unused
	plt [7]float64
	srt [7]float64
}

func describePeriod(events []models.CleanedEvent, byURL []models.AggregatedStats) (periodStats, error) {
	var ps periodStats

	pvs := make([]float64, len(byURL))
	for i, s := range byURL {
		pvs[i] = float64(s.PV)
	}
	pvDist, err := Describe(pvs)
	if err != nil {
		return ps, fmt.Errorf("pageviews: %w", err)
	}
	pvTotal := float64(totalPV(byURL))

	plts := make([]float64, len(events))
	srts := make([]float64, len(events))
	var pltSum, srtSum float64
	for i, e := range events {
		plts[i] = e.PLTSec
		srts[i] = e.SRTSec
		pltSum += e.PLTSec
		srtSum += e.SRTSec
	}
	pltDist, err := Describe(plts)
	if err != nil {
		return ps, fmt.Errorf("page load time: %w", err)
	}
	srtDist, err := Describe(srts)
	if err != nil {
		return ps, fmt.Errorf("server response time: %w", err)
	}

	ps.pv = [7]float64{pvTotal, pvDist.Min, pvDist.P25, pvDist.P50, pvDist.P75, pvDist.Max, 0}
	ps.plt = distRow(pltSum/pvTotal, pltDist)
	ps.srt = distRow(srtSum/pvTotal, srtDist)
	return ps, nil
}

func distRow(avg float64, d Distribution) [7]float64 {
	return [7]float64{avg, d.Min, d.P25, d.P50, d.P75, d.Max, d.Fence}
}

// BuildTopLevelSummary compares pageview and timing distributions of two periods.
// Averages are pageview weighted: event-level seconds over total pageviews.
func BuildTopLevelSummary(
	prevEvents []models.CleanedEvent,
	prevByURL []models.AggregatedStats,
	curEvents []models.CleanedEvent,
	curByURL []models.AggregatedStats,
) ([]models.TopLevelRow, error) {
	prev, err := describePeriod(prevEvents, prevByURL)
	if err != nil {
		return nil, fmt.Errorf("previous period: %w", err)
	}
	cur, err := describePeriod(curEvents, curByURL)
	if err != nil {
		return nil, fmt.Errorf("current period: %w", err)
	}

	rows := make([]models.TopLevelRow, len(topLevelMetrics))
	for i, metric := range topLevelMetrics {
		row := models.TopLevelRow{
			Metric:             metric,
			PageviewChange:     models.NoBaseline(),
			LoadTime:           cur.plt[i],
			LoadTimeChange:     PercentDiff(prev.plt[i], cur.plt[i]),
			ResponseTime:       cur.srt[i],
			ResponseTimeChange: PercentDiff(prev.srt[i], cur.srt[i]),
		}
		// pageviews have no threshold
		if i < len(topLevelMetrics)-1 {
			pv := cur.pv[i]
			row.Pageviews = &pv
			row.PageviewChange = PercentDiff(prev.pv[i], cur.pv[i])
		}
		rows[i] = row
	}
	return rows, nil
}
