package calculator

import (
	"fmt"
	"sort"

	"pageperf/api/models"
)

// Classify tags a row by which metrics are at or above their fence.
func Classify(plt, srt, pltFence, srtFence float64) models.OutlierValue {
	pltHigh := plt >= pltFence
	srtHigh := srt >= srtFence
	switch {
	case pltHigh && srtHigh:
		return models.OutlierBoth
	case pltHigh:
		return models.OutlierPLT
	case srtHigh:
		return models.OutlierSRT
	}
	return models.OutlierNone
}

// classifyChange needs a baseline for both metrics; without one the row is never an outlier.
func classifyChange(m models.MergedStats, pltFence, srtFence float64) models.OutlierValue {
	if !m.PLTPercentChange.Valid || !m.SRTPercentChange.Valid {
		return models.OutlierNone
	}
	return Classify(m.PLTPercentChange.Value, m.SRTPercentChange.Value, pltFence, srtFence)
}

// ChangeOutliers flags URLs whose period-over-period timing change is at or above
// the upper fence of all URLs' changes.
func ChangeOutliers(merged []models.MergedStats) ([]models.OutlierRow, error) {
	var pltChanges, srtChanges []float64
	for _, m := range merged {
		if m.PLTPercentChange.Valid {
			pltChanges = append(pltChanges, m.PLTPercentChange.Value)
		}
		if m.SRTPercentChange.Valid {
			srtChanges = append(srtChanges, m.SRTPercentChange.Value)
		}
	}
	pltFence, err := UpperFence(pltChanges)
	if err != nil {
		return nil, fmt.Errorf("page load time change fence: %w", err)
	}
	srtFence, err := UpperFence(srtChanges)
	if err != nil {
		return nil, fmt.Errorf("server response time change fence: %w", err)
	}

	return outlierTable(merged, func(m models.MergedStats) models.OutlierValue {
		return classifyChange(m, pltFence, srtFence)
	}), nil
}

// CurrentFences are the upper fences of the current period's event-level timings.
func CurrentFences(curEvents []models.CleanedEvent) (pltFence, srtFence float64, err error) {
	plts := make([]float64, len(curEvents))
	srts := make([]float64, len(curEvents))
	for i, e := range curEvents {
		plts[i] = e.PLTSec
		srts[i] = e.SRTSec
	}
	if pltFence, err = UpperFence(plts); err != nil {
		return 0, 0, fmt.Errorf("page load time fence: %w", err)
	}
	if srtFence, err = UpperFence(srts); err != nil {
		return 0, 0, fmt.Errorf("server response time fence: %w", err)
	}
	return pltFence, srtFence, nil
}

// ClassifyCurrent returns a copy of merged with OutlierValue set from the current
// period's absolute timing fences.
func ClassifyCurrent(curEvents []models.CleanedEvent, merged []models.MergedStats) ([]models.MergedStats, error) {
	pltFence, srtFence, err := CurrentFences(curEvents)
	if err != nil {
		return nil, err
	}
	out := make([]models.MergedStats, len(merged))
	for i, m := range merged {
		m.OutlierValue = Classify(m.Current.PLTAvg, m.Current.SRTAvg, pltFence, srtFence)
		out[i] = m
	}
	return out, nil
}

// CurrentOutliers flags URLs whose current average timing is at or above the fence
// of the current period's event-level distribution.
func CurrentOutliers(curEvents []models.CleanedEvent, merged []models.MergedStats) ([]models.OutlierRow, error) {
	classified, err := ClassifyCurrent(curEvents, merged)
	if err != nil {
		return nil, err
	}
	return outlierTable(classified, func(m models.MergedStats) models.OutlierValue {
		return m.OutlierValue
	}), nil
}

// outlierTable keeps outlier rows only, ordered by label then pageviews descending.
func outlierTable(merged []models.MergedStats, classify func(models.MergedStats) models.OutlierValue) []models.OutlierRow {
	rows := make([]models.OutlierRow, 0)
	for _, m := range merged {
		v := classify(m)
		if !v.IsOutlier() {
			continue
		}
		rows = append(rows, models.OutlierRow{
			PageURLCleaned:   m.Key,
			PVCurrent:        m.Current.PV,
			PVPercentOfTotal: m.PVPercentOfTotal,
			PLTAvgCurrent:    m.Current.PLTAvg,
			PLTPercentChange: m.PLTPercentChange,
			SRTAvgCurrent:    m.Current.SRTAvg,
			SRTPercentChange: m.SRTPercentChange,
			OutlierValue:     v,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		li, lj := rows[i].OutlierValue.String(), rows[j].OutlierValue.String()
		if li != lj {
			return li < lj
		}
		return rows[i].PVCurrent > rows[j].PVCurrent
	})
	return rows
}
