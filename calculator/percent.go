package calculator

import "pageperf/api/models"

// PercentDiff is (current-previous)/previous, or no baseline when previous is zero.
func PercentDiff(previous, current float64) models.PercentChange {
	if previous == 0 {
		return models.NoBaseline()
	}
	return models.Percent((current - previous) / previous)
}

// PercentDiffFrom treats a nil previous value as no baseline.
func PercentDiffFrom(previous *float64, current float64) models.PercentChange {
	if previous == nil {
		return models.NoBaseline()
	}
	return PercentDiff(*previous, current)
}
