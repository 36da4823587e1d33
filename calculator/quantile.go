package calculator

import (
	"math"
	"sort"
)

// Quantile returns the q-th quantile (0..1) using linear interpolation between
// the closest ranks. The input is not modified.
func Quantile(values []float64, q float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrInsufficientData
	}
	cp := append([]float64(nil), values...)
	sort.Float64s(cp)
	return sortedQuantile(cp, q), nil
}

func sortedQuantile(sorted []float64, q float64) float64 {
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := float64(len(sorted)-1) * q
	lo := math.Floor(pos)
	hi := math.Ceil(pos)
	if lo == hi {
		return sorted[int(lo)]
	}
	frac := pos - lo
	return sorted[int(lo)] + (sorted[int(hi)]-sorted[int(lo)])*frac
}

// Distribution is the min/quartiles/max of a sample plus its Tukey upper fence.
type Distribution struct {
	Min, P25, P50, P75, Max float64
	Fence                   float64
}

// Describe returns the five-number summary and upper fence of values.
func Describe(values []float64) (Distribution, error) {
	if len(values) == 0 {
		return Distribution{}, ErrInsufficientData
	}
	cp := append([]float64(nil), values...)
	sort.Float64s(cp)
	d := Distribution{
		Min: cp[0],
		P25: sortedQuantile(cp, 0.25),
		P50: sortedQuantile(cp, 0.50),
		P75: sortedQuantile(cp, 0.75),
		Max: cp[len(cp)-1],
	}
	d.Fence = d.P75 + 1.5*(d.P75-d.P25)
	return d, nil
}

// UpperFence is P75 + 1.5*(P75-P25). Only slow outliers are flagged, so there is no lower fence.
func UpperFence(values []float64) (float64, error) {
	d, err := Describe(values)
	if err != nil {
		return 0, err
	}
	return d.Fence, nil
}
