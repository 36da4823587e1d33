package calculator

import (
	"fmt"

	"pageperf/api/models"
)

// Band is a latency range in seconds. Bounds marked inclusive are closed.
type Band struct {
	Label        string
	Low, High    float64
	LowIncluded  bool
	HighIncluded bool
}

// Bands are disjoint and cover every non-negative duration, slowest first.
var Bands = [8]Band{
	{Label: "90 secs:", Low: 90, High: -1, LowIncluded: true},
	{Label: ">30 - <90 secs:", Low: 30, High: 90},
	{Label: ">10 - <=30 secs:", Low: 10, High: 30, HighIncluded: true},
	{Label: ">5 - <=10 secs:", Low: 5, High: 10, HighIncluded: true},
	{Label: ">2.9 - <=5 secs:", Low: 2.9, High: 5, HighIncluded: true},
	{Label: ">1.7 - <=2.9 secs:", Low: 1.7, High: 2.9, HighIncluded: true},
	{Label: ">0.8 - <=1.7 secs:", Low: 0.8, High: 1.7, HighIncluded: true},
	{Label: "<= 0.8 secs:", Low: -1, High: 0.8, HighIncluded: true},
}

// Contains treats a negative Low or High as unbounded on that side.
func (b Band) Contains(sec float64) bool {
	if b.Low >= 0 {
		if b.LowIncluded && sec < b.Low || !b.LowIncluded && sec <= b.Low {
			return false
		}
	}
	if b.High >= 0 {
		if b.HighIncluded && sec > b.High || !b.HighIncluded && sec >= b.High {
			return false
		}
	}
	return true
}

// BandFor returns the index into Bands for a duration.
func BandFor(sec float64) int {
	for i, b := range Bands {
		if b.Contains(sec) {
			return i
		}
	}
	return len(Bands) - 1
}

// BuildExternalComparison counts current URLs (by average load time) and current
// pageviews (by their own load time) per latency band.
func BuildExternalComparison(curEvents []models.CleanedEvent, curByURL []models.AggregatedStats) []models.ExternalRow {
	var urlCounts, pvCounts [len(Bands)]int
	var weighted float64
	totalPV := 0
	for _, s := range curByURL {
		urlCounts[BandFor(s.PLTAvg)]++
		weighted += s.PLTAvg * float64(s.PV)
		totalPV += s.PV
	}
	for _, e := range curEvents {
		pvCounts[BandFor(e.PLTSec)]++
	}

	urls, events := len(curByURL), len(curEvents)
	rows := make([]models.ExternalRow, 0, len(Bands)+1)
	for i, b := range Bands {
		rows = append(rows, models.ExternalRow{
			Metric:        b.Label,
			URLCount:      urlCounts[i],
			URLShare:      share(urlCounts[i], urls),
			PageviewCount: pvCounts[i],
			PageviewShare: share(pvCounts[i], events),
		})
	}

	var wa float64
	if totalPV > 0 {
		wa = weighted / float64(totalPV)
	}
	rows = append(rows, models.ExternalRow{
		Metric:        fmt.Sprintf("WA: %0.2f secs", wa),
		URLCount:      urls,
		URLShare:      share(urls, urls),
		PageviewCount: events,
		PageviewShare: share(events, events),
	})
	return rows
}

func share(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
