package models

import "time"

// TopLevelRow is one statistic of the top-level summary, for pageviews and both timings.
type TopLevelRow struct {
	Metric             string        `json:"metric"`
	Pageviews          *float64      `json:"pageviews"` // nil for the threshold row
	PageviewChange     PercentChange `json:"pageviewChange"`
	LoadTime           float64       `json:"loadTimeSec"`
	LoadTimeChange     PercentChange `json:"loadTimeChange"`
	ResponseTime       float64       `json:"responseTimeSec"`
	ResponseTimeChange PercentChange `json:"responseTimeChange"`
}

// ExternalRow is one latency band of the external comparison table.
type ExternalRow struct {
	Metric        string  `json:"metric"`
	URLCount      int     `json:"urlCount"`
	URLShare      float64 `json:"urlShare"`
	PageviewCount int     `json:"pageviewCount"`
	PageviewShare float64 `json:"pageviewShare"`
}

type PagePathRow struct {
	PagePathOne      string        `json:"pagePathOne"`
	Pages            int           `json:"pages"`
	PV               int           `json:"pv"`
	PVPercentOfTotal float64       `json:"pvPercentOfTotal"`
	PVPercentChange  PercentChange `json:"pvPercentChange"`
	PLTAvg           float64       `json:"pltAvg"`
	PLTPercentChange PercentChange `json:"pltPercentChange"`
	SRTAvg           float64       `json:"srtAvg"`
	SRTPercentChange PercentChange `json:"srtPercentChange"`
}

type PageviewChangeRow struct {
	PageURLCleaned   string        `json:"pageUrlCleaned"`
	PVCurrent        int           `json:"pvCurrent"`
	PVPercentOfTotal float64       `json:"pvPercentOfTotal"`
	PVPercentChange  PercentChange `json:"pvPercentChange"`
}

type OutlierRow struct {
	PageURLCleaned   string        `json:"pageUrlCleaned"`
	PVCurrent        int           `json:"pvCurrent"`
	PVPercentOfTotal float64       `json:"pvPercentOfTotal"`
	PLTAvgCurrent    float64       `json:"pltAvgCurrent"`
	PLTPercentChange PercentChange `json:"pltPercentChange"`
	SRTAvgCurrent    float64       `json:"srtAvgCurrent"`
	SRTPercentChange PercentChange `json:"srtPercentChange"`
	OutlierValue     OutlierValue  `json:"outlierValue"`
}

// WindowSummary describes one extracted comparison period.
type WindowSummary struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Events int       `json:"events"`
	URLs   int       `json:"urls"`
}

// Report holds every output table of one comparison run.
type Report struct {
	GeneratedAt time.Time     `json:"generatedAt"`
	Previous    WindowSummary `json:"previous"`
	Current     WindowSummary `json:"current"`

	TopLevelSummary    []TopLevelRow       `json:"topLevelSummary"`
	ExternalComparison []ExternalRow       `json:"externalComparison"`
	GroupedByPagePath  []PagePathRow       `json:"groupedByPagePath"`
	GroupedByPageURL   []MergedStats       `json:"groupedByPageUrl"`
	TopPageviewChanges []PageviewChangeRow `json:"topPageviewChanges"`
	ChangeOutliers     []OutlierRow        `json:"changeOutliers"`
	CurrentOutliers    []OutlierRow        `json:"currentOutliers"`

	Warnings []string `json:"warnings,omitempty"`
}
