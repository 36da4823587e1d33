package models

// AggregatedStats summarises the events sharing one grouping key (a cleaned URL or a page path).
type AggregatedStats struct {
	Key    string  `json:"key"`
	PV     int     `json:"pv"`
	Pages  int     `json:"pages,omitempty"`
	PLTSum float64 `json:"pltSum"`
	PLTAvg float64 `json:"pltAvg"`
	SRTSum float64 `json:"srtSum"`
	SRTAvg float64 `json:"srtAvg"`
}

// MergedStats is a current-period row joined with its previous-period row, if any.
type MergedStats struct {
	Key      string           `json:"pageUrlCleaned"`
	Current  AggregatedStats  `json:"current"`
	Previous *AggregatedStats `json:"previous,omitempty"`

	PVPercentOfTotal float64       `json:"pvPercentOfTotal"`
	PVPercentChange  PercentChange `json:"pvPercentChange"`
	PLTPercentChange PercentChange `json:"pltPercentChange"`
	SRTPercentChange PercentChange `json:"srtPercentChange"`
	OutlierValue     OutlierValue  `json:"outlierValue"`
}

// OutlierValue tags which timing metrics of a row are at or above their fence.
type OutlierValue int

const (
	OutlierNone OutlierValue = iota
	OutlierPLT
	OutlierSRT
	OutlierBoth
)

func (o OutlierValue) String() string {
	switch o {
	case OutlierPLT:
		return "PLT"
	case OutlierSRT:
		return "SRT"
	case OutlierBoth:
		return "PLT and SRT"
	default:
		return NotApplicable
	}
}

func (o OutlierValue) IsOutlier() bool { return o != OutlierNone }

func (o OutlierValue) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *OutlierValue) UnmarshalText(b []byte) error {
	switch string(b) {
	case "PLT":
		*o = OutlierPLT
	case "SRT":
		*o = OutlierSRT
	case "PLT and SRT":
		*o = OutlierBoth
	default:
		*o = OutlierNone
	}
	return nil
}
