package calculator

import (
	"time"

	"pageperf/api/models"
)

// Params are the caller-supplied comparison settings.
type Params struct {
	PreviousStart string
	CurrentStart  string
	WindowDays    int
}

// Windows resolves the two comparison periods from Params.
func (p Params) Windows() (previous, current Window, err error) {
	if previous, err = NewWindow(p.PreviousStart, p.WindowDays); err != nil {
		return
	}
	current, err = NewWindow(p.CurrentStart, p.WindowDays)
	return
}

// Extracts holds both cleaned periods and their aggregates. Nothing in it is
// modified after Extract returns.
type Extracts struct {
	PreviousWindow, CurrentWindow Window

	Previous, Current             []models.CleanedEvent
	PreviousByURL, CurrentByURL   []models.AggregatedStats
	PreviousByPath, CurrentByPath []models.AggregatedStats
}

// Extract builds both windows and both aggregation granularities.
func Extract(raw []models.RawEvent, active ActiveURLSet, params Params, opts Options) (*Extracts, error) {
	prevWin, curWin, err := params.Windows()
	if err != nil {
		return nil, err
	}
	x := &Extracts{
		PreviousWindow: prevWin,
		CurrentWindow:  curWin,
		Previous:       ExtractWindow(raw, prevWin, active, opts),
		Current:        ExtractWindow(raw, curWin, active, opts),
	}
	x.PreviousByURL = GroupByURL(x.Previous)
	x.CurrentByURL = GroupByURL(x.Current)
	x.PreviousByPath = GroupByPath(x.Previous)
	x.CurrentByPath = GroupByPath(x.Current)
	return x, nil
}

// EmptyWindows reports each period that matched nothing.
func (x *Extracts) EmptyWindows() []error {
	var errs []error
	if len(x.Previous) == 0 {
		errs = append(errs, &EmptyWindowError{Period: "previous", Start: x.PreviousWindow.Start, End: x.PreviousWindow.End()})
	}
	if len(x.Current) == 0 {
		errs = append(errs, &EmptyWindowError{Period: "current", Start: x.CurrentWindow.Start, End: x.CurrentWindow.End()})
	}
	return errs
}

// Build derives every report table from the extracts.
func Build(x *Extracts, topChanges int) *models.Report {
	r := &models.Report{
		GeneratedAt: time.Now().UTC(),
		Previous:    summarize(x.PreviousWindow, x.Previous, x.PreviousByURL),
		Current:     summarize(x.CurrentWindow, x.Current, x.CurrentByURL),
	}
	warn := func(table string, err error) {
		r.Warnings = append(r.Warnings, table+": "+err.Error())
	}
	for _, err := range x.EmptyWindows() {
		warn("window", err)
	}

	merged := MergeByKey(x.PreviousByURL, x.CurrentByURL)

	var err error
	if r.TopLevelSummary, err = BuildTopLevelSummary(x.Previous, x.PreviousByURL, x.Current, x.CurrentByURL); err != nil {
		warn("top_level_summary", err)
	}
	r.ExternalComparison = BuildExternalComparison(x.Current, x.CurrentByURL)
	r.GroupedByPagePath = BuildPagePathTable(x.PreviousByPath, x.CurrentByPath)
	r.TopPageviewChanges = TopPageviewChanges(merged, topChanges)

	if r.ChangeOutliers, err = ChangeOutliers(merged); err != nil {
		warn("change_outliers", err)
	}
	if r.CurrentOutliers, err = CurrentOutliers(x.Current, merged); err != nil {
		warn("current_outliers", err)
	}
	if r.GroupedByPageURL, err = ClassifyCurrent(x.Current, merged); err != nil {
		r.GroupedByPageURL = merged
	}
	return r
}

func summarize(w Window, events []models.CleanedEvent, byURL []models.AggregatedStats) models.WindowSummary {
	return models.WindowSummary{Start: w.Start, End: w.End(), Events: len(events), URLs: len(byURL)}
}

// Run is Extract followed by Build. Only invalid parameters are fatal.
func Run(raw []models.RawEvent, active ActiveURLSet, params Params, opts Options) (*models.Report, error) {
	x, err := Extract(raw, active, params, opts)
	if err != nil {
		return nil, err
	}
	return Build(x, DefaultTopChangeCount), nil
}
