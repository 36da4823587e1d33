package render

import (
	"pageperf/api/models"
)

func pct(p models.PercentChange) any {
	if !p.Valid {
		return models.NotApplicable
	}
	return p.Value
}

func reportTables(r *models.Report) []table {
	return []table{
		topLevelTable(r.TopLevelSummary),
		externalTable(r.ExternalComparison),
		pagePathTable(r.GroupedByPagePath),
		pageURLTable(r.GroupedByPageURL),
		pageviewChangeTable(r.TopPageviewChanges),
		outlierTable("change_outliers", r.ChangeOutliers),
		outlierTable("current_outliers", r.CurrentOutliers),
	}
}

func topLevelTable(rows []models.TopLevelRow) table {
	t := table{
		name: "top_level",
		columns: []column{
			{"Metrics", text},
			{"Pages", decimal},
			{"Pageview % Change", percent},
			{"Page Load Times (sec)", decimal},
			{"Page Load Time % Change", percent},
			{"Server Response Times (sec)", decimal},
			{"Server Response Time % Change", percent},
		},
	}
	for _, row := range rows {
		var pages any = models.NotApplicable
		if row.Pageviews != nil {
			pages = *row.Pageviews
		}
		t.rows = append(t.rows, []any{
			row.Metric, pages, pct(row.PageviewChange),
			row.LoadTime, pct(row.LoadTimeChange),
			row.ResponseTime, pct(row.ResponseTimeChange),
		})
	}
	return t
}

func externalTable(rows []models.ExternalRow) table {
	t := table{
		name: "external_comparison",
		columns: []column{
			{"Metrics", text},
			{"Number of Page URLs", integer},
			{"Percent of Total Page URLs", percent},
			{"Number of Pageviews", integer},
			{"Percent of Total Pageviews", percent},
		},
	}
	for _, row := range rows {
		t.rows = append(t.rows, []any{row.Metric, row.URLCount, row.URLShare, row.PageviewCount, row.PageviewShare})
	}
	return t
}

func pagePathTable(rows []models.PagePathRow) table {
	t := table{
		name: "grouped_by_page_path",
		columns: []column{
			{"page_path_one", text},
			{"pages", integer},
			{"pv", integer},
			{"pv_percent_of_total", percent},
			{"pv_percent_change", percent},
			{"plt_avg", decimal},
			{"plt_percent_change", percent},
			{"srt_avg", decimal},
			{"srt_percent_change", percent},
		},
	}
	for _, row := range rows {
		t.rows = append(t.rows, []any{
			row.PagePathOne, row.Pages, row.PV, row.PVPercentOfTotal, pct(row.PVPercentChange),
			row.PLTAvg, pct(row.PLTPercentChange), row.SRTAvg, pct(row.SRTPercentChange),
		})
	}
	return t
}

func pageURLTable(rows []models.MergedStats) table {
	t := table{
		name: "grouped_by_page_url",
		columns: []column{
			{"page_url_cleaned", text},
			{"pv_current", integer},
			{"plt_sum_current", decimal},
			{"plt_avg_current", decimal},
			{"srt_sum_current", decimal},
			{"srt_avg_current", decimal},
			{"pv_previous", integer},
			{"plt_sum_previous", decimal},
			{"plt_avg_previous", decimal},
			{"srt_sum_previous", decimal},
			{"srt_avg_previous", decimal},
			{"pv_percent_of_total", percent},
			{"pv_percent_change", percent},
			{"plt_percent_change", percent},
			{"srt_percent_change", percent},
			{"outlier_value", text},
		},
		highlight: func(i int) bool { return rows[i].OutlierValue.IsOutlier() },
	}
	for _, m := range rows {
		c := m.Current
		prev := []any{nil, nil, nil, nil, nil}
		if p := m.Previous; p != nil {
			prev = []any{p.PV, p.PLTSum, p.PLTAvg, p.SRTSum, p.SRTAvg}
		}
		row := []any{m.Key, c.PV, c.PLTSum, c.PLTAvg, c.SRTSum, c.SRTAvg}
		row = append(row, prev...)
		row = append(row,
			m.PVPercentOfTotal, pct(m.PVPercentChange), pct(m.PLTPercentChange), pct(m.SRTPercentChange),
			m.OutlierValue.String(),
		)
		t.rows = append(t.rows, row)
	}
	return t
}

func pageviewChangeTable(rows []models.PageviewChangeRow) table {
	t := table{
		name: "top_pageview_changes",
		columns: []column{
			{"page_url_cleaned", text},
			{"pv_current", integer},
			{"pv_percent_of_total", percent},
			{"pv_percent_change", percent},
		},
	}
	for _, row := range rows {
		t.rows = append(t.rows, []any{row.PageURLCleaned, row.PVCurrent, row.PVPercentOfTotal, pct(row.PVPercentChange)})
	}
	return t
}

func outlierTable(name string, rows []models.OutlierRow) table {
	t := table{
		name: name,
		columns: []column{
			{"page_url_cleaned", text},
			{"pv_current", integer},
			{"pv_percent_of_total", percent},
			{"plt_avg_current", decimal},
			{"plt_percent_change", percent},
			{"srt_avg_current", decimal},
			{"srt_percent_change", percent},
			{"outlier_value", text},
		},
	}
	for _, row := range rows {
		t.rows = append(t.rows, []any{
			row.PageURLCleaned, row.PVCurrent, row.PVPercentOfTotal,
			row.PLTAvgCurrent, pct(row.PLTPercentChange),
			row.SRTAvgCurrent, pct(row.SRTPercentChange),
			row.OutlierValue.String(),
		})
	}
	return t
}

func rawTable(name string, events []models.CleanedEvent) table {
	t := table{
		name: name,
		columns: []column{
			{"event_date", text},
			{"event_timestamp", text},
			{"country", text},
			{"region", text},
			{"city", text},
			{"category", text},
			{"web_info_browser", text},
			{"page_url", text},
			{"plt_ms", integer},
			{"srt_ms", integer},
			{"page_url_cleaned", text},
			{"page_path_one", text},
			{"plt_sec", decimal},
			{"srt_sec", decimal},
		},
	}
	for _, e := range events {
		t.rows = append(t.rows, []any{
			e.EventDate.Format("2006-01-02"), e.EventTimestamp.Format("2006-01-02 15:04:05.000000"),
			e.Country, e.Region, e.City, e.Category, e.WebInfoBrowser,
			e.PageURL, e.PageLoadTimeMs, e.ServerResponseTimeMs,
			e.PageURLCleaned, e.PagePathOne, e.PLTSec, e.SRTSec,
		})
	}
	return t
}
