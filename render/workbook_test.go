package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pageperf/api/models"
)

func sampleReport() *models.Report {
	pv := 10.0
	prev := models.AggregatedStats{Key: "/a", PV: 5, PLTAvg: 1, SRTAvg: 0.2}
	return &models.Report{
		TopLevelSummary: []models.TopLevelRow{
			{Metric: "Min:", Pageviews: &pv, PageviewChange: models.Percent(0.1), LoadTime: 1.2, LoadTimeChange: models.NoBaseline()},
			{Metric: "Threshold:", PageviewChange: models.NoBaseline(), LoadTime: 3},
		},
		GroupedByPageURL: []models.MergedStats{
			{Key: "/a", Current: models.AggregatedStats{Key: "/a", PV: 10, PLTAvg: 9}, Previous: &prev, PVPercentChange: models.Percent(1), OutlierValue: models.OutlierPLT},
			{Key: "/b", Current: models.AggregatedStats{Key: "/b", PV: 2}, PVPercentChange: models.NoBaseline()},
		},
		CurrentOutliers: []models.OutlierRow{
			{PageURLCleaned: "/a", PVCurrent: 10, PLTAvgCurrent: 9, OutlierValue: models.OutlierPLT},
		},
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"top_level", "external_comparison", "grouped_by_page_path", "grouped_by_page_url",
		"top_pageview_changes", "change_outliers", "current_outliers",
	}, f.GetSheetList())

	v, err := f.GetCellValue("top_level", "B3")
	require.NoError(t, err)
	assert.Equal(t, "N/A", v)

	v, err = f.GetCellValue("grouped_by_page_url", "P2")
	require.NoError(t, err)
	assert.Equal(t, "PLT", v)
	v, err = f.GetCellValue("grouped_by_page_url", "M3")
	require.NoError(t, err)
	assert.Equal(t, "N/A", v)

	v, err = f.GetCellValue("current_outliers", "A2")
	require.NoError(t, err)
	assert.Equal(t, "/a", v)
}

func TestWriteRawDatasets(t *testing.T) {
	var buf bytes.Buffer
	events := []models.CleanedEvent{{PageURLCleaned: "/a", PagePathOne: "/a", PLTSec: 1.5}}
	require.NoError(t, WriteRawDatasets(&buf, events, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"previous_raw_results", "current_raw_results"}, f.GetSheetList())

	v, err := f.GetCellValue("previous_raw_results", "K2")
	require.NoError(t, err)
	assert.Equal(t, "/a", v)
}
