package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageperf/api/calculator"
	"pageperf/api/config"
	"pageperf/api/models"
)

var params = calculator.Params{PreviousStart: "20230501", CurrentStart: "20230515", WindowDays: 13}

func newTestService(events EventSource) *ReportService {
	s := NewReportService(events, &fakeActive{urls: []string{"/a", "/b"}}, config.Report{TopChangeCount: 5})
	s.now = func() time.Time { return time.Date(2023, 6, 1, 10, 30, 0, 0, time.UTC) }
	return s
}

func sampleEvents() *fakeEvents {
	return &fakeEvents{events: []models.RawEvent{
		event("20230502", "/a", 1000, 100),
		event("20230503", "/b", 2000, 200),
		event("20230515", "/a", 1500, 150),
		event("20230516", "/a?utm=x", 2500, 250),
		event("20230520", "/b", 1000, 400),
		event("20230520", "/gone", 1000, 400),
	}}
}

func TestGenerateCachesAndRecordsRun(t *testing.T) {
	events := sampleEvents()
	cache := fakeCache{}
	runs := &fakeRuns{}
	s := newTestService(events)
	s.Cache, s.Runs = cache, runs

	report, err := s.Generate(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Previous.Events)
	assert.Equal(t, 3, report.Current.Events)
	require.Len(t, report.GroupedByPageURL, 2)
	assert.Equal(t, "/a", report.GroupedByPageURL[0].Key)
	assert.Contains(t, cache, "perf_report:20230501:20230515:13")

	require.Len(t, runs.runs, 1)
	run := runs.runs[0]
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 13, run.WindowDays)
	assert.Equal(t, 2, run.PreviousEvents)
	assert.Equal(t, 3, run.CurrentEvents)
	assert.Equal(t, 2, run.URLCount)

	loads := len(events.ranges)
	again, err := s.Generate(context.Background(), params)
	require.NoError(t, err)
	assert.Same(t, report, again)
	assert.Len(t, events.ranges, loads)
	assert.Len(t, runs.runs, 1)
}

func TestGenerateInvalidDate(t *testing.T) {
	events := sampleEvents()
	s := newTestService(events)

	_, err := s.Generate(context.Background(), calculator.Params{PreviousStart: "2023-13-45", CurrentStart: "20230515"})
	var dateErr *calculator.InvalidDateError
	require.ErrorAs(t, err, &dateErr)
	assert.Empty(t, events.ranges)
}

func TestGenerateSourceError(t *testing.T) {
	boom := errors.New("clickhouse down")
	s := newTestService(&fakeEvents{err: boom})

	_, err := s.Generate(context.Background(), params)
	require.ErrorIs(t, err, boom)
}

func TestGenerateLoadsAdjacentWindowsOnce(t *testing.T) {
	events := sampleEvents()
	s := newTestService(events)

	_, err := s.Generate(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, events.ranges, 1)
	assert.Equal(t, "2023-05-01", events.ranges[0][0].Format(time.DateOnly))
	assert.Equal(t, "2023-05-28", events.ranges[0][1].Format(time.DateOnly))
}

func TestLoadRangesDisjoint(t *testing.T) {
	prev, err := calculator.NewWindow("20230101", 13)
	require.NoError(t, err)
	cur, err := calculator.NewWindow("20230601", 13)
	require.NoError(t, err)

	ranges := loadRanges(cur, prev)
	require.Len(t, ranges, 2)
	assert.Equal(t, prev.Start, ranges[0][0])
	assert.Equal(t, cur.End(), ranges[1][1])
}

func TestPublish(t *testing.T) {
	s := newTestService(sampleEvents())

	_, err := s.Publish(context.Background(), params)
	require.ErrorIs(t, err, ErrPublishDisabled)

	up := &fakeUploads{}
	s.Uploads = up
	key, err := s.Publish(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "results_20230501-20230515-103000.xlsx", key)
	assert.Equal(t, key, up.key)
	assert.Equal(t, int64(len(up.body)), up.size)
	assert.Equal(t, "PK", string(up.body[:2]))
}

func TestRecentRunsWithoutRecorder(t *testing.T) {
	runs, err := newTestService(sampleEvents()).RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestGenerateAfterAllowListChange(t *testing.T) {
	active := &fakeActive{urls: []string{"/a", "/b"}}
	cache := fakeCache{}
	s := newTestService(sampleEvents())
	s.Active, s.Cache = active, cache

	before, err := s.Generate(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, before.GroupedByPageURL, 2)

	active.urls = []string{"/a"}
	require.NoError(t, s.InvalidateReports(context.Background()))
	assert.Empty(t, cache)

	after, err := s.Generate(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, after.GroupedByPageURL, 1)
	assert.Equal(t, "/a", after.GroupedByPageURL[0].Key)
	assert.Equal(t, 2, after.Current.Events)
}

func TestInvalidateReportsWithoutCache(t *testing.T) {
	assert.NoError(t, newTestService(sampleEvents()).InvalidateReports(context.Background()))
}

func TestExtractReadsExportOncePerReport(t *testing.T) {
	objects := &countingOpener{bodies: []string{eventsCSV}}
	s := newTestService(NewBucketEvents(objects, EventsObjectKey))

	disjoint := calculator.Params{PreviousStart: "20230101", CurrentStart: "20230515", WindowDays: 13}
	x, err := s.Extract(context.Background(), disjoint)
	require.NoError(t, err)
	assert.Equal(t, 1, objects.opens)
	assert.Len(t, x.Current, 1)
	assert.Empty(t, x.Previous)

	_, err = s.Extract(context.Background(), disjoint)
	require.NoError(t, err)
	assert.Equal(t, 2, objects.opens)
}
