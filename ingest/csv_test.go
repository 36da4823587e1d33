package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageperf/api/calculator"
)

const header = "event_date,event_timestamp,country,city,page_url,page_load_time_ms,server_response_time_ms\n"

func TestReadRawEvents(t *testing.T) {
	in := header +
		"20230515,1684108800000000,United States,Bo\xeete,https://eclkc.ohs.acf.hhs.gov/a?x=1,1200,300\n" +
		"20230516,1684195200000000,Guam,Hag\xe5t\xf1a,https://eclkc.ohs.acf.hhs.gov/b,95000.0,40\n" +
		"20230516,1684195200000000,Guam,,https://eclkc.ohs.acf.hhs.gov/c,,40\n"

	events, err := ReadRawEvents(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, events, 2)

	e := events[0]
	assert.Equal(t, "2023-05-15", e.EventDate.Format("2006-01-02"))
	assert.Equal(t, int64(1684108800), e.EventTimestamp.Unix())
	assert.Equal(t, "United States", e.Country)
	assert.Equal(t, "Boîte", e.City)
	assert.Equal(t, int64(1200), e.PageLoadTimeMs)
	assert.Equal(t, int64(300), e.ServerResponseTimeMs)
	assert.Empty(t, e.Region)

	assert.Equal(t, "Hagåtña", events[1].City)
	assert.Equal(t, int64(95000), events[1].PageLoadTimeMs)
}

func TestReadRawEventsMissingColumn(t *testing.T) {
	_, err := ReadRawEvents(strings.NewReader("event_date,page_url,page_load_time_ms\n20230515,/a,1\n"))
	var schemaErr *calculator.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "event_timestamp", schemaErr.Column)

	_, err = ReadRawEvents(strings.NewReader(""))
	require.ErrorAs(t, err, &schemaErr)
}

func TestReadRawEventsBadValue(t *testing.T) {
	_, err := ReadRawEvents(strings.NewReader(header + "2023-05-15,1,US,x,/a,1,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadActiveURLs(t *testing.T) {
	urls, err := ReadActiveURLs(strings.NewReader("Status,URLs\n200,/a\n200, /b \n200,\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, urls)

	_, err = ReadActiveURLs(strings.NewReader("url\n/a\n"))
	var schemaErr *calculator.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, ActiveURLColumn, schemaErr.Column)
}
