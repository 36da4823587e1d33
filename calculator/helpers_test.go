package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pageperf/api/models"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func rawEvent(t *testing.T, date, path string, pltMs, srtMs int64) models.RawEvent {
	t.Helper()
	d := day(t, date)
	return models.RawEvent{
		EventDate:            d,
		EventTimestamp:       d.Add(time.Hour),
		PageURL:              DefaultBaseDomain + path,
		PageLoadTimeMs:       pltMs,
		ServerResponseTimeMs: srtMs,
	}
}

func cleaned(url string, plt, srt float64) models.CleanedEvent {
	return models.CleanedEvent{
		PageURLCleaned: url,
		PagePathOne:    PathOne(url),
		PLTSec:         plt,
		SRTSec:         srt,
	}
}
