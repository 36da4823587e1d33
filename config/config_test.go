package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "REPORT_BASE_DOMAIN", "REPORT_WINDOW_DAYS", "REPORT_TOP_CHANGES", "REPORT_CACHE_TTL", "JWT_TTL", "REPORT_EVENT_SOURCE", "REPORT_ACTIVE_URL_SOURCE", "CLICKHOUSE_NATIVE_PORT", "CLICKHOUSE_READ_TIMEOUT"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://eclkc.ohs.acf.hhs.gov", cfg.Report.BaseDomain)
	assert.Equal(t, 13, cfg.Report.WindowDays)
	assert.Equal(t, 25, cfg.Report.TopChangeCount)
	assert.Equal(t, time.Hour, cfg.Report.CacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "clickhouse", cfg.Report.EventSource)
	assert.Equal(t, "postgres", cfg.Report.ActiveURLSource)
	assert.Equal(t, 9000, cfg.ClickHouse.NativePort)
	assert.Equal(t, 2*time.Minute, cfg.ClickHouse.ReadTimeout)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REPORT_WINDOW_DAYS", "6")
	t.Setenv("REPORT_TOP_CHANGES", "not-a-number")
	t.Setenv("REPORT_CACHE_TTL", "15m")
	t.Setenv("CLICKHOUSE_NATIVE_PORT", "9440")
	t.Setenv("CLICKHOUSE_READ_TIMEOUT", "30s")

	cfg := FromEnv()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 6, cfg.Report.WindowDays)
	assert.Equal(t, 25, cfg.Report.TopChangeCount)
	assert.Equal(t, 15*time.Minute, cfg.Report.CacheTTL)
	assert.Equal(t, 9440, cfg.ClickHouse.NativePort)
	assert.Equal(t, 30*time.Second, cfg.ClickHouse.ReadTimeout)
}
