package database

import (
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"

	"pageperf/api/config"
)

func TestClickHouseOptions(t *testing.T) {
	opts := clickHouseOptions(config.ClickHouse{
		Host:        "ch.internal",
		NativePort:  9440,
		Database:    "perf",
		Username:    "reader",
		Password:    "pw",
		DialTimeout: 3 * time.Second,
		ReadTimeout: 90 * time.Second,
	})

	assert.Equal(t, []string{"ch.internal:9440"}, opts.Addr)
	assert.Equal(t, "perf", opts.Auth.Database)
	assert.Equal(t, "reader", opts.Auth.Username)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)
	assert.Equal(t, 90*time.Second, opts.ReadTimeout)
	assert.Equal(t, clickhouse.CompressionLZ4, opts.Compression.Method)
}
