package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"pageperf/api/models"
)

var ErrCacheMiss = errors.New("report not cached")

const reportKeyPrefix = "perf_report:"

// ReportCache keeps computed reports in Redis keyed by their run parameters.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

func ReportKey(previous, current string, windowDays int) string {
	return fmt.Sprintf("%s%s:%s:%d", reportKeyPrefix, previous, current, windowDays)
}

func (c *ReportCache) GetReport(ctx context.Context, key string) (*models.Report, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read cached report %s: %w", key, err)
	}
	var r models.Report
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("failed to decode cached report %s: %w", key, err)
	}
	return &r, nil
}

func (c *ReportCache) PutReport(ctx context.Context, key string, r *models.Report) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report %s: %w", key, err)
	}
	return nil
}

// Invalidate drops every cached report. Callers run it after the events or the
// active URL list change.
func (c *ReportCache) Invalidate(ctx context.Context) error {
	var keys []string
	iter := c.client.Scan(ctx, 0, reportKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached reports: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to drop cached reports: %w", err)
	}
	slog.Info("cached reports invalidated", "count", len(keys))
	return nil
}
