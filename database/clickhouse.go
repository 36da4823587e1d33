package database

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/ClickHouse/clickhouse-go/v2"

	"pageperf/api/config"
)

type ClickHouseClient struct {
	Conn clickhouse.Conn
}

// clickHouseOptions maps the warehouse settings onto driver options.
func clickHouseOptions(cfg config.ClickHouse) *clickhouse.Options {
	return &clickhouse.Options{
		Addr: []string{net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.NativePort))},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{{Name: "pageperf-api", Version: "1.0.0"}},
		},
		Compression: &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: cfg.ReadTimeout,
	}
}

// NewClickHouseDB connects to the warehouse holding page_performance_events.
func NewClickHouseDB(ctx context.Context, cfg config.ClickHouse) (*ClickHouseClient, error) {
	options := clickHouseOptions(cfg)

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open ClickHouse %s: %w", options.Addr[0], err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse %s: %w", options.Addr[0], err)
	}

	slog.Info("connected to ClickHouse", "addr", options.Addr[0], "database", cfg.Database)
	return &ClickHouseClient{Conn: conn}, nil
}

func (c *ClickHouseClient) Close() {
	if c.Conn == nil {
		return
	}
	if err := c.Conn.Close(); err != nil {
		slog.Error("closing ClickHouse connection", "error", err)
		return
	}
	slog.Info("ClickHouse connection closed")
}
