// Package config reads process settings from the environment, loading .env first.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"pageperf/api/calculator"
)

// Report holds the defaults applied to every comparison run.
type Report struct {
	BaseDomain     string
	WindowDays     int
	TopChangeCount int
	CacheTTL       time.Duration

	// EventSource is "clickhouse" or "bucket"; ActiveURLSource is "postgres" or "bucket".
	EventSource     string
	ActiveURLSource string
}

// ClickHouse locates the warehouse holding page_performance_events.
type ClickHouse struct {
	Host        string
	NativePort  int
	Database    string
	Username    string
	Password    string
	DialTimeout time.Duration
	// ReadTimeout bounds a window fetch, which scans two full periods of events.
	ReadTimeout time.Duration
}

type Config struct {
	Port       string
	GinMode    string
	FEOrigin   string
	AuthToken  string
	JWTSecret  string
	TokenTTL   time.Duration
	Report     Report
	ClickHouse ClickHouse
}

// Load reads .env when present and then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		Port:      getEnv("PORT", "8080"),
		GinMode:   os.Getenv("GIN_MODE"),
		FEOrigin:  getEnv("FE_ORIGIN", "http://localhost:3000"),
		AuthToken: os.Getenv("AUTH_DEFAULT"),
		JWTSecret: os.Getenv("JWT_SECRET_KEY"),
		TokenTTL:  getDuration("JWT_TTL", 24*time.Hour),
		Report: Report{
			BaseDomain:     getEnv("REPORT_BASE_DOMAIN", calculator.DefaultBaseDomain),
			WindowDays:     getInt("REPORT_WINDOW_DAYS", calculator.DefaultWindowDays),
			TopChangeCount: getInt("REPORT_TOP_CHANGES", calculator.DefaultTopChangeCount),
			CacheTTL:       getDuration("REPORT_CACHE_TTL", time.Hour),

			EventSource:     getEnv("REPORT_EVENT_SOURCE", "clickhouse"),
			ActiveURLSource: getEnv("REPORT_ACTIVE_URL_SOURCE", "postgres"),
		},
		ClickHouse: ClickHouse{
			Host:        getEnv("CLICKHOUSE_HOST", "localhost"),
			NativePort:  getInt("CLICKHOUSE_NATIVE_PORT", 9000),
			Database:    getEnv("CLICKHOUSE_DB_NAME", "pageperf"),
			Username:    getEnv("CLICKHOUSE_USERNAME", "default"),
			Password:    os.Getenv("CLICKHOUSE_PASSWORD"),
			DialTimeout: getDuration("CLICKHOUSE_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout: getDuration("CLICKHOUSE_READ_TIMEOUT", 2*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		slog.Warn("invalid integer setting, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration setting, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}
