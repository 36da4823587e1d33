package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lib/pq"
)

// ActiveURLStore holds the allow-list of pages confirmed to return a healthy status.
type ActiveURLStore struct {
	db *sql.DB
}

func NewActiveURLStore(db *sql.DB) *ActiveURLStore {
	return &ActiveURLStore{db: db}
}

func (s *ActiveURLStore) ListActiveURLs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url FROM active_urls ORDER BY url;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan active url: %w", err)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active urls: %w", err)
	}
	return urls, nil
}

// ReplaceActiveURLs swaps the whole allow-list in one transaction and returns
// how many distinct URLs were stored.
func (s *ActiveURLStore) ReplaceActiveURLs(ctx context.Context, urls []string) (int, error) {
	unique := dedupe(urls)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM active_urls;`); err != nil {
		return 0, fmt.Errorf("failed to clear active urls: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("active_urls", "url"))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare copy: %w", err)
	}
	for _, u := range unique {
		if _, err := stmt.ExecContext(ctx, u); err != nil {
			stmt.Close()
			return 0, fmt.Errorf("failed to copy url %s: %w", u, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return 0, fmt.Errorf("failed to flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return 0, fmt.Errorf("failed to close copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit active urls: %w", err)
	}

	slog.Info("active urls replaced", "count", len(unique))
	return len(unique), nil
}

func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
