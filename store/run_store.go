package store

import (
	"context"
	"database/sql"
	"fmt"

	"pageperf/api/models"
)

// RunStore records every generated report for audit and comparison.
type RunStore struct {
	db *sql.DB
}

func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

func (s *RunStore) InsertRun(ctx context.Context, run models.ReportRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO report_runs (
			id, previous_start, current_start, window_days,
			previous_events, current_events, url_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`,
		run.ID, run.PreviousStart, run.CurrentStart, run.WindowDays,
		run.PreviousEvents, run.CurrentEvents, run.URLCount, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report run: %w", err)
	}
	return nil
}

func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]models.ReportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, previous_start, current_start, window_days,
			previous_events, current_events, url_count, created_at
		FROM report_runs
		ORDER BY created_at DESC
		LIMIT $1;
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query report runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ReportRun
	for rows.Next() {
		var r models.ReportRun
		if err := rows.Scan(
			&r.ID, &r.PreviousStart, &r.CurrentStart, &r.WindowDays,
			&r.PreviousEvents, &r.CurrentEvents, &r.URLCount, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report runs: %w", err)
	}
	return runs, nil
}
