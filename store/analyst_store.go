package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"pageperf/api/models"
)

var (
	ErrAnalystNotFound = errors.New("analyst not found")
	ErrAnalystExists   = errors.New("analyst already exists")
)

const uniqueViolation = "23505"

type AnalystStore struct {
	db *sql.DB
}

func NewAnalystStore(db *sql.DB) *AnalystStore {
	return &AnalystStore{db: db}
}

func (s *AnalystStore) CreateAnalyst(ctx context.Context, email string, hashedPassword []byte) (*models.Analyst, error) {
	a := &models.Analyst{}
	query := `
		INSERT INTO analysts (email, hashed_password)
		VALUES ($1, $2)
		RETURNING id, email, created_at, updated_at;
	`
	err := s.db.QueryRowContext(ctx, query, email, hashedPassword).Scan(
		&a.ID,
		&a.Email,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", ErrAnalystExists, email)
		}
		return nil, fmt.Errorf("failed to create analyst: %w", err)
	}

	slog.Info("analyst created", "id", a.ID, "email", a.Email)
	return a, nil
}

func (s *AnalystStore) GetAnalystByEmail(ctx context.Context, email string) (*models.Analyst, error) {
	a := &models.Analyst{}
	query := `
		SELECT id, email, hashed_password, created_at, updated_at
		FROM analysts
		WHERE email = $1;
	`
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&a.ID,
		&a.Email,
		&a.HashedPassword,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrAnalystNotFound, email)
		}
		return nil, fmt.Errorf("failed to get analyst by email: %w", err)
	}

	return a, nil
}
