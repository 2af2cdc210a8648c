package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/abaplens/abaplens/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const recordColumns = `id, code_hash, provider, model, outcome, compatibility, issues, recommendations,
	converted_code, error_message, duration_ms, created_at`

func (s *PostgresStore) CreateAnalysisRecord(ctx context.Context, rec *models.AnalysisRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO analysis_records (`+recordColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID, rec.CodeHash, rec.Provider, rec.Model, rec.Outcome, rec.Compatibility,
		nonNil(rec.Issues), nonNil(rec.Recommendations), rec.ConvertedCode, rec.ErrorMessage,
		rec.DurationMS, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("create analysis record: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAnalysisRecord(ctx context.Context, id uuid.UUID) (*models.AnalysisRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM analysis_records WHERE id = $1`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) ListAnalysisRecords(ctx context.Context, filter RecordFilter) ([]*models.AnalysisRecord, int, error) {
	var total int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM analysis_records WHERE ($1 = '' OR outcome = $1)`,
		filter.Outcome,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count analysis records: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM analysis_records
		 WHERE ($1 = '' OR outcome = $1)
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		filter.Outcome, filter.Limit, filter.offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list analysis records: %w", err)
	}
	defer rows.Close()

	records := []*models.AnalysisRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan analysis record: %w", err)
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func scanRecord(row pgx.Row) (*models.AnalysisRecord, error) {
	var r models.AnalysisRecord
	if err := row.Scan(&r.ID, &r.CodeHash, &r.Provider, &r.Model, &r.Outcome, &r.Compatibility,
		&r.Issues, &r.Recommendations, &r.ConvertedCode, &r.ErrorMessage, &r.DurationMS, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ Store = (*PostgresStore)(nil)
