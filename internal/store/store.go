package store

import (
	"context"
	"errors"

	"github.com/abaplens/abaplens/pkg/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")

// Store is the data access interface for analysis history.
type Store interface {
	Ping(ctx context.Context) error

	CreateAnalysisRecord(ctx context.Context, rec *models.AnalysisRecord) error
	GetAnalysisRecord(ctx context.Context, id uuid.UUID) (*models.AnalysisRecord, error)
	ListAnalysisRecords(ctx context.Context, filter RecordFilter) ([]*models.AnalysisRecord, int, error)
}

type RecordFilter struct {
	Outcome string
	Page    int
	Limit   int
}

// offset returns the row offset for a 1-based page.
func (f RecordFilter) offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
