package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/abaplens/abaplens/internal/api/response"
	"github.com/abaplens/abaplens/internal/store"
	"github.com/abaplens/abaplens/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// HistoryReader is the read side of the analysis history store.
type HistoryReader interface {
	GetAnalysisRecord(ctx context.Context, id uuid.UUID) (*models.AnalysisRecord, error)
	ListAnalysisRecords(ctx context.Context, f store.RecordFilter) ([]*models.AnalysisRecord, int, error)
}

// NewListAnalysesHandler returns an http.HandlerFunc for GET /analyses.
// A nil reader means history is disabled.
func NewListAnalysesHandler(reader HistoryReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reader == nil {
			response.Error(w, http.StatusNotFound, "History is not enabled")
			return
		}

		q := r.URL.Query()
		page := queryInt(q.Get("page"), 1)
		if page < 1 {
			page = 1
		}
		limit := queryInt(q.Get("limit"), defaultPageLimit)
		if limit < 1 {
			limit = defaultPageLimit
		}
		if limit > maxPageLimit {
			limit = maxPageLimit
		}

		outcome := q.Get("outcome")
		switch outcome {
		case "", models.OutcomeOK, models.OutcomeFallback, models.OutcomeError:
		default:
			response.Error(w, http.StatusBadRequest, "outcome must be one of ok, fallback, error")
			return
		}

		records, total, err := reader.ListAnalysisRecords(r.Context(), store.RecordFilter{
			Outcome: outcome,
			Page:    page,
			Limit:   limit,
		})
		if err != nil {
			slog.Error("list analyses failed", "error", err)
			response.Error(w, http.StatusInternalServerError, "Failed to list analyses")
			return
		}
		if records == nil {
			records = []*models.AnalysisRecord{}
		}

		response.Collection(w, records, response.NewPaginationMeta(page, limit, total))
	}
}

// NewGetAnalysisHandler returns an http.HandlerFunc for GET /analyses/{id}.
func NewGetAnalysisHandler(reader HistoryReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reader == nil {
			response.Error(w, http.StatusNotFound, "History is not enabled")
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid analysis id")
			return
		}

		rec, err := reader.GetAnalysisRecord(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "Analysis not found")
				return
			}
			slog.Error("get analysis failed", "id", id, "error", err)
			response.Error(w, http.StatusInternalServerError, "Failed to load analysis")
			return
		}

		response.JSON(w, http.StatusOK, map[string]any{"analysis_record": rec})
	}
}

func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
