package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/abaplens/abaplens/internal/analysis"
	mw "github.com/abaplens/abaplens/internal/api/middleware"
	"github.com/abaplens/abaplens/internal/api/response"
	"github.com/abaplens/abaplens/pkg/models"
)

const (
	msgCodeRequired  = "ABAP code is required"
	msgBodyTooLarge  = "Request body too large"
	msgEmptyResponse = "Empty JSON response from analyzer"
	msgIncomplete    = "Incomplete analysis data"
	msgAnalyzePrefix = "Failed to analyze ABAP code: "
)

// Analyzer defines the interface the analyze handler depends on.
type Analyzer interface {
	Analyze(ctx context.Context, code string) (*analysis.Outcome, error)
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /analyze.
func NewAnalyzeHandler(svc Analyzer, maxBodyBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

		var req struct {
			Code any `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Error(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
				return
			}
			response.Error(w, http.StatusBadRequest, msgCodeRequired)
			return
		}

		code, ok := req.Code.(string)
		if !ok || code == "" {
			response.Error(w, http.StatusBadRequest, msgCodeRequired)
			return
		}

		out, err := svc.Analyze(r.Context(), code)
		if err != nil {
			status, msg := analyzeError(err)
			if status >= http.StatusInternalServerError {
				slog.Warn("analyze request failed",
					"request_id", mw.GetRequestID(r),
					"kind", analysis.ErrorKind(err),
					"status", status,
				)
			}
			response.Error(w, status, msg)
			return
		}

		response.JSON(w, http.StatusOK, models.AnalysisResponse{Analysis: out.Result})
	}
}

// analyzeError maps the service error taxonomy onto the public contract.
// Upstream and parse failures share the generic 500 message.
func analyzeError(err error) (int, string) {
	switch {
	case errors.Is(err, analysis.ErrCodeRequired):
		return http.StatusBadRequest, msgCodeRequired
	case errors.Is(err, analysis.ErrEmptyResponse):
		return http.StatusInternalServerError, msgEmptyResponse
	case errors.Is(err, analysis.ErrIncompleteAnalysis):
		return http.StatusInternalServerError, msgIncomplete
	default:
		return http.StatusInternalServerError, msgAnalyzePrefix + err.Error()
	}
}
