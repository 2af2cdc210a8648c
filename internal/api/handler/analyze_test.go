package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abaplens/abaplens/internal/ai"
	"github.com/abaplens/abaplens/internal/analysis"
	"github.com/abaplens/abaplens/internal/api/handler"
	"github.com/abaplens/abaplens/pkg/models"
	"github.com/stretchr/testify/assert"
)

type stubAnalyzer struct {
	out    *analysis.Outcome
	err    error
	called bool
	code   string
}

func (s *stubAnalyzer) Analyze(_ context.Context, code string) (*analysis.Outcome, error) {
	s.called = true
	s.code = code
	return s.out, s.err
}

func postAnalyze(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestAnalyzeHandler_Success(t *testing.T) {
	svc := &stubAnalyzer{out: &analysis.Outcome{Result: models.AnalysisResult{
		Compatibility:   "Full",
		Issues:          []string{},
		Recommendations: []string{"none"},
		ConvertedCode:   "WRITE 1.",
	}}}
	h := handler.NewAnalyzeHandler(svc, 1<<20)

	w := postAnalyze(h, `{"code":"WRITE 1."}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "WRITE 1.", svc.code)
	assert.JSONEq(t, `{"analysis":{"compatibility":"Full","issues":[],"recommendations":["none"],"converted_code":"WRITE 1."}}`, w.Body.String())
}

func TestAnalyzeHandler_BadInputs(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing code", `{}`},
		{"empty code", `{"code":""}`},
		{"null code", `{"code":null}`},
		{"numeric code", `{"code":42}`},
		{"not json", `code=WRITE`},
		{"empty body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubAnalyzer{}
			w := postAnalyze(handler.NewAnalyzeHandler(svc, 1<<20), tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"ABAP code is required"}`, w.Body.String())
			assert.False(t, svc.called)
		})
	}
}

func TestAnalyzeHandler_BodyTooLarge(t *testing.T) {
	svc := &stubAnalyzer{}
	h := handler.NewAnalyzeHandler(svc, 32)

	w := postAnalyze(h, fmt.Sprintf(`{"code":%q}`, strings.Repeat("X", 100)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"error":"Request body too large"}`, w.Body.String())
	assert.False(t, svc.called)
}

func TestAnalyzeHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "empty reply",
			err:    analysis.ErrEmptyResponse,
			status: http.StatusInternalServerError,
			body:   `{"error":"Empty JSON response from analyzer"}`,
		},
		{
			name:   "incomplete reply",
			err:    analysis.ErrIncompleteAnalysis,
			status: http.StatusInternalServerError,
			body:   `{"error":"Incomplete analysis data"}`,
		},
		{
			name:   "upstream failure",
			err:    &analysis.UpstreamError{Provider: "openai", Err: fmt.Errorf("%w: 401 invalid api key", ai.ErrProviderUnavailable)},
			status: http.StatusInternalServerError,
			body:   `{"error":"Failed to analyze ABAP code: ai provider unavailable: 401 invalid api key"}`,
		},
		{
			name:   "parse failure",
			err:    &analysis.ParseError{Err: errors.New("unexpected end of JSON input")},
			status: http.StatusInternalServerError,
			body:   `{"error":"Failed to analyze ABAP code: unexpected end of JSON input"}`,
		},
		{
			name:   "input rejected by service",
			err:    analysis.ErrCodeRequired,
			status: http.StatusBadRequest,
			body:   `{"error":"ABAP code is required"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewAnalyzeHandler(&stubAnalyzer{err: tt.err}, 1<<20)

			w := postAnalyze(h, `{"code":"WRITE 1."}`)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
