package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/abaplens/abaplens/pkg/models"
	"github.com/google/uuid"
)

// Sentinel errors for transport failures.
var (
	ErrServerUnreachable = errors.New("abaplens server unreachable")
	ErrServerTimeout     = errors.New("abaplens server timeout")
)

// APIError is a non-2xx reply carrying the server's {"error": ...} message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// HistoryPage is one page of GET /analyses.
type HistoryPage struct {
	Data []models.AnalysisRecord `json:"data"`
	Meta struct {
		Page    int  `json:"page"`
		Limit   int  `json:"limit"`
		Total   int  `json:"total"`
		HasNext bool `json:"has_next"`
	} `json:"meta"`
}

// HTTPClient talks to an ABAPLens server.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New creates a client for the server at baseURL. An empty apiKey sends no
// Authorization header.
func New(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Analyze submits code to POST /analyze.
func (c *HTTPClient) Analyze(ctx context.Context, code string) (*models.AnalysisResult, error) {
	body, err := json.Marshal(models.AnalysisRequest{Code: code})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	var out models.AnalysisResponse
	if err := c.do(ctx, http.MethodPost, "/analyze", bytes.NewReader(body), &out); err != nil {
		return nil, err
	}
	return &out.Analysis, nil
}

// ListHistory fetches one page of recorded analyses.
func (c *HTTPClient) ListHistory(ctx context.Context, page, limit int) (*HistoryPage, error) {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	path := "/analyses"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var out HistoryPage
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetHistory fetches one recorded analysis.
func (c *HTTPClient) GetHistory(ctx context.Context, id uuid.UUID) (*models.AnalysisRecord, error) {
	var out struct {
		Record models.AnalysisRecord `json:"analysis_record"`
	}
	if err := c.do(ctx, http.MethodGet, "/analyses/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out.Record, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body *bytes.Reader, out any) error {
	var httpReq *http.Request
	var err error
	if body != nil {
		httpReq, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	} else {
		httpReq, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrServerTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrServerTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrServerUnreachable, err)
}
