package analysis

import (
	"errors"

	"github.com/abaplens/abaplens/internal/ai"
)

// Validation-tier errors: the request or the model reply is unusable.
var (
	ErrCodeRequired       = errors.New("abap code is required")
	ErrEmptyResponse      = errors.New("empty JSON response from analyzer")
	ErrIncompleteAnalysis = errors.New("incomplete analysis data")
)

// ParseError reports a reply that looked like a JSON object but did not decode.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// UpstreamError reports a failed call to the completion service.
// Err wraps one of the ai sentinel errors.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string { return e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }

// ErrorKind returns a short, bounded label for err, used in logs and metrics.
func ErrorKind(err error) string {
	var (
		parseErr    *ParseError
		upstreamErr *UpstreamError
	)
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrCodeRequired):
		return "input"
	case errors.Is(err, ErrEmptyResponse):
		return "empty"
	case errors.Is(err, ErrIncompleteAnalysis):
		return "incomplete"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &upstreamErr):
		if errors.Is(err, ai.ErrInferenceTimeout) {
			return "upstream_timeout"
		}
		if errors.Is(err, ai.ErrCanceled) {
			return "canceled"
		}
		return "upstream"
	default:
		return "internal"
	}
}
