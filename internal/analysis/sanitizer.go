package analysis

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/abaplens/abaplens/pkg/models"
)

// Reply cleanup regexes compiled once at package init.
var (
	reJSONFence     = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n```")
	reAnyFence      = regexp.MustCompile("(?s)```(.*?)```")
	reTrailingComma = regexp.MustCompile(`,\s*([\]}])`)
)

// ValidateInput rejects a request before anything is sent upstream.
func ValidateInput(code string) error {
	if code == "" {
		return ErrCodeRequired
	}
	return nil
}

// Sanitizer recovers an AnalysisResult from free-form model output.
type Sanitizer struct {
	schema Schema
}

// NewSanitizer returns a Sanitizer that validates against schema.
func NewSanitizer(schema Schema) *Sanitizer {
	return &Sanitizer{schema: schema}
}

// Sanitize extracts, repairs, parses and validates the JSON object in raw.
//
// A reply that is not a JSON object at all yields the schema's fallback result
// with fallback set to true and a nil error. An empty candidate, a decode
// failure, or a missing required key is returned as an error.
func (s *Sanitizer) Sanitize(raw string) (result models.AnalysisResult, fallback bool, err error) {
	candidate := strings.TrimSpace(RemoveTrailingCommas(ExtractCandidate(raw)))

	if candidate == "" {
		return models.AnalysisResult{}, false, ErrEmptyResponse
	}
	if !strings.HasPrefix(candidate, "{") {
		return s.schema.FallbackResult(), true, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return models.AnalysisResult{}, false, &ParseError{Err: err}
	}
	for _, key := range s.schema.RequiredFields() {
		if _, ok := fields[key]; !ok {
			return models.AnalysisResult{}, false, ErrIncompleteAnalysis
		}
	}

	if err := json.Unmarshal([]byte(candidate), &result); err != nil {
		return models.AnalysisResult{}, false, &ParseError{Err: err}
	}
	return result, false, nil
}

// ExtractCandidate returns the content of the first ```json fenced block,
// else of the first fenced block of any kind, else the whole text, trimmed.
func ExtractCandidate(raw string) string {
	if m := reJSONFence.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := reAnyFence.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

// RemoveTrailingCommas deletes a comma directly before a closing brace or
// bracket, whitespace in between allowed.
func RemoveTrailingCommas(s string) string {
	return reTrailingComma.ReplaceAllString(s, "$1")
}
