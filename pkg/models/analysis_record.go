package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// AnalysisRecord is a persisted history entry for one /analyze call.
// The submitted code itself is not stored, only its sha256 hash.
type AnalysisRecord struct {
	ID              uuid.UUID `db:"id"              json:"id"`
	CodeHash        string    `db:"code_hash"       json:"code_hash"`
	Provider        string    `db:"provider"        json:"provider"`
	Model           string    `db:"model"           json:"model"`
	Outcome         string    `db:"outcome"         json:"outcome"`
	Compatibility   string    `db:"compatibility"   json:"compatibility,omitempty"`
	Issues          []string  `db:"issues"          json:"issues"`
	Recommendations []string  `db:"recommendations" json:"recommendations"`
	ConvertedCode   string    `db:"converted_code"  json:"converted_code,omitempty"`
	ErrorMessage    *string   `db:"error_message"   json:"error_message,omitempty"`
	DurationMS      int64     `db:"duration_ms"     json:"duration_ms"`
	CreatedAt       time.Time `db:"created_at"      json:"created_at"`
}
