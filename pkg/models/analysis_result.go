// Package models contains shared data models used across the ABAPLens codebase.
package models

// AnalysisRequest is the body of POST /analyze.
type AnalysisRequest struct {
	Code string `json:"code"`
}

// AnalysisResult is the structured S/4HANA migration analysis produced from
// a model reply. All four fields are required; a result is never built from
// a partial object.
type AnalysisResult struct {
	Compatibility   string   `json:"compatibility"   yaml:"compatibility"`
	Issues          []string `json:"issues"          yaml:"issues"`
	Recommendations []string `json:"recommendations" yaml:"recommendations"`
	ConvertedCode   string   `json:"converted_code"  yaml:"converted_code"`
}

// AnalysisResponse is the success body of POST /analyze.
type AnalysisResponse struct {
	Analysis AnalysisResult `json:"analysis"`
}
