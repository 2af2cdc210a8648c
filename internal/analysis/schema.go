package analysis

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abaplens/abaplens/pkg/models"
	"github.com/tmc/langchaingo/llms"
)

// Field is one key of the JSON object the model is asked to return.
type Field struct {
	Name string
	Type string
}

// Schema is the single source for the prompt sent to the model and the
// keys the sanitizer requires in its reply.
type Schema struct {
	Role             string
	Dimensions       []string
	Fields           []Field
	UserPromptPrefix string
	Fallback         models.AnalysisResult
}

// DefaultSchema asks for an S/4HANA migration review of ABAP code.
var DefaultSchema = Schema{
	Role: "You are an SAP ABAP and S/4HANA migration expert. Analyze the following ABAP code and provide:",
	Dimensions: []string{
		"Compatibility with S/4HANA.",
		"Deprecated functions or APIs.",
		"Suggested modern replacements.",
		"Performance optimizations for HANA.",
		"A refactored version of the code compatible with S/4HANA.",
	},
	Fields: []Field{
		{Name: "compatibility", Type: "string"},
		{Name: "issues", Type: "list of strings"},
		{Name: "recommendations", Type: "list of strings"},
		{Name: "converted_code", Type: "string (the refactored ABAP code)"},
	},
	UserPromptPrefix: "Analyze this ABAP code:\n\n",
	Fallback: models.AnalysisResult{
		Compatibility:   "Unknown",
		Issues:          []string{"Unable to parse the response as JSON."},
		Recommendations: []string{"Ensure the ABAP code input is correct."},
		ConvertedCode:   "N/A",
	},
}

// SystemPrompt renders the fixed instruction message.
func (s Schema) SystemPrompt() string {
	var b strings.Builder
	b.WriteString(s.Role)
	b.WriteString("\n")
	for i, d := range s.Dimensions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d)
	}
	b.WriteString("\nReturn the output as a JSON object with these fields:\n")
	for _, f := range s.Fields {
		fmt.Fprintf(&b, "%s: %s\n", f.Name, f.Type)
	}
	return b.String()
}

// UserPrompt wraps the submitted code.
func (s Schema) UserPrompt(code string) string {
	return s.UserPromptPrefix + code
}

// Messages builds the two-message exchange for one analysis.
func (s Schema) Messages(code string) []llms.MessageContent {
	return []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, s.SystemPrompt()),
		llms.TextParts(llms.ChatMessageTypeHuman, s.UserPrompt(code)),
	}
}

// RequiredFields returns the keys every parsed reply must carry.
func (s Schema) RequiredFields() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// FallbackResult returns a copy of the canned result for unparseable replies.
func (s Schema) FallbackResult() models.AnalysisResult {
	fb := s.Fallback
	fb.Issues = slices.Clone(fb.Issues)
	fb.Recommendations = slices.Clone(fb.Recommendations)
	return fb
}
