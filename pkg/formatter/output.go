// Package formatter renders analyses for the terminal.
package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/abaplens/abaplens/pkg/models"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Display.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ValidFormat reports whether format is one Display understands.
func ValidFormat(format string) bool {
	switch format {
	case FormatHuman, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// NormalizeCompatibility maps free-form verdicts onto a fixed set of labels.
// Unknown verdicts get their first letter upper-cased and the rest lowered.
func NormalizeCompatibility(text string) string {
	norm := strings.ToLower(strings.TrimSpace(text))

	switch {
	case strings.Contains(norm, "partial"):
		return "Partial Compatibility"
	case strings.Contains(norm, "full"):
		return "Fully Compatible"
	case strings.Contains(norm, "incompatible"):
		return "Incompatible"
	}

	if text == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(text)
	return string(unicode.ToUpper(first)) + strings.ToLower(text[size:])
}

// Display writes the analysis to w in the given format.
func Display(w io.Writer, result models.AnalysisResult, format string) error {
	switch format {
	case FormatJSON:
		return displayJSON(w, models.AnalysisResponse{Analysis: result})
	case FormatYAML:
		return displayYAML(w, result)
	case FormatHuman:
		fallthrough
	default:
		displayHuman(w, result)
	}
	return nil
}

// DisplayValue writes any value as JSON or YAML, or via human when the
// format is human.
func DisplayValue(w io.Writer, v any, format string, human func(io.Writer)) error {
	switch format {
	case FormatJSON:
		return displayJSON(w, v)
	case FormatYAML:
		return displayYAML(w, v)
	default:
		human(w)
		return nil
	}
}

func displayJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func displayYAML(w io.Writer, v any) error {
	output, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprint(w, string(output))
	return nil
}

func displayHuman(w io.Writer, result models.AnalysisResult) {
	yellow := color.New(color.FgYellow, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)

	verdict := NormalizeCompatibility(result.Compatibility)
	compatibilityColor(verdict).Fprintf(w, "S/4HANA COMPATIBILITY: %s\n\n", verdict)

	if len(result.Issues) > 0 {
		yellow.Fprintln(w, "ISSUES FOUND:")
		for i, issue := range result.Issues {
			fmt.Fprintf(w, "   %d. %s\n", i+1, issue)
		}
		fmt.Fprintln(w)
	}

	if len(result.Recommendations) > 0 {
		cyan.Fprintln(w, "RECOMMENDATIONS:")
		for i, rec := range result.Recommendations {
			fmt.Fprintf(w, "   %d. %s\n", i+1, rec)
		}
		fmt.Fprintln(w)
	}

	if result.ConvertedCode != "" && result.ConvertedCode != "N/A" {
		white.Fprintln(w, "CONVERTED CODE:")
		for _, line := range strings.Split(strings.TrimRight(result.ConvertedCode, "\n"), "\n") {
			fmt.Fprintf(w, "   %s\n", color.GreenString(line))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintf(w, "%s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func compatibilityColor(verdict string) *color.Color {
	switch verdict {
	case "Fully Compatible":
		return color.New(color.FgGreen, color.Bold)
	case "Partial Compatibility":
		return color.New(color.FgYellow, color.Bold)
	case "Incompatible":
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgWhite, color.Bold)
	}
}
