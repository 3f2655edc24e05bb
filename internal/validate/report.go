package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Report is the persisted form of a validation run. Like the in-memory
// results it is an audit artifact, not authoritative state.
type Report struct {
	ReportID    string    `json:"report_id"`
	GeneratedAt time.Time `json:"generated_at"`
	RegistryRun string    `json:"registry_run_id,omitempty"`
	Results     Results   `json:"results"`
}

// NewReport wraps results into a report with a fresh id.
func NewReport(registryRunID string, results *Results) Report {
	return Report{
		ReportID:    uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		RegistryRun: registryRunID,
		Results:     *results,
	}
}

// WriteReport writes the report as JSON, overwriting any existing file.
func WriteReport(path string, report Report) error {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling validation report: %w", err)
	}
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return fmt.Errorf("writing validation report: %w", err)
	}
	return nil
}

// FormatResults renders results for console output. Failed checks come
// first; passed and skipped checks appear in verbose mode.
func FormatResults(results *Results, verbose bool) string {
	var sb strings.Builder

	sb.WriteString(results.Summary())
	sb.WriteString("\n")

	if results.FailedCount > 0 {
		sb.WriteString("\nFAILED CHECKS:\n")
		for _, r := range results.Failed() {
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", r.Name))
			sb.WriteString(fmt.Sprintf("    Description: %s\n", r.Description))
			sb.WriteString(fmt.Sprintf("    Expected:    %s\n", r.Expected))
			sb.WriteString(fmt.Sprintf("    Actual:      %s\n", r.Actual))
		}
	}

	if verbose {
		sb.WriteString("\nALL CHECKS:\n")
		for _, r := range results.Results {
			marker := "✓"
			switch r.Status {
			case StatusFail:
				marker = "✗"
			case StatusSkip:
				marker = "-"
			}
			sb.WriteString(fmt.Sprintf("  %s %-28s %s | %s\n", marker, r.Name, r.Expected, r.Actual))
		}
	}
	return sb.String()
}
