package service

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reviewrabbit/rrscan/domain"
)

// OutputFormatterImpl implements the OutputFormatter interface
type OutputFormatterImpl struct {
	// ShowDetails controls whether per-file metrics appear in text output
	ShowDetails bool
}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter(showDetails bool) *OutputFormatterImpl {
	return &OutputFormatterImpl{ShowDetails: showDetails}
}

// WriteJSON writes data as indented JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Write renders the analysis result in the specified format
func (f *OutputFormatterImpl) Write(result *domain.AnalysisResult, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, result)
	case domain.OutputFormatYAML:
		return yaml.NewEncoder(writer).Encode(result)
	case domain.OutputFormatText:
		return f.writeText(result, writer)
	case domain.OutputFormatMarkdown:
		return f.writeMarkdown(result, writer)
	case domain.OutputFormatHTML:
		return f.writeHTML(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

var severityOrder = []domain.Severity{
	domain.SeverityCritical,
	domain.SeverityHigh,
	domain.SeverityMedium,
	domain.SeverityLow,
	domain.SeverityInfo,
}

func (f *OutputFormatterImpl) writeText(result *domain.AnalysisResult, writer io.Writer) error {
	fmt.Fprintf(writer, "rrscan %s — analyzed %d of %d files in %dms\n\n",
		result.Version, result.Summary.FilesAnalyzed, result.Summary.FilesConsidered, result.Summary.DurationMs)

	for _, file := range result.Files {
		if len(file.Issues) == 0 && !f.ShowDetails {
			continue
		}
		fmt.Fprintf(writer, "%s\n", file.FilePath)
		if file.Failed() {
			fmt.Fprintf(writer, "  analysis failed: %s\n", file.Failure)
		}
		for _, issue := range file.Issues {
			fmt.Fprintf(writer, "  %d:%d  %-8s %-22s %s\n",
				issue.Line, issue.Column, issue.Severity, issue.RuleID, issue.Message)
			if issue.Fix != "" && f.ShowDetails {
				fmt.Fprintf(writer, "           fix: %s\n", issue.Fix)
			}
		}
		if f.ShowDetails && len(file.Metrics) > 0 {
			fmt.Fprintf(writer, "  metrics:\n")
			for _, m := range fileScopedMetrics(file.Metrics) {
				fmt.Fprintf(writer, "    %-22s %s\n", m.Name, formatMetricValue(m.Value))
			}
		}
		fmt.Fprintln(writer)
	}

	fmt.Fprintf(writer, "Summary: %d issues", result.Summary.TotalIssues)
	if result.Summary.TotalIssues > 0 {
		parts := make([]string, 0, len(severityOrder))
		for _, sev := range severityOrder {
			if n := result.Summary.IssuesBySeverity[sev.String()]; n > 0 {
				parts = append(parts, fmt.Sprintf("%d %s", n, sev))
			}
		}
		fmt.Fprintf(writer, " (%s)", strings.Join(parts, ", "))
	}
	fmt.Fprintln(writer)

	for _, warning := range result.Warnings {
		fmt.Fprintf(writer, "warning: %s\n", warning)
	}
	return nil
}

func (f *OutputFormatterImpl) writeMarkdown(result *domain.AnalysisResult, writer io.Writer) error {
	fmt.Fprintf(writer, "# rrscan report\n\n")
	fmt.Fprintf(writer, "Generated %s by rrscan %s.\n\n", result.GeneratedAt, result.Version)

	fmt.Fprintf(writer, "## Summary\n\n")
	fmt.Fprintf(writer, "| | |\n|---|---|\n")
	fmt.Fprintf(writer, "| Files considered | %d |\n", result.Summary.FilesConsidered)
	fmt.Fprintf(writer, "| Files analyzed | %d |\n", result.Summary.FilesAnalyzed)
	fmt.Fprintf(writer, "| Total issues | %d |\n", result.Summary.TotalIssues)
	for _, sev := range severityOrder {
		if n := result.Summary.IssuesBySeverity[sev.String()]; n > 0 {
			fmt.Fprintf(writer, "| %s | %d |\n", titleCase(sev.String()), n)
		}
	}
	fmt.Fprintf(writer, "| Duration | %dms |\n\n", result.Summary.DurationMs)

	if result.Summary.TotalIssues > 0 {
		fmt.Fprintf(writer, "## Issues\n\n")
		fmt.Fprintf(writer, "| File | Line | Severity | Rule | Message |\n")
		fmt.Fprintf(writer, "|------|------|----------|------|--------|\n")
		for _, file := range result.Files {
			for _, issue := range file.Issues {
				fmt.Fprintf(writer, "| %s | %d | %s | `%s` | %s |\n",
					file.FilePath, issue.Line, issue.Severity, issue.RuleID,
					strings.ReplaceAll(issue.Message, "|", "\\|"))
			}
		}
		fmt.Fprintln(writer)
	}

	if f.ShowDetails {
		fmt.Fprintf(writer, "## Metrics\n\n")
		fmt.Fprintf(writer, "| File | Metric | Value |\n")
		fmt.Fprintf(writer, "|------|--------|-------|\n")
		for _, file := range result.Files {
			for _, m := range fileScopedMetrics(file.Metrics) {
				fmt.Fprintf(writer, "| %s | %s | %s |\n", file.FilePath, m.Name, formatMetricValue(m.Value))
			}
		}
		fmt.Fprintln(writer)
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(writer, "## Warnings\n\n")
		for _, warning := range result.Warnings {
			fmt.Fprintf(writer, "- %s\n", warning)
		}
	}
	return nil
}

// fileScopedMetrics filters to file-level metrics in a stable name order
func fileScopedMetrics(metrics []domain.Metric) []domain.Metric {
	var out []domain.Metric
	for _, m := range metrics {
		if m.Function == "" {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatMetricValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
