package domain

import (
	"context"
	"io"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText     OutputFormat = "text"
	OutputFormatJSON     OutputFormat = "json"
	OutputFormatYAML     OutputFormat = "yaml"
	OutputFormatMarkdown OutputFormat = "markdown"
	OutputFormatHTML     OutputFormat = "html"
)

// AnalyzeRequest represents a request for static analysis of a file tree
type AnalyzeRequest struct {
	// Root path to analyze (file or directory)
	Path string

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	ShowDetails  bool

	// File selection
	IncludePatterns []string
	ExcludePatterns []string
	MaxFiles        int
	MaxFileSize     int64

	// Rule selection
	EnabledRules      []string
	SeverityOverrides map[string]Severity

	// Configuration
	ConfigPath string
}

// FileResult is the per-file outcome of analysis. A result is exactly one
// of {failure, success}: when Failure is non-empty the file could not be
// analyzed and Issues holds the single synthetic issue describing why;
// otherwise Issues and Metrics hold the full analysis output.
type FileResult struct {
	FilePath string   `json:"file_path" yaml:"file_path"`
	Issues   []Issue  `json:"issues" yaml:"issues"`
	Metrics  []Metric `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Failure  string   `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// Failed reports whether this result records a failure instead of a
// successful analysis
func (r FileResult) Failed() bool {
	return r.Failure != ""
}

// AnalysisSummary provides aggregate statistics over all file results
type AnalysisSummary struct {
	FilesConsidered  int            `json:"files_considered" yaml:"files_considered"`
	FilesAnalyzed    int            `json:"files_analyzed" yaml:"files_analyzed"`
	TotalIssues      int            `json:"total_issues" yaml:"total_issues"`
	IssuesBySeverity map[string]int `json:"issues_by_severity" yaml:"issues_by_severity"`
	DurationMs       int64          `json:"duration_ms" yaml:"duration_ms"`
}

// AnalysisResult is the aggregate outcome of one analysis invocation.
// It is built once by the analyzer service and read-only thereafter.
type AnalysisResult struct {
	Files   []FileResult    `json:"files" yaml:"files"`
	Summary AnalysisSummary `json:"summary" yaml:"summary"`

	// Non-fatal problems encountered during the run
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Metadata
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Version     string `json:"version" yaml:"version"`
}

// AllIssues returns every issue across all file results, preserving the
// per-file ordering
func (r *AnalysisResult) AllIssues() []Issue {
	var issues []Issue
	for _, f := range r.Files {
		issues = append(issues, f.Issues...)
	}
	return issues
}

// AnalyzerService defines the core business logic for static analysis
type AnalyzerService interface {
	// Analyze walks the request's root path and analyzes every matched file
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalysisResult, error)

	// AnalyzeFile analyzes a single source file
	AnalyzeFile(ctx context.Context, filePath string, req AnalyzeRequest) (*FileResult, error)
}

// OutputFormatter defines the interface for rendering analysis results
type OutputFormatter interface {
	Write(result *AnalysisResult, format OutputFormat, writer io.Writer) error
}

// ProgressManager manages progress reporting for long-running operations
type ProgressManager interface {
	StartTask(description string, total int) TaskProgress
	IsInteractive() bool
	Close()
}

// TaskProgress tracks progress of a single task
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}
