package domain

import "context"

// ReviewInput is the material handed to the review collaborator for one file
type ReviewInput struct {
	FilePath string
	Source   string
	Issues   []Issue
	Metrics  []Metric
}

// Suggestion is a single actionable recommendation from a review
type Suggestion struct {
	Line        int    `json:"line,omitempty" yaml:"line,omitempty"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Message     string `json:"message" yaml:"message"`
	CodeExample string `json:"code_example,omitempty" yaml:"code_example,omitempty"`
}

// Review is the outcome of one AI-assisted review. When the collaborator
// is unreachable or errors, Unavailable is set and the remaining fields
// are zero; the static analysis results are unaffected either way.
type Review struct {
	FilePath     string       `json:"file_path" yaml:"file_path"`
	OverallScore int          `json:"overall_score" yaml:"overall_score"`
	Summary      string       `json:"summary" yaml:"summary"`
	Suggestions  []Suggestion `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	TestCases    []string     `json:"test_cases,omitempty" yaml:"test_cases,omitempty"`

	Unavailable       bool   `json:"unavailable,omitempty" yaml:"unavailable,omitempty"`
	UnavailableReason string `json:"unavailable_reason,omitempty" yaml:"unavailable_reason,omitempty"`
}

// ReviewResponse bundles the static analysis result with the reviews that
// could be obtained for its files
type ReviewResponse struct {
	Analysis *AnalysisResult `json:"analysis" yaml:"analysis"`
	Reviews  []Review        `json:"reviews" yaml:"reviews"`
}

// Reviewer defines the external AI review collaborator. Implementations
// must treat the backing service as fallible: a degraded Review is returned
// in place of an error whenever the service cannot be reached.
type Reviewer interface {
	Review(ctx context.Context, input ReviewInput) Review
}
