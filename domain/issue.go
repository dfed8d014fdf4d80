package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Severity ranks an issue's importance. Lower value means more severe.
type Severity int

const (
	SeverityCritical Severity = 1
	SeverityHigh     Severity = 2
	SeverityMedium   Severity = 3
	SeverityLow      Severity = 4
	SeverityInfo     Severity = 5
)

var severityNames = map[Severity]string{
	SeverityCritical: "critical",
	SeverityHigh:     "high",
	SeverityMedium:   "medium",
	SeverityLow:      "low",
	SeverityInfo:     "info",
}

// String returns the lowercase severity name
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// IsValid reports whether s is one of the five defined levels
func (s Severity) IsValid() bool {
	_, ok := severityNames[s]
	return ok
}

// ParseSeverity converts a severity name to its Severity value
func ParseSeverity(name string) (Severity, error) {
	for sev, n := range severityNames {
		if n == name {
			return sev, nil
		}
	}
	return 0, fmt.Errorf("unknown severity: %q", name)
}

// MarshalJSON encodes the severity as its name
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity from its name
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	sev, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// MarshalYAML encodes the severity as its name
func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Category classifies what kind of problem an issue reports
type Category string

const (
	CategorySyntax        Category = "syntax"
	CategorySecurity      Category = "security"
	CategoryQuality       Category = "quality"
	CategoryBug           Category = "bug"
	CategoryDocumentation Category = "documentation"
	CategoryBestPractice  Category = "best_practice"
)

// Issue represents a single rule violation. Issues are immutable once created.
type Issue struct {
	RuleID   string   `json:"rule_id" yaml:"rule_id"`
	Category Category `json:"category" yaml:"category"`
	Severity Severity `json:"severity" yaml:"severity"`
	FilePath string   `json:"file_path" yaml:"file_path"`
	Line     int      `json:"line" yaml:"line"`
	Column   int      `json:"column" yaml:"column"`
	Message  string   `json:"message" yaml:"message"`
	Fix      string   `json:"fix,omitempty" yaml:"fix,omitempty"`
}

// SortIssues orders issues by (severity, line, column, rule id).
// The ordering is deterministic for identical inputs regardless of the
// order issues were produced in.
func SortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Severity != b.Severity {
			return a.Severity < b.Severity
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.RuleID < b.RuleID
	})
}

// CountBySeverity tallies issues per severity name
func CountBySeverity(issues []Issue) map[string]int {
	counts := make(map[string]int)
	for _, issue := range issues {
		counts[issue.Severity.String()]++
	}
	return counts
}
