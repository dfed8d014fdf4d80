package rules

import (
	"fmt"

	"github.com/reviewrabbit/rrscan/domain"
)

// Engine evaluates a fixed rule set against one file at a time. An Engine
// is immutable after construction and safe for concurrent use.
type Engine struct {
	rules     []Rule
	overrides map[string]domain.Severity
}

// NewEngine builds an engine running the named rules with the given
// severity overrides. A nil or empty enabled list means all registered
// rules; unknown ids in the list are ignored (configuration validation
// rejects them before an engine is built).
func NewEngine(enabled []string, overrides map[string]domain.Severity) *Engine {
	var selected []Rule
	if len(enabled) == 0 {
		selected = All()
	} else {
		want := make(map[string]bool, len(enabled))
		for _, id := range enabled {
			want[id] = true
		}
		for _, r := range All() {
			if want[r.ID()] {
				selected = append(selected, r)
			}
		}
	}
	return &Engine{rules: selected, overrides: overrides}
}

// Evaluate runs every enabled rule over the file and returns the merged
// issues sorted by (severity, line, column, rule id). A rule that panics
// is isolated: its issues are dropped for this file and a low-severity
// meta-issue records the failure.
func (e *Engine) Evaluate(ctx *Context) []domain.Issue {
	var issues []domain.Issue
	for _, r := range e.rules {
		found, err := e.runRule(r, ctx)
		if err != nil {
			issues = append(issues, domain.Issue{
				RuleID:   RuleExecutionFailed,
				Category: domain.CategoryBestPractice,
				Severity: domain.SeverityLow,
				FilePath: ctx.FilePath,
				Line:     1,
				Column:   0,
				Message:  fmt.Sprintf("rule %s failed on this file: %v", r.ID(), err),
			})
			continue
		}
		for _, issue := range found {
			if sev, ok := e.overrides[issue.RuleID]; ok {
				issue.Severity = sev
			}
			issues = append(issues, issue)
		}
	}

	domain.SortIssues(issues)
	return issues
}

func (e *Engine) runRule(r Rule, ctx *Context) (issues []domain.Issue, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			issues = nil
			err = fmt.Errorf("%v", rec)
		}
	}()
	return r.Check(ctx), nil
}
