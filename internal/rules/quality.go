package rules

import (
	"fmt"

	"github.com/reviewrabbit/rrscan/domain"
	"github.com/reviewrabbit/rrscan/internal/metrics"
	"github.com/reviewrabbit/rrscan/internal/parser"
)

// longFunctionRule flags functions whose statement count exceeds the
// configured ceiling.
type longFunctionRule struct{}

func (longFunctionRule) ID() string                       { return RuleLongFunction }
func (longFunctionRule) Category() domain.Category        { return domain.CategoryQuality }
func (longFunctionRule) DefaultSeverity() domain.Severity { return domain.SeverityMedium }

func (r longFunctionRule) Check(ctx *Context) []domain.Issue {
	limit := ctx.Thresholds.MaxFunctionStatements
	var issues []domain.Issue
	forEachFunction(ctx.Tree, func(fn *parser.Node) {
		count := statementCount(fn)
		if count > limit {
			issues = append(issues, issueAt(r, ctx, fn,
				fmt.Sprintf("function %s has %d statements (limit %d)", displayName(fn), count, limit),
				"split the function into smaller focused helpers"))
		}
	})
	return issues
}

// statementCount counts statement-level nodes in a function's own body,
// excluding nested function definitions
func statementCount(fn *parser.Node) int {
	count := 0
	var descend func(n *parser.Node)
	descend = func(n *parser.Node) {
		n.ForEachChild(func(child *parser.Node) {
			if child == nil || child.IsFunction() {
				return
			}
			if child.IsStatement() {
				count++
			}
			descend(child)
		})
	}
	descend(fn)
	return count
}

// tooManyParamsRule flags functions with a parameter list above the
// configured ceiling.
type tooManyParamsRule struct{}

func (tooManyParamsRule) ID() string                       { return RuleTooManyParams }
func (tooManyParamsRule) Category() domain.Category        { return domain.CategoryQuality }
func (tooManyParamsRule) DefaultSeverity() domain.Severity { return domain.SeverityMedium }

func (r tooManyParamsRule) Check(ctx *Context) []domain.Issue {
	limit := ctx.Thresholds.MaxParameters
	var issues []domain.Issue
	forEachFunction(ctx.Tree, func(fn *parser.Node) {
		if len(fn.Params) > limit {
			issues = append(issues, issueAt(r, ctx, fn,
				fmt.Sprintf("function %s takes %d parameters (limit %d)", displayName(fn), len(fn.Params), limit),
				"group related parameters into a single object"))
		}
	})
	return issues
}

// deepNestingRule flags functions whose control structures nest deeper
// than the configured ceiling.
type deepNestingRule struct{}

func (deepNestingRule) ID() string                       { return RuleDeepNesting }
func (deepNestingRule) Category() domain.Category        { return domain.CategoryQuality }
func (deepNestingRule) DefaultSeverity() domain.Severity { return domain.SeverityMedium }

func (r deepNestingRule) Check(ctx *Context) []domain.Issue {
	limit := ctx.Thresholds.MaxNestingDepth
	var issues []domain.Issue
	forEachFunction(ctx.Tree, func(fn *parser.Node) {
		depth := metrics.NestingDepth(fn)
		if depth > limit {
			issues = append(issues, issueAt(r, ctx, fn,
				fmt.Sprintf("function %s nests %d levels deep (limit %d)", displayName(fn), depth, limit),
				"flatten with early returns or extract the inner levels"))
		}
	})
	return issues
}

func forEachFunction(tree *parser.Node, fn func(*parser.Node)) {
	tree.Walk(func(n *parser.Node) bool {
		if n.IsFunction() {
			fn(n)
		}
		return true
	})
}

func displayName(fn *parser.Node) string {
	if fn.Name != "" {
		return fn.Name
	}
	return "<anonymous>"
}
