package rules

import (
	"fmt"

	"github.com/reviewrabbit/rrscan/domain"
	"github.com/reviewrabbit/rrscan/internal/parser"
)

// bareExceptRule flags catch-all exception handlers with no type filter
// that do not re-raise. Swallowing every error hides real failures.
type bareExceptRule struct{}

func (bareExceptRule) ID() string                       { return RuleBareExcept }
func (bareExceptRule) Category() domain.Category        { return domain.CategoryBug }
func (bareExceptRule) DefaultSeverity() domain.Severity { return domain.SeverityHigh }

func (r bareExceptRule) Check(ctx *Context) []domain.Issue {
	var issues []domain.Issue
	ctx.Tree.Walk(func(n *parser.Node) bool {
		if n.Kind != parser.NodeExcept || n.Test != nil {
			return true
		}
		if rethrows(n) {
			return true
		}
		issues = append(issues, issueAt(r, ctx, n,
			"catch-all exception handler with no type filter",
			"catch the specific exception types you can handle"))
		return true
	})
	return issues
}

func rethrows(handler *parser.Node) bool {
	found := false
	handler.Walk(func(n *parser.Node) bool {
		if n.Kind == parser.NodeRaise {
			found = true
			return false
		}
		if n != handler && n.IsFunction() {
			return false
		}
		return true
	})
	return found
}

// Callee names that acquire a releasable resource
var resourceAcquirers = map[string]bool{
	"open":             true,
	"io.open":          true,
	"fs.open":          true,
	"fs.openSync":      true,
	"socket.socket":    true,
	"sqlite3.connect":  true,
	"psycopg2.connect": true,
}

// resourceLeakRule flags resource acquisition with no guaranteed release:
// not inside a with-block and not under a try with a finally clause.
type resourceLeakRule struct{}

func (resourceLeakRule) ID() string                       { return RuleResourceLeak }
func (resourceLeakRule) Category() domain.Category        { return domain.CategoryBug }
func (resourceLeakRule) DefaultSeverity() domain.Severity { return domain.SeverityHigh }

func (r resourceLeakRule) Check(ctx *Context) []domain.Issue {
	var issues []domain.Issue
	ctx.Tree.Walk(func(n *parser.Node) bool {
		callee := n.CalleeName()
		if n.Kind != parser.NodeCall || !isAcquirer(callee) {
			return true
		}
		if n.HasAncestor(parser.NodeWith, true) || underTryFinally(n) {
			return true
		}
		if target := assignedTarget(n); target != "" && hasCloseCall(scopeOf(n), target) {
			return true
		}
		issues = append(issues, issueAt(r, ctx, n,
			fmt.Sprintf("%s acquires a resource with no guaranteed release", callee),
			"use a with-block or release in a finally clause"))
		return true
	})
	return issues
}

func isAcquirer(callee string) bool {
	return resourceAcquirers[callee]
}

// assignedTarget returns the simple name the call's result is bound to
func assignedTarget(call *parser.Node) string {
	if p := call.Parent; p != nil && p.Kind == parser.NodeAssignment && p.Right == call {
		return targetName(p.Left)
	}
	return ""
}

// scopeOf returns the function the node belongs to, or the tree root
func scopeOf(n *parser.Node) *parser.Node {
	if fn := n.EnclosingFunction(); fn != nil {
		return fn
	}
	root := n
	for root.Parent != nil {
		root = root.Parent
	}
	return root
}

// hasCloseCall reports whether the scope contains a <target>.close() call
func hasCloseCall(scope *parser.Node, target string) bool {
	found := false
	scope.Walk(func(n *parser.Node) bool {
		if n.Kind == parser.NodeCall && n.CalleeName() == target+".close" {
			found = true
			return false
		}
		return true
	})
	return found
}

func underTryFinally(n *parser.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == parser.NodeTry && p.Finalizer != nil {
			return true
		}
		if p.Kind == parser.NodeFunction {
			return false
		}
	}
	return false
}

// infiniteLoopRule flags while loops with a constant-true condition and no
// reachable exit in the loop's own body. Best effort: a break behind a
// dynamic condition still counts as an exit, so false negatives are
// expected.
type infiniteLoopRule struct{}

func (infiniteLoopRule) ID() string                       { return RuleInfiniteLoop }
func (infiniteLoopRule) Category() domain.Category        { return domain.CategoryBug }
func (infiniteLoopRule) DefaultSeverity() domain.Severity { return domain.SeverityCritical }

func (r infiniteLoopRule) Check(ctx *Context) []domain.Issue {
	var issues []domain.Issue
	ctx.Tree.Walk(func(n *parser.Node) bool {
		if n.Kind != parser.NodeWhile || !isAlwaysTrue(n.Test) {
			return true
		}
		if loopHasExit(n) {
			return true
		}
		issues = append(issues, issueAt(r, ctx, n,
			"loop condition is always true and the body never exits",
			"add a break, return, or a condition that can become false"))
		return true
	})
	return issues
}

func isAlwaysTrue(test *parser.Node) bool {
	if test == nil {
		return false
	}
	switch test.Kind {
	case parser.NodeBoolLiteral:
		return test.Value == "true"
	case parser.NodeNumberLiteral:
		return test.Value != "0" && test.Value != "0.0"
	}
	return false
}

// loopHasExit looks for a break, return, or raise belonging to this loop.
// Breaks inside nested loops exit the inner loop only and are ignored;
// nested function bodies are ignored entirely.
func loopHasExit(loop *parser.Node) bool {
	found := false
	var descend func(n *parser.Node, inNestedLoop bool)
	descend = func(n *parser.Node, inNestedLoop bool) {
		n.ForEachChild(func(child *parser.Node) {
			if child == nil || found || child.IsFunction() {
				return
			}
			switch child.Kind {
			case parser.NodeBreak:
				if !inNestedLoop {
					found = true
				}
			case parser.NodeReturn, parser.NodeRaise:
				found = true
			}
			descend(child, inNestedLoop || child.IsLoop())
		})
	}
	descend(loop, false)
	return found
}
