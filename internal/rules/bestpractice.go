package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reviewrabbit/rrscan/domain"
	"github.com/reviewrabbit/rrscan/internal/parser"
)

// unusedImportRule flags imported names that are never referenced in the
// file. Underscore bindings and bare side-effect imports are exempt.
type unusedImportRule struct{}

func (unusedImportRule) ID() string                       { return RuleUnusedImport }
func (unusedImportRule) Category() domain.Category        { return domain.CategoryBestPractice }
func (unusedImportRule) DefaultSeverity() domain.Severity { return domain.SeverityLow }

func (r unusedImportRule) Check(ctx *Context) []domain.Issue {
	type binding struct {
		name string
		node *parser.Node
	}
	var bindings []binding
	ctx.Tree.Walk(func(n *parser.Node) bool {
		if n.Kind != parser.NodeImport {
			return true
		}
		if n.Name != "" && n.Name != "_" {
			bindings = append(bindings, binding{n.Name, n})
		}
		n.ForEachChild(func(child *parser.Node) {
			if child != nil && child.Kind == parser.NodeImport && child.Name != "" && child.Name != "_" {
				bindings = append(bindings, binding{child.Name, child})
			}
		})
		return false
	})
	if len(bindings) == 0 {
		return nil
	}

	referenced := map[string]bool{}
	ctx.Tree.Walk(func(n *parser.Node) bool {
		switch n.Kind {
		case parser.NodeImport:
			return false
		case parser.NodeIdentifier:
			referenced[n.Name] = true
		case parser.NodeAttribute:
			referenced[firstSegment(n.Name)] = true
		}
		return true
	})

	var issues []domain.Issue
	for _, b := range bindings {
		if !referenced[b.name] {
			issues = append(issues, issueAt(r, ctx, b.node,
				fmt.Sprintf("imported name %q is never used", b.name),
				"remove the unused import"))
		}
	}
	return issues
}

// magicStringRule flags literal strings repeated verbatim beyond the
// configured threshold. One issue is reported per distinct value, at its
// first occurrence.
type magicStringRule struct{}

func (magicStringRule) ID() string                       { return RuleMagicString }
func (magicStringRule) Category() domain.Category        { return domain.CategoryBestPractice }
func (magicStringRule) DefaultSeverity() domain.Severity { return domain.SeverityLow }

func (r magicStringRule) Check(ctx *Context) []domain.Issue {
	limit := ctx.Thresholds.MagicStringRepeats

	counts := map[string]int{}
	first := map[string]*parser.Node{}
	ctx.Tree.Walk(func(n *parser.Node) bool {
		if n.Kind != parser.NodeStringLiteral || n.Interpolated || len(n.Value) < 4 {
			return true
		}
		counts[n.Value]++
		if _, seen := first[n.Value]; !seen {
			first[n.Value] = n
		}
		return true
	})

	var repeated []string
	for value, count := range counts {
		if count > limit {
			repeated = append(repeated, value)
		}
	}
	sort.Strings(repeated)

	var issues []domain.Issue
	for _, value := range repeated {
		issues = append(issues, issueAt(r, ctx, first[value],
			fmt.Sprintf("string %q repeated %d times", truncateValue(value), counts[value]),
			"extract the value into a named constant"))
	}
	return issues
}

func truncateValue(s string) string {
	if len(s) <= 40 {
		return s
	}
	return strings.TrimSpace(s[:40]) + "..."
}
