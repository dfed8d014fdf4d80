// Package rules implements the rule engine: a registry of independent
// predicates over normalized syntax trees, each yielding zero or more
// issues. Rules never mutate the tree and never see each other's output.
package rules

import (
	"sort"

	"github.com/reviewrabbit/rrscan/domain"
	"github.com/reviewrabbit/rrscan/internal/parser"
)

// Rule identifiers. The last four are reserved: they tag synthetic issues
// emitted by the analyzer and engine, never by a registered rule.
const (
	RuleCommandInjection    = "command_injection"
	RuleSQLInjection        = "sql_injection"
	RulePathTraversal       = "path_traversal"
	RuleHardcodedSecret     = "hardcoded_secret"
	RuleWeakRandom          = "weak_random"
	RuleLongFunction        = "long_function"
	RuleTooManyParams       = "too_many_params"
	RuleDeepNesting         = "deep_nesting"
	RuleBareExcept          = "bare_except_equivalent"
	RuleResourceLeak        = "resource_leak"
	RuleInfiniteLoop        = "infinite_loop"
	RuleTodoComment         = "todo_comment"
	RuleUnusedImport        = "unused_import"
	RuleMagicString         = "magic_string"
	RuleSyntaxError         = "syntax_error"
	RuleExecutionFailed     = "rule_execution_failed"
	RuleFileTooLarge        = "file_too_large"
	RuleFileAccess          = "file_access_error"
)

// Thresholds holds the tunable limits quality and best-practice rules
// compare against.
type Thresholds struct {
	MaxFunctionStatements int
	MaxParameters         int
	MaxNestingDepth       int
	MagicStringRepeats    int
}

// DefaultThresholds returns the limits used when no configuration is given
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxFunctionStatements: 50,
		MaxParameters:         7,
		MaxNestingDepth:       4,
		MagicStringRepeats:    3,
	}
}

// Context carries everything a rule may inspect for one file
type Context struct {
	FilePath   string
	Tree       *parser.Node
	Source     []byte
	Thresholds Thresholds
}

// Rule is a named predicate over a syntax tree. Implementations must be
// stateless: Check may run concurrently for different files.
type Rule interface {
	ID() string
	Category() domain.Category
	DefaultSeverity() domain.Severity
	Check(ctx *Context) []domain.Issue
}

var registry = map[string]Rule{}

func register(r Rule) {
	registry[r.ID()] = r
}

func init() {
	register(commandInjectionRule{})
	register(sqlInjectionRule{})
	register(pathTraversalRule{})
	register(hardcodedSecretRule{})
	register(weakRandomRule{})
	register(longFunctionRule{})
	register(tooManyParamsRule{})
	register(deepNestingRule{})
	register(bareExceptRule{})
	register(resourceLeakRule{})
	register(infiniteLoopRule{})
	register(todoCommentRule{})
	register(unusedImportRule{})
	register(magicStringRule{})
}

// All returns every registered rule sorted by id
func All() []Rule {
	rules := make([]Rule, 0, len(registry))
	for _, r := range registry {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID() < rules[j].ID() })
	return rules
}

// Lookup returns the rule registered under id
func Lookup(id string) (Rule, bool) {
	r, ok := registry[id]
	return r, ok
}

// IsKnownRuleID reports whether id names a registered or reserved rule
func IsKnownRuleID(id string) bool {
	switch id {
	case RuleSyntaxError, RuleExecutionFailed, RuleFileTooLarge, RuleFileAccess:
		return true
	}
	_, ok := registry[id]
	return ok
}

// IDs returns all registered rule ids sorted
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// issueAt builds an issue for rule r at node n's position
func issueAt(r Rule, ctx *Context, n *parser.Node, message, fix string) domain.Issue {
	return domain.Issue{
		RuleID:   r.ID(),
		Category: r.Category(),
		Severity: r.DefaultSeverity(),
		FilePath: ctx.FilePath,
		Line:     n.Location.StartLine,
		Column:   n.Location.StartCol,
		Message:  message,
		Fix:      fix,
	}
}
