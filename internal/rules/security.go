package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/reviewrabbit/rrscan/domain"
	"github.com/reviewrabbit/rrscan/internal/parser"
)

// Callee names treated as dynamic command execution primitives
var commandExecCallees = map[string]bool{
	"os.system":               true,
	"os.popen":                true,
	"subprocess.call":         true,
	"subprocess.run":          true,
	"subprocess.Popen":        true,
	"subprocess.check_output": true,
	"eval":                    true,
	"exec":                    true,
	"child_process.exec":      true,
	"child_process.execSync":  true,
	"cp.exec":                 true,
}

// commandInjectionRule flags dynamic command execution whose argument is
// not a plain literal. A constant command string is allowed; anything
// built from variables or interpolation is not.
type commandInjectionRule struct{}

func (commandInjectionRule) ID() string                       { return RuleCommandInjection }
func (commandInjectionRule) Category() domain.Category        { return domain.CategorySecurity }
func (commandInjectionRule) DefaultSeverity() domain.Severity { return domain.SeverityCritical }

func (r commandInjectionRule) Check(ctx *Context) []domain.Issue {
	var issues []domain.Issue
	ctx.Tree.Walk(func(n *parser.Node) bool {
		if n.Kind != parser.NodeCall {
			return true
		}
		callee := n.CalleeName()
		if !commandExecCallees[callee] && !strings.HasSuffix(callee, ".exec") {
			return true
		}
		for _, arg := range n.Arguments {
			if isTainted(arg) {
				issues = append(issues, issueAt(r, ctx, n,
					fmt.Sprintf("command execution via %s with dynamically built argument", callee),
					"pass arguments as a list and avoid shell interpolation"))
				break
			}
		}
		return true
	})
	return issues
}

// isTainted reports whether an expression can carry non-literal content
func isTainted(n *parser.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case parser.NodeStringLiteral:
		return n.Interpolated
	case parser.NodeNumberLiteral, parser.NodeBoolLiteral, parser.NodeNullLiteral:
		return false
	case parser.NodeBinaryOp:
		return isTainted(n.Left) || isTainted(n.Right)
	default:
		return true
	}
}

// Call names whose first argument is treated as a database query
var queryCallSuffixes = []string{".execute", ".executemany", ".query", ".raw"}

var sqlKeywords = regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|DROP|CREATE|ALTER)\b`)

// sqlInjectionRule flags query calls whose statement text is assembled by
// concatenation or interpolation instead of bound parameters.
type sqlInjectionRule struct{}

func (sqlInjectionRule) ID() string                       { return RuleSQLInjection }
func (sqlInjectionRule) Category() domain.Category        { return domain.CategorySecurity }
func (sqlInjectionRule) DefaultSeverity() domain.Severity { return domain.SeverityCritical }

func (r sqlInjectionRule) Check(ctx *Context) []domain.Issue {
	var issues []domain.Issue
	ctx.Tree.Walk(func(n *parser.Node) bool {
		if n.Kind != parser.NodeCall || !isQueryCall(n.CalleeName()) {
			return true
		}
		if len(n.Arguments) == 0 {
			return true
		}
		if stmt := n.Arguments[0]; isAssembledQuery(stmt) {
			issues = append(issues, issueAt(r, ctx, n,
				"SQL statement assembled from dynamic values",
				"use parameterized queries with placeholder bindings"))
		}
		return true
	})
	return issues
}

func isQueryCall(callee string) bool {
	for _, suffix := range queryCallSuffixes {
		if strings.HasSuffix(callee, suffix) {
			return true
		}
	}
	return false
}

// isAssembledQuery matches concatenations or interpolated strings whose
// literal part looks like SQL
func isAssembledQuery(n *parser.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case parser.NodeStringLiteral:
		return n.Interpolated && sqlKeywords.MatchString(n.Value)
	case parser.NodeBinaryOp:
		if n.Operator != "+" && n.Operator != "%" {
			return false
		}
		return containsSQLLiteral(n) && (isTainted(n.Left) || isTainted(n.Right))
	case parser.NodeCall:
		// str.format style: "SELECT ...".format(x)
		if strings.HasSuffix(n.CalleeName(), ".format") && n.Callee != nil {
			return containsSQLLiteral(n.Callee)
		}
	}
	return false
}

func containsSQLLiteral(n *parser.Node) bool {
	found := false
	n.Walk(func(c *parser.Node) bool {
		if c.Kind == parser.NodeStringLiteral && sqlKeywords.MatchString(c.Value) {
			found = true
			return false
		}
		return true
	})
	return found
}

// Identifier names suggesting values that cross a trust boundary
var externalInputName = regexp.MustCompile(`(?i)^(user_?input|request|req|params?|args?v?|argv|query|form|payload|body|input)`)

var pathJoinCallees = map[string]bool{
	"os.path.join":    true,
	"path.join":       true,
	"os.path.abspath": true,
	"path.resolve":    true,
}

// pathTraversalRule flags filesystem path construction fed by values that
// look like external input, without any visible sanitization.
type pathTraversalRule struct{}

func (pathTraversalRule) ID() string                       { return RulePathTraversal }
func (pathTraversalRule) Category() domain.Category        { return domain.CategorySecurity }
func (pathTraversalRule) DefaultSeverity() domain.Severity { return domain.SeverityHigh }

func (r pathTraversalRule) Check(ctx *Context) []domain.Issue {
	var issues []domain.Issue
	ctx.Tree.Walk(func(n *parser.Node) bool {
		if n.Kind != parser.NodeCall || !pathJoinCallees[n.CalleeName()] {
			return true
		}
		for _, arg := range n.Arguments {
			if looksLikeExternalInput(arg) {
				issues = append(issues, issueAt(r, ctx, n,
					fmt.Sprintf("path built from external input via %s", n.CalleeName()),
					"validate the component against an allow-list before joining"))
				break
			}
		}
		return true
	})
	return issues
}

func looksLikeExternalInput(n *parser.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case parser.NodeIdentifier:
		return externalInputName.MatchString(n.Name)
	case parser.NodeAttribute:
		return externalInputName.MatchString(firstSegment(n.Name))
	case parser.NodeCall:
		return n.CalleeName() == "input"
	case parser.NodeStringLiteral, parser.NodeNumberLiteral,
		parser.NodeBoolLiteral, parser.NodeNullLiteral:
		return false
	}
	// Composite expressions (subscripts, concatenations) are tainted if
	// any operand is
	tainted := false
	n.ForEachChild(func(child *parser.Node) {
		if looksLikeExternalInput(child) {
			tainted = true
		}
	})
	return tainted
}

func firstSegment(dotted string) string {
	if i := strings.IndexByte(dotted, '.'); i >= 0 {
		return dotted[:i]
	}
	return dotted
}

var secretName = regexp.MustCompile(`(?i)(password|passwd|secret|api_?key|token|auth)`)

// hardcodedSecretRule flags literal strings assigned to names that look
// like credentials.
type hardcodedSecretRule struct{}

func (hardcodedSecretRule) ID() string                       { return RuleHardcodedSecret }
func (hardcodedSecretRule) Category() domain.Category        { return domain.CategorySecurity }
func (hardcodedSecretRule) DefaultSeverity() domain.Severity { return domain.SeverityHigh }

func (r hardcodedSecretRule) Check(ctx *Context) []domain.Issue {
	var issues []domain.Issue
	ctx.Tree.Walk(func(n *parser.Node) bool {
		if n.Kind != parser.NodeAssignment || n.Left == nil || n.Right == nil {
			return true
		}
		target := targetName(n.Left)
		if target == "" || !secretName.MatchString(target) {
			return true
		}
		value := n.Right
		if value.Kind == parser.NodeStringLiteral && !value.Interpolated && len(value.Value) >= 4 {
			issues = append(issues, issueAt(r, ctx, n,
				fmt.Sprintf("literal value assigned to credential-like name %q", target),
				"load secrets from the environment or a secret store"))
		}
		return true
	})
	return issues
}

func targetName(n *parser.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case parser.NodeIdentifier:
		return n.Name
	case parser.NodeAttribute:
		return n.Name
	}
	return ""
}

var weakRandomCallees = map[string]bool{
	"random.random":      true,
	"random.randint":     true,
	"random.choice":      true,
	"random.randrange":   true,
	"random.getrandbits": true,
	"Math.random":        true,
}

var securitySensitiveName = regexp.MustCompile(`(?i)(token|secret|password|key|nonce|salt|session|otp|csrf)`)

// weakRandomRule flags non-cryptographic randomness feeding values whose
// name suggests a security purpose.
type weakRandomRule struct{}

func (weakRandomRule) ID() string                       { return RuleWeakRandom }
func (weakRandomRule) Category() domain.Category        { return domain.CategorySecurity }
func (weakRandomRule) DefaultSeverity() domain.Severity { return domain.SeverityMedium }

func (r weakRandomRule) Check(ctx *Context) []domain.Issue {
	var issues []domain.Issue
	ctx.Tree.Walk(func(n *parser.Node) bool {
		if n.Kind != parser.NodeCall || !weakRandomCallees[n.CalleeName()] {
			return true
		}
		if !inSecuritySensitiveContext(n) {
			return true
		}
		issues = append(issues, issueAt(r, ctx, n,
			fmt.Sprintf("weak randomness from %s in a security-sensitive value", n.CalleeName()),
			"use a cryptographically secure random source"))
		return true
	})
	return issues
}

// inSecuritySensitiveContext climbs to the nearest assignment target or
// enclosing function name and matches it against the sensitive-name set
func inSecuritySensitiveContext(n *parser.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == parser.NodeAssignment && p.Left != nil {
			if securitySensitiveName.MatchString(targetName(p.Left)) {
				return true
			}
		}
		if p.Kind == parser.NodeFunction {
			return securitySensitiveName.MatchString(p.Name)
		}
	}
	return false
}
