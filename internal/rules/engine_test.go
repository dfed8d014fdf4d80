package rules

import (
	"reflect"
	"testing"

	"github.com/reviewrabbit/rrscan/domain"
	"github.com/reviewrabbit/rrscan/internal/parser"
)

func pythonContext(t *testing.T, source string) *Context {
	t.Helper()
	tree, err := parser.ParseSource("test.py", []byte(source))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	return &Context{
		FilePath:   "test.py",
		Tree:       tree,
		Source:     []byte(source),
		Thresholds: DefaultThresholds(),
	}
}

func jsContext(t *testing.T, source string) *Context {
	t.Helper()
	tree, err := parser.ParseSource("test.js", []byte(source))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	return &Context{
		FilePath:   "test.js",
		Tree:       tree,
		Source:     []byte(source),
		Thresholds: DefaultThresholds(),
	}
}

func issuesFor(issues []domain.Issue, ruleID string) []domain.Issue {
	var matched []domain.Issue
	for _, issue := range issues {
		if issue.RuleID == ruleID {
			matched = append(matched, issue)
		}
	}
	return matched
}

func TestEngineDefaultsToAllRules(t *testing.T) {
	e := NewEngine(nil, nil)
	if len(e.rules) != len(All()) {
		t.Errorf("Expected %d rules, got %d", len(All()), len(e.rules))
	}
}

func TestBareExceptScenario(t *testing.T) {
	ctx := pythonContext(t, `
def load(path):
    try:
        return read(path)
    except:
        pass
`)
	issues := NewEngine(nil, nil).Evaluate(ctx)

	matched := issuesFor(issues, RuleBareExcept)
	if len(matched) != 1 {
		t.Fatalf("Expected 1 bare_except_equivalent issue, got %d", len(matched))
	}
	if matched[0].Category != domain.CategoryBug {
		t.Errorf("Expected category bug, got %s", matched[0].Category)
	}
}

func TestBareExceptRethrowExempt(t *testing.T) {
	ctx := pythonContext(t, `
try:
    work()
except:
    raise
`)
	issues := NewEngine(nil, nil).Evaluate(ctx)
	if len(issuesFor(issues, RuleBareExcept)) != 0 {
		t.Error("Re-raising handler should not be flagged")
	}
}

func TestCommandInjectionScenario(t *testing.T) {
	ctx := pythonContext(t, `os.system("rm -rf " + user_input)`)
	issues := NewEngine(nil, nil).Evaluate(ctx)

	matched := issuesFor(issues, RuleCommandInjection)
	if len(matched) != 1 {
		t.Fatalf("Expected 1 command_injection issue, got %d", len(matched))
	}
	if matched[0].Category != domain.CategorySecurity {
		t.Errorf("Expected category security, got %s", matched[0].Category)
	}
	if matched[0].Severity != domain.SeverityCritical {
		t.Errorf("Expected critical severity, got %s", matched[0].Severity)
	}
}

func TestCommandInjectionLiteralExempt(t *testing.T) {
	ctx := pythonContext(t, `os.system("ls -la")`)
	issues := NewEngine(nil, nil).Evaluate(ctx)
	if len(issuesFor(issues, RuleCommandInjection)) != 0 {
		t.Error("Constant command should not be flagged")
	}
}

func TestHardcodedSecretScenario(t *testing.T) {
	ctx := pythonContext(t, `api_key = "sk-abcdef123456"`)
	issues := NewEngine(nil, nil).Evaluate(ctx)

	matched := issuesFor(issues, RuleHardcodedSecret)
	if len(matched) != 1 {
		t.Fatalf("Expected 1 hardcoded_secret issue, got %d", len(matched))
	}
	if matched[0].Category != domain.CategorySecurity {
		t.Errorf("Expected category security, got %s", matched[0].Category)
	}
}

func TestSQLInjectionInterpolated(t *testing.T) {
	ctx := jsContext(t, "db.query(`SELECT * FROM users WHERE id = ${id}`);")
	issues := NewEngine(nil, nil).Evaluate(ctx)
	if len(issuesFor(issues, RuleSQLInjection)) != 1 {
		t.Error("Expected interpolated query to be flagged")
	}
}

func TestSQLInjectionConcatenation(t *testing.T) {
	ctx := pythonContext(t, `cursor.execute("SELECT * FROM users WHERE id = " + user_id)`)
	issues := NewEngine(nil, nil).Evaluate(ctx)
	if len(issuesFor(issues, RuleSQLInjection)) != 1 {
		t.Error("Expected concatenated query to be flagged")
	}
}

func TestPathTraversal(t *testing.T) {
	ctx := pythonContext(t, `full = os.path.join(base_dir, request.args["name"])`)
	issues := NewEngine(nil, nil).Evaluate(ctx)
	if len(issuesFor(issues, RulePathTraversal)) != 1 {
		t.Error("Expected path built from request input to be flagged")
	}
}

func TestWeakRandomSensitiveContext(t *testing.T) {
	ctx := pythonContext(t, `
def make_token():
    session_token = random.randint(0, 999999)
    return session_token
`)
	issues := NewEngine(nil, nil).Evaluate(ctx)
	if len(issuesFor(issues, RuleWeakRandom)) != 1 {
		t.Error("Expected weak randomness feeding a token to be flagged")
	}
}

func TestWeakRandomBenignContext(t *testing.T) {
	ctx := pythonContext(t, `
def roll_dice():
    face = random.randint(1, 6)
    return face
`)
	issues := NewEngine(nil, nil).Evaluate(ctx)
	if len(issuesFor(issues, RuleWeakRandom)) != 0 {
		t.Error("Dice rolls are not security sensitive")
	}
}

func TestTooManyParams(t *testing.T) {
	ctx := pythonContext(t, `
def wide(a, b, c, d, e, f, g, h):
    return a
`)
	issues := NewEngine(nil, nil).Evaluate(ctx)
	if len(issuesFor(issues, RuleTooManyParams)) != 1 {
		t.Error("Expected 8 parameters to exceed the default limit of 7")
	}
}

func TestDeepNesting(t *testing.T) {
	ctx := pythonContext(t, `
def tangled(rows):
    for a in rows:
        if a:
            for b in a:
                if b:
                    while b.next:
                        b = b.next
`)
	issues := NewEngine(nil, nil).Evaluate(ctx)
	if len(issuesFor(issues, RuleDeepNesting)) != 1 {
		t.Error("Expected 5 nesting levels to exceed the default limit of 4")
	}
}

func TestInfiniteLoop(t *testing.T) {
	ctx := pythonContext(t, `
def spin():
    while True:
        tick()
`)
	issues := NewEngine(nil, nil).Evaluate(ctx)
	matched := issuesFor(issues, RuleInfiniteLoop)
	if len(matched) != 1 {
		t.Fatalf("Expected 1 infinite_loop issue, got %d", len(matched))
	}
	if matched[0].Severity != domain.SeverityCritical {
		t.Errorf("Expected critical severity, got %s", matched[0].Severity)
	}
}

func TestInfiniteLoopWithBreakExempt(t *testing.T) {
	ctx := pythonContext(t, `
def poll():
    while True:
        if done():
            break
`)
	issues := NewEngine(nil, nil).Evaluate(ctx)
	if len(issuesFor(issues, RuleInfiniteLoop)) != 0 {
		t.Error("Loop with a break should not be flagged")
	}
}

func TestResourceLeak(t *testing.T) {
	ctx := pythonContext(t, `
def load(path):
    f = open(path)
    return f.read()
`)
	issues := NewEngine(nil, nil).Evaluate(ctx)
	if len(issuesFor(issues, RuleResourceLeak)) != 1 {
		t.Error("Expected unguarded open() to be flagged")
	}
}

func TestResourceLeakWithBlockExempt(t *testing.T) {
	ctx := pythonContext(t, `
def load(path):
    with open(path) as f:
        return f.read()
`)
	issues := NewEngine(nil, nil).Evaluate(ctx)
	if len(issuesFor(issues, RuleResourceLeak)) != 0 {
		t.Error("open() inside a with-block should not be flagged")
	}
}

func TestResourceLeakExplicitCloseExempt(t *testing.T) {
	ctx := pythonContext(t, `
def load(path):
    f = open(path)
    data = f.read()
    f.close()
    return data
`)
	issues := NewEngine(nil, nil).Evaluate(ctx)
	if len(issuesFor(issues, RuleResourceLeak)) != 0 {
		t.Error("open() with a matching close() should not be flagged")
	}
}

func TestTodoComment(t *testing.T) {
	ctx := pythonContext(t, "x = 1  # FIXME: off by one\n")
	issues := NewEngine(nil, nil).Evaluate(ctx)
	matched := issuesFor(issues, RuleTodoComment)
	if len(matched) != 1 {
		t.Fatalf("Expected 1 todo_comment issue, got %d", len(matched))
	}
	if matched[0].Severity != domain.SeverityInfo {
		t.Errorf("Expected info severity, got %s", matched[0].Severity)
	}
}

func TestUnusedImport(t *testing.T) {
	ctx := pythonContext(t, `
import os
import sys

print(sys.argv)
`)
	issues := NewEngine(nil, nil).Evaluate(ctx)
	matched := issuesFor(issues, RuleUnusedImport)
	if len(matched) != 1 {
		t.Fatalf("Expected 1 unused_import issue, got %d", len(matched))
	}
	if got := matched[0].Message; got != `imported name "os" is never used` {
		t.Errorf("Unexpected message %q", got)
	}
}

func TestMagicString(t *testing.T) {
	ctx := pythonContext(t, `
a = "connection-string"
b = "connection-string"
c = "connection-string"
d = "connection-string"
`)
	issues := NewEngine(nil, nil).Evaluate(ctx)
	matched := issuesFor(issues, RuleMagicString)
	if len(matched) != 1 {
		t.Fatalf("Expected 1 magic_string issue, got %d", len(matched))
	}
	if matched[0].Line != 2 {
		t.Errorf("Expected issue at first occurrence (line 2), got line %d", matched[0].Line)
	}
}

func TestDeterministicOrdering(t *testing.T) {
	source := `
import os

def f():
    try:
        work()
    except:
        pass

password = "hunter2!"
`
	first := NewEngine(nil, nil).Evaluate(pythonContext(t, source))
	second := NewEngine(nil, nil).Evaluate(pythonContext(t, source))

	if !reflect.DeepEqual(first, second) {
		t.Error("Two evaluations of identical input differ")
	}
	for i := 1; i < len(first); i++ {
		a, b := first[i-1], first[i]
		if a.Severity > b.Severity {
			t.Fatalf("Issues out of severity order at %d: %+v before %+v", i, a, b)
		}
		if a.Severity == b.Severity && a.Line > b.Line {
			t.Fatalf("Issues out of line order at %d", i)
		}
	}
}

func TestRuleIndependence(t *testing.T) {
	source := `
import os

password = "hunter2!"
`
	all := NewEngine(nil, nil).Evaluate(pythonContext(t, source))
	without := NewEngine([]string{RuleHardcodedSecret}, nil).Evaluate(pythonContext(t, source))

	if len(issuesFor(all, RuleUnusedImport)) != 1 {
		t.Fatal("Expected an unused_import issue in the full run")
	}
	if len(issuesFor(without, RuleUnusedImport)) != 0 {
		t.Error("Engine restricted to hardcoded_secret must not run other rules")
	}
	if len(issuesFor(without, RuleHardcodedSecret)) != 1 {
		t.Error("Enabled rule missing from restricted run")
	}
}

func TestSeverityOverride(t *testing.T) {
	overrides := map[string]domain.Severity{RuleHardcodedSecret: domain.SeverityInfo}
	issues := NewEngine(nil, overrides).Evaluate(pythonContext(t, `password = "hunter2!"`))

	matched := issuesFor(issues, RuleHardcodedSecret)
	if len(matched) != 1 {
		t.Fatalf("Expected 1 issue, got %d", len(matched))
	}
	if matched[0].Severity != domain.SeverityInfo {
		t.Errorf("Expected overridden severity info, got %s", matched[0].Severity)
	}
}

type panickyRule struct{}

func (panickyRule) ID() string                       { return "panicky" }
func (panickyRule) Category() domain.Category        { return domain.CategoryQuality }
func (panickyRule) DefaultSeverity() domain.Severity { return domain.SeverityMedium }
func (panickyRule) Check(ctx *Context) []domain.Issue {
	panic("boom")
}

func TestPanicIsolation(t *testing.T) {
	e := &Engine{rules: []Rule{panickyRule{}, hardcodedSecretRule{}}}
	issues := e.Evaluate(pythonContext(t, `password = "hunter2!"`))

	meta := issuesFor(issues, RuleExecutionFailed)
	if len(meta) != 1 {
		t.Fatalf("Expected 1 rule_execution_failed meta-issue, got %d", len(meta))
	}
	if meta[0].Category != domain.CategoryBestPractice || meta[0].Severity != domain.SeverityLow {
		t.Errorf("Meta-issue has wrong category/severity: %+v", meta[0])
	}
	if len(issuesFor(issues, RuleHardcodedSecret)) != 1 {
		t.Error("A panicking rule must not suppress other rules")
	}
}

func TestIsKnownRuleID(t *testing.T) {
	if !IsKnownRuleID(RuleHardcodedSecret) {
		t.Error("Registered rule id should be known")
	}
	if !IsKnownRuleID(RuleSyntaxError) || !IsKnownRuleID(RuleExecutionFailed) {
		t.Error("Reserved ids should be known")
	}
	if IsKnownRuleID("no_such_rule") {
		t.Error("Unknown id should not be known")
	}
}
