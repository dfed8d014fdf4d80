package parser

import (
	"errors"
	"testing"
)

func parsePython(t *testing.T, source string) *Node {
	t.Helper()
	tree, err := ParseSource("test.py", []byte(source))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	return tree
}

func parseJS(t *testing.T, source string) *Node {
	t.Helper()
	tree, err := ParseSource("test.js", []byte(source))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	return tree
}

func findKind(tree *Node, kind NodeKind) *Node {
	var found *Node
	tree.Walk(func(n *Node) bool {
		if n.Kind == kind {
			found = n
			return false
		}
		return true
	})
	return found
}

func countKind(tree *Node, kind NodeKind) int {
	count := 0
	tree.Walk(func(n *Node) bool {
		if n.Kind == kind {
			count++
		}
		return true
	})
	return count
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		source   string
		expected Language
	}{
		{"python extension", "app.py", "", LanguagePython},
		{"javascript extension", "app.js", "", LanguageJavaScript},
		{"jsx extension", "app.jsx", "", LanguageJavaScript},
		{"typescript extension", "app.ts", "", LanguageTypeScript},
		{"tsx extension", "app.tsx", "", LanguageTypeScript},
		{"mjs extension", "app.mjs", "", LanguageJavaScript},
		{"python shebang", "runme", "#!/usr/bin/env python3\nprint('hi')\n", LanguagePython},
		{"node shebang", "runme", "#!/usr/bin/env node\nconsole.log('hi')\n", LanguageJavaScript},
		{"unknown", "notes.txt", "hello", LanguageUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectLanguage(tt.filename, []byte(tt.source))
			if got != tt.expected {
				t.Errorf("DetectLanguage(%q) = %q, want %q", tt.filename, got, tt.expected)
			}
		})
	}
}

func TestIsSupportedFile(t *testing.T) {
	if !IsSupportedFile("main.py") {
		t.Error("Expected .py to be supported")
	}
	if !IsSupportedFile("main.ts") {
		t.Error("Expected .ts to be supported")
	}
	if IsSupportedFile("main.go") {
		t.Error("Expected .go to be unsupported")
	}
}

func TestParsePythonFunction(t *testing.T) {
	tree := parsePython(t, `
def greet(name, greeting="hello"):
    return greeting + name
`)

	fn := findKind(tree, NodeFunction)
	if fn == nil {
		t.Fatal("Expected a function node")
	}
	if fn.Name != "greet" {
		t.Errorf("Expected function name 'greet', got %q", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("Expected 2 params, got %d", len(fn.Params))
	}
	if fn.Params[0].Name != "name" || fn.Params[1].Name != "greeting" {
		t.Errorf("Unexpected param names: %q, %q", fn.Params[0].Name, fn.Params[1].Name)
	}
	if len(fn.Body) == 0 {
		t.Error("Expected a non-empty function body")
	}
}

func TestParsePythonControlFlow(t *testing.T) {
	tree := parsePython(t, `
def check(x):
    if x > 0:
        return 1
    else:
        return -1
`)

	cond := findKind(tree, NodeIf)
	if cond == nil {
		t.Fatal("Expected an if node")
	}
	if cond.Test == nil {
		t.Error("Expected if node to carry its condition")
	}
	if cond.Alternate == nil {
		t.Error("Expected if node to carry its else branch")
	}
}

func TestParsePythonBareExcept(t *testing.T) {
	tree := parsePython(t, `
try:
    risky()
except:
    pass
`)

	try := findKind(tree, NodeTry)
	if try == nil {
		t.Fatal("Expected a try node")
	}
	if len(try.Handlers) != 1 {
		t.Fatalf("Expected 1 handler, got %d", len(try.Handlers))
	}
	if try.Handlers[0].Test != nil {
		t.Error("Bare except should have no type filter")
	}
}

func TestParsePythonTypedExcept(t *testing.T) {
	tree := parsePython(t, `
try:
    risky()
except ValueError:
    pass
`)

	try := findKind(tree, NodeTry)
	if try == nil {
		t.Fatal("Expected a try node")
	}
	if len(try.Handlers) != 1 || try.Handlers[0].Test == nil {
		t.Error("Typed except should carry its type filter")
	}
}

func TestParsePythonCall(t *testing.T) {
	tree := parsePython(t, `os.system("ls " + user_input)`)

	call := findKind(tree, NodeCall)
	if call == nil {
		t.Fatal("Expected a call node")
	}
	if got := call.CalleeName(); got != "os.system" {
		t.Errorf("Expected callee 'os.system', got %q", got)
	}
	if len(call.Arguments) != 1 {
		t.Fatalf("Expected 1 argument, got %d", len(call.Arguments))
	}
	if call.Arguments[0].Kind != NodeBinaryOp {
		t.Errorf("Expected concatenation argument, got %v", call.Arguments[0].Kind)
	}
}

func TestParsePythonImports(t *testing.T) {
	tree := parsePython(t, `
import os
from collections import OrderedDict, defaultdict
`)

	var bindings []string
	tree.Walk(func(n *Node) bool {
		if n.Kind == NodeImport && n.Name != "" {
			bindings = append(bindings, n.Name)
		}
		return true
	})
	want := map[string]bool{"os": true, "OrderedDict": true, "defaultdict": true}
	if len(bindings) != 3 {
		t.Fatalf("Expected 3 import bindings, got %v", bindings)
	}
	for _, name := range bindings {
		if !want[name] {
			t.Errorf("Unexpected import binding %q", name)
		}
	}
}

func TestParsePythonFString(t *testing.T) {
	tree := parsePython(t, `query = f"SELECT * FROM users WHERE id = {user_id}"`)

	str := findKind(tree, NodeStringLiteral)
	if str == nil {
		t.Fatal("Expected a string literal")
	}
	if !str.Interpolated {
		t.Error("Expected f-string to be marked interpolated")
	}
}

func TestParsePythonComment(t *testing.T) {
	tree := parsePython(t, "x = 1  # TODO: remove this\n")

	comment := findKind(tree, NodeComment)
	if comment == nil {
		t.Fatal("Expected a comment node")
	}
	if comment.Value != "TODO: remove this" {
		t.Errorf("Unexpected comment value %q", comment.Value)
	}
}

func TestParseJSFunctions(t *testing.T) {
	tree := parseJS(t, `
function outer(a, b) {
    const inner = (x) => x * 2;
    return inner(a) + b;
}
`)

	if got := countKind(tree, NodeFunction); got != 2 {
		t.Errorf("Expected 2 functions, got %d", got)
	}
	outer := findKind(tree, NodeFunction)
	if outer.Name != "outer" {
		t.Errorf("Expected function name 'outer', got %q", outer.Name)
	}
	if len(outer.Params) != 2 {
		t.Errorf("Expected 2 params, got %d", len(outer.Params))
	}
}

func TestParseJSCatch(t *testing.T) {
	tree := parseJS(t, `
try {
    risky();
} catch (e) {
} finally {
    cleanup();
}
`)

	try := findKind(tree, NodeTry)
	if try == nil {
		t.Fatal("Expected a try node")
	}
	if len(try.Handlers) != 1 {
		t.Fatalf("Expected 1 handler, got %d", len(try.Handlers))
	}
	if len(try.Handlers[0].Body) != 0 {
		t.Error("Expected empty catch body")
	}
	if try.Finalizer == nil {
		t.Error("Expected finally clause")
	}
}

func TestParseJSTemplateString(t *testing.T) {
	tree := parseJS(t, "db.query(`SELECT * FROM users WHERE id = ${id}`);")

	str := findKind(tree, NodeStringLiteral)
	if str == nil {
		t.Fatal("Expected a string literal")
	}
	if !str.Interpolated {
		t.Error("Expected template string to be marked interpolated")
	}

	call := findKind(tree, NodeCall)
	if call == nil || call.CalleeName() != "db.query" {
		t.Fatalf("Expected call to db.query, got %v", call)
	}
}

func TestParseJSDeclarator(t *testing.T) {
	tree := parseJS(t, `const apiKey = "sk-0123456789abcdef";`)

	assign := findKind(tree, NodeAssignment)
	if assign == nil {
		t.Fatal("Expected an assignment node")
	}
	if assign.Left == nil || assign.Left.Name != "apiKey" {
		t.Error("Expected assignment target 'apiKey'")
	}
	if assign.Right == nil || assign.Right.Kind != NodeStringLiteral {
		t.Error("Expected string literal on the right")
	}
}

func TestParseJSBoolOp(t *testing.T) {
	tree := parseJS(t, `const ok = a && b || c;`)

	if got := countKind(tree, NodeBoolOp); got != 2 {
		t.Errorf("Expected 2 boolean operators, got %d", got)
	}
}

func TestParseFailureLocation(t *testing.T) {
	_, err := ParseSource("broken.py", []byte("def broken(:\n    pass\n"))
	if err == nil {
		t.Fatal("Expected a parse failure")
	}

	var failure *ParseFailure
	if !errors.As(err, &failure) {
		t.Fatalf("Expected *ParseFailure, got %T", err)
	}
	if failure.FilePath != "broken.py" {
		t.Errorf("Expected file path on failure, got %q", failure.FilePath)
	}
	if failure.Line < 1 {
		t.Errorf("Expected a 1-based line, got %d", failure.Line)
	}
}

func TestParseUnknownFileType(t *testing.T) {
	_, err := ParseSource("notes.txt", []byte("plain text"))
	if err == nil {
		t.Fatal("Expected an error for unsupported file type")
	}
}

func TestParentPointers(t *testing.T) {
	tree := parsePython(t, `
def f():
    while True:
        if done():
            break
`)

	brk := findKind(tree, NodeBreak)
	if brk == nil {
		t.Fatal("Expected a break node")
	}
	if brk.Parent == nil {
		t.Fatal("Expected parent pointer on break node")
	}
	if !brk.HasAncestor(NodeWhile, true) {
		t.Error("Expected break to see its enclosing while")
	}

	fn := brk.EnclosingFunction()
	if fn == nil || fn.Name != "f" {
		t.Error("Expected enclosing function 'f'")
	}
}

func TestNestedFunctionBoundary(t *testing.T) {
	tree := parsePython(t, `
while True:
    def handler():
        x = 1
`)

	assign := findKind(tree, NodeAssignment)
	if assign == nil {
		t.Fatal("Expected an assignment node")
	}
	if assign.HasAncestor(NodeWhile, true) {
		t.Error("Ancestor search should stop at the function boundary")
	}
	if !assign.HasAncestor(NodeWhile, false) {
		t.Error("Unbounded ancestor search should find the while")
	}
}
