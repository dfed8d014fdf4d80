// Package testutil provides helper functions for testing rrscan components
package testutil

import (
	"testing"

	"github.com/reviewrabbit/rrscan/internal/parser"
)

// ParsePython parses Python source into a normalized tree, failing the test on error
func ParsePython(t *testing.T, source string) *parser.Node {
	t.Helper()
	tree, err := parser.ParseSource("test.py", []byte(source))
	if err != nil {
		t.Fatalf("Failed to parse test code: %v", err)
	}
	return tree
}

// ParseJS parses JavaScript source into a normalized tree, failing the test on error
func ParseJS(t *testing.T, source string) *parser.Node {
	t.Helper()
	tree, err := parser.ParseSource("test.js", []byte(source))
	if err != nil {
		t.Fatalf("Failed to parse test code: %v", err)
	}
	return tree
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

// AssertEqual fails the test if expected != actual
func AssertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if expected != actual {
		t.Errorf("Expected %v, got %v", expected, actual)
	}
}

// AssertTrue fails the test if condition is false
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Error(msg)
	}
}

// AssertFalse fails the test if condition is true
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()
	if condition {
		t.Error(msg)
	}
}

// AssertNotNil fails the test if value is nil
func AssertNotNil(t *testing.T, value any) {
	t.Helper()
	if value == nil {
		t.Error("Expected non-nil value")
	}
}

// FindFunction finds a function node by name in the tree
func FindFunction(tree *parser.Node, name string) *parser.Node {
	var found *parser.Node
	tree.Walk(func(n *parser.Node) bool {
		if n.IsFunction() && n.Name == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// CountFunctions counts the number of functions in a tree
func CountFunctions(tree *parser.Node) int {
	count := 0
	tree.Walk(func(n *parser.Node) bool {
		if n.IsFunction() {
			count++
		}
		return true
	})
	return count
}

// CountNodesOfKind counts nodes of a specific kind in a tree
func CountNodesOfKind(tree *parser.Node, kind parser.NodeKind) int {
	count := 0
	tree.Walk(func(n *parser.Node) bool {
		if n.Kind == kind {
			count++
		}
		return true
	})
	return count
}
