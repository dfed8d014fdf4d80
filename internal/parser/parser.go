package parser

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

// Language identifies a supported source language
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageUnknown    Language = ""
)

// ParseFailure reports a syntax error with the best-effort location of the
// first unrecoverable error. It is a typed result, never a crash.
type ParseFailure struct {
	FilePath string
	Line     int
	Column   int
	Message  string
}

// Error implements the error interface
func (e *ParseFailure) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
}

// DetectLanguage determines the source language from the file extension,
// falling back to shebang sniffing for extensionless scripts
func DetectLanguage(filename string, source []byte) Language {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".py", ".pyw":
		return LanguagePython
	case ".js", ".jsx", ".mjs", ".cjs":
		return LanguageJavaScript
	case ".ts", ".tsx", ".mts", ".cts":
		return LanguageTypeScript
	}

	// Shebang sniffing for extensionless scripts
	if bytes.HasPrefix(source, []byte("#!")) {
		line := source
		if idx := bytes.IndexByte(source, '\n'); idx >= 0 {
			line = source[:idx]
		}
		switch {
		case bytes.Contains(line, []byte("python")):
			return LanguagePython
		case bytes.Contains(line, []byte("node")):
			return LanguageJavaScript
		}
	}

	return LanguageUnknown
}

// SupportedExtensions lists the file extensions the adapters understand
func SupportedExtensions() []string {
	return []string{".py", ".pyw", ".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts"}
}

// IsSupportedFile reports whether a path has a supported extension
func IsSupportedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range SupportedExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// Parser wraps a tree-sitter parser for one language
type Parser struct {
	parser   *sitter.Parser
	language Language
}

// NewParser creates a parser for the given language
func NewParser(lang Language) (*Parser, error) {
	parser := sitter.NewParser()
	switch lang {
	case LanguagePython:
		parser.SetLanguage(python.GetLanguage())
	case LanguageJavaScript:
		parser.SetLanguage(javascript.GetLanguage())
	case LanguageTypeScript:
		parser.SetLanguage(tsx.GetLanguage())
	default:
		parser.Close()
		return nil, fmt.Errorf("unsupported language: %q", lang)
	}

	return &Parser{parser: parser, language: lang}, nil
}

// Language returns the language this parser is configured for
func (p *Parser) Language() Language {
	return p.language
}

// Close frees the underlying tree-sitter resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// ParseFile parses source text into a normalized tree. On malformed input
// it returns a *ParseFailure carrying the location of the first syntax
// error found in the concrete tree.
func (p *Parser) ParseFile(filename string, source []byte) (*Node, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if tree == nil {
		return nil, &ParseFailure{
			FilePath: filename,
			Line:     1,
			Column:   0,
			Message:  fmt.Sprintf("parser produced no tree: %v", err),
		}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, &ParseFailure{FilePath: filename, Line: 1, Column: 0, Message: "empty parse tree"}
	}

	if root.HasError() {
		failure := firstSyntaxError(root)
		failure.FilePath = filename
		return nil, failure
	}

	var node *Node
	switch p.language {
	case LanguagePython:
		node = newPythonBuilder(filename, source).build(root)
	default:
		node = newJSBuilder(filename, source).build(root)
	}
	if node == nil {
		return nil, &ParseFailure{FilePath: filename, Line: 1, Column: 0, Message: "could not normalize parse tree"}
	}

	setParents(node)
	return node, nil
}

// ParseString parses source code from a string
func (p *Parser) ParseString(source string) (*Node, error) {
	return p.ParseFile("<input>", []byte(source))
}

// ParseSource parses a file with the adapter selected by extension and
// shebang. It is the single entry point used by the analyzer.
func ParseSource(filename string, source []byte) (*Node, error) {
	lang := DetectLanguage(filename, source)
	if lang == LanguageUnknown {
		return nil, &ParseFailure{
			FilePath: filename,
			Line:     1,
			Column:   0,
			Message:  "no adapter for this file type",
		}
	}

	p, err := NewParser(lang)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	return p.ParseFile(filename, source)
}

// firstSyntaxError locates the first error or missing node in the
// concrete tree
func firstSyntaxError(root *sitter.Node) *ParseFailure {
	var found *sitter.Node

	var visit func(n *sitter.Node) bool
	visit = func(n *sitter.Node) bool {
		if n.Type() == "ERROR" || n.IsMissing() {
			found = n
			return true
		}
		if !n.HasError() {
			return false
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if child := n.Child(i); child != nil && visit(child) {
				return true
			}
		}
		return false
	}
	visit(root)

	failure := &ParseFailure{Line: 1, Column: 0, Message: "syntax error"}
	if found != nil {
		failure.Line = int(found.StartPoint().Row) + 1
		failure.Column = int(found.StartPoint().Column)
		if found.IsMissing() {
			failure.Message = fmt.Sprintf("missing %s", found.Type())
		}
	}
	return failure
}

// setParents fixes up parent pointers across all structured fields after
// the builder has assembled the tree
func setParents(n *Node) {
	n.ForEachChild(func(child *Node) {
		child.Parent = n
		setParents(child)
	})
}
