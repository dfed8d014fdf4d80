package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// builderBase carries what every language builder needs to translate a
// tree-sitter CST into the normalized tree
type builderBase struct {
	filename string
	source   []byte
}

func (b *builderBase) location(tsNode *sitter.Node) Location {
	return Location{
		File:      b.filename,
		StartLine: int(tsNode.StartPoint().Row) + 1,
		StartCol:  int(tsNode.StartPoint().Column),
		EndLine:   int(tsNode.EndPoint().Row) + 1,
		EndCol:    int(tsNode.EndPoint().Column),
	}
}

func (b *builderBase) content(tsNode *sitter.Node) string {
	return tsNode.Content(b.source)
}

func (b *builderBase) newNode(kind NodeKind, tsNode *sitter.Node) *Node {
	node := NewNode(kind)
	node.Location = b.location(tsNode)
	return node
}

// dottedName returns the full dotted path of an attribute/member chain
// when it is built purely from identifiers, otherwise the trailing
// property name alone
func dottedName(object, property string) string {
	if object == "" {
		return property
	}
	if isDottedIdentifier(object) {
		return object + "." + property
	}
	return property
}

func isDottedIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			if r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
				continue
			}
			if i > 0 && r >= '0' && r <= '9' {
				continue
			}
			return false
		}
	}
	return true
}

// stringPrefixes covers Python literal prefixes; harmless for other languages
var stringPrefixes = []string{"rb", "br", "rf", "fr", "f", "r", "b", "u"}

// unquote strips literal prefixes and matching quote characters from a raw
// string token. It is tolerant of unterminated input.
func unquote(raw string) string {
	s := raw
	lower := strings.ToLower(s)
	for _, prefix := range stringPrefixes {
		if strings.HasPrefix(lower, prefix) && len(s) > len(prefix) {
			next := s[len(prefix)]
			if next == '"' || next == '\'' || next == '`' {
				s = s[len(prefix):]
				break
			}
		}
	}

	for _, quote := range []string{`"""`, "'''", `"`, "'", "`"} {
		if strings.HasPrefix(s, quote) {
			s = strings.TrimPrefix(s, quote)
			s = strings.TrimSuffix(s, quote)
			return s
		}
	}
	return s
}
