package parser

import "fmt"

// NodeKind tags a normalized syntax tree node. The set is closed: language
// builders map every grammar construct onto one of these kinds (or
// NodeExpression/NodeStatement for constructs no rule inspects).
type NodeKind string

const (
	NodeModule   NodeKind = "Module"
	NodeFunction NodeKind = "Function"
	NodeClass    NodeKind = "Class"
	NodeParam    NodeKind = "Param"

	// Control flow
	NodeIf       NodeKind = "If"
	NodeFor      NodeKind = "For"
	NodeWhile    NodeKind = "While"
	NodeSwitch   NodeKind = "Switch"
	NodeCase     NodeKind = "Case"
	NodeBreak    NodeKind = "Break"
	NodeContinue NodeKind = "Continue"
	NodeReturn   NodeKind = "Return"

	// Exception handling and resource guards
	NodeTry     NodeKind = "Try"
	NodeExcept  NodeKind = "Except"
	NodeFinally NodeKind = "Finally"
	NodeRaise   NodeKind = "Raise"
	NodeWith    NodeKind = "With"

	// Expressions
	NodeCall            NodeKind = "Call"
	NodeAssignment      NodeKind = "Assignment"
	NodeBinaryOp        NodeKind = "BinaryOp"
	NodeBoolOp          NodeKind = "BoolOp"
	NodeUnaryOp         NodeKind = "UnaryOp"
	NodeConditionalExpr NodeKind = "ConditionalExpr"
	NodeIdentifier      NodeKind = "Identifier"
	NodeAttribute       NodeKind = "Attribute"
	NodeExpression      NodeKind = "Expression"

	// Literals
	NodeStringLiteral NodeKind = "StringLiteral"
	NodeNumberLiteral NodeKind = "NumberLiteral"
	NodeBoolLiteral   NodeKind = "BoolLiteral"
	NodeNullLiteral   NodeKind = "NullLiteral"

	// Module system and trivia
	NodeImport  NodeKind = "Import"
	NodeComment NodeKind = "Comment"

	// Structure
	NodeBlock     NodeKind = "Block"
	NodeStatement NodeKind = "Statement"
)

// Location represents the position of a node in the source code
type Location struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// String returns a string representation of the location
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.StartLine, l.StartCol)
}

// Node is a node in the normalized syntax tree. Nodes are owned by the
// tree that contains them and are never mutated after the tree is built.
type Node struct {
	Kind     NodeKind
	Location Location
	Children []*Node
	Parent   *Node

	// Name holds identifier, function, class, or parameter names. For
	// attribute access it holds the full dotted path when the chain is
	// made only of identifiers (e.g. "os.system").
	Name string

	// Value holds the literal value for literal nodes: the unquoted text
	// for strings, the raw token for numbers and booleans.
	Value string

	// Raw holds the exact source text for literal and comment nodes.
	Raw string

	// Operator for binary, boolean, unary, and assignment nodes
	Operator string

	// Interpolated marks string literals with embedded expressions
	// (f-strings, template literals).
	Interpolated bool

	// Structured fields. Each sub-node is stored in exactly one place,
	// either here or in Children.
	Params    []*Node // Function parameters
	Body      []*Node // Function/loop/branch body statements
	Test      *Node   // Condition for if/while/conditional expressions
	Alternate *Node   // Else branch
	Left      *Node   // Left operand / assignment target
	Right     *Node   // Right operand / assigned value
	Callee    *Node   // Called expression
	Arguments []*Node // Call arguments
	Handlers  []*Node // Except clauses of a try
	Finalizer *Node   // Finally block
}

// NewNode creates a new normalized node
func NewNode(kind NodeKind) *Node {
	return &Node{Kind: kind}
}

// AddChild appends a child node and sets its parent pointer
func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// ForEachChild invokes fn for every direct sub-node: the structured
// fields first, then Children
func (n *Node) ForEachChild(fn func(*Node)) {
	for _, p := range n.Params {
		fn(p)
	}
	if n.Test != nil {
		fn(n.Test)
	}
	if n.Left != nil {
		fn(n.Left)
	}
	if n.Right != nil {
		fn(n.Right)
	}
	if n.Callee != nil {
		fn(n.Callee)
	}
	for _, a := range n.Arguments {
		fn(a)
	}
	for _, s := range n.Body {
		fn(s)
	}
	for _, h := range n.Handlers {
		fn(h)
	}
	if n.Alternate != nil {
		fn(n.Alternate)
	}
	if n.Finalizer != nil {
		fn(n.Finalizer)
	}
	for _, c := range n.Children {
		fn(c)
	}
}

// Walk traverses the tree depth-first and calls the visitor for each node.
// If the visitor returns false, the node's subtree is skipped.
func (n *Node) Walk(visitor func(*Node) bool) {
	if n == nil {
		return
	}
	if !visitor(n) {
		return
	}
	n.ForEachChild(func(child *Node) {
		child.Walk(visitor)
	})
}

// String returns a string representation of the node
func (n *Node) String() string {
	if n.Name != "" {
		return fmt.Sprintf("%s(%s) at %s", n.Kind, n.Name, n.Location)
	}
	return fmt.Sprintf("%s at %s", n.Kind, n.Location)
}

// IsFunction reports whether the node defines a function
func (n *Node) IsFunction() bool {
	return n.Kind == NodeFunction
}

// IsLoop reports whether the node is a loop header
func (n *Node) IsLoop() bool {
	return n.Kind == NodeFor || n.Kind == NodeWhile
}

// IsLiteral reports whether the node is a literal value
func (n *Node) IsLiteral() bool {
	switch n.Kind {
	case NodeStringLiteral, NodeNumberLiteral, NodeBoolLiteral, NodeNullLiteral:
		return true
	}
	return false
}

// IsStatement reports whether the node is a statement-level construct
func (n *Node) IsStatement() bool {
	switch n.Kind {
	case NodeIf, NodeFor, NodeWhile, NodeSwitch, NodeTry, NodeWith,
		NodeReturn, NodeRaise, NodeBreak, NodeContinue,
		NodeAssignment, NodeStatement, NodeImport:
		return true
	}
	return false
}

// CalleeName returns the identifier or dotted attribute path of a call's
// callee, or the empty string when the callee is not a plain name
func (n *Node) CalleeName() string {
	if n.Kind != NodeCall || n.Callee == nil {
		return ""
	}
	switch n.Callee.Kind {
	case NodeIdentifier, NodeAttribute:
		return n.Callee.Name
	}
	return ""
}

// EnclosingFunction returns the nearest function ancestor, or nil at
// module level
func (n *Node) EnclosingFunction() *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == NodeFunction {
			return p
		}
	}
	return nil
}

// HasAncestor reports whether any ancestor has the given kind. When
// stopAtFunction is set the search does not cross function boundaries.
func (n *Node) HasAncestor(kind NodeKind, stopAtFunction bool) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == kind {
			return true
		}
		if stopAtFunction && p.Kind == NodeFunction {
			return false
		}
	}
	return false
}
