package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// jsBuilder translates the tree-sitter JavaScript/TypeScript CST into the
// normalized tree. The tsx grammar is a superset, so one builder covers both.
type jsBuilder struct {
	builderBase
}

func newJSBuilder(filename string, source []byte) *jsBuilder {
	return &jsBuilder{builderBase{filename: filename, source: source}}
}

func (b *jsBuilder) build(root *sitter.Node) *Node {
	return b.buildNode(root)
}

func (b *jsBuilder) buildNode(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}

	switch tsNode.Type() {
	case "program":
		return b.buildContainer(NodeModule, tsNode)
	case "function_declaration", "function_expression", "function",
		"generator_function_declaration", "generator_function",
		"arrow_function", "method_definition":
		return b.buildFunction(tsNode)
	case "class_declaration", "class":
		return b.buildClass(tsNode)
	case "if_statement":
		return b.buildIf(tsNode)
	case "switch_statement":
		return b.buildSwitch(tsNode)
	case "switch_case", "switch_default":
		return b.buildContainer(NodeCase, tsNode)
	case "for_statement", "for_in_statement":
		return b.buildContainer(NodeFor, tsNode)
	case "while_statement", "do_statement":
		return b.buildWhile(tsNode)
	case "try_statement":
		return b.buildTry(tsNode)
	case "catch_clause":
		return b.buildCatch(tsNode)
	case "finally_clause":
		return b.buildContainer(NodeFinally, tsNode)
	case "call_expression", "new_expression":
		return b.buildCall(tsNode)
	case "assignment_expression", "augmented_assignment_expression":
		return b.buildAssignment(tsNode)
	case "variable_declarator":
		return b.buildDeclarator(tsNode)
	case "binary_expression":
		return b.buildBinary(tsNode)
	case "unary_expression":
		node := b.newNode(NodeUnaryOp, tsNode)
		if op := tsNode.ChildByFieldName("operator"); op != nil {
			node.Operator = b.content(op)
		}
		if arg := tsNode.ChildByFieldName("argument"); arg != nil {
			node.AddChild(b.buildNode(arg))
		}
		return node
	case "ternary_expression", "conditional_expression":
		return b.buildConditional(tsNode)
	case "identifier", "property_identifier", "shorthand_property_identifier":
		node := b.newNode(NodeIdentifier, tsNode)
		node.Name = b.content(tsNode)
		return node
	case "member_expression":
		return b.buildMember(tsNode)
	case "string":
		node := b.newNode(NodeStringLiteral, tsNode)
		node.Raw = b.content(tsNode)
		node.Value = unquote(node.Raw)
		return node
	case "template_string":
		return b.buildTemplateString(tsNode)
	case "number":
		node := b.newNode(NodeNumberLiteral, tsNode)
		node.Raw = b.content(tsNode)
		node.Value = node.Raw
		return node
	case "true", "false":
		node := b.newNode(NodeBoolLiteral, tsNode)
		node.Raw = b.content(tsNode)
		node.Value = node.Raw
		return node
	case "null", "undefined":
		node := b.newNode(NodeNullLiteral, tsNode)
		node.Raw = b.content(tsNode)
		node.Value = "null"
		return node
	case "comment":
		node := b.newNode(NodeComment, tsNode)
		node.Raw = b.content(tsNode)
		node.Value = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(node.Raw, "//"), "/*"))
		return node
	case "import_statement":
		return b.buildImport(tsNode)
	case "return_statement":
		return b.buildContainer(NodeReturn, tsNode)
	case "throw_statement":
		return b.buildContainer(NodeRaise, tsNode)
	case "break_statement":
		return b.newNode(NodeBreak, tsNode)
	case "continue_statement":
		return b.newNode(NodeContinue, tsNode)
	case "statement_block":
		return b.buildContainer(NodeBlock, tsNode)
	case "expression_statement":
		return b.buildExpressionStatement(tsNode)
	case "lexical_declaration", "variable_declaration", "export_statement",
		"empty_statement", "labeled_statement", "debugger_statement":
		return b.buildContainer(NodeStatement, tsNode)
	default:
		return b.buildContainer(NodeExpression, tsNode)
	}
}

func (b *jsBuilder) buildContainer(kind NodeKind, tsNode *sitter.Node) *Node {
	node := b.newNode(kind, tsNode)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		node.AddChild(b.buildNode(tsNode.NamedChild(i)))
	}
	return node
}

func (b *jsBuilder) buildFunction(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeFunction, tsNode)
	if name := tsNode.ChildByFieldName("name"); name != nil {
		node.Name = b.content(name)
	}

	if param := tsNode.ChildByFieldName("parameter"); param != nil {
		// Single arrow-function parameter without parentheses
		p := b.newNode(NodeParam, param)
		p.Name = b.content(param)
		node.Params = []*Node{p}
	} else if params := tsNode.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			child := params.NamedChild(i)
			if child.Type() == "comment" {
				continue
			}
			p := b.newNode(NodeParam, child)
			p.Name = b.parameterName(child)
			node.Params = append(node.Params, p)
		}
	}

	if body := tsNode.ChildByFieldName("body"); body != nil {
		if body.Type() == "statement_block" {
			for i := 0; i < int(body.NamedChildCount()); i++ {
				if stmt := b.buildNode(body.NamedChild(i)); stmt != nil {
					node.Body = append(node.Body, stmt)
				}
			}
		} else if expr := b.buildNode(body); expr != nil {
			// Expression-bodied arrow function
			node.Body = []*Node{expr}
		}
	}
	return node
}

func (b *jsBuilder) parameterName(tsNode *sitter.Node) string {
	switch tsNode.Type() {
	case "identifier":
		return b.content(tsNode)
	case "required_parameter", "optional_parameter":
		if pattern := tsNode.ChildByFieldName("pattern"); pattern != nil {
			return b.content(pattern)
		}
	case "assignment_pattern":
		if left := tsNode.ChildByFieldName("left"); left != nil {
			return b.content(left)
		}
	case "rest_pattern":
		for i := 0; i < int(tsNode.NamedChildCount()); i++ {
			if child := tsNode.NamedChild(i); child.Type() == "identifier" {
				return b.content(child)
			}
		}
	}
	return ""
}

func (b *jsBuilder) buildClass(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeClass, tsNode)
	if name := tsNode.ChildByFieldName("name"); name != nil {
		node.Name = b.content(name)
	}
	if body := tsNode.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			if member := b.buildNode(body.NamedChild(i)); member != nil {
				node.Body = append(node.Body, member)
			}
		}
	}
	return node
}

func (b *jsBuilder) buildIf(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeIf, tsNode)
	if cond := tsNode.ChildByFieldName("condition"); cond != nil {
		node.Test = b.buildNode(cond)
	}
	if cons := tsNode.ChildByFieldName("consequence"); cons != nil {
		node.Body = b.statementsOf(cons)
	}
	if alt := tsNode.ChildByFieldName("alternative"); alt != nil {
		// else_clause wraps either a block or a chained if
		target := alt
		if alt.Type() == "else_clause" && alt.NamedChildCount() > 0 {
			target = alt.NamedChild(0)
		}
		node.Alternate = b.buildNode(target)
	}
	return node
}

func (b *jsBuilder) buildSwitch(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeSwitch, tsNode)
	if value := tsNode.ChildByFieldName("value"); value != nil {
		node.Test = b.buildNode(value)
	}
	if body := tsNode.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			node.AddChild(b.buildNode(body.NamedChild(i)))
		}
	}
	return node
}

func (b *jsBuilder) buildWhile(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeWhile, tsNode)
	if cond := tsNode.ChildByFieldName("condition"); cond != nil {
		node.Test = b.unwrapParenthesized(cond)
	}
	if body := tsNode.ChildByFieldName("body"); body != nil {
		node.Body = b.statementsOf(body)
	}
	return node
}

// unwrapParenthesized drops the parenthesized_expression wrapper around
// JS conditions so rules see the condition expression directly
func (b *jsBuilder) unwrapParenthesized(tsNode *sitter.Node) *Node {
	if tsNode.Type() == "parenthesized_expression" && tsNode.NamedChildCount() == 1 {
		return b.buildNode(tsNode.NamedChild(0))
	}
	return b.buildNode(tsNode)
}

func (b *jsBuilder) statementsOf(tsNode *sitter.Node) []*Node {
	if tsNode.Type() == "statement_block" {
		var statements []*Node
		for i := 0; i < int(tsNode.NamedChildCount()); i++ {
			if stmt := b.buildNode(tsNode.NamedChild(i)); stmt != nil {
				statements = append(statements, stmt)
			}
		}
		return statements
	}
	if stmt := b.buildNode(tsNode); stmt != nil {
		return []*Node{stmt}
	}
	return nil
}

func (b *jsBuilder) buildTry(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeTry, tsNode)
	if body := tsNode.ChildByFieldName("body"); body != nil {
		node.Body = b.statementsOf(body)
	}
	if handler := tsNode.ChildByFieldName("handler"); handler != nil {
		if except := b.buildNode(handler); except != nil {
			node.Handlers = append(node.Handlers, except)
		}
	}
	if finalizer := tsNode.ChildByFieldName("finalizer"); finalizer != nil {
		node.Finalizer = b.buildNode(finalizer)
	}
	return node
}

// buildCatch maps a JS catch clause onto NodeExcept. JS has no type
// filters; the parameter name lands in Name so rules can tell `catch (e)`
// from a parameterless catch.
func (b *jsBuilder) buildCatch(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeExcept, tsNode)
	if param := tsNode.ChildByFieldName("parameter"); param != nil {
		node.Name = b.content(param)
	}
	if body := tsNode.ChildByFieldName("body"); body != nil {
		node.Body = b.statementsOf(body)
	}
	return node
}

func (b *jsBuilder) buildCall(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeCall, tsNode)
	if fn := tsNode.ChildByFieldName("function"); fn != nil {
		node.Callee = b.buildNode(fn)
	} else if constructor := tsNode.ChildByFieldName("constructor"); constructor != nil {
		node.Callee = b.buildNode(constructor)
	}
	if args := tsNode.ChildByFieldName("arguments"); args != nil {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			node.Arguments = append(node.Arguments, b.buildNode(args.NamedChild(i)))
		}
	}
	return node
}

func (b *jsBuilder) buildAssignment(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeAssignment, tsNode)
	if left := tsNode.ChildByFieldName("left"); left != nil {
		node.Left = b.buildNode(left)
	}
	if right := tsNode.ChildByFieldName("right"); right != nil {
		node.Right = b.buildNode(right)
	}
	return node
}

// buildDeclarator maps `const x = expr` declarators onto NodeAssignment so
// assignment rules cover both declaration and reassignment forms
func (b *jsBuilder) buildDeclarator(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeAssignment, tsNode)
	if name := tsNode.ChildByFieldName("name"); name != nil {
		node.Left = b.buildNode(name)
	}
	if value := tsNode.ChildByFieldName("value"); value != nil {
		node.Right = b.buildNode(value)
	}
	return node
}

func (b *jsBuilder) buildBinary(tsNode *sitter.Node) *Node {
	kind := NodeBinaryOp
	operator := ""
	if op := tsNode.ChildByFieldName("operator"); op != nil {
		operator = b.content(op)
	}
	if operator == "&&" || operator == "||" || operator == "??" {
		kind = NodeBoolOp
	}

	node := b.newNode(kind, tsNode)
	node.Operator = operator
	if left := tsNode.ChildByFieldName("left"); left != nil {
		node.Left = b.buildNode(left)
	}
	if right := tsNode.ChildByFieldName("right"); right != nil {
		node.Right = b.buildNode(right)
	}
	return node
}

func (b *jsBuilder) buildConditional(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeConditionalExpr, tsNode)
	if cond := tsNode.ChildByFieldName("condition"); cond != nil {
		node.Test = b.buildNode(cond)
	}
	if cons := tsNode.ChildByFieldName("consequence"); cons != nil {
		node.Body = []*Node{b.buildNode(cons)}
	}
	if alt := tsNode.ChildByFieldName("alternative"); alt != nil {
		node.Alternate = b.buildNode(alt)
	}
	return node
}

func (b *jsBuilder) buildMember(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeAttribute, tsNode)
	var objectName, propertyName string
	if object := tsNode.ChildByFieldName("object"); object != nil {
		objectName = b.content(object)
		node.AddChild(b.buildNode(object))
	}
	if property := tsNode.ChildByFieldName("property"); property != nil {
		propertyName = b.content(property)
	}
	node.Name = dottedName(objectName, propertyName)
	return node
}

func (b *jsBuilder) buildTemplateString(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeStringLiteral, tsNode)
	node.Raw = b.content(tsNode)
	node.Value = unquote(node.Raw)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		if tsNode.NamedChild(i).Type() == "template_substitution" {
			node.Interpolated = true
			break
		}
	}
	return node
}

// buildImport emits one NodeImport binding per imported name, mirroring
// the Python adapter so downstream rules are language-agnostic
func (b *jsBuilder) buildImport(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeImport, tsNode)
	if source := tsNode.ChildByFieldName("source"); source != nil {
		node.Value = unquote(b.content(source))
	}

	var collect func(n *sitter.Node)
	collect = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "import_specifier":
				binding := b.newNode(NodeImport, child)
				binding.Value = node.Value
				if alias := child.ChildByFieldName("alias"); alias != nil {
					binding.Name = b.content(alias)
				} else if name := child.ChildByFieldName("name"); name != nil {
					binding.Name = b.content(name)
				}
				node.AddChild(binding)
			case "identifier":
				if n.Type() == "import_clause" || n.Type() == "namespace_import" {
					binding := b.newNode(NodeImport, child)
					binding.Value = node.Value
					binding.Name = b.content(child)
					node.AddChild(binding)
				}
			case "import_clause", "named_imports", "namespace_import":
				collect(child)
			}
		}
	}
	collect(tsNode)

	if len(node.Children) == 1 {
		only := node.Children[0]
		node.Name = only.Name
		node.Children = nil
	}
	return node
}

func (b *jsBuilder) buildExpressionStatement(tsNode *sitter.Node) *Node {
	if tsNode.NamedChildCount() == 1 {
		child := b.buildNode(tsNode.NamedChild(0))
		if child != nil {
			switch child.Kind {
			case NodeCall, NodeAssignment, NodeStringLiteral:
				return child
			}
		}
		wrapper := b.newNode(NodeStatement, tsNode)
		wrapper.AddChild(child)
		return wrapper
	}
	return b.buildContainer(NodeStatement, tsNode)
}
