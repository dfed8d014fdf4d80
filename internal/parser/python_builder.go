package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// pythonBuilder translates the tree-sitter Python CST into the normalized tree
type pythonBuilder struct {
	builderBase
}

func newPythonBuilder(filename string, source []byte) *pythonBuilder {
	return &pythonBuilder{builderBase{filename: filename, source: source}}
}

func (b *pythonBuilder) build(root *sitter.Node) *Node {
	return b.buildNode(root)
}

func (b *pythonBuilder) buildNode(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}

	switch tsNode.Type() {
	case "module":
		return b.buildContainer(NodeModule, tsNode)
	case "function_definition":
		return b.buildFunction(tsNode)
	case "decorated_definition":
		if def := tsNode.ChildByFieldName("definition"); def != nil {
			return b.buildNode(def)
		}
		return nil
	case "lambda":
		return b.buildLambda(tsNode)
	case "class_definition":
		return b.buildClass(tsNode)
	case "if_statement", "elif_clause":
		return b.buildIf(tsNode)
	case "else_clause":
		return b.buildContainer(NodeBlock, tsNode)
	case "for_statement":
		return b.buildFor(tsNode)
	case "while_statement":
		return b.buildWhile(tsNode)
	case "match_statement":
		return b.buildContainer(NodeSwitch, tsNode)
	case "case_clause":
		return b.buildContainer(NodeCase, tsNode)
	case "try_statement":
		return b.buildTry(tsNode)
	case "except_clause", "except_group_clause":
		return b.buildExcept(tsNode)
	case "finally_clause":
		return b.buildContainer(NodeFinally, tsNode)
	case "with_statement":
		return b.buildWith(tsNode)
	case "call":
		return b.buildCall(tsNode)
	case "assignment", "augmented_assignment":
		return b.buildAssignment(tsNode)
	case "binary_operator":
		return b.buildBinary(NodeBinaryOp, tsNode)
	case "boolean_operator":
		return b.buildBinary(NodeBoolOp, tsNode)
	case "comparison_operator":
		return b.buildContainer(NodeExpression, tsNode)
	case "not_operator":
		node := b.newNode(NodeUnaryOp, tsNode)
		node.Operator = "not"
		if arg := tsNode.ChildByFieldName("argument"); arg != nil {
			node.AddChild(b.buildNode(arg))
		}
		return node
	case "unary_operator":
		node := b.newNode(NodeUnaryOp, tsNode)
		if op := tsNode.ChildByFieldName("operator"); op != nil {
			node.Operator = b.content(op)
		}
		if arg := tsNode.ChildByFieldName("argument"); arg != nil {
			node.AddChild(b.buildNode(arg))
		}
		return node
	case "conditional_expression":
		return b.buildConditional(tsNode)
	case "identifier":
		node := b.newNode(NodeIdentifier, tsNode)
		node.Name = b.content(tsNode)
		return node
	case "attribute":
		return b.buildAttribute(tsNode)
	case "string", "concatenated_string":
		return b.buildString(tsNode)
	case "integer", "float":
		node := b.newNode(NodeNumberLiteral, tsNode)
		node.Raw = b.content(tsNode)
		node.Value = node.Raw
		return node
	case "true", "false":
		node := b.newNode(NodeBoolLiteral, tsNode)
		node.Raw = b.content(tsNode)
		node.Value = strings.ToLower(node.Raw)
		return node
	case "none":
		node := b.newNode(NodeNullLiteral, tsNode)
		node.Raw = b.content(tsNode)
		node.Value = "null"
		return node
	case "comment":
		node := b.newNode(NodeComment, tsNode)
		node.Raw = b.content(tsNode)
		node.Value = strings.TrimSpace(strings.TrimPrefix(node.Raw, "#"))
		return node
	case "import_statement":
		return b.buildImport(tsNode)
	case "import_from_statement":
		return b.buildImportFrom(tsNode)
	case "return_statement":
		return b.buildContainer(NodeReturn, tsNode)
	case "raise_statement":
		return b.buildContainer(NodeRaise, tsNode)
	case "break_statement":
		return b.newNode(NodeBreak, tsNode)
	case "continue_statement":
		return b.newNode(NodeContinue, tsNode)
	case "block":
		return b.buildContainer(NodeBlock, tsNode)
	case "expression_statement":
		return b.buildExpressionStatement(tsNode)
	case "pass_statement", "global_statement", "nonlocal_statement",
		"delete_statement", "assert_statement", "print_statement":
		return b.buildContainer(NodeStatement, tsNode)
	default:
		return b.buildContainer(NodeExpression, tsNode)
	}
}

// buildContainer builds a node whose named children are translated as-is
func (b *pythonBuilder) buildContainer(kind NodeKind, tsNode *sitter.Node) *Node {
	node := b.newNode(kind, tsNode)
	b.addNamedChildren(node, tsNode)
	return node
}

func (b *pythonBuilder) addNamedChildren(node *Node, tsNode *sitter.Node) {
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		node.AddChild(b.buildNode(tsNode.NamedChild(i)))
	}
}

func (b *pythonBuilder) buildFunction(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeFunction, tsNode)
	if name := tsNode.ChildByFieldName("name"); name != nil {
		node.Name = b.content(name)
	}
	if params := tsNode.ChildByFieldName("parameters"); params != nil {
		node.Params = b.buildParameters(params)
	}
	if body := tsNode.ChildByFieldName("body"); body != nil {
		node.Body = b.buildStatements(body)
	}
	return node
}

func (b *pythonBuilder) buildLambda(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeFunction, tsNode)
	if params := tsNode.ChildByFieldName("parameters"); params != nil {
		node.Params = b.buildParameters(params)
	}
	if body := tsNode.ChildByFieldName("body"); body != nil {
		if expr := b.buildNode(body); expr != nil {
			node.Body = []*Node{expr}
		}
	}
	return node
}

func (b *pythonBuilder) buildParameters(tsNode *sitter.Node) []*Node {
	var params []*Node
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		switch child.Type() {
		case "keyword_separator", "positional_separator", "comment":
			continue
		}
		param := b.newNode(NodeParam, child)
		param.Name = b.parameterName(child)
		params = append(params, param)
	}
	return params
}

func (b *pythonBuilder) parameterName(tsNode *sitter.Node) string {
	switch tsNode.Type() {
	case "identifier":
		return b.content(tsNode)
	case "default_parameter", "typed_default_parameter":
		if name := tsNode.ChildByFieldName("name"); name != nil {
			return b.content(name)
		}
	case "typed_parameter", "list_splat_pattern", "dictionary_splat_pattern":
		for i := 0; i < int(tsNode.NamedChildCount()); i++ {
			if child := tsNode.NamedChild(i); child.Type() == "identifier" {
				return b.content(child)
			}
		}
	}
	return ""
}

func (b *pythonBuilder) buildStatements(body *sitter.Node) []*Node {
	var statements []*Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		if stmt := b.buildNode(body.NamedChild(i)); stmt != nil {
			statements = append(statements, stmt)
		}
	}
	return statements
}

func (b *pythonBuilder) buildClass(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeClass, tsNode)
	if name := tsNode.ChildByFieldName("name"); name != nil {
		node.Name = b.content(name)
	}
	if body := tsNode.ChildByFieldName("body"); body != nil {
		node.Body = b.buildStatements(body)
	}
	return node
}

func (b *pythonBuilder) buildIf(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeIf, tsNode)
	if cond := tsNode.ChildByFieldName("condition"); cond != nil {
		node.Test = b.buildNode(cond)
	}
	if cons := tsNode.ChildByFieldName("consequence"); cons != nil {
		node.Body = b.buildStatements(cons)
	}
	// elif and else clauses arrive as repeated "alternative" children
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		switch child.Type() {
		case "elif_clause":
			node.AddChild(b.buildNode(child))
		case "else_clause":
			if body := child.ChildByFieldName("body"); body != nil {
				alt := b.newNode(NodeBlock, child)
				alt.Body = b.buildStatements(body)
				node.Alternate = alt
			}
		}
	}
	return node
}

func (b *pythonBuilder) buildFor(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeFor, tsNode)
	if left := tsNode.ChildByFieldName("left"); left != nil {
		node.Left = b.buildNode(left)
	}
	if right := tsNode.ChildByFieldName("right"); right != nil {
		node.Right = b.buildNode(right)
	}
	if body := tsNode.ChildByFieldName("body"); body != nil {
		node.Body = b.buildStatements(body)
	}
	return node
}

func (b *pythonBuilder) buildWhile(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeWhile, tsNode)
	if cond := tsNode.ChildByFieldName("condition"); cond != nil {
		node.Test = b.buildNode(cond)
	}
	if body := tsNode.ChildByFieldName("body"); body != nil {
		node.Body = b.buildStatements(body)
	}
	return node
}

func (b *pythonBuilder) buildTry(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeTry, tsNode)
	if body := tsNode.ChildByFieldName("body"); body != nil {
		node.Body = b.buildStatements(body)
	}
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		switch child.Type() {
		case "except_clause", "except_group_clause":
			if handler := b.buildNode(child); handler != nil {
				node.Handlers = append(node.Handlers, handler)
			}
		case "finally_clause":
			node.Finalizer = b.buildNode(child)
		case "else_clause":
			node.AddChild(b.buildNode(child))
		}
	}
	return node
}

// buildExcept builds an exception handler. Test stays nil for a bare
// `except:` with no type filter.
func (b *pythonBuilder) buildExcept(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeExcept, tsNode)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child.Type() == "block" {
			node.Body = b.buildStatements(child)
			continue
		}
		if node.Test == nil {
			node.Test = b.buildNode(child)
			node.Name = b.content(child)
		}
	}
	return node
}

func (b *pythonBuilder) buildWith(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeWith, tsNode)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child.Type() == "block" {
			node.Body = b.buildStatements(child)
			continue
		}
		node.AddChild(b.buildNode(child))
	}
	return node
}

func (b *pythonBuilder) buildCall(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeCall, tsNode)
	if fn := tsNode.ChildByFieldName("function"); fn != nil {
		node.Callee = b.buildNode(fn)
	}
	if args := tsNode.ChildByFieldName("arguments"); args != nil {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			arg := args.NamedChild(i)
			if arg.Type() == "keyword_argument" {
				if value := arg.ChildByFieldName("value"); value != nil {
					node.Arguments = append(node.Arguments, b.buildNode(value))
				}
				continue
			}
			node.Arguments = append(node.Arguments, b.buildNode(arg))
		}
	}
	return node
}

func (b *pythonBuilder) buildAssignment(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeAssignment, tsNode)
	if left := tsNode.ChildByFieldName("left"); left != nil {
		node.Left = b.buildNode(left)
	}
	if right := tsNode.ChildByFieldName("right"); right != nil {
		node.Right = b.buildNode(right)
	}
	return node
}

func (b *pythonBuilder) buildBinary(kind NodeKind, tsNode *sitter.Node) *Node {
	node := b.newNode(kind, tsNode)
	if left := tsNode.ChildByFieldName("left"); left != nil {
		node.Left = b.buildNode(left)
	}
	if right := tsNode.ChildByFieldName("right"); right != nil {
		node.Right = b.buildNode(right)
	}
	if op := tsNode.ChildByFieldName("operator"); op != nil {
		node.Operator = b.content(op)
	}
	return node
}

func (b *pythonBuilder) buildConditional(tsNode *sitter.Node) *Node {
	// Python conditional: <consequence> if <condition> else <alternative>
	node := b.newNode(NodeConditionalExpr, tsNode)
	if tsNode.NamedChildCount() >= 3 {
		if cons := b.buildNode(tsNode.NamedChild(0)); cons != nil {
			node.Body = []*Node{cons}
		}
		node.Test = b.buildNode(tsNode.NamedChild(1))
		node.Alternate = b.buildNode(tsNode.NamedChild(2))
	}
	return node
}

func (b *pythonBuilder) buildAttribute(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeAttribute, tsNode)
	var objectName, propertyName string
	if object := tsNode.ChildByFieldName("object"); object != nil {
		objectName = b.content(object)
		node.AddChild(b.buildNode(object))
	}
	if attr := tsNode.ChildByFieldName("attribute"); attr != nil {
		propertyName = b.content(attr)
	}
	node.Name = dottedName(objectName, propertyName)
	return node
}

func (b *pythonBuilder) buildString(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeStringLiteral, tsNode)
	node.Raw = b.content(tsNode)
	node.Value = unquote(node.Raw)

	// f-strings carry interpolation children
	var scan func(n *sitter.Node)
	scan = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "interpolation" {
				node.Interpolated = true
				return
			}
			scan(child)
		}
	}
	scan(tsNode)
	return node
}

// buildImport emits one NodeImport per bound name so reference counting
// can treat each binding independently. Value holds the module path, Name
// the local binding.
func (b *pythonBuilder) buildImport(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeImport, tsNode)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		binding := b.newNode(NodeImport, child)
		switch child.Type() {
		case "dotted_name":
			binding.Value = b.content(child)
			binding.Name = strings.SplitN(binding.Value, ".", 2)[0]
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				binding.Value = b.content(name)
			}
			if alias := child.ChildByFieldName("alias"); alias != nil {
				binding.Name = b.content(alias)
			}
		default:
			continue
		}
		node.AddChild(binding)
	}

	// A single binding collapses onto the statement node itself
	if len(node.Children) == 1 {
		only := node.Children[0]
		node.Name = only.Name
		node.Value = only.Value
		node.Children = nil
	}
	return node
}

func (b *pythonBuilder) buildImportFrom(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeImport, tsNode)
	if module := tsNode.ChildByFieldName("module_name"); module != nil {
		node.Value = b.content(module)
	}
	module := tsNode.ChildByFieldName("module_name")
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if module != nil && child.StartByte() == module.StartByte() {
			continue
		}
		binding := b.newNode(NodeImport, child)
		binding.Value = node.Value
		switch child.Type() {
		case "dotted_name":
			binding.Name = b.content(child)
		case "aliased_import":
			if alias := child.ChildByFieldName("alias"); alias != nil {
				binding.Name = b.content(alias)
			} else if name := child.ChildByFieldName("name"); name != nil {
				binding.Name = b.content(name)
			}
		case "wildcard_import":
			binding.Name = "*"
		default:
			continue
		}
		node.AddChild(binding)
	}
	return node
}

func (b *pythonBuilder) buildExpressionStatement(tsNode *sitter.Node) *Node {
	// Unwrap single-expression statements so calls and assignments keep
	// their own kinds at statement level
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
