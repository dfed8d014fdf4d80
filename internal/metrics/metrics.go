// Package metrics computes quantitative code measures from normalized
// syntax trees. All metrics are structural counts over the tree; no
// control-flow graph is built.
package metrics

import (
	"math"

	"github.com/reviewrabbit/rrscan/domain"
	"github.com/reviewrabbit/rrscan/internal/parser"
)

// Measure computes per-function and per-file metrics for one parsed file.
// It never fails: empty files and empty functions produce guarded zeros.
func Measure(filePath string, tree *parser.Node, source []byte) []domain.Metric {
	if tree == nil {
		return nil
	}

	var metrics []domain.Metric

	functions := collectFunctions(tree)
	var complexitySum float64
	for _, fn := range functions {
		name := functionName(fn)
		cc := float64(Complexity(fn))
		complexitySum += cc

		metrics = append(metrics,
			domain.Metric{Name: domain.MetricCyclomaticComplexity, FilePath: filePath, Function: name, Value: cc},
			domain.Metric{Name: domain.MetricParameterCount, FilePath: filePath, Function: name, Value: float64(len(fn.Params))},
			domain.Metric{Name: domain.MetricNestingDepth, FilePath: filePath, Function: name, Value: float64(NestingDepth(fn))},
			domain.Metric{Name: domain.MetricLinesOfCode, FilePath: filePath, Function: name, Value: float64(spanLines(fn))},
		)
	}

	loc := countSourceLines(source)
	commentLines := countCommentLines(tree)
	ratio := 0.0
	if loc > 0 {
		ratio = float64(commentLines) / float64(loc)
	}
	avgComplexity := 1.0
	if len(functions) > 0 {
		avgComplexity = complexitySum / float64(len(functions))
	}

	metrics = append(metrics,
		domain.Metric{Name: domain.MetricLinesOfCode, FilePath: filePath, Value: float64(loc)},
		domain.Metric{Name: domain.MetricCommentRatio, FilePath: filePath, Value: ratio},
		domain.Metric{Name: domain.MetricMaintainabilityIndex, FilePath: filePath, Value: maintainabilityIndex(avgComplexity, loc, ratio)},
		domain.Metric{Name: domain.MetricFunctionCount, FilePath: filePath, Value: float64(len(functions))},
		domain.Metric{Name: domain.MetricClassCount, FilePath: filePath, Value: float64(countKind(tree, parser.NodeClass))},
		domain.Metric{Name: domain.MetricImportCount, FilePath: filePath, Value: float64(countImportBindings(tree))},
	)

	return metrics
}

// Complexity returns the cyclomatic complexity of a function: 1 plus the
// number of decision points in its subtree. Nested function definitions
// are counted separately and excluded here.
func Complexity(fn *parser.Node) int {
	complexity := 1
	forEachInFunction(fn, func(n *parser.Node) {
		switch n.Kind {
		case parser.NodeIf, parser.NodeFor, parser.NodeWhile,
			parser.NodeExcept, parser.NodeConditionalExpr, parser.NodeCase:
			complexity++
		case parser.NodeBoolOp:
			complexity++
		}
	})
	return complexity
}

// NestingDepth returns the maximum depth of nested control structures
// within a function body.
func NestingDepth(fn *parser.Node) int {
	max := 0
	var descend func(n *parser.Node, depth int)
	descend = func(n *parser.Node, depth int) {
		n.ForEachChild(func(child *parser.Node) {
			if child == nil || (child.IsFunction() && child != fn) {
				return
			}
			d := depth
			if isNesting(child) {
				d++
				if d > max {
					max = d
				}
			}
			descend(child, d)
		})
	}
	descend(fn, 0)
	return max
}

func isNesting(n *parser.Node) bool {
	switch n.Kind {
	case parser.NodeIf, parser.NodeFor, parser.NodeWhile,
		parser.NodeTry, parser.NodeWith, parser.NodeSwitch:
		return true
	}
	return false
}

// maintainabilityIndex combines complexity, size, and comment ratio into
// a 0..100 score. Higher complexity and size lower it; comments raise it.
func maintainabilityIndex(avgComplexity float64, loc int, commentRatio float64) float64 {
	if loc < 1 {
		loc = 1
	}
	if avgComplexity < 1 {
		avgComplexity = 1
	}

	mi := 171 -
		5.2*math.Log(avgComplexity) -
		0.23*avgComplexity -
		16.2*math.Log(float64(loc)) +
		50*math.Sin(math.Sqrt(2.4*commentRatio))

	if mi < 0 {
		return 0
	}
	if mi > 100 {
		return 100
	}
	return mi
}

// forEachInFunction visits every node in fn's subtree except nodes that
// belong to a nested function definition.
func forEachInFunction(fn *parser.Node, visit func(*parser.Node)) {
	var descend func(n *parser.Node)
	descend = func(n *parser.Node) {
		n.ForEachChild(func(child *parser.Node) {
			if child == nil || (child.IsFunction() && child != fn) {
				return
			}
			visit(child)
			descend(child)
		})
	}
	descend(fn)
}

func collectFunctions(tree *parser.Node) []*parser.Node {
	var functions []*parser.Node
	tree.Walk(func(n *parser.Node) bool {
		if n.IsFunction() {
			functions = append(functions, n)
		}
		return true
	})
	return functions
}

func functionName(fn *parser.Node) string {
	if fn.Name != "" {
		return fn.Name
	}
	return "<anonymous>"
}

func spanLines(n *parser.Node) int {
	lines := n.Location.EndLine - n.Location.StartLine + 1
	if lines < 0 {
		return 0
	}
	return lines
}

func countSourceLines(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	lines := 1
	for _, b := range source {
		if b == '\n' {
			lines++
		}
	}
	if source[len(source)-1] == '\n' {
		lines--
	}
	return lines
}

func countCommentLines(tree *parser.Node) int {
	count := 0
	tree.Walk(func(n *parser.Node) bool {
		if n.Kind == parser.NodeComment {
			count += spanLines(n)
		}
		return true
	})
	return count
}

func countKind(tree *parser.Node, kind parser.NodeKind) int {
	count := 0
	tree.Walk(func(n *parser.Node) bool {
		if n.Kind == kind {
			count++
		}
		return true
	})
	return count
}

// countImportBindings counts imported names, treating a multi-binding
// import statement as one count per binding.
func countImportBindings(tree *parser.Node) int {
	count := 0
	tree.Walk(func(n *parser.Node) bool {
		if n.Kind == parser.NodeImport {
			bindings := 0
			n.ForEachChild(func(child *parser.Node) {
				if child != nil && child.Kind == parser.NodeImport {
					bindings++
				}
			})
			if bindings == 0 {
				bindings = 1
			}
			count += bindings
			return false
		}
		return true
	})
	return count
}
