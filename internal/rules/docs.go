package rules

import (
	"fmt"
	"regexp"

	"github.com/reviewrabbit/rrscan/domain"
	"github.com/reviewrabbit/rrscan/internal/parser"
)

var markerToken = regexp.MustCompile(`\b(TODO|FIXME|XXX|HACK)\b`)

// todoCommentRule surfaces comments carrying work-marker tokens so they
// show up in reports instead of rotting in the source.
type todoCommentRule struct{}

func (todoCommentRule) ID() string                       { return RuleTodoComment }
func (todoCommentRule) Category() domain.Category        { return domain.CategoryDocumentation }
func (todoCommentRule) DefaultSeverity() domain.Severity { return domain.SeverityInfo }

func (r todoCommentRule) Check(ctx *Context) []domain.Issue {
	var issues []domain.Issue
	ctx.Tree.Walk(func(n *parser.Node) bool {
		if n.Kind != parser.NodeComment {
			return true
		}
		if marker := markerToken.FindString(n.Value); marker != "" {
			issues = append(issues, issueAt(r, ctx, n,
				fmt.Sprintf("%s marker in comment", marker), ""))
		}
		return true
	})
	return issues
}
