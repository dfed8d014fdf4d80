package service

import (
	"html/template"
	"io"

	"github.com/reviewrabbit/rrscan/domain"
)

// htmlData is the template context for the HTML report
type htmlData struct {
	Result        *domain.AnalysisResult
	SeverityOrder []domain.Severity
}

func (f *OutputFormatterImpl) writeHTML(result *domain.AnalysisResult, writer io.Writer) error {
	funcMap := template.FuncMap{
		"severityClass": func(s domain.Severity) string {
			return "sev-" + s.String()
		},
		"bySeverity": func(counts map[string]int, s domain.Severity) int {
			return counts[s.String()]
		},
	}

	tmpl, err := template.New("report").Funcs(funcMap).Parse(htmlTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(writer, htmlData{Result: result, SeverityOrder: severityOrder})
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>rrscan report</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 70rem; color: #222; }
h1 { font-size: 1.6rem; }
table { border-collapse: collapse; width: 100%; margin-bottom: 1.5rem; }
th, td { border: 1px solid #ddd; padding: 0.4rem 0.6rem; text-align: left; font-size: 0.9rem; }
th { background: #f5f5f5; }
.sev-critical { color: #fff; background: #c0392b; }
.sev-high { color: #fff; background: #e67e22; }
.sev-medium { background: #f1c40f; }
.sev-low { background: #ecf0f1; }
.sev-info { color: #666; }
.failed { color: #c0392b; }
code { background: #f5f5f5; padding: 0 0.2rem; }
.meta { color: #888; font-size: 0.8rem; }
</style>
</head>
<body>
<h1>rrscan report</h1>
<p class="meta">Generated {{.Result.GeneratedAt}} by rrscan {{.Result.Version}}</p>

<h2>Summary</h2>
<table>
<tr><th>Files considered</th><td>{{.Result.Summary.FilesConsidered}}</td></tr>
<tr><th>Files analyzed</th><td>{{.Result.Summary.FilesAnalyzed}}</td></tr>
<tr><th>Total issues</th><td>{{.Result.Summary.TotalIssues}}</td></tr>
{{- $counts := .Result.Summary.IssuesBySeverity}}
{{- range .SeverityOrder}}
{{- $n := bySeverity $counts .}}
{{- if gt $n 0}}
<tr><th>{{.}}</th><td class="{{severityClass .}}">{{$n}}</td></tr>
{{- end}}
{{- end}}
<tr><th>Duration</th><td>{{.Result.Summary.DurationMs}}ms</td></tr>
</table>

{{- if gt .Result.Summary.TotalIssues 0}}
<h2>Issues</h2>
<table>
<tr><th>File</th><th>Line</th><th>Severity</th><th>Rule</th><th>Message</th></tr>
{{- range .Result.Files}}
{{- $file := .}}
{{- range .Issues}}
<tr>
<td>{{$file.FilePath}}</td>
<td>{{.Line}}:{{.Column}}</td>
<td class="{{severityClass .Severity}}">{{.Severity}}</td>
<td><code>{{.RuleID}}</code></td>
<td>{{.Message}}</td>
</tr>
{{- end}}
{{- end}}
</table>
{{- end}}

<h2>Files</h2>
<table>
<tr><th>File</th><th>Status</th><th>Issues</th></tr>
{{- range .Result.Files}}
<tr>
<td>{{.FilePath}}</td>
{{- if .Failed}}
<td class="failed">{{.Failure}}</td>
{{- else}}
<td>ok</td>
{{- end}}
<td>{{len .Issues}}</td>
</tr>
{{- end}}
</table>

{{- if .Result.Warnings}}
<h2>Warnings</h2>
<ul>
{{- range .Result.Warnings}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
</body>
</html>
`
