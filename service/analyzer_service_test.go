package service

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/reviewrabbit/rrscan/domain"
	"github.com/reviewrabbit/rrscan/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newTestService(t *testing.T) *AnalyzerServiceImpl {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Analysis.Workers = 2
	return NewAnalyzerService(cfg, NewProgressManager(false))
}

func resultFor(t *testing.T, result *domain.AnalysisResult, name string) domain.FileResult {
	t.Helper()
	for _, f := range result.Files {
		if filepath.Base(f.FilePath) == name {
			return f
		}
	}
	t.Fatalf("no result for %s in %d files", name, len(result.Files))
	return domain.FileResult{}
}

func TestAnalyzeDirectoryWithSyntaxError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "def ok():\n    return 1\n")
	writeFile(t, dir, "b.py", "def broken(:\n    pass\n")
	writeFile(t, dir, "c.py", "try:\n    pass\nexcept:\n    pass\n")

	svc := newTestService(t)
	result, err := svc.Analyze(context.Background(), domain.AnalyzeRequest{Path: dir})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.Summary.FilesConsidered != 3 {
		t.Errorf("FilesConsidered = %d, want 3", result.Summary.FilesConsidered)
	}
	if result.Summary.FilesAnalyzed != 3 {
		t.Errorf("FilesAnalyzed = %d, want 3", result.Summary.FilesAnalyzed)
	}

	broken := resultFor(t, result, "b.py")
	if !broken.Failed() {
		t.Fatal("b.py should be recorded as a failure")
	}
	if len(broken.Issues) != 1 {
		t.Fatalf("b.py issues = %d, want exactly 1 synthetic issue", len(broken.Issues))
	}
	if broken.Issues[0].RuleID != "syntax_error" {
		t.Errorf("b.py issue rule = %s, want syntax_error", broken.Issues[0].RuleID)
	}
	if broken.Issues[0].Severity != domain.SeverityCritical {
		t.Errorf("syntax_error severity = %s, want critical", broken.Issues[0].Severity)
	}

	bare := resultFor(t, result, "c.py")
	if bare.Failed() {
		t.Fatal("c.py should analyze cleanly")
	}
	found := false
	for _, issue := range bare.Issues {
		if issue.RuleID == "bare_except_equivalent" {
			found = true
		}
	}
	if !found {
		t.Error("c.py should report bare_except_equivalent")
	}
}

func TestAnalyzeResultsAreOrdered(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zz.py", "x = 1\n")
	writeFile(t, dir, "aa.py", "y = 2\n")
	writeFile(t, dir, "mm.py", "z = 3\n")

	svc := newTestService(t)
	result, err := svc.Analyze(context.Background(), domain.AnalyzeRequest{Path: dir})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	var names []string
	for _, f := range result.Files {
		names = append(names, filepath.Base(f.FilePath))
	}
	want := []string{"aa.py", "mm.py", "zz.py"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("file order = %v, want %v", names, want)
	}
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "import os\nos.system(\"ls \" + user_input)\n")
	writeFile(t, dir, "b.py", "password = \"hunter22\"\n")

	svc := newTestService(t)
	first, err := svc.Analyze(context.Background(), domain.AnalyzeRequest{Path: dir})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, err := svc.Analyze(context.Background(), domain.AnalyzeRequest{Path: dir})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if !reflect.DeepEqual(first.Files, second.Files) {
		t.Error("two runs over identical input produced different file results")
	}
	if first.Summary.TotalIssues != second.Summary.TotalIssues {
		t.Errorf("issue counts differ between runs: %d vs %d",
			first.Summary.TotalIssues, second.Summary.TotalIssues)
	}
}

func TestAnalyzeExcludePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.py", "x = 1\n")
	writeFile(t, dir, filepath.Join("node_modules", "dep.js"), "var y = 2;\n")
	writeFile(t, dir, "skip.min.js", "var z=3;\n")

	svc := newTestService(t)
	result, err := svc.Analyze(context.Background(), domain.AnalyzeRequest{Path: dir})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.Summary.FilesAnalyzed != 1 {
		t.Fatalf("FilesAnalyzed = %d, want 1 (excludes should drop node_modules and *.min.js)", result.Summary.FilesAnalyzed)
	}
	if filepath.Base(result.Files[0].FilePath) != "keep.py" {
		t.Errorf("analyzed %s, want keep.py", result.Files[0].FilePath)
	}
}

func TestAnalyzeMaxFilesTruncation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "x = 1\n")
	writeFile(t, dir, "b.py", "y = 2\n")
	writeFile(t, dir, "c.py", "z = 3\n")

	svc := newTestService(t)
	result, err := svc.Analyze(context.Background(), domain.AnalyzeRequest{Path: dir, MaxFiles: 2})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.Summary.FilesConsidered != 3 {
		t.Errorf("FilesConsidered = %d, want 3", result.Summary.FilesConsidered)
	}
	if result.Summary.FilesAnalyzed != 2 {
		t.Errorf("FilesAnalyzed = %d, want 2", result.Summary.FilesAnalyzed)
	}
	// Byte-sorted order makes the kept prefix deterministic
	if filepath.Base(result.Files[0].FilePath) != "a.py" || filepath.Base(result.Files[1].FilePath) != "b.py" {
		t.Errorf("truncation kept %s, %s; want a.py, b.py",
			result.Files[0].FilePath, result.Files[1].FilePath)
	}
	if len(result.Warnings) == 0 {
		t.Error("truncation should emit a warning")
	}
}

func TestAnalyzeFileTooLarge(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "big.py", "x = 1\n")

	svc := newTestService(t)
	result, err := svc.AnalyzeFile(context.Background(), path, domain.AnalyzeRequest{MaxFileSize: 3})
	if err != nil {
		t.Fatalf("AnalyzeFile: %v", err)
	}

	if !result.Failed() {
		t.Fatal("oversized file should be a failure result")
	}
	if len(result.Issues) != 1 || result.Issues[0].RuleID != "file_too_large" {
		t.Errorf("issues = %+v, want single file_too_large", result.Issues)
	}
}

func TestAnalyzeFileMissing(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.AnalyzeFile(context.Background(), "/does/not/exist.py", domain.AnalyzeRequest{})
	if err == nil {
		t.Fatal("missing file should be a fatal error")
	}
}

func TestAnalyzeCancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "x = 1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newTestService(t)
	result, err := svc.Analyze(ctx, domain.AnalyzeRequest{Path: dir})
	if err != nil {
		t.Fatalf("Analyze with cancelled context should not error: %v", err)
	}
	if len(result.Warnings) == 0 {
		t.Error("cancelled run should carry an interruption warning")
	}
}

func TestAnalyzeSeverityOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "# TODO: fix me later\n")

	svc := newTestService(t)
	result, err := svc.Analyze(context.Background(), domain.AnalyzeRequest{
		Path:              dir,
		SeverityOverrides: map[string]domain.Severity{"todo_comment": domain.SeverityHigh},
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	file := resultFor(t, result, "a.py")
	for _, issue := range file.Issues {
		if issue.RuleID == "todo_comment" {
			if issue.Severity != domain.SeverityHigh {
				t.Errorf("todo_comment severity = %s, want high (overridden)", issue.Severity)
			}
			return
		}
	}
	t.Fatal("expected a todo_comment issue")
}
