package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/reviewrabbit/rrscan/domain"
	"github.com/reviewrabbit/rrscan/internal/config"
	"github.com/reviewrabbit/rrscan/internal/metrics"
	"github.com/reviewrabbit/rrscan/internal/parser"
	"github.com/reviewrabbit/rrscan/internal/rules"
	"github.com/reviewrabbit/rrscan/internal/version"
)

// AnalyzerServiceImpl implements domain.AnalyzerService. Per-file analysis
// is independent and runs across a bounded worker pool; results are merged
// in candidate order so output is deterministic regardless of completion
// order.
type AnalyzerServiceImpl struct {
	cfg      *config.Config
	progress domain.ProgressManager
}

// NewAnalyzerService creates an analyzer service from validated config
func NewAnalyzerService(cfg *config.Config, progress domain.ProgressManager) *AnalyzerServiceImpl {
	if progress == nil {
		progress = &NoOpProgressManager{}
	}
	return &AnalyzerServiceImpl{cfg: cfg, progress: progress}
}

// Analyze walks the request's root path and analyzes every matched file
func (s *AnalyzerServiceImpl) Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalysisResult, error) {
	start := time.Now()

	walker := NewFileWalker(
		s.includePatterns(req),
		s.excludePatterns(req),
		s.cfg.Analysis.RespectGitignore,
	)
	candidates, err := walker.Collect(req.Path)
	if err != nil {
		return nil, err
	}

	var warnings []string
	filesConsidered := len(candidates)
	maxFiles := req.MaxFiles
	if maxFiles <= 0 {
		maxFiles = s.cfg.Analysis.MaxFiles
	}
	if filesConsidered > maxFiles {
		candidates = candidates[:maxFiles]
		warnings = append(warnings,
			fmt.Sprintf("found %d candidate files, analyzing the first %d (max_files)", filesConsidered, maxFiles))
	}

	engine := rules.NewEngine(s.enabledRules(req), s.severityOverrides(req))

	task := s.progress.StartTask("Analyzing files", len(candidates))
	defer task.Complete()

	results := make([]*domain.FileResult, len(candidates))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())

	cancelled := false
	for i, path := range candidates {
		// No new dispatch after cancellation; in-flight analyses finish
		select {
		case <-gCtx.Done():
			cancelled = true
		default:
		}
		if cancelled {
			break
		}

		g.Go(func() error {
			result := s.analyzeOne(path, engine, req)
			results[i] = &result
			task.Increment(1)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		warnings = append(warnings, fmt.Sprintf("analysis interrupted: %v", err))
	}

	result := &domain.AnalysisResult{
		Warnings:    warnings,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.GetVersion(),
	}
	for _, r := range results {
		if r != nil {
			result.Files = append(result.Files, *r)
		}
	}

	allIssues := result.AllIssues()
	result.Summary = domain.AnalysisSummary{
		FilesConsidered:  filesConsidered,
		FilesAnalyzed:    len(result.Files),
		TotalIssues:      len(allIssues),
		IssuesBySeverity: domain.CountBySeverity(allIssues),
		DurationMs:       time.Since(start).Milliseconds(),
	}
	return result, nil
}

// AnalyzeFile analyzes a single source file
func (s *AnalyzerServiceImpl) AnalyzeFile(ctx context.Context, filePath string, req domain.AnalyzeRequest) (*domain.FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(filePath); err != nil {
		return nil, domain.NewFileNotFoundError(filePath, err)
	}
	engine := rules.NewEngine(s.enabledRules(req), s.severityOverrides(req))
	result := s.analyzeOne(filePath, engine, req)
	return &result, nil
}

// analyzeOne runs one file through parse, rule evaluation, and metrics.
// Every failure is captured into the FileResult; this never returns an
// error because per-file problems must not abort the scan.
func (s *AnalyzerServiceImpl) analyzeOne(path string, engine *rules.Engine, req domain.AnalyzeRequest) domain.FileResult {
	maxSize := req.MaxFileSize
	if maxSize <= 0 {
		maxSize = s.cfg.Analysis.MaxFileSizeBytes
	}

	if info, err := os.Stat(path); err == nil && info.Size() > maxSize {
		return s.failureResult(path, rules.RuleFileTooLarge, domain.CategoryBestPractice, domain.SeverityLow,
			fmt.Sprintf("file too large to analyze (%d bytes, limit %d)", info.Size(), maxSize))
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return s.failureResult(path, rules.RuleFileAccess, domain.CategoryBestPractice, domain.SeverityLow,
			fmt.Sprintf("cannot read file: %v", err))
	}

	tree, err := parser.ParseSource(path, source)
	if err != nil {
		var failure *parser.ParseFailure
		if errors.As(err, &failure) {
			issue := domain.Issue{
				RuleID:   rules.RuleSyntaxError,
				Category: domain.CategorySyntax,
				Severity: s.syntaxSeverity(req),
				FilePath: path,
				Line:     failure.Line,
				Column:   failure.Column,
				Message:  failure.Message,
			}
			return domain.FileResult{FilePath: path, Issues: []domain.Issue{issue}, Failure: failure.Message}
		}
		return s.failureResult(path, rules.RuleFileAccess, domain.CategoryBestPractice, domain.SeverityLow,
			fmt.Sprintf("analysis failed: %v", err))
	}

	ruleCtx := &rules.Context{
		FilePath:   path,
		Tree:       tree,
		Source:     source,
		Thresholds: s.cfg.Rules.Thresholds(),
	}
	return domain.FileResult{
		FilePath: path,
		Issues:   engine.Evaluate(ruleCtx),
		Metrics:  metrics.Measure(path, tree, source),
	}
}

func (s *AnalyzerServiceImpl) failureResult(path, ruleID string, category domain.Category, severity domain.Severity, message string) domain.FileResult {
	return domain.FileResult{
		FilePath: path,
		Failure:  message,
		Issues: []domain.Issue{{
			RuleID:   ruleID,
			Category: category,
			Severity: severity,
			FilePath: path,
			Line:     1,
			Column:   0,
			Message:  message,
		}},
	}
}

func (s *AnalyzerServiceImpl) includePatterns(req domain.AnalyzeRequest) []string {
	if len(req.IncludePatterns) > 0 {
		return req.IncludePatterns
	}
	return s.cfg.Analysis.IncludePatterns
}

func (s *AnalyzerServiceImpl) excludePatterns(req domain.AnalyzeRequest) []string {
	if len(req.ExcludePatterns) > 0 {
		return req.ExcludePatterns
	}
	return s.cfg.Analysis.ExcludePatterns
}

func (s *AnalyzerServiceImpl) enabledRules(req domain.AnalyzeRequest) []string {
	if len(req.EnabledRules) > 0 {
		return req.EnabledRules
	}
	return s.cfg.Rules.Enabled
}

func (s *AnalyzerServiceImpl) severityOverrides(req domain.AnalyzeRequest) map[string]domain.Severity {
	if len(req.SeverityOverrides) > 0 {
		return req.SeverityOverrides
	}
	return s.cfg.Rules.SeverityMap()
}

func (s *AnalyzerServiceImpl) syntaxSeverity(req domain.AnalyzeRequest) domain.Severity {
	if sev, ok := req.SeverityOverrides[rules.RuleSyntaxError]; ok {
		return sev
	}
	if sev, ok := s.cfg.Rules.SeverityMap()[rules.RuleSyntaxError]; ok {
		return sev
	}
	return s.cfg.Rules.SyntaxSeverity()
}

func (s *AnalyzerServiceImpl) workers() int {
	if s.cfg.Analysis.Workers > 0 {
		return s.cfg.Analysis.Workers
	}
	return runtime.NumCPU()
}
