// Package app wires validated requests to the services that execute them.
// Use cases own request validation and output writing; all analysis logic
// lives below them in the service layer.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/reviewrabbit/rrscan/domain"
)

// AnalyzeUseCase orchestrates a static analysis run
type AnalyzeUseCase struct {
	service   domain.AnalyzerService
	formatter domain.OutputFormatter
}

// NewAnalyzeUseCase creates a new analyze use case
func NewAnalyzeUseCase(service domain.AnalyzerService, formatter domain.OutputFormatter) *AnalyzeUseCase {
	return &AnalyzeUseCase{service: service, formatter: formatter}
}

// Execute runs the analysis and writes the formatted result to the
// request's writer. The result is returned as well so callers can act on
// it (exit codes, review pipeline).
func (uc *AnalyzeUseCase) Execute(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalysisResult, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, err
	}

	result, err := uc.service.Analyze(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	if req.OutputWriter != nil {
		if err := uc.formatter.Write(result, req.OutputFormat, req.OutputWriter); err != nil {
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
	}
	return result, nil
}

func (uc *AnalyzeUseCase) validateRequest(req domain.AnalyzeRequest) error {
	if req.Path == "" {
		return fmt.Errorf("no path specified")
	}
	if _, err := os.Stat(req.Path); err != nil {
		return fmt.Errorf("path does not exist: %s", req.Path)
	}
	switch req.OutputFormat {
	case "", domain.OutputFormatText, domain.OutputFormatJSON, domain.OutputFormatYAML,
		domain.OutputFormatMarkdown, domain.OutputFormatHTML:
	default:
		return fmt.Errorf("unsupported output format: %s", req.OutputFormat)
	}
	return nil
}
