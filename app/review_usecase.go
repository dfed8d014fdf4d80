package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reviewrabbit/rrscan/domain"
)

// ReviewUseCase runs static analysis and then requests an AI review for
// each successfully analyzed file. Review failures degrade per file; the
// analysis half of the response is always complete.
type ReviewUseCase struct {
	analyze    *AnalyzeUseCase
	reviewer   domain.Reviewer
	maxReviews int
}

// NewReviewUseCase creates a new review use case. maxReviews caps how many
// files are sent out per run; zero means no cap.
func NewReviewUseCase(analyze *AnalyzeUseCase, reviewer domain.Reviewer, maxReviews int) *ReviewUseCase {
	return &ReviewUseCase{analyze: analyze, reviewer: reviewer, maxReviews: maxReviews}
}

// Execute analyzes the request's path and reviews each analyzed file
func (uc *ReviewUseCase) Execute(ctx context.Context, req domain.AnalyzeRequest) (*domain.ReviewResponse, error) {
	// Formatting happens once on the combined response
	analyzeReq := req
	analyzeReq.OutputWriter = nil

	result, err := uc.analyze.Execute(ctx, analyzeReq)
	if err != nil {
		return nil, err
	}

	response := &domain.ReviewResponse{Analysis: result}
	for _, file := range result.Files {
		if file.Failed() {
			continue
		}
		if uc.maxReviews > 0 && len(response.Reviews) >= uc.maxReviews {
			response.Reviews = append(response.Reviews, domain.Review{
				FilePath:          file.FilePath,
				Unavailable:       true,
				UnavailableReason: fmt.Sprintf("review limit of %d files reached", uc.maxReviews),
			})
			continue
		}
		response.Reviews = append(response.Reviews, uc.reviewOne(ctx, file))
	}

	if req.OutputWriter != nil {
		if err := writeReviewResponse(response, req, uc.analyze.formatter); err != nil {
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
	}
	return response, nil
}

func (uc *ReviewUseCase) reviewOne(ctx context.Context, file domain.FileResult) domain.Review {
	source, err := os.ReadFile(file.FilePath)
	if err != nil {
		return domain.Review{
			FilePath:          file.FilePath,
			Unavailable:       true,
			UnavailableReason: fmt.Sprintf("cannot read file for review: %v", err),
		}
	}
	return uc.reviewer.Review(ctx, domain.ReviewInput{
		FilePath: file.FilePath,
		Source:   string(source),
		Issues:   file.Issues,
		Metrics:  file.Metrics,
	})
}

func writeReviewResponse(response *domain.ReviewResponse, req domain.AnalyzeRequest, formatter domain.OutputFormatter) error {
	switch req.OutputFormat {
	case domain.OutputFormatJSON, domain.OutputFormatYAML:
		// Structured formats carry the full response
		return writeStructured(response, req)
	default:
		if err := formatter.Write(response.Analysis, req.OutputFormat, req.OutputWriter); err != nil {
			return err
		}
		// Reviews render as trailing prose; an HTML document stays closed
		if req.OutputFormat == domain.OutputFormatHTML {
			return nil
		}
		return writeReviewsText(response, req)
	}
}

func writeStructured(response *domain.ReviewResponse, req domain.AnalyzeRequest) error {
	if req.OutputFormat == domain.OutputFormatYAML {
		return yaml.NewEncoder(req.OutputWriter).Encode(response)
	}
	encoder := json.NewEncoder(req.OutputWriter)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

func writeReviewsText(response *domain.ReviewResponse, req domain.AnalyzeRequest) error {
	for _, review := range response.Reviews {
		if review.Unavailable {
			fmt.Fprintf(req.OutputWriter, "\nReview of %s unavailable: %s\n", review.FilePath, review.UnavailableReason)
			continue
		}
		fmt.Fprintf(req.OutputWriter, "\nReview of %s (score %d/10)\n%s\n", review.FilePath, review.OverallScore, review.Summary)
		for _, s := range review.Suggestions {
			if s.Line > 0 {
				fmt.Fprintf(req.OutputWriter, "  line %d: %s\n", s.Line, s.Message)
			} else {
				fmt.Fprintf(req.OutputWriter, "  %s\n", s.Message)
			}
		}
		for _, tc := range review.TestCases {
			fmt.Fprintf(req.OutputWriter, "  test: %s\n", tc)
		}
	}
	return nil
}
