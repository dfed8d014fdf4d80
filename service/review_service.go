package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/reviewrabbit/rrscan/domain"
	"github.com/reviewrabbit/rrscan/internal/config"
)

// reviewSourceLimit caps how much source text is sent per review request
const reviewSourceLimit = 32 * 1024

// ReviewServiceImpl implements domain.Reviewer against an OpenAI-style
// chat-completions endpoint. Every failure mode degrades to an
// unavailable Review; the static analysis pipeline never depends on this
// service succeeding.
type ReviewServiceImpl struct {
	cfg    config.AIConfig
	client *http.Client
	apiKey string
}

// NewReviewService creates a reviewer from AI configuration. The API key
// is read from the configured environment variable at construction time.
func NewReviewService(cfg config.AIConfig) *ReviewServiceImpl {
	return &ReviewServiceImpl{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		apiKey: os.Getenv(cfg.APIKeyEnv),
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *formatSpec   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type formatSpec struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// reviewPayload is the JSON contract the model is asked to fill
type reviewPayload struct {
	OverallScore int                 `json:"overall_score"`
	Summary      string              `json:"summary"`
	Suggestions  []domain.Suggestion `json:"suggestions"`
	TestCases    []string            `json:"test_cases"`
}

// Review sends one file with its static findings for AI review
func (s *ReviewServiceImpl) Review(ctx context.Context, input domain.ReviewInput) domain.Review {
	if !s.cfg.Enabled {
		return unavailable(input.FilePath, "AI review is disabled in configuration")
	}
	if s.apiKey == "" {
		return unavailable(input.FilePath, fmt.Sprintf("no API key in environment variable %s", s.cfg.APIKeyEnv))
	}

	body, err := json.Marshal(chatRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(input)},
		},
		Temperature:    0.2,
		ResponseFormat: &formatSpec{Type: "json_object"},
	})
	if err != nil {
		return unavailable(input.FilePath, fmt.Sprintf("failed to encode request: %v", err))
	}

	url := strings.TrimRight(s.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return unavailable(input.FilePath, fmt.Sprintf("failed to build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return unavailable(input.FilePath, fmt.Sprintf("review service unreachable: %v", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return unavailable(input.FilePath, fmt.Sprintf("failed to read response: %v", err))
	}
	if resp.StatusCode != http.StatusOK {
		return unavailable(input.FilePath, fmt.Sprintf("review service returned status %d", resp.StatusCode))
	}

	var chat chatResponse
	if err := json.Unmarshal(data, &chat); err != nil {
		return unavailable(input.FilePath, fmt.Sprintf("malformed response: %v", err))
	}
	if chat.Error != nil {
		return unavailable(input.FilePath, fmt.Sprintf("review service error: %s", chat.Error.Message))
	}
	if len(chat.Choices) == 0 {
		return unavailable(input.FilePath, "review service returned no choices")
	}

	var payload reviewPayload
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &payload); err != nil {
		return unavailable(input.FilePath, fmt.Sprintf("review content is not valid JSON: %v", err))
	}
	if payload.OverallScore < 1 {
		payload.OverallScore = 1
	}
	if payload.OverallScore > 10 {
		payload.OverallScore = 10
	}

	return domain.Review{
		FilePath:     input.FilePath,
		OverallScore: payload.OverallScore,
		Summary:      payload.Summary,
		Suggestions:  payload.Suggestions,
		TestCases:    payload.TestCases,
	}
}

func unavailable(filePath, reason string) domain.Review {
	return domain.Review{
		FilePath:          filePath,
		Unavailable:       true,
		UnavailableReason: reason,
	}
}

const systemPrompt = `You are a senior code reviewer. Respond with a single JSON object with keys:
"overall_score" (integer 1-10, 10 is excellent),
"summary" (short paragraph),
"suggestions" (array of {"line": int, "type": string, "message": string, "code_example": string}),
"test_cases" (array of short test descriptions).`

func buildUserPrompt(input domain.ReviewInput) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Review the file %s.\n\n", input.FilePath)

	if len(input.Issues) > 0 {
		sb.WriteString("Static analysis issues:\n")
		for _, issue := range input.Issues {
			fmt.Fprintf(&sb, "- line %d [%s/%s] %s: %s\n",
				issue.Line, issue.Category, issue.Severity, issue.RuleID, issue.Message)
		}
		sb.WriteString("\n")
	}

	if len(input.Metrics) > 0 {
		sb.WriteString("Metrics:\n")
		for _, m := range input.Metrics {
			if m.Function != "" {
				fmt.Fprintf(&sb, "- %s(%s) = %g\n", m.Name, m.Function, m.Value)
			} else {
				fmt.Fprintf(&sb, "- %s = %g\n", m.Name, m.Value)
			}
		}
		sb.WriteString("\n")
	}

	source := input.Source
	if len(source) > reviewSourceLimit {
		source = source[:reviewSourceLimit] + "\n... (truncated)"
	}
	fmt.Fprintf(&sb, "Source:\n```\n%s\n```\n", source)

	return sb.String()
}
