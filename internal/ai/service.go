package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyContent is returned when a helper is invoked without content.
var ErrEmptyContent = errors.New("content is required")

const summarizeSystem = `You are a text summarizer.
Summarize the text you receive.
Be concise.
Return only the summary.
Do not use the phrase "here is a summary".
Highlight relevant phrases in bold.
The summary should be two sentences long.`

const tagsSystem = `You are a keyword extraction tool.
Analyze the text and generate a list of 5 to 7 relevant tags or keywords.
Return them as a standard JSON array of strings (e.g., ["React", "Web Dev", "API"]).
Do not include any other text or markdown formatting.`

const improveSystem = `You are a writing assistant.
Rewrite the text you receive with improved clarity, grammar and flow.
Preserve the author's meaning and tone.
Return only the rewritten text.`

// Service exposes the document AI helpers.
type Service struct {
	client *Client
	model  string
}

// NewService creates the AI helper service over a provider client.
func NewService(client *Client, model string) *Service {
	return &Service{client: client, model: model}
}

func (s *Service) complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, &ChatCompletionRequest{
		Model: s.model,
		Messages: []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
		return "", fmt.Errorf("provider returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Summarize produces a two-sentence summary of the content.
func (s *Service) Summarize(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}
	return s.complete(ctx, summarizeSystem, content)
}

// GenerateTags extracts 5-7 tags from the content.
func (s *Service) GenerateTags(ctx context.Context, content string) ([]string, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	raw, err := s.complete(ctx, tagsSystem, content)
	if err != nil {
		return nil, err
	}
	return parseTags(raw), nil
}

// ImproveWriting rewrites the content with better clarity and grammar.
func (s *Service) ImproveWriting(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}
	return s.complete(ctx, improveSystem, content)
}

// parseTags accepts a JSON array, tolerating markdown code fences the
// model sometimes adds, and falls back to comma splitting.
func parseTags(raw string) []string {
	clean := strings.ReplaceAll(raw, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	var tags []string
	if err := json.Unmarshal([]byte(clean), &tags); err == nil {
		return tags
	}

	parts := strings.Split(clean, ",")
	tags = make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
