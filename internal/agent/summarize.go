package agent

import (
	"context"
	"fmt"
	"strings"

	"book-assistant/backend/internal/agent/deps"
	"book-assistant/backend/internal/agent/prompt"
	"book-assistant/backend/internal/logger"
)

// MaxSummaryInput bounds the text accepted for summarization, in runes.
const MaxSummaryInput = 8000

// Summarizer produces Indonesian summaries of book descriptions.
type Summarizer struct {
	generator deps.Generator
	prompts   *prompt.Builder
}

// NewSummarizer creates a Summarizer on top of generator.
func NewSummarizer(generator deps.Generator, prompts *prompt.Builder) *Summarizer {
	if prompts == nil {
		prompts = prompt.NewBuilder()
	}
	return &Summarizer{generator: generator, prompts: prompts}
}

// Summarize returns the generated summary of text. Errors keep their apperr
// type so callers can tell configuration problems from upstream ones.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("text to summarize is empty")
	}
	if runes := []rune(text); len(runes) > MaxSummaryInput {
		text = string(runes[:MaxSummaryInput])
	}

	summary, err := s.generator.Generate(ctx, nil, s.prompts.BuildSummaryPrompt(text))
	if err != nil {
		return "", err
	}

	logger.Component(ctx, "summarizer").WithField("chars", len([]rune(summary))).Debug("summary generated")
	return strings.TrimSpace(summary), nil
}
