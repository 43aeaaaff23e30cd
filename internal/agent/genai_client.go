package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"book-assistant/backend/internal/apperr"
	"book-assistant/backend/internal/logger"
	"book-assistant/backend/internal/metrics"

	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// DefaultModel is the Gemini model used for chat replies and summaries
	DefaultModel = "gemini-2.0-flash"
	// DefaultGenerateTimeout applies when the caller context has no deadline
	DefaultGenerateTimeout = 30 * time.Second

	geminiService = "gemini"
)

type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var newGenaiClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
	return genai.NewClient(ctx, cfg)
}

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
	Timeout         time.Duration
}

// GeminiClient implements deps.Generator using the Gemini API
type GeminiClient struct {
	models          geminiModels
	model           string
	temperature     float32
	maxOutputTokens int32
	timeout         time.Duration
}

// NewGeminiClient creates a GeminiClient. An empty API key is not an error
// here: the client is returned unconfigured and every Generate call reports a
// ConfigurationError without touching the network.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	c := &GeminiClient{
		model:           strings.TrimSpace(cfg.Model),
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
		timeout:         cfg.Timeout,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.timeout <= 0 {
		c.timeout = DefaultGenerateTimeout
	}
	if c.temperature == 0 {
		c.temperature = 0.7
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		logger.Component(ctx, geminiService).Warn("GEMINI_API_KEY is not set, generative replies are disabled")
		return c, nil
	}

	client, err := newGenaiClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	c.models = client.Models
	return c, nil
}

// Configured reports whether the client has credentials.
func (c *GeminiClient) Configured() bool {
	return c != nil && c.models != nil
}

// Generate sends contextParts followed by userText as one user turn and
// returns the text of the first candidate.
func (c *GeminiClient) Generate(ctx context.Context, contextParts []string, userText string) (text string, err error) {
	if !c.Configured() {
		return "", &apperr.ConfigurationError{Setting: "GEMINI_API_KEY", Reason: "not set"}
	}

	parts := make([]*genai.Part, 0, len(contextParts)+1)
	for _, p := range contextParts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		parts = append(parts, genai.NewPartFromText(p))
	}
	parts = append(parts, genai.NewPartFromText(userText))

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if c.maxOutputTokens > 0 {
		config.MaxOutputTokens = c.maxOutputTokens
	}

	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.UpstreamDuration.WithLabelValues(geminiService).Observe(time.Since(start).Seconds())
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeError
		}
		metrics.UpstreamRequestsTotal.WithLabelValues(geminiService, outcome).Inc()
	}()

	resp, err := c.models.GenerateContent(callCtx, c.model, []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: parts,
		},
	}, config)
	if err != nil {
		return "", classifyGenerateError(err)
	}

	text = extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", &apperr.EmptyResponseError{Service: geminiService}
	}

	logger.Component(ctx, geminiService).WithField("duration", time.Since(start).String()).Debug("generate completed")
	return text, nil
}

func (c *GeminiClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// classifyGenerateError wraps err as an UpstreamError, flagging quota errors.
func classifyGenerateError(err error) error {
	uerr := &apperr.UpstreamError{Service: geminiService, Op: "generate", Err: err}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		uerr.StatusCode = apiErr.Code
		uerr.RateLimited = apiErr.Code == http.StatusTooManyRequests ||
			strings.EqualFold(apiErr.Status, "RESOURCE_EXHAUSTED")
		return uerr
	}

	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		uerr.RateLimited = true
	}
	return uerr
}

// extractText concatenates the visible text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
