package agent

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"book-assistant/backend/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type stubGeminiModels struct {
	resp *genai.GenerateContentResponse
	err  error

	calls       int
	gotModel    string
	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig
	hadDeadline bool
}

func (s *stubGeminiModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.calls++
	s.gotModel = model
	s.gotContents = contents
	s.gotConfig = cfg
	_, s.hadDeadline = ctx.Deadline()
	return s.resp, s.err
}

func textResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Role:  genai.RoleModel,
					Parts: parts,
				},
			},
		},
	}
}

func newStubbedGemini(models *stubGeminiModels) *GeminiClient {
	return &GeminiClient{
		models:      models,
		model:       DefaultModel,
		temperature: 0.7,
		timeout:     time.Second,
	}
}

func TestNewGeminiClient_WithoutKey(t *testing.T) {
	origNewClient := newGenaiClient
	defer func() { newGenaiClient = origNewClient }()

	called := false
	newGenaiClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
		called = true
		return &genai.Client{}, nil
	}

	c, err := NewGeminiClient(context.Background(), GeminiConfig{APIKey: "   "})
	require.NoError(t, err)
	assert.False(t, called)
	assert.False(t, c.Configured())

	_, err = c.Generate(context.Background(), []string{"ctx"}, "hello")
	var cfgErr *apperr.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "GEMINI_API_KEY", cfgErr.Setting)
}

func TestNewGeminiClient_WithKey(t *testing.T) {
	origNewClient := newGenaiClient
	defer func() { newGenaiClient = origNewClient }()

	var gotCfg *genai.ClientConfig
	newGenaiClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
		gotCfg = cfg
		return &genai.Client{}, nil
	}

	c, err := NewGeminiClient(context.Background(), GeminiConfig{APIKey: "test-key"})
	require.NoError(t, err)
	require.NotNil(t, gotCfg)
	assert.Equal(t, "test-key", gotCfg.APIKey)
	assert.Equal(t, genai.BackendGeminiAPI, gotCfg.Backend)
	assert.Equal(t, DefaultModel, c.model)
	assert.Equal(t, DefaultGenerateTimeout, c.timeout)
}

func TestNewGeminiClient_ClientError(t *testing.T) {
	origNewClient := newGenaiClient
	defer func() { newGenaiClient = origNewClient }()

	newGenaiClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
		return nil, errors.New("no credentials")
	}

	_, err := NewGeminiClient(context.Background(), GeminiConfig{APIKey: "test-key"})
	assert.Error(t, err)
}

func TestGeminiClient_Generate(t *testing.T) {
	models := &stubGeminiModels{resp: textResponse(
		&genai.Part{Text: "thinking...", Thought: true},
		&genai.Part{Text: "Halo, "},
		&genai.Part{Text: "ada yang bisa dibantu?"},
	)}
	c := newStubbedGemini(models)

	text, err := c.Generate(context.Background(), []string{"context part", "  "}, "Halo")
	require.NoError(t, err)
	assert.Equal(t, "Halo, ada yang bisa dibantu?", text)

	assert.Equal(t, 1, models.calls)
	assert.Equal(t, DefaultModel, models.gotModel)
	assert.True(t, models.hadDeadline)
	require.Len(t, models.gotContents, 1)
	content := models.gotContents[0]
	assert.Equal(t, genai.RoleUser, content.Role)
	require.Len(t, content.Parts, 2)
	assert.Equal(t, "context part", content.Parts[0].Text)
	assert.Equal(t, "Halo", content.Parts[1].Text)
	require.NotNil(t, models.gotConfig.Temperature)
	assert.Equal(t, float32(0.7), *models.gotConfig.Temperature)
}

func TestGeminiClient_GenerateEmpty(t *testing.T) {
	for name, resp := range map[string]*genai.GenerateContentResponse{
		"nil response":  nil,
		"no candidates": {},
		"blank text":    textResponse(&genai.Part{Text: "   "}),
	} {
		t.Run(name, func(t *testing.T) {
			c := newStubbedGemini(&stubGeminiModels{resp: resp})
			_, err := c.Generate(context.Background(), nil, "Halo")
			assert.True(t, apperr.IsEmptyResponse(err))
		})
	}
}

func TestGeminiClient_GenerateErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		rateLimited bool
	}{
		{"api error", genai.APIError{Code: http.StatusInternalServerError, Message: "internal"}, 500, false},
		{"api quota", genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}, 429, true},
		{"grpc exhausted", status.Error(codes.ResourceExhausted, "quota"), 0, true},
		{"timeout", context.DeadlineExceeded, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newStubbedGemini(&stubGeminiModels{err: tt.err})
			_, err := c.Generate(context.Background(), nil, "Halo")

			var uerr *apperr.UpstreamError
			require.ErrorAs(t, err, &uerr)
			assert.Equal(t, "gemini", uerr.Service)
			assert.Equal(t, tt.wantStatus, uerr.StatusCode)
			assert.Equal(t, tt.rateLimited, uerr.RateLimited)
			assert.Equal(t, tt.err, uerr.Err)
		})
	}
}

func TestGeminiClient_KeepsCallerDeadline(t *testing.T) {
	models := &stubGeminiModels{resp: textResponse(&genai.Part{Text: "ok"})}
	c := newStubbedGemini(models)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	_, err := c.Generate(ctx, nil, "Halo")
	require.NoError(t, err)
	assert.True(t, models.hadDeadline)
}
