package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/logging"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-1.5-flash-latest"

// geminiClient implements the LLMClient interface using the Google Gemini API.
type geminiClient struct {
	client *genai.Client
	cfg    Config
	logger *zap.Logger
}

// LLMClient defines the interface for interacting with a generative AI model.
type LLMClient interface {
	// GenerateJSON sends p to the model and returns the raw JSON document it produced. The
	// document is expected, but not guaranteed, to conform to p.Schema.
	GenerateJSON(ctx context.Context, p StructuredPrompt) ([]byte, error)

	// IsAPIKeyValid checks if the configured API key is functional.
	IsAPIKeyValid(ctx context.Context) error

	// Close cleans up any resources used by the client.
	Close() error
}

// StructuredPrompt is a prompt whose answer must be a single JSON document.
type StructuredPrompt struct {
	// Name identifies the prompt in logs.
	Name        string
	Text        string
	Schema      *Schema
	Temperature float32
}

// Config holds configuration for the GenAI client.
type Config struct {
	APIKey string
	Model  string
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cannot create Gemini client: API key is missing")
	}
	logger = logging.OrNop(logger)

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
		logger.Info("Gemini model not specified, using default", zap.String("model", cfg.Model))
	}

	return &geminiClient{
		client: client,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Close cleans up the underlying Gemini client.
func (c *geminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAPIKeyValid checks if the Gemini API key is valid by listing models.
func (c *geminiClient) IsAPIKeyValid(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("gemini client not initialized (likely missing API key)")
	}

	modelIterator := c.client.ListModels(ctx)
	_, err := modelIterator.Next() // Attempt to list one model
	if err != nil {
		if st, ok := status.FromError(err); ok {
			if st.Code() == codes.Unauthenticated || st.Code() == codes.PermissionDenied {
				return fmt.Errorf("invalid Gemini API key or insufficient permissions: %w", err)
			}
		}
		return fmt.Errorf("failed to verify Gemini API key by listing models: %w", err)
	}
	return nil
}

// GenerateJSON runs p with JSON output constrained to p.Schema.
func (c *geminiClient) GenerateJSON(ctx context.Context, p StructuredPrompt) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("gemini client not initialized")
	}

	model := c.client.GenerativeModel(c.cfg.Model)
	model.SetTemperature(p.Temperature)
	model.SetMaxOutputTokens(1024)
	model.SetTopP(0.9)
	model.SetTopK(40)
	model.ResponseMIMEType = "application/json"
	if p.Schema != nil {
		model.ResponseSchema = p.Schema.toGemini()
	}

	resp, err := model.GenerateContent(ctx, genai.Text(p.Text))
	if err != nil {
		return nil, fmt.Errorf("Gemini API call failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		c.logger.Warn("Could not read Gemini response", zap.String("prompt", p.Name), zap.Error(err))
		return nil, err
	}

	c.logger.Debug("Generated structured output", zap.String("prompt", p.Name), zap.String("model", c.cfg.Model))
	return []byte(stripCodeFence(text)), nil
}

// getFirstTextPart extracts the first text part from a Gemini response.
func getFirstTextPart(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		safetyRatings := "none"
		if resp != nil && len(resp.Candidates) > 0 {
			finishReason = resp.Candidates[0].FinishReason.String()
			if resp.Candidates[0].SafetyRatings != nil {
				safetyRatings = fmt.Sprintf("%v", resp.Candidates[0].SafetyRatings)
			}
		}
		return "", fmt.Errorf("empty or incomplete response from Gemini API. FinishReason: %s, SafetyRatings: %s", finishReason, safetyRatings)
	}
	part := resp.Candidates[0].Content.Parts[0]
	text, ok := part.(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part type: %T", part)
	}
	return string(text), nil
}

// responseText joins every text part of the first candidate; long JSON answers may be split
// across parts.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	first, err := getFirstTextPart(resp)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(first)
	for _, part := range resp.Candidates[0].Content.Parts[1:] {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

// stripCodeFence removes a surrounding ```json fence, which some models add even in JSON mode.
func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
