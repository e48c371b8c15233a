// Package assistant produces replies for the development assistant service.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const (
	// DefaultGeminiModel is used when no model is configured.
	DefaultGeminiModel = "gemini-2.5-flash"

	geminiMaxOutputTokens = 512
	geminiDefaultTimeout  = 60 * time.Second
)

const systemPrompt = "You are a concise and accurate assistant for LNMIIT. " +
	"Answer questions about the institute clearly and briefly. " +
	"If you are not sure of an answer, say you don't know."

// modelsClient is the part of genai.Models the generator calls.
type modelsClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var newGenaiClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
	return genai.NewClient(ctx, cfg)
}

// Gemini answers queries with a Gemini model.
type Gemini struct {
	models  modelsClient
	model   string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewGemini builds a generator for the Gemini API. apiKey is required; an
// empty model selects DefaultGeminiModel.
func NewGemini(ctx context.Context, apiKey, model string, logger zerolog.Logger) (*Gemini, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := newGenaiClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	logger.Debug().Str("model", model).Msg("gemini generator ready")
	return &Gemini{
		models:  client.Models,
		model:   model,
		timeout: geminiDefaultTimeout,
		logger:  logger,
	}, nil
}

// Model returns the model name queries are sent to.
func (g *Gemini) Model() string {
	return g.model
}

// Reply sends query to the model and returns its visible text. A model
// answer with no text yields "", which the widget shows as the fallback.
func (g *Gemini) Reply(ctx context.Context, query string) (string, error) {
	if _, ok := ctx.Deadline(); !ok && g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	contents := []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: query}},
		},
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
		Temperature:     genai.Ptr(float32(0)),
		MaxOutputTokens: geminiMaxOutputTokens,
	}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := visibleText(resp)
	g.logger.Info().
		Str("model", g.model).
		Dur("elapsed", time.Since(start)).
		Int("reply_len", len(text)).
		Msg("gemini answered")
	return text, nil
}

// visibleText joins the non-thought text parts of the first candidate.
func visibleText(resp *genai.GenerateContentResponse) string {
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
	return strings.TrimSpace(sb.String())
}
