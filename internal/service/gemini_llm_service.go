package service

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/thinknt/quizforge/config"
	"google.golang.org/api/option"
)

type geminiLLMService struct {
	client *genai.Client
}

// NewGeminiLLMService is the alternate provider (gemini-1.5-flash with JSON
// response MIME type), selected with LLM_PROVIDER=gemini.
func NewGeminiLLMService(cfg *config.Config) (LLMService, error) {
	if cfg.LLM.GeminiApiKey == "" {
		warnMissingKey("gemini")
		return &geminiLLMService{client: nil}, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.LLM.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &geminiLLMService{client: client}, nil
}

// newModel configures a request-scoped model. Completions run concurrently
// from the worker pool, so per-request settings must never live on shared
// state.
func (s *geminiLLMService) newModel(req LLMRequest) *genai.GenerativeModel {
	model := s.client.GenerativeModel("gemini-1.5-flash")
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(req.Temperature)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemPrompt)}}
	return model
}

func (s *geminiLLMService) Complete(ctx context.Context, req LLMRequest) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("gemini client not initialized (missing API key)")
	}

	resp, err := s.newModel(req).GenerateContent(ctx, genai.Text(req.UserPrompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}

	text := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text += string(txt)
		}
	}
	if text == "" {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return text, nil
}
