package service

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/thinknt/quizforge/config"
)

type openAILLMService struct {
	client *openai.Client
	model  string
}

// NewOpenAILLMService builds the default provider (gpt-4o with JSON response
// format). A missing key yields a non-functional instance that errors at call
// time, so the rest of the app still wires up.
func NewOpenAILLMService(cfg *config.Config) (LLMService, error) {
	if cfg.LLM.OpenAIApiKey == "" {
		warnMissingKey("openai")
		return &openAILLMService{client: nil, model: openai.GPT4o}, nil
	}
	return &openAILLMService{
		client: openai.NewClient(cfg.LLM.OpenAIApiKey),
		model:  openai.GPT4o,
	}, nil
}

func (s *openAILLMService) Complete(ctx context.Context, req LLMRequest) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("openai client not initialized (missing API key)")
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
