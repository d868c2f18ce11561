package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/thinknt/quizforge/config"
)

// LLMRequest is a single completion call. Responses are always requested as
// JSON; the caller still validates them.
type LLMRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
}

// LLMService abstracts the model provider. Transport and API failures surface
// as plain errors; the orchestrator wraps them.
type LLMService interface {
	Complete(ctx context.Context, req LLMRequest) (string, error)
}

// NewLLMService picks the provider from configuration. OpenAI is the default;
// Gemini can be selected with LLM_PROVIDER=gemini.
func NewLLMService(cfg *config.Config) (LLMService, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		return NewGeminiLLMService(cfg)
	case "", "openai":
		return NewOpenAILLMService(cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
	}
}

func warnMissingKey(provider string) {
	log.Warn().Str("provider", provider).Msg("LLM API key is not set. LLM service will be non-functional.")
}
