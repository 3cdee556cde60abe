package service

import (
	"context"
	"fmt"

	"github.com/fadilmartias/cv-assessor/internal/config"
	"go.uber.org/zap"
)

// Agent runs a natural-language task against an LLM and returns its raw text.
type Agent interface {
	Run(ctx context.Context, task string) (string, error)
}

// Embedder turns text into a vector for similarity search.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// NewAgent builds the agent selected by LLM_PROVIDER.
func NewAgent(ctx context.Context, logger *zap.Logger) (Agent, error) {
	llmConfig := config.LoadLLMConfig()
	if err := llmConfig.Validate(); err != nil {
		return nil, err
	}

	switch llmConfig.Provider {
	case config.ProviderOpenRouter:
		return NewOpenRouterService(config.LoadOpenRouterConfig(), llmConfig, logger)
	default:
		return NewGeminiService(ctx, config.LoadGeminiConfig(), llmConfig, logger)
	}
}

// NewEmbedder returns a Gemini embedder, or nil when no Gemini key is configured.
func NewEmbedder(ctx context.Context, agent Agent, logger *zap.Logger) (Embedder, error) {
	if e, ok := agent.(Embedder); ok {
		return e, nil
	}
	geminiConfig := config.LoadGeminiConfig()
	if geminiConfig.APIKey == "" {
		return nil, nil
	}
	gemini, err := NewGeminiService(ctx, geminiConfig, config.LoadLLMConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}
	return gemini, nil
}
