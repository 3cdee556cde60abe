package config

import (
	"sync"

	"github.com/spf13/viper"
)

type GeminiConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
}

var (
	geminiConfig *GeminiConfig
	geminiOnce   sync.Once
)

func LoadGeminiConfig() *GeminiConfig {
	geminiOnce.Do(func() {
		geminiConfig = newGeminiConfig(Settings())
	})
	return geminiConfig
}

func newGeminiConfig(v *viper.Viper) *GeminiConfig {
	model := v.GetString("GEMINI_MODEL")
	if override := v.GetString("LLM_MODEL"); override != "" && v.GetString("LLM_PROVIDER") == ProviderGemini {
		model = override
	}
	return &GeminiConfig{
		APIKey:         v.GetString("GEMINI_API_KEY"),
		Model:          model,
		EmbeddingModel: v.GetString("GEMINI_EMBEDDING_MODEL"),
	}
}
