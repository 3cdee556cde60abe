package config

import (
	"sync"

	"github.com/spf13/viper"
)

type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

var (
	openRouterConfig *OpenRouterConfig
	openRouterOnce   sync.Once
)

func LoadOpenRouterConfig() *OpenRouterConfig {
	openRouterOnce.Do(func() {
		openRouterConfig = newOpenRouterConfig(Settings())
	})
	return openRouterConfig
}

func newOpenRouterConfig(v *viper.Viper) *OpenRouterConfig {
	model := v.GetString("OPENROUTER_MODEL")
	if override := v.GetString("LLM_MODEL"); override != "" && v.GetString("LLM_PROVIDER") == ProviderOpenRouter {
		model = override
	}
	return &OpenRouterConfig{
		APIKey:  v.GetString("OPENROUTER_API_KEY"),
		BaseURL: v.GetString("OPENROUTER_BASE_URL"),
		Model:   model,
	}
}
