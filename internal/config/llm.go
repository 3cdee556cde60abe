package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

type LLMConfig struct {
	Provider   string
	MaxRetries int
	Timeout    time.Duration
}

var (
	llmConfig *LLMConfig
	llmOnce   sync.Once
)

func LoadLLMConfig() *LLMConfig {
	llmOnce.Do(func() {
		llmConfig = newLLMConfig(Settings())
	})
	return llmConfig
}

func newLLMConfig(v *viper.Viper) *LLMConfig {
	return &LLMConfig{
		Provider:   strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER"))),
		MaxRetries: v.GetInt("LLM_MAX_RETRIES"),
		Timeout:    v.GetDuration("LLM_TIMEOUT"),
	}
}

func (c *LLMConfig) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenRouter:
		return nil
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q (want %s or %s)", c.Provider, ProviderGemini, ProviderOpenRouter)
	}
}
