package config

import (
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	settings     *viper.Viper
	settingsOnce sync.Once
)

// Settings returns the process-wide viper instance. Values come from the
// environment (after .env is loaded) and from flags bound in cmd.
func Settings() *viper.Viper {
	settingsOnce.Do(func() {
		settings = newSettings()
	})
	return settings
}

func newSettings() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":5001")
	v.SetDefault("UPLOAD_MAX_BYTES", 5<<20)

	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")

	v.SetDefault("LLM_PROVIDER", "gemini")
	v.SetDefault("LLM_MAX_RETRIES", 3)
	v.SetDefault("LLM_TIMEOUT", 60*time.Second)

	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("GEMINI_EMBEDDING_MODEL", "gemini-embedding-001")

	v.SetDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1")
	v.SetDefault("OPENROUTER_MODEL", "openai/gpt-4o-mini")

	v.SetDefault("QUIZ_STORE", "memory")
	v.SetDefault("QUIZ_SESSION_TTL", time.Hour)
	v.SetDefault("QUIZ_PASS_THRESHOLD", 50.0)
	v.SetDefault("QUIZ_HIDE_ANSWERS", false)
	return v
}
