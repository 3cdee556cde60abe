package config

import (
	"os"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	Name           string
	Env            string
	Port           string
	BaseURL        string
	UploadMaxBytes int
	Debug          bool
	JSONLogs       bool
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		appConfig = newAppConfig(Settings())
		warnIfEnvUnset(zap.L(), appConfig.Env)
	})
	return appConfig
}

func newAppConfig(v *viper.Viper) *AppConfig {
	return &AppConfig{
		Name:           v.GetString("APP_NAME"),
		Env:            v.GetString("APP_ENV"),
		Port:           v.GetString("APP_PORT"),
		BaseURL:        v.GetString("APP_URL"),
		UploadMaxBytes: v.GetInt("UPLOAD_MAX_BYTES"),
		Debug:          v.GetBool("debug"),
		JSONLogs:       v.GetBool("json"),
	}
}

// warnIfEnvUnset looks at the process environment directly since viper
// reports keys with a default as set.
func warnIfEnvUnset(log *zap.Logger, env string) {
	if _, ok := os.LookupEnv("APP_ENV"); !ok {
		log.Warn("APP_ENV not set, defaulting", zap.String("env", env))
	}
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
