package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const (
	QuizStoreMemory   = "memory"
	QuizStorePostgres = "postgres"
)

type QuizConfig struct {
	Store          string
	SessionTTL     time.Duration
	PassThreshold  float64
	HideAnswers    bool
	JobCatalogFile string
}

var (
	quizConfig *QuizConfig
	quizOnce   sync.Once
)

func LoadQuizConfig() *QuizConfig {
	quizOnce.Do(func() {
		quizConfig = newQuizConfig(Settings())
	})
	return quizConfig
}

func newQuizConfig(v *viper.Viper) *QuizConfig {
	return &QuizConfig{
		Store:          strings.ToLower(strings.TrimSpace(v.GetString("QUIZ_STORE"))),
		SessionTTL:     v.GetDuration("QUIZ_SESSION_TTL"),
		PassThreshold:  v.GetFloat64("QUIZ_PASS_THRESHOLD"),
		HideAnswers:    v.GetBool("QUIZ_HIDE_ANSWERS"),
		JobCatalogFile: v.GetString("JOB_CATALOG_FILE"),
	}
}

func (c *QuizConfig) Validate() error {
	if c.Store != QuizStoreMemory && c.Store != QuizStorePostgres {
		return fmt.Errorf("unknown QUIZ_STORE %q (want %s or %s)", c.Store, QuizStoreMemory, QuizStorePostgres)
	}
	if c.PassThreshold <= 0 || c.PassThreshold > 100 {
		return fmt.Errorf("QUIZ_PASS_THRESHOLD must be in (0, 100], got %v", c.PassThreshold)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("QUIZ_SESSION_TTL must not be negative")
	}
	return nil
}
