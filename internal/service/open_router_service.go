package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fadilmartias/cv-assessor/internal/config"
	"github.com/fadilmartias/cv-assessor/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const systemPrompt = "You are an assistant for a recruitment platform. Always answer with valid JSON only."

var ErrEmptyCompletion = errors.New("no response from LLM")

type OpenRouterService struct {
	client *resty.Client
	Model  string
	logger *zap.Logger
}

var _ Agent = (*OpenRouterService)(nil)

func NewOpenRouterService(openRouterConfig *config.OpenRouterConfig, llmConfig *config.LLMConfig, log *zap.Logger) (*OpenRouterService, error) {
	if strings.TrimSpace(openRouterConfig.APIKey) == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY not set")
	}

	timeout := 90 * time.Second
	retries := 3
	if llmConfig != nil {
		if llmConfig.Timeout > 0 {
			timeout = llmConfig.Timeout
		}
		if llmConfig.MaxRetries >= 0 {
			retries = llmConfig.MaxRetries
		}
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(openRouterConfig.BaseURL, "/")).
		SetAuthToken(openRouterConfig.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(30 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, context.Canceled)
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	return &OpenRouterService{
		client: client,
		Model:  openRouterConfig.Model,
		logger: logger.OrNop(log).Named("openrouter"),
	}, nil
}

// Run posts the task to /chat/completions and returns the first choice's content.
func (s *OpenRouterService) Run(ctx context.Context, task string) (string, error) {
	if strings.TrimSpace(task) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	s.logger.Debug("chat completion",
		zap.String("model", s.Model),
		zap.String("prompt", logger.TruncateForLog(task, 200)),
	)

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"model":       s.Model,
			"temperature": 0.1,
			"messages": []map[string]string{
				{"role": "system", "content": systemPrompt},
				{"role": "user", "content": task},
			},
		}).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openrouter request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("openrouter returned %d: %s", resp.StatusCode(), logger.TruncateForLog(resp.String(), 300))
	}

	body := resp.String()
	if msg := gjson.Get(body, "error.message"); msg.Exists() {
		return "", fmt.Errorf("openrouter error: %s", msg.String())
	}

	text := gjson.Get(body, "choices.0.message.content").String()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}

	s.logger.Debug("chat completion done", zap.String("response", logger.TruncateForLog(text, 200)))
	return text, nil
}
