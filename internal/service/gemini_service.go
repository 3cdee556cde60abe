package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/fadilmartias/cv-assessor/internal/config"
	"github.com/fadilmartias/cv-assessor/internal/logger"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const maxEmbeddingChars = 10000

// generativeModels is the part of *genai.Models the service uses.
type generativeModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// wait blocks for d or until ctx is done. Tests replace it.
var wait = func(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var ErrCircuitOpen = errors.New("circuit breaker open")

const (
	defaultBreakerThreshold = 5
	defaultBreakerCooldown  = 30 * time.Second
)

// circuitBreaker opens after max consecutive failures. Once cooldown has
// passed it lets a single trial call through; success closes it, failure
// keeps it open for another cooldown.
type circuitBreaker struct {
	mu       sync.Mutex
	failures int
	max      int
	cooldown time.Duration
	openedAt time.Time
	now      func() time.Time
}

func newCircuitBreaker(threshold int, cooldown time.Duration) *circuitBreaker {
	return &circuitBreaker{max: threshold, cooldown: cooldown, now: time.Now}
}

func (b *circuitBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures < b.max {
		return true
	}
	if b.now().Sub(b.openedAt) < b.cooldown {
		return false
	}
	b.openedAt = b.now()
	return true
}

func (b *circuitBreaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.openedAt = time.Time{}
}

func (b *circuitBreaker) failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= b.max {
		b.openedAt = b.now()
	}
}

func (b *circuitBreaker) status() (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures, b.failures >= b.max
}

type GeminiService struct {
	models         generativeModels
	Model          string
	EmbeddingModel string
	MaxRetries     int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	RequestTimeout time.Duration
	logger         *zap.Logger

	// text generation and embeddings trip independently
	generateBreaker *circuitBreaker
	embedBreaker    *circuitBreaker
}

var (
	_ Agent    = (*GeminiService)(nil)
	_ Embedder = (*GeminiService)(nil)
)

func NewGeminiService(ctx context.Context, geminiConfig *config.GeminiConfig, llmConfig *config.LLMConfig, log *zap.Logger) (*GeminiService, error) {
	apiKey := strings.TrimSpace(geminiConfig.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGeminiService(client.Models, geminiConfig, llmConfig, log), nil
}

func newGeminiService(models generativeModels, geminiConfig *config.GeminiConfig, llmConfig *config.LLMConfig, log *zap.Logger) *GeminiService {
	s := &GeminiService{
		models:            models,
		Model:             geminiConfig.Model,
		EmbeddingModel:    geminiConfig.EmbeddingModel,
		MaxRetries:        3,
		BaseDelay:         time.Second,
		MaxDelay:          30 * time.Second,
		RequestTimeout:    90 * time.Second,
		logger:            logger.OrNop(log).Named("gemini"),
		generateBreaker:   newCircuitBreaker(defaultBreakerThreshold, defaultBreakerCooldown),
		embedBreaker:      newCircuitBreaker(defaultBreakerThreshold, defaultBreakerCooldown),
	}
	if llmConfig != nil {
		if llmConfig.MaxRetries >= 0 {
			s.MaxRetries = llmConfig.MaxRetries
		}
		if llmConfig.Timeout > 0 {
			s.RequestTimeout = llmConfig.Timeout
		}
	}
	return s
}

// Run sends the task as a single user prompt and returns the text answer.
func (s *GeminiService) Run(ctx context.Context, task string) (string, error) {
	result, err := s.GenerateContent(ctx, s.Model, task)
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}

func (s *GeminiService) GenerateContent(ctx context.Context, model string, prompt string) (*genai.GenerateContentResponse, error) {
	if model == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}

	s.logger.Debug("generate content",
		zap.String("model", model),
		zap.String("prompt", logger.TruncateForLog(prompt, 200)),
	)

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	}

	var result *genai.GenerateContentResponse
	err := s.withRetry(ctx, s.generateBreaker, "GenerateContent", func(ctx context.Context) error {
		resp, err := s.models.GenerateContent(ctx, model, genai.Text(prompt), genConfig)
		if err != nil {
			return err
		}
		result = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := validateGenerateResponse(result); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}

	s.logger.Debug("content generated", zap.String("response", logger.TruncateForLog(result.Text(), 200)))
	return result, nil
}

func (s *GeminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	trimmedText := strings.TrimSpace(text)
	if trimmedText == "" {
		return nil, fmt.Errorf("text for embedding cannot be empty")
	}

	if runes := []rune(trimmedText); len(runes) > maxEmbeddingChars {
		s.logger.Warn("embedding text truncated", zap.Int("chars", len(runes)))
		trimmedText = string(runes[:maxEmbeddingChars])
	}

	content := []*genai.Content{genai.NewContentFromText(trimmedText, genai.RoleUser)}

	var result *genai.EmbedContentResponse
	err := s.withRetry(ctx, s.embedBreaker, "GenerateEmbedding", func(ctx context.Context) error {
		resp, err := s.models.EmbedContent(ctx, s.EmbeddingModel, content, nil)
		if err != nil {
			return err
		}
		result = resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	embeddings, err := validateEmbeddingResponse(result)
	if err != nil {
		return nil, fmt.Errorf("invalid embedding response: %w", err)
	}
	return embeddings, nil
}

// withRetry runs call with exponential backoff on retryable errors and feeds
// the outcome into breaker. Cancellation by the caller is not a backend
// failure and leaves the breaker untouched.
func (s *GeminiService) withRetry(ctx context.Context, breaker *circuitBreaker, op string, call func(context.Context) error) error {
	if !breaker.allow() {
		failures, _ := breaker.status()
		return fmt.Errorf("%w: too many consecutive errors (%d)", ErrCircuitOpen, failures)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.RequestTimeout)
	defer cancel()

	fail := func() {
		if ctx.Err() == nil {
			breaker.failure()
		}
	}

	var lastErr error
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.calculateBackoff(attempt)
			s.logger.Info("retrying",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Int("max_retries", s.MaxRetries),
				zap.Duration("delay", delay),
			)
			if err := wait(timeoutCtx, delay); err != nil {
				fail()
				return fmt.Errorf("context timeout during retry: %w", err)
			}
		}

		err := call(timeoutCtx)
		if err == nil {
			breaker.success()
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return fmt.Errorf("%s canceled: %w", op, err)
		}
		if !isRetryableError(err) {
			s.logger.Warn("non-retryable error", zap.String("op", op), zap.Error(err))
			fail()
			return fmt.Errorf("%s failed: %w", op, err)
		}
		s.logger.Warn("retryable error", zap.String("op", op), zap.Int("attempt", attempt+1), zap.Error(err))
	}

	fail()
	return fmt.Errorf("max retries (%d) exceeded for %s: %w", s.MaxRetries, op, lastErr)
}

func (s *GeminiService) calculateBackoff(attempt int) time.Duration {
	delay := s.BaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > s.MaxDelay {
		delay = s.MaxDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		default:
			return false
		}
	}

	errMsg := err.Error()
	return strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "temporary failure") ||
		strings.Contains(errMsg, "EOF")
}

func validateGenerateResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil {
		return fmt.Errorf("candidate content is nil")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("no parts in content")
	}
	return nil
}

func validateEmbeddingResponse(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil {
		return nil, fmt.Errorf("response is nil")
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("no embeddings returned")
	}

	embeddings := resp.Embeddings[0].Values
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding vector is empty")
	}
	for i, val := range embeddings {
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return nil, fmt.Errorf("invalid embedding value at index %d: %v", i, val)
		}
	}
	return embeddings, nil
}

// CircuitBreakerStatus reports the text generation breaker.
func (s *GeminiService) CircuitBreakerStatus() (consecutiveErrors int, isOpen bool) {
	return s.generateBreaker.status()
}
