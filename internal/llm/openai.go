// ABOUTME: OpenAI chat-completion translator with optional retries on transient failures
// ABOUTME: Service-reported failures surface as *APIError carrying the HTTP status code
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/harper/mdtranslate/internal/util"
)

const (
	// DefaultModel is the default chat model
	DefaultModel = openai.GPT3Dot5Turbo
	// DefaultTopP keeps replies close to the source wording
	DefaultTopP = 0.5
	// DefaultTimeout bounds one completion call
	DefaultTimeout = 60 * time.Second
)

// ErrAPI matches every error reported by the translation service
var ErrAPI = errors.New("api error")

// APIError is a failure reported by the service with its HTTP status
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAPI}
	}
	return []error{ErrAPI, e.Err}
}

// HTTPStatus returns the status code of the failed exchange
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// Retryable reports whether the call may succeed if repeated
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Usage is reported after every completed HTTP exchange
type Usage struct {
	StatusCode  int
	TotalTokens int
	Elapsed     time.Duration
}

// UsageFunc observes the usage of each call
type UsageFunc func(Usage)

// Config holds configuration for the OpenAI translator
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	TopP       float32
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	OnUsage    UsageFunc
}

// DefaultConfig returns the default translator configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:     apiKey,
		Model:      DefaultModel,
		TopP:       DefaultTopP,
		Timeout:    DefaultTimeout,
		RetryDelay: 2 * time.Second,
	}
}

// OpenAITranslator sends a system prompt plus the chunk as user content
type OpenAITranslator struct {
	client *openai.Client
	cfg    Config
}

// NewOpenAITranslator creates a translator from config
func NewOpenAITranslator(cfg *Config) (*OpenAITranslator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	c := *cfg
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}

	return &OpenAITranslator{client: openai.NewClientWithConfig(clientCfg), cfg: c}, nil
}

// Model returns the chat model in use
func (t *OpenAITranslator) Model() string {
	return t.cfg.Model
}

// Translate asks the model to translate text following prompt.
// An empty reply is returned as-is; callers decide whether that is a failure.
func (t *OpenAITranslator) Translate(ctx context.Context, text, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= t.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := util.Sleep(ctx, util.CalculateBackoff(t.cfg.RetryDelay, attempt)); err != nil {
				return "", err
			}
		}

		content, err := t.complete(ctx, text, prompt)
		if err == nil {
			return content, nil
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.Retryable() {
			break
		}
	}

	return "", lastErr
}

func (t *OpenAITranslator) complete(ctx context.Context, text, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	started := time.Now()
	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: prompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		TopP: t.cfg.TopP,
	})

	if err != nil {
		classified := classify(err)
		var apiErr *APIError
		if errors.As(classified, &apiErr) {
			t.report(Usage{StatusCode: apiErr.StatusCode, Elapsed: time.Since(started)})
		}
		return "", classified
	}

	t.report(Usage{StatusCode: http.StatusOK, TotalTokens: resp.Usage.TotalTokens, Elapsed: time.Since(started)})

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (t *OpenAITranslator) report(u Usage) {
	if t.cfg.OnUsage != nil {
		t.cfg.OnUsage(u)
	}
}

// classify converts go-openai errors into *APIError; transport errors pass through
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &APIError{StatusCode: reqErr.HTTPStatusCode, Message: http.StatusText(reqErr.HTTPStatusCode), Err: err}
	}
	return fmt.Errorf("calling translation service: %w", err)
}
