// Package inference talks to the local OpenAI-compatible server (LM Studio):
// one conversation turn with bounded retries, and a liveness probe.
package inference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"github.com/edgard/carydes/internal/config"
	"github.com/edgard/carydes/internal/memory"
	"github.com/edgard/carydes/internal/sanitize"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Client runs conversation turns against the inference server.
type Client struct {
	api    *openai.Client
	memory *memory.Store
	logger *slog.Logger
	sleep  SleepFunc

	model            string
	systemPrompt     string
	maxTokens        int
	temperature      float32
	maxHistory       int
	maxMessageLength int
	requestTimeout   time.Duration
	statusTimeout    time.Duration
	maxRetries       int
}

// Option customizes a Client.
type Option func(*Client)

// WithSleep replaces the backoff sleep.
func WithSleep(sleep SleepFunc) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// NewClient builds a Client for cfg. History is read from and committed to mem.
func NewClient(cfg *config.Config, mem *memory.Store, logger *slog.Logger, httpClient *http.Client, opts ...Option) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if httpClient == nil {
		// Attempts are bounded by context deadlines, not a client timeout.
		httpClient = &http.Client{}
	}

	apiCfg := openai.DefaultConfig(cfg.LMStudio.APIKey)
	apiCfg.BaseURL = cfg.LMStudio.URL + "/v1"
	apiCfg.HTTPClient = httpClient

	c := &Client{
		api:              openai.NewClientWithConfig(apiCfg),
		memory:           mem,
		logger:           logger.With("component", "inference"),
		sleep:            sleepContext,
		model:            cfg.LMStudio.Model,
		systemPrompt:     cfg.LMStudio.SystemPrompt,
		maxTokens:        cfg.LMStudio.MaxTokens,
		temperature:      cfg.LMStudio.Temperature,
		maxHistory:       cfg.Conversation.MaxHistory,
		maxMessageLength: cfg.Conversation.MaxMessageLength,
		requestTimeout:   cfg.LMStudio.RequestTimeout,
		statusTimeout:    cfg.LMStudio.StatusCheckTimeout,
		maxRetries:       cfg.LMStudio.MaxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Converse sends message, preceded by the system prompt and the user's
// recent history, and returns the assistant reply. On success the exchange
// is committed to memory. Every error is a *Failure.
func (c *Client) Converse(ctx context.Context, userID int64, message string) (string, error) {
	log := c.logger.With("user_id", userID)

	if n := utf8.RuneCountInString(message); n > c.maxMessageLength {
		return "", &Failure{
			Kind: KindTooLong,
			Err:  fmt.Errorf("message has %d characters, limit is %d", n, c.maxMessageLength),
		}
	}

	safe := sanitize.ForInference(message)
	req := c.buildRequest(userID, safe)

	attempts := c.maxRetries + 1
	for attempt := 1; ; attempt++ {
		reply, err := c.complete(ctx, req)
		if err == nil {
			c.memory.Append(userID, safe, reply, c.maxHistory)
			log.Debug("Inference succeeded", "attempt", attempt, "reply_length", utf8.RuneCountInString(reply))
			return reply, nil
		}

		var failure *Failure
		if !errors.As(err, &failure) {
			failure = &Failure{Kind: classify(ctx, err), Err: err}
		}
		failure.Attempts = attempt

		if !failure.Kind.Transient() || attempt >= attempts {
			return "", failure
		}

		delay := time.Duration(attempt) * time.Second
		log.Warn("Inference attempt failed, retrying",
			"attempt", attempt, "max_attempts", attempts, "kind", failure.Kind, "delay", delay, "error", failure.Err)

		if err := c.sleep(ctx, delay); err != nil {
			return "", &Failure{Kind: KindCanceled, Attempts: attempt, Err: err}
		}
	}
}

func (c *Client) buildRequest(userID int64, message string) openai.ChatCompletionRequest {
	history := c.memory.History(userID, c.maxHistory)

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: c.systemPrompt,
	})
	for _, h := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: h.Role, Content: h.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	temperature := c.temperature
	if temperature == 0 {
		// The field is omitempty; a zero would let the server pick its default.
		temperature = math.SmallestNonzeroFloat32
	}

	return openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   c.maxTokens,
	}
}

// complete runs one attempt bounded by the request timeout.
func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(attemptCtx, req)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", &Failure{Kind: KindInvalidResponse, Err: errors.New("response has no choices")}
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", &Failure{Kind: KindEmptyResponse, Err: fmt.Errorf("first choice has empty content (finish_reason %q)", resp.Choices[0].FinishReason)}
	}

	return content, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
