// ABOUTME: OpenAI chat client used as the optional fallback responder for unmatched messages
// ABOUTME: Sends the rolling history to gpt-4o-mini (configurable) with retry and per-call timeouts
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/harper/yaan/internal/models"
	"github.com/harper/yaan/internal/util"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"

	systemPrompt = `You are YAAN, a friendly local assistant. You help with reminders, todos, coding questions and conversation.
Answer in a few sentences. If the user asks for something you cannot do, say so briefly and suggest typing 'help'.`
)

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	ChatModel  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:     apiKey,
		ChatModel:  DefaultChatModel,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
	}
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient wraps the OpenAI API client with retry logic
type OpenAIClient struct {
	client     chatCompleter
	chatModel  string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewOpenAIClient creates a new OpenAI client; a nil logger discards output
func NewOpenAIClient(config *ClientConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	apiConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		apiConfig.BaseURL = config.BaseURL
	}
	return newClient(openai.NewClientWithConfig(apiConfig), config, logger), nil
}

func newClient(client chatCompleter, config *ClientConfig, logger *zap.Logger) *OpenAIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	model := config.ChatModel
	if model == "" {
		model = DefaultChatModel
	}
	return &OpenAIClient{
		client:     client,
		chatModel:  model,
		timeout:    config.Timeout,
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
		logger:     logger,
	}
}

// Respond asks the model for a reply to message given the conversation so far
func (c *OpenAIClient) Respond(ctx context.Context, history []models.ConversationTurn, message string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    BuildMessages(history, message),
		Temperature: 0.7,
		MaxTokens:   300,
	}

	var reply string
	attempt := 0
	err := util.Do(ctx, c.maxRetries+1, c.retryDelay, isRetryable, func() error {
		attempt++
		callCtx, cancel := c.callContext(ctx)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(callCtx, req)
		if err != nil {
			c.logger.Warn("chat completion failed", zap.Int("attempt", attempt), zap.Error(err))
			return fmt.Errorf("attempt %d: %w", attempt, err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("attempt %d: no completion choices returned", attempt)
		}
		reply = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to get chat completion: %w", err)
	}
	return reply, nil
}

func (c *OpenAIClient) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// BuildMessages turns the rolling history into chat messages behind the system prompt.
// message is appended unless history already ends with it.
func BuildMessages(history []models.ConversationTurn, message string) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})

	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}

	if n := len(history); n == 0 || history[n-1].Role != models.RoleUser || history[n-1].Content != message {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})
	}
	return msgs
}

// isRetryable retries rate limits, server errors and transport failures, but not bad requests
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return true
}
