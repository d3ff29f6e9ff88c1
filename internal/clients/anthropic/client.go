// Package anthropic is a minimal client for the Anthropic Messages API,
// covering only what content generation needs: single-turn and multi-turn
// text completion with a system prompt.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const apiVersion = "2023-06-01"

// ErrNotConfigured is returned when no API key was provided at startup.
var ErrNotConfigured = errors.New("anthropic api key is not configured")

// Message is one turn of a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client defines the completion surface used by the content generator
type Client interface {
	// Complete sends a conversation and returns the model's text reply.
	//
	// "ctx" is the context for the request.
	// "system" is the system prompt, may be empty.
	// "messages" is the conversation so far, oldest first.
	//
	// Returns the reply text and an error if any.
	Complete(ctx context.Context, system string, messages []Message) (string, error)
}

type client struct {
	http      *resty.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// New creates a Messages API client. "apiKey" may be empty, in which case
// every call fails with ErrNotConfigured so the feature degrades cleanly when
// the key is absent.
func New(apiKey, baseURL, model string, logger *zap.Logger) *client {
	c := &client{
		model:     model,
		maxTokens: 4096,
		logger:    logger,
	}
	if apiKey == "" {
		return c
	}

	c.http = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(120 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("anthropic-version", apiVersion).
		SetHeader("x-api-key", apiKey)
	return c
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a conversation and returns the model's text reply
func (c *client) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	if c.http == nil {
		return "", ErrNotConfigured
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages to send")
	}

	var result messagesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(messagesRequest{
			Model:     c.model,
			MaxTokens: c.maxTokens,
			System:    system,
			Messages:  messages,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	if resp.IsError() {
		apiMessage := ""
		if result.Error != nil {
			apiMessage = result.Error.Message
		}
		c.logger.Warn("anthropic api error",
			zap.Int("status", resp.StatusCode()),
			zap.String("message", apiMessage),
		)
		return "", statusError(resp.StatusCode(), apiMessage)
	}

	text := ""
	for _, block := range result.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("anthropic returned an empty response")
	}

	return text, nil
}

// statusError maps API status codes to messages safe to show in the admin UI
func statusError(status int, apiMessage string) error {
	switch status {
	case 401:
		return fmt.Errorf("AI authentication failed, check the configured API key")
	case 403:
		return fmt.Errorf("AI request was rejected, the API key lacks access to this model")
	case 429:
		return fmt.Errorf("AI service is rate limited, try again in a moment")
	case 400:
		return fmt.Errorf("AI request was invalid, try shortening the content")
	case 529:
		return fmt.Errorf("AI service is overloaded, try again in a moment")
	default:
		if apiMessage != "" {
			return fmt.Errorf("AI request failed: %s", apiMessage)
		}
		return fmt.Errorf("AI request failed with status %d", status)
	}
}
