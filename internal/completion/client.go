// Package completion abstracts the external language-model service. Given a
// conversation context and the tool catalog, the service replies with either
// a final answer or one or more tool-call requests.
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Message is one entry of the model context.
type Message struct {
	Role       string     `json:"role"` // system, user, assistant, tool
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // set on tool-result messages
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // set on assistant messages requesting tools
}

// ToolCall is a model request to invoke one catalog tool.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolSpec describes a catalog tool to the model.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON-schema shaped
}

// Request is one completion invocation.
type Request struct {
	Messages    []Message
	Tools       []ToolSpec
	Temperature float64
	MaxTokens   int
}

// Response carries either final text or requested tool calls, never both.
type Response struct {
	Text      string
	ToolCalls []ToolCall
}

// Client is the completion service boundary.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Config controls client construction.
type Config struct {
	Mode    string // auto, openai, mock
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewClient builds a client for the configured mode. Auto prefers the real
// provider when an API key is present and falls back to the mock, which
// keeps local development working without credentials.
func NewClient(cfg Config) (Client, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) != "" {
			return NewOpenAIClient(cfg), nil
		}
		return NewMockClient(), nil
	case "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, errors.New("completion API key is required for openai mode")
		}
		return NewOpenAIClient(cfg), nil
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unsupported completion mode %q", cfg.Mode)
	}
}
