package completion

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockClient provides deterministic local replies when no provider is
// configured, and a scripted sequence of responses in tests.
type MockClient struct {
	mu        sync.Mutex
	script    []Response
	requests  []Request
	scriptErr error
}

func NewMockClient(script ...Response) *MockClient {
	return &MockClient{script: script}
}

// FailWith makes every Complete call return err until the script is used.
func (c *MockClient) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scriptErr = err
}

// Requests returns every request seen so far, in call order.
func (c *MockClient) Requests() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Request, len(c.requests))
	copy(out, c.requests)
	return out
}

func (c *MockClient) Complete(ctx context.Context, req Request) (Response, error) {
	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)

	if c.scriptErr != nil {
		return Response{}, c.scriptErr
	}
	if len(c.script) > 0 {
		next := c.script[0]
		c.script = c.script[1:]
		return next, nil
	}
	return Response{Text: cannedReply(req)}, nil
}

// cannedReply echoes the last user message so manual smoke tests read
// naturally without a real provider.
func cannedReply(req Request) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			text := strings.TrimSpace(req.Messages[i].Content)
			if text != "" {
				return fmt.Sprintf("Recibí tu mensaje: %s. ¿En qué más te puedo ayudar? 😊", text)
			}
		}
	}
	return "¡Hola! Soy tu asesora de seminuevos. ¿Qué auto estás buscando? 🚗"
}
