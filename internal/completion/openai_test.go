package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIClientFinalAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Tools) != 1 || req.Tools[0].Function.Name != "calculate_financing" {
			t.Errorf("tools not forwarded: %+v", req.Tools)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "¡Claro que sí! 🚗"}},
			},
		})
	}))
	defer srv.Close()

	c := NewOpenAIClient(Config{BaseURL: srv.URL, APIKey: "test-key"})
	res, err := c.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hola"}},
		Tools: []ToolSpec{{
			Name:        "calculate_financing",
			Description: "calcula financiamiento",
			Parameters:  map[string]any{"type": "object"},
		}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if res.Text != "¡Claro que sí! 🚗" || len(res.ToolCalls) != 0 {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestOpenAIClientToolCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{
					"role": "assistant",
					"tool_calls": []map[string]any{
						{
							"id":   "call_1",
							"type": "function",
							"function": map[string]any{
								"name":      "search_cars_by_budget",
								"arguments": `{"max_price": 250000, "brand": "Nissan"}`,
							},
						},
					},
				}},
			},
		})
	}))
	defer srv.Close()

	c := NewOpenAIClient(Config{BaseURL: srv.URL, APIKey: "k"})
	res, err := c.Complete(context.Background(), Request{Messages: []Message{{Role: "user", Content: "busco auto"}}})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if len(res.ToolCalls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(res.ToolCalls))
	}
	tc := res.ToolCalls[0]
	if tc.ID != "call_1" || tc.Name != "search_cars_by_budget" {
		t.Fatalf("unexpected tool call: %+v", tc)
	}
	if tc.Arguments["max_price"] != float64(250000) || tc.Arguments["brand"] != "Nissan" {
		t.Fatalf("unexpected arguments: %+v", tc.Arguments)
	}
}

func TestOpenAIClientTransientStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewOpenAIClient(Config{BaseURL: srv.URL, APIKey: "k"})
	_, err := c.Complete(context.Background(), Request{Messages: []Message{{Role: "user", Content: "hola"}}})
	if err == nil {
		t.Fatalf("expected error for 503")
	}
	if !IsTransient(err) {
		t.Fatalf("503 should classify as transient, err = %v", err)
	}
}

func TestIsTransientNonRetryable(t *testing.T) {
	err := &httpStatusError{status: http.StatusBadRequest, body: "bad"}
	if IsTransient(err) {
		t.Fatalf("400 should not be transient")
	}
	if IsTransient(nil) {
		t.Fatalf("nil error should not be transient")
	}
}

func TestMockClientScript(t *testing.T) {
	m := NewMockClient(
		Response{ToolCalls: []ToolCall{{ID: "1", Name: "get_company_info", Arguments: map[string]any{"query": "garantía"}}}},
		Response{Text: "listo"},
	)

	first, err := m.Complete(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if len(first.ToolCalls) != 1 {
		t.Fatalf("first scripted response should request a tool")
	}

	second, err := m.Complete(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if second.Text != "listo" {
		t.Fatalf("second response = %+v", second)
	}

	// Script exhausted: canned reply echoes the last user message.
	third, _ := m.Complete(context.Background(), Request{Messages: []Message{{Role: "user", Content: "hola"}}})
	if third.Text == "" {
		t.Fatalf("canned reply should not be empty")
	}
	if len(m.Requests()) != 3 {
		t.Fatalf("recorded %d requests, want 3", len(m.Requests()))
	}
}
