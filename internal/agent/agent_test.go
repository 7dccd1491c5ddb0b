package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/davmoreno/lucia/internal/completion"
	"github.com/davmoreno/lucia/internal/finance"
	"github.com/davmoreno/lucia/internal/format"
	"github.com/davmoreno/lucia/internal/memory"
	"github.com/davmoreno/lucia/internal/observability"
	"github.com/davmoreno/lucia/internal/tools"
)

var testMetrics = observability.NewMetrics("lucia_agent_test")

func testAgent(t *testing.T, client completion.Client, store memory.Store) *Agent {
	t.Helper()
	registry, err := tools.NewRegistry(tools.FinancingTools(finance.NewEngine(0))...)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if store == nil {
		store = memory.NewInMemoryStore(time.Hour)
	}
	return New(client, registry, store, format.New(0), testMetrics,
		observability.NewTurnWindow(16), log.New(io.Discard, "", 0), Config{})
}

func TestHandleMessageToolLoop(t *testing.T) {
	client := completion.NewMockClient(
		completion.Response{ToolCalls: []completion.ToolCall{{
			ID:   "call_1",
			Name: "calculate_financing",
			Arguments: map[string]any{
				"car_price":    250000.0,
				"down_payment": 50000.0,
			},
		}}},
		completion.Response{Text: "Tu mensualidad quedaría en $5,072.52. ¿Te late? 😊"},
	)
	store := memory.NewInMemoryStore(time.Hour)
	a := testAgent(t, client, store)

	reply, err := a.HandleMessage(context.Background(), "s1", "¿Cuánto pagaría al mes?")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !strings.Contains(reply, "5,072.52") {
		t.Fatalf("unexpected reply: %q", reply)
	}

	reqs := client.Requests()
	if len(reqs) != 2 {
		t.Fatalf("got %d completion calls, want 2", len(reqs))
	}
	// Second request must carry the tool result after the assistant call.
	last := reqs[1].Messages
	if last[len(last)-1].Role != "tool" || last[len(last)-1].ToolCallID != "call_1" {
		t.Fatalf("tool result not fed back: %+v", last[len(last)-1])
	}
	if !strings.Contains(last[len(last)-1].Content, "5,072.52") {
		t.Fatalf("tool output missing from context: %q", last[len(last)-1].Content)
	}

	turns, err := store.LoadRecent(context.Background(), "s1", 0)
	if err != nil {
		t.Fatalf("LoadRecent() error = %v", err)
	}
	if len(turns) != 2 || turns[0].Role != memory.RoleUser || turns[1].Role != memory.RoleAssistant {
		t.Fatalf("persisted turns = %+v", turns)
	}
}

func TestHandleMessageIterationCap(t *testing.T) {
	// A script longer than the cap keeps requesting tools forever.
	var script []completion.Response
	for i := 0; i < 10; i++ {
		script = append(script, completion.Response{ToolCalls: []completion.ToolCall{{
			ID:   fmt.Sprintf("call_%d", i),
			Name: "compare_financing_terms",
			Arguments: map[string]any{
				"car_price":    200000.0,
				"down_payment": 40000.0,
			},
		}}})
	}
	client := completion.NewMockClient(script...)
	store := memory.NewInMemoryStore(time.Hour)
	a := testAgent(t, client, store)

	reply, err := a.HandleMessage(context.Background(), "s1", "compárame todo")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if reply != capReply {
		t.Fatalf("expected cap reply, got %q", reply)
	}
	if got := len(client.Requests()); got != defaultToolIters {
		t.Fatalf("made %d completion calls, want %d", got, defaultToolIters)
	}

	// The exchange is still persisted as exactly one user/assistant pair.
	turns, _ := store.LoadRecent(context.Background(), "s1", 0)
	if len(turns) != 2 {
		t.Fatalf("persisted %d turns, want 2", len(turns))
	}
	if turns[1].Content != capReply {
		t.Fatalf("assistant turn = %q", turns[1].Content)
	}
}

func TestHandleMessageCompletionFailure(t *testing.T) {
	client := completion.NewMockClient()
	client.FailWith(errors.New("provider exploded"))
	store := memory.NewInMemoryStore(time.Hour)
	a := testAgent(t, client, store)

	reply, err := a.HandleMessage(context.Background(), "s1", "quiero financiamiento para un auto")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !strings.Contains(reply, "financiamiento") {
		t.Fatalf("fallback should match the financing topic: %q", reply)
	}
	if got := len(client.Requests()); got != 1 {
		t.Fatalf("non-transient failure retried: %d calls", got)
	}

	turns, _ := store.LoadRecent(context.Background(), "s1", 0)
	if len(turns) != 2 {
		t.Fatalf("failed turn must still persist both sides, got %d", len(turns))
	}
}

type failingStore struct{ memory.Store }

func (f failingStore) LoadRecent(context.Context, string, int) ([]memory.Turn, error) {
	return nil, fmt.Errorf("%w: connection refused", memory.ErrUnavailable)
}

func TestHandleMessageDegradedHistory(t *testing.T) {
	client := completion.NewMockClient(completion.Response{Text: "¡Hola! ¿Qué auto buscas? 🚗"})
	a := testAgent(t, client, failingStore{memory.NewInMemoryStore(time.Hour)})

	reply, err := a.HandleMessage(context.Background(), "s1", "hola")
	if err != nil {
		t.Fatalf("degraded history must not fail the turn: %v", err)
	}
	if reply == "" {
		t.Fatalf("expected a reply")
	}

	// Context contains only the system prompt and the new user message.
	msgs := client.Requests()[0].Messages
	if len(msgs) != 2 || msgs[0].Role != "system" || msgs[1].Role != "user" {
		t.Fatalf("degraded context = %+v", msgs)
	}
}

func TestHandleMessageInvalidToolFeedback(t *testing.T) {
	client := completion.NewMockClient(
		completion.Response{ToolCalls: []completion.ToolCall{{
			ID:        "call_1",
			Name:      "calculate_financing",
			Arguments: map[string]any{"car_price": 250000.0}, // down_payment missing
		}}},
		completion.Response{Text: "Necesito el enganche para calcular. ¿De cuánto sería?"},
	)
	a := testAgent(t, client, nil)

	reply, err := a.HandleMessage(context.Background(), "s1", "calcula")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !strings.Contains(reply, "enganche") {
		t.Fatalf("unexpected reply: %q", reply)
	}

	msgs := client.Requests()[1].Messages
	feedback := msgs[len(msgs)-1]
	if feedback.Role != "tool" || !strings.Contains(feedback.Content, "down_payment") {
		t.Fatalf("schema violation not fed back: %+v", feedback)
	}
}

func TestHandleMessageSequentialToolOrder(t *testing.T) {
	var order []string
	registry, err := tools.NewRegistry(
		orderedTool("first", &order),
		orderedTool("second", &order),
	)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	client := completion.NewMockClient(
		completion.Response{ToolCalls: []completion.ToolCall{
			{ID: "1", Name: "second"},
			{ID: "2", Name: "first"},
			{ID: "3", Name: "second"},
		}},
		completion.Response{Text: "listo"},
	)
	a := New(client, registry, memory.NewInMemoryStore(time.Hour), format.New(0),
		testMetrics, observability.NewTurnWindow(16), log.New(io.Discard, "", 0), Config{})

	if _, err := a.HandleMessage(context.Background(), "s1", "hola"); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	want := []string{"second", "first", "second"}
	if len(order) != len(want) {
		t.Fatalf("ran %d tools, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("execution order = %v, want %v", order, want)
		}
	}
}

func orderedTool(name string, order *[]string) tools.Descriptor {
	return tools.Descriptor{
		Name:        name,
		Description: name,
		Run: func(context.Context, map[string]any) (string, error) {
			*order = append(*order, name)
			return name + " ok", nil
		},
	}
}

func TestHandleMessageEmptyInput(t *testing.T) {
	client := completion.NewMockClient()
	a := testAgent(t, client, nil)

	reply, err := a.HandleMessage(context.Background(), "s1", "   \n ")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if reply == "" {
		t.Fatalf("expected a gentle prompt")
	}
	if len(client.Requests()) != 0 {
		t.Fatalf("blank input must not reach the model")
	}
}

func TestClearAndListSessions(t *testing.T) {
	client := completion.NewMockClient(
		completion.Response{Text: "hola"},
		completion.Response{Text: "hola de nuevo"},
	)
	store := memory.NewInMemoryStore(time.Hour)
	a := testAgent(t, client, store)

	if _, err := a.HandleMessage(context.Background(), "s1", "primer mensaje"); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if _, err := a.HandleMessage(context.Background(), "s2", "otro"); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	sessions, err := a.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}

	if err := a.Clear(context.Background(), "s1"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	turns, _ := store.LoadRecent(context.Background(), "s1", 0)
	if len(turns) != 0 {
		t.Fatalf("cleared session still has %d turns", len(turns))
	}
}
