// Package agent runs the conversation loop: it assembles the model context
// from session history, lets the model call catalog tools, and returns one
// formatted reply per user message.
package agent

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/davmoreno/lucia/internal/completion"
	"github.com/davmoreno/lucia/internal/format"
	"github.com/davmoreno/lucia/internal/memory"
	"github.com/davmoreno/lucia/internal/observability"
	"github.com/davmoreno/lucia/internal/reliability"
	"github.com/davmoreno/lucia/internal/tools"
)

const (
	defaultHistoryWindow = 10
	defaultToolIters     = 5
	defaultTemperature   = 0.7

	retryBackoffBase = 500 * time.Millisecond
	retryBackoffCap  = 2 * time.Second
)

// Config bounds one conversation turn.
type Config struct {
	HistoryWindow     int     // prior turns included in the model context
	MaxToolIterations int     // completion rounds before giving up
	Temperature       float64 // forwarded to the completion service
}

func (c Config) withDefaults() Config {
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = defaultHistoryWindow
	}
	if c.MaxToolIterations <= 0 {
		c.MaxToolIterations = defaultToolIters
	}
	if c.Temperature <= 0 {
		c.Temperature = defaultTemperature
	}
	return c
}

// Agent orchestrates turns. Turns for the same session are serialized;
// different sessions proceed concurrently.
type Agent struct {
	client    completion.Client
	registry  *tools.Registry
	store     memory.Store
	formatter *format.Formatter
	metrics   *observability.Metrics
	window    *observability.TurnWindow
	logger    *log.Logger
	cfg       Config

	sessionLocks sync.Map // sessionID -> *sync.Mutex
}

func New(client completion.Client, registry *tools.Registry, store memory.Store,
	formatter *format.Formatter, metrics *observability.Metrics,
	window *observability.TurnWindow, logger *log.Logger, cfg Config) *Agent {
	if logger == nil {
		logger = log.Default()
	}
	return &Agent{
		client:    client,
		registry:  registry,
		store:     store,
		formatter: formatter,
		metrics:   metrics,
		window:    window,
		logger:    logger,
		cfg:       cfg.withDefaults(),
	}
}

// NewSessionID mints an identifier for callers that did not bring one.
func NewSessionID() string { return uuid.NewString() }

// HandleMessage runs one full turn and returns the formatted assistant
// reply. The reply is always usable text; internal failures degrade to an
// apology instead of an error. A non-nil error means the caller's context
// ended before the turn finished.
func (a *Agent) HandleMessage(ctx context.Context, sessionID, text string) (string, error) {
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	text = format.NormalizeWhitespace(text)
	if text == "" {
		return "No me llegó tu mensaje. 🤔 ¿Me lo mandas de nuevo?", nil
	}

	mu := a.lockSession(sessionID)
	mu.Lock()
	defer mu.Unlock()

	started := time.Now()
	reply, outcome := a.runTurn(ctx, sessionID, text)
	if err := ctx.Err(); err != nil {
		a.metrics.Turns.WithLabelValues("canceled").Inc()
		return "", err
	}

	reply = a.formatter.ForChannel(reply)
	a.persistTurns(ctx, sessionID, text, reply)

	a.metrics.Turns.WithLabelValues(outcome).Inc()
	a.metrics.ObserveTurnLatency(time.Since(started))
	a.window.Observe("turn_total", time.Since(started))
	return reply, nil
}

// runTurn drives the model/tool loop and reports the outcome label.
func (a *Agent) runTurn(ctx context.Context, sessionID, text string) (string, string) {
	messages := a.assembleContext(ctx, sessionID, text)

	for iter := 0; iter < a.cfg.MaxToolIterations; iter++ {
		res, err := a.complete(ctx, completion.Request{
			Messages:    messages,
			Tools:       a.registry.Specs(),
			Temperature: a.cfg.Temperature,
		})
		if err != nil {
			a.logger.Printf("agent: completion failed session=%s iter=%d err=%v", sessionID, iter, err)
			return fallbackReply(text), "completion_error"
		}

		if len(res.ToolCalls) == 0 {
			if res.Text == "" {
				return fallbackReply(text), "empty_completion"
			}
			return res.Text, "ok"
		}

		messages = append(messages, completion.Message{
			Role:      "assistant",
			ToolCalls: res.ToolCalls,
		})
		// Tools run sequentially in the order the model requested them.
		// Repeated identical calls run again; results are never memoized.
		for _, call := range res.ToolCalls {
			messages = append(messages, a.executeTool(ctx, call))
		}
	}

	a.logger.Printf("agent: iteration cap reached session=%s cap=%d", sessionID, a.cfg.MaxToolIterations)
	a.window.ObserveIndicator("iteration_cap")
	return capReply, "iteration_cap"
}

// assembleContext builds the deterministic model context: system prompt,
// recent history oldest first, then the new user message. A failing session
// store degrades to an empty history rather than failing the turn.
func (a *Agent) assembleContext(ctx context.Context, sessionID, text string) []completion.Message {
	loadStart := time.Now()
	history, err := a.store.LoadRecent(ctx, sessionID, a.cfg.HistoryWindow)
	a.window.Observe("history_load", time.Since(loadStart))
	if err != nil {
		if errors.Is(err, memory.ErrUnavailable) {
			a.logger.Printf("agent: session store unavailable, continuing without history session=%s err=%v", sessionID, err)
			a.metrics.DegradedHistoryLoads.Inc()
			a.window.ObserveIndicator("degraded_history")
		} else {
			a.logger.Printf("agent: history load failed session=%s err=%v", sessionID, err)
		}
		history = nil
	}

	messages := make([]completion.Message, 0, len(history)+2)
	messages = append(messages, completion.Message{Role: "system", Content: systemPrompt})
	for _, turn := range history {
		if turn.Role != memory.RoleUser && turn.Role != memory.RoleAssistant {
			continue
		}
		messages = append(messages, completion.Message{Role: turn.Role, Content: turn.Content})
	}
	return append(messages, completion.Message{Role: "user", Content: text})
}

// complete calls the model, retrying once after a transient failure.
func (a *Agent) complete(ctx context.Context, req completion.Request) (completion.Response, error) {
	start := time.Now()
	res, err := a.client.Complete(ctx, req)
	a.window.Observe("completion_request", time.Since(start))
	if err == nil || !completion.IsTransient(err) || ctx.Err() != nil {
		return res, err
	}

	a.logger.Printf("agent: transient completion failure, retrying: %v", err)
	a.metrics.CompletionRetries.Inc()
	select {
	case <-time.After(reliability.ExponentialBackoff(1, retryBackoffBase, retryBackoffCap)):
	case <-ctx.Done():
		return completion.Response{}, ctx.Err()
	}

	start = time.Now()
	res, err = a.client.Complete(ctx, req)
	a.window.Observe("completion_request", time.Since(start))
	return res, err
}

// executeTool runs one requested call and renders the result as a tool
// message. Invocation problems become model-visible feedback so the model
// can correct itself on the next round.
func (a *Agent) executeTool(ctx context.Context, call completion.ToolCall) completion.Message {
	start := time.Now()
	out, err := a.registry.Invoke(ctx, call)
	a.window.Observe("tool_execution", time.Since(start))

	status := "ok"
	if err != nil {
		var invErr *tools.InvocationError
		if errors.As(err, &invErr) {
			status = "invalid"
			out = "Error: " + invErr.Reason + ". Corrige los argumentos e intenta de nuevo."
		} else {
			status = "error"
			out = "Error: la herramienta no pudo ejecutarse. Informa al cliente con honestidad."
			a.logger.Printf("agent: tool %s failed: %v", call.Name, err)
		}
	}
	a.metrics.ToolCalls.WithLabelValues(call.Name, status).Inc()

	return completion.Message{
		Role:       "tool",
		Content:    out,
		ToolCallID: call.ID,
	}
}

// persistTurns writes the user and assistant turns even when the turn
// degraded, detached from the request context so a client disconnect cannot
// lose the exchange.
func (a *Agent) persistTurns(ctx context.Context, sessionID, userText, reply string) {
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	start := time.Now()
	for _, turn := range []memory.Turn{
		{SessionID: sessionID, Role: memory.RoleUser, Content: userText},
		{SessionID: sessionID, Role: memory.RoleAssistant, Content: reply},
	} {
		if err := a.store.AppendTurn(persistCtx, turn); err != nil {
			a.logger.Printf("agent: persist failed session=%s role=%s err=%v", sessionID, turn.Role, err)
			a.window.ObserveIndicator("persist_failure")
			return
		}
	}
	a.window.Observe("persist", time.Since(start))
}

// Clear removes one session's history.
func (a *Agent) Clear(ctx context.Context, sessionID string) error {
	mu := a.lockSession(sessionID)
	mu.Lock()
	defer mu.Unlock()

	if err := a.store.Clear(ctx, sessionID); err != nil {
		return &OrchestrationError{Stage: "persist", Session: sessionID, Err: err}
	}
	return nil
}

// ListSessions reports the stored session summaries.
func (a *Agent) ListSessions(ctx context.Context) ([]memory.SessionSummary, error) {
	return a.store.ListSessions(ctx)
}

func (a *Agent) lockSession(sessionID string) *sync.Mutex {
	v, _ := a.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	return v.(*sync.Mutex)
}
