package memory

import (
	"context"
	"errors"
	"time"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Turn stores a single conversational exchange unit. Turns are append-only:
// once persisted they are never mutated.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionSummary is the metadata surface exposed to the session listing API.
type SessionSummary struct {
	SessionID    string    `json:"session_id"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastMessage  string    `json:"last_message"`
}

// ErrUnavailable wraps backend failures so callers can degrade to an empty
// history instead of failing the whole request.
var ErrUnavailable = errors.New("session store unavailable")

// Store persists per-session conversation logs. AppendTurn updates the
// session metadata in the same logical operation as the turn write, and all
// operations are atomic per session.
type Store interface {
	AppendTurn(ctx context.Context, turn Turn) error
	LoadRecent(ctx context.Context, sessionID string, limit int) ([]Turn, error)
	Clear(ctx context.Context, sessionID string) error
	ListSessions(ctx context.Context) ([]SessionSummary, error)
	Close() error
}
