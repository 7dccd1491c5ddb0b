package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process session log for local/dev use.
// Expiry matches the durable drivers: a janitor drops sessions whose last
// activity is older than the TTL.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionLog
	ttl      time.Duration
}

type sessionLog struct {
	turns     []Turn
	createdAt time.Time
	updatedAt time.Time
}

func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &InMemoryStore{
		sessions: make(map[string]*sessionLog),
		ttl:      ttl,
	}
}

func (s *InMemoryStore) AppendTurn(_ context.Context, turn Turn) error {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	logEntry, ok := s.sessions[turn.SessionID]
	if !ok {
		logEntry = &sessionLog{createdAt: turn.CreatedAt}
		s.sessions[turn.SessionID] = logEntry
	}
	logEntry.turns = append(logEntry.turns, turn)
	logEntry.updatedAt = turn.CreatedAt
	return nil
}

func (s *InMemoryStore) LoadRecent(_ context.Context, sessionID string, limit int) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	logEntry, ok := s.sessions[sessionID]
	if !ok || len(logEntry.turns) == 0 {
		return nil, nil
	}
	turns := logEntry.turns
	if limit > 0 && limit < len(turns) {
		turns = turns[len(turns)-limit:]
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *InMemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *InMemoryStore) ListSessions(_ context.Context) ([]SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SessionSummary, 0, len(s.sessions))
	for id, logEntry := range s.sessions {
		out = append(out, SessionSummary{
			SessionID:    id,
			MessageCount: len(logEntry.turns),
			CreatedAt:    logEntry.createdAt,
			UpdatedAt:    logEntry.updatedAt,
			LastMessage:  lastUserMessage(logEntry.turns),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }

// StartJanitor expires idle sessions in the background, mirroring the TTL
// behavior of the Redis driver.
func (s *InMemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.expireIdle()
			}
		}
	}()
}

func (s *InMemoryStore) expireIdle() {
	cutoff := time.Now().UTC().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, logEntry := range s.sessions {
		if logEntry.updatedAt.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

func lastUserMessage(turns []Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleUser {
			return turns[i].Content
		}
	}
	return ""
}
