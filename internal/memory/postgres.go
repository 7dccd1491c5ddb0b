package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists conversation turns in PostgreSQL. Unlike the Redis
// driver it keeps full history for audit; the orchestrator still only reads
// the bounded window through LoadRecent.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS conversation_turns (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_conversation_turns_session_created
			ON conversation_turns (session_id, created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) AppendTurn(ctx context.Context, turn Turn) error {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO conversation_turns (id, session_id, role, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		turn.ID, turn.SessionID, turn.Role, turn.Content, turn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: append turn: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) LoadRecent(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, role, content, created_at
		 FROM conversation_turns WHERE session_id=$1
		 ORDER BY created_at DESC LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: load recent: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	turns := make([]Turn, 0, limit)
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate turn rows: %v", ErrUnavailable, err)
	}

	// Reverse into chronological order for prompt coherence.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func (s *PostgresStore) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM conversation_turns WHERE session_id=$1`, sessionID); err != nil {
		return fmt.Errorf("%w: clear session: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT t.session_id,
		        COUNT(*),
		        MIN(t.created_at),
		        MAX(t.created_at),
		        COALESCE((SELECT u.content FROM conversation_turns u
		                  WHERE u.session_id = t.session_id AND u.role = 'user'
		                  ORDER BY u.created_at DESC LIMIT 1), '')
		 FROM conversation_turns t
		 GROUP BY t.session_id
		 ORDER BY MAX(t.created_at) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list sessions: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var s SessionSummary
		if err := rows.Scan(&s.SessionID, &s.MessageCount, &s.CreatedAt, &s.UpdatedAt, &s.LastMessage); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate session rows: %v", ErrUnavailable, err)
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
