package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "conversation:"

// RedisStore keeps each session log under one key with a TTL, so expiry is
// enforced by the storage layer. Appends run inside a WATCH transaction:
// concurrent writers for the same session retry instead of interleaving.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

type sessionRecord struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Turns     []Turn    `json:"turns"`
}

func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) AppendTurn(ctx context.Context, turn Turn) error {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	key := redisKeyPrefix + turn.SessionID

	// Optimistic retry loop: WATCH aborts the transaction when another
	// append for the same session lands first.
	for attempt := 0; attempt < 3; attempt++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			record := sessionRecord{SessionID: turn.SessionID, CreatedAt: turn.CreatedAt}
			val, err := tx.Get(ctx, key).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if err == nil {
				if err := json.Unmarshal([]byte(val), &record); err != nil {
					return fmt.Errorf("decode session record: %w", err)
				}
			}

			record.Turns = append(record.Turns, turn)
			record.UpdatedAt = turn.CreatedAt

			payload, err := json.Marshal(record)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, s.ttl)
				return nil
			})
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: append turn: %v", ErrUnavailable, err)
		}
		return nil
	}
	return fmt.Errorf("%w: append turn: too many conflicts", ErrUnavailable)
}

func (s *RedisStore) LoadRecent(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	record, err := s.getRecord(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	// Reading is activity; keep the conversation alive.
	_ = s.client.Expire(ctx, redisKeyPrefix+sessionID, s.ttl).Err()

	turns := record.Turns
	if limit > 0 && limit < len(turns) {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("%w: clear session: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	var out []SessionSummary
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		sessionID := iter.Val()[len(redisKeyPrefix):]
		record, err := s.getRecord(ctx, sessionID)
		if err != nil || record == nil {
			continue
		}
		out = append(out, SessionSummary{
			SessionID:    sessionID,
			MessageCount: len(record.Turns),
			CreatedAt:    record.CreatedAt,
			UpdatedAt:    record.UpdatedAt,
			LastMessage:  lastUserMessage(record.Turns),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: list sessions: %v", ErrUnavailable, err)
	}
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) getRecord(ctx context.Context, sessionID string) (*sessionRecord, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load session: %v", ErrUnavailable, err)
	}
	var record sessionRecord
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return nil, fmt.Errorf("decode session record: %w", err)
	}
	return &record, nil
}
