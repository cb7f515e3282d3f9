package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"timestamp"`
}

// HistoryStore keeps per-user chat transcripts.
type HistoryStore interface {
	Append(ctx context.Context, userID string, msgs ...Message) error
	// Recent returns at most n messages, oldest first.
	Recent(ctx context.Context, userID string, n int) ([]Message, error)
	Clear(ctx context.Context, userID string) error
}

// ─── Redis ───────────────────────────────────────────────────────────────────

// RedisHistory stores each transcript as a capped Redis list that expires
// after a day of inactivity.
type RedisHistory struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewRedisHistory returns a RedisHistory.
func NewRedisHistory(rdb redis.UniversalClient) *RedisHistory {
	return &RedisHistory{rdb: rdb, ttl: 24 * time.Hour}
}

func historyKey(userID string) string { return "genai:chat:" + userID }

func (h *RedisHistory) Append(ctx context.Context, userID string, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	vals := make([]any, 0, len(msgs))
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		vals = append(vals, b)
	}
	key := historyKey(userID)
	_, err := h.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, vals...)
		p.LTrim(ctx, key, -historyLimit, -1)
		p.Expire(ctx, key, h.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis append history: %w", err)
	}
	return nil
}

func (h *RedisHistory) Recent(ctx context.Context, userID string, n int) ([]Message, error) {
	raw, err := h.rdb.LRange(ctx, historyKey(userID), int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read history: %w", err)
	}
	out := make([]Message, 0, len(raw))
	for _, r := range raw {
		var m Message
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (h *RedisHistory) Clear(ctx context.Context, userID string) error {
	if err := h.rdb.Del(ctx, historyKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis clear history: %w", err)
	}
	return nil
}

// ─── In-process ──────────────────────────────────────────────────────────────

// MemoryHistory keeps transcripts in process memory.
type MemoryHistory struct {
	mu    sync.Mutex
	chats map[string][]Message
}

// NewMemoryHistory returns an empty MemoryHistory.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{chats: make(map[string][]Message)}
}

func (h *MemoryHistory) Append(_ context.Context, userID string, msgs ...Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	all := append(h.chats[userID], msgs...)
	if len(all) > historyLimit {
		all = append([]Message(nil), all[len(all)-historyLimit:]...)
	}
	h.chats[userID] = all
	return nil
}

func (h *MemoryHistory) Recent(_ context.Context, userID string, n int) ([]Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	all := h.chats[userID]
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return append([]Message{}, all...), nil
}

func (h *MemoryHistory) Clear(_ context.Context, userID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.chats, userID)
	return nil
}
