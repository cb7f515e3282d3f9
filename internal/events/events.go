// Package events publishes domain events on Redis pub/sub. Publishing is
// best effort: failures are logged and never fail the originating request.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Event types. Each is also the channel it is published on.
const (
	JobPosted                = "EVENT_JOB_POSTED"
	ApplicationCreated       = "EVENT_APPLICATION_CREATED"
	ApplicationStatusChanged = "EVENT_APPLICATION_STATUS_CHANGED"
)

// Emitter is what services depend on.
type Emitter interface {
	Emit(ctx context.Context, eventType string, fields map[string]string)
}

// Publisher emits events through a Redis client.
type Publisher struct {
	rdb redis.UniversalClient
}

// NewPublisher returns a Publisher backed by rdb.
func NewPublisher(rdb redis.UniversalClient) *Publisher {
	return &Publisher{rdb: rdb}
}

// Emit publishes {"type": eventType, ...fields} on the eventType channel.
func (p *Publisher) Emit(ctx context.Context, eventType string, fields map[string]string) {
	payload := make(map[string]string, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	payload["type"] = eventType

	event, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("marshal event failed", "type", eventType, "err", err)
		return
	}
	if err := p.rdb.Publish(ctx, eventType, event).Err(); err != nil {
		slog.Warn("publish event failed", "type", eventType, "err", err)
	}
}

// Nop discards every event.
type Nop struct{}

func (Nop) Emit(context.Context, string, map[string]string) {}

// Recorder keeps emitted events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

// Recorded is one captured event.
type Recorded struct {
	Type   string
	Fields map[string]string
}

func (r *Recorder) Emit(_ context.Context, eventType string, fields map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{Type: eventType, Fields: fields})
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.events...)
}

// Count returns how many events of eventType were recorded.
func (r *Recorder) Count(eventType string) int {
	n := 0
	for _, e := range r.Events() {
		if e.Type == eventType {
			n++
		}
	}
	return n
}
