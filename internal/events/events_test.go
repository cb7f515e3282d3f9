package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"jobportal/board-service/internal/events"
)

func TestPublisher_UnreachableRedisDoesNotFail(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	var e events.Emitter = events.NewPublisher(rdb)
	e.Emit(context.Background(), events.JobPosted, map[string]string{"jobId": "j1"})
}

func TestRecorder(t *testing.T) {
	r := &events.Recorder{}
	ctx := context.Background()
	r.Emit(ctx, events.ApplicationCreated, map[string]string{"applicationId": "a1"})
	r.Emit(ctx, events.ApplicationCreated, map[string]string{"applicationId": "a2"})
	r.Emit(ctx, events.ApplicationStatusChanged, map[string]string{"status": "accepted"})

	if got := r.Count(events.ApplicationCreated); got != 2 {
		t.Errorf("Count(created) = %d, want 2", got)
	}
	evs := r.Events()
	if len(evs) != 3 || evs[2].Fields["status"] != "accepted" {
		t.Errorf("Events() = %+v", evs)
	}
	evs[0].Type = "mutated"
	if r.Events()[0].Type != events.ApplicationCreated {
		t.Error("Events() returned shared backing array")
	}
}
