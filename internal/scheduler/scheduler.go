// Package scheduler runs the periodic maintenance jobs of the board service:
// sweeping idle rate-limit windows and collecting unreferenced blobs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is one periodic job.
type Task struct {
	Name string
	Spec string // cron spec, e.g. "@every 1m"
	Run  func(ctx context.Context)
}

// Sweeper drops expired rate-limit windows.
type Sweeper interface {
	Sweep() int
}

// BlobCollector deletes blobs nothing points at.
type BlobCollector interface {
	DeleteUnreferencedBlobs(ctx context.Context, cutoff time.Time) (int64, error)
}

// LimiterSweep returns a task that sweeps l every minute.
func LimiterSweep(l Sweeper) Task {
	return Task{
		Name: "limiter-sweep",
		Spec: "@every 1m",
		Run: func(context.Context) {
			if n := l.Sweep(); n > 0 {
				log.Printf("[scheduler] Swept %d rate-limit window(s)", n)
			}
		},
	}
}

// BlobGC returns a task that deletes unreferenced blobs older than grace.
// Younger blobs may belong to an upload whose owner row is not written yet.
func BlobGC(store BlobCollector, spec string, grace time.Duration) Task {
	return Task{
		Name: "blob-gc",
		Spec: spec,
		Run: func(ctx context.Context) {
			n, err := store.DeleteUnreferencedBlobs(ctx, time.Now().Add(-grace))
			if err != nil {
				log.Printf("[scheduler] Blob GC error: %v", err)
				return
			}
			log.Printf("[scheduler] Blob GC removed %d blob(s)", n)
		},
	}
}

// Scheduler wraps robfig/cron and owns the maintenance tasks.
type Scheduler struct {
	cron  *cron.Cron
	tasks []Task
}

// New creates a Scheduler for tasks.
func New(tasks ...Task) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithLogger(cron.DefaultLogger)),
		tasks: tasks,
	}
}

// Start registers every task and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	for _, t := range s.tasks {
		if _, err := s.cron.AddFunc(t.Spec, func() { t.Run(ctx) }); err != nil {
			return fmt.Errorf("cron.AddFunc %s (%q): %w", t.Name, t.Spec, err)
		}
		log.Printf("[scheduler] Task %s scheduled: %s", t.Name, t.Spec)
	}
	s.cron.Start()
	log.Println("[scheduler] Cron started")
	return nil
}

// Stop halts the scheduler and waits for running tasks to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[scheduler] Cron stopped")
}
