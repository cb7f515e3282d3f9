// board-service
//
// Job board backend: accounts, companies, job postings, applications and
// saved jobs over a JSON REST API, plus GenAI helpers for applicants.
// A gRPC ReviewService lets internal tooling list applicants and decide
// applications. Application events are published to Redis.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobportal/board-service/internal/api"
	"jobportal/board-service/internal/applications"
	"jobportal/board-service/internal/auth"
	"jobportal/board-service/internal/company"
	"jobportal/board-service/internal/config"
	"jobportal/board-service/internal/db"
	"jobportal/board-service/internal/events"
	"jobportal/board-service/internal/genai"
	"jobportal/board-service/internal/grpcserver"
	"jobportal/board-service/internal/jobs"
	"jobportal/board-service/internal/media"
	"jobportal/board-service/internal/profile"
	"jobportal/board-service/internal/saved"
	"jobportal/board-service/internal/scheduler"
	"jobportal/board-service/internal/store/memory"
	"jobportal/board-service/internal/store/postgres"
)

// boardStore is everything the services need from the persistence layer.
type boardStore interface {
	auth.Store
	jobs.Store
	applications.Store
	saved.Store
	company.Store
	profile.Store
	media.BlobStore
	scheduler.BlobCollector
	Ping(ctx context.Context) error
}

const blobGrace = 24 * time.Hour

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[board-service] Config error: %v", err)
	}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, nil)
	if cfg.Production() {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler).With("service", "board-service"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Store ────────────────────────────────────────────────────────────────
	var store boardStore
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		log.Println("[board-service] Connecting to PostgreSQL…")
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[board-service] PostgreSQL: %v", err)
		}
		defer pool.Close()
		pg := postgres.New(pool)
		if err := pg.Migrate(ctx); err != nil {
			log.Fatalf("[board-service] Migrate: %v", err)
		}
		store = pg
		log.Println("[board-service] PostgreSQL connected ✓")
	default:
		store = memory.New()
		log.Println("[board-service] Using in-memory store")
	}

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[board-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[board-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[board-service] Redis connected ✓")

	// ── Rate limiter ─────────────────────────────────────────────────────────
	var (
		limiter    auth.Limiter
		memLimiter *auth.MemoryLimiter
	)
	if cfg.RateLimitBackend == config.BackendRedis {
		limiter = auth.NewRedisLimiter(rdb, cfg.RateLimitMax, cfg.RateLimitWindow)
	} else {
		memLimiter = auth.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
		limiter = memLimiter
	}

	// ── Services ─────────────────────────────────────────────────────────────
	publisher := events.NewPublisher(rdb)
	lib := media.NewLibrary(store, cfg.MaxUploadBytes)
	guard := auth.NewRoleGuard(store, cfg.EnforceRecruiterRole)
	issuer := auth.NewIssuer(cfg.SecretKey, cfg.TokenTTL)

	profiles := profile.NewService(store, lib)
	appSvc := applications.NewService(store, guard, publisher)

	model, err := genai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GenAIModel)
	if err != nil {
		log.Fatalf("[board-service] GenAI: %v", err)
	}
	if model == nil {
		log.Println("[board-service] GEMINI_API_KEY not set, GenAI endpoints disabled")
	}
	assistant := genai.NewAssistant(model, store, profiles, genai.NewRedisHistory(rdb), cfg.GenAITimeout)

	// ── HTTP server ──────────────────────────────────────────────────────────
	server := api.NewServer(api.Deps{
		Config:       cfg,
		Gate:         auth.NewGate(issuer, limiter),
		Issuer:       issuer,
		Auth:         auth.NewService(store, issuer, lib, cfg.DefaultProfilePhoto),
		Jobs:         jobs.NewService(store, guard, publisher),
		Applications: appSvc,
		Saved:        saved.NewService(store),
		Companies:    company.NewService(store, guard, lib),
		Profiles:     profiles,
		Media:        lib,
		Assistant:    assistant,
		Checks: map[string]api.Check{
			"database": store.Ping,
			"redis":    db.RedisCheck(rdb),
		},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GenAITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[board-service] HTTP listening on :%s (%s)", cfg.Port, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[board-service] HTTP server error: %v", err)
		}
	}()

	// ── gRPC server ──────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatalf("[board-service] gRPC listen: %v", err)
	}
	gs := grpcserver.New(appSvc, issuer)

	go func() {
		log.Printf("[board-service] gRPC listening on :%s", cfg.GRPCPort)
		if err := gs.Serve(lis); err != nil {
			log.Fatalf("[board-service] gRPC server error: %v", err)
		}
	}()

	// ── Scheduler ────────────────────────────────────────────────────────────
	tasks := []scheduler.Task{scheduler.BlobGC(store, cfg.BlobGCSpec, blobGrace)}
	if memLimiter != nil {
		tasks = append(tasks, scheduler.LimiterSweep(memLimiter))
	}
	sched := scheduler.New(tasks...)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[board-service] Scheduler: %v", err)
	}

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[board-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[board-service] Shutdown error: %v", err)
	}
	gs.GracefulStop()
	sched.Stop()
	cancel()
	log.Println("[board-service] Stopped.")
}
