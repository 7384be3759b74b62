package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"

	"team-scheduler/internal/bridge"
	"team-scheduler/internal/bus"
	"team-scheduler/internal/cache"
	"team-scheduler/internal/config"
	"team-scheduler/internal/handler"
	"team-scheduler/internal/middleware"
	"team-scheduler/internal/model"
	"team-scheduler/internal/notify"
	"team-scheduler/internal/participation"
	"team-scheduler/internal/schedule"
	"team-scheduler/internal/store"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	log.Println("connected to postgres")

	// run migrations
	if migration, err := os.ReadFile("db/migrations/001_init.sql"); err != nil {
		log.Printf("migration file not found, skipping: %v", err)
	} else if _, err := pool.Exec(context.Background(), string(migration)); err != nil {
		log.Printf("migration warning: %v", err)
	} else {
		log.Println("migration applied")
	}

	// change-event bus; live sync degrades to manual refresh without it
	var events *bus.Bus
	if b, err := bus.Connect(cfg.NATSURL); err != nil {
		log.Printf("nats not available, running without live sync: %v", err)
	} else {
		events = b
		defer events.Close()
		log.Println("connected to nats")
	}

	st := store.New(pool, events)
	parts := participation.NewService(st)
	sched := schedule.NewService(st, parts)
	profiles := cache.Connect(cfg.RedisURL)
	mailer := notify.New(cfg.SendGridAPIKey, cfg.SendGridFrom, cfg.AppName)
	hub := bridge.NewHub()

	if events != nil {
		br, err := bridge.New(events, &bridgeSource{st: st, profiles: profiles}, hub)
		if err != nil {
			log.Fatalf("bridge: %v", err)
		}
		defer br.Close()
	}

	h := handler.New(st, sched, parts, hub, mailer, profiles, cfg.JWTSecret)
	rl := middleware.NewRateLimiter(5, 10)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: c.Handler(h.Routes(rl)),
	}
	go func() {
		log.Printf("http on :%s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
}

// bridgeSource feeds the bridge from the store, with profiles served
// through the redis cache when available.
type bridgeSource struct {
	st       *store.Store
	profiles *cache.ProfileCache
}

func (s *bridgeSource) Appointments(ctx context.Context) ([]model.Appointment, error) {
	return s.st.Appointments(ctx)
}

func (s *bridgeSource) Attendees(ctx context.Context) ([]model.AttendeeRecord, error) {
	return s.st.Attendees(ctx)
}

func (s *bridgeSource) Profiles(ctx context.Context) ([]model.Profile, error) {
	return s.profiles.Profiles(ctx, s.st)
}
