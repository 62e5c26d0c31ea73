package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackgods/clinic-management/internal/api"
	"github.com/hackgods/clinic-management/internal/auth"
	"github.com/hackgods/clinic-management/internal/clinic"
	"github.com/hackgods/clinic-management/internal/config"
	"github.com/hackgods/clinic-management/internal/db"
	"github.com/hackgods/clinic-management/internal/metrics"
	redisclient "github.com/hackgods/clinic-management/internal/redis"
)

var version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s db_host=%s db_name=%s", cfg.Env, cfg.HTTPPort, cfg.Database.Host, cfg.Database.Name)
	if cfg.PasswordMode == config.PasswordPlaintext {
		log.Println("WARNING: AUTH_PASSWORD_MODE=plaintext compares stored passwords verbatim; use bcrypt outside development")
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres is connected lazily; a failed first attempt does not stop the
	// server and readiness reports it.
	provider := db.NewProvider(cfg.Database.ConnString())
	defer provider.Close()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	if err := provider.Ping(pgCtx); err != nil {
		log.Printf("postgres not reachable yet: %v", err)
	}
	cancelPg()

	// Connect Redis
	redisCtx, cancelRedis := context.WithTimeout(rootCtx, 5*time.Second)
	rdb, err := redisclient.NewRedisClient(redisCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	cancelRedis()
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}()
	log.Println("connected to Redis")

	m := metrics.New()
	svc := clinic.NewService(
		clinic.NewPgRepositories(provider),
		redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL),
		m,
	)
	authn := auth.NewAuthenticator(
		clinic.NewPgUserRepository(provider),
		auth.NewRedisStore(rdb),
		cfg.PasswordMode,
		cfg.SessionTTL,
	)

	router := api.NewRouter(api.RouterConfig{
		Service:  svc,
		Auth:     authn,
		Database: provider,
		Redis:    api.RedisPinger(rdb),
		Metrics:  m,
		Env:      cfg.Env,
		Version:  version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("http server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()

	log.Println("shutting down api-server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
}
