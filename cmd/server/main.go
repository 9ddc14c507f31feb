package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/actuallystonmai/canteen-recommendation/internal/cache"
	"github.com/actuallystonmai/canteen-recommendation/internal/config"
	"github.com/actuallystonmai/canteen-recommendation/internal/handler"
	"github.com/actuallystonmai/canteen-recommendation/internal/logger"
	"github.com/actuallystonmai/canteen-recommendation/internal/metrics"
	"github.com/actuallystonmai/canteen-recommendation/internal/model"
	"github.com/actuallystonmai/canteen-recommendation/internal/repository"
	"github.com/actuallystonmai/canteen-recommendation/internal/router"
	"github.com/actuallystonmai/canteen-recommendation/internal/service"
	"github.com/actuallystonmai/canteen-recommendation/seeds"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	defer log.Sync()

	ctx := context.Background()

	// ------------ PostgreSQL ---------------
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to parse database config", zap.Error(err))
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := waitForDB(ctx, pool, log); err != nil {
		log.Fatal("database not ready", zap.Error(err))
	}
	log.Info("connected to PostgreSQL")

	// ------------ Run Migrations ---------------
	// for migrate-down using CLI command
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		if err := runMigration(ctx, pool, "migrations/create_tables.down.sql"); err != nil {
			log.Fatal("failed to migrate down", zap.Error(err))
		}
		log.Info("migrations dropped")
		return
	}

	if err := runMigration(ctx, pool, "migrations/create_tables.up.sql"); err != nil {
		log.Fatal("failed to migrate up", zap.Error(err))
	}
	log.Info("migrations applied")

	// ------------ Setup Seed Data ---------------
	if err := checkSeed(ctx, pool, log); err != nil {
		log.Fatal("failed to check seed", zap.Error(err))
	}

	// ------------ Redis ---------------
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal("failed to parse redis url", zap.Error(err))
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	completionCache := cache.NewCache(rdb, cfg.CacheTTL)

	// ------------ Model ---------------
	client := model.NewClient(model.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, log)
	if cfg.LLM.APIKey == "" {
		log.Warn("LLM_API_KEY is not set, recommendations will use the local fallback")
	}

	var llm service.Completer = client
	if cfg.CacheEnabled {
		llm = cache.NewCachingCompleter(client, completionCache, client.Name(), log)
	}

	// ------------ Services ---------------
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	repo := repository.NewRepository(pool)
	recs := service.NewRecommendationService(repo, service.NewGoalResolver(repo, log), llm, m, log)
	nutrition := service.NewNutritionService(repo, llm, m, log)

	h := handler.NewHandler(recs, nutrition, log)
	r := router.Setup(h, router.Options{
		RequestTimeout: cfg.RequestTimeout,
		Gatherer:       registry,
		Checks: map[string]router.Pinger{
			"postgres": repo,
			"redis":    completionCache,
		},
	})

	// ---------------- Server --------------------
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := serve(srv, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

// serve runs srv until SIGINT or SIGTERM, then drains in-flight requests.
func serve(srv *http.Server, log *zap.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("server stopped gracefully")
	}
	return nil
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		log.Info("waiting for database", zap.Int("attempt", i+1), zap.Int("max_attempts", 30))
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func runMigration(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

func checkSeed(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM menus").Scan(&count); err != nil {
		return fmt.Errorf("check menus count: %w", err)
	}
	if count > 0 {
		log.Info("database already seeded, skipping", zap.Int("menus", count))
		return nil
	}
	return seeds.Setup(ctx, pool, log)
}
