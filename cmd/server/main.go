package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hos-compliance-service/internal/adapters/cache"
	"hos-compliance-service/internal/adapters/distance"
	"hos-compliance-service/internal/adapters/events"
	"hos-compliance-service/internal/adapters/repositories"
	"hos-compliance-service/internal/api"
	"hos-compliance-service/internal/config"
	"hos-compliance-service/internal/platform/db"
	"hos-compliance-service/internal/platform/obs"
	"hos-compliance-service/internal/ports"
	"hos-compliance-service/internal/services"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (SQLite or Postgres, ORS, Redis, Kafka) behind
// ports and starts the HTTP server.
func main() {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := openDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	repo, err := initAndSeed(ctx, conn, cfg)
	if err != nil {
		log.Fatal(err)
	}

	metrics := obs.NewMetrics()

	var publisher ports.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		publisher = kp
		log.Printf("Publishing duty events brokers=%v topic=%s", cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	logs := services.NewLogService(repo, publisher, cfg.RuleSet)

	deps := api.Deps{
		Logs:      logs,
		Rules:     cfg.RuleSet,
		DisplayTZ: cfg.DisplayTZ,
		Metrics:   metrics,
	}

	provider, closeProvider, err := newDistanceProvider(ctx, conn, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeProvider()
	if provider != nil {
		deps.Planner = &services.TripPlanner{Provider: provider, Logs: logs, Rules: cfg.RuleSet}
	} else {
		log.Println("ORS_API_KEY not set; trip planning disabled (POST /schedules still accepts explicit legs)")
	}

	// Timeouts are tuned for cold-cache trip planning (external API latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("Server listening addr=:%s ruleset=%s db=%s", cfg.Port, cfg.RuleSet.Version, cfg.DBDialect)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func openDB(cfg config.Config) (*sql.DB, error) {
	if cfg.DBDialect == db.DialectPostgres {
		return db.Open(cfg.DatabaseURL)
	}
	return db.OpenSQLite(cfg.DBPath)
}

func initAndSeed(ctx context.Context, conn *sql.DB, cfg config.Config) (ports.DutyLogRepository, error) {
	if err := repositories.InitSchema(ctx, conn, cfg.DBDialect); err != nil {
		return nil, fmt.Errorf("init and seed: %w", err)
	}

	var repo ports.DutyLogRepository = repositories.NewSqliteDutyLogRepository(conn)
	if cfg.DBDialect == db.DialectPostgres {
		repo = repositories.NewPostgresDutyLogRepository(conn)
	}

	// Seed demo drivers on startup for local runs.
	if cfg.SeedPath != "" {
		seeds, err := repositories.LoadSeed(cfg.SeedPath)
		if err != nil {
			return nil, fmt.Errorf("init and seed: %w", err)
		}
		n, err := repositories.Seed(ctx, repo, seeds)
		if err != nil {
			return nil, fmt.Errorf("init and seed: %w", err)
		}
		log.Printf("Seeded drivers=%d path=%s", n, cfg.SeedPath)
	}

	return repo, nil
}

// newDistanceProvider returns nil when no ORS key is configured. Distance
// results are cached in Redis when REDIS_ADDR is reachable, otherwise in
// the database; geocodes in memory in front of the database.
func newDistanceProvider(ctx context.Context, conn *sql.DB, cfg config.Config) (ports.DistanceProvider, func(), error) {
	noop := func() {}
	if cfg.ORSAPIKey == "" {
		return nil, noop, nil
	}

	var distanceCache ports.DistanceCache = cache.NewSQLDistanceCache(conn, cfg.DBDialect)
	closeFn := noop
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Printf("redis unavailable addr=%s err=%v; using database distance cache", cfg.RedisAddr, err)
			client.Close()
		} else {
			distanceCache = cache.NewRedisDistanceCache(client, cfg.CacheTTL)
			closeFn = func() { client.Close() }
		}
	}

	geocodeCache := cache.NewMemoryGeocodeCache(cfg.CacheTTL, cache.NewSQLGeocodeCache(conn, cfg.DBDialect))

	provider, err := distance.NewORSProvider(distance.ORSOptions{
		APIKey:        cfg.ORSAPIKey,
		BaseURL:       cfg.ORSBaseURL,
		DistanceCache: distanceCache,
		GeocodeCache:  geocodeCache,
	})
	if err != nil {
		closeFn()
		return nil, noop, err
	}
	return provider, closeFn, nil
}
