package main

import (
	"context"
	"database/sql"
	"fmt"
	"hos-compliance-service/internal/adapters/repositories"
	"hos-compliance-service/internal/config"
	"hos-compliance-service/internal/platform/db"
	"hos-compliance-service/internal/ports"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// dbtool initializes the schema and seeds demo duty logs. With
// DB_DRIVER=postgres it also reports the pool's view of the server.
func main() {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var conn *sql.DB
	if cfg.DBDialect == db.DialectPostgres {
		if err := checkPostgres(ctx, cfg.DatabaseURL); err != nil {
			log.Fatal(err)
		}
		conn, err = db.Open(cfg.DatabaseURL)
	} else {
		conn, err = db.OpenSQLite(cfg.DBPath)
	}
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/duty_logs.json")
	if len(os.Args) > 1 {
		seedPath = os.Args[1]
	}
	if err := initAndSeed(ctx, conn, cfg.DBDialect, seedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, dialect db.Dialect, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Println("Schema ready.")

	log.Printf("Seeding database from %s...", seedPath)
	seeds, err := repositories.LoadSeed(seedPath)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	var repo ports.DutyLogRepository = repositories.NewSqliteDutyLogRepository(conn)
	if dialect == db.DialectPostgres {
		repo = repositories.NewPostgresDutyLogRepository(conn)
	}

	n, err := repositories.Seed(ctx, repo, seeds)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Printf("Seeding complete. drivers=%d skipped=%d", n, len(seeds)-n)

	return nil
}

// checkPostgres connects with a native pgx pool before the database/sql
// handle is opened, so connection problems surface with pgx's own errors.
func checkPostgres(ctx context.Context, databaseURL string) error {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	var version string
	if err := pool.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return err
	}
	log.Printf("Connected to %s", version)
	return nil
}
