package config

import (
	"errors"
	"fmt"
	"hos-compliance-service/internal/domain"
	"hos-compliance-service/internal/platform/db"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBDialect     db.Dialect
	DBPath        string
	DatabaseURL   string
	SeedPath      string
	RuleSet       domain.RuleSet
	DisplayTZ     *time.Location
	ORSAPIKey     string
	ORSBaseURL    string
	RedisAddr     string
	CacheTTL      time.Duration
	KafkaBrokers  []string
	KafkaTopic    string
	ShutdownGrace time.Duration
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// LoadDotEnv reads .env into the environment if present. Real environment
// variables take precedence.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// Load reads the service configuration from the environment.
func Load() (Config, error) {
	dialect, err := db.ParseDialect(Get("DB_DRIVER", "sqlite"))
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	cfg := Config{
		Port:        Get("PORT", "8080"),
		DBDialect:   dialect,
		DBPath:      Get("DB_PATH", "data/hos.db"),
		DatabaseURL: Get("DATABASE_URL", ""),
		SeedPath:    Get("SEED_PATH", ""),
		ORSAPIKey:   Get("ORS_API_KEY", ""),
		ORSBaseURL:  Get("ORS_BASE_URL", ""),
		RedisAddr:   Get("REDIS_ADDR", ""),
		KafkaTopic:  Get("KAFKA_TOPIC", "hos.duty-events"),
	}

	if dialect == db.DialectPostgres && cfg.DatabaseURL == "" {
		return Config{}, errors.New("load config: DATABASE_URL is required when DB_DRIVER=postgres")
	}

	cfg.RuleSet, err = domain.LookupRuleSet(Get("RULESET", domain.DefaultRuleSet.Version))
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	cfg.DisplayTZ, err = time.LoadLocation(Get("DISPLAY_TZ", "America/Chicago"))
	if err != nil {
		return Config{}, fmt.Errorf("load config: DISPLAY_TZ: %w", err)
	}

	if cfg.CacheTTL, err = duration("CACHE_TTL", 7*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownGrace, err = duration("SHUTDOWN_GRACE", 10*time.Second); err != nil {
		return Config{}, err
	}

	for _, b := range strings.Split(Get("KAFKA_BROKERS", ""), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	return cfg, nil
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	// Bare numbers are seconds.
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("load config: %s=%q is not a duration", key, v)
	}
	return time.Duration(secs) * time.Second, nil
}
