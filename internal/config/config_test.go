package config

import (
	"hos-compliance-service/internal/domain"
	"hos-compliance-service/internal/platform/db"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PORT", "DB_DRIVER", "DB_PATH", "DATABASE_URL", "SEED_PATH", "RULESET", "DISPLAY_TZ",
		"ORS_API_KEY", "ORS_BASE_URL", "REDIS_ADDR", "CACHE_TTL", "KAFKA_BROKERS", "KAFKA_TOPIC", "SHUTDOWN_GRACE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISPLAY_TZ", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBDialect != db.DialectSQLite || cfg.DBPath != "data/hos.db" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.RuleSet.Version != domain.DefaultRuleSet.Version {
		t.Fatalf("expected default rule set, got %q", cfg.RuleSet.Version)
	}
	if cfg.CacheTTL != 7*24*time.Hour || len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("unexpected cache/kafka defaults %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISPLAY_TZ", "UTC")
	t.Setenv("RULESET", "us-property-60-7")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CACHE_TTL", "90")
	t.Setenv("SHUTDOWN_GRACE", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RuleSet.MaxCycleHours != 60 {
		t.Fatalf("expected 60h cycle, got %v", cfg.RuleSet.MaxCycleHours)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %q", cfg.KafkaBrokers)
	}
	if cfg.CacheTTL != 90*time.Second || cfg.ShutdownGrace != 3*time.Second {
		t.Fatalf("unexpected durations ttl=%s grace=%s", cfg.CacheTTL, cfg.ShutdownGrace)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"postgres without url": {"DB_DRIVER": "postgres"},
		"unknown driver":       {"DB_DRIVER": "mysql"},
		"unknown rule set":     {"RULESET": "eu-561"},
		"bad duration":         {"CACHE_TTL": "soon"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DISPLAY_TZ", "UTC")
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestGetFallback(t *testing.T) {
	t.Setenv("HOS_TEST_KEY", "  ")
	if got := Get("HOS_TEST_KEY", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback for blank value, got %q", got)
	}
	t.Setenv("HOS_TEST_KEY", "set")
	if got := Get("HOS_TEST_KEY", "fallback"); got != "set" {
		t.Fatalf("expected set, got %q", got)
	}
}
