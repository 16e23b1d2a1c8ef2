package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.KitchenWorkers != 1 {
		t.Fatalf("expected single worker by default, got %d", cfg.KitchenWorkers)
	}
	if cfg.PrepTime != 3*time.Second {
		t.Fatalf("expected 3s prep time, got %s", cfg.PrepTime)
	}
	if cfg.WarehouseTimeout != 10*time.Second {
		t.Fatalf("expected 10s warehouse timeout, got %s", cfg.WarehouseTimeout)
	}
	if cfg.StatusPublishMode != "async" {
		t.Fatalf("expected async publish mode, got %q", cfg.StatusPublishMode)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "kafka:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PREP_TIME", "5s")
	t.Setenv("WAREHOUSE_TIMEOUT", "250ms")
	t.Setenv("KITCHEN_WORKERS", "4")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092 ,")
	t.Setenv("STATUS_PUBLISH_MODE", "sync")

	cfg := Load()

	if cfg.PrepTime != 5*time.Second {
		t.Fatalf("prep time: got %s", cfg.PrepTime)
	}
	if cfg.WarehouseTimeout != 250*time.Millisecond {
		t.Fatalf("warehouse timeout: got %s", cfg.WarehouseTimeout)
	}
	if cfg.KitchenWorkers != 4 {
		t.Fatalf("workers: got %d", cfg.KitchenWorkers)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "b:9092" {
		t.Fatalf("brokers: got %v", cfg.KafkaBrokers)
	}
	if cfg.StatusPublishMode != "sync" {
		t.Fatalf("publish mode: got %q", cfg.StatusPublishMode)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("PREP_TIME", "soon")
	t.Setenv("KITCHEN_WORKERS", "-2")

	cfg := Load()

	if cfg.PrepTime != 3*time.Second {
		t.Fatalf("invalid duration should fall back, got %s", cfg.PrepTime)
	}
	if cfg.KitchenWorkers != 1 {
		t.Fatalf("invalid worker count should fall back, got %d", cfg.KitchenWorkers)
	}
}
