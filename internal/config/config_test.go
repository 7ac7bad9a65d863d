package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Simulation.TickInterval != 8*time.Second {
		t.Errorf("expected 8s tick interval, got %s", cfg.Simulation.TickInterval)
	}
	if cfg.Simulation.AlertProbability != 0.3 {
		t.Errorf("expected alert probability 0.3, got %v", cfg.Simulation.AlertProbability)
	}
	if cfg.Simulation.ReturnProbability != 0.5 {
		t.Errorf("expected return probability 0.5, got %v", cfg.Simulation.ReturnProbability)
	}
	if cfg.Simulation.RegistryCapacity != 20 {
		t.Errorf("expected capacity 20, got %d", cfg.Simulation.RegistryCapacity)
	}
	if cfg.Simulation.SeedAlerts != 4 {
		t.Errorf("expected 4 seed alerts, got %d", cfg.Simulation.SeedAlerts)
	}
	if cfg.Worker.Count != 1 {
		t.Errorf("expected a single journal worker, got %d", cfg.Worker.Count)
	}
	if cfg.DB.Path != ":memory:" {
		t.Errorf("expected in-memory journal, got %s", cfg.DB.Path)
	}
	if cfg.NATS.URL != "" {
		t.Errorf("expected relay disabled by default, got %s", cfg.NATS.URL)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SIM_TICK_INTERVAL", "250ms")
	t.Setenv("SIM_ALERT_PROBABILITY", "1")
	t.Setenv("SIM_RANDOM_SEED", "42")
	t.Setenv("SIM_REGISTRY_CAPACITY", "5")
	t.Setenv("NATS_URL", "nats://localhost:4222")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Simulation.TickInterval != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %s", cfg.Simulation.TickInterval)
	}
	if cfg.Simulation.AlertProbability != 1 {
		t.Errorf("expected probability 1, got %v", cfg.Simulation.AlertProbability)
	}
	if cfg.Simulation.RandomSeed != 42 {
		t.Errorf("expected seed 42, got %d", cfg.Simulation.RandomSeed)
	}
	if cfg.Simulation.RegistryCapacity != 5 {
		t.Errorf("expected capacity 5, got %d", cfg.Simulation.RegistryCapacity)
	}
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("unexpected nats url %s", cfg.NATS.URL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, val, want string
	}{
		{"SERVER_PORT", "70000", "invalid server port"},
		{"LOG_LEVEL", "verbose", "invalid log level"},
		{"SIM_ALERT_PROBABILITY", "1.5", "alert probability"},
		{"SIM_RETURN_PROBABILITY", "-0.1", "return probability"},
		{"SIM_REGISTRY_CAPACITY", "0", "registry capacity"},
		{"SIM_SEED_ALERTS", "-1", "seed alerts"},
		{"SIM_TICK_INTERVAL", "-1s", "tick interval"},
		{"WORKER_COUNT", "0", "worker count"},
		{"RATE_LIMIT_RPS", "0", "rate limit"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.val)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
