package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Simulation SimulationConfig
	Worker     WorkerConfig
	DB         DatabaseConfig
	Report     ReportConfig
	NATS       NATSConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Host          string
	Port          int
	RateLimitRPS  int
	AllowedOrigin string
}

type SimulationConfig struct {
	TickInterval      time.Duration
	AlertProbability  float64
	ReturnProbability float64
	RegistryCapacity  int
	SeedAlerts        int
	RandomSeed        uint64
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type DatabaseConfig struct {
	Path string
}

type ReportConfig struct {
	Schedule string
}

// NATSConfig enables the event relay when URL is set.
type NATSConfig struct {
	URL     string
	Subject string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:          getEnv("SERVER_HOST", "localhost"),
			Port:          getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS:  getEnvInt("RATE_LIMIT_RPS", 10),
			AllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "*"),
		},
		Simulation: SimulationConfig{
			TickInterval:      getEnvDuration("SIM_TICK_INTERVAL", 8*time.Second),
			AlertProbability:  getEnvFloat("SIM_ALERT_PROBABILITY", 0.3),
			ReturnProbability: getEnvFloat("SIM_RETURN_PROBABILITY", 0.5),
			RegistryCapacity:  getEnvInt("SIM_REGISTRY_CAPACITY", 20),
			SeedAlerts:        getEnvInt("SIM_SEED_ALERTS", 4),
			RandomSeed:        getEnvUint("SIM_RANDOM_SEED", 0),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 1),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 64),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", ":memory:"),
		},
		Report: ReportConfig{
			Schedule: getEnv("REPORT_SCHEDULE", "@every 1m"),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", ""),
			Subject: getEnv("NATS_SUBJECT", "rescue.events"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimitRPS < 1 {
		return fmt.Errorf("rate limit must be at least 1 req/s, got %d", c.Server.RateLimitRPS)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	sim := c.Simulation
	if sim.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", sim.TickInterval)
	}
	if sim.AlertProbability < 0 || sim.AlertProbability > 1 {
		return fmt.Errorf("alert probability must be within [0,1], got %v", sim.AlertProbability)
	}
	if sim.ReturnProbability < 0 || sim.ReturnProbability > 1 {
		return fmt.Errorf("return probability must be within [0,1], got %v", sim.ReturnProbability)
	}
	if sim.RegistryCapacity < 1 {
		return fmt.Errorf("registry capacity must be at least 1, got %d", sim.RegistryCapacity)
	}
	if sim.SeedAlerts < 0 {
		return fmt.Errorf("seed alerts cannot be negative, got %d", sim.SeedAlerts)
	}

	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1, got %d", c.Worker.Count)
	}
	if c.Worker.BufferSize < 0 {
		return fmt.Errorf("worker buffer size cannot be negative, got %d", c.Worker.BufferSize)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvUint(key string, fallback uint64) uint64 {
	if val := os.Getenv(key); val != "" {
		if u, err := strconv.ParseUint(val, 10, 64); err == nil {
			return u
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
