package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is centralized process configuration. Values come from the
// environment, optionally overlaid on a YAML file named by MEDIEX_CONFIG
// with ${VAR} expansion.
type Config struct {
	ServiceName string `yaml:"service_name"`
	HTTPPort    string `yaml:"http_port"`
	PostgresDSN string `yaml:"postgres_dsn"`

	KafkaBrokers []string `yaml:"kafka_brokers"`
	OutboxTopic  string   `yaml:"outbox_topic"`

	DeployerID      string        `yaml:"deployer_id"`
	RegistryBaseURL string        `yaml:"registry_base_url"`
	RegistryTimeout time.Duration `yaml:"registry_timeout"`

	OutboxPollInterval time.Duration `yaml:"outbox_poll_interval"`
	OutboxBatchSize    int           `yaml:"outbox_batch_size"`
}

func Load() (Config, error) {
	cfg := Config{}

	if path := strings.TrimSpace(os.Getenv("MEDIEX_CONFIG")); path != "" {
		loaded, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	if v := os.Getenv("SERVICE_NAME"); v != "" {
		cfg.ServiceName = v
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "mediex"
	}

	if v := os.Getenv("HTTP_PORT"); v != "" {
		cfg.HTTPPort = v
	}
	if cfg.HTTPPort == "" {
		cfg.HTTPPort = "8080"
	}

	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}

	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		cfg.KafkaBrokers = splitList(raw)
	}
	if len(cfg.KafkaBrokers) == 0 {
		cfg.KafkaBrokers = []string{"localhost:9092"}
	}

	if v := os.Getenv("OUTBOX_TOPIC"); v != "" {
		cfg.OutboxTopic = v
	}
	if cfg.OutboxTopic == "" {
		cfg.OutboxTopic = "market.events"
	}

	if v := os.Getenv("DEPLOYER_ID"); v != "" {
		cfg.DeployerID = v
	}
	if v := os.Getenv("REGISTRY_BASE_URL"); v != "" {
		cfg.RegistryBaseURL = v
	}
	if v := os.Getenv("REGISTRY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse REGISTRY_TIMEOUT: %w", err)
		}
		cfg.RegistryTimeout = d
	}
	if cfg.RegistryTimeout <= 0 {
		cfg.RegistryTimeout = 10 * time.Second
	}

	if v := os.Getenv("OUTBOX_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse OUTBOX_POLL_INTERVAL: %w", err)
		}
		cfg.OutboxPollInterval = d
	}
	if cfg.OutboxPollInterval <= 0 {
		cfg.OutboxPollInterval = 2 * time.Second
	}

	if v := os.Getenv("OUTBOX_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse OUTBOX_BATCH_SIZE: %w", err)
		}
		cfg.OutboxBatchSize = n
	}
	if cfg.OutboxBatchSize <= 0 {
		cfg.OutboxBatchSize = 100
	}

	return cfg, nil
}

// loadFile reads a YAML config file and expands ${VAR} environment
// references before parsing.
func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config yaml: %w", err)
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, value := range strings.Split(raw, ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}
